package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"VidHub/internal/auth"
	"VidHub/internal/data"
	"VidHub/internal/model"
	"VidHub/internal/repository"
	"VidHub/pkg/logger"
	"VidHub/pkg/storage"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const channelNameMaxLength = 100

// ChannelDetail 频道页：频道、频道下的视频、实时关注数、当前访客是否已关注
type ChannelDetail struct {
	Channel         *model.Channel
	Videos          []model.Video
	SubscriberCount uint64
	IsSubscribed    bool
}

// ChannelInput 创建频道的参数，Photo可选
type ChannelInput struct {
	Name        string
	Description string
	Photo       *FileUpload
}

// ChannelUpdate 为nil的字段保持不变
type ChannelUpdate struct {
	Name        *string
	Description *string
	Photo       *FileUpload
}

// Subscriptions 当前用户关注的频道
type Subscriptions struct {
	Channels []model.Channel
	Count    int
}

type ChannelService interface {
	ListChannels(ctx context.Context, page, pageSize int) ([]model.Channel, error)
	// viewer为nil表示匿名访问
	GetChannel(ctx context.Context, channelID uint64, viewer *auth.Principal) (*ChannelDetail, error)
	CreateChannel(ctx context.Context, p auth.Principal, in ChannelInput) (*model.Channel, error)
	UpdateChannel(ctx context.Context, p auth.Principal, channelID uint64, in ChannelUpdate) (*model.Channel, error)
	// DeleteChannel 级联删除频道下的视频及其评论、点赞、歌单条目，以及频道的关注关系
	DeleteChannel(ctx context.Context, p auth.Principal, channelID uint64) error
	// ToggleSubscription 返回操作之后实时的关注数
	ToggleSubscription(ctx context.Context, p auth.Principal, channelID uint64, subscribe bool) (uint64, error)
	ListSubscriptions(ctx context.Context, p auth.Principal) (*Subscriptions, error)
}

type channelService struct {
	uow            data.UnitOfWork
	channelRepo    repository.ChannelRepository
	videoRepo      repository.VideoRepository
	subscriberRepo repository.SubscriberRepository
	store          storage.Storage
	publisher      EventPublisher
}

func NewChannelService(uow data.UnitOfWork, channelRepo repository.ChannelRepository, videoRepo repository.VideoRepository,
	subscriberRepo repository.SubscriberRepository, store storage.Storage, publisher EventPublisher) ChannelService {
	return &channelService{
		uow:            uow,
		channelRepo:    channelRepo,
		videoRepo:      videoRepo,
		subscriberRepo: subscriberRepo,
		store:          store,
		publisher:      orNoop(publisher),
	}
}

func validateChannelName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > channelNameMaxLength {
		return "", validationError("频道名称长度不合法")
	}
	return name, nil
}

func (s *channelService) ListChannels(ctx context.Context, page, pageSize int) ([]model.Channel, error) {
	channels, err := s.channelRepo.List(ctx, page, pageSize)
	if err != nil {
		return nil, errors.Wrap(err, "查询频道列表失败")
	}
	return channels, nil
}

func (s *channelService) GetChannel(ctx context.Context, channelID uint64, viewer *auth.Principal) (*ChannelDetail, error) {
	channel, err := s.channelRepo.FindByID(ctx, channelID)
	if err != nil {
		return nil, translateRepoError(err, "频道不存在")
	}
	detail := &ChannelDetail{Channel: channel}
	if detail.Videos, err = s.videoRepo.FindByChannelID(ctx, channelID); err != nil {
		return nil, errors.Wrap(err, "查询频道视频失败")
	}
	if detail.SubscriberCount, err = s.subscriberRepo.CountByChannel(ctx, channelID); err != nil {
		return nil, errors.Wrap(err, "查询关注数失败")
	}
	if viewer != nil {
		if detail.IsSubscribed, err = s.subscriberRepo.Exists(ctx, channelID, viewer.UserID); err != nil {
			return nil, errors.Wrap(err, "查询关注关系失败")
		}
	}
	return detail, nil
}

// 创建频道：1、校验名称 2、一个用户只能有一个频道 3、保存头像 4、插入数据库，失败时清理已上传的头像
func (s *channelService) CreateChannel(ctx context.Context, p auth.Principal, in ChannelInput) (*model.Channel, error) {
	name, err := validateChannelName(in.Name)
	if err != nil {
		return nil, err
	}
	_, err = s.channelRepo.FindByUserID(ctx, p.UserID)
	if err == nil {
		return nil, errors.WithMessage(ErrDuplicate, "每个用户只能创建一个频道")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrap(err, "查询频道失败")
	}

	channel := &model.Channel{
		UserID:      p.UserID,
		Name:        name,
		Description: in.Description,
	}
	if in.Photo != nil {
		obj, err := storeUpload(ctx, s.store, "channels", in.Photo, imageExtensions)
		if err != nil {
			return nil, err
		}
		channel.ProfilePhotoKey, channel.ProfilePhotoURL = obj.Key, obj.URL
	}
	if err := s.channelRepo.Create(ctx, channel); err != nil {
		removeObjects(ctx, s.store, channel.ProfilePhotoKey)
		return nil, translateRepoError(err, "每个用户只能创建一个频道")
	}
	return channel, nil
}

func (s *channelService) UpdateChannel(ctx context.Context, p auth.Principal, channelID uint64, in ChannelUpdate) (*model.Channel, error) {
	channel, err := s.channelRepo.FindByID(ctx, channelID)
	if err != nil {
		return nil, translateRepoError(err, "频道不存在")
	}
	if !p.CanModify(channel.UserID) {
		return nil, errors.WithMessage(ErrForbidden, "只能修改自己的频道")
	}
	if in.Name != nil {
		if channel.Name, err = validateChannelName(*in.Name); err != nil {
			return nil, err
		}
	}
	if in.Description != nil {
		channel.Description = *in.Description
	}
	oldPhoto := ""
	if in.Photo != nil {
		obj, err := storeUpload(ctx, s.store, "channels", in.Photo, imageExtensions)
		if err != nil {
			return nil, err
		}
		oldPhoto = channel.ProfilePhotoKey
		channel.ProfilePhotoKey, channel.ProfilePhotoURL = obj.Key, obj.URL
	}
	if err := s.channelRepo.Update(ctx, channel); err != nil {
		return nil, errors.Wrap(err, "更新频道失败")
	}
	removeObjects(ctx, s.store, oldPhoto)
	s.evictVideoCache(ctx, channelID)
	return channel, nil
}

// evictVideoCache 视频缓存里带着频道名和头像，频道变更后要一起失效
func (s *channelService) evictVideoCache(ctx context.Context, channelID uint64) {
	logCtx := logger.Log.WithField("channel_id", channelID)
	ids, err := s.videoRepo.IDsByChannelID(ctx, channelID)
	if err != nil {
		logCtx.WithError(err).Warn("查询频道视频失败，跳过缓存清理")
		return
	}
	if err := s.videoRepo.DeleteVideoCache(ctx, ids...); err != nil {
		logCtx.WithError(err).Warn("清理视频缓存失败")
	}
}

func (s *channelService) DeleteChannel(ctx context.Context, p auth.Principal, channelID uint64) error {
	channel, err := s.channelRepo.FindByID(ctx, channelID)
	if err != nil {
		return translateRepoError(err, "频道不存在")
	}
	if !p.CanModify(channel.UserID) {
		return errors.WithMessage(ErrForbidden, "只能删除自己的频道")
	}

	var removed []model.Video
	err = s.uow.Execute(ctx, func(repos *data.TransactionalRepositories) error {
		videos, err := repos.VideoRepo.FindByChannelID(ctx, channelID)
		if err != nil {
			return err
		}
		if err := deleteVideosTx(ctx, repos, videoIDs(videos)); err != nil {
			return err
		}
		if err := repos.SubscriberRepo.DeleteByChannel(ctx, channelID); err != nil {
			return err
		}
		if err := repos.ChannelRepo.Delete(ctx, channelID); err != nil {
			return err
		}
		removed = videos
		return nil
	})
	if err != nil {
		return translateRepoError(err, "删除频道失败")
	}

	// 事务提交之后再清理缓存和存储
	if err := s.videoRepo.DeleteVideoCache(ctx, videoIDs(removed)...); err != nil {
		return errors.Wrap(err, "清理视频缓存失败")
	}
	keys := []string{channel.ProfilePhotoKey}
	for _, v := range removed {
		keys = append(keys, v.VideoKey, v.ThumbnailKey)
	}
	removeObjects(ctx, s.store, keys...)
	return nil
}

func (s *channelService) ToggleSubscription(ctx context.Context, p auth.Principal, channelID uint64, subscribe bool) (uint64, error) {
	if _, err := s.channelRepo.FindByID(ctx, channelID); err != nil {
		return 0, translateRepoError(err, "频道不存在")
	}
	action := ActionSubscribe
	if subscribe {
		if err := s.subscriberRepo.Add(ctx, channelID, p.UserID); err != nil {
			return 0, translateRepoError(err, "关注失败")
		}
	} else {
		action = ActionUnsubscribe
		if err := s.subscriberRepo.Remove(ctx, channelID, p.UserID); err != nil {
			return 0, errors.Wrap(err, "取消关注失败")
		}
	}
	count, err := s.subscriberRepo.CountByChannel(ctx, channelID)
	if err != nil {
		return 0, errors.Wrap(err, "查询关注数失败")
	}
	publishEvent(ctx, s.publisher, EngagementEvent{Action: action, UserID: p.UserID, ChannelID: channelID})
	return count, nil
}

func (s *channelService) ListSubscriptions(ctx context.Context, p auth.Principal) (*Subscriptions, error) {
	ids, err := s.subscriberRepo.ChannelIDsByUser(ctx, p.UserID)
	if err != nil {
		return nil, errors.Wrap(err, "查询关注列表失败")
	}
	channels, err := s.channelRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "查询频道失败")
	}
	return &Subscriptions{Channels: channels, Count: len(channels)}, nil
}
