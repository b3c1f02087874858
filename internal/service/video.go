package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"VidHub/internal/auth"
	"VidHub/internal/data"
	"VidHub/internal/model"
	"VidHub/internal/repository"
	"VidHub/pkg/logger"
	"VidHub/pkg/storage"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const titleMaxLength = 200

// Thumbnailer 从视频中截取封面，由pkg/media实现
type Thumbnailer interface {
	FromVideo(ctx context.Context, src io.Reader, ext string) ([]byte, error)
}

// VideoInput 上传视频的参数，Media必填，Thumbnail可选
type VideoInput struct {
	Title       string
	Description string
	Tags        []string
	Media       *FileUpload
	Thumbnail   *FileUpload
}

// VideoUpdate 为nil的字段保持不变；Tags非nil时整体替换
type VideoUpdate struct {
	Title       *string
	Description *string
	Tags        []string
	Thumbnail   *FileUpload
}

// VideoDetail 视频详情页需要的全部数据，计数都是实时的
type VideoDetail struct {
	Video        *model.Video
	Counts       repository.VideoCounts
	Comments     []model.Comment
	IsSubscribed bool
	Liked        bool
	Disliked     bool
}

type VideoService interface {
	ListVideos(ctx context.Context, page, pageSize int, tag string) ([]model.Video, error)
	// GetVideoByID 先查Redis缓存，未命中时通过singleflight查库
	GetVideoByID(ctx context.Context, videoID uint64) (*model.Video, error)
	// viewer为nil表示匿名访问
	GetVideo(ctx context.Context, videoID uint64, viewer *auth.Principal, commentPage, commentPageSize int) (*VideoDetail, error)
	CreateVideo(ctx context.Context, p auth.Principal, in VideoInput) (*model.Video, error)
	UpdateVideo(ctx context.Context, p auth.Principal, videoID uint64, in VideoUpdate) (*model.Video, error)
	DeleteVideo(ctx context.Context, p auth.Principal, videoID uint64) error
	MediaURL(ctx context.Context, videoID uint64) (string, error)
	ThumbnailURL(ctx context.Context, videoID uint64) (string, error)

	ListTags(ctx context.Context) ([]model.Tag, error)
	// Search 登录用户的搜索会记入搜索历史
	Search(ctx context.Context, viewer *auth.Principal, query string, page, pageSize int) ([]model.Video, error)
	SearchHistory(ctx context.Context, p auth.Principal, page, pageSize int) ([]model.Search, error)
}

type videoService struct {
	sf singleflight.Group

	uow         data.UnitOfWork
	repos       data.Repositories
	searchRepo  repository.SearchRepository
	store       storage.Storage
	thumbnailer Thumbnailer // 为nil时不自动生成封面
}

func NewVideoService(uow data.UnitOfWork, repos data.Repositories, searchRepo repository.SearchRepository,
	store storage.Storage, thumbnailer Thumbnailer) VideoService {
	return &videoService{
		uow:         uow,
		repos:       repos,
		searchRepo:  searchRepo,
		store:       store,
		thumbnailer: thumbnailer,
	}
}

func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" || utf8.RuneCountInString(title) > titleMaxLength {
		return "", validationError("标题长度不合法")
	}
	return title, nil
}

// normalizeTags 去空白、去重，保持原顺序
func normalizeTags(names []string) ([]string, error) {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		if utf8.RuneCountInString(name) > model.TagMaxLength {
			return nil, validationError("标签过长: " + name)
		}
		seen[name] = true
		out = append(out, name)
	}
	return out, nil
}

func videoIDs(videos []model.Video) []uint64 {
	ids := make([]uint64, 0, len(videos))
	for _, v := range videos {
		ids = append(ids, v.ID)
	}
	return ids
}

// deleteVideosTx 在事务中删除视频及其评论、点赞、踩、歌单条目、标签关联
func deleteVideosTx(ctx context.Context, repos *data.TransactionalRepositories, ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}
	if err := repos.CommentRepo.DeleteByVideoIDs(ctx, ids); err != nil {
		return err
	}
	if err := repos.ReactionRepo.DeleteByVideoIDs(ctx, ids); err != nil {
		return err
	}
	if err := repos.PlaylistRepo.RemoveVideos(ctx, ids); err != nil {
		return err
	}
	return repos.VideoRepo.DeleteByIDs(ctx, ids)
}

// 获取视频列表，按时间倒序
func (s *videoService) ListVideos(ctx context.Context, page, pageSize int, tag string) ([]model.Video, error) {
	videos, err := s.repos.Video.FindLatest(ctx, page, pageSize, strings.TrimSpace(tag))
	if err != nil {
		return nil, errors.Wrap(err, "查询视频列表失败")
	}
	return videos, nil
}

// 根据videoID查找视频：1、查找Redis缓存 2、通过SingleFlight进行数据库查找
func (s *videoService) GetVideoByID(ctx context.Context, videoID uint64) (*model.Video, error) {
	video, err := s.repos.Video.GetVideoCache(ctx, videoID)
	if err == nil && video != nil {
		return video, nil
	}
	// Redis本身出错了，记录日志后降级查库
	if err != nil {
		logger.Log.WithError(err).WithField("video_id", videoID).Warn("读取视频缓存失败")
	}
	// 缓存未命中，通过SingleFlight查找，同一时间只有一个请求打到数据库
	key := fmt.Sprintf("get_video_%d", videoID)
	result, err, _ := s.sf.Do(key, func() (interface{}, error) {
		dbVideo, dbErr := s.repos.Video.FindByID(ctx, videoID)
		if dbErr != nil {
			return nil, dbErr
		}
		// 查询成功后，将返回的dbVideo写回缓存
		if cacheErr := s.repos.Video.SetVideoCache(ctx, dbVideo); cacheErr != nil {
			logger.Log.WithError(cacheErr).WithField("video_id", videoID).Warn("写入视频缓存失败")
		}
		return dbVideo, nil
	})
	if err != nil {
		return nil, translateRepoError(err, "视频不存在")
	}
	// 返回值是interface{}结构，需要断言
	return result.(*model.Video), nil
}

func (s *videoService) GetVideo(ctx context.Context, videoID uint64, viewer *auth.Principal, commentPage, commentPageSize int) (*VideoDetail, error) {
	video, err := s.GetVideoByID(ctx, videoID)
	if err != nil {
		return nil, err
	}
	detail := &VideoDetail{Video: video}
	if detail.Counts, err = s.repos.Video.CountEngagement(ctx, videoID); err != nil {
		return nil, errors.Wrap(err, "查询互动计数失败")
	}
	if detail.Comments, err = s.repos.Comment.GetCommentsByVideoID(ctx, videoID, commentPage, commentPageSize); err != nil {
		return nil, errors.Wrap(err, "查询评论失败")
	}
	if viewer == nil {
		return detail, nil
	}
	if detail.IsSubscribed, err = s.repos.Subscriber.Exists(ctx, video.ChannelID, viewer.UserID); err != nil {
		return nil, errors.Wrap(err, "查询关注关系失败")
	}
	if detail.Liked, err = s.repos.Reaction.Exists(ctx, repository.ReactionLike, viewer.UserID, videoID); err != nil {
		return nil, errors.Wrap(err, "查询点赞状态失败")
	}
	if detail.Disliked, err = s.repos.Reaction.Exists(ctx, repository.ReactionDislike, viewer.UserID, videoID); err != nil {
		return nil, errors.Wrap(err, "查询点踩状态失败")
	}
	return detail, nil
}

// 上传视频：1、校验参数和频道 2、保存视频文件和封面（没有封面时尝试截取第一帧） 3、事务中写视频和标签
func (s *videoService) CreateVideo(ctx context.Context, p auth.Principal, in VideoInput) (*model.Video, error) {
	title, err := validateTitle(in.Title)
	if err != nil {
		return nil, err
	}
	tagNames, err := normalizeTags(in.Tags)
	if err != nil {
		return nil, err
	}
	if in.Media == nil {
		return nil, validationError("请选择视频文件")
	}
	// 先把两个文件的类型都校验完，避免存了一个才发现另一个不合法
	if !videoExtensions[in.Media.ext()] {
		return nil, validationError("不支持的视频格式: " + in.Media.Filename)
	}
	if in.Thumbnail != nil && !imageExtensions[in.Thumbnail.ext()] {
		return nil, validationError("不支持的封面格式: " + in.Thumbnail.Filename)
	}

	channel, err := s.repos.Channel.FindByUserID(ctx, p.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrChannelRequired
	}
	if err != nil {
		return nil, errors.Wrap(err, "查询频道失败")
	}

	mediaObj, err := storeUpload(ctx, s.store, "videos", in.Media, videoExtensions)
	if err != nil {
		return nil, err
	}
	video := &model.Video{
		ChannelID:   channel.ID,
		Title:       title,
		Description: in.Description,
		VideoKey:    mediaObj.Key,
		VideoURL:    mediaObj.URL,
	}
	if in.Thumbnail != nil {
		thumbObj, err := storeUpload(ctx, s.store, "thumbnails", in.Thumbnail, imageExtensions)
		if err != nil {
			removeObjects(ctx, s.store, mediaObj.Key)
			return nil, err
		}
		video.ThumbnailKey, video.ThumbnailURL = thumbObj.Key, thumbObj.URL
	} else if s.thumbnailer != nil {
		if thumbObj, err := s.generateThumbnail(ctx, in.Media); err != nil {
			logger.Log.WithError(err).WithField("video_key", mediaObj.Key).Warn("自动生成封面失败")
		} else {
			video.ThumbnailKey, video.ThumbnailURL = thumbObj.Key, thumbObj.URL
		}
	}

	err = s.uow.Execute(ctx, func(repos *data.TransactionalRepositories) error {
		if err := repos.VideoRepo.Create(ctx, video); err != nil {
			return err
		}
		if len(tagNames) == 0 {
			return nil
		}
		tags, err := repos.TagRepo.FindOrCreate(ctx, tagNames)
		if err != nil {
			return err
		}
		return repos.VideoRepo.ReplaceTags(ctx, video, tags)
	})
	if err != nil {
		removeObjects(ctx, s.store, video.VideoKey, video.ThumbnailKey)
		return nil, translateRepoError(err, "保存视频失败")
	}
	return s.reload(ctx, video.ID)
}

func (s *videoService) generateThumbnail(ctx context.Context, media *FileUpload) (*storedObject, error) {
	r, err := media.Open()
	if err != nil {
		return nil, err
	}
	defer r.Close()
	img, err := s.thumbnailer.FromVideo(ctx, r, media.ext())
	if err != nil {
		return nil, err
	}
	key := "thumbnails/" + uuid.NewString() + ".jpg"
	url, err := s.store.Put(ctx, key, bytes.NewReader(img), int64(len(img)), "image/jpeg")
	if err != nil {
		return nil, err
	}
	return &storedObject{Key: key, URL: url}, nil
}

// reload 绕过缓存重新查一次，拿到预加载好的频道和标签
func (s *videoService) reload(ctx context.Context, videoID uint64) (*model.Video, error) {
	video, err := s.repos.Video.FindByID(ctx, videoID)
	if err != nil {
		return nil, translateRepoError(err, "视频不存在")
	}
	return video, nil
}

// findOwned 查库并检查当前用户能否修改该视频（视频归频道主所有）
func (s *videoService) findOwned(ctx context.Context, p auth.Principal, videoID uint64) (*model.Video, error) {
	video, err := s.reload(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if !p.CanModify(video.Channel.UserID) {
		return nil, errors.WithMessage(ErrForbidden, "只能修改自己频道的视频")
	}
	return video, nil
}

func (s *videoService) UpdateVideo(ctx context.Context, p auth.Principal, videoID uint64, in VideoUpdate) (*model.Video, error) {
	video, err := s.findOwned(ctx, p, videoID)
	if err != nil {
		return nil, err
	}
	if in.Title != nil {
		if video.Title, err = validateTitle(*in.Title); err != nil {
			return nil, err
		}
	}
	if in.Description != nil {
		video.Description = *in.Description
	}
	var tagNames []string
	if in.Tags != nil {
		if tagNames, err = normalizeTags(in.Tags); err != nil {
			return nil, err
		}
	}
	oldThumb := ""
	if in.Thumbnail != nil {
		obj, err := storeUpload(ctx, s.store, "thumbnails", in.Thumbnail, imageExtensions)
		if err != nil {
			return nil, err
		}
		oldThumb = video.ThumbnailKey
		video.ThumbnailKey, video.ThumbnailURL = obj.Key, obj.URL
	}

	err = s.uow.Execute(ctx, func(repos *data.TransactionalRepositories) error {
		if err := repos.VideoRepo.Update(ctx, video); err != nil {
			return err
		}
		if in.Tags == nil {
			return nil
		}
		tags, err := repos.TagRepo.FindOrCreate(ctx, tagNames)
		if err != nil {
			return err
		}
		return repos.VideoRepo.ReplaceTags(ctx, video, tags)
	})
	if err != nil {
		return nil, translateRepoError(err, "更新视频失败")
	}
	if err := s.repos.Video.DeleteVideoCache(ctx, videoID); err != nil {
		logger.Log.WithError(err).WithField("video_id", videoID).Warn("清理视频缓存失败")
	}
	removeObjects(ctx, s.store, oldThumb)
	return s.reload(ctx, videoID)
}

func (s *videoService) DeleteVideo(ctx context.Context, p auth.Principal, videoID uint64) error {
	video, err := s.findOwned(ctx, p, videoID)
	if err != nil {
		return err
	}
	err = s.uow.Execute(ctx, func(repos *data.TransactionalRepositories) error {
		return deleteVideosTx(ctx, repos, []uint64{videoID})
	})
	if err != nil {
		return translateRepoError(err, "删除视频失败")
	}
	if err := s.repos.Video.DeleteVideoCache(ctx, videoID); err != nil {
		return errors.Wrap(err, "清理视频缓存失败")
	}
	removeObjects(ctx, s.store, video.VideoKey, video.ThumbnailKey)
	return nil
}

func (s *videoService) MediaURL(ctx context.Context, videoID uint64) (string, error) {
	video, err := s.GetVideoByID(ctx, videoID)
	if err != nil {
		return "", err
	}
	return video.VideoURL, nil
}

func (s *videoService) ThumbnailURL(ctx context.Context, videoID uint64) (string, error) {
	video, err := s.GetVideoByID(ctx, videoID)
	if err != nil {
		return "", err
	}
	if video.ThumbnailURL == "" {
		return "", errors.WithMessage(ErrNotFound, "该视频没有封面")
	}
	return video.ThumbnailURL, nil
}

func (s *videoService) ListTags(ctx context.Context) ([]model.Tag, error) {
	tags, err := s.repos.Tag.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "查询标签失败")
	}
	return tags, nil
}

func (s *videoService) Search(ctx context.Context, viewer *auth.Principal, query string, page, pageSize int) ([]model.Video, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, validationError("搜索内容不能为空")
	}
	if utf8.RuneCountInString(query) > 200 {
		return nil, validationError("搜索内容过长")
	}
	if viewer != nil {
		// 记录失败不影响搜索本身
		if err := s.searchRepo.Create(ctx, &model.Search{UserID: viewer.UserID, Query: query}); err != nil {
			logger.Log.WithError(err).WithField("user_id", viewer.UserID).Warn("记录搜索历史失败")
		}
	}
	videos, err := s.repos.Video.Search(ctx, query, page, pageSize)
	if err != nil {
		return nil, errors.Wrap(err, "搜索视频失败")
	}
	return videos, nil
}

func (s *videoService) SearchHistory(ctx context.Context, p auth.Principal, page, pageSize int) ([]model.Search, error) {
	searches, err := s.searchRepo.ListVisible(ctx, p, page, pageSize)
	if err != nil {
		return nil, errors.Wrap(err, "查询搜索历史失败")
	}
	return searches, nil
}
