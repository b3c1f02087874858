package service

import (
	"context"

	"VidHub/internal/data"
	"VidHub/internal/repository"
	"VidHub/pkg/logger"

	"github.com/pkg/errors"
)

// CounterService engagement消费者的业务逻辑：按关联表重新计数并回写冗余字段
type CounterService interface {
	// Apply 幂等，同一条消息重复投递结果不变
	Apply(ctx context.Context, evt EngagementEvent) error
}

type counterService struct {
	uow       data.UnitOfWork
	videoRepo repository.VideoRepository
}

func NewCounterService(uow data.UnitOfWork, videoRepo repository.VideoRepository) CounterService {
	return &counterService{uow: uow, videoRepo: videoRepo}
}

func (s *counterService) Apply(ctx context.Context, evt EngagementEvent) error {
	if evt.VideoID == 0 && evt.ChannelID == 0 {
		return validationError("消息缺少video_id和channel_id")
	}
	err := s.uow.Execute(ctx, func(repos *data.TransactionalRepositories) error {
		if evt.VideoID != 0 {
			if _, err := repos.VideoRepo.RefreshCounters(ctx, evt.VideoID); err != nil {
				return err
			}
		}
		if evt.ChannelID != 0 {
			if _, err := repos.ChannelRepo.RefreshSubscriberCount(ctx, evt.ChannelID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "回写计数失败")
	}
	if evt.VideoID != 0 {
		// 缓存里的计数已经过时
		if err := s.videoRepo.DeleteVideoCache(ctx, evt.VideoID); err != nil {
			logger.Log.WithError(err).WithField("video_id", evt.VideoID).Warn("清理视频缓存失败")
		}
	}
	return nil
}
