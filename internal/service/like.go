package service

import (
	"context"

	"VidHub/internal/auth"
	"VidHub/internal/repository"

	"github.com/pkg/errors"
)

// LikeService 点赞和点踩，两者互相独立：同一个用户可以同时赞和踩同一个视频
type LikeService interface {
	// 以下方法都返回操作之后实时的计数
	LikeVideo(ctx context.Context, p auth.Principal, videoID uint64) (uint64, error)
	UnlikeVideo(ctx context.Context, p auth.Principal, videoID uint64) (uint64, error)
	DislikeVideo(ctx context.Context, p auth.Principal, videoID uint64) (uint64, error)
	UndislikeVideo(ctx context.Context, p auth.Principal, videoID uint64) (uint64, error)
}

// 写库由唯一索引查重，计数冗余字段交给engagement消费者回填
type likeService struct {
	videoRepo    repository.VideoRepository
	reactionRepo repository.ReactionRepository
	publisher    EventPublisher
}

func NewLikeService(videoRepo repository.VideoRepository, reactionRepo repository.ReactionRepository, publisher EventPublisher) LikeService {
	return &likeService{
		videoRepo:    videoRepo,
		reactionRepo: reactionRepo,
		publisher:    orNoop(publisher),
	}
}

func (s *likeService) LikeVideo(ctx context.Context, p auth.Principal, videoID uint64) (uint64, error) {
	return s.add(ctx, p, videoID, repository.ReactionLike, ActionLike, "您已经点赞过该视频")
}

func (s *likeService) UnlikeVideo(ctx context.Context, p auth.Principal, videoID uint64) (uint64, error) {
	return s.remove(ctx, p, videoID, repository.ReactionLike, ActionUnlike, "您还未点赞该视频")
}

func (s *likeService) DislikeVideo(ctx context.Context, p auth.Principal, videoID uint64) (uint64, error) {
	return s.add(ctx, p, videoID, repository.ReactionDislike, ActionDislike, "您已经踩过该视频")
}

func (s *likeService) UndislikeVideo(ctx context.Context, p auth.Principal, videoID uint64) (uint64, error) {
	return s.remove(ctx, p, videoID, repository.ReactionDislike, ActionUndislike, "您还未踩过该视频")
}

// add：1、检查视频是否存在 2、插入，重复由唯一索引报出 3、实时计数 4、投递事件
func (s *likeService) add(ctx context.Context, p auth.Principal, videoID uint64, kind repository.ReactionKind, action, dupMsg string) (uint64, error) {
	if _, err := s.videoRepo.FindByID(ctx, videoID); err != nil {
		return 0, translateRepoError(err, "视频不存在")
	}
	if err := s.reactionRepo.Create(ctx, kind, p.UserID, videoID); err != nil {
		return 0, translateRepoError(err, dupMsg)
	}
	return s.countAndPublish(ctx, p, videoID, kind, action)
}

func (s *likeService) remove(ctx context.Context, p auth.Principal, videoID uint64, kind repository.ReactionKind, action, missingMsg string) (uint64, error) {
	if _, err := s.videoRepo.FindByID(ctx, videoID); err != nil {
		return 0, translateRepoError(err, "视频不存在")
	}
	if err := s.reactionRepo.Delete(ctx, kind, p.UserID, videoID); err != nil {
		return 0, translateRepoError(err, missingMsg)
	}
	return s.countAndPublish(ctx, p, videoID, kind, action)
}

func (s *likeService) countAndPublish(ctx context.Context, p auth.Principal, videoID uint64, kind repository.ReactionKind, action string) (uint64, error) {
	count, err := s.reactionRepo.Count(ctx, kind, videoID)
	if err != nil {
		return 0, errors.Wrap(err, "查询计数失败")
	}
	publishEvent(ctx, s.publisher, EngagementEvent{Action: action, UserID: p.UserID, VideoID: videoID})
	return count, nil
}
