package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"VidHub/internal/auth"
	"VidHub/internal/model"
	"VidHub/internal/repository"

	"github.com/pkg/errors"
)

type CommentService interface {
	// CreateComment 内容去掉首尾空白后不能为空，最多500个字符
	CreateComment(ctx context.Context, p auth.Principal, videoID uint64, content string) (*model.Comment, error)
	// 获取一个视频的评论，时间倒序
	ListComments(ctx context.Context, videoID uint64, page, pageSize int) ([]model.Comment, error)
	// ListMyComments 和 DeleteComment 使用同一个可见范围：staff看全部，其他人只看自己的
	ListMyComments(ctx context.Context, p auth.Principal, page, pageSize int) ([]model.Comment, error)
	DeleteComment(ctx context.Context, p auth.Principal, commentID uint64) error
}

type commentService struct {
	commentRepo repository.CommentRepository
	videoRepo   repository.VideoRepository
	publisher   EventPublisher
}

func NewCommentService(commentRepo repository.CommentRepository, videoRepo repository.VideoRepository, publisher EventPublisher) CommentService {
	return &commentService{
		commentRepo: commentRepo,
		videoRepo:   videoRepo,
		publisher:   orNoop(publisher),
	}
}

// 创建评论：1、校验内容 2、检查视频存在 3、写库后带着作者信息再查出来 4、投递互动事件
func (s *commentService) CreateComment(ctx context.Context, p auth.Principal, videoID uint64, content string) (*model.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, validationError("评论内容不能为空")
	}
	if utf8.RuneCountInString(content) > model.CommentMaxLength {
		return nil, validationError("评论内容不能超过500个字符")
	}
	if _, err := s.videoRepo.FindByID(ctx, videoID); err != nil {
		return nil, translateRepoError(err, "视频不存在")
	}

	newComment := &model.Comment{
		UserID:  p.UserID,
		VideoID: videoID,
		Content: content,
	}
	if err := s.commentRepo.Create(ctx, newComment); err != nil {
		return nil, translateRepoError(err, "发表评论失败")
	}
	publishEvent(ctx, s.publisher, EngagementEvent{Action: ActionComment, UserID: p.UserID, VideoID: videoID})
	// 创建成功后，立刻把它带着关联数据再查出来，FindByID就能顺带Preload出作者
	return s.commentRepo.FindByID(ctx, newComment.ID)
}

func (s *commentService) ListComments(ctx context.Context, videoID uint64, page, pageSize int) ([]model.Comment, error) {
	if _, err := s.videoRepo.FindByID(ctx, videoID); err != nil {
		return nil, translateRepoError(err, "视频不存在")
	}
	comments, err := s.commentRepo.GetCommentsByVideoID(ctx, videoID, page, pageSize)
	if err != nil {
		return nil, errors.Wrap(err, "查询评论失败")
	}
	return comments, nil
}

func (s *commentService) ListMyComments(ctx context.Context, p auth.Principal, page, pageSize int) ([]model.Comment, error) {
	comments, err := s.commentRepo.ListVisible(ctx, p, page, pageSize)
	if err != nil {
		return nil, errors.Wrap(err, "查询评论失败")
	}
	return comments, nil
}

// DeleteComment 范围外的评论返回ErrNotFound，不区分“不存在”和“不是你的”
func (s *commentService) DeleteComment(ctx context.Context, p auth.Principal, commentID uint64) error {
	comment, err := s.commentRepo.FindVisible(ctx, p, commentID)
	if err != nil {
		return translateRepoError(err, "评论不存在")
	}
	if err := s.commentRepo.DeleteVisible(ctx, p, commentID); err != nil {
		return translateRepoError(err, "评论不存在")
	}
	publishEvent(ctx, s.publisher, EngagementEvent{Action: ActionUncomment, UserID: p.UserID, VideoID: comment.VideoID})
	return nil
}
