package repository

import (
	"context"

	"VidHub/internal/auth"
	"VidHub/internal/model"

	"gorm.io/gorm"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	FindByID(ctx context.Context, commentID uint64) (*model.Comment, error)
	// 分页获取视频的评论，时间倒序
	GetCommentsByVideoID(ctx context.Context, videoID uint64, page, pageSize int) ([]model.Comment, error)

	// 下面两个方法共用OwnedBy范围
	ListVisible(ctx context.Context, p auth.Principal, page, pageSize int) ([]model.Comment, error)
	FindVisible(ctx context.Context, p auth.Principal, commentID uint64) (*model.Comment, error)
	DeleteVisible(ctx context.Context, p auth.Principal, commentID uint64) error

	DeleteByVideoIDs(ctx context.Context, videoIDs []uint64) error

	WithTx(tx *gorm.DB) CommentRepository
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

// WithTx 返回一个新的、使用事务的 commentRepository 实例
func (r *commentRepository) WithTx(tx *gorm.DB) CommentRepository {
	return &commentRepository{
		db: tx,
	}
}

func (r *commentRepository) Create(ctx context.Context, comment *model.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

// 利用commentID找comment，并顺便将作者Preload进去
func (r *commentRepository) FindByID(ctx context.Context, commentID uint64) (*model.Comment, error) {
	var result model.Comment
	err := r.db.WithContext(ctx).Preload("User", selectPublicUser).First(&result, commentID).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *commentRepository) GetCommentsByVideoID(ctx context.Context, videoID uint64, page, pageSize int) ([]model.Comment, error) {
	var comments []model.Comment
	err := r.db.WithContext(ctx).
		Preload("User", selectPublicUser). // 预加载评论的作者信息
		Where("video_id = ?", videoID).
		Scopes(Paginate(page, pageSize)).
		Order("created_at desc, id desc").
		Find(&comments).Error
	return comments, err
}

func (r *commentRepository) ListVisible(ctx context.Context, p auth.Principal, page, pageSize int) ([]model.Comment, error) {
	var comments []model.Comment
	err := r.db.WithContext(ctx).
		Preload("User", selectPublicUser).
		Scopes(OwnedBy(p), Paginate(page, pageSize)).
		Order("created_at desc, id desc").
		Find(&comments).Error
	return comments, err
}

func (r *commentRepository) FindVisible(ctx context.Context, p auth.Principal, commentID uint64) (*model.Comment, error) {
	var result model.Comment
	err := r.db.WithContext(ctx).Scopes(OwnedBy(p)).First(&result, commentID).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteVisible 范围外的评论和不存在的评论一样，都返回ErrRecordNotFound
func (r *commentRepository) DeleteVisible(ctx context.Context, p auth.Principal, commentID uint64) error {
	result := r.db.WithContext(ctx).Scopes(OwnedBy(p)).Where("id = ?", commentID).Delete(&model.Comment{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *commentRepository) DeleteByVideoIDs(ctx context.Context, videoIDs []uint64) error {
	if len(videoIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("video_id IN ?", videoIDs).Delete(&model.Comment{}).Error
}
