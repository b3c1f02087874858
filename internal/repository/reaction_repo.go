package repository

import (
	"context"
	"fmt"

	"VidHub/internal/model"

	"gorm.io/gorm"
)

// ReactionKind 区分“赞”和“踩”，两者各自是一张(user, video)唯一的关联表
type ReactionKind string

const (
	ReactionLike    ReactionKind = "like"
	ReactionDislike ReactionKind = "dislike"
)

type ReactionRepository interface {
	Create(ctx context.Context, kind ReactionKind, userID, videoID uint64) error
	// 没有这条记录时返回ErrRecordNotFound
	Delete(ctx context.Context, kind ReactionKind, userID, videoID uint64) error
	Exists(ctx context.Context, kind ReactionKind, userID, videoID uint64) (bool, error)
	Count(ctx context.Context, kind ReactionKind, videoID uint64) (uint64, error)
	DeleteByVideoIDs(ctx context.Context, videoIDs []uint64) error

	WithTx(tx *gorm.DB) ReactionRepository
}

type reactionRepository struct {
	db *gorm.DB
}

func NewReactionRepository(db *gorm.DB) ReactionRepository {
	return &reactionRepository{db: db}
}

func (r *reactionRepository) WithTx(tx *gorm.DB) ReactionRepository {
	return &reactionRepository{db: tx}
}

// 不同kind对应不同的模型（表）
func reactionModel(kind ReactionKind, userID, videoID uint64) (interface{}, error) {
	switch kind {
	case ReactionLike:
		return &model.Like{UserID: userID, VideoID: videoID}, nil
	case ReactionDislike:
		return &model.Dislike{UserID: userID, VideoID: videoID}, nil
	}
	return nil, fmt.Errorf("unknown reaction kind: %s", kind)
}

func (r *reactionRepository) Create(ctx context.Context, kind ReactionKind, userID, videoID uint64) error {
	row, err := reactionModel(kind, userID, videoID)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *reactionRepository) Delete(ctx context.Context, kind ReactionKind, userID, videoID uint64) error {
	row, err := reactionModel(kind, 0, 0)
	if err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Where("user_id = ? AND video_id = ?", userID, videoID).Delete(row)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *reactionRepository) Exists(ctx context.Context, kind ReactionKind, userID, videoID uint64) (bool, error) {
	row, err := reactionModel(kind, 0, 0)
	if err != nil {
		return false, err
	}
	var n int64
	err = r.db.WithContext(ctx).Model(row).Where("user_id = ? AND video_id = ?", userID, videoID).Count(&n).Error
	return n > 0, err
}

func (r *reactionRepository) Count(ctx context.Context, kind ReactionKind, videoID uint64) (uint64, error) {
	row, err := reactionModel(kind, 0, 0)
	if err != nil {
		return 0, err
	}
	var n int64
	err = r.db.WithContext(ctx).Model(row).Where("video_id = ?", videoID).Count(&n).Error
	return uint64(n), err
}

func (r *reactionRepository) DeleteByVideoIDs(ctx context.Context, videoIDs []uint64) error {
	if len(videoIDs) == 0 {
		return nil
	}
	db := r.db.WithContext(ctx)
	if err := db.Where("video_id IN ?", videoIDs).Delete(&model.Like{}).Error; err != nil {
		return err
	}
	return db.Where("video_id IN ?", videoIDs).Delete(&model.Dislike{}).Error
}
