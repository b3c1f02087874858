package repository

import (
	"context"

	"VidHub/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SubscriberRepository interface {
	// Add 幂等：已经关注过就什么都不做
	Add(ctx context.Context, channelID, userID uint64) error
	// Remove 幂等：没关注过也不报错
	Remove(ctx context.Context, channelID, userID uint64) error
	Exists(ctx context.Context, channelID, userID uint64) (bool, error)
	CountByChannel(ctx context.Context, channelID uint64) (uint64, error)
	ChannelIDsByUser(ctx context.Context, userID uint64) ([]uint64, error)
	DeleteByChannel(ctx context.Context, channelID uint64) error

	WithTx(tx *gorm.DB) SubscriberRepository
}

type subscriberRepository struct {
	db *gorm.DB
}

func NewSubscriberRepository(db *gorm.DB) SubscriberRepository {
	return &subscriberRepository{db: db}
}

func (r *subscriberRepository) WithTx(tx *gorm.DB) SubscriberRepository {
	return &subscriberRepository{db: tx}
}

func (r *subscriberRepository) Add(ctx context.Context, channelID, userID uint64) error {
	// 使用GORM的 OnConflict：如果因为唯一键冲突失败，就什么都不做
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "channel_id"}, {Name: "user_id"}},
		DoNothing: true,
	}).Create(&model.Subscriber{ChannelID: channelID, UserID: userID}).Error
}

func (r *subscriberRepository) Remove(ctx context.Context, channelID, userID uint64) error {
	return r.db.WithContext(ctx).
		Where("channel_id = ? AND user_id = ?", channelID, userID).
		Delete(&model.Subscriber{}).Error
}

func (r *subscriberRepository) Exists(ctx context.Context, channelID, userID uint64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Subscriber{}).
		Where("channel_id = ? AND user_id = ?", channelID, userID).
		Count(&n).Error
	return n > 0, err
}

func (r *subscriberRepository) CountByChannel(ctx context.Context, channelID uint64) (uint64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Subscriber{}).Where("channel_id = ?", channelID).Count(&n).Error
	return uint64(n), err
}

func (r *subscriberRepository) ChannelIDsByUser(ctx context.Context, userID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).Model(&model.Subscriber{}).
		Where("user_id = ?", userID).
		Order("created_at desc, id desc").
		Pluck("channel_id", &ids).Error
	return ids, err
}

func (r *subscriberRepository) DeleteByChannel(ctx context.Context, channelID uint64) error {
	return r.db.WithContext(ctx).Where("channel_id = ?", channelID).Delete(&model.Subscriber{}).Error
}
