package repository

import (
	"context"

	"VidHub/internal/model"

	"gorm.io/gorm"
)

type ChannelRepository interface {
	Create(ctx context.Context, channel *model.Channel) error
	Update(ctx context.Context, channel *model.Channel) error
	Delete(ctx context.Context, channelID uint64) error
	FindByID(ctx context.Context, channelID uint64) (*model.Channel, error)
	FindByUserID(ctx context.Context, userID uint64) (*model.Channel, error)
	FindByIDs(ctx context.Context, channelIDs []uint64) ([]model.Channel, error)
	List(ctx context.Context, page, pageSize int) ([]model.Channel, error)
	// 用subscribers表实时计数，回写冗余字段
	RefreshSubscriberCount(ctx context.Context, channelID uint64) (uint64, error)

	WithTx(tx *gorm.DB) ChannelRepository
}

type channelRepository struct {
	db *gorm.DB
}

func NewChannelRepository(db *gorm.DB) ChannelRepository {
	return &channelRepository{db: db}
}

func (r *channelRepository) WithTx(tx *gorm.DB) ChannelRepository {
	return &channelRepository{db: tx}
}

func (r *channelRepository) Create(ctx context.Context, channel *model.Channel) error {
	return r.db.WithContext(ctx).Create(channel).Error
}

// Update 只更新可编辑的字段，不会碰user_id和计数
func (r *channelRepository) Update(ctx context.Context, channel *model.Channel) error {
	return r.db.WithContext(ctx).Model(channel).
		Select("Name", "Description", "ProfilePhotoKey", "ProfilePhotoURL").
		Updates(channel).Error
}

func (r *channelRepository) Delete(ctx context.Context, channelID uint64) error {
	result := r.db.WithContext(ctx).Delete(&model.Channel{}, channelID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *channelRepository) FindByID(ctx context.Context, channelID uint64) (*model.Channel, error) {
	var result model.Channel
	if err := r.db.WithContext(ctx).Preload("User", selectPublicUser).First(&result, channelID).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *channelRepository) FindByUserID(ctx context.Context, userID uint64) (*model.Channel, error) {
	var result model.Channel
	if err := r.db.WithContext(ctx).Preload("User", selectPublicUser).Where("user_id = ?", userID).First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

// FindByIDs 结果按传入的ID顺序排列
func (r *channelRepository) FindByIDs(ctx context.Context, channelIDs []uint64) ([]model.Channel, error) {
	if len(channelIDs) == 0 {
		return []model.Channel{}, nil
	}
	var found []model.Channel
	if err := r.db.WithContext(ctx).Preload("User", selectPublicUser).Where("id IN ?", channelIDs).Find(&found).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint64]model.Channel, len(found))
	for _, ch := range found {
		byID[ch.ID] = ch
	}
	channels := make([]model.Channel, 0, len(found))
	for _, id := range channelIDs {
		if ch, ok := byID[id]; ok {
			channels = append(channels, ch)
		}
	}
	return channels, nil
}

func (r *channelRepository) List(ctx context.Context, page, pageSize int) ([]model.Channel, error) {
	var channels []model.Channel
	err := r.db.WithContext(ctx).
		Preload("User", selectPublicUser).
		Scopes(Paginate(page, pageSize)).
		Order("created_at desc, id desc").
		Find(&channels).Error
	return channels, err
}

func (r *channelRepository) RefreshSubscriberCount(ctx context.Context, channelID uint64) (uint64, error) {
	var count int64
	db := r.db.WithContext(ctx)
	if err := db.Model(&model.Subscriber{}).Where("channel_id = ?", channelID).Count(&count).Error; err != nil {
		return 0, err
	}
	err := db.Model(&model.Channel{}).Where("id = ?", channelID).UpdateColumn("subscriber_count", count).Error
	return uint64(count), err
}
