package repository

import (
	"context"

	"VidHub/internal/model"

	"gorm.io/gorm"
)

type TagRepository interface {
	// FindOrCreate 按名字取标签，不存在的就新建，返回顺序与names一致
	FindOrCreate(ctx context.Context, names []string) ([]model.Tag, error)
	List(ctx context.Context) ([]model.Tag, error)

	WithTx(tx *gorm.DB) TagRepository
}

type tagRepository struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) WithTx(tx *gorm.DB) TagRepository {
	return &tagRepository{db: tx}
}

func (r *tagRepository) FindOrCreate(ctx context.Context, names []string) ([]model.Tag, error) {
	tags := make([]model.Tag, 0, len(names))
	db := r.db.WithContext(ctx)
	for _, name := range names {
		var tag model.Tag
		// SELECT ... WHERE name = ? LIMIT 1，没找到再INSERT
		if err := db.Where(model.Tag{Name: name}).FirstOrCreate(&tag).Error; err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

func (r *tagRepository) List(ctx context.Context) ([]model.Tag, error) {
	var tags []model.Tag
	err := r.db.WithContext(ctx).Order("name asc").Find(&tags).Error
	return tags, err
}
