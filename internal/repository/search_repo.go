package repository

import (
	"context"

	"VidHub/internal/auth"
	"VidHub/internal/model"

	"gorm.io/gorm"
)

type SearchRepository interface {
	Create(ctx context.Context, search *model.Search) error
	// 搜索历史同样用OwnedBy范围：staff看全部
	ListVisible(ctx context.Context, p auth.Principal, page, pageSize int) ([]model.Search, error)
}

type searchRepository struct {
	db *gorm.DB
}

func NewSearchRepository(db *gorm.DB) SearchRepository {
	return &searchRepository{db: db}
}

func (r *searchRepository) Create(ctx context.Context, search *model.Search) error {
	return r.db.WithContext(ctx).Create(search).Error
}

func (r *searchRepository) ListVisible(ctx context.Context, p auth.Principal, page, pageSize int) ([]model.Search, error) {
	var searches []model.Search
	err := r.db.WithContext(ctx).
		Scopes(OwnedBy(p), Paginate(page, pageSize)).
		Order("created_at desc, id desc").
		Find(&searches).Error
	return searches, err
}
