package repository

import (
	"context"
	"errors"
	"strings"

	"VidHub/internal/model"

	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, userID uint64) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	// FindByLogin 先按用户名精确匹配，没有且输入像邮箱（含@）时再按邮箱查找
	FindByLogin(ctx context.Context, login string) (*model.User, error)
	UpdatePassword(ctx context.Context, userID uint64, hashedPassword string) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, userID uint64) (*model.User, error) {
	var result model.User
	if err := r.db.WithContext(ctx).First(&result, userID).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var result model.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&result).Error
	if err != nil {
		return nil, err // 如果有错（包括没找到），直接返回
	}
	return &result, nil
}

func (r *userRepository) FindByLogin(ctx context.Context, login string) (*model.User, error) {
	user, err := r.FindByUsername(ctx, login)
	if err == nil || !errors.Is(err, gorm.ErrRecordNotFound) {
		return user, err
	}
	// 用户名唯一而邮箱不唯一，邮箱永远不能盖过别人的用户名
	if !strings.Contains(login, "@") {
		return nil, err
	}
	var result model.User
	if err := r.db.WithContext(ctx).Where("email = ?", login).Order("id").First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, userID uint64, hashedPassword string) error {
	result := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", userID).Update("password", hashedPassword)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
