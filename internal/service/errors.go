package service

import (
	"VidHub/internal/repository"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// 业务层统一的错误，handler据此决定状态码
var (
	ErrNotFound           = errors.New("资源不存在")
	ErrUnauthorized       = errors.New("未登录")
	ErrForbidden          = errors.New("没有权限")
	ErrDuplicate          = errors.New("资源已存在")
	ErrValidation         = errors.New("参数错误")
	ErrInvalidCredentials = errors.New("用户名或密码错误")
	ErrChannelRequired    = errors.New("请先创建频道")
	ErrInvalidResetToken  = errors.New("重置链接无效或已过期")
)

// translateRepoError 把gorm的错误翻译成业务错误，msg作为上下文挂上去
func translateRepoError(err error, msg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return errors.WithMessage(ErrNotFound, msg)
	case repository.IsDuplicateKey(err):
		return errors.WithMessage(ErrDuplicate, msg)
	}
	return errors.Wrap(err, msg)
}

func validationError(msg string) error {
	return errors.WithMessage(ErrValidation, msg)
}
