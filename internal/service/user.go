package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"VidHub/internal/auth"
	"VidHub/internal/model"
	"VidHub/internal/repository"
	"VidHub/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	passwordMinLength = 8
	passwordMaxBytes  = 72 // bcrypt只看前72个字节
	usernameMaxLength = 150
)

// 和gin的binding标签用的是同一个校验库
var validate = validator.New()

// Profile 个人主页：用户本人、他的频道（可能没有）、频道下的视频
type Profile struct {
	User    *model.User
	Channel *model.Channel
	Videos  []model.Video
}

// 用户服务接口：注册、登录、个人主页、修改密码、找回密码
type UserService interface {
	Register(ctx context.Context, username, password, email string) (*model.User, error)
	// Login 用户名或邮箱都可以登录
	Login(ctx context.Context, login, password string) (string, *model.User, error)
	Profile(ctx context.Context, p auth.Principal) (*Profile, error)
	ChangePassword(ctx context.Context, p auth.Principal, oldPassword, newPassword, confirm string) error
	// RequestPasswordReset 用户不存在时返回空token和nil，避免暴露账号是否存在
	RequestPasswordReset(ctx context.Context, login string) (string, error)
	ResetPassword(ctx context.Context, token, newPassword string) error
}

// 用户服务包装
type userService struct {
	userRepo    repository.UserRepository
	channelRepo repository.ChannelRepository
	videoRepo   repository.VideoRepository
	resetTokens repository.ResetTokenStore
	tokens      *auth.TokenManager
	resetTTL    time.Duration
}

// 包装函数
func NewUserService(userRepo repository.UserRepository, channelRepo repository.ChannelRepository, videoRepo repository.VideoRepository,
	resetTokens repository.ResetTokenStore, tokens *auth.TokenManager, resetTTL time.Duration) UserService {
	return &userService{
		userRepo:    userRepo,
		channelRepo: channelRepo,
		videoRepo:   videoRepo,
		resetTokens: resetTokens,
		tokens:      tokens,
		resetTTL:    resetTTL,
	}
}

// validatePassword 长度8~72字节，且不能全是数字
func validatePassword(password string) error {
	if utf8.RuneCountInString(password) < passwordMinLength {
		return validationError("密码至少8位")
	}
	if len(password) > passwordMaxBytes {
		return validationError("密码过长")
	}
	allDigits := true
	for _, r := range password {
		if !unicode.IsDigit(r) {
			allDigits = false
			break
		}
	}
	if allDigits {
		return validationError("密码不能全是数字")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, "密码加密失败")
	}
	return string(hashed), nil
}

// 注册逻辑：1、校验参数 2、检查是否重名 3、密码加密存储 4、插入数据库（唯一索引兜底并发重名）
func (s *userService) Register(ctx context.Context, username, password, email string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || utf8.RuneCountInString(username) > usernameMaxLength {
		return nil, validationError("用户名长度不合法")
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	// 邮箱可以用来登录，必须是合法地址，否则会和别人的用户名混淆
	email = strings.TrimSpace(email)
	if email != "" && validate.Var(email, "email") != nil {
		return nil, validationError("邮箱格式不正确")
	}

	_, err := s.userRepo.FindByUsername(ctx, username)
	if err == nil {
		return nil, errors.WithMessage(ErrDuplicate, "用户名已存在")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrap(err, "查询用户失败")
	}

	hashedPassword, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	newUser := &model.User{
		Username: username,
		Password: hashedPassword,
		Email:    email,
	}
	if err := s.userRepo.Create(ctx, newUser); err != nil {
		return nil, translateRepoError(err, "用户名已存在")
	}
	return newUser, nil
}

// 登录逻辑：1、按用户名或邮箱查找 2、加密后密码和输入密码比对 3、生成jwt签名
func (s *userService) Login(ctx context.Context, login, password string) (string, *model.User, error) {
	user, err := s.userRepo.FindByLogin(ctx, strings.TrimSpace(login))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, errors.Wrap(err, "查询用户失败")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}
	token, err := s.tokens.Generate(auth.Principal{UserID: user.ID, Username: user.Username, IsStaff: user.IsStaff})
	if err != nil {
		return "", nil, errors.Wrap(err, "生成token失败")
	}
	return token, user, nil
}

func (s *userService) Profile(ctx context.Context, p auth.Principal) (*Profile, error) {
	user, err := s.userRepo.FindByID(ctx, p.UserID)
	if err != nil {
		return nil, translateRepoError(err, "用户不存在")
	}
	profile := &Profile{User: user}

	channel, err := s.channelRepo.FindByUserID(ctx, p.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return profile, nil // 还没有频道
	}
	if err != nil {
		return nil, errors.Wrap(err, "查询频道失败")
	}
	profile.Channel = channel
	profile.Videos, err = s.videoRepo.FindByChannelID(ctx, channel.ID)
	if err != nil {
		return nil, errors.Wrap(err, "查询视频失败")
	}
	return profile, nil
}

// 修改密码：两次输入一致、新旧不同、强度合格、旧密码正确
func (s *userService) ChangePassword(ctx context.Context, p auth.Principal, oldPassword, newPassword, confirm string) error {
	if newPassword != confirm {
		return validationError("两次输入的新密码不一致")
	}
	if newPassword == oldPassword {
		return validationError("新密码不能与旧密码相同")
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	user, err := s.userRepo.FindByID(ctx, p.UserID)
	if err != nil {
		return translateRepoError(err, "用户不存在")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)); err != nil {
		return errors.WithMessage(ErrInvalidCredentials, "旧密码错误")
	}
	hashed, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	return translateRepoError(s.userRepo.UpdatePassword(ctx, user.ID, hashed), "更新密码失败")
}

func (s *userService) RequestPasswordReset(ctx context.Context, login string) (string, error) {
	user, err := s.userRepo.FindByLogin(ctx, strings.TrimSpace(login))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Log.WithField("login", login).Info("找回密码的账号不存在")
		return "", nil
	}
	if err != nil {
		return "", errors.Wrap(err, "查询用户失败")
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, "生成重置令牌失败")
	}
	token := hex.EncodeToString(buf)
	if err := s.resetTokens.Save(ctx, token, user.ID, s.resetTTL); err != nil {
		return "", errors.Wrap(err, "保存重置令牌失败")
	}
	// 邮件投递不在本服务范围内，令牌写进日志
	logger.Log.WithField("user_id", user.ID).WithField("reset_token", token).Info("已生成密码重置令牌")
	return token, nil
}

func (s *userService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	userID, err := s.resetTokens.Consume(ctx, token)
	if errors.Is(err, repository.ErrResetTokenNotFound) {
		return ErrInvalidResetToken
	}
	if err != nil {
		return errors.Wrap(err, "读取重置令牌失败")
	}
	hashed, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, hashed); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidResetToken
		}
		return errors.Wrap(err, "更新密码失败")
	}
	return nil
}
