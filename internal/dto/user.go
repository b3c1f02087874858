package dto

import (
	"time"

	"VidHub/internal/model"
)

// UserInfo 是在DTO中使用的、简化的用户信息
type UserInfo struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
}

// UserResponse 只给本人看的用户信息，带邮箱和staff标记
type UserResponse struct {
	ID        uint64    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	IsStaff   bool      `json:"is_staff"`
	CreatedAt time.Time `json:"created_at"`
}

func ToUserInfo(user *model.User) UserInfo {
	return UserInfo{ID: user.ID, Username: user.Username}
}

func ToUserResponse(user *model.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		IsStaff:   user.IsStaff,
		CreatedAt: user.CreatedAt,
	}
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type ProfileResponse struct {
	User    UserResponse     `json:"user"`
	Channel *ChannelResponse `json:"channel"` // 还没有频道时为null
	Videos  []VideoResponse  `json:"videos"`
}
