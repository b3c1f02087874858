package handler

import (
	"net/http"

	"VidHub/internal/dto"
	"VidHub/internal/service"
	"VidHub/pkg/logger"

	"github.com/gin-gonic/gin"
)

type UserHandler interface {
	Register(c *gin.Context)
	Login(c *gin.Context)
	GetProfile(c *gin.Context)
	ChangePassword(c *gin.Context)
	RequestPasswordReset(c *gin.Context)
	ConfirmPasswordReset(c *gin.Context)
}

// 对Service进行封装
type userHandler struct {
	UserService service.UserService
	// 没有邮件服务时，开发环境直接在响应里返回重置令牌
	exposeResetToken bool
}

// 封装函数
func NewUserHandler(userService service.UserService, exposeResetToken bool) UserHandler {
	return &userHandler{UserService: userService, exposeResetToken: exposeResetToken}
}

// 用处：接收http发来的全部注册信息，用户名+密码+可选邮箱
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Email    string `json:"email" binding:"omitempty,email"`
}

// Username 也可以填邮箱
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type ChangePasswordRequest struct {
	OldPassword     string `json:"old_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

type PasswordResetRequest struct {
	Login string `json:"login" binding:"required"`
}

type PasswordResetConfirmRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// 注册：1、请求体解析为注册请求结构体 2、service层注册 3、返回注册成功后的User
func (h *userHandler) Register(c *gin.Context) {
	var req RegisterRequest
	// c.ShouldBindJSON，绑定和校验，如果请求中不包含req的“required”字段，则会返回错误
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Log.WithError(err).Error("请求参数解析失败")
		sendErrorResponse(c, http.StatusBadRequest, "无效的参数")
		return
	}

	logCtx := logger.Log.WithField("username", req.Username)
	logCtx.Info("开始处理用户注册请求")

	user, err := h.UserService.Register(c.Request.Context(), req.Username, req.Password, req.Email)
	if err != nil {
		handleServiceError(c, logCtx, err, "用户注册失败")
		return
	}

	logCtx.WithField("user_id", user.ID).Info("用户注册成功")
	c.JSON(http.StatusCreated, gin.H{
		"message": "注册成功",
		"data":    dto.ToUserResponse(user),
	})
}

// 登录：1、请求体解析为登录结构体 2、交给service层登录 3、成功则返回token
func (h *userHandler) Login(c *gin.Context) {
	var login LoginRequest
	if err := c.ShouldBindJSON(&login); err != nil {
		logger.Log.WithError(err).Error("登录请求参数解析失败")
		sendErrorResponse(c, http.StatusBadRequest, "无效的参数")
		return
	}

	logCtx := logger.Log.WithField("username", login.Username)
	logCtx.Info("开始处理用户登录请求")

	token, user, err := h.UserService.Login(c.Request.Context(), login.Username, login.Password)
	if err != nil {
		handleServiceError(c, logCtx, err, "用户登录失败")
		return
	}

	logCtx.WithField("user_id", user.ID).Info("用户登录成功")
	c.JSON(http.StatusOK, gin.H{
		"message": "登录成功",
		"data":    dto.LoginResponse{Token: token, User: dto.ToUserResponse(user)},
	})
}

// 获取个人主页：用户信息、自己的频道和频道下的视频
func (h *userHandler) GetProfile(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}
	logCtx := logger.Log.WithField("user_id", p.UserID)

	profile, err := h.UserService.Profile(c.Request.Context(), p)
	if err != nil {
		handleServiceError(c, logCtx, err, "获取用户信息失败")
		return
	}

	resp := dto.ProfileResponse{
		User:   dto.ToUserResponse(profile.User),
		Videos: dto.ToVideoResponses(profile.Videos),
	}
	if profile.Channel != nil {
		ch := dto.ToChannelResponse(profile.Channel)
		resp.Channel = &ch
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "成功获取用户信息",
		"data":    resp,
	})
}

func (h *userHandler) ChangePassword(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendErrorResponse(c, http.StatusBadRequest, "无效的参数")
		return
	}
	logCtx := logger.Log.WithField("user_id", p.UserID)
	logCtx.Info("开始处理修改密码请求")

	if err := h.UserService.ChangePassword(c.Request.Context(), p, req.OldPassword, req.NewPassword, req.ConfirmPassword); err != nil {
		handleServiceError(c, logCtx, err, "修改密码失败")
		return
	}
	logCtx.Info("修改密码成功")
	c.JSON(http.StatusOK, gin.H{"message": "密码已修改"})
}

// 申请重置密码：账号不存在时也返回成功，避免被用来探测账号
func (h *userHandler) RequestPasswordReset(c *gin.Context) {
	var req PasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendErrorResponse(c, http.StatusBadRequest, "无效的参数")
		return
	}
	logCtx := logger.Log.WithField("ip", c.ClientIP())

	token, err := h.UserService.RequestPasswordReset(c.Request.Context(), req.Login)
	if err != nil {
		handleServiceError(c, logCtx, err, "申请重置密码失败")
		return
	}
	resp := gin.H{"message": "如果账号存在，重置方式已发送"}
	if h.exposeResetToken && token != "" {
		resp["data"] = gin.H{"reset_token": token}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *userHandler) ConfirmPasswordReset(c *gin.Context) {
	var req PasswordResetConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendErrorResponse(c, http.StatusBadRequest, "无效的参数")
		return
	}
	logCtx := logger.Log.WithField("ip", c.ClientIP())

	if err := h.UserService.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		handleServiceError(c, logCtx, err, "重置密码失败")
		return
	}
	logCtx.Info("重置密码成功")
	c.JSON(http.StatusOK, gin.H{"message": "密码已重置"})
}
