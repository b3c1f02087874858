package handler

import (
	"fmt"
	"io"
	"net/http"

	"VidHub/internal/dto"
	"VidHub/internal/service"
	"VidHub/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/pkg/errors"
)

type ChannelHandler interface {
	ListChannels(c *gin.Context)
	GetChannel(c *gin.Context)
	CreateChannel(c *gin.Context)
	UpdateChannel(c *gin.Context)
	DeleteChannel(c *gin.Context)
	Subscribe(c *gin.Context)
	ListSubscriptions(c *gin.Context)
}

type channelHandler struct {
	ChannelService service.ChannelService
}

func NewChannelHandler(channelService service.ChannelService) ChannelHandler {
	return &channelHandler{ChannelService: channelService}
}

// JSON或multipart都可以，multipart时可以带profile_photo文件
type CreateChannelRequest struct {
	Name        string `json:"name" form:"name" binding:"required"`
	Description string `json:"description" form:"description"`
}

type UpdateChannelRequest struct {
	Name        *string `json:"name" form:"name"`
	Description *string `json:"description" form:"description"`
}

func (h *channelHandler) ListChannels(c *gin.Context) {
	page, pageSize := pageQuery(c)
	logCtx := logger.Log.WithField("ip", c.ClientIP())

	channels, err := h.ChannelService.ListChannels(c.Request.Context(), page, pageSize)
	if err != nil {
		handleServiceError(c, logCtx, err, "获取频道列表失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "成功获取频道列表",
		"data":    dto.ToChannelResponses(channels),
	})
}

func (h *channelHandler) GetChannel(c *gin.Context) {
	channelID, ok := parseID(c, "channel_id", "无效的频道ID")
	if !ok {
		return
	}
	logCtx := logger.Log.WithField("channel_id", channelID)

	detail, err := h.ChannelService.GetChannel(c.Request.Context(), channelID, optionalPrincipal(c))
	if err != nil {
		handleServiceError(c, logCtx, err, "获取频道失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": dto.ToChannelDetailResponse(detail)})
}

func (h *channelHandler) CreateChannel(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}
	var req CreateChannelRequest
	// ShouldBind按Content-Type选择JSON或表单绑定
	if err := c.ShouldBind(&req); err != nil {
		logger.Log.WithError(err).Error("创建频道参数解析失败")
		sendErrorResponse(c, http.StatusBadRequest, "无效的参数")
		return
	}
	photo, err := formFile(c, "profile_photo")
	if err != nil {
		sendErrorResponse(c, http.StatusBadRequest, "无效的头像文件")
		return
	}
	logCtx := logger.Log.WithField("user_id", p.UserID)
	logCtx.Info("开始处理创建频道请求")

	channel, err := h.ChannelService.CreateChannel(c.Request.Context(), p, service.ChannelInput{
		Name:        req.Name,
		Description: req.Description,
		Photo:       photo,
	})
	if err != nil {
		handleServiceError(c, logCtx, err, "创建频道失败")
		return
	}
	logCtx.WithField("channel_id", channel.ID).Info("频道创建成功")
	c.JSON(http.StatusCreated, gin.H{
		"message": "频道创建成功",
		"data":    dto.ToChannelResponse(channel),
	})
}

func (h *channelHandler) UpdateChannel(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}
	channelID, ok := parseID(c, "channel_id", "无效的频道ID")
	if !ok {
		return
	}
	var req UpdateChannelRequest
	if err := c.ShouldBind(&req); err != nil {
		sendErrorResponse(c, http.StatusBadRequest, "无效的参数")
		return
	}
	photo, err := formFile(c, "profile_photo")
	if err != nil {
		sendErrorResponse(c, http.StatusBadRequest, "无效的头像文件")
		return
	}
	logCtx := logger.Log.WithField("user_id", p.UserID).WithField("channel_id", channelID)
	logCtx.Info("开始处理更新频道请求")

	channel, err := h.ChannelService.UpdateChannel(c.Request.Context(), p, channelID, service.ChannelUpdate{
		Name:        req.Name,
		Description: req.Description,
		Photo:       photo,
	})
	if err != nil {
		handleServiceError(c, logCtx, err, "更新频道失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "频道已更新",
		"data":    dto.ToChannelResponse(channel),
	})
}

func (h *channelHandler) DeleteChannel(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}
	channelID, ok := parseID(c, "channel_id", "无效的频道ID")
	if !ok {
		return
	}
	logCtx := logger.Log.WithField("user_id", p.UserID).WithField("channel_id", channelID)
	logCtx.Info("开始处理删除频道请求")

	if err := h.ChannelService.DeleteChannel(c.Request.Context(), p, channelID); err != nil {
		handleServiceError(c, logCtx, err, "删除频道失败")
		return
	}
	logCtx.Info("频道已删除")
	c.JSON(http.StatusOK, gin.H{"message": "频道已删除"})
}

// parseSubscribeFlag 只有值为"true"（或JSON里的true）才是关注，其他一律视为取消关注
func parseSubscribeFlag(c *gin.Context) (bool, error) {
	if c.ContentType() == binding.MIMEJSON {
		var body struct {
			Subscribe interface{} `json:"subscribe"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			// 空请求体等同于没有subscribe字段，按取消关注处理
			if errors.Is(err, io.EOF) {
				return false, nil
			}
			return false, err
		}
		return fmt.Sprint(body.Subscribe) == "true", nil
	}
	return c.DefaultPostForm("subscribe", "false") == "true", nil
}

// 关注/取消关注：返回 {"status":"success","new_subscription_count":n}
func (h *channelHandler) Subscribe(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}
	channelID, ok := parseID(c, "channel_id", "无效的频道ID")
	if !ok {
		return
	}
	subscribe, err := parseSubscribeFlag(c)
	if err != nil {
		sendErrorResponse(c, http.StatusBadRequest, "无效的参数")
		return
	}
	logCtx := logger.Log.WithField("user_id", p.UserID).WithField("channel_id", channelID).WithField("subscribe", subscribe)
	logCtx.Info("开始处理关注请求")

	count, err := h.ChannelService.ToggleSubscription(c.Request.Context(), p, channelID, subscribe)
	if err != nil {
		handleServiceError(c, logCtx, err, "关注操作失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":                 "success",
		"new_subscription_count": count,
	})
}

func (h *channelHandler) ListSubscriptions(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}
	logCtx := logger.Log.WithField("user_id", p.UserID)

	subs, err := h.ChannelService.ListSubscriptions(c.Request.Context(), p)
	if err != nil {
		handleServiceError(c, logCtx, err, "获取关注列表失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "成功获取关注列表",
		"data":    dto.ToSubscriptionsResponse(subs),
	})
}
