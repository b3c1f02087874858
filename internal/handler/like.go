package handler

import (
	"context"
	"net/http"

	"VidHub/internal/auth"
	"VidHub/internal/service"
	"VidHub/pkg/logger"

	"github.com/gin-gonic/gin"
)

type LikeHandler interface {
	LikeVideo(c *gin.Context)
	UnlikeVideo(c *gin.Context)
	DislikeVideo(c *gin.Context)
	UndislikeVideo(c *gin.Context)
}

type likeHandler struct {
	LikeService service.LikeService
}

func NewLikeHandler(likeService service.LikeService) LikeHandler {
	return &likeHandler{LikeService: likeService}
}

type reactionFunc func(ctx context.Context, p auth.Principal, videoID uint64) (uint64, error)

// react 四个接口的公共流程：1、从URL通过:video_id获取videoID 2、从context获取当前用户 3、执行操作并返回实时计数
func (h *likeHandler) react(c *gin.Context, fn reactionFunc, countField, okMsg, failMsg string) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}
	// :video_id用来定位资源(Resource)，把它放在URL路径里，用c.Param()获取
	videoID, ok := parseID(c, "video_id", "无效的视频ID")
	if !ok {
		return
	}
	logCtx := logger.Log.WithField("user_id", p.UserID).WithField("video_id", videoID)

	count, err := fn(c.Request.Context(), p, videoID)
	if err != nil {
		handleServiceError(c, logCtx, err, failMsg)
		return
	}
	logCtx.Info(okMsg)
	c.JSON(http.StatusOK, gin.H{
		"message": okMsg,
		"data":    gin.H{"video_id": videoID, countField: count},
	})
}

func (h *likeHandler) LikeVideo(c *gin.Context) {
	h.react(c, h.LikeService.LikeVideo, "like_count", "点赞成功", "点赞失败")
}

func (h *likeHandler) UnlikeVideo(c *gin.Context) {
	h.react(c, h.LikeService.UnlikeVideo, "like_count", "取消点赞成功", "取消点赞失败")
}

func (h *likeHandler) DislikeVideo(c *gin.Context) {
	h.react(c, h.LikeService.DislikeVideo, "dislike_count", "点踩成功", "点踩失败")
}

func (h *likeHandler) UndislikeVideo(c *gin.Context) {
	h.react(c, h.LikeService.UndislikeVideo, "dislike_count", "取消点踩成功", "取消点踩失败")
}
