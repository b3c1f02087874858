package handler

import (
	"net/http"

	"VidHub/internal/dto"
	"VidHub/internal/service"
	"VidHub/pkg/logger"

	"github.com/gin-gonic/gin"
)

type CommentHandler interface {
	CreateCommentForVideo(c *gin.Context)
	GetComments(c *gin.Context)
	ListMyComments(c *gin.Context)
	DeleteComment(c *gin.Context)
}

type commentHandler struct {
	CommentService service.CommentService
}

func NewCommentHandler(commentService service.CommentService) CommentHandler {
	return &commentHandler{CommentService: commentService}
}

// 长度限制在service层按字符校验
type CreateCommentRequest struct {
	Content string `json:"content" form:"content" binding:"required"`
}

// 视频评论：1、解析URL中的videoID 2、解析Body 3、获取当前用户 4、创建评论并返回
func (h *commentHandler) CreateCommentForVideo(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}
	videoID, ok := parseID(c, "video_id", "无效的视频ID")
	if !ok {
		return
	}
	var req CreateCommentRequest
	if err := c.ShouldBind(&req); err != nil {
		logger.Log.WithError(err).Error("评论参数解析失败")
		sendErrorResponse(c, http.StatusBadRequest, "无效的参数") // 400
		return
	}

	// 正式进入业务前，将logger格式整理好
	logCtx := logger.Log.WithField("user_id", p.UserID).WithField("video_id", videoID)
	logCtx.Info("开始创建评论")
	comment, err := h.CommentService.CreateComment(c.Request.Context(), p, videoID, req.Content)
	if err != nil {
		handleServiceError(c, logCtx, err, "评论失败")
		return
	}
	logCtx.WithField("comment_id", comment.ID).Info("评论成功")
	c.JSON(http.StatusCreated, gin.H{
		"message": "评论成功",
		"data":    dto.ToCommentResponse(comment),
	})
}

// 获取视频的评论列表，?page=&page_size=
func (h *commentHandler) GetComments(c *gin.Context) {
	videoID, ok := parseID(c, "video_id", "无效的视频ID")
	if !ok {
		return
	}
	page, pageSize := pageQuery(c)
	logCtx := logger.Log.WithField("video_id", videoID)

	comments, err := h.CommentService.ListComments(c.Request.Context(), videoID, page, pageSize)
	if err != nil {
		handleServiceError(c, logCtx, err, "获取评论失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "成功获取评论",
		"data":    dto.ToCommentResponses(comments),
	})
}

// 我的评论：staff看到全部
func (h *commentHandler) ListMyComments(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}
	page, pageSize := pageQuery(c)
	logCtx := logger.Log.WithField("user_id", p.UserID)

	comments, err := h.CommentService.ListMyComments(c.Request.Context(), p, page, pageSize)
	if err != nil {
		handleServiceError(c, logCtx, err, "获取评论失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "成功获取评论",
		"data":    dto.ToCommentResponses(comments),
	})
}

func (h *commentHandler) DeleteComment(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}
	commentID, ok := parseID(c, "comment_id", "无效的评论ID")
	if !ok {
		return
	}
	logCtx := logger.Log.WithField("user_id", p.UserID).WithField("comment_id", commentID)
	logCtx.Info("开始删除评论")

	if err := h.CommentService.DeleteComment(c.Request.Context(), p, commentID); err != nil {
		handleServiceError(c, logCtx, err, "删除评论失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "评论已删除"})
}
