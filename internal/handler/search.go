package handler

import (
	"net/http"

	"VidHub/internal/dto"
	"VidHub/internal/service"
	"VidHub/pkg/logger"

	"github.com/gin-gonic/gin"
)

type SearchHandler interface {
	ListTags(c *gin.Context)
	Search(c *gin.Context)
	SearchHistory(c *gin.Context)
}

type searchHandler struct {
	VideoService service.VideoService
}

func NewSearchHandler(videoService service.VideoService) SearchHandler {
	return &searchHandler{VideoService: videoService}
}

func (h *searchHandler) ListTags(c *gin.Context) {
	tags, err := h.VideoService.ListTags(c.Request.Context())
	if err != nil {
		handleServiceError(c, logger.Log.WithField("ip", c.ClientIP()), err, "获取标签失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": dto.ToTagResponses(tags)})
}

// 搜索：?q=关键字，登录用户的搜索会记入历史
func (h *searchHandler) Search(c *gin.Context) {
	page, pageSize := pageQuery(c)
	query := c.Query("q")
	viewer := optionalPrincipal(c)
	logCtx := logger.Log.WithField("q", query)
	if viewer != nil {
		logCtx = logCtx.WithField("user_id", viewer.UserID)
	}

	videos, err := h.VideoService.Search(c.Request.Context(), viewer, query, page, pageSize)
	if err != nil {
		handleServiceError(c, logCtx, err, "搜索失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "搜索成功",
		"data":    dto.ToVideoResponses(videos),
	})
}

func (h *searchHandler) SearchHistory(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}
	page, pageSize := pageQuery(c)
	searches, err := h.VideoService.SearchHistory(c.Request.Context(), p, page, pageSize)
	if err != nil {
		handleServiceError(c, logger.Log.WithField("user_id", p.UserID), err, "获取搜索历史失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": dto.ToSearchResponses(searches)})
}
