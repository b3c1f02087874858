package handler

import (
	"net/http"

	"VidHub/internal/dto"
	"VidHub/internal/service"
	"VidHub/pkg/logger"

	"github.com/gin-gonic/gin"
)

type PlaylistHandler interface {
	ListPlaylists(c *gin.Context)
	GetPlaylist(c *gin.Context)
	CreatePlaylist(c *gin.Context)
	UpdatePlaylist(c *gin.Context)
	DeletePlaylist(c *gin.Context)
	AddVideo(c *gin.Context)
	RemoveVideo(c *gin.Context)
}

type playlistHandler struct {
	PlaylistService service.PlaylistService
}

func NewPlaylistHandler(playlistService service.PlaylistService) PlaylistHandler {
	return &playlistHandler{PlaylistService: playlistService}
}

type PlaylistRequest struct {
	Name string `json:"name" form:"name" binding:"required"`
}

func (h *playlistHandler) ListPlaylists(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}
	page, pageSize := pageQuery(c)
	playlists, err := h.PlaylistService.ListPlaylists(c.Request.Context(), p, page, pageSize)
	if err != nil {
		handleServiceError(c, logger.Log.WithField("user_id", p.UserID), err, "获取歌单失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": dto.ToPlaylistResponses(playlists)})
}

func (h *playlistHandler) GetPlaylist(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}
	playlistID, ok := parseID(c, "playlist_id", "无效的歌单ID")
	if !ok {
		return
	}
	logCtx := logger.Log.WithField("user_id", p.UserID).WithField("playlist_id", playlistID)
	playlist, err := h.PlaylistService.GetPlaylist(c.Request.Context(), p, playlistID)
	if err != nil {
		handleServiceError(c, logCtx, err, "获取歌单失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": dto.ToPlaylistResponse(playlist)})
}

func (h *playlistHandler) CreatePlaylist(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}
	var req PlaylistRequest
	if err := c.ShouldBind(&req); err != nil {
		sendErrorResponse(c, http.StatusBadRequest, "无效的参数")
		return
	}
	logCtx := logger.Log.WithField("user_id", p.UserID)
	playlist, err := h.PlaylistService.CreatePlaylist(c.Request.Context(), p, req.Name)
	if err != nil {
		handleServiceError(c, logCtx, err, "创建歌单失败")
		return
	}
	logCtx.WithField("playlist_id", playlist.ID).Info("歌单创建成功")
	c.JSON(http.StatusCreated, gin.H{
		"message": "歌单创建成功",
		"data":    dto.ToPlaylistResponse(playlist),
	})
}

func (h *playlistHandler) UpdatePlaylist(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}
	playlistID, ok := parseID(c, "playlist_id", "无效的歌单ID")
	if !ok {
		return
	}
	var req PlaylistRequest
	if err := c.ShouldBind(&req); err != nil {
		sendErrorResponse(c, http.StatusBadRequest, "无效的参数")
		return
	}
	logCtx := logger.Log.WithField("user_id", p.UserID).WithField("playlist_id", playlistID)
	playlist, err := h.PlaylistService.RenamePlaylist(c.Request.Context(), p, playlistID, req.Name)
	if err != nil {
		handleServiceError(c, logCtx, err, "更新歌单失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "歌单已更新",
		"data":    dto.ToPlaylistResponse(playlist),
	})
}

func (h *playlistHandler) DeletePlaylist(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}
	playlistID, ok := parseID(c, "playlist_id", "无效的歌单ID")
	if !ok {
		return
	}
	logCtx := logger.Log.WithField("user_id", p.UserID).WithField("playlist_id", playlistID)
	if err := h.PlaylistService.DeletePlaylist(c.Request.Context(), p, playlistID); err != nil {
		handleServiceError(c, logCtx, err, "删除歌单失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "歌单已删除"})
}

func (h *playlistHandler) AddVideo(c *gin.Context) {
	h.changeVideos(c, true)
}

func (h *playlistHandler) RemoveVideo(c *gin.Context) {
	h.changeVideos(c, false)
}

func (h *playlistHandler) changeVideos(c *gin.Context, add bool) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}
	playlistID, ok := parseID(c, "playlist_id", "无效的歌单ID")
	if !ok {
		return
	}
	videoID, ok := parseID(c, "video_id", "无效的视频ID")
	if !ok {
		return
	}
	logCtx := logger.Log.WithField("user_id", p.UserID).WithField("playlist_id", playlistID).WithField("video_id", videoID)

	fn, okMsg, failMsg := h.PlaylistService.RemoveVideo, "已从歌单移除", "从歌单移除失败"
	if add {
		fn, okMsg, failMsg = h.PlaylistService.AddVideo, "已加入歌单", "加入歌单失败"
	}
	playlist, err := fn(c.Request.Context(), p, playlistID, videoID)
	if err != nil {
		handleServiceError(c, logCtx, err, failMsg)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": okMsg,
		"data":    dto.ToPlaylistResponse(playlist),
	})
}
