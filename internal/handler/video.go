package handler

import (
	"net/http"

	"VidHub/internal/dto"
	"VidHub/internal/service"
	"VidHub/pkg/logger"

	"github.com/gin-gonic/gin"
)

type VideoHandler interface {
	CreateVideo(c *gin.Context)
	UpdateVideo(c *gin.Context)
	DeleteVideo(c *gin.Context)

	GetVideoByID(c *gin.Context)
	GetFeed(c *gin.Context)
	RedirectMedia(c *gin.Context)
	RedirectThumbnail(c *gin.Context)
}

type videoHandler struct {
	VideoService service.VideoService
}

func NewVideoHandler(videoService service.VideoService) VideoHandler {
	return &videoHandler{VideoService: videoService}
}

// 上传视频只接受multipart：video_file必填，thumbnail可选
type CreateVideoRequest struct {
	Title       string   `form:"title" binding:"required"`
	Description string   `form:"description"`
	Tags        []string `form:"tags"`
}

// 字段缺省表示不修改；tags出现时整体替换
type UpdateVideoRequest struct {
	Title       *string  `json:"title" form:"title"`
	Description *string  `json:"description" form:"description"`
	Tags        []string `json:"tags" form:"tags"`
}

// 创建视频：1、解析表单和当前用户 2、service层保存文件并发布视频 3、将返回的视频结构通过dto传回
func (h *videoHandler) CreateVideo(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}
	if !isMultipart(c) {
		sendErrorResponse(c, http.StatusBadRequest, "请使用multipart/form-data上传视频")
		return
	}
	var req CreateVideoRequest
	if err := c.ShouldBind(&req); err != nil {
		logger.Log.WithError(err).Error("发布视频参数解析失败")
		sendErrorResponse(c, http.StatusBadRequest, "无效的参数")
		return
	}
	media, err := formFile(c, "video_file")
	if err != nil || media == nil {
		sendErrorResponse(c, http.StatusBadRequest, "请选择视频文件")
		return
	}
	thumbnail, err := formFile(c, "thumbnail")
	if err != nil {
		sendErrorResponse(c, http.StatusBadRequest, "无效的封面文件")
		return
	}
	// 蛇形命名法（日志聚合平台ELK、前端JavaScript）
	logCtx := logger.Log.WithField("user_id", p.UserID)
	logCtx.Info("开始处理发布视频请求")

	video, err := h.VideoService.CreateVideo(c.Request.Context(), p, service.VideoInput{
		Title:       req.Title,
		Description: req.Description,
		Tags:        splitTags(req.Tags),
		Media:       media,
		Thumbnail:   thumbnail,
	})
	if err != nil {
		handleServiceError(c, logCtx, err, "发布视频失败")
		return
	}
	// 没有赋值，临时追加上下文，避免污染后续其他日志
	logCtx.WithField("video_id", video.ID).Info("视频发布成功")

	c.JSON(http.StatusCreated, gin.H{ // 使用201 Created状态码，更符合RESTful规范
		"message": "视频发布成功",
		"data":    dto.ToVideoResponse(video),
	})
}

func (h *videoHandler) UpdateVideo(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}
	videoID, ok := parseID(c, "video_id", "无效的视频ID")
	if !ok {
		return
	}
	var req UpdateVideoRequest
	if err := c.ShouldBind(&req); err != nil {
		sendErrorResponse(c, http.StatusBadRequest, "无效的参数")
		return
	}
	thumbnail, err := formFile(c, "thumbnail")
	if err != nil {
		sendErrorResponse(c, http.StatusBadRequest, "无效的封面文件")
		return
	}
	logCtx := logger.Log.WithField("user_id", p.UserID).WithField("video_id", videoID)
	logCtx.Info("开始处理更新视频请求")

	video, err := h.VideoService.UpdateVideo(c.Request.Context(), p, videoID, service.VideoUpdate{
		Title:       req.Title,
		Description: req.Description,
		Tags:        splitTags(req.Tags),
		Thumbnail:   thumbnail,
	})
	if err != nil {
		handleServiceError(c, logCtx, err, "更新视频失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "视频已更新",
		"data":    dto.ToVideoResponse(video),
	})
}

func (h *videoHandler) DeleteVideo(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}
	videoID, ok := parseID(c, "video_id", "无效的视频ID")
	if !ok {
		return
	}
	logCtx := logger.Log.WithField("user_id", p.UserID).WithField("video_id", videoID)
	logCtx.Info("开始处理删除视频请求")

	if err := h.VideoService.DeleteVideo(c.Request.Context(), p, videoID); err != nil {
		handleServiceError(c, logCtx, err, "删除视频失败")
		return
	}
	logCtx.Info("视频已删除")
	c.JSON(http.StatusOK, gin.H{"message": "视频已删除"})
}

// 视频详情：?page=&page_size= 控制评论分页
func (h *videoHandler) GetVideoByID(c *gin.Context) {
	videoID, ok := parseID(c, "video_id", "无效的视频ID")
	if !ok {
		return
	}
	page, pageSize := pageQuery(c)
	logCtx := logger.Log.WithField("video_id", videoID)
	logCtx.Info("开始处理查找视频请求")

	detail, err := h.VideoService.GetVideo(c.Request.Context(), videoID, optionalPrincipal(c), page, pageSize)
	if err != nil {
		handleServiceError(c, logCtx, err, "查找视频失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": dto.ToVideoDetailResponse(detail)})
}

// 可以无限向下滑动、不断出现新内容的主界面，就是最典型的Feed流
// 获取视频Feed流：1、将请求附上用户IP，进行问题溯源 2、通过service层请求Feed流 3、dto层转换后返回
func (h *videoHandler) GetFeed(c *gin.Context) {
	page, pageSize := pageQuery(c)
	tag := c.Query("tag")
	// 攻击溯源，用户分析，问题排查
	logCtx := logger.Log.WithField("ip", c.ClientIP()).WithField("tag", tag)
	logCtx.Info("开始处理获取Feed流请求")

	videos, err := h.VideoService.ListVideos(c.Request.Context(), page, pageSize, tag)
	if err != nil {
		handleServiceError(c, logCtx, err, "获取视频流失败")
		return
	}

	response := dto.ToVideoResponses(videos)
	logCtx.WithField("count", len(response)).Info("成功获取Feed流")
	c.JSON(http.StatusOK, gin.H{
		"message": "成功获取视频流",
		"data":    response,
	})
}

func (h *videoHandler) RedirectMedia(c *gin.Context) {
	videoID, ok := parseID(c, "video_id", "无效的视频ID")
	if !ok {
		return
	}
	url, err := h.VideoService.MediaURL(c.Request.Context(), videoID)
	if err != nil {
		handleServiceError(c, logger.Log.WithField("video_id", videoID), err, "获取视频地址失败")
		return
	}
	c.Redirect(http.StatusFound, url)
}

func (h *videoHandler) RedirectThumbnail(c *gin.Context) {
	videoID, ok := parseID(c, "video_id", "无效的视频ID")
	if !ok {
		return
	}
	url, err := h.VideoService.ThumbnailURL(c.Request.Context(), videoID)
	if err != nil {
		handleServiceError(c, logger.Log.WithField("video_id", videoID), err, "获取封面地址失败")
		return
	}
	c.Redirect(http.StatusFound, url)
}
