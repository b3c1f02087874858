package handler

import (
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"VidHub/internal/auth"
	"VidHub/internal/middleware"
	"VidHub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ErrorResponse 定义了标准的API错误响应结构
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// sendErrorResponse 是一个辅助函数，用于发送标准格式的错误响应
func sendErrorResponse(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, ErrorResponse{Status: "error", Message: message})
}

// handleServiceError 按业务错误决定状态码，未知错误统一500且不把细节暴露给前端
func handleServiceError(c *gin.Context, logCtx *logrus.Entry, err error, fallback string) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrInvalidResetToken), errors.Is(err, service.ErrChannelRequired):
		code = http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthorized), errors.Is(err, service.ErrInvalidCredentials):
		code = http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		code = http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, service.ErrDuplicate):
		code = http.StatusConflict
	}
	if code == http.StatusInternalServerError {
		logCtx.WithError(err).Error(fallback)
		sendErrorResponse(c, code, fallback)
		return
	}
	logCtx.WithError(err).Warn(fallback)
	sendErrorResponse(c, code, err.Error())
}

// parseID 从URL路径里取出ID，失败时直接写400
func parseID(c *gin.Context, name, message string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		sendErrorResponse(c, http.StatusBadRequest, message)
		return 0, false
	}
	return id, true
}

// pageQuery 读取?page=&page_size=，非法值交给repository的Paginate兜底
func pageQuery(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	return page, pageSize
}

// mustPrincipal 认证路由里取当前用户，中间件没放进来说明路由配错了
func mustPrincipal(c *gin.Context) (auth.Principal, bool) {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		sendErrorResponse(c, http.StatusUnauthorized, "用户未认证")
	}
	return p, ok
}

// optionalPrincipal 匿名访问时返回nil
func optionalPrincipal(c *gin.Context) *auth.Principal {
	if p, ok := middleware.CurrentPrincipal(c); ok {
		return &p
	}
	return nil
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/")
}

// formFile 取出可选的上传文件，字段不存在时返回nil
func formFile(c *gin.Context, field string) (*service.FileUpload, error) {
	if !isMultipart(c) {
		return nil, nil
	}
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toFileUpload(fh), nil
}

func toFileUpload(fh *multipart.FileHeader) *service.FileUpload {
	return &service.FileUpload{
		Filename:    fh.Filename,
		Size:        fh.Size,
		ContentType: fh.Header.Get("Content-Type"),
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

// splitTags 同时支持重复的tags字段和逗号分隔，输入非nil时返回值也非nil
func splitTags(raw []string) []string {
	if raw == nil {
		return nil
	}
	tags := make([]string, 0, len(raw))
	for _, item := range raw {
		for _, tag := range strings.Split(item, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				tags = append(tags, tag)
			}
		}
	}
	return tags
}
