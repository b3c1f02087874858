package service

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"VidHub/pkg/logger"
	"VidHub/pkg/storage"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var (
	videoExtensions = map[string]bool{".mov": true, ".avi": true, ".mp4": true, ".webm": true, ".mkv": true}
	imageExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true}
)

// FileUpload 上传文件的抽象，handler用multipart.FileHeader填充
type FileUpload struct {
	Filename    string
	Size        int64
	ContentType string
	// Open 可以多次调用，每次返回从头开始的新reader
	Open func() (io.ReadCloser, error)
}

func (f *FileUpload) ext() string {
	return strings.ToLower(filepath.Ext(f.Filename))
}

type storedObject struct {
	Key string
	URL string
}

// storeUpload 校验扩展名，以 prefix/<uuid><ext> 为key写入存储
func storeUpload(ctx context.Context, store storage.Storage, prefix string, f *FileUpload, allowed map[string]bool) (*storedObject, error) {
	ext := f.ext()
	if !allowed[ext] {
		return nil, validationError("不支持的文件类型: " + f.Filename)
	}
	r, err := f.Open()
	if err != nil {
		return nil, errors.Wrap(err, "读取上传文件失败")
	}
	defer r.Close()

	key := prefix + "/" + uuid.NewString() + ext
	url, err := store.Put(ctx, key, r, f.Size, f.ContentType)
	if err != nil {
		return nil, errors.Wrapf(err, "保存文件失败: %s", key)
	}
	return &storedObject{Key: key, URL: url}, nil
}

// removeObjects 提交事务之后清理存储，失败只记日志
func removeObjects(ctx context.Context, store storage.Storage, keys ...string) {
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := store.Delete(ctx, key); err != nil {
			logger.Log.WithError(err).WithField("key", key).Warn("删除存储对象失败")
		}
	}
}
