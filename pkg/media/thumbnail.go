package media

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Thumbnailer 用ffmpeg截取视频第一帧作为封面，依赖本机安装的ffmpeg
type Thumbnailer struct {
	tempDir string
}

func NewThumbnailer(tempDir string) *Thumbnailer {
	return &Thumbnailer{tempDir: tempDir}
}

// FromVideo 把视频写进临时目录，截取第一帧，返回jpg内容
func (t *Thumbnailer) FromVideo(ctx context.Context, src io.Reader, ext string) ([]byte, error) {
	if err := os.MkdirAll(t.tempDir, os.ModePerm); err != nil {
		return nil, errors.WithMessage(err, "Failed to create folders")
	}
	workDir, err := os.MkdirTemp(t.tempDir, "thumb-*")
	if err != nil {
		return nil, errors.WithMessage(err, "Failed to create work dir")
	}
	defer os.RemoveAll(workDir)

	videoPath := filepath.Join(workDir, "source"+ext)
	f, err := os.Create(videoPath)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(f, src); err != nil {
		f.Close()
		return nil, err
	}
	f.Close()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	outputPath := filepath.Join(workDir, "thumbnail.jpg")
	err = ffmpeg.Input(videoPath).
		Output(outputPath, ffmpeg.KwArgs{
			"ss":      "00:00:00",
			"vframes": "1",
		}).
		OverWriteOutput().
		Run()
	if err != nil {
		return nil, errors.WithMessage(err, "Failed to generate the thumbnail")
	}
	return os.ReadFile(outputPath)
}
