package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Local 把对象写到本地目录，URL由baseURL + key拼出（路由里用 /media 暴露这个目录）
type Local struct {
	dir     string
	baseURL string
}

func NewLocal(dir, baseURL string) (*Local, error) {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, errors.WithMessage(err, "创建上传目录失败")
	}
	return &Local{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Dir 返回本地上传目录
func (l *Local) Dir() string {
	return l.dir
}

func (l *Local) path(key string) (string, error) {
	p := filepath.Join(l.dir, filepath.FromSlash(key))
	// key不能跳出上传目录
	rel, err := filepath.Rel(l.dir, p)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", errors.Errorf("非法的对象key: %s", key)
	}
	return p, nil
}

func (l *Local) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p, err := l.path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(p), os.ModePerm); err != nil {
		return "", errors.WithMessage(err, "创建对象目录失败")
	}
	f, err := os.Create(p)
	if err != nil {
		return "", errors.WithMessage(err, "创建对象文件失败")
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(p) // 不留下写了一半的文件
		return "", errors.WithMessage(err, "写入对象文件失败")
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(p)
		return "", errors.WithMessage(err, "关闭对象文件失败")
	}
	return l.baseURL + "/" + key, nil
}

func (l *Local) Delete(ctx context.Context, key string) error {
	p, err := l.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
