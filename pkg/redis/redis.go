package redis

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

type Options struct {
	Addr     string
	Password string
	DB       int
	// PoolSize 为0时使用go-redis的默认值（每个CPU 10个连接）
	PoolSize int
}

// InitRedis 创建客户端并Ping一次，连不上就关闭客户端返回错误
func InitRedis(ctx context.Context, opts Options) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
		PoolSize: opts.PoolSize,
	})

	// 如果到时间，自动关闭后台监视计时器的goroutine
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}
