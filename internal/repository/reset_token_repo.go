package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

var ErrResetTokenNotFound = errors.New("reset token not found")

// ResetTokenStore 保存“重置密码令牌 -> 用户ID”，令牌只能用一次
type ResetTokenStore interface {
	Save(ctx context.Context, token string, userID uint64, ttl time.Duration) error
	// Consume 取出并删除令牌，令牌不存在或已过期时返回ErrResetTokenNotFound
	Consume(ctx context.Context, token string) (uint64, error)
}

type redisResetTokenStore struct {
	rdb *redis.Client
}

func NewResetTokenStore(rdb *redis.Client) ResetTokenStore {
	return &redisResetTokenStore{rdb: rdb}
}

func (s *redisResetTokenStore) key(token string) string {
	return fmt.Sprintf("reset_token:%s", token)
}

func (s *redisResetTokenStore) Save(ctx context.Context, token string, userID uint64, ttl time.Duration) error {
	return s.rdb.Set(ctx, s.key(token), userID, ttl).Err()
}

func (s *redisResetTokenStore) Consume(ctx context.Context, token string) (uint64, error) {
	// GETDEL是原子的，同一个令牌并发使用只有一个能拿到
	val, err := s.rdb.GetDel(ctx, s.key(token)).Result()
	if err == redis.Nil {
		return 0, ErrResetTokenNotFound
	} else if err != nil {
		return 0, err
	}
	userID, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, ErrResetTokenNotFound
	}
	return userID, nil
}
