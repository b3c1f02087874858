// Package testutil 给各层测试准备内存数据库和Redis
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"VidHub/internal/data"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq int64

// NewDB 每个测试一个独立的内存库，已完成迁移
// 只有一个连接：事务里如果再用外面的db会直接卡死，正好能暴露这类错误
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	name := fmt.Sprintf("file:vidhub_%d?mode=memory&cache=shared&_foreign_keys=on", atomic.AddInt64(&dbSeq, 1))
	db, err := gorm.Open(sqlite.Open(name), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, data.Migrate(db))
	return db
}

// NewRedis 启动一个miniredis，测试结束自动关闭
func NewRedis(t testing.TB) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb, mr
}
