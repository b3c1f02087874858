package data

import (
	"time"

	"VidHub/internal/config"

	"github.com/pkg/errors"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// OpenMySQL 连接MySQL并设置连接池；TranslateError让唯一键冲突变成gorm.ErrDuplicatedKey
func OpenMySQL(cfg config.MysqlConfig) (*gorm.DB, error) {
	// 这个mysql包是gorm的驱动，gorm.Open()后可以执行gorm的简化语句，但要注意性能
	db, err := gorm.Open(mysql.Open(cfg.GetDSN()), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, errors.WithMessage(err, "无法连接到数据库")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.WithMessage(err, "获取连接池失败")
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)
	return db, nil
}
