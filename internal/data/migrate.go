package data

import (
	"VidHub/internal/model"

	"gorm.io/gorm"
)

// Migrate 建表/补字段，启动服务和跑测试时都会调用
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(model.All()...)
}
