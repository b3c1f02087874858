package model

import (
	"time"
)

// gorm的基本结构中ID是uint类型，这里统一成uint64
// 没有DeletedAt：删除都是硬删除，级联和(频道,用户)这类唯一组合都要求行真正消失
type BaseModel struct {
	ID        uint64 `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
