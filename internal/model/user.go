package model

type User struct {
	BaseModel        // 包括 ID, CreatedAt, UpdatedAt
	Username  string `gorm:"size:150;unique;not null"`
	Password  string `gorm:"not null"`
	Email     string `gorm:"size:254;index"`
	IsStaff   bool   `gorm:"default:false"`
}
