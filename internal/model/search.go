package model

// Search 记录登录用户的搜索历史
type Search struct {
	BaseModel
	UserID uint64 `gorm:"not null;index"`
	Query  string `gorm:"size:200;not null"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (Search) TableName() string {
	return "searches"
}
