package model

const CommentMaxLength = 500

type Comment struct {
	BaseModel
	VideoID uint64 `gorm:"not null;index"` // index索引，加速基于该列的查询、过滤和排序操作
	UserID  uint64 `gorm:"not null;index"`
	Content string `gorm:"size:500;not null"`

	User  User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Video Video `gorm:"foreignKey:VideoID;constraint:OnDelete:CASCADE"`
}

func (Comment) TableName() string {
	return "comments"
}
