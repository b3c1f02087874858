package model

// 用户与视频的关联关系，uniqueIndex利用的是数据库的“自动查重”能力，而不是gorm的
// sqlite里索引名是库级别的，所以Like和Dislike的索引名不能相同
type Like struct {
	BaseModel
	UserID  uint64 `gorm:"not null;uniqueIndex:idx_like_user_video"`
	VideoID uint64 `gorm:"not null;uniqueIndex:idx_like_user_video;index"`

	User  User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Video Video `gorm:"foreignKey:VideoID;constraint:OnDelete:CASCADE"`
}

func (Like) TableName() string {
	return "likes"
}

type Dislike struct {
	BaseModel
	UserID  uint64 `gorm:"not null;uniqueIndex:idx_dislike_user_video"`
	VideoID uint64 `gorm:"not null;uniqueIndex:idx_dislike_user_video;index"`

	User  User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Video Video `gorm:"foreignKey:VideoID;constraint:OnDelete:CASCADE"`
}

func (Dislike) TableName() string {
	return "dislikes"
}
