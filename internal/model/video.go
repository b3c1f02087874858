package model

// Video 属于且只属于一个频道
type Video struct {
	BaseModel
	ChannelID   uint64 `gorm:"not null;index"`
	Title       string `gorm:"size:200;not null"`
	Description string `gorm:"type:text"`

	VideoKey     string `gorm:"size:255;not null"` // 存储里的对象key
	VideoURL     string `gorm:"size:512;not null"` // 视频播放地址
	ThumbnailKey string `gorm:"size:255"`
	ThumbnailURL string `gorm:"size:512"` // 视频封面地址

	LikeCount    uint64 `gorm:"default:0"`
	DislikeCount uint64 `gorm:"default:0"`
	CommentCount uint64 `gorm:"default:0"`

	Channel Channel `gorm:"foreignKey:ChannelID;references:ID"`
	Tags    []Tag   `gorm:"many2many:video_tags;constraint:OnDelete:CASCADE"`
}

func (Video) TableName() string {
	return "videos"
}
