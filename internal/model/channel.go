package model

// Channel 和用户一对一，user_id上的唯一索引保证“一个用户只有一个频道”
type Channel struct {
	BaseModel
	UserID          uint64 `gorm:"not null;uniqueIndex"`
	Name            string `gorm:"size:100;not null"`
	Description     string `gorm:"type:text"`
	ProfilePhotoKey string `gorm:"size:255"`
	ProfilePhotoURL string `gorm:"size:512"`
	// 冗余计数，由engagement消费者回填；接口里返回的计数都是实时查出来的
	SubscriberCount uint64 `gorm:"default:0"`

	User   User    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Videos []Video `gorm:"foreignKey:ChannelID;constraint:OnDelete:CASCADE"`
}

func (Channel) TableName() string {
	return "channels"
}
