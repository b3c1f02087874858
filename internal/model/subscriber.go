package model

// Subscriber 表示“用户关注了频道”，(channel_id, user_id)唯一
type Subscriber struct {
	BaseModel
	ChannelID uint64 `gorm:"not null;uniqueIndex:idx_channel_user"`
	UserID    uint64 `gorm:"not null;uniqueIndex:idx_channel_user;index"`

	Channel Channel `gorm:"foreignKey:ChannelID;constraint:OnDelete:CASCADE"`
	User    User    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (Subscriber) TableName() string {
	return "subscribers"
}
