package model

type Playlist struct {
	BaseModel
	UserID uint64 `gorm:"not null;index"`
	Name   string `gorm:"size:100;not null"`

	User   User    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Videos []Video `gorm:"many2many:playlist_videos;constraint:OnDelete:CASCADE"`
}

func (Playlist) TableName() string {
	return "playlists"
}
