package model

const TagMaxLength = 50

type Tag struct {
	BaseModel
	Name string `gorm:"size:50;not null;uniqueIndex"`
}

func (Tag) TableName() string {
	return "tags"
}
