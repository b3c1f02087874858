package model

// All 返回需要AutoMigrate的全部模型，顺序保证被引用的表先建
func All() []interface{} {
	return []interface{}{
		&User{}, &Channel{}, &Tag{}, &Video{}, &Comment{},
		&Like{}, &Dislike{}, &Subscriber{}, &Playlist{}, &Search{},
	}
}
