package data

import (
	"context"

	"VidHub/internal/repository"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// UnitOfWork 定义了我们事务管理器的接口
type UnitOfWork interface {
	// Execute 将一个函数包裹在数据库事务中执行。
	// 它会为这个函数提供能在事务中工作的 Repositories。
	Execute(ctx context.Context, fn func(repos *TransactionalRepositories) error) error
}

// TransactionalRepositories 持有所有需要在同一个事务中操作的 Repository。
// 事务里只能用这里的repo，不要再碰外面的db
type TransactionalRepositories struct {
	ChannelRepo    repository.ChannelRepository
	VideoRepo      repository.VideoRepository
	CommentRepo    repository.CommentRepository
	ReactionRepo   repository.ReactionRepository
	SubscriberRepo repository.SubscriberRepository
	PlaylistRepo   repository.PlaylistRepository
	TagRepo        repository.TagRepository
}

// Repositories 非事务的原始repo集合，NewUnitOfWork据此生成事务副本
type Repositories struct {
	Channel    repository.ChannelRepository
	Video      repository.VideoRepository
	Comment    repository.CommentRepository
	Reaction   repository.ReactionRepository
	Subscriber repository.SubscriberRepository
	Playlist   repository.PlaylistRepository
	Tag        repository.TagRepository
}

// NewRepositories 用同一个连接创建全部repo，rdb为nil时视频不走缓存
func NewRepositories(db *gorm.DB, rdb *redis.Client) Repositories {
	return Repositories{
		Channel:    repository.NewChannelRepository(db),
		Video:      repository.NewVideoRepository(db, rdb),
		Comment:    repository.NewCommentRepository(db),
		Reaction:   repository.NewReactionRepository(db),
		Subscriber: repository.NewSubscriberRepository(db),
		Playlist:   repository.NewPlaylistRepository(db),
		Tag:        repository.NewTagRepository(db),
	}
}

// db是事务的入口和管理者
type gormUnitOfWork struct {
	db    *gorm.DB
	repos Repositories
}

// NewUnitOfWork 创建一个新的、基于GORM的“工作单元”。
// 注意，它接收的是原始的、非事务的 repositories。
func NewUnitOfWork(db *gorm.DB, repos Repositories) UnitOfWork {
	return &gormUnitOfWork{
		db:    db,
		repos: repos,
	}
}

// 契约：fn func(repos *TransactionalRepositories) error
// 只能接收长这样的函数，并为其创建事务；将符合契约的Repositories作为参数，“注入”到业务逻辑函数中
func (u *gormUnitOfWork) Execute(ctx context.Context, fn func(repos *TransactionalRepositories) error) error {
	// GORM创建了一个事务，并把这个事务的句柄作为参数tx传递给了这个匿名函数
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 临时创建“一次性”的、绑定了特定事务的Repo副本
		transactionalRepos := &TransactionalRepositories{
			ChannelRepo:    u.repos.Channel.WithTx(tx),
			VideoRepo:      u.repos.Video.WithTx(tx),
			CommentRepo:    u.repos.Comment.WithTx(tx),
			ReactionRepo:   u.repos.Reaction.WithTx(tx),
			SubscriberRepo: u.repos.Subscriber.WithTx(tx),
			PlaylistRepo:   u.repos.Playlist.WithTx(tx),
			TagRepo:        u.repos.Tag.WithTx(tx),
		}
		// 回调结构（Callback），回头去调用最初调用者托付给它的具体业务逻辑，并将其执行结果作为整个事务成功或失败的依据
		return fn(transactionalRepos)
	})
}
