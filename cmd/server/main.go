package main

import (
	"context"
	"log"
	"time"

	"VidHub/internal/auth"
	"VidHub/internal/config"
	"VidHub/internal/data"
	"VidHub/internal/handler"
	"VidHub/internal/repository"
	"VidHub/internal/router"
	"VidHub/internal/service"
	"VidHub/pkg/logger"
	"VidHub/pkg/media"
	"VidHub/pkg/rabbitmq"
	"VidHub/pkg/redis"
	"VidHub/pkg/storage"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("配置加载失败: %v", err)
	}
	// 初始化logger
	logger.InitLogger(cfg.Log.Level, cfg.Log.File)
	gin.SetMode(cfg.Server.Mode)

	db, err := data.OpenMySQL(cfg.Mysql)
	if err != nil {
		logger.Log.Fatalf("%v", err)
	}
	logger.Log.Info("数据库连接成功")
	// AutoMigrate：没有这个表就创建，没有属性列则创建列，没有约束则增加约束；不会主动删除和修改
	if err := data.Migrate(db); err != nil {
		logger.Log.Fatalf("数据库迁移失败: %v", err)
	}
	logger.Log.Info("数据库迁移成功")

	// 初始化Redis
	redisClient, err := redis.InitRedis(context.Background(), redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	if err != nil {
		logger.Log.Fatalf("无法连接到Redis: %v", err)
	}
	defer redisClient.Close()
	logger.Log.Info("Redis连接成功")

	// RabbitMQ只用于异步回写计数，连不上时服务照常运行，计数由请求里的实时COUNT兜底
	var publisher service.EventPublisher
	rabbitMQConn, err := rabbitmq.InitRabbitMQ(cfg.RabbitMQ.URL)
	if err != nil {
		logger.Log.WithError(err).Warn("无法连接到RabbitMQ，互动事件将不会投递")
	} else {
		defer rabbitMQConn.Close() // 确保程序退出时关闭连接
		p, err := rabbitmq.NewPublisher(rabbitMQConn, rabbitmq.QueueEngagement)
		if err != nil {
			logger.Log.WithError(err).Warn("声明互动事件队列失败，互动事件将不会投递")
		} else {
			publisher = p
			logger.Log.Info("RabbitMQ连接成功")
		}
	}

	store, mediaDir, err := newStorage(cfg.Storage)
	if err != nil {
		logger.Log.Fatalf("初始化存储失败: %v", err)
	}
	logger.Log.WithField("driver", cfg.Storage.Driver).Info("存储初始化成功")

	var thumbnailer service.Thumbnailer
	if cfg.Media.AutoThumbnail {
		thumbnailer = media.NewThumbnailer(cfg.Media.TempDir)
	}

	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TTL())

	userRepo := repository.NewUserRepository(db)
	repos := data.NewRepositories(db, redisClient)
	uow := data.NewUnitOfWork(db, repos)

	resetTTL := time.Duration(cfg.Auth.ResetTokenTTLMinutes) * time.Minute
	userService := service.NewUserService(userRepo, repos.Channel, repos.Video,
		repository.NewResetTokenStore(redisClient), tokens, resetTTL)
	channelService := service.NewChannelService(uow, repos.Channel, repos.Video, repos.Subscriber, store, publisher)
	videoService := service.NewVideoService(uow, repos, repository.NewSearchRepository(db), store, thumbnailer)
	commentService := service.NewCommentService(repos.Comment, repos.Video, publisher)
	likeService := service.NewLikeService(repos.Video, repos.Reaction, publisher)
	playlistService := service.NewPlaylistService(repos.Playlist, repos.Video)

	r := router.SetupRouter(router.Handlers{
		User:     handler.NewUserHandler(userService, cfg.Auth.ExposeResetToken),
		Channel:  handler.NewChannelHandler(channelService),
		Video:    handler.NewVideoHandler(videoService),
		Comment:  handler.NewCommentHandler(commentService),
		Like:     handler.NewLikeHandler(likeService),
		Playlist: handler.NewPlaylistHandler(playlistService),
		Search:   handler.NewSearchHandler(videoService),
	}, tokens, router.Options{
		AllowOrigins: cfg.Cors.AllowOrigins,
		MediaDir:     mediaDir,
		HealthCheck: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			if err := sqlDB.PingContext(ctx); err != nil {
				return errors.WithMessage(err, "数据库不可用")
			}
			if err := redisClient.Ping(ctx).Err(); err != nil {
				return errors.WithMessage(err, "Redis不可用")
			}
			return nil
		},
	})

	logger.Log.Infof("服务器将在: %s 启动", cfg.Server.Addr)
	if err := r.Run(cfg.Server.Addr); err != nil {
		logger.Log.Fatalf("服务器启动失败: %v", err)
	}
}

// newStorage 按配置选择存储后端；本地存储时额外返回需要以 /media 暴露的目录
func newStorage(cfg config.StorageConfig) (storage.Storage, string, error) {
	switch cfg.Driver {
	case "", "local":
		s, err := storage.NewLocal(cfg.Local.Dir, cfg.Local.BaseURL)
		if err != nil {
			return nil, "", err
		}
		return s, s.Dir(), nil
	case "minio":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s, err := storage.NewMinio(ctx, storage.MinioConfig{
			Endpoint:  cfg.Minio.Endpoint,
			AccessKey: cfg.Minio.AccessKey,
			SecretKey: cfg.Minio.SecretKey,
			Bucket:    cfg.Minio.Bucket,
			Location:  cfg.Minio.Location,
			UseSSL:    cfg.Minio.UseSSL,
			PublicURL: cfg.Minio.PublicURL,
		})
		return s, "", err
	case "s3":
		s, err := storage.NewS3(cfg.S3.Region, cfg.S3.Bucket)
		return s, "", err
	default:
		return nil, "", errors.Errorf("未知的存储驱动: %s", cfg.Driver)
	}
}
