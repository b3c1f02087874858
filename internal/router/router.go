package router

import (
	"context"
	"net/http"
	"time"

	"VidHub/internal/auth"
	"VidHub/internal/handler"
	"VidHub/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Handlers 路由需要的全部处理器
type Handlers struct {
	User     handler.UserHandler
	Channel  handler.ChannelHandler
	Video    handler.VideoHandler
	Comment  handler.CommentHandler
	Like     handler.LikeHandler
	Playlist handler.PlaylistHandler
	Search   handler.SearchHandler
}

type Options struct {
	AllowOrigins []string
	// MediaDir 不为空时以 /media 暴露本地上传目录
	MediaDir string
	// HealthCheck 检查数据库、Redis等依赖，为nil时/health只表示进程存活
	HealthCheck func(ctx context.Context) error
}

func SetupRouter(h Handlers, tokens *auth.TokenManager, opts Options) *gin.Engine {
	r := gin.Default()

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowOrigins = opts.AllowOrigins
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	corsCfg.MaxAge = 12 * time.Hour
	if len(opts.AllowOrigins) == 0 {
		corsCfg.AllowOrigins = nil
		corsCfg.AllowAllOrigins = true
	}
	r.Use(cors.New(corsCfg))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
	r.GET("/health", func(c *gin.Context) {
		if opts.HealthCheck != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := opts.HealthCheck(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "message": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if opts.MediaDir != "" {
		r.Static("/media", opts.MediaDir)
	}

	apiV1 := r.Group("/api/v1")
	{
		userGroup := apiV1.Group("/users")
		{
			userGroup.POST("/register", h.User.Register)
			userGroup.POST("/login", h.User.Login)
			userGroup.POST("/password/reset", h.User.RequestPasswordReset)
			userGroup.POST("/password/reset/confirm", h.User.ConfirmPasswordReset)
		}

		apiV1.GET("/feed", h.Video.GetFeed)
		apiV1.GET("/videos", h.Video.GetFeed)
		apiV1.GET("/videos/:video_id/media", h.Video.RedirectMedia)
		apiV1.GET("/videos/:video_id/thumbnail", h.Video.RedirectThumbnail)
		apiV1.GET("/videos/:video_id/comments", h.Comment.GetComments)
		apiV1.GET("/channels", h.Channel.ListChannels)
		apiV1.GET("/tags", h.Search.ListTags)

		// 登录与否都能访问，登录时多返回“是否已关注”等状态
		optional := apiV1.Group("/")
		optional.Use(middleware.OptionalAuth(tokens))
		{
			optional.GET("/videos/:video_id", h.Video.GetVideoByID)
			optional.GET("/channels/:channel_id", h.Channel.GetChannel)
			optional.GET("/search", h.Search.Search)
		}

		authorized := apiV1.Group("/")
		authorized.Use(middleware.AuthMiddleware(tokens))
		{
			authorized.GET("/profile", h.User.GetProfile)
			authorized.PUT("/users/password", h.User.ChangePassword)

			authorized.POST("/videos", h.Video.CreateVideo)
			authorized.PUT("/videos/:video_id", h.Video.UpdateVideo)
			authorized.DELETE("/videos/:video_id", h.Video.DeleteVideo)

			authorized.POST("/videos/:video_id/like", h.Like.LikeVideo)
			authorized.DELETE("/videos/:video_id/like", h.Like.UnlikeVideo)
			authorized.POST("/videos/:video_id/dislike", h.Like.DislikeVideo)
			authorized.DELETE("/videos/:video_id/dislike", h.Like.UndislikeVideo)

			authorized.POST("/videos/:video_id/comments", h.Comment.CreateCommentForVideo)
			authorized.GET("/comments", h.Comment.ListMyComments)
			authorized.DELETE("/comments/:comment_id", h.Comment.DeleteComment)

			authorized.POST("/channels", h.Channel.CreateChannel)
			authorized.PUT("/channels/:channel_id", h.Channel.UpdateChannel)
			authorized.DELETE("/channels/:channel_id", h.Channel.DeleteChannel)
			authorized.POST("/channels/:channel_id/subscribe", h.Channel.Subscribe)
			authorized.GET("/subscriptions", h.Channel.ListSubscriptions)

			authorized.GET("/playlists", h.Playlist.ListPlaylists)
			authorized.POST("/playlists", h.Playlist.CreatePlaylist)
			authorized.GET("/playlists/:playlist_id", h.Playlist.GetPlaylist)
			authorized.PUT("/playlists/:playlist_id", h.Playlist.UpdatePlaylist)
			authorized.DELETE("/playlists/:playlist_id", h.Playlist.DeletePlaylist)
			authorized.POST("/playlists/:playlist_id/videos/:video_id", h.Playlist.AddVideo)
			authorized.DELETE("/playlists/:playlist_id/videos/:video_id", h.Playlist.RemoveVideo)

			authorized.GET("/search/history", h.Search.SearchHistory)
		}
	}

	return r
}
