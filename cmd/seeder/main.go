// cmd/seeder/main.go

package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"

	"VidHub/internal/config"
	"VidHub/internal/data"
	"VidHub/internal/model"
	"VidHub/internal/repository"

	"github.com/go-faker/faker/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	userCount       = 100
	channelRatio    = 0.4 // 大约四成用户开频道
	videoCount      = 500
	commentCount    = 2000
	likeCount       = 1000
	dislikeCount    = 200
	subscriberCount = 600
)

var tagPool = []string{"music", "gaming", "news", "sports", "education", "travel", "food", "tech", "comedy", "vlog"}

func main() {
	fmt.Println("🚀 开始填充测试数据...")

	// --- 1. 连接数据库，配置和server保持一致 ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ 配置加载失败: %v", err)
	}
	db, err := data.OpenMySQL(cfg.Mysql)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	fmt.Println("✅ 数据库连接成功!")

	// --- 2. 清理旧数据：删除旧表再重建，这将删除所有数据！ ---
	fmt.Println("🧹 正在清理旧数据...")
	if err := db.Migrator().DropTable(append([]interface{}{"video_tags", "playlist_videos"}, reversed(model.All())...)...); err != nil {
		log.Fatalf("❌ 删除旧表失败: %v", err)
	}
	if err := data.Migrate(db); err != nil {
		log.Fatalf("❌ 数据库迁移失败: %v", err)
	}
	fmt.Println("✅ 数据库迁移成功!")

	userIDs := seedUsers(db)
	channelIDs := seedChannels(db, userIDs)
	tags := seedTags(db)
	videoIDs := seedVideos(db, channelIDs, tags)
	seedComments(db, userIDs, videoIDs)
	seedReactions(db, "点赞", likeCount, userIDs, videoIDs, func(userID, videoID uint64) interface{} {
		return &model.Like{UserID: userID, VideoID: videoID}
	})
	seedReactions(db, "点踩", dislikeCount, userIDs, videoIDs, func(userID, videoID uint64) interface{} {
		return &model.Dislike{UserID: userID, VideoID: videoID}
	})
	seedSubscribers(db, userIDs, channelIDs)
	refreshCounters(db, channelIDs, videoIDs)

	fmt.Println("🎉🎉🎉 所有测试数据填充完毕! 🎉🎉🎉")
}

// 子表要先删，所以按迁移顺序倒着删
func reversed(models []interface{}) []interface{} {
	out := make([]interface{}, 0, len(models))
	for i := len(models) - 1; i >= 0; i-- {
		out = append(out, models[i])
	}
	return out
}

func seedUsers(db *gorm.DB) []uint64 {
	fmt.Println("👥 正在创建用户...")
	// 所有用户共用默认密码 "password"，哈希只算一次
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("❌ 密码加密失败: %v", err)
	}
	ids := make([]uint64, 0, userCount)
	for i := 0; i < userCount; i++ {
		user := model.User{
			Username: faker.Username(),
			Password: string(hashedPassword),
			Email:    faker.Email(),
			IsStaff:  i == 0, // 第一个用户是staff
		}
		// faker可能生成重复的用户名，冲突时跳过
		res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&user)
		if res.Error != nil {
			log.Fatalf("❌ 创建用户失败: %v", res.Error)
		}
		if res.RowsAffected == 1 {
			ids = append(ids, user.ID)
		}
	}
	fmt.Printf("✅ 成功创建 %d 个用户!\n", len(ids))
	return ids
}

func seedChannels(db *gorm.DB, userIDs []uint64) []uint64 {
	fmt.Println("📺 正在创建频道...")
	var ids []uint64
	for _, userID := range userIDs {
		if rand.Float64() >= channelRatio {
			continue
		}
		channel := model.Channel{
			UserID:      userID,
			Name:        faker.Name(),
			Description: faker.Sentence(),
		}
		if err := db.Create(&channel).Error; err != nil {
			log.Fatalf("❌ 创建频道失败: %v", err)
		}
		ids = append(ids, channel.ID)
	}
	if len(ids) == 0 {
		log.Fatalf("❌ 没有创建任何频道，请重新运行")
	}
	fmt.Printf("✅ 成功创建 %d 个频道!\n", len(ids))
	return ids
}

func seedTags(db *gorm.DB) []model.Tag {
	tags, err := repository.NewTagRepository(db).FindOrCreate(context.Background(), tagPool)
	if err != nil {
		log.Fatalf("❌ 创建标签失败: %v", err)
	}
	return tags
}

func seedVideos(db *gorm.DB, channelIDs []uint64, tags []model.Tag) []uint64 {
	fmt.Println("🎬 正在创建视频...")
	ids := make([]uint64, 0, videoCount)
	for i := 0; i < videoCount; i++ {
		video := model.Video{
			// 从已创建的频道中随机选一个
			ChannelID:    channelIDs[rand.Intn(len(channelIDs))],
			Title:        faker.Sentence(),  // 随机的句子作为标题
			Description:  faker.Paragraph(), // 随机的段落作为简介
			VideoKey:     "seed/video.mp4",
			VideoURL:     "https://test.com/video.mp4",
			ThumbnailKey: "seed/cover.jpg",
			ThumbnailURL: "https://test.com/cover.jpg",
		}
		// 每个视频随机挂0~3个标签
		for _, j := range rand.Perm(len(tags))[:rand.Intn(4)] {
			video.Tags = append(video.Tags, tags[j])
		}
		if err := db.Create(&video).Error; err != nil {
			log.Fatalf("❌ 创建视频失败: %v", err)
		}
		ids = append(ids, video.ID)
	}
	fmt.Printf("✅ 成功创建 %d 个视频!\n", len(ids))
	return ids
}

func seedComments(db *gorm.DB, userIDs, videoIDs []uint64) {
	fmt.Println("💬 正在创建评论...")
	comments := make([]model.Comment, 0, commentCount)
	for i := 0; i < commentCount; i++ {
		comments = append(comments, model.Comment{
			UserID:  userIDs[rand.Intn(len(userIDs))],
			VideoID: videoIDs[rand.Intn(len(videoIDs))],
			Content: faker.Sentence(),
		})
	}
	if err := db.CreateInBatches(comments, 200).Error; err != nil {
		log.Fatalf("❌ 创建评论失败: %v", err)
	}
	fmt.Printf("✅ 成功创建 %d 条评论!\n", commentCount)
}

// seedReactions 创建随机点赞/点踩，重复的(用户,视频)组合由OnConflict忽略
func seedReactions(db *gorm.DB, label string, n int, userIDs, videoIDs []uint64, newRow func(userID, videoID uint64) interface{}) {
	fmt.Printf("👍 正在创建随机%s...\n", label)
	for i := 0; i < n; i++ {
		row := newRow(userIDs[rand.Intn(len(userIDs))], videoIDs[rand.Intn(len(videoIDs))])
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "video_id"}},
			DoNothing: true,
		}).Create(row).Error; err != nil {
			log.Fatalf("❌ 创建%s失败: %v", label, err)
		}
	}
	fmt.Printf("✅ 成功创建(或尝试创建) %d 个随机%s!\n", n, label)
}

func seedSubscribers(db *gorm.DB, userIDs, channelIDs []uint64) {
	fmt.Println("🔔 正在创建关注关系...")
	subscribers := repository.NewSubscriberRepository(db)
	for i := 0; i < subscriberCount; i++ {
		// Add本身就是幂等的
		if err := subscribers.Add(context.Background(), channelIDs[rand.Intn(len(channelIDs))], userIDs[rand.Intn(len(userIDs))]); err != nil {
			log.Fatalf("❌ 创建关注失败: %v", err)
		}
	}
	fmt.Printf("✅ 成功创建(或尝试创建) %d 个关注!\n", subscriberCount)
}

// refreshCounters 把关联表里的数量同步到videos和channels的冗余计数字段
func refreshCounters(db *gorm.DB, channelIDs, videoIDs []uint64) {
	fmt.Println("🔢 正在同步计数...")
	ctx := context.Background()
	videos := repository.NewVideoRepository(db, nil)
	for _, id := range videoIDs {
		if _, err := videos.RefreshCounters(ctx, id); err != nil {
			log.Fatalf("❌ 同步视频计数失败: %v", err)
		}
	}
	channels := repository.NewChannelRepository(db)
	for _, id := range channelIDs {
		if _, err := channels.RefreshSubscriberCount(ctx, id); err != nil {
			log.Fatalf("❌ 同步频道计数失败: %v", err)
		}
	}
	fmt.Println("✅ 计数同步完成!")
}
