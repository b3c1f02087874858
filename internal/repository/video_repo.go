package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"VidHub/internal/model"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// VideoCounts 视频的实时互动计数
type VideoCounts struct {
	Likes    uint64
	Dislikes uint64
	Comments uint64
}

type VideoRepository interface {
	Create(ctx context.Context, video *model.Video) error
	Update(ctx context.Context, video *model.Video) error
	FindByID(ctx context.Context, videoID uint64) (*model.Video, error)
	// 按时间倒序分页，tag不为空时只返回带该标签的视频
	FindLatest(ctx context.Context, page, pageSize int, tag string) ([]model.Video, error)
	FindByChannelID(ctx context.Context, channelID uint64) ([]model.Video, error)
	FindByChannelIDs(ctx context.Context, channelIDs []uint64) ([]model.Video, error)
	Search(ctx context.Context, query string, page, pageSize int) ([]model.Video, error)
	IDsByChannelID(ctx context.Context, channelID uint64) ([]uint64, error)

	ReplaceTags(ctx context.Context, video *model.Video, tags []model.Tag) error
	// 删除视频本身以及它在video_tags里的关联
	DeleteByIDs(ctx context.Context, videoIDs []uint64) error

	CountEngagement(ctx context.Context, videoID uint64) (VideoCounts, error)
	// 用关联表实时计数，回写冗余字段，重复执行结果不变
	RefreshCounters(ctx context.Context, videoID uint64) (VideoCounts, error)

	// Redis缓存，rdb为nil时全部是空操作
	GetVideoCache(ctx context.Context, videoID uint64) (*model.Video, error)
	SetVideoCache(ctx context.Context, video *model.Video) error
	DeleteVideoCache(ctx context.Context, videoIDs ...uint64) error

	WithTx(tx *gorm.DB) VideoRepository
}

type videoRepository struct {
	db  *gorm.DB
	rdb *redis.Client
}

func NewVideoRepository(db *gorm.DB, rdb *redis.Client) VideoRepository {
	return &videoRepository{
		db:  db,
		rdb: rdb,
	}
}

// WithTx 返回一个新的、使用事务的实例，事务中不操作Redis
func (r *videoRepository) WithTx(tx *gorm.DB) VideoRepository {
	return &videoRepository{
		db: tx,
	}
}

func (r *videoRepository) Create(ctx context.Context, video *model.Video) error {
	return r.db.WithContext(ctx).Create(video).Error
}

func (r *videoRepository) Update(ctx context.Context, video *model.Video) error {
	return r.db.WithContext(ctx).Model(video).
		Select("Title", "Description", "ThumbnailKey", "ThumbnailURL").
		Updates(video).Error
}

// 利用videoID找视频，preload其中的Channel、频道作者和标签
func (r *videoRepository) FindByID(ctx context.Context, videoID uint64) (*model.Video, error) {
	var video model.Video
	err := r.db.WithContext(ctx).
		Preload("Channel").Preload("Channel.User", selectPublicUser).Preload("Tags").
		First(&video, videoID).Error
	if err != nil {
		return nil, err
	}
	return &video, nil
}

func (r *videoRepository) FindLatest(ctx context.Context, page, pageSize int, tag string) ([]model.Video, error) {
	var videos []model.Video
	q := r.db.WithContext(ctx).
		Preload("Channel").Preload("Tags").
		Scopes(Paginate(page, pageSize)).
		Order("videos.created_at desc, videos.id desc")
	if tag != "" {
		q = q.Select("videos.*").
			Joins("JOIN video_tags ON video_tags.video_id = videos.id").
			Joins("JOIN tags ON tags.id = video_tags.tag_id").
			Where("tags.name = ?", tag)
	}
	if err := q.Find(&videos).Error; err != nil {
		return nil, err
	}
	return videos, nil
}

func (r *videoRepository) FindByChannelID(ctx context.Context, channelID uint64) ([]model.Video, error) {
	return r.FindByChannelIDs(ctx, []uint64{channelID})
}

func (r *videoRepository) FindByChannelIDs(ctx context.Context, channelIDs []uint64) ([]model.Video, error) {
	var videos []model.Video
	if len(channelIDs) == 0 {
		return videos, nil
	}
	err := r.db.WithContext(ctx).
		Preload("Tags").
		Where("channel_id IN ?", channelIDs).
		Order("created_at desc, id desc").
		Find(&videos).Error
	return videos, err
}

func (r *videoRepository) Search(ctx context.Context, query string, page, pageSize int) ([]model.Video, error) {
	var videos []model.Video
	like := containsPattern(query)
	err := r.db.WithContext(ctx).
		Preload("Channel").Preload("Tags").
		Where("title LIKE ? ESCAPE '!' OR description LIKE ? ESCAPE '!'", like, like).
		Scopes(Paginate(page, pageSize)).
		Order("created_at desc, id desc").
		Find(&videos).Error
	return videos, err
}

func (r *videoRepository) IDsByChannelID(ctx context.Context, channelID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).Model(&model.Video{}).Where("channel_id = ?", channelID).Pluck("id", &ids).Error
	return ids, err
}

func (r *videoRepository) ReplaceTags(ctx context.Context, video *model.Video, tags []model.Tag) error {
	return r.db.WithContext(ctx).Model(video).Association("Tags").Replace(tags)
}

func (r *videoRepository) DeleteByIDs(ctx context.Context, videoIDs []uint64) error {
	if len(videoIDs) == 0 {
		return nil
	}
	db := r.db.WithContext(ctx)
	if err := db.Exec("DELETE FROM video_tags WHERE video_id IN ?", videoIDs).Error; err != nil {
		return err
	}
	return db.Where("id IN ?", videoIDs).Delete(&model.Video{}).Error
}

func (r *videoRepository) CountEngagement(ctx context.Context, videoID uint64) (VideoCounts, error) {
	var counts VideoCounts
	var n int64
	db := r.db.WithContext(ctx)

	if err := db.Model(&model.Like{}).Where("video_id = ?", videoID).Count(&n).Error; err != nil {
		return counts, err
	}
	counts.Likes = uint64(n)
	if err := db.Model(&model.Dislike{}).Where("video_id = ?", videoID).Count(&n).Error; err != nil {
		return counts, err
	}
	counts.Dislikes = uint64(n)
	if err := db.Model(&model.Comment{}).Where("video_id = ?", videoID).Count(&n).Error; err != nil {
		return counts, err
	}
	counts.Comments = uint64(n)
	return counts, nil
}

func (r *videoRepository) RefreshCounters(ctx context.Context, videoID uint64) (VideoCounts, error) {
	counts, err := r.CountEngagement(ctx, videoID)
	if err != nil {
		return counts, err
	}
	// UPDATE `videos` SET `like_count`=?,`dislike_count`=?,`comment_count`=? WHERE id = ?
	err = r.db.WithContext(ctx).Model(&model.Video{}).Where("id = ?", videoID).UpdateColumns(map[string]interface{}{
		"like_count":    counts.Likes,
		"dislike_count": counts.Dislikes,
		"comment_count": counts.Comments,
	}).Error
	return counts, err
}

// 返回存储单个视频信息的字符串Key
func (r *videoRepository) keyVideoInfo(videoID uint64) string {
	return fmt.Sprintf("video:info:%d", videoID)
}

// 从Redis缓存中获取单个Video信息：缓存不存在时返回(nil, nil)
func (r *videoRepository) GetVideoCache(ctx context.Context, videoID uint64) (*model.Video, error) {
	if r.rdb == nil {
		return nil, nil
	}
	videoJSON, err := r.rdb.Get(ctx, r.keyVideoInfo(videoID)).Result()
	if err == redis.Nil {
		return nil, nil // 缓存不存在，但是Redis正常工作
	} else if err != nil {
		return nil, err // Redis本身出错了
	}
	var video model.Video
	if err := json.Unmarshal([]byte(videoJSON), &video); err != nil {
		return nil, err
	}
	return &video, nil
}

// 将单个视频信息存入Redis缓存
func (r *videoRepository) SetVideoCache(ctx context.Context, video *model.Video) error {
	if r.rdb == nil {
		return nil
	}
	videoJSON, err := json.Marshal(video)
	if err != nil {
		return err
	}
	// 设置过期时间，再加上随机性防止缓存雪崩
	expiration := time.Minute*5 + time.Duration(rand.Intn(60))*time.Second
	return r.rdb.Set(ctx, r.keyVideoInfo(video.ID), videoJSON, expiration).Err()
}

func (r *videoRepository) DeleteVideoCache(ctx context.Context, videoIDs ...uint64) error {
	if r.rdb == nil || len(videoIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(videoIDs))
	for _, id := range videoIDs {
		keys = append(keys, r.keyVideoInfo(id))
	}
	return r.rdb.Del(ctx, keys...).Err()
}
