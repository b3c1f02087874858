package repository

import (
	"context"

	"VidHub/internal/auth"
	"VidHub/internal/model"

	"gorm.io/gorm"
)

type PlaylistRepository interface {
	Create(ctx context.Context, playlist *model.Playlist) error
	Rename(ctx context.Context, playlist *model.Playlist) error

	// 以下方法共用OwnedBy范围，范围外的歌单视为不存在
	ListVisible(ctx context.Context, p auth.Principal, page, pageSize int) ([]model.Playlist, error)
	FindVisible(ctx context.Context, p auth.Principal, playlistID uint64) (*model.Playlist, error)
	DeleteVisible(ctx context.Context, p auth.Principal, playlistID uint64) error

	// AddVideo 重复添加不会报错
	AddVideo(ctx context.Context, playlist *model.Playlist, video *model.Video) error
	RemoveVideo(ctx context.Context, playlist *model.Playlist, video *model.Video) error
	// 删除视频时，把它从所有歌单里移除
	RemoveVideos(ctx context.Context, videoIDs []uint64) error

	WithTx(tx *gorm.DB) PlaylistRepository
}

type playlistRepository struct {
	db *gorm.DB
}

func NewPlaylistRepository(db *gorm.DB) PlaylistRepository {
	return &playlistRepository{db: db}
}

func (r *playlistRepository) WithTx(tx *gorm.DB) PlaylistRepository {
	return &playlistRepository{db: tx}
}

func (r *playlistRepository) Create(ctx context.Context, playlist *model.Playlist) error {
	return r.db.WithContext(ctx).Create(playlist).Error
}

func (r *playlistRepository) Rename(ctx context.Context, playlist *model.Playlist) error {
	return r.db.WithContext(ctx).Model(playlist).Update("name", playlist.Name).Error
}

func (r *playlistRepository) ListVisible(ctx context.Context, p auth.Principal, page, pageSize int) ([]model.Playlist, error) {
	var playlists []model.Playlist
	err := r.db.WithContext(ctx).
		Preload("Videos").
		Scopes(OwnedBy(p), Paginate(page, pageSize)).
		Order("created_at desc, id desc").
		Find(&playlists).Error
	return playlists, err
}

func (r *playlistRepository) FindVisible(ctx context.Context, p auth.Principal, playlistID uint64) (*model.Playlist, error) {
	var result model.Playlist
	err := r.db.WithContext(ctx).Preload("Videos").Scopes(OwnedBy(p)).First(&result, playlistID).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *playlistRepository) DeleteVisible(ctx context.Context, p auth.Principal, playlistID uint64) error {
	db := r.db.WithContext(ctx)
	var ids []uint64
	if err := db.Model(&model.Playlist{}).Scopes(OwnedBy(p)).Where("id = ?", playlistID).Pluck("id", &ids).Error; err != nil {
		return err
	}
	if len(ids) == 0 {
		return gorm.ErrRecordNotFound
	}
	// 先清理关联表，再删歌单本身
	if err := db.Exec("DELETE FROM playlist_videos WHERE playlist_id IN ?", ids).Error; err != nil {
		return err
	}
	return db.Where("id IN ?", ids).Delete(&model.Playlist{}).Error
}

func (r *playlistRepository) AddVideo(ctx context.Context, playlist *model.Playlist, video *model.Video) error {
	// gorm写关联表时自带ON CONFLICT DO NOTHING
	return r.db.WithContext(ctx).Model(playlist).Association("Videos").Append(video)
}

func (r *playlistRepository) RemoveVideo(ctx context.Context, playlist *model.Playlist, video *model.Video) error {
	return r.db.WithContext(ctx).Model(playlist).Association("Videos").Delete(video)
}

func (r *playlistRepository) RemoveVideos(ctx context.Context, videoIDs []uint64) error {
	if len(videoIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Exec("DELETE FROM playlist_videos WHERE video_id IN ?", videoIDs).Error
}
