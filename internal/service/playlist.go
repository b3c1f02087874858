package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"VidHub/internal/auth"
	"VidHub/internal/model"
	"VidHub/internal/repository"

	"github.com/pkg/errors"
)

const playlistNameMaxLength = 100

// PlaylistService 歌单的所有操作都在OwnedBy范围内，范围外的歌单视为不存在
type PlaylistService interface {
	ListPlaylists(ctx context.Context, p auth.Principal, page, pageSize int) ([]model.Playlist, error)
	GetPlaylist(ctx context.Context, p auth.Principal, playlistID uint64) (*model.Playlist, error)
	CreatePlaylist(ctx context.Context, p auth.Principal, name string) (*model.Playlist, error)
	RenamePlaylist(ctx context.Context, p auth.Principal, playlistID uint64, name string) (*model.Playlist, error)
	DeletePlaylist(ctx context.Context, p auth.Principal, playlistID uint64) error
	AddVideo(ctx context.Context, p auth.Principal, playlistID, videoID uint64) (*model.Playlist, error)
	RemoveVideo(ctx context.Context, p auth.Principal, playlistID, videoID uint64) (*model.Playlist, error)
}

type playlistService struct {
	playlistRepo repository.PlaylistRepository
	videoRepo    repository.VideoRepository
}

func NewPlaylistService(playlistRepo repository.PlaylistRepository, videoRepo repository.VideoRepository) PlaylistService {
	return &playlistService{
		playlistRepo: playlistRepo,
		videoRepo:    videoRepo,
	}
}

func validatePlaylistName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > playlistNameMaxLength {
		return "", validationError("歌单名称长度不合法")
	}
	return name, nil
}

func (s *playlistService) ListPlaylists(ctx context.Context, p auth.Principal, page, pageSize int) ([]model.Playlist, error) {
	playlists, err := s.playlistRepo.ListVisible(ctx, p, page, pageSize)
	if err != nil {
		return nil, errors.Wrap(err, "查询歌单失败")
	}
	return playlists, nil
}

func (s *playlistService) GetPlaylist(ctx context.Context, p auth.Principal, playlistID uint64) (*model.Playlist, error) {
	playlist, err := s.playlistRepo.FindVisible(ctx, p, playlistID)
	if err != nil {
		return nil, translateRepoError(err, "歌单不存在")
	}
	return playlist, nil
}

func (s *playlistService) CreatePlaylist(ctx context.Context, p auth.Principal, name string) (*model.Playlist, error) {
	name, err := validatePlaylistName(name)
	if err != nil {
		return nil, err
	}
	playlist := &model.Playlist{UserID: p.UserID, Name: name}
	if err := s.playlistRepo.Create(ctx, playlist); err != nil {
		return nil, translateRepoError(err, "创建歌单失败")
	}
	return playlist, nil
}

func (s *playlistService) RenamePlaylist(ctx context.Context, p auth.Principal, playlistID uint64, name string) (*model.Playlist, error) {
	name, err := validatePlaylistName(name)
	if err != nil {
		return nil, err
	}
	playlist, err := s.GetPlaylist(ctx, p, playlistID)
	if err != nil {
		return nil, err
	}
	playlist.Name = name
	if err := s.playlistRepo.Rename(ctx, playlist); err != nil {
		return nil, errors.Wrap(err, "更新歌单失败")
	}
	return playlist, nil
}

func (s *playlistService) DeletePlaylist(ctx context.Context, p auth.Principal, playlistID uint64) error {
	return translateRepoError(s.playlistRepo.DeleteVisible(ctx, p, playlistID), "歌单不存在")
}

func (s *playlistService) AddVideo(ctx context.Context, p auth.Principal, playlistID, videoID uint64) (*model.Playlist, error) {
	playlist, err := s.GetPlaylist(ctx, p, playlistID)
	if err != nil {
		return nil, err
	}
	video, err := s.videoRepo.FindByID(ctx, videoID)
	if err != nil {
		return nil, translateRepoError(err, "视频不存在")
	}
	if err := s.playlistRepo.AddVideo(ctx, playlist, video); err != nil {
		return nil, errors.Wrap(err, "添加到歌单失败")
	}
	return s.GetPlaylist(ctx, p, playlistID)
}

// RemoveVideo 视频不在歌单里时不报错
func (s *playlistService) RemoveVideo(ctx context.Context, p auth.Principal, playlistID, videoID uint64) (*model.Playlist, error) {
	playlist, err := s.GetPlaylist(ctx, p, playlistID)
	if err != nil {
		return nil, err
	}
	video := &model.Video{}
	video.ID = videoID
	if err := s.playlistRepo.RemoveVideo(ctx, playlist, video); err != nil {
		return nil, errors.Wrap(err, "从歌单移除失败")
	}
	return s.GetPlaylist(ctx, p, playlistID)
}
