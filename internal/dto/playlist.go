package dto

import (
	"time"

	"VidHub/internal/model"
)

type PlaylistResponse struct {
	ID        uint64          `json:"id"`
	Name      string          `json:"name"`
	UserID    uint64          `json:"user_id"`
	CreatedAt time.Time       `json:"created_at"`
	Videos    []VideoResponse `json:"videos"`
}

func ToPlaylistResponse(playlist *model.Playlist) PlaylistResponse {
	return PlaylistResponse{
		ID:        playlist.ID,
		Name:      playlist.Name,
		UserID:    playlist.UserID,
		CreatedAt: playlist.CreatedAt,
		Videos:    ToVideoResponses(playlist.Videos),
	}
}

func ToPlaylistResponses(playlists []model.Playlist) []PlaylistResponse {
	resp := make([]PlaylistResponse, 0, len(playlists))
	for i := range playlists {
		resp = append(resp, ToPlaylistResponse(&playlists[i]))
	}
	return resp
}
