package dto

import (
	"time"

	"VidHub/internal/model"
	"VidHub/internal/service"
)

type VideoResponse struct {
	ID           uint64    `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	VideoURL     string    `json:"video_url"`
	ThumbnailURL string    `json:"thumbnail_url"`
	LikeCount    uint64    `json:"like_count"`
	DislikeCount uint64    `json:"dislike_count"`
	CommentCount uint64    `json:"comment_count"`
	Tags         []string  `json:"tags"`
	Channel      struct {  // 在这里定义了Channel的精确形状
		ID   uint64 `json:"id"`
		Name string `json:"name"`
	} `json:"channel"`
}

// VideoDetailResponse 详情页：计数为实时值，附带第一页评论和当前用户的状态
type VideoDetailResponse struct {
	VideoResponse
	Owner        UserInfo          `json:"owner"`
	IsSubscribed bool              `json:"is_subscribed"`
	Liked        bool              `json:"liked"`
	Disliked     bool              `json:"disliked"`
	Comments     []CommentResponse `json:"comments"`
}

// ToVideoResponse 是一个转换函数，把DB模型转换为API响应模型，并且正确利用preload返回的数据
func ToVideoResponse(video *model.Video) VideoResponse {
	resp := VideoResponse{
		ID:           video.ID,
		CreatedAt:    video.CreatedAt,
		Title:        video.Title,
		Description:  video.Description,
		VideoURL:     video.VideoURL,
		ThumbnailURL: video.ThumbnailURL,
		LikeCount:    video.LikeCount,
		DislikeCount: video.DislikeCount,
		CommentCount: video.CommentCount,
		Tags:         make([]string, 0, len(video.Tags)),
	}
	for _, tag := range video.Tags {
		resp.Tags = append(resp.Tags, tag.Name)
	}
	// 如果没有preload，就返回video结构体本身的
	resp.Channel.ID = video.ChannelID
	resp.Channel.Name = video.Channel.Name
	return resp
}

func ToVideoResponses(videos []model.Video) []VideoResponse {
	resp := make([]VideoResponse, 0, len(videos))
	for i := range videos {
		resp = append(resp, ToVideoResponse(&videos[i]))
	}
	return resp
}

func ToVideoDetailResponse(detail *service.VideoDetail) VideoDetailResponse {
	resp := VideoDetailResponse{
		VideoResponse: ToVideoResponse(detail.Video),
		IsSubscribed:  detail.IsSubscribed,
		Liked:         detail.Liked,
		Disliked:      detail.Disliked,
		Comments:      ToCommentResponses(detail.Comments),
	}
	resp.LikeCount = detail.Counts.Likes
	resp.DislikeCount = detail.Counts.Dislikes
	resp.CommentCount = detail.Counts.Comments
	if detail.Video.Channel.User.ID != 0 {
		resp.Owner = ToUserInfo(&detail.Video.Channel.User)
	}
	return resp
}

type TagResponse struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

func ToTagResponses(tags []model.Tag) []TagResponse {
	resp := make([]TagResponse, 0, len(tags))
	for _, tag := range tags {
		resp = append(resp, TagResponse{ID: tag.ID, Name: tag.Name})
	}
	return resp
}

type SearchResponse struct {
	ID        uint64    `json:"id"`
	Query     string    `json:"query"`
	CreatedAt time.Time `json:"created_at"`
	UserID    uint64    `json:"user_id"`
}

func ToSearchResponses(searches []model.Search) []SearchResponse {
	resp := make([]SearchResponse, 0, len(searches))
	for _, s := range searches {
		resp = append(resp, SearchResponse{ID: s.ID, Query: s.Query, CreatedAt: s.CreatedAt, UserID: s.UserID})
	}
	return resp
}
