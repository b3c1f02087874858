package dto

import (
	"time"

	"VidHub/internal/model"
	"VidHub/internal/service"
)

type ChannelResponse struct {
	ID              uint64    `json:"id"`
	CreatedAt       time.Time `json:"created_at"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	ProfilePhotoURL string    `json:"profile_photo_url"`
	SubscriberCount uint64    `json:"subscriber_count"`
	Owner           UserInfo  `json:"owner"`
}

type ChannelDetailResponse struct {
	ChannelResponse
	IsSubscribed bool            `json:"is_subscribed"`
	Videos       []VideoResponse `json:"videos"`
}

type SubscriptionsResponse struct {
	Count    int               `json:"count"`
	Channels []ChannelResponse `json:"channels"`
}

func ToChannelResponse(channel *model.Channel) ChannelResponse {
	resp := ChannelResponse{
		ID:              channel.ID,
		CreatedAt:       channel.CreatedAt,
		Name:            channel.Name,
		Description:     channel.Description,
		ProfilePhotoURL: channel.ProfilePhotoURL,
		SubscriberCount: channel.SubscriberCount,
	}
	// 检查User是否被成功preload
	if channel.User.ID != 0 {
		resp.Owner = ToUserInfo(&channel.User)
	} else {
		resp.Owner.ID = channel.UserID
	}
	return resp
}

func ToChannelResponses(channels []model.Channel) []ChannelResponse {
	resp := make([]ChannelResponse, 0, len(channels))
	for i := range channels {
		resp = append(resp, ToChannelResponse(&channels[i]))
	}
	return resp
}

// ToChannelDetailResponse 关注数用实时计数覆盖冗余字段
func ToChannelDetailResponse(detail *service.ChannelDetail) ChannelDetailResponse {
	resp := ChannelDetailResponse{
		ChannelResponse: ToChannelResponse(detail.Channel),
		IsSubscribed:    detail.IsSubscribed,
		Videos:          ToVideoResponses(detail.Videos),
	}
	resp.SubscriberCount = detail.SubscriberCount
	return resp
}

func ToSubscriptionsResponse(subs *service.Subscriptions) SubscriptionsResponse {
	return SubscriptionsResponse{
		Count:    subs.Count,
		Channels: ToChannelResponses(subs.Channels),
	}
}
