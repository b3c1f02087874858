package dto

import (
	"time"

	"VidHub/internal/model"
)

// CommentResponse 是评论的响应结构
type CommentResponse struct {
	ID        uint64    `json:"id"`
	VideoID   uint64    `json:"video_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	Author    UserInfo  `json:"author"`
}

func ToCommentResponse(comment *model.Comment) CommentResponse {
	resp := CommentResponse{
		ID:        comment.ID,
		VideoID:   comment.VideoID,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
	}
	// 安全地填充作者信息，没有preload时只有ID
	if comment.User.ID != 0 {
		resp.Author = ToUserInfo(&comment.User)
	} else {
		resp.Author.ID = comment.UserID
	}
	return resp
}

func ToCommentResponses(comments []model.Comment) []CommentResponse {
	// 创建一个有预估容量的切片
	resp := make([]CommentResponse, 0, len(comments))
	for i := range comments {
		resp = append(resp, ToCommentResponse(&comments[i]))
	}
	return resp
}
