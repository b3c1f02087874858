package service

import (
	"context"

	"VidHub/pkg/logger"
)

// 互动事件的动作
const (
	ActionLike        = "like"
	ActionUnlike      = "unlike"
	ActionDislike     = "dislike"
	ActionUndislike   = "undislike"
	ActionComment     = "comment"
	ActionUncomment   = "uncomment"
	ActionSubscribe   = "subscribe"
	ActionUnsubscribe = "unsubscribe"
)

// EngagementEvent 投递到engagement队列的消息，VideoID和ChannelID至少一个非零
type EngagementEvent struct {
	Action    string `json:"action"`
	UserID    uint64 `json:"user_id"`
	VideoID   uint64 `json:"video_id,omitempty"`
	ChannelID uint64 `json:"channel_id,omitempty"`
}

// EventPublisher 由pkg/rabbitmq.Publisher实现
type EventPublisher interface {
	Publish(ctx context.Context, msg interface{}) error
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, interface{}) error { return nil }

func orNoop(p EventPublisher) EventPublisher {
	if p == nil {
		return noopPublisher{}
	}
	return p
}

// publishEvent 尽力投递：计数只是读模型，投递失败只记日志，不影响本次请求
func publishEvent(ctx context.Context, p EventPublisher, evt EngagementEvent) {
	if err := p.Publish(ctx, evt); err != nil {
		logger.Log.WithError(err).
			WithField("action", evt.Action).
			WithField("user_id", evt.UserID).
			WithField("video_id", evt.VideoID).
			WithField("channel_id", evt.ChannelID).
			Warn("互动事件投递失败")
	}
}
