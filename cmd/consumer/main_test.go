package main

import (
	"context"
	"testing"

	"VidHub/internal/service"
	"VidHub/pkg/logger"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

type fakeAck struct {
	acked    bool
	nacked   bool
	requeued bool
}

func (f *fakeAck) Ack(multiple bool) error {
	f.acked = true
	return nil
}

func (f *fakeAck) Nack(multiple, requeue bool) error {
	f.nacked = true
	f.requeued = requeue
	return nil
}

type fakeCounter struct {
	err    error
	events []service.EngagementEvent
}

func (f *fakeCounter) Apply(ctx context.Context, evt service.EngagementEvent) error {
	f.events = append(f.events, evt)
	return f.err
}

func TestProcess(t *testing.T) {
	entry := logger.Log.WithField("test", t.Name())

	t.Run("成功后Ack", func(t *testing.T) {
		ack, counter := &fakeAck{}, &fakeCounter{}
		process(context.Background(), entry, []byte(`{"action":"like","user_id":1,"video_id":7}`), ack, counter)
		assert.True(t, ack.acked)
		assert.False(t, ack.nacked)
		assert.Equal(t, []service.EngagementEvent{{Action: service.ActionLike, UserID: 1, VideoID: 7}}, counter.events)
	})

	t.Run("坏消息直接丢弃", func(t *testing.T) {
		ack, counter := &fakeAck{}, &fakeCounter{}
		process(context.Background(), entry, []byte(`not json`), ack, counter)
		assert.True(t, ack.nacked)
		assert.False(t, ack.requeued)
		assert.Empty(t, counter.events)
	})

	t.Run("校验失败不重试", func(t *testing.T) {
		ack := &fakeAck{}
		counter := &fakeCounter{err: errors.WithMessage(service.ErrValidation, "消息缺少video_id和channel_id")}
		process(context.Background(), entry, []byte(`{"action":"like"}`), ack, counter)
		assert.True(t, ack.nacked)
		assert.False(t, ack.requeued)
	})

	t.Run("临时错误重新入队", func(t *testing.T) {
		ack := &fakeAck{}
		counter := &fakeCounter{err: errors.New("数据库不可用")}
		process(context.Background(), entry, []byte(`{"action":"subscribe","user_id":1,"channel_id":3}`), ack, counter)
		assert.True(t, ack.nacked)
		assert.True(t, ack.requeued)
		assert.False(t, ack.acked)
	})
}
