package service

import (
	"context"
	"strings"
	"testing"

	"VidHub/internal/model"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentLength(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice", false)
	env.createChannel(t, alice)
	v := env.upload(t, alice, "v")

	_, err := env.comments.CreateComment(ctx, alice, v.ID, strings.Repeat("a", 501))
	assert.True(t, errors.Is(err, ErrValidation))
	_, err = env.comments.CreateComment(ctx, alice, v.ID, "   ")
	assert.True(t, errors.Is(err, ErrValidation))

	// 按字符而不是字节计数
	c, err := env.comments.CreateComment(ctx, alice, v.ID, strings.Repeat("评", 500))
	require.NoError(t, err)
	assert.Equal(t, "alice", c.User.Username)

	_, err = env.comments.CreateComment(ctx, alice, 404, "hi")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestCommentScope(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice", false)
	bob := env.register(t, "bob", false)
	staff := env.register(t, "admin", true)
	env.createChannel(t, alice)
	v := env.upload(t, alice, "v")

	aliceComment, err := env.comments.CreateComment(ctx, alice, v.ID, "mine")
	require.NoError(t, err)
	bobComment, err := env.comments.CreateComment(ctx, bob, v.ID, "bob's")
	require.NoError(t, err)

	mine, err := env.comments.ListMyComments(ctx, alice, 1, 20)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, aliceComment.ID, mine[0].ID)

	// 视频作者也不能删别人的评论
	err = env.comments.DeleteComment(ctx, alice, bobComment.ID)
	assert.True(t, errors.Is(err, ErrNotFound))

	all, err := env.comments.ListMyComments(ctx, staff, 1, 20)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	require.NoError(t, env.comments.DeleteComment(ctx, staff, bobComment.ID))
	require.NoError(t, env.comments.DeleteComment(ctx, alice, aliceComment.ID))

	left, err := env.comments.ListComments(ctx, v.ID, 1, 20)
	require.NoError(t, err)
	assert.Empty(t, left)
	assert.Equal(t, []string{ActionComment, ActionComment, ActionUncomment, ActionUncomment}, env.pub.actions())
}

func TestLikeAndDislike(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice", false)
	bob := env.register(t, "bob", false)
	env.createChannel(t, alice)
	v := env.upload(t, alice, "v")

	n, err := env.likes.LikeVideo(ctx, bob, v.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), n)
	_, err = env.likes.LikeVideo(ctx, bob, v.ID)
	assert.True(t, errors.Is(err, ErrDuplicate))

	n, err = env.likes.DislikeVideo(ctx, bob, v.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), n)

	n, err = env.likes.UnlikeVideo(ctx, bob, v.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
	_, err = env.likes.UnlikeVideo(ctx, bob, v.ID)
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = env.likes.LikeVideo(ctx, bob, 404)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestPublishFailureDoesNotFailRequest(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.pub.err = errors.New("broker down")
	alice := env.register(t, "alice", false)
	env.createChannel(t, alice)
	v := env.upload(t, alice, "v")

	_, err := env.likes.LikeVideo(ctx, alice, v.ID)
	assert.NoError(t, err)
}

func TestPlaylistScope(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice", false)
	bob := env.register(t, "bob", false)
	staff := env.register(t, "admin", true)
	env.createChannel(t, alice)
	v := env.upload(t, alice, "v")

	_, err := env.playlists.CreatePlaylist(ctx, bob, " ")
	assert.True(t, errors.Is(err, ErrValidation))

	pl, err := env.playlists.CreatePlaylist(ctx, bob, "later")
	require.NoError(t, err)
	pl, err = env.playlists.AddVideo(ctx, bob, pl.ID, v.ID)
	require.NoError(t, err)
	assert.Len(t, pl.Videos, 1)

	_, err = env.playlists.AddVideo(ctx, alice, pl.ID, v.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = env.playlists.AddVideo(ctx, bob, pl.ID, 404)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(env.playlists.DeletePlaylist(ctx, alice, pl.ID), ErrNotFound))

	renamed, err := env.playlists.RenamePlaylist(ctx, staff, pl.ID, "watch later")
	require.NoError(t, err)
	assert.Equal(t, "watch later", renamed.Name)

	pl, err = env.playlists.RemoveVideo(ctx, bob, pl.ID, v.ID)
	require.NoError(t, err)
	assert.Empty(t, pl.Videos)

	require.NoError(t, env.playlists.DeletePlaylist(ctx, bob, pl.ID))
	list, err := env.playlists.ListPlaylists(ctx, bob, 1, 20)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCounterApplyIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice", false)
	bob := env.register(t, "bob", false)
	env.createChannel(t, alice)
	v := env.upload(t, alice, "v")

	_, err := env.likes.LikeVideo(ctx, bob, v.ID)
	require.NoError(t, err)
	_, err = env.likes.DislikeVideo(ctx, alice, v.ID)
	require.NoError(t, err)
	_, err = env.comments.CreateComment(ctx, bob, v.ID, "hi")
	require.NoError(t, err)
	_, err = env.videos.GetVideoByID(ctx, v.ID)
	require.NoError(t, err)

	evt := EngagementEvent{Action: ActionLike, UserID: bob.UserID, VideoID: v.ID}
	require.NoError(t, env.counters.Apply(ctx, evt))
	require.NoError(t, env.counters.Apply(ctx, evt))
	assert.False(t, env.mr.Exists("video:info:1"))

	var stored model.Video
	require.NoError(t, env.db.First(&stored, v.ID).Error)
	assert.Equal(t, uint64(1), stored.LikeCount)
	assert.Equal(t, uint64(1), stored.DislikeCount)
	assert.Equal(t, uint64(1), stored.CommentCount)

	assert.True(t, errors.Is(env.counters.Apply(ctx, EngagementEvent{Action: ActionLike}), ErrValidation))
}
