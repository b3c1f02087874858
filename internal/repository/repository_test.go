package repository_test

import (
	"context"
	"testing"
	"time"

	"VidHub/internal/auth"
	"VidHub/internal/model"
	"VidHub/internal/repository"
	"VidHub/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db      *gorm.DB
	alice   *model.User
	bob     *model.User
	channel *model.Channel
	video   *model.Video
}

// alice有频道和一个视频，bob只是普通用户
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	db := testutil.NewDB(t)
	users := repository.NewUserRepository(db)

	f := &fixture{db: db}
	f.alice = &model.User{Username: "alice", Password: "x", Email: "alice@example.com"}
	f.bob = &model.User{Username: "bob", Password: "x"}
	require.NoError(t, users.Create(ctx, f.alice))
	require.NoError(t, users.Create(ctx, f.bob))

	f.channel = &model.Channel{UserID: f.alice.ID, Name: "alice tv"}
	require.NoError(t, repository.NewChannelRepository(db).Create(ctx, f.channel))

	f.video = &model.Video{ChannelID: f.channel.ID, Title: "first", VideoKey: "videos/a.mp4", VideoURL: "/media/videos/a.mp4"}
	require.NoError(t, repository.NewVideoRepository(db, nil).Create(ctx, f.video))
	return f
}

func TestUserFindByLogin(t *testing.T) {
	f := newFixture(t)
	users := repository.NewUserRepository(f.db)
	ctx := context.Background()

	u, err := users.FindByLogin(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, f.alice.ID, u.ID)

	u, err = users.FindByLogin(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, f.bob.ID, u.ID)

	// bob没有邮箱，空字符串不能当登录名匹配到他
	_, err = users.FindByLogin(ctx, "")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

// 邮箱不唯一，别人的邮箱不能抢走同名用户的登录
func TestUserFindByLoginPrefersUsername(t *testing.T) {
	db := testutil.NewDB(t)
	users := repository.NewUserRepository(db)
	ctx := context.Background()

	mallory := &model.User{Username: "mallory", Password: "x", Email: "bob"}
	require.NoError(t, users.Create(ctx, mallory))
	bob := &model.User{Username: "bob", Password: "x"}
	require.NoError(t, users.Create(ctx, bob))
	carol := &model.User{Username: "carol@example.com", Password: "x"}
	require.NoError(t, users.Create(ctx, carol))
	dave := &model.User{Username: "dave", Password: "x", Email: "carol@example.com"}
	require.NoError(t, users.Create(ctx, dave))

	u, err := users.FindByLogin(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, bob.ID, u.ID)

	u, err = users.FindByLogin(ctx, "carol@example.com")
	require.NoError(t, err)
	assert.Equal(t, carol.ID, u.ID)

	// 不含@的输入只按用户名查
	_, err = users.FindByLogin(ctx, "ghost")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserDuplicateUsername(t *testing.T) {
	f := newFixture(t)
	err := repository.NewUserRepository(f.db).Create(context.Background(), &model.User{Username: "alice", Password: "y"})
	assert.True(t, repository.IsDuplicateKey(err))
}

func TestChannelOnePerUser(t *testing.T) {
	f := newFixture(t)
	err := repository.NewChannelRepository(f.db).Create(context.Background(), &model.Channel{UserID: f.alice.ID, Name: "again"})
	assert.True(t, repository.IsDuplicateKey(err))
}

func TestChannelPreloadHidesPassword(t *testing.T) {
	f := newFixture(t)
	ch, err := repository.NewChannelRepository(f.db).FindByID(context.Background(), f.channel.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", ch.User.Username)
	assert.Empty(t, ch.User.Password)
}

func TestCommentScopeSharedByListAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	comments := repository.NewCommentRepository(f.db)

	mine := &model.Comment{VideoID: f.video.ID, UserID: f.alice.ID, Content: "nice"}
	theirs := &model.Comment{VideoID: f.video.ID, UserID: f.bob.ID, Content: "meh"}
	require.NoError(t, comments.Create(ctx, mine))
	require.NoError(t, comments.Create(ctx, theirs))

	alice := auth.Principal{UserID: f.alice.ID}
	list, err := comments.ListVisible(ctx, alice, 1, 20)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, mine.ID, list[0].ID)

	// 列表里看不到的，也删不掉
	assert.ErrorIs(t, comments.DeleteVisible(ctx, alice, theirs.ID), gorm.ErrRecordNotFound)

	staff := auth.Principal{UserID: 999, IsStaff: true}
	list, err = comments.ListVisible(ctx, staff, 1, 20)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	require.NoError(t, comments.DeleteVisible(ctx, staff, theirs.ID))

	byVideo, err := comments.GetCommentsByVideoID(ctx, f.video.ID, 1, 20)
	require.NoError(t, err)
	require.Len(t, byVideo, 1)
	assert.Equal(t, "alice", byVideo[0].User.Username)
}

func TestReactions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	reactions := repository.NewReactionRepository(f.db)

	require.NoError(t, reactions.Create(ctx, repository.ReactionLike, f.bob.ID, f.video.ID))
	err := reactions.Create(ctx, repository.ReactionLike, f.bob.ID, f.video.ID)
	assert.True(t, repository.IsDuplicateKey(err))

	// 赞和踩互不影响
	require.NoError(t, reactions.Create(ctx, repository.ReactionDislike, f.bob.ID, f.video.ID))

	n, err := reactions.Count(ctx, repository.ReactionLike, f.video.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), n)

	require.NoError(t, reactions.Delete(ctx, repository.ReactionLike, f.bob.ID, f.video.ID))
	assert.ErrorIs(t, reactions.Delete(ctx, repository.ReactionLike, f.bob.ID, f.video.ID), gorm.ErrRecordNotFound)

	ok, err := reactions.Exists(ctx, repository.ReactionDislike, f.bob.ID, f.video.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSubscriberIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	subs := repository.NewSubscriberRepository(f.db)

	require.NoError(t, subs.Add(ctx, f.channel.ID, f.bob.ID))
	require.NoError(t, subs.Add(ctx, f.channel.ID, f.bob.ID))
	n, err := subs.CountByChannel(ctx, f.channel.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), n)

	ids, err := subs.ChannelIDsByUser(ctx, f.bob.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint64{f.channel.ID}, ids)

	require.NoError(t, subs.Remove(ctx, f.channel.ID, f.bob.ID))
	require.NoError(t, subs.Remove(ctx, f.channel.ID, f.bob.ID))
	n, err = repository.NewChannelRepository(f.db).RefreshSubscriberCount(ctx, f.channel.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestVideoTagsAndLatest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	videos := repository.NewVideoRepository(f.db, nil)
	tags := repository.NewTagRepository(f.db)

	other := &model.Video{ChannelID: f.channel.ID, Title: "second", VideoKey: "videos/b.mp4", VideoURL: "/media/videos/b.mp4"}
	require.NoError(t, videos.Create(ctx, other))

	got, err := tags.FindOrCreate(ctx, []string{"go", "music"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	again, err := tags.FindOrCreate(ctx, []string{"go"})
	require.NoError(t, err)
	assert.Equal(t, got[0].ID, again[0].ID)

	require.NoError(t, videos.ReplaceTags(ctx, f.video, got))

	tagged, err := videos.FindLatest(ctx, 1, 20, "go")
	require.NoError(t, err)
	require.Len(t, tagged, 1)
	assert.Equal(t, f.video.ID, tagged[0].ID)
	assert.Len(t, tagged[0].Tags, 2)

	all, err := videos.FindLatest(ctx, 1, 20, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	found, err := videos.Search(ctx, "seco", 1, 20)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, other.ID, found[0].ID)
}

func TestVideoSearchEscapesWildcards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	videos := repository.NewVideoRepository(f.db, nil)

	discount := &model.Video{ChannelID: f.channel.ID, Title: "100% off_today!", VideoKey: "videos/c.mp4", VideoURL: "/media/videos/c.mp4"}
	require.NoError(t, videos.Create(ctx, discount))

	for _, q := range []string{"%", "_", "100%", "off_", "!"} {
		found, err := videos.Search(ctx, q, 1, 20)
		require.NoError(t, err, q)
		require.Len(t, found, 1, q)
		assert.Equal(t, discount.ID, found[0].ID, q)
	}

	found, err := videos.Search(ctx, "f_rst", 1, 20)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestVideoRefreshCountersIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	videos := repository.NewVideoRepository(f.db, nil)
	require.NoError(t, repository.NewReactionRepository(f.db).Create(ctx, repository.ReactionLike, f.bob.ID, f.video.ID))
	require.NoError(t, repository.NewCommentRepository(f.db).Create(ctx, &model.Comment{VideoID: f.video.ID, UserID: f.bob.ID, Content: "hi"}))

	for i := 0; i < 2; i++ {
		counts, err := videos.RefreshCounters(ctx, f.video.ID)
		require.NoError(t, err)
		assert.Equal(t, repository.VideoCounts{Likes: 1, Comments: 1}, counts)
	}
	v, err := videos.FindByID(ctx, f.video.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), v.LikeCount)
	assert.Equal(t, uint64(1), v.CommentCount)
}

func TestVideoCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rdb, mr := testutil.NewRedis(t)
	videos := repository.NewVideoRepository(f.db, rdb)

	cached, err := videos.GetVideoCache(ctx, f.video.ID)
	require.NoError(t, err)
	assert.Nil(t, cached)

	v, err := videos.FindByID(ctx, f.video.ID)
	require.NoError(t, err)
	require.NoError(t, videos.SetVideoCache(ctx, v))
	assert.True(t, mr.Exists("video:info:1"))
	ttl := mr.TTL("video:info:1")
	assert.True(t, ttl >= 5*time.Minute && ttl < 6*time.Minute)

	cached, err = videos.GetVideoCache(ctx, f.video.ID)
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, "first", cached.Title)
	assert.Equal(t, "alice", cached.Channel.User.Username)

	require.NoError(t, videos.DeleteVideoCache(ctx, f.video.ID))
	assert.False(t, mr.Exists("video:info:1"))
}

func TestVideoDeleteByIDs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	videos := repository.NewVideoRepository(f.db, nil)
	got, err := repository.NewTagRepository(f.db).FindOrCreate(ctx, []string{"go"})
	require.NoError(t, err)
	require.NoError(t, videos.ReplaceTags(ctx, f.video, got))

	require.NoError(t, videos.DeleteByIDs(ctx, []uint64{f.video.ID}))
	_, err = videos.FindByID(ctx, f.video.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// 标签本身保留
	left, err := repository.NewTagRepository(f.db).List(ctx)
	require.NoError(t, err)
	assert.Len(t, left, 1)
}

func TestPlaylistScope(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	playlists := repository.NewPlaylistRepository(f.db)

	pl := &model.Playlist{UserID: f.bob.ID, Name: "later"}
	require.NoError(t, playlists.Create(ctx, pl))
	require.NoError(t, playlists.AddVideo(ctx, pl, f.video))
	require.NoError(t, playlists.AddVideo(ctx, pl, f.video))

	bob := auth.Principal{UserID: f.bob.ID}
	got, err := playlists.FindVisible(ctx, bob, pl.ID)
	require.NoError(t, err)
	assert.Len(t, got.Videos, 1)

	alice := auth.Principal{UserID: f.alice.ID}
	_, err = playlists.FindVisible(ctx, alice, pl.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.ErrorIs(t, playlists.DeleteVisible(ctx, alice, pl.ID), gorm.ErrRecordNotFound)

	require.NoError(t, playlists.RemoveVideos(ctx, []uint64{f.video.ID}))
	got, err = playlists.FindVisible(ctx, bob, pl.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Videos)

	require.NoError(t, playlists.DeleteVisible(ctx, bob, pl.ID))
	list, err := playlists.ListVisible(ctx, bob, 1, 20)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSearchHistoryScope(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	searches := repository.NewSearchRepository(f.db)
	require.NoError(t, searches.Create(ctx, &model.Search{UserID: f.alice.ID, Query: "go"}))
	require.NoError(t, searches.Create(ctx, &model.Search{UserID: f.bob.ID, Query: "music"}))

	mine, err := searches.ListVisible(ctx, auth.Principal{UserID: f.bob.ID}, 1, 20)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "music", mine[0].Query)
}

func TestResetTokenSingleUse(t *testing.T) {
	rdb, mr := testutil.NewRedis(t)
	store := repository.NewResetTokenStore(rdb)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "abc", 42, 30*time.Minute))
	assert.Equal(t, 30*time.Minute, mr.TTL("reset_token:abc"))

	id, err := store.Consume(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, uint64(42), id)

	_, err = store.Consume(ctx, "abc")
	assert.ErrorIs(t, err, repository.ErrResetTokenNotFound)

	require.NoError(t, store.Save(ctx, "old", 1, time.Minute))
	mr.FastForward(2 * time.Minute)
	_, err = store.Consume(ctx, "old")
	assert.ErrorIs(t, err, repository.ErrResetTokenNotFound)
}
