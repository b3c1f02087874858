package service

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"VidHub/internal/auth"
	"VidHub/internal/data"
	"VidHub/internal/model"
	"VidHub/internal/repository"
	"VidHub/internal/testutil"
	"VidHub/pkg/storage"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []EngagementEvent
	err    error
}

func (r *recordingPublisher) Publish(_ context.Context, msg interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if evt, ok := msg.(EngagementEvent); ok {
		r.events = append(r.events, evt)
	}
	return r.err
}

func (r *recordingPublisher) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Action)
	}
	return out
}

type fakeThumbnailer struct {
	calls int
}

func (f *fakeThumbnailer) FromVideo(_ context.Context, src io.Reader, _ string) ([]byte, error) {
	f.calls++
	_, err := io.Copy(io.Discard, src)
	return []byte("jpeg"), err
}

// testEnv 在内存sqlite + miniredis + 临时目录上组装全部服务
type testEnv struct {
	db    *gorm.DB
	mr    *miniredis.Miniredis
	repos data.Repositories
	store *storage.Local
	pub   *recordingPublisher
	thumb *fakeThumbnailer

	users     UserService
	channels  ChannelService
	videos    VideoService
	comments  CommentService
	likes     LikeService
	playlists PlaylistService
	counters  CounterService
}

func newTestEnv(t testing.TB) *testEnv {
	t.Helper()
	db := testutil.NewDB(t)
	rdb, mr := testutil.NewRedis(t)
	store, err := storage.NewLocal(t.TempDir(), "/media")
	require.NoError(t, err)

	repos := data.Repositories{
		Channel:    repository.NewChannelRepository(db),
		Video:      repository.NewVideoRepository(db, rdb),
		Comment:    repository.NewCommentRepository(db),
		Reaction:   repository.NewReactionRepository(db),
		Subscriber: repository.NewSubscriberRepository(db),
		Playlist:   repository.NewPlaylistRepository(db),
		Tag:        repository.NewTagRepository(db),
	}
	uow := data.NewUnitOfWork(db, repos)
	pub := &recordingPublisher{}
	thumb := &fakeThumbnailer{}
	tokens := auth.NewTokenManager("test-secret", time.Hour)

	return &testEnv{
		db:        db,
		mr:        mr,
		repos:     repos,
		store:     store,
		pub:       pub,
		thumb:     thumb,
		users:     NewUserService(repository.NewUserRepository(db), repos.Channel, repos.Video, repository.NewResetTokenStore(rdb), tokens, 30*time.Minute),
		channels:  NewChannelService(uow, repos.Channel, repos.Video, repos.Subscriber, store, pub),
		videos:    NewVideoService(uow, repos, repository.NewSearchRepository(db), store, thumb),
		comments:  NewCommentService(repos.Comment, repos.Video, pub),
		likes:     NewLikeService(repos.Video, repos.Reaction, pub),
		playlists: NewPlaylistService(repos.Playlist, repos.Video),
		counters:  NewCounterService(uow, repos.Video),
	}
}

func (e *testEnv) register(t testing.TB, username string, staff bool) auth.Principal {
	t.Helper()
	u, err := e.users.Register(context.Background(), username, "s3cret-pass", "")
	require.NoError(t, err)
	if staff {
		require.NoError(t, e.db.Model(&model.User{}).Where("id = ?", u.ID).Update("is_staff", true).Error)
	}
	return auth.Principal{UserID: u.ID, Username: u.Username, IsStaff: staff}
}

func (e *testEnv) createChannel(t testing.TB, p auth.Principal) *model.Channel {
	t.Helper()
	ch, err := e.channels.CreateChannel(context.Background(), p, ChannelInput{Name: p.Username + " tv"})
	require.NoError(t, err)
	return ch
}

func (e *testEnv) upload(t testing.TB, p auth.Principal, title string, tags ...string) *model.Video {
	t.Helper()
	v, err := e.videos.CreateVideo(context.Background(), p, VideoInput{
		Title: title,
		Tags:  tags,
		Media: fileUpload("clip.mp4", []byte("fake video")),
	})
	require.NoError(t, err)
	return v
}

func fileUpload(name string, content []byte) *FileUpload {
	return &FileUpload{
		Filename: name,
		Size:     int64(len(content)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(content)), nil
		},
	}
}
