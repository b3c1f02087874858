package handler_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"VidHub/internal/auth"
	"VidHub/internal/data"
	"VidHub/internal/handler"
	"VidHub/internal/repository"
	"VidHub/internal/router"
	"VidHub/internal/service"
	"VidHub/internal/testutil"
	"VidHub/pkg/storage"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiClient struct {
	t      *testing.T
	engine *gin.Engine
}

type apiResponse struct {
	Code int
	Body map[string]interface{}
	Raw  *httptest.ResponseRecorder
}

func newAPI(t *testing.T) *apiClient {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.NewDB(t)
	rdb, _ := testutil.NewRedis(t)
	mediaDir := t.TempDir()
	store, err := storage.NewLocal(mediaDir, "/media")
	require.NoError(t, err)

	repos := data.NewRepositories(db, rdb)
	uow := data.NewUnitOfWork(db, repos)
	tokens := auth.NewTokenManager("test-secret", time.Hour)

	userService := service.NewUserService(repository.NewUserRepository(db), repos.Channel, repos.Video,
		repository.NewResetTokenStore(rdb), tokens, 30*time.Minute)
	videoService := service.NewVideoService(uow, repos, repository.NewSearchRepository(db), store, nil)

	engine := router.SetupRouter(router.Handlers{
		User:     handler.NewUserHandler(userService, true),
		Channel:  handler.NewChannelHandler(service.NewChannelService(uow, repos.Channel, repos.Video, repos.Subscriber, store, nil)),
		Video:    handler.NewVideoHandler(videoService),
		Comment:  handler.NewCommentHandler(service.NewCommentService(repos.Comment, repos.Video, nil)),
		Like:     handler.NewLikeHandler(service.NewLikeService(repos.Video, repos.Reaction, nil)),
		Playlist: handler.NewPlaylistHandler(service.NewPlaylistService(repos.Playlist, repos.Video)),
		Search:   handler.NewSearchHandler(videoService),
	}, tokens, router.Options{MediaDir: mediaDir})
	return &apiClient{t: t, engine: engine}
}

func (a *apiClient) do(req *http.Request, token string) apiResponse {
	a.t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	resp := apiResponse{Code: w.Code, Raw: w}
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &resp.Body))
	}
	return resp
}

func (a *apiClient) json(method, path, token string, body interface{}) apiResponse {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return a.do(req, token)
}

func (a *apiClient) form(method, path, token string, values url.Values) apiResponse {
	a.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return a.do(req, token)
}

// signUp 注册并登录，返回token
func (a *apiClient) signUp(username string) string {
	a.t.Helper()
	resp := a.json(http.MethodPost, "/api/v1/users/register", "", gin.H{"username": username, "password": "s3cret-pass"})
	require.Equal(a.t, http.StatusCreated, resp.Code, resp.Raw.Body.String())
	resp = a.json(http.MethodPost, "/api/v1/users/login", "", gin.H{"username": username, "password": "s3cret-pass"})
	require.Equal(a.t, http.StatusOK, resp.Code)
	return resp.Body["data"].(map[string]interface{})["token"].(string)
}

func (a *apiClient) uploadVideo(token, title string) apiResponse {
	a.t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(a.t, w.WriteField("title", title))
	require.NoError(a.t, w.WriteField("tags", "go, music"))
	fw, err := w.CreateFormFile("video_file", "clip.mp4")
	require.NoError(a.t, err)
	_, err = fw.Write([]byte("fake video bytes"))
	require.NoError(a.t, err)
	require.NoError(a.t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/videos", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return a.do(req, token)
}

func id(resp apiResponse) string {
	data := resp.Body["data"].(map[string]interface{})
	return strconv.FormatUint(uint64(data["id"].(float64)), 10)
}

func TestSubscribeEndToEnd(t *testing.T) {
	api := newAPI(t)
	tokenA := api.signUp("a")
	tokenB := api.signUp("b")

	resp := api.json(http.MethodPost, "/api/v1/channels", tokenA, gin.H{"name": "a tv"})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Raw.Body.String())
	channelID := id(resp)

	resp = api.uploadVideo(tokenA, "first")
	require.Equal(t, http.StatusCreated, resp.Code, resp.Raw.Body.String())

	// 表单方式关注
	resp = api.form(http.MethodPost, "/api/v1/channels/"+channelID+"/subscribe", tokenB, url.Values{"subscribe": {"true"}})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "success", resp.Body["status"])
	assert.Equal(t, float64(1), resp.Body["new_subscription_count"])

	resp = api.do(httptest.NewRequest(http.MethodGet, "/api/v1/channels/"+channelID, nil), tokenB)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, true, resp.Body["data"].(map[string]interface{})["is_subscribed"])

	// JSON方式取消关注
	resp = api.json(http.MethodPost, "/api/v1/channels/"+channelID+"/subscribe", tokenB, gin.H{"subscribe": "false"})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, float64(0), resp.Body["new_subscription_count"])

	// 空的JSON请求体视为取消关注
	resp = api.json(http.MethodPost, "/api/v1/channels/"+channelID+"/subscribe", tokenB, gin.H{"subscribe": true})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, float64(1), resp.Body["new_subscription_count"])
	resp = api.json(http.MethodPost, "/api/v1/channels/"+channelID+"/subscribe", tokenB, nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Raw.Body.String())
	assert.Equal(t, float64(0), resp.Body["new_subscription_count"])

	resp = api.form(http.MethodPost, "/api/v1/channels/999/subscribe", tokenB, url.Values{"subscribe": {"true"}})
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "error", resp.Body["status"])
}

func TestCommentTooLong(t *testing.T) {
	api := newAPI(t)
	token := api.signUp("a")
	require.Equal(t, http.StatusCreated, api.json(http.MethodPost, "/api/v1/channels", token, gin.H{"name": "tv"}).Code)
	videoID := id(api.uploadVideo(token, "v"))

	resp := api.json(http.MethodPost, "/api/v1/videos/"+videoID+"/comments", token, gin.H{"content": strings.Repeat("x", 501)})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "error", resp.Body["status"])

	resp = api.json(http.MethodPost, "/api/v1/videos/"+videoID+"/comments", token, gin.H{"content": strings.Repeat("x", 500)})
	assert.Equal(t, http.StatusCreated, resp.Code)
}

func TestAuthAndOwnership(t *testing.T) {
	api := newAPI(t)
	tokenA := api.signUp("a")
	tokenB := api.signUp("b")
	require.Equal(t, http.StatusCreated, api.json(http.MethodPost, "/api/v1/channels", tokenA, gin.H{"name": "tv"}).Code)
	videoID := id(api.uploadVideo(tokenA, "v"))

	resp := api.json(http.MethodPost, "/api/v1/videos/"+videoID+"/comments", "", gin.H{"content": "hi"})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	resp = api.json(http.MethodPost, "/api/v1/videos/"+videoID+"/comments", "not-a-token", gin.H{"content": "hi"})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	commentID := id(api.json(http.MethodPost, "/api/v1/videos/"+videoID+"/comments", tokenA, gin.H{"content": "mine"}))
	resp = api.json(http.MethodDelete, "/api/v1/comments/"+commentID, tokenB, nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = api.json(http.MethodDelete, "/api/v1/videos/"+videoID, tokenB, nil)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = api.json(http.MethodPost, "/api/v1/videos/"+videoID+"/like", tokenB, nil)
	assert.Equal(t, http.StatusOK, resp.Code)
	resp = api.json(http.MethodPost, "/api/v1/videos/"+videoID+"/like", tokenB, nil)
	assert.Equal(t, http.StatusConflict, resp.Code)

	resp = api.json(http.MethodDelete, "/api/v1/comments/"+commentID, tokenA, nil)
	assert.Equal(t, http.StatusOK, resp.Code)
	resp = api.json(http.MethodDelete, "/api/v1/videos/"+videoID, tokenA, nil)
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestUploadWithoutChannel(t *testing.T) {
	api := newAPI(t)
	token := api.signUp("a")
	resp := api.uploadVideo(token, "v")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestVideoPagesAndRedirect(t *testing.T) {
	api := newAPI(t)
	token := api.signUp("a")
	require.Equal(t, http.StatusCreated, api.json(http.MethodPost, "/api/v1/channels", token, gin.H{"name": "tv"}).Code)
	videoID := id(api.uploadVideo(token, "Learning Go"))

	resp := api.do(httptest.NewRequest(http.MethodGet, "/api/v1/videos?tag=music", nil), "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Len(t, resp.Body["data"], 1)

	resp = api.do(httptest.NewRequest(http.MethodGet, "/api/v1/videos/"+videoID+"/media", nil), "")
	require.Equal(t, http.StatusFound, resp.Code)
	location := resp.Raw.Header().Get("Location")
	assert.True(t, strings.HasPrefix(location, "/media/videos/"))

	// 本地存储通过 /media 直接访问
	resp = api.do(httptest.NewRequest(http.MethodGet, location, nil), "")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "fake video bytes", resp.Raw.Body.String())

	resp = api.do(httptest.NewRequest(http.MethodGet, "/api/v1/videos/"+videoID+"/thumbnail", nil), "")
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = api.do(httptest.NewRequest(http.MethodGet, "/api/v1/search?q=go", nil), token)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Len(t, resp.Body["data"], 1)
	resp = api.do(httptest.NewRequest(http.MethodGet, "/api/v1/search/history", nil), token)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Len(t, resp.Body["data"], 1)

	resp = api.do(httptest.NewRequest(http.MethodGet, "/api/v1/videos/abc", nil), "")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestPasswordResetFlow(t *testing.T) {
	api := newAPI(t)
	api.signUp("a")

	resp := api.json(http.MethodPost, "/api/v1/users/password/reset", "", gin.H{"login": "a"})
	require.Equal(t, http.StatusOK, resp.Code)
	token := resp.Body["data"].(map[string]interface{})["reset_token"].(string)

	resp = api.json(http.MethodPost, "/api/v1/users/password/reset", "", gin.H{"login": "ghost"})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Nil(t, resp.Body["data"])

	resp = api.json(http.MethodPost, "/api/v1/users/password/reset/confirm", "", gin.H{"token": token, "new_password": "another-pass"})
	require.Equal(t, http.StatusOK, resp.Code)
	resp = api.json(http.MethodPost, "/api/v1/users/password/reset/confirm", "", gin.H{"token": token, "new_password": "another-pass"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = api.json(http.MethodPost, "/api/v1/users/login", "", gin.H{"username": "a", "password": "another-pass"})
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestHealth(t *testing.T) {
	api := newAPI(t)
	resp := api.do(httptest.NewRequest(http.MethodGet, "/health", nil), "")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "ok", resp.Body["status"])
}
