package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"helloworld_backend/internal/config"
	"helloworld_backend/internal/model"
	"helloworld_backend/internal/repository"
	"helloworld_backend/internal/testutil"
	"helloworld_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSpeech 每段返回 "<idx>:<q>|"，方便检查拼接顺序
type fakeSpeech struct {
	calls atomic.Int32
	mu    sync.Mutex
	langs []string
	fail  atomic.Bool
}

func (f *fakeSpeech) languages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.langs...)
}

func (f *fakeSpeech) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.calls.Add(1)
	q := r.URL.Query()
	f.mu.Lock()
	f.langs = append(f.langs, q.Get("tl"))
	f.mu.Unlock()
	if f.fail.Load() {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "audio/mpeg")
	w.Write([]byte(q.Get("idx") + ":" + q.Get("q") + "|"))
}

func newTTSService(t *testing.T, withRedis bool) (*TTSService, *fakeSpeech, string) {
	t.Helper()
	upstream := &fakeSpeech{}
	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	storage := &StorageService{Provider: &LocalStorageProvider{Config: &config.StorageConfig{LocalPath: dir}}}
	repo := repository.NewSpeechRepository(testutil.NewDB(t))
	cfg := config.TTSConfig{
		Endpoint:       srv.URL + "/translate_tts",
		MaxChars:       100,
		ChunkChars:     10,
		Languages:      []string{"en", "es", "zh-CN"},
		TimeoutSeconds: 5,
	}
	if withRedis {
		_, rdb := testutil.NewRedis(t)
		return NewTTSService(cfg, repo, storage, rdb), upstream, dir
	}
	return NewTTSService(cfg, repo, storage, nil), upstream, dir
}

func TestSplitText(t *testing.T) {
	assert.Equal(t, []string{"one two", "three four", "five"}, SplitText("one two three four five", 10))
	assert.Equal(t, []string{"abcd", "efgh", "ij k"}, SplitText("abcdefghij k", 4))
	assert.Empty(t, SplitText("   ", 10))
}

func TestSpeechCacheKey(t *testing.T) {
	assert.Len(t, SpeechCacheKey("en", "hi"), 64)
	assert.Equal(t, SpeechCacheKey("en", "hi"), SpeechCacheKey("en", "hi"))
	assert.NotEqual(t, SpeechCacheKey("en", "hi"), SpeechCacheKey("es", "hi"))
}

func TestTTSSynthesize(t *testing.T) {
	svc, upstream, dir := newTTSService(t, true)
	ctx := context.Background()

	res, err := svc.Synthesize(ctx, "  hello big wide world  ", "ZH_cn")
	require.NoError(t, err)
	assert.False(t, res.Cached)
	assert.Equal(t, 2, res.Chunks)
	assert.Equal(t, "0:hello big|1:wide world|", string(res.Audio))
	assert.Equal(t, SpeechCacheKey("zh-CN", "hello big wide world"), res.CacheKey)
	assert.Equal(t, []string{"zh-CN", "zh-CN"}, upstream.languages())

	stored, err := os.ReadFile(filepath.Join(dir, "tts", res.CacheKey[:2], res.CacheKey+".mp3"))
	require.NoError(t, err)
	assert.Equal(t, res.Audio, stored)

	again, err := svc.Synthesize(ctx, "hello big wide world", "zh-cn")
	require.NoError(t, err)
	assert.True(t, again.Cached)
	assert.Equal(t, res.Audio, again.Audio)
	assert.Equal(t, int32(2), upstream.calls.Load())
}

func TestTTSCacheFallsBackToDatabase(t *testing.T) {
	svc, upstream, _ := newTTSService(t, false)
	ctx := context.Background()

	_, err := svc.Synthesize(ctx, "hola", "es")
	require.NoError(t, err)

	res, err := svc.Synthesize(ctx, "hola", "es")
	require.NoError(t, err)
	assert.True(t, res.Cached)
	assert.Equal(t, 1, res.Chunks)
	assert.Equal(t, int32(1), upstream.calls.Load())

	clip, err := svc.SpeechRepo.FindByKey(res.CacheKey)
	require.NoError(t, err)
	assert.Equal(t, "es", clip.Lang)
	assert.Equal(t, int64(len(res.Audio)), clip.Size)
}

func TestTTSRegeneratesUnreadableClip(t *testing.T) {
	svc, upstream, dir := newTTSService(t, true)
	ctx := context.Background()

	res, err := svc.Synthesize(ctx, "hola", "es")
	require.NoError(t, err)
	clipPath := filepath.Join(dir, "tts", res.CacheKey[:2], res.CacheKey+".mp3")
	require.NoError(t, os.WriteFile(clipPath, nil, 0644))

	again, err := svc.Synthesize(ctx, "hola", "es")
	require.NoError(t, err)
	assert.False(t, again.Cached)
	assert.Equal(t, res.Audio, again.Audio)
	assert.Equal(t, int32(2), upstream.calls.Load())

	stored, err := os.ReadFile(clipPath)
	require.NoError(t, err)
	assert.Equal(t, res.Audio, stored)
}

func TestTTSErrors(t *testing.T) {
	svc, upstream, _ := newTTSService(t, false)
	ctx := context.Background()

	_, err := svc.Synthesize(ctx, "   ", "en")
	assert.ErrorIs(t, err, util.ErrEmptyInput)

	_, err = svc.Synthesize(ctx, strings.Repeat("a ", 51), "en")
	assert.ErrorIs(t, err, util.ErrTextTooLong)

	_, err = svc.Synthesize(ctx, "bonjour", "fr")
	assert.ErrorIs(t, err, util.ErrUnsupportedLanguage)

	upstream.fail.Store(true)
	_, err = svc.Synthesize(ctx, "hello", "")
	var upstreamErr *util.UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	assert.Equal(t, "Failed to generate audio file.", upstreamErr.Public)

	var count int64
	require.NoError(t, svc.SpeechRepo.DB.Model(&model.SpeechClip{}).Count(&count).Error)
	assert.Zero(t, count)
}
