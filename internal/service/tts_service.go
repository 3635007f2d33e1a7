package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"helloworld_backend/internal/config"
	"helloworld_backend/internal/model"
	"helloworld_backend/internal/repository"
	"helloworld_backend/internal/util"
	"helloworld_backend/pkg/logger"
	"helloworld_backend/pkg/monitoring"
	"helloworld_backend/pkg/tracing"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	speechCachePrefix = "tts:"
	speechCacheTTL    = 24 * time.Hour
)

type SpeechResult struct {
	Audio    []byte
	CacheKey string
	Cached   bool
	Chunks   int
}

// TTSService 调用公开的语音合成接口，结果存到对象存储
type TTSService struct {
	SpeechRepo *repository.SpeechRepository
	Storage    *StorageService
	Client     *http.Client
	rdb        *redis.Client

	mu  sync.RWMutex
	cfg config.TTSConfig
}

func NewTTSService(cfg config.TTSConfig, speechRepo *repository.SpeechRepository, storage *StorageService, rdb *redis.Client) *TTSService {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &TTSService{
		SpeechRepo: speechRepo,
		Storage:    storage,
		Client:     &http.Client{Timeout: timeout},
		rdb:        rdb,
		cfg:        cfg,
	}
}

func (s *TTSService) UpdateConfig(cfg config.TTSConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
}

func (s *TTSService) settings() config.TTSConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

func (s *TTSService) Languages() []string {
	return append([]string(nil), s.settings().Languages...)
}

// normalizeLang 大小写不敏感匹配配置里的语言，返回配置中的写法
func (s *TTSService) normalizeLang(lang string) (string, error) {
	lang = strings.TrimSpace(strings.ReplaceAll(lang, "_", "-"))
	if lang == "" {
		lang = "en"
	}
	for _, l := range s.settings().Languages {
		if strings.EqualFold(l, lang) {
			return l, nil
		}
	}
	return "", fmt.Errorf("%w: %s", util.ErrUnsupportedLanguage, lang)
}

// SpeechCacheKey sha256(lang + "\n" + text)
func SpeechCacheKey(lang, text string) string {
	sum := sha256.Sum256([]byte(lang + "\n" + text))
	return hex.EncodeToString(sum[:])
}

// SplitText 按单词边界切分，每段不超过 limit 个字符；超长单词硬切
func SplitText(text string, limit int) []string {
	if limit <= 0 {
		limit = 200
	}
	var chunks []string
	var cur strings.Builder
	curLen := 0

	flush := func() {
		if curLen > 0 {
			chunks = append(chunks, cur.String())
			cur.Reset()
			curLen = 0
		}
	}

	for _, word := range strings.Fields(text) {
		wordLen := utf8.RuneCountInString(word)
		for wordLen > limit {
			flush()
			runes := []rune(word)
			chunks = append(chunks, string(runes[:limit]))
			word = string(runes[limit:])
			wordLen -= limit
		}
		if wordLen == 0 {
			continue
		}
		if curLen > 0 && curLen+1+wordLen > limit {
			flush()
		}
		if curLen > 0 {
			cur.WriteByte(' ')
			curLen++
		}
		cur.WriteString(word)
		curLen += wordLen
	}
	flush()
	return chunks
}

// Synthesize 文本转 MP3；命中缓存时不请求上游
func (s *TTSService) Synthesize(ctx context.Context, text, lang string) (*SpeechResult, error) {
	cfg := s.settings()
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, util.ErrEmptyInput
	}
	if cfg.MaxChars > 0 && utf8.RuneCountInString(text) > cfg.MaxChars {
		return nil, fmt.Errorf("%w: max %d characters", util.ErrTextTooLong, cfg.MaxChars)
	}
	lang, err := s.normalizeLang(lang)
	if err != nil {
		return nil, err
	}

	key := SpeechCacheKey(lang, text)
	if audio, chunks, ok := s.cached(ctx, key); ok {
		monitoring.ObserveCache("tts", true)
		return &SpeechResult{Audio: audio, CacheKey: key, Cached: true, Chunks: chunks}, nil
	}
	monitoring.ObserveCache("tts", false)

	chunks := SplitText(text, cfg.ChunkChars)
	ctx, span := tracing.StartUpstream(ctx, "tts", "synthesize")
	start := time.Now()
	audio, err := s.fetchAll(ctx, cfg.Endpoint, lang, chunks)
	monitoring.ObserveUpstream("tts", start, err)
	tracing.EndUpstream(span, err)
	if err != nil {
		logger.Log.Error("speech synthesis failed", zap.String("lang", lang), zap.Int("chunks", len(chunks)), zap.Error(err))
		return nil, util.NewTTSError(err)
	}

	s.store(ctx, key, lang, text, audio, len(chunks))
	return &SpeechResult{Audio: audio, CacheKey: key, Chunks: len(chunks)}, nil
}

// cached 先查 redis 里的存储路径，再回落到 speech_clips 表
func (s *TTSService) cached(ctx context.Context, key string) ([]byte, int, bool) {
	var path string
	chunks := 0
	if s.rdb != nil {
		if p, err := s.rdb.Get(ctx, speechCachePrefix+key).Result(); err == nil {
			path = p
		}
	}
	if path == "" && s.SpeechRepo != nil {
		clip, err := s.SpeechRepo.FindByKey(key)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				logger.Log.Warn("speech clip lookup failed", zap.Error(err))
			}
			return nil, 0, false
		}
		path = clip.StoragePath
		chunks = clip.Chunks
	}
	if path == "" || s.Storage == nil {
		return nil, 0, false
	}

	audio, err := s.Storage.ReadAll(ctx, path)
	if err != nil || len(audio) == 0 {
		logger.Log.Warn("cached speech clip unreadable", zap.String("path", path), zap.Error(err))
		s.evict(ctx, key, path)
		return nil, 0, false
	}
	return audio, chunks, true
}

// evict 删除损坏的缓存文件，随后重新合成会覆盖 speech_clips 记录
func (s *TTSService) evict(ctx context.Context, key, path string) {
	if err := s.Storage.Delete(ctx, path); err != nil {
		logger.Log.Debug("delete speech clip failed", zap.String("path", path), zap.Error(err))
	}
	if s.rdb != nil {
		s.rdb.Del(ctx, speechCachePrefix+key)
	}
}

func (s *TTSService) store(ctx context.Context, key, lang, text string, audio []byte, chunks int) {
	if s.Storage == nil {
		return
	}
	path := "tts/" + key[:2] + "/" + key + ".mp3"
	u, err := s.Storage.UploadBytes(ctx, path, audio, util.MimeAudioMPEG)
	if err != nil {
		logger.Log.Warn("store speech clip failed", zap.Error(err))
		return
	}
	if s.SpeechRepo != nil {
		clip := &model.SpeechClip{
			CacheKey:    key,
			Lang:        lang,
			Text:        text,
			StoragePath: path,
			URL:         u,
			Size:        int64(len(audio)),
			Chunks:      chunks,
		}
		if err := s.SpeechRepo.Save(clip); err != nil {
			logger.Log.Warn("save speech clip failed", zap.Error(err))
		}
	}
	if s.rdb != nil {
		s.rdb.Set(ctx, speechCachePrefix+key, path, speechCacheTTL)
	}
}

// fetchAll 按顺序请求每一段并拼接 MP3
func (s *TTSService) fetchAll(ctx context.Context, endpoint, lang string, chunks []string) ([]byte, error) {
	var buf bytes.Buffer
	for i, chunk := range chunks {
		data, err := s.fetchChunk(ctx, endpoint, lang, chunk, i, len(chunks))
		if err != nil {
			return nil, fmt.Errorf("chunk %d/%d: %w", i+1, len(chunks), err)
		}
		buf.Write(data)
	}
	return buf.Bytes(), nil
}

func (s *TTSService) fetchChunk(ctx context.Context, endpoint, lang, chunk string, idx, total int) ([]byte, error) {
	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("client", "tw-ob")
	q.Set("tl", lang)
	q.Set("q", chunk)
	q.Set("idx", fmt.Sprint(idx))
	q.Set("total", fmt.Sprint(total))
	q.Set("textlen", fmt.Sprint(utf8.RuneCountInString(chunk)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; HelloWorldClasses/1.0)")

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("upstream returned status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 5<<20))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.New("upstream returned empty audio")
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !util.IsAudio(ct) {
		return nil, fmt.Errorf("unexpected content type %q", ct)
	}
	return data, nil
}
