package service

import (
	"bytes"
	"context"
	"encoding/json"
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
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const runtimesCacheKey = "code:runtimes"

type Runtime struct {
	Language string   `json:"language"`
	Version  string   `json:"version"`
	Aliases  []string `json:"aliases"`
	Runtime  string   `json:"runtime,omitempty"`
}

type ExecuteRequest struct {
	Language string   `json:"language" binding:"required"`
	Version  string   `json:"version"`
	Code     string   `json:"code" binding:"required"`
	Stdin    string   `json:"stdin"`
	Args     []string `json:"args"`
}

type StageResult struct {
	Stdout   string  `json:"stdout"`
	Stderr   string  `json:"stderr"`
	Output   string  `json:"output"`
	ExitCode *int    `json:"exitCode"`
	Signal   *string `json:"signal"`
}

type ExecuteResult struct {
	Language string       `json:"language"`
	Version  string       `json:"version"`
	Stdout   string       `json:"stdout"`
	Stderr   string       `json:"stderr"`
	Output   string       `json:"output"`
	ExitCode *int         `json:"exitCode"`
	Signal   *string      `json:"signal"`
	Compile  *StageResult `json:"compile,omitempty"`
}

// piston /execute 的请求和响应
type pistonFile struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

type pistonExecuteRequest struct {
	Language       string       `json:"language"`
	Version        string       `json:"version"`
	Files          []pistonFile `json:"files"`
	Stdin          string       `json:"stdin"`
	Args           []string     `json:"args"`
	RunTimeout     int          `json:"run_timeout"`
	CompileTimeout int          `json:"compile_timeout"`
}

type pistonStage struct {
	Stdout string  `json:"stdout"`
	Stderr string  `json:"stderr"`
	Output string  `json:"output"`
	Code   *int    `json:"code"`
	Signal *string `json:"signal"`
}

type pistonExecuteResponse struct {
	Language string       `json:"language"`
	Version  string       `json:"version"`
	Run      pistonStage  `json:"run"`
	Compile  *pistonStage `json:"compile"`
	Message  string       `json:"message"`
}

// CodeRunnerService 转发到 Piston 代码执行服务
type CodeRunnerService struct {
	ActivityRepo *repository.ActivityRepository
	Client       *http.Client

	mu    sync.RWMutex
	cfg   config.CodeRunnerConfig
	cache *jsonCache
}

func NewCodeRunnerService(cfg config.CodeRunnerConfig, activityRepo *repository.ActivityRepository, rdb *redis.Client) *CodeRunnerService {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &CodeRunnerService{
		ActivityRepo: activityRepo,
		Client:       &http.Client{Timeout: timeout},
		cfg:          cfg,
		cache:        newJSONCache(rdb, "runtimes"),
	}
}

func (s *CodeRunnerService) UpdateConfig(cfg config.CodeRunnerConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
}

func (s *CodeRunnerService) settings() config.CodeRunnerConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

func (s *CodeRunnerService) endpoint(path string) string {
	return strings.TrimRight(s.settings().BaseURL, "/") + path
}

func (s *CodeRunnerService) cacheTTL() time.Duration {
	minutes := s.settings().RuntimesCacheTTL
	if minutes <= 0 {
		minutes = 60
	}
	return time.Duration(minutes) * time.Minute
}

// Runtimes 可用语言列表，缓存在 redis
func (s *CodeRunnerService) Runtimes(ctx context.Context) ([]Runtime, error) {
	var runtimes []Runtime
	if s.cache.get(ctx, runtimesCacheKey, &runtimes) {
		return runtimes, nil
	}
	return s.RefreshRuntimes(ctx)
}

// RefreshRuntimes 直接请求上游并刷新缓存
func (s *CodeRunnerService) RefreshRuntimes(ctx context.Context) ([]Runtime, error) {
	ctx, span := tracing.StartUpstream(ctx, "code_runner", "runtimes")
	start := time.Now()
	runtimes, err := s.fetchRuntimes(ctx)
	monitoring.ObserveUpstream("code_runner", start, err)
	tracing.EndUpstream(span, err)
	if err != nil {
		logger.Log.Error("fetch runtimes failed", zap.Error(err))
		return nil, util.NewCodeRunError(err)
	}
	s.cache.set(ctx, runtimesCacheKey, runtimes, s.cacheTTL())
	return runtimes, nil
}

func (s *CodeRunnerService) fetchRuntimes(ctx context.Context) ([]Runtime, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint("/runtimes"), nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, pistonError(resp.StatusCode, body)
	}

	var runtimes []Runtime
	if err := json.Unmarshal(body, &runtimes); err != nil {
		return nil, fmt.Errorf("decode runtimes: %w", err)
	}
	return runtimes, nil
}

func pistonError(status int, body []byte) error {
	var payload struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &payload) == nil && payload.Message != "" {
		return errors.New(payload.Message)
	}
	return fmt.Errorf("upstream returned status %d", status)
}

// ResolveRuntime 按语言名或别名匹配；version 为空时取最新版本
func ResolveRuntime(runtimes []Runtime, language, version string) (*Runtime, error) {
	language = strings.ToLower(strings.TrimSpace(language))
	var best *Runtime
	for i := range runtimes {
		rt := &runtimes[i]
		if !rt.matches(language) {
			continue
		}
		if version != "" {
			if rt.Version == version {
				return rt, nil
			}
			continue
		}
		if best == nil || CompareVersions(rt.Version, best.Version) > 0 {
			best = rt
		}
	}
	if best == nil {
		if version != "" {
			return nil, fmt.Errorf("%w: %s %s", util.ErrUnsupportedLanguage, language, version)
		}
		return nil, fmt.Errorf("%w: %s", util.ErrUnsupportedLanguage, language)
	}
	return best, nil
}

func (rt *Runtime) matches(language string) bool {
	if strings.EqualFold(rt.Language, language) {
		return true
	}
	for _, a := range rt.Aliases {
		if strings.EqualFold(a, language) {
			return true
		}
	}
	return false
}

// CompareVersions 逐段比较数字版本号，非数字段按字符串比较
func CompareVersions(a, b string) int {
	pa := strings.FieldsFunc(a, func(r rune) bool { return r == '.' || r == '-' || r == '+' })
	pb := strings.FieldsFunc(b, func(r rune) bool { return r == '.' || r == '-' || r == '+' })
	for i := 0; i < len(pa) || i < len(pb); i++ {
		var x, y string
		if i < len(pa) {
			x = pa[i]
		}
		if i < len(pb) {
			y = pb[i]
		}
		xn, errX := strconv.Atoi(x)
		yn, errY := strconv.Atoi(y)
		switch {
		case errX == nil && errY == nil:
			if xn != yn {
				if xn > yn {
					return 1
				}
				return -1
			}
		case x != y:
			if x > y {
				return 1
			}
			return -1
		}
	}
	return 0
}

var sourceFileNames = map[string]string{
	"python":     "main.py",
	"javascript": "main.js",
	"typescript": "main.ts",
	"java":       "Main.java",
	"c":          "main.c",
	"c++":        "main.cpp",
	"csharp":     "Main.cs",
	"go":         "main.go",
	"rust":       "main.rs",
	"ruby":       "main.rb",
	"php":        "main.php",
	"kotlin":     "Main.kt",
	"swift":      "main.swift",
	"bash":       "main.sh",
	"lua":        "main.lua",
	"sqlite3":    "main.sql",
}

// size 代码、stdin 和参数一起计入上限
func (r ExecuteRequest) size() int {
	n := len(r.Code) + len(r.Stdin)
	for _, a := range r.Args {
		n += len(a)
	}
	return n
}

// MaxBodyBytes 请求体上限，JSON 转义后按两倍估算；0 表示不限
func (s *CodeRunnerService) MaxBodyBytes() int64 {
	cfg := s.settings()
	if cfg.MaxCodeBytes <= 0 {
		return 0
	}
	return int64(cfg.MaxCodeBytes)*2 + 4096
}

// SourceFileName 按语言生成源文件名，Java 等需要类名一致
func SourceFileName(language string) string {
	if name, ok := sourceFileNames[strings.ToLower(language)]; ok {
		return name
	}
	return "main"
}

// Execute 运行一段代码
func (s *CodeRunnerService) Execute(ctx context.Context, learnerKey string, req ExecuteRequest) (*ExecuteResult, error) {
	cfg := s.settings()
	if strings.TrimSpace(req.Code) == "" {
		return nil, util.ErrEmptyInput
	}
	if cfg.MaxCodeBytes > 0 && req.size() > cfg.MaxCodeBytes {
		return nil, fmt.Errorf("%w: code, stdin and args max %d bytes", util.ErrTextTooLong, cfg.MaxCodeBytes)
	}

	runtimes, err := s.Runtimes(ctx)
	if err != nil {
		return nil, err
	}
	rt, err := ResolveRuntime(runtimes, req.Language, strings.TrimSpace(req.Version))
	if err != nil {
		return nil, err
	}

	payload := pistonExecuteRequest{
		Language:       rt.Language,
		Version:        rt.Version,
		Files:          []pistonFile{{Name: SourceFileName(rt.Language), Content: req.Code}},
		Stdin:          req.Stdin,
		Args:           req.Args,
		RunTimeout:     cfg.RunTimeoutMS,
		CompileTimeout: cfg.CompileTimeoutMS,
	}
	if payload.Args == nil {
		payload.Args = []string{}
	}

	ctx, span := tracing.StartUpstream(ctx, "code_runner", "execute")
	start := time.Now()
	result, err := s.execute(ctx, payload)
	monitoring.ObserveUpstream("code_runner", start, err)
	tracing.EndUpstream(span, err)

	s.record(learnerKey, rt, len(req.Code), result, start, err)
	if err != nil {
		logger.Log.Error("code execution failed",
			zap.String("language", rt.Language),
			zap.String("version", rt.Version),
			zap.Error(err))
		return nil, util.NewCodeRunError(err)
	}
	return result, nil
}

func (s *CodeRunnerService) execute(ctx context.Context, payload pistonExecuteRequest) (*ExecuteResult, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint("/execute"), bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, pistonError(resp.StatusCode, body)
	}

	var out pistonExecuteResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode execute response: %w", err)
	}
	if out.Message != "" && out.Language == "" {
		return nil, errors.New(out.Message)
	}

	result := &ExecuteResult{
		Language: out.Language,
		Version:  out.Version,
		Stdout:   out.Run.Stdout,
		Stderr:   out.Run.Stderr,
		Output:   out.Run.Output,
		ExitCode: out.Run.Code,
		Signal:   out.Run.Signal,
	}
	if out.Compile != nil {
		result.Compile = &StageResult{
			Stdout:   out.Compile.Stdout,
			Stderr:   out.Compile.Stderr,
			Output:   out.Compile.Output,
			ExitCode: out.Compile.Code,
			Signal:   out.Compile.Signal,
		}
	}
	return result, nil
}

func (s *CodeRunnerService) record(learnerKey string, rt *Runtime, codeBytes int, result *ExecuteResult, start time.Time, err error) {
	if s.ActivityRepo == nil {
		return
	}
	run := &model.CodeRun{
		LearnerKey: learnerKey,
		Language:   rt.Language,
		Version:    rt.Version,
		CodeBytes:  codeBytes,
		Status:     "ok",
		DurationMS: time.Since(start).Milliseconds(),
	}
	if err != nil {
		run.Status = "error"
		run.ExitCode = -1
	} else if result.ExitCode != nil {
		run.ExitCode = *result.ExitCode
	}
	if err := s.ActivityRepo.CreateCodeRun(run); err != nil {
		logger.Log.Warn("record code run failed", zap.Error(err))
	}
}
