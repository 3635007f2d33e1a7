package service

import (
	"context"
	"errors"
	"fmt"
	"helloworld_backend/internal/config"
	"helloworld_backend/internal/model"
	"helloworld_backend/internal/repository"
	"helloworld_backend/internal/util"
	"helloworld_backend/pkg/logger"
	"helloworld_backend/pkg/monitoring"
	"helloworld_backend/pkg/tracing"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
)

const tutorSystemPrompt = "You are a friendly programming tutor at Hello World Classes, teaching kids and teens aged 7 to 18. " +
	"Explain with short sentences and small examples. Use Markdown. Refuse topics unrelated to learning, and never write full homework solutions without explaining them."

// AIService 生成式 AI 相关的服务端动作
type AIService struct {
	ActivityRepo *repository.ActivityRepository

	mu        sync.RWMutex
	cfg       config.AIConfig
	generator TextGenerator
}

func NewAIService(cfg config.AIConfig, activityRepo *repository.ActivityRepository) *AIService {
	s := &AIService{ActivityRepo: activityRepo}
	s.UpdateConfig(cfg)
	return s
}

// NewAIServiceWithGenerator 直接注入 provider（测试或自定义模型）
func NewAIServiceWithGenerator(gen TextGenerator, cfg config.AIConfig, activityRepo *repository.ActivityRepository) *AIService {
	return &AIService{ActivityRepo: activityRepo, cfg: cfg, generator: gen}
}

// UpdateConfig 配置热更新；provider 初始化失败时 AI 接口返回未配置
func (s *AIService) UpdateConfig(cfg config.AIConfig) {
	gen, err := NewTextGenerator(cfg)
	if err != nil {
		logger.Log.Warn("AI provider unavailable", zap.String("provider", cfg.Provider), zap.Error(err))
		gen = nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
	s.generator = gen
}

func (s *AIService) current() (TextGenerator, config.AIConfig) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generator, s.cfg
}

func (s *AIService) validatePrompt(text string, maxChars int) error {
	if strings.TrimSpace(text) == "" {
		return util.ErrEmptyInput
	}
	if maxChars > 0 && utf8.RuneCountInString(text) > maxChars {
		return fmt.Errorf("%w: max %d characters", util.ErrTextTooLong, maxChars)
	}
	return nil
}

func (s *AIService) record(learnerKey string, kind model.AIGenerationKind, modelName, prompt, output string, start time.Time, err error) {
	if s.ActivityRepo == nil {
		return
	}
	gen := &model.AIGeneration{
		LearnerKey: learnerKey,
		Kind:       kind,
		Model:      modelName,
		Prompt:     prompt,
		Output:     output,
		Status:     "ok",
		DurationMS: time.Since(start).Milliseconds(),
	}
	if err != nil {
		gen.Status = "error"
		gen.Error = err.Error()
		if len(gen.Error) > 1000 {
			gen.Error = gen.Error[:1000]
		}
	}
	if err := s.ActivityRepo.CreateAIGeneration(gen); err != nil {
		logger.Log.Warn("record ai generation failed", zap.Error(err))
	}
}

// generate 调用模型并记录日志；上游错误统一包装为 "AI Error: ..."
func (s *AIService) generate(ctx context.Context, learnerKey string, kind model.AIGenerationKind, req GenerateRequest) (string, error) {
	gen, cfg := s.current()
	if gen == nil {
		return "", util.NewAIError(util.ErrAIUnavailable)
	}
	if req.Temperature == 0 {
		req.Temperature = cfg.Temperature
	}

	ctx, span := tracing.StartUpstream(ctx, "ai", string(kind))
	start := time.Now()
	text, err := gen.Generate(ctx, req)
	monitoring.ObserveUpstream("ai", start, err)
	tracing.EndUpstream(span, err)

	s.record(learnerKey, kind, gen.Model(), req.Prompt, text, start, err)
	if err != nil {
		logger.Log.Error("AI generation failed", zap.String("kind", string(kind)), zap.String("model", gen.Model()), zap.Error(err))
		return "", util.NewAIError(err)
	}
	return text, nil
}

// Ask 自由问答
func (s *AIService) Ask(ctx context.Context, learnerKey, prompt string, history []AIChatMessage) (string, error) {
	_, cfg := s.current()
	if err := s.validatePrompt(prompt, cfg.MaxPromptChars); err != nil {
		return "", err
	}
	return s.generate(ctx, learnerKey, model.AIAsk, GenerateRequest{
		System:  tutorSystemPrompt,
		Prompt:  prompt,
		History: trimHistory(history, historyBudget(cfg.MaxPromptChars, prompt)),
	})
}

// AskStream 流式问答；结束后整段回复写入日志
func (s *AIService) AskStream(ctx context.Context, learnerKey, prompt string, history []AIChatMessage) (<-chan string, <-chan error, error) {
	gen, cfg := s.current()
	if err := s.validatePrompt(prompt, cfg.MaxPromptChars); err != nil {
		return nil, nil, err
	}
	if gen == nil {
		return nil, nil, util.NewAIError(util.ErrAIUnavailable)
	}

	req := GenerateRequest{
		System:      tutorSystemPrompt,
		Prompt:      prompt,
		History:     trimHistory(history, historyBudget(cfg.MaxPromptChars, prompt)),
		Temperature: cfg.Temperature,
	}

	spanCtx, span := tracing.StartUpstream(ctx, "ai", string(model.AIAsk)+"_stream")
	start := time.Now()
	upstream, upstreamErr := gen.Stream(spanCtx, req)
	out := make(chan string)
	errChan := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errChan)

		var sb strings.Builder
		for chunk := range upstream {
			sb.WriteString(chunk)
			// 客户端断开后仍要读完上游
			select {
			case out <- chunk:
			case <-ctx.Done():
			}
		}
		err := <-upstreamErr
		monitoring.ObserveUpstream("ai", start, err)
		tracing.EndUpstream(span, err)
		s.record(learnerKey, model.AIAsk, gen.Model(), prompt, sb.String(), start, err)
		if err != nil {
			errChan <- util.NewAIError(err)
		}
	}()

	return out, errChan, nil
}

// historyBudget 问题本身占用后留给历史对话的字符数，-1 表示不限
func historyBudget(maxChars int, prompt string) int {
	if maxChars <= 0 {
		return -1
	}
	return maxChars - utf8.RuneCountInString(prompt)
}

// trimHistory 只保留最近 10 条 user / assistant 消息，
// 从最新一条往回累计，超出 budget 的更早对话丢弃
func trimHistory(history []AIChatMessage, budget int) []AIChatMessage {
	const maxHistory = 10
	cleaned := make([]AIChatMessage, 0, len(history))
	for _, h := range history {
		if (h.Role == "user" || h.Role == "assistant") && strings.TrimSpace(h.Content) != "" {
			cleaned = append(cleaned, h)
		}
	}
	if len(cleaned) > maxHistory {
		cleaned = cleaned[len(cleaned)-maxHistory:]
	}
	if budget < 0 {
		return cleaned
	}
	used := 0
	for i := len(cleaned) - 1; i >= 0; i-- {
		used += utf8.RuneCountInString(cleaned[i].Content)
		if used > budget {
			return cleaned[i+1:]
		}
	}
	return cleaned
}

type QuizRequest struct {
	Topic      string           `json:"topic" binding:"required"`
	Count      int              `json:"count"`
	Difficulty model.Difficulty `json:"difficulty"`
}

type QuizQuestion struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	AnswerIndex int      `json:"answerIndex"`
	Explanation string   `json:"explanation"`
}

func (q QuizQuestion) valid() bool {
	if strings.TrimSpace(q.Question) == "" || len(q.Options) != 4 {
		return false
	}
	for _, o := range q.Options {
		if strings.TrimSpace(o) == "" {
			return false
		}
	}
	return q.AnswerIndex >= 0 && q.AnswerIndex < len(q.Options)
}

// GenerateQuiz 让模型输出 JSON 选择题，正则提取后校验，丢弃不合法的题目
func (s *AIService) GenerateQuiz(ctx context.Context, learnerKey string, req QuizRequest) ([]QuizQuestion, error) {
	if req.Count == 0 {
		req.Count = 5
	}
	if req.Count < 1 || req.Count > 10 {
		return nil, fmt.Errorf("%w: count must be between 1 and 10", util.ErrInvalidInput)
	}
	if req.Difficulty == "" {
		req.Difficulty = model.Easy
	}
	if !req.Difficulty.Valid() {
		return nil, fmt.Errorf("%w: difficulty must be one of easy, medium, hard", util.ErrInvalidInput)
	}
	if err := s.validatePrompt(req.Topic, 200); err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(`Create %d %s multiple-choice questions for a young programming student about: %s.
Return ONLY JSON in this exact shape, no prose:
{"questions":[{"question":"...","options":["A","B","C","D"],"answerIndex":0,"explanation":"..."}]}
Each question must have exactly 4 options and answerIndex must be 0-3.`, req.Count, req.Difficulty, strings.TrimSpace(req.Topic))

	text, err := s.generate(ctx, learnerKey, model.AIQuiz, GenerateRequest{
		System: tutorSystemPrompt,
		Prompt: prompt,
		JSON:   true,
	})
	if err != nil {
		return nil, err
	}

	questions, err := parseQuiz(text)
	if err != nil {
		return nil, util.NewAIError(err)
	}
	if len(questions) > req.Count {
		questions = questions[:req.Count]
	}
	return questions, nil
}

func parseQuiz(text string) ([]QuizQuestion, error) {
	var wrapped struct {
		Questions []QuizQuestion `json:"questions"`
	}
	var raw []QuizQuestion
	if err := ExtractJSON(text, &wrapped); err != nil || len(wrapped.Questions) == 0 {
		if err := ExtractJSON(text, &raw); err != nil {
			return nil, util.ErrInvalidAIResponse
		}
	} else {
		raw = wrapped.Questions
	}

	valid := make([]QuizQuestion, 0, len(raw))
	for _, q := range raw {
		if q.valid() {
			valid = append(valid, q)
		}
	}
	if len(valid) == 0 {
		return nil, errors.New("AI returned no valid questions")
	}
	return valid, nil
}

type CodeRequest struct {
	Language string `json:"language" binding:"required"`
	Code     string `json:"code" binding:"required"`
}

// Explain 逐段解释代码
func (s *AIService) Explain(ctx context.Context, learnerKey string, req CodeRequest) (string, error) {
	_, cfg := s.current()
	if err := s.validatePrompt(req.Code, cfg.MaxPromptChars); err != nil {
		return "", err
	}
	prompt := fmt.Sprintf("Explain what this %s code does, step by step, for a beginner. Keep it under 300 words.\n\n```%s\n%s\n```",
		req.Language, strings.ToLower(req.Language), req.Code)
	return s.generate(ctx, learnerKey, model.AIExplain, GenerateRequest{
		System: tutorSystemPrompt,
		Prompt: prompt,
	})
}

type ReviewIssue struct {
	Line       int    `json:"line,omitempty"`
	Severity   string `json:"severity"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

type CodeReview struct {
	Summary string        `json:"summary"`
	Issues  []ReviewIssue `json:"issues"`
	Score   int           `json:"score"`
}

// Review 结构化代码点评，score 限制在 0-10
func (s *AIService) Review(ctx context.Context, learnerKey string, req CodeRequest) (*CodeReview, error) {
	_, cfg := s.current()
	if err := s.validatePrompt(req.Code, cfg.MaxPromptChars); err != nil {
		return nil, err
	}
	prompt := fmt.Sprintf(`Review this %s code written by a student. Return ONLY JSON:
{"summary":"one paragraph","issues":[{"line":1,"severity":"info|warning|error","message":"...","suggestion":"..."}],"score":0}
score is 0-10.

%s`, req.Language, req.Code)

	text, err := s.generate(ctx, learnerKey, model.AIReview, GenerateRequest{
		System: tutorSystemPrompt,
		Prompt: prompt,
		JSON:   true,
	})
	if err != nil {
		return nil, err
	}

	var review CodeReview
	if err := ExtractJSON(text, &review); err != nil {
		return nil, util.NewAIError(err)
	}
	if review.Score < 0 {
		review.Score = 0
	}
	if review.Score > 10 {
		review.Score = 10
	}
	if review.Issues == nil {
		review.Issues = []ReviewIssue{}
	}
	return &review, nil
}
