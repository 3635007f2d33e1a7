package service

import (
	"context"
	"fmt"
	"helloworld_backend/internal/config"
)

type AIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// GenerateRequest 一次大模型调用；JSON 为 true 时要求模型只输出 JSON
type GenerateRequest struct {
	System      string
	Prompt      string
	History     []AIChatMessage
	JSON        bool
	Temperature float32
}

// TextGenerator 生成式语言模型
type TextGenerator interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
	Stream(ctx context.Context, req GenerateRequest) (<-chan string, <-chan error)
	Model() string
}

// NewTextGenerator 按配置选择 provider
func NewTextGenerator(cfg config.AIConfig) (TextGenerator, error) {
	switch cfg.Provider {
	case "gemini", "":
		return NewGeminiProvider(cfg)
	case "openai":
		return NewOpenAIProvider(cfg)
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}
}
