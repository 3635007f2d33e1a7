package service

import (
	"context"
	"errors"
	"fmt"
	"helloworld_backend/internal/config"
	"helloworld_backend/internal/util"
	"strings"
	"time"

	"google.golang.org/genai"
)

// GeminiProvider 通过 genai SDK 调用 Gemini
type GeminiProvider struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

func NewGeminiProvider(cfg config.AIConfig) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, util.ErrAIUnavailable
	}

	model := cfg.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(context.Background(), clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiProvider{
		client:  client,
		model:   model,
		timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
	}, nil
}

func (p *GeminiProvider) Model() string {
	return p.model
}

func (p *GeminiProvider) contents(req GenerateRequest) []*genai.Content {
	contents := make([]*genai.Content, 0, len(req.History)+1)
	for _, h := range req.History {
		var role genai.Role = genai.RoleUser
		if h.Role == "assistant" || h.Role == "model" {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(h.Content, role))
	}
	contents = append(contents, genai.NewContentFromText(req.Prompt, genai.RoleUser))
	return contents
}

func (p *GeminiProvider) generateConfig(req GenerateRequest) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.Temperature > 0 {
		t := req.Temperature
		cfg.Temperature = &t
	}
	if req.JSON {
		cfg.ResponseMIMEType = "application/json"
	}
	return cfg
}

func (p *GeminiProvider) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, p.timeout)
}

func (p *GeminiProvider) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	resp, err := p.client.Models.GenerateContent(ctx, p.model, p.contents(req), p.generateConfig(req))
	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return "", fmt.Errorf("prompt blocked: %s", resp.PromptFeedback.BlockReason)
		}
		if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason == genai.FinishReasonMaxTokens {
			return "", errors.New("model hit token limit before generating output")
		}
		return "", errors.New("model returned empty text")
	}
	return text, nil
}

func (p *GeminiProvider) Stream(ctx context.Context, req GenerateRequest) (<-chan string, <-chan error) {
	out := make(chan string)
	errChan := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errChan)

		ctx, cancel := p.withTimeout(ctx)
		defer cancel()

		for resp, err := range p.client.Models.GenerateContentStream(ctx, p.model, p.contents(req), p.generateConfig(req)) {
			if err != nil {
				errChan <- err
				return
			}
			if chunk := resp.Text(); chunk != "" {
				select {
				case out <- chunk:
				case <-ctx.Done():
					errChan <- ctx.Err()
					return
				}
			}
		}
	}()

	return out, errChan
}
