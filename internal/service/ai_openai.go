package service

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"helloworld_backend/internal/config"
	"helloworld_backend/internal/util"
	"io"
	"net/http"
	"strings"
	"time"
)

// OpenAIProvider 兼容 OpenAI /chat/completions 的服务
type OpenAIProvider struct {
	config config.AIConfig
	client *http.Client
}

func NewOpenAIProvider(cfg config.AIConfig) (*OpenAIProvider, error) {
	if cfg.BaseURL == "" || cfg.APIKey == "" {
		return nil, util.ErrAIUnavailable
	}
	return &OpenAIProvider{
		config: cfg,
		client: &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
	}, nil
}

type ChatCompletionRequest struct {
	Model          string            `json:"model"`
	Messages       []AIChatMessage   `json:"messages"`
	Stream         bool              `json:"stream,omitempty"`
	Temperature    float32           `json:"temperature,omitempty"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
}

type ChatCompletionResponse struct {
	Choices []struct {
		Message AIChatMessage `json:"message"`
		Delta   AIChatMessage `json:"delta"` // 流式响应
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (p *OpenAIProvider) Model() string {
	return p.config.Model
}

func (p *OpenAIProvider) buildRequest(ctx context.Context, req GenerateRequest, stream bool) (*http.Request, error) {
	messages := []AIChatMessage{}
	if req.System != "" {
		messages = append(messages, AIChatMessage{Role: "system", Content: req.System})
	}
	// 历史对话
	messages = append(messages, req.History...)
	messages = append(messages, AIChatMessage{Role: "user", Content: req.Prompt})

	body := ChatCompletionRequest{
		Model:       p.config.Model,
		Messages:    messages,
		Stream:      stream,
		Temperature: req.Temperature,
	}
	if req.JSON {
		body.ResponseFormat = map[string]string{"type": "json_object"}
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(p.config.BaseURL, "/")+"/chat/completions", bytes.NewReader(jsonData))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.config.APIKey)
	return httpReq, nil
}

func apiError(status int, body []byte) error {
	var parsed ChatCompletionResponse
	if json.Unmarshal(body, &parsed) == nil && parsed.Error != nil && parsed.Error.Message != "" {
		return fmt.Errorf("status %d: %s", status, parsed.Error.Message)
	}
	return fmt.Errorf("status %d: %s", status, strings.TrimSpace(string(body)))
}

func (p *OpenAIProvider) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	httpReq, err := p.buildRequest(ctx, req, false)
	if err != nil {
		return "", err
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", apiError(resp.StatusCode, body)
	}

	var result ChatCompletionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", err
	}

	if len(result.Choices) > 0 && strings.TrimSpace(result.Choices[0].Message.Content) != "" {
		return strings.TrimSpace(result.Choices[0].Message.Content), nil
	}

	return "", errors.New("model returned no choices")
}

func (p *OpenAIProvider) Stream(ctx context.Context, req GenerateRequest) (<-chan string, <-chan error) {
	out := make(chan string)
	errChan := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errChan)

		httpReq, err := p.buildRequest(ctx, req, true)
		if err != nil {
			errChan <- err
			return
		}

		// 流式响应不设置整体超时，由 ctx 控制
		client := &http.Client{}
		resp, err := client.Do(httpReq)
		if err != nil {
			errChan <- err
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
			errChan <- apiError(resp.StatusCode, body)
			return
		}

		reader := bufio.NewReader(resp.Body)
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				if err != io.EOF {
					errChan <- err
				}
				return
			}

			line = strings.TrimSpace(line)
			if line == "" || !strings.HasPrefix(line, "data: ") {
				continue
			}

			data := strings.TrimPrefix(line, "data: ")
			if data == "[DONE]" {
				return
			}

			var streamResp ChatCompletionResponse
			if err := json.Unmarshal([]byte(data), &streamResp); err != nil {
				continue
			}

			if len(streamResp.Choices) > 0 {
				if content := streamResp.Choices[0].Delta.Content; content != "" {
					select {
					case out <- content:
					case <-ctx.Done():
						errChan <- ctx.Err()
						return
					}
				}
			}
		}
	}()

	return out, errChan
}
