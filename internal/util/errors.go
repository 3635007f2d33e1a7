package util

import "errors"

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrEmailRegistered     = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrPageNotFound        = errors.New("page not found")
	ErrPostNotFound        = errors.New("blog post not found")
	ErrToolNotFound        = errors.New("tool not found")
	ErrQuestionNotFound    = errors.New("question not found")
	ErrPassageNotFound     = errors.New("typing passage not found")
	ErrLearnerRequired     = errors.New("learner identity required: sign in or send X-Learner-ID")
	ErrInvalidLearner      = errors.New("X-Learner-ID must be a UUID")
	ErrUnsupportedLanguage = errors.New("unsupported language")
	ErrTextTooLong         = errors.New("text too long")
	ErrEmptyInput          = errors.New("input is empty")
	ErrAIUnavailable       = errors.New("AI provider not configured")
	ErrInvalidAIResponse   = errors.New("AI response did not contain valid JSON")
	ErrInvalidDuration     = errors.New("duration must be between 1 second and 10 minutes")
	ErrInvalidInput        = errors.New("invalid input")
)

// UpstreamError 第三方服务（AI / TTS / 代码执行）调用失败，Public 为返回给前端的提示
type UpstreamError struct {
	Service string
	Public  string
	Err     error
}

func (e *UpstreamError) Error() string {
	return e.Public
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func NewAIError(err error) *UpstreamError {
	return &UpstreamError{Service: "ai", Public: "AI Error: " + err.Error(), Err: err}
}

func NewTTSError(err error) *UpstreamError {
	return &UpstreamError{Service: "tts", Public: "Failed to generate audio file.", Err: err}
}

func NewCodeRunError(err error) *UpstreamError {
	return &UpstreamError{Service: "code_runner", Public: "Code execution failed: " + err.Error(), Err: err}
}
