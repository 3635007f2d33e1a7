package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	Storage    StorageConfig
	Tracing    TracingConfig `mapstructure:"tracing"`
	Redis      RedisConfig
	AI         AIConfig
	CodeRunner CodeRunnerConfig `mapstructure:"code_runner"`
	TTS        TTSConfig        `mapstructure:"tts"`
	CORS       CORSConfig       `mapstructure:"cors"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Retention  RetentionConfig  `mapstructure:"retention"`
	Log        LogConfig        `mapstructure:"log"`

	// 运行时标志（非配置文件，通过命令行参数设置）
	ForceMigrate bool `mapstructure:"-"`
	MigrateOnly  bool `mapstructure:"-"`
	ForceSeed    bool `mapstructure:"-"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
	// 调用第三方服务（AI / TTS / 代码执行）的接口单独限流
	UpstreamMaxRequests int `mapstructure:"upstream_max_requests"`
}

// AIConfig provider 可选 gemini（genai SDK）或 openai（兼容 /chat/completions 的服务）
type AIConfig struct {
	Provider       string  `mapstructure:"provider"`
	BaseURL        string  `mapstructure:"base_url"`
	APIKey         string  `mapstructure:"api_key"`
	Model          string  `mapstructure:"model"`
	Temperature    float32 `mapstructure:"temperature"`
	MaxPromptChars int     `mapstructure:"max_prompt_chars"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
}

type CodeRunnerConfig struct {
	BaseURL          string `mapstructure:"base_url"`
	RunTimeoutMS     int    `mapstructure:"run_timeout_ms"`
	CompileTimeoutMS int    `mapstructure:"compile_timeout_ms"`
	MaxCodeBytes     int    `mapstructure:"max_code_bytes"`
	RuntimesCacheTTL int    `mapstructure:"runtimes_cache_minutes"`
	TimeoutSeconds   int    `mapstructure:"timeout_seconds"`
}

type TTSConfig struct {
	Endpoint       string   `mapstructure:"endpoint"`
	MaxChars       int      `mapstructure:"max_chars"`
	ChunkChars     int      `mapstructure:"chunk_chars"`
	Languages      []string `mapstructure:"languages"`
	TimeoutSeconds int      `mapstructure:"timeout_seconds"`
}

// LogConfig level 为空时 debug 模式用 debug，其余用 info；可热更新
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Service    string `mapstructure:"service"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Console    bool   `mapstructure:"console"`
}

type RetentionConfig struct {
	Days int `mapstructure:"days"`
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	ExpireTime time.Duration `mapstructure:"expire_hours"`
}

type StorageConfig struct {
	Type          string `mapstructure:"type"`
	LocalPath     string `mapstructure:"local_path"`
	MinioEndpoint string `mapstructure:"minio_endpoint"`
	MinioAccessID string `mapstructure:"minio_access_key"`
	MinioSecret   string `mapstructure:"minio_secret_key"`
	MinioBucket   string `mapstructure:"minio_bucket"`
	OSSEndpoint   string `mapstructure:"oss_endpoint"`
	OSSAccessKey  string `mapstructure:"oss_access_key"`
	OSSSecretKey  string `mapstructure:"oss_secret_key"`
	OSSBucket     string `mapstructure:"oss_bucket"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type RedisConfig struct {
	Host               string
	Port               int
	Password           string
	DB                 int
	PoolSize           int `mapstructure:"pool_size"`
	MinIdleConns       int `mapstructure:"min_idle_conns"`
	DialTimeoutSeconds int `mapstructure:"dial_timeout_seconds"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.charset", "utf8mb4")
	v.SetDefault("database.parsetime", true)
	v.SetDefault("jwt.expire_hours", 72)
	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.local_path", "uploads")
	v.SetDefault("rate_limit.max_requests", 6000)
	v.SetDefault("rate_limit.window_minutes", 1)
	v.SetDefault("rate_limit.upstream_max_requests", 30)
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.temperature", 0.7)
	v.SetDefault("ai.max_prompt_chars", 8000)
	v.SetDefault("ai.timeout_seconds", 60)
	v.SetDefault("code_runner.base_url", "https://emkc.org/api/v2/piston")
	v.SetDefault("code_runner.run_timeout_ms", 3000)
	v.SetDefault("code_runner.compile_timeout_ms", 10000)
	v.SetDefault("code_runner.max_code_bytes", 64*1024)
	v.SetDefault("code_runner.runtimes_cache_minutes", 60)
	v.SetDefault("code_runner.timeout_seconds", 30)
	v.SetDefault("tts.endpoint", "https://translate.google.com/translate_tts")
	v.SetDefault("tts.max_chars", 1000)
	v.SetDefault("tts.chunk_chars", 200)
	v.SetDefault("tts.timeout_seconds", 15)
	v.SetDefault("tts.languages", []string{"en", "en-US", "en-GB", "en-IN", "hi", "es", "fr", "de", "ja", "zh-CN"})
	v.SetDefault("retention.days", 30)
	v.SetDefault("redis.pool_size", 50)
	v.SetDefault("redis.min_idle_conns", 5)
	v.SetDefault("redis.dial_timeout_seconds", 5)
	v.SetDefault("log.service", "helloworld-classes")
	v.SetDefault("log.file", "logs/app.log")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("log.console", true)
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("HWC")
	v.AutomaticEnv()
	setDefaults(v)

	// Database
	v.BindEnv("database.host", "DATABASE_HOST")
	v.BindEnv("database.port", "DATABASE_PORT")
	v.BindEnv("database.user", "DATABASE_USER")
	v.BindEnv("database.password", "DATABASE_PASSWORD")
	v.BindEnv("database.dbname", "DATABASE_NAME")

	// JWT
	v.BindEnv("jwt.secret", "JWT_SECRET")

	// Redis
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	// Server
	v.BindEnv("log.level", "LOG_LEVEL")
	v.BindEnv("server.mode", "SERVER_MODE")
	v.BindEnv("server.port", "PORT")

	// AI
	v.BindEnv("ai.provider", "AI_PROVIDER")
	v.BindEnv("ai.base_url", "AI_BASE_URL")
	v.BindEnv("ai.api_key", "AI_API_KEY", "GEMINI_API_KEY")
	v.BindEnv("ai.model", "AI_MODEL")

	// 代码执行 / 语音合成
	v.BindEnv("code_runner.base_url", "CODE_RUNNER_URL")
	v.BindEnv("tts.endpoint", "TTS_ENDPOINT")

	// Storage / OSS
	v.BindEnv("storage.type", "STORAGE_TYPE")
	v.BindEnv("storage.oss_endpoint", "OSS_ENDPOINT")
	v.BindEnv("storage.oss_access_key", "OSS_ACCESS_KEY")
	v.BindEnv("storage.oss_secret_key", "OSS_SECRET_KEY")
	v.BindEnv("storage.oss_bucket", "OSS_BUCKET")
	v.BindEnv("storage.minio_endpoint", "MINIO_ENDPOINT")
	v.BindEnv("storage.minio_access_key", "MINIO_ACCESS_KEY")
	v.BindEnv("storage.minio_secret_key", "MINIO_SECRET_KEY")
	v.BindEnv("storage.minio_bucket", "MINIO_BUCKET")

	// Tracing
	v.BindEnv("tracing.enabled", "TRACING_ENABLED")
	v.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.JWT.ExpireTime = cfg.JWT.ExpireTime * time.Hour

	// 生产环境校验 JWT Secret 强度
	if cfg.Server.Mode == "release" && len(cfg.JWT.Secret) < 32 {
		return nil, fmt.Errorf("JWT secret is too short (%d chars), must be at least 32 characters in release mode", len(cfg.JWT.Secret))
	}

	if cfg.Storage.Type == "local" {
		if _, err := os.Stat(cfg.Storage.LocalPath); os.IsNotExist(err) {
			os.MkdirAll(cfg.Storage.LocalPath, 0755)
		}
	}

	return &cfg, nil
}
