package logger

import (
	"helloworld_backend/internal/config"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log 在 InitLogger 之前为 Nop，单元测试中可直接使用
var Log = zap.NewNop()

// level 所有 core 共用，配置热更新时直接修改
var level = zap.NewAtomicLevel()

func parseLevel(text, mode string) (zapcore.Level, error) {
	if text == "" {
		if mode == "debug" {
			return zap.DebugLevel, nil
		}
		return zap.InfoLevel, nil
	}
	return zapcore.ParseLevel(text)
}

func InitLogger(cfg *config.Config) {
	lc := cfg.Log
	lvl, levelErr := parseLevel(lc.Level, cfg.Server.Mode)
	if levelErr != nil {
		lvl, _ = parseLevel("", cfg.Server.Mode)
	}
	level.SetLevel(lvl)

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	var cores []zapcore.Core
	if lc.File != "" {
		fileWriter := zapcore.AddSync(&lumberjack.Logger{
			Filename:   lc.File,
			MaxSize:    lc.MaxSizeMB,
			MaxBackups: lc.MaxBackups,
			MaxAge:     lc.MaxAgeDays,
			Compress:   true,
		})
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), fileWriter, level))
	}
	if lc.Console {
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(os.Stdout), level))
	}

	Log = zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel))
	if lc.Service != "" {
		Log = Log.With(zap.String("service", lc.Service))
	}
	if levelErr != nil {
		Log.Warn("invalid log level, using default", zap.String("level", lc.Level), zap.Error(levelErr))
	}
}

// SetLevel 热更新日志级别
func SetLevel(text, mode string) error {
	lvl, err := parseLevel(text, mode)
	if err != nil {
		return err
	}
	level.SetLevel(lvl)
	return nil
}
