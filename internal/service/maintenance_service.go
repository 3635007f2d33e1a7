package service

import (
	"context"
	"helloworld_backend/internal/repository"
	"helloworld_backend/pkg/logger"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// MaintenanceService 定时清理日志、预热缓存
type MaintenanceService struct {
	ActivityRepo *repository.ActivityRepository
	Content      *ContentService
	CodeRunner   *CodeRunnerService

	mu            sync.RWMutex
	retentionDays int
	cron          *cron.Cron
}

func NewMaintenanceService(activityRepo *repository.ActivityRepository, content *ContentService, codeRunner *CodeRunnerService, retentionDays int) *MaintenanceService {
	return &MaintenanceService{
		ActivityRepo:  activityRepo,
		Content:       content,
		CodeRunner:    codeRunner,
		retentionDays: retentionDays,
	}
}

func (s *MaintenanceService) SetRetentionDays(days int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.retentionDays = days
}

func (s *MaintenanceService) RetentionDays() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.retentionDays <= 0 {
		return 30
	}
	return s.retentionDays
}

// PurgeExpired 删除保留期之前的代码执行和 AI 调用记录
func (s *MaintenanceService) PurgeExpired(now time.Time) (int64, error) {
	cutoff := now.AddDate(0, 0, -s.RetentionDays())
	n, err := s.ActivityRepo.PurgeBefore(cutoff)
	if err != nil {
		logger.Log.Error("purge activity logs failed", zap.Error(err))
		return 0, err
	}
	logger.Log.Info("purged activity logs", zap.Int64("rows", n), zap.Time("cutoff", cutoff))
	return n, nil
}

// Warmup 并行预热内容缓存和代码运行时列表
func (s *MaintenanceService) Warmup(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	if s.Content != nil {
		g.Go(func() error {
			return s.Content.Warmup(gctx)
		})
	}
	if s.CodeRunner != nil {
		g.Go(func() error {
			_, err := s.CodeRunner.RefreshRuntimes(gctx)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		logger.Log.Warn("cache warmup failed", zap.Error(err))
		return err
	}
	return nil
}

// Start 每天 03:00 清理，每小时预热一次
func (s *MaintenanceService) Start() error {
	c := cron.New()
	if _, err := c.AddFunc("0 3 * * *", func() {
		s.PurgeExpired(time.Now())
	}); err != nil {
		return err
	}
	if _, err := c.AddFunc("@hourly", func() {
		s.Warmup(context.Background())
	}); err != nil {
		return err
	}
	c.Start()
	s.cron = c

	go s.Warmup(context.Background())
	return nil
}

func (s *MaintenanceService) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}
