package app

import (
	"context"
	"helloworld_backend/internal/config"
	"helloworld_backend/internal/content"
	"helloworld_backend/internal/controller"
	"helloworld_backend/internal/middleware"
	"helloworld_backend/internal/repository"
	"helloworld_backend/internal/service"
	"helloworld_backend/pkg/configwatcher"
	"helloworld_backend/pkg/database"
	"helloworld_backend/pkg/logger"
	"helloworld_backend/pkg/monitoring"
	"helloworld_backend/pkg/security"
	"helloworld_backend/pkg/tracing"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const configDir = "configs"

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client

	services        *services
	globalLimiter   *security.IPRateLimiter
	upstreamLimiter *security.IPRateLimiter
	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user     *repository.UserRepository
	content  *repository.ContentRepository
	practice *repository.PracticeRepository
	typing   *repository.TypingRepository
	speech   *repository.SpeechRepository
	activity *repository.ActivityRepository
}

type services struct {
	auth        *service.AuthService
	storage     *service.StorageService
	content     *service.ContentService
	practice    *service.PracticeService
	ai          *service.AIService
	codeRunner  *service.CodeRunnerService
	tts         *service.TTSService
	typing      *service.TypingService
	maintenance *service.MaintenanceService
}

type controllers struct {
	health   *controller.HealthController
	auth     *controller.AuthController
	content  *controller.ContentController
	practice *controller.PracticeController
	ai       *controller.AIController
	code     *controller.CodeController
	tts      *controller.TTSController
	tools    *controller.ToolsController
	typing   *controller.TypingController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:     repository.NewUserRepository(db),
		content:  repository.NewContentRepository(db),
		practice: repository.NewPracticeRepository(db),
		typing:   repository.NewTypingRepository(db),
		speech:   repository.NewSpeechRepository(db),
		activity: repository.NewActivityRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.content = service.NewContentService(repos.content, db, rdb)
	s.practice = service.NewPracticeService(repos.practice)
	s.ai = service.NewAIService(cfg.AI, repos.activity)
	s.codeRunner = service.NewCodeRunnerService(cfg.CodeRunner, repos.activity, rdb)
	s.tts = service.NewTTSService(cfg.TTS, repos.speech, s.storage, rdb)
	s.typing = service.NewTypingService(repos.typing, rdb)
	s.maintenance = service.NewMaintenanceService(repos.activity, s.content, s.codeRunner, cfg.Retention.Days)

	// 配置热更新
	a.RegisterConfigCallback(func(newCfg *config.Config) {
		s.ai.UpdateConfig(newCfg.AI)
		s.codeRunner.UpdateConfig(newCfg.CodeRunner)
		s.tts.UpdateConfig(newCfg.TTS)
		s.maintenance.SetRetentionDays(newCfg.Retention.Days)
		if err := logger.SetLevel(newCfg.Log.Level, newCfg.Server.Mode); err != nil {
			logger.Log.Warn("invalid log level in reloaded config", zap.String("level", newCfg.Log.Level), zap.Error(err))
		}
	})

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		health:   controller.NewHealthController(db, rdb),
		auth:     controller.NewAuthController(s.auth),
		content:  controller.NewContentController(s.content),
		practice: controller.NewPracticeController(s.practice),
		ai:       controller.NewAIController(s.ai),
		code:     controller.NewCodeController(s.codeRunner),
		tts:      controller.NewTTSController(s.tts),
		tools:    controller.NewToolsController(),
		typing:   controller.NewTypingController(s.typing),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	a.globalLimiter = security.NewIPRateLimiter(cfg.RateLimit.MaxRequests, window)
	a.upstreamLimiter = security.NewIPRateLimiter(cfg.RateLimit.UpstreamMaxRequests, window)

	a.RegisterConfigCallback(func(newCfg *config.Config) {
		w := time.Duration(newCfg.RateLimit.WindowMinutes) * time.Minute
		a.globalLimiter.SetLimit(newCfg.RateLimit.MaxRequests, w)
		a.upstreamLimiter.SetLimit(newCfg.RateLimit.UpstreamMaxRequests, w)
	})

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(a.globalLimiter.Middleware())

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// New 使用已建立的数据库和 Redis 连接组装应用；rdb 可以为 nil
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *App {
	gin.SetMode(cfg.Server.Mode)
	monitoring.Init()

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	app.services = app.initServices(repos, cfg, db, rdb)
	controllers := app.initControllers(app.services, db, rdb)

	router := gin.New()
	app.Router = router
	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers)

	return app
}

// NewApp 初始化日志、数据库、Redis，按需迁移后组装应用
func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// release 模式下默认不自动迁移，需显式 -migrate
	if cfg.Server.Mode != gin.ReleaseMode || cfg.ForceMigrate {
		if err := database.Migrate(db); err != nil {
			logger.Log.Fatal("Failed to migrate database", zap.Error(err))
		}
	} else if cfg.ForceSeed {
		report, err := content.Seed(db)
		if err != nil {
			logger.Log.Fatal("Failed to seed content", zap.Error(err))
		}
		logger.Log.Info("Content seeded", zap.Any("report", report))
	}

	if cfg.MigrateOnly {
		return &App{Config: cfg, DB: db}
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		// 缓存和排行榜降级为数据库
		logger.Log.Error("Failed to initialize redis, running without cache", zap.Error(err))
		rdb = nil
	}

	app := New(cfg, db, rdb)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("helloworld-classes", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	if cfg.Storage.Type == "local" {
		router := app.Router
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	return app
}

// watchConfig 配置文件变更后依次执行回调
func (a *App) watchConfig(ctx context.Context) {
	file := filepath.Join(configDir, "config.yaml")
	err := configwatcher.WatchConfig(ctx, file, func(newCfg *config.Config) {
		for _, cb := range a.configCallbacks {
			cb(newCfg)
		}
	})
	if err != nil {
		logger.Log.Error("Config watcher stopped", zap.Error(err))
	}
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:              ":" + a.Config.Server.Port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go a.watchConfig(ctx)

	if err := a.services.maintenance.Start(); err != nil {
		logger.Log.Error("Failed to start scheduled jobs", zap.Error(err))
	}

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("listen failed", zap.Error(err))
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	a.services.maintenance.Stop()
	a.globalLimiter.Stop()
	a.upstreamLimiter.Stop()

	if a.tracer != nil {
		if err := a.tracer.Shutdown(shutdownCtx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		sqlDB.Close()
	}

	logger.Log.Info("Server exiting")
}
