package app

import (
	"assessment_backend/internal/cache"
	"assessment_backend/internal/config"
	"assessment_backend/internal/controller"
	"assessment_backend/internal/middleware"
	"assessment_backend/internal/repository"
	"assessment_backend/internal/service"
	"assessment_backend/pkg/configwatcher"
	"assessment_backend/pkg/database"
	"assessment_backend/pkg/logger"
	"assessment_backend/pkg/monitoring"
	"assessment_backend/pkg/security"
	"assessment_backend/pkg/tracing"
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client

	tracer          *sdktrace.TracerProvider
	mu              sync.Mutex
	configCallbacks []func(*config.Config)
}

type repositories struct {
	content  *repository.ContentRepository
	session  *repository.SessionRepository
	response *repository.ResponseRepository
	course   *repository.CourseRepository
}

type services struct {
	session  *service.SessionService
	answer   *service.AnswerService
	question *service.QuestionService
	progress *service.ProgressService
}

type controllers struct {
	session  *controller.SessionController
	progress *controller.ProgressController
	health   *controller.HealthController
}

// Options 组装 App 时可替换的依赖
type Options struct {
	Clock service.Clock
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.configCallbacks = append(a.configCallbacks, callback)
}

func initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		content:  repository.NewContentRepository(db),
		session:  repository.NewSessionRepository(db),
		response: repository.NewResponseRepository(db),
		course:   repository.NewCourseRepository(db),
	}
}

func initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client, clock service.Clock) *services {
	s := &services{}

	s.session = service.NewSessionService(db, repos.content, repos.session, repos.response, service.NewScorer(), clock)
	s.answer = service.NewAnswerService(s.session)

	var questionCache cache.QuestionCache
	if rdb != nil {
		questionCache = cache.NewRedisQuestionCache(rdb, cfg.Redis.TTL())
	}
	s.question = service.NewQuestionService(repos.content, questionCache)
	s.progress = service.NewProgressService(db, repos.course, clock)

	return s
}

func initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		session:  controller.NewSessionController(s.session, s.answer, s.question),
		progress: controller.NewProgressController(s.progress),
		health:   controller.NewHealthController(db, rdb),
	}
}

func setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger.Log))
	router.Use(security.CORS(cfg.Server.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.Server.RateLimit.MaxRequests, cfg.Server.RateLimit.Window()))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// New 使用已建立的连接组装路由，rdb 可以为 nil
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, opts Options) *App {
	if opts.Clock == nil {
		opts.Clock = service.SystemClock()
	}
	gin.SetMode(cfg.Server.Mode)

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := initRepositories(db)
	svcs := initServices(repos, cfg, db, rdb, opts.Clock)
	ctrls := initControllers(svcs, db, rdb)

	// 监控初始化
	monitoring.Init()

	router := gin.New()
	app.Router = router
	setupMiddlewares(router, cfg)
	app.registerRoutes(router, ctrls, cfg)

	app.RegisterConfigCallback(func(c *config.Config) {
		logger.SetLevel(c.Log.Level)
	})

	return app
}

// NewApp 初始化日志、数据库、Redis 和追踪后组装 App
func NewApp(cfg *config.Config, migrate bool) (*App, error) {
	logger.InitLogger(logger.Options{Level: cfg.Log.Level, File: cfg.Log.File})
	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Error("Failed to initialize database", zap.Error(err))
		return nil, err
	}
	if migrate {
		if err := database.Migrate(db); err != nil {
			return nil, err
		}
	}

	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb, err = database.InitRedis(&cfg.Redis)
		if err != nil {
			logger.Log.Error("Failed to initialize redis", zap.Error(err))
			return nil, err
		}
	}

	var tp *sdktrace.TracerProvider
	if cfg.Tracing.Enabled {
		tp, err = tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Error("Failed to initialize tracing", zap.Error(err))
			return nil, err
		}
	}

	app := New(cfg, db, rdb, Options{})
	app.tracer = tp
	return app, nil
}

// WatchConfig 配置文件变化时执行已注册的回调，ctx 结束时返回
func (a *App) WatchConfig(ctx context.Context, path string) {
	err := configwatcher.WatchConfig(ctx, path, a.applyConfig)
	if err != nil {
		logger.Log.Warn("Config watcher stopped", zap.String("path", path), zap.Error(err))
	}
}

func (a *App) applyConfig(cfg *config.Config) {
	a.mu.Lock()
	callbacks := append([]func(*config.Config){}, a.configCallbacks...)
	a.mu.Unlock()

	for _, cb := range callbacks {
		cb(cfg)
	}
}

// Run 启动 HTTP 服务，ctx 结束后优雅关闭（5 秒超时）
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + a.Config.Server.Port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	a.Close(shutdownCtx)

	logger.Log.Info("Server exiting")
	return nil
}

// Close 释放追踪、Redis 与数据库连接
func (a *App) Close(ctx context.Context) {
	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		sqlDB.Close()
	}
	_ = logger.Log.Sync()
}
