package app

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coursehub_backend/internal/config"
	"coursehub_backend/internal/controller"
	"coursehub_backend/internal/grading"
	"coursehub_backend/internal/repository"
	"coursehub_backend/internal/service"
	"coursehub_backend/internal/util"
	"coursehub_backend/pkg/configwatcher"
	"coursehub_backend/pkg/database"
	"coursehub_backend/pkg/logger"
	"coursehub_backend/pkg/monitoring"
	"coursehub_backend/pkg/security"
	"coursehub_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/robfig/cron/v3"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	configDir    = "configs"
	categoryFile = "configs/categories.yaml"
)

type App struct {
	Config   *config.Config
	Router   *gin.Engine
	DB       *gorm.DB
	Redis    *redis.Client
	services *services

	teachers       *service.TeacherDirectory
	limiter        *security.RateLimiter
	tracerProvider *sdktrace.TracerProvider
	scheduler      *cron.Cron

	configCallbacks []func(*config.Config)
}

type repositories struct {
	course       *repository.CourseRepository
	category     *repository.CategoryRepository
	attachment   *repository.AttachmentRepository
	registration *repository.RegistrationRepository
	module       *repository.ModuleRepository
	progress     *repository.ProgressRepository
	evaluation   *repository.EvaluationRepository
	result       *repository.EvaluationResultRepository
	event        *repository.EventRepository
}

type services struct {
	storage    *service.StorageService
	progress   *service.ProgressService
	course     *service.CourseService
	module     *service.ModuleService
	evaluation *service.EvaluationService
	authoring  *service.EvaluationAuthoringService
	enrollment *service.EnrollmentService
	dashboard  *service.DashboardService
	analytics  *service.AnalyticsService
	event      *service.EventService
}

type controllers struct {
	course            *controller.CourseController
	progress          *controller.ProgressController
	evaluation        *controller.EvaluationController
	teacherCourse     *controller.TeacherCourseController
	teacherModule     *controller.TeacherModuleController
	teacherEvaluation *controller.TeacherEvaluationController
	event             *controller.EventController
	health            *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) reloadConfig(cfg *config.Config) {
	for _, callback := range a.configCallbacks {
		callback(cfg)
	}
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		course:       repository.NewCourseRepository(db),
		category:     repository.NewCategoryRepository(db),
		attachment:   repository.NewAttachmentRepository(db),
		registration: repository.NewRegistrationRepository(db),
		module:       repository.NewModuleRepository(db),
		progress:     repository.NewProgressRepository(db),
		evaluation:   repository.NewEvaluationRepository(db),
		result:       repository.NewEvaluationResultRepository(db),
		event:        repository.NewEventRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	storage := service.NewStorageService(cfg)
	progress := service.NewProgressService(repos.module, repos.progress, rdb, cfg.Progress.CacheTTL)
	scorer := grading.NewScorer(logger.Log)

	return &services{
		storage:  storage,
		progress: progress,
		course: service.NewCourseService(repos.course, repos.category, repos.attachment, repos.module,
			repos.progress, repos.registration, progress, storage, db),
		module: service.NewModuleService(repos.course, repos.module, repos.evaluation, repos.progress, storage, db),
		evaluation: service.NewEvaluationService(repos.course, repos.module, repos.evaluation, repos.result,
			repos.progress, repos.registration, progress, scorer, db),
		authoring:  service.NewEvaluationAuthoringService(repos.course, repos.module, repos.evaluation, db),
		enrollment: service.NewEnrollmentService(repos.course, repos.registration),
		dashboard:  service.NewDashboardService(repos.registration, progress),
		analytics:  service.NewAnalyticsService(repos.course, repos.registration),
		event:      service.NewEventService(repos.event),
	}
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	controller.RegisterValidations()
	return &controllers{
		course:            controller.NewCourseController(s.course, s.enrollment, s.dashboard),
		progress:          controller.NewProgressController(s.progress),
		evaluation:        controller.NewEvaluationController(s.evaluation),
		teacherCourse:     controller.NewTeacherCourseController(s.course, s.analytics),
		teacherModule:     controller.NewTeacherModuleController(s.module),
		teacherEvaluation: controller.NewTeacherEvaluationController(s.authoring),
		event:             controller.NewEventController(s.event),
		health:            controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	a.limiter = security.NewRateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute)
	router.Use(a.limiter.Handler())
	a.RegisterConfigCallback(func(newCfg *config.Config) {
		a.limiter.Update(newCfg.RateLimit.MaxRequests, time.Duration(newCfg.RateLimit.WindowMinutes)*time.Minute)
	})

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func (a *App) migrate(cfg *config.Config) {
	if cfg.Server.Mode == "release" && !cfg.ForceMigrate {
		logger.Log.Info("Skipping auto migration in release mode")
		return
	}

	if err := database.Migrate(a.DB); err != nil {
		logger.Log.Fatal("Failed to migrate database", zap.Error(err))
	}

	created, err := database.SeedCategories(context.Background(), a.DB, categoryFile)
	if err != nil {
		logger.Log.Warn("Failed to seed categories", zap.Error(err))
		return
	}
	if created > 0 {
		logger.Log.Info("Categories seeded", zap.Int("created", created))
	}
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	app := &App{
		Config:   cfg,
		DB:       db,
		teachers: service.NewTeacherDirectory(cfg.Auth.Teachers),
	}

	app.migrate(cfg)
	if cfg.MigrateOnly {
		return app
	}

	// Redis 不可用时进度缓存降级为直接查库
	if cfg.Redis.Enabled {
		rdb, err := database.InitRedis(&cfg.Redis)
		if err != nil {
			logger.Log.Warn("Redis unavailable, progress cache disabled", zap.Error(err))
		} else {
			app.Redis = rdb
		}
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, db, app.Redis)
	app.services = services
	controllers := app.initControllers(services, db, app.Redis)

	// 监控初始化
	monitoring.Init()

	app.startScheduler(cfg, services)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("coursehub", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracerProvider = tp
	}

	app.setupMiddlewares(router, cfg)

	app.RegisterConfigCallback(func(newCfg *config.Config) {
		app.teachers.Replace(newCfg.Auth.Teachers)
		logger.Log.Info("Teacher allow-list reloaded", zap.Int("teachers", app.teachers.Len()))
	})

	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == util.StorageLocal {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	watchCtx, stopWatch := context.WithCancel(context.Background())
	go func() {
		if err := configwatcher.Watch(watchCtx, configDir, a.reloadConfig); err != nil {
			logger.Log.Warn("Config watcher stopped", zap.Error(err))
		}
	}()

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("listen failed", zap.Error(err))
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	stopWatch()
	if a.scheduler != nil {
		<-a.scheduler.Stop().Done()
	}
	if a.limiter != nil {
		a.limiter.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}

	logger.Log.Info("Server exiting")
}
