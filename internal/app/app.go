package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fellowship_backend/internal/config"
	"fellowship_backend/internal/controller"
	"fellowship_backend/internal/repository"
	"fellowship_backend/internal/service"
	"fellowship_backend/pkg/database"
	"fellowship_backend/pkg/logger"
	"fellowship_backend/pkg/monitoring"
	"fellowship_backend/pkg/security"
	"fellowship_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user         *repository.UserRepository
	cohort       *repository.CohortRepository
	point        *repository.PointRepository
	achievement  *repository.AchievementRepository
	leaderboard  *repository.LeaderboardRepository
	activity     *repository.ActivityRepository
	liveQuiz     *repository.LiveQuizRepository
	resource     *repository.ResourceRepository
	notification *repository.NotificationRepository
}

type services struct {
	auth         *service.AuthService
	storage      *service.StorageService
	points       *service.PointsService
	achievement  *service.AchievementService
	leaderboard  *service.LeaderboardService
	archive      *service.ArchiveService
	content      *service.ContentService
	community    *service.CommunityService
	cohort       *service.CohortService
	notification *service.NotificationService
	liveQuiz     *service.LiveQuizService
	quizHub      *service.QuizHub
}

type controllers struct {
	auth         *controller.AuthController
	points       *controller.PointsController
	achievement  *controller.AchievementController
	leaderboard  *controller.LeaderboardController
	liveQuiz     *controller.LiveQuizController
	community    *controller.CommunityController
	content      *controller.ContentController
	cohort       *controller.CohortController
	notification *controller.NotificationController
	health       *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ApplyConfig 配置热更新入口，由 configwatcher 触发
func (a *App) ApplyConfig(cfg *config.Config) {
	a.Config = cfg
	for _, callback := range a.configCallbacks {
		callback(cfg)
	}
	logger.Log.Info("configuration reloaded")
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:         repository.NewUserRepository(db),
		cohort:       repository.NewCohortRepository(db),
		point:        repository.NewPointRepository(db),
		achievement:  repository.NewAchievementRepository(db),
		leaderboard:  repository.NewLeaderboardRepository(db),
		activity:     repository.NewActivityRepository(db),
		liveQuiz:     repository.NewLiveQuizRepository(db),
		resource:     repository.NewResourceRepository(db),
		notification: repository.NewNotificationRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.notification = service.NewNotificationService(repos.notification, repos.user)
	s.points = service.NewPointsService(repos.point, repos.cohort)
	s.achievement = service.NewAchievementService(
		repos.achievement,
		repos.user,
		repos.cohort,
		repos.point,
		repos.activity,
		repos.resource,
		repos.liveQuiz,
		s.points,
		s.notification,
	)
	s.leaderboard = service.NewLeaderboardService(repos.user, repos.cohort, repos.point, repos.activity)
	s.archive = service.NewArchiveService(repos.cohort, repos.user, repos.point, repos.leaderboard, s.achievement, s.notification)
	s.content = service.NewContentService(repos.resource, s.points, s.achievement)
	s.community = service.NewCommunityService(repos.activity, s.points, s.achievement)
	s.cohort = service.NewCohortService(repos.cohort, repos.user)

	s.liveQuiz = service.NewLiveQuizService(repos.liveQuiz, repos.user, s.achievement, cfg.LiveQuiz)
	s.quizHub = service.NewQuizHub(rdb, s.liveQuiz)
	go s.quizHub.Run()

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:         controller.NewAuthController(s.auth),
		points:       controller.NewPointsController(s.points),
		achievement:  controller.NewAchievementController(s.achievement, s.storage),
		leaderboard:  controller.NewLeaderboardController(s.leaderboard, s.archive),
		liveQuiz:     controller.NewLiveQuizController(s.liveQuiz, s.quizHub),
		community:    controller.NewCommunityController(s.community),
		content:      controller.NewContentController(s.content),
		cohort:       controller.NewCohortController(s.cohort),
		notification: controller.NewNotificationController(s.notification),
		health:       controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 100000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func (a *App) startBackgroundTasks(s *services) {
	// 月度归档：每小时巡检一次，跨月后第一次触发完成归档，幂等可重入
	stop := make(chan struct{})
	go s.archive.RunScheduler(time.Hour, stop)
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		log.Fatalf("Failed to initialize redis: %v", err)
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	app.services = services
	controllers := app.initControllers(services, db)

	// 成就目录随进程启动同步进库
	if err := services.achievement.SyncCatalog(); err != nil {
		logger.Log.Fatal("Failed to sync achievement catalog", zap.Error(err))
	}

	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("fellowship-platform", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, repos, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.startBackgroundTasks(services)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// 清理 WebSocket 连接和 Redis 在线状态
	if a.services != nil && a.services.quizHub != nil {
		a.services.quizHub.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
