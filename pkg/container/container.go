package container

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"yamdb-backend/internal/access"
	"yamdb-backend/internal/config"
	commentHandler "yamdb-backend/internal/domains/comment/handler"
	commentRepo "yamdb-backend/internal/domains/comment/repository"
	commentService "yamdb-backend/internal/domains/comment/service"
	reviewHandler "yamdb-backend/internal/domains/review/handler"
	reviewRepo "yamdb-backend/internal/domains/review/repository"
	reviewService "yamdb-backend/internal/domains/review/service"
	taxonomyHandler "yamdb-backend/internal/domains/taxonomy/handler"
	taxonomyModel "yamdb-backend/internal/domains/taxonomy/model"
	taxonomyRepo "yamdb-backend/internal/domains/taxonomy/repository"
	taxonomyService "yamdb-backend/internal/domains/taxonomy/service"
	titleHandler "yamdb-backend/internal/domains/title/handler"
	titleRepo "yamdb-backend/internal/domains/title/repository"
	titleService "yamdb-backend/internal/domains/title/service"
	userHandler "yamdb-backend/internal/domains/user/handler"
	userRepo "yamdb-backend/internal/domains/user/repository"
	userService "yamdb-backend/internal/domains/user/service"
	infraCache "yamdb-backend/internal/infrastructure/cache"
	"yamdb-backend/internal/infrastructure/database"
	"yamdb-backend/internal/infrastructure/queue"
	"yamdb-backend/pkg/cache"
	"yamdb-backend/pkg/jwt"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container holds the API's dependency graph. Build order is
// config, infrastructure, repositories, services, handlers.
type Container struct {
	// ========================================
	// INFRASTRUCTURE LAYER
	// ========================================
	Config      *config.Config
	DB          *database.PostgresDB
	Redis       *infraCache.RedisCache
	Cache       cache.Cache // nil when Redis is unreachable
	JWTManager  *jwt.Manager
	Evaluator   *access.Evaluator
	AsynqClient *asynq.Client
	Queue       *queue.Client

	// ========================================
	// REPOSITORY LAYER
	// ========================================
	CategoryRepo taxonomyRepo.Repository
	GenreRepo    taxonomyRepo.Repository
	TitleRepo    titleRepo.Repository
	ReviewRepo   reviewRepo.Repository
	CommentRepo  commentRepo.Repository
	UserRepo     userRepo.Repository

	// ========================================
	// SERVICE LAYER
	// ========================================
	CategoryService taxonomyService.Service
	GenreService    taxonomyService.Service
	TitleService    titleService.Service
	ReviewService   reviewService.Service
	CommentService  commentService.Service
	UserService     userService.UserService
	AuthService     userService.AuthService

	// ========================================
	// HANDLER LAYER
	// ========================================
	CategoryHandler *taxonomyHandler.TermHandler
	GenreHandler    *taxonomyHandler.TermHandler
	TitleHandler    *titleHandler.TitleHandler
	ReviewHandler   *reviewHandler.ReviewHandler
	CommentHandler  *commentHandler.CommentHandler
	UserHandler     *userHandler.UserHandler
	AuthHandler     *userHandler.AuthHandler
}

// NewContainer connects infrastructure and builds every layer on top of it.
func NewContainer(cfg *config.Config) (*Container, error) {
	log.Info().Msg("[CONTAINER] initializing")

	c := &Container{Config: cfg}

	// ========================================
	// STEP 1: DATABASE
	// ========================================
	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load database config: %w", err)
	}

	db := database.NewPostgresDB(dbConfig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.HealthCheck(ctx); err != nil {
		return nil, fmt.Errorf("database health check failed: %w", err)
	}
	c.DB = db

	if cfg.App.AutoMigrate {
		if err := db.Migrate(); err != nil {
			return nil, fmt.Errorf("failed to migrate: %w", err)
		}
	}

	// ========================================
	// STEP 2: REDIS
	// ========================================
	// Redis backs the taxonomy cache and the token attempt counter. Both
	// degrade gracefully, so a failed connection is not fatal.
	c.Redis = infraCache.NewRedisCache(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := c.Redis.Connect(ctx); err != nil {
		log.Warn().Err(err).Msg("[CONTAINER] redis unavailable, running without cache")
	} else {
		c.Cache = c.Redis
	}

	// ========================================
	// STEP 3: AUTH + QUEUE
	// ========================================
	c.JWTManager = jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessTokenTTL)

	c.Evaluator, err = access.NewEvaluator()
	if err != nil {
		return nil, fmt.Errorf("failed to build permission evaluator: %w", err)
	}

	c.AsynqClient = asynq.NewClient(RedisConnOpt(cfg.Redis))
	c.Queue = queue.NewClient(c.AsynqClient)

	c.initRepositories()
	c.initServices()
	c.initHandlers()

	log.Info().Msg("[CONTAINER] initialized")
	return c, nil
}

// RedisConnOpt is shared by the API producer and the worker.
func RedisConnOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Host,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

func (c *Container) initRepositories() {
	pool := c.DB.Pool

	c.CategoryRepo = taxonomyRepo.NewPostgresRepository(pool, taxonomyModel.Category)
	c.GenreRepo = taxonomyRepo.NewPostgresRepository(pool, taxonomyModel.Genre)
	c.TitleRepo = titleRepo.NewPostgresRepository(pool)
	c.ReviewRepo = reviewRepo.NewPostgresRepository(pool)
	c.CommentRepo = commentRepo.NewPostgresRepository(pool)
	c.UserRepo = userRepo.NewPostgresRepository(pool)
}

func (c *Container) initServices() {
	pool := c.DB.Pool

	c.CategoryService = taxonomyService.NewService(pool, c.CategoryRepo, c.Cache, taxonomyModel.Category)
	c.GenreService = taxonomyService.NewService(pool, c.GenreRepo, c.Cache, taxonomyModel.Genre)
	c.TitleService = titleService.NewTitleService(pool, c.TitleRepo)
	c.ReviewService = reviewService.NewReviewService(pool, c.ReviewRepo, c.Evaluator)
	c.CommentService = commentService.NewCommentService(pool, c.CommentRepo, c.Evaluator)
	c.UserService = userService.NewUserService(pool, c.UserRepo)
	c.AuthService = userService.NewAuthService(
		pool,
		c.UserRepo,
		c.Queue,
		c.Cache,
		c.JWTManager,
		c.Config.Auth,
	)
}

func (c *Container) initHandlers() {
	c.CategoryHandler = taxonomyHandler.NewTermHandler(c.CategoryService)
	c.GenreHandler = taxonomyHandler.NewTermHandler(c.GenreService)
	c.TitleHandler = titleHandler.NewTitleHandler(c.TitleService)
	c.ReviewHandler = reviewHandler.NewReviewHandler(c.ReviewService)
	c.CommentHandler = commentHandler.NewCommentHandler(c.CommentService)
	c.UserHandler = userHandler.NewUserHandler(c.UserService)
	c.AuthHandler = userHandler.NewAuthHandler(c.AuthService)
}

// Cleanup releases connections on shutdown.
func (c *Container) Cleanup() {
	if c.AsynqClient != nil {
		if err := c.AsynqClient.Close(); err != nil {
			log.Warn().Err(err).Msg("[CONTAINER] failed to close asynq client")
		}
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			log.Warn().Err(err).Msg("[CONTAINER] failed to close redis")
		}
	}

	if c.DB != nil {
		c.DB.Close()
	}

	log.Info().Msg("[CONTAINER] cleanup completed")
}
