// internal/app/server.go
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"tripreel-service/internal/config"
	"tripreel-service/internal/db"
	authHandler "tripreel-service/internal/handlers/auth"
	userHandler "tripreel-service/internal/handlers/user"
	"tripreel-service/internal/middleware"
	"tripreel-service/internal/pkg/jwt"
	"tripreel-service/internal/pkg/metrics"
	"tripreel-service/internal/pkg/password"
	"tripreel-service/internal/pkg/rolecache"
	"tripreel-service/internal/repository/postgres"
	authUsecase "tripreel-service/internal/service/auth"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Without redis, roles are held in-process briefly so a promotion on another
// instance is visible within localRoleCacheTTL.
const (
	localRoleCacheSize = 10_000
	localRoleCacheTTL  = 30 * time.Second
)

type Server struct {
	cfg         config.AppConfig
	engine      *gin.Engine
	logger      *zap.Logger
	authService *authUsecase.AuthService
	httpServer  *http.Server

	// mu guards the stores and closed; Start and Shutdown run on different goroutines.
	mu     sync.Mutex
	closed bool
	pool   *pgxpool.Pool
	redis  redis.UniversalClient
}

func NewServer() (*Server, error) {
	cfg := config.Load()

	logger, err := newLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	return &Server{
		cfg:    cfg,
		engine: engine,
		logger: logger,
		httpServer: &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

func newLogger(cfg config.AppConfig) (*zap.Logger, error) {
	if cfg.IsDevelopment() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// Start wires dependencies and serves HTTP until Shutdown is called.
func (s *Server) Start() error {
	ctx := context.Background()
	logger := s.logger

	// ----- JWT Manager -----
	// Fail before touching any backing store if the signing key is unusable.
	jwtManager, err := jwt.LoadAndBuild(s.cfg.JWT)
	if err != nil {
		return fmt.Errorf("failed to load JWT manager: %w", err)
	}

	// ----- PostgreSQL -----
	if err := db.RunMigrations(ctx, s.cfg.DatabaseURL); err != nil {
		return err
	}
	logger.Info("database migrations applied")

	pool, err := db.ConnectDB(ctx, db.PostgresConfig{
		URL:             s.cfg.DatabaseURL,
		MaxConns:        int32(s.cfg.DBMaxConns),
		MaxConnLifetime: time.Hour,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	logger.Info("connected to PostgreSQL")

	// ----- Redis -----
	redisClient, err := db.NewRedis(db.RedisConfig{
		ClusterMode: s.cfg.RedisCluster,
		Addresses:   s.cfg.RedisAddrs,
		Password:    s.cfg.RedisPass,
		DB:          s.cfg.RedisDB,
		PoolSize:    10,
	})
	var cacheClient redis.UniversalClient
	if err != nil {
		// The role cache degrades to direct lookups without redis.
		logger.Warn("redis unavailable, role cache disabled", zap.Error(err))
	} else {
		cacheClient = redisClient
		logger.Info("connected to Redis", zap.Strings("addrs", s.cfg.RedisAddrs))
	}

	if err := s.adopt(pool, cacheClient); err != nil {
		logger.Info("shutdown requested during startup")
		return nil
	}

	// ----- Metrics -----
	registry := prometheus.NewRegistry()
	appMetrics := metrics.New(registry)

	// ----- Repositories -----
	identityRepo := postgres.NewIdentityRepository(pool)

	cacheOpts := []rolecache.Option{rolecache.WithObserver(appMetrics)}
	if cacheClient == nil {
		cacheOpts = append(cacheOpts, rolecache.WithLocal(localRoleCacheSize, localRoleCacheTTL))
	}
	roles := rolecache.New(cacheClient, identityRepo, s.cfg.RoleCacheTTL, logger, cacheOpts...)

	// ----- Services -----
	authService := authUsecase.NewAuthService(
		identityRepo,
		password.NewHasher(s.cfg.BcryptCost),
		jwtManager.Generator,
		s.cfg.TokenTTLSeconds(),
		roles,
		logger,
	)
	s.authService = authService

	// ----- Initialize Admin -----
	if err := s.initializeAdmin(); err != nil {
		logger.Error("failed to initialize admin", zap.Error(err))
		// Don't fail startup, just log the error
	}

	// ----- Middlewares -----
	policy, err := middleware.NewPolicy(DefaultRules(), roles, logger)
	if err != nil {
		return fmt.Errorf("invalid authorization rules: %w", err)
	}
	policy.WithRecorder(appMetrics)

	s.engine.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
		appMetrics.Middleware(),
		middleware.CORSMiddleware(s.cfg.AllowedOrigins),
	)

	// ----- Router -----
	SetupRouter(s.engine, &Handlers{
		AuthHandler:   authHandler.NewAuthHandler(authService, logger),
		UserHandler:   userHandler.NewUserHandler(authService, logger),
		Authenticator: middleware.NewAuthenticator(jwtManager.Verifier, s.cfg.AuthAllowList, logger),
		Policy:        policy,
		Health:        healthHandler(pool),
		Metrics:       metrics.Handler(registry),
	})

	// ----- Start HTTP -----
	logger.Info("server running", zap.String("addr", s.cfg.HTTPAddr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// adopt hands the stores to the server so Shutdown can close them. If
// Shutdown already ran it closes them itself and returns http.ErrServerClosed.
func (s *Server) adopt(pool *pgxpool.Pool, rdb redis.UniversalClient) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		closeStores(pool, rdb, s.logger)
		return http.ErrServerClosed
	}
	s.pool, s.redis = pool, rdb
	return nil
}

// Shutdown drains HTTP and closes the backing stores. It is safe to call
// while Start is still wiring dependencies.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	pool, rdb := s.pool, s.redis
	s.pool, s.redis = nil, nil
	s.mu.Unlock()

	err := s.httpServer.Shutdown(ctx)
	closeStores(pool, rdb, s.logger)
	_ = s.logger.Sync()
	return err
}

func closeStores(pool *pgxpool.Pool, rdb redis.UniversalClient, logger *zap.Logger) {
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			logger.Warn("failed to close redis", zap.Error(err))
		}
	}
	if pool != nil {
		pool.Close()
	}
}

// pinger is the part of pgxpool.Pool the health check needs.
type pinger interface {
	Ping(ctx context.Context) error
}

func healthHandler(db pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": "down"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// initializeAdmin creates the bootstrap admin if none exists
func (s *Server) initializeAdmin() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	seed := authUsecase.AdminSeed{
		ID:       s.cfg.AdminID,
		Password: s.cfg.AdminPassword,
		Name:     s.cfg.AdminName,
		Nickname: s.cfg.AdminNickname,
		Phone:    s.cfg.AdminPhone,
		Email:    s.cfg.AdminEmail,
	}

	if err := s.authService.EnsureAdminExists(ctx, seed); err != nil {
		return fmt.Errorf("failed to ensure admin exists: %w", err)
	}
	return nil
}
