package main

import (
	"log"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskboard/internal/config"
	"github.com/yukikurage/taskboard/internal/constants"
	"github.com/yukikurage/taskboard/internal/database"
	"github.com/yukikurage/taskboard/internal/handlers"
	"github.com/yukikurage/taskboard/internal/kvstore"
	"github.com/yukikurage/taskboard/internal/middleware"
	"github.com/yukikurage/taskboard/internal/services"
	"github.com/yukikurage/taskboard/internal/workspace"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	provider, err := newProvider(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open key-value store", zap.Error(err))
	}

	store, err := newSessionStore(cfg)
	if err != nil {
		logger.Fatal("Failed to create session store", zap.Error(err))
	}
	// Configure session options based on environment
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   constants.ProfileCookieMaxAge,
		HttpOnly: true,
		Secure:   cfg.IsProduction(), // true in production (HTTPS), false in development
		SameSite: http.SameSiteLaxMode,
	})

	// Initialize AI service
	opts := []workspace.Option{workspace.WithPollInterval(cfg.SessionPollInterval)}
	if cfg.OpenAIAPIKey != "" {
		opts = append(opts, workspace.WithAIService(services.NewAIService(cfg.OpenAIAPIKey)))
	}
	factory := workspace.NewFactory(provider, logger, opts...)

	// Initialize Gin router
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(logger))
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	handlers.Register(r, factory, logger)

	// Start server
	logger.Info("Server starting", zap.String("port", cfg.Port), zap.String("db_driver", cfg.DBDriver))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func newProvider(cfg *config.Config, logger *zap.Logger) (kvstore.Provider, error) {
	if cfg.DBDriver == config.DriverMemory {
		logger.Warn("Using in-memory store; data is lost on restart")
		return kvstore.NewMemoryProvider(), nil
	}

	db, err := database.Connect(cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db, logger); err != nil {
		return nil, err
	}
	return kvstore.NewGormProvider(db), nil
}

func newSessionStore(cfg *config.Config) (sessions.Store, error) {
	if cfg.SessionStore == config.SessionStoreRedis {
		redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
		return redisStore.NewStore(
			10,                        // Redis pool size
			"tcp",                     // network type
			redisAddr,                 // Redis address from config
			"",                        // username (empty for default user)
			"",                        // password (empty = no password)
			[]byte(cfg.SessionSecret), // authentication key
		)
	}
	return cookie.NewStore([]byte(cfg.SessionSecret)), nil
}
