// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/kaqfa/student-space/internal/auth"
	"github.com/kaqfa/student-space/internal/catalog"
	"github.com/kaqfa/student-space/internal/config"
	"github.com/kaqfa/student-space/internal/quiz"
	"github.com/kaqfa/student-space/pkg/cache"
	"github.com/kaqfa/student-space/pkg/database"
	"github.com/kaqfa/student-space/pkg/logger"
	"github.com/kaqfa/student-space/pkg/monitoring"
	"github.com/kaqfa/student-space/pkg/websocket"
)

func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zlog, err := logger.New(logger.Options{
		Level: cfg.Log.Level,
		File:  cfg.Log.File,
		Debug: cfg.Server.Mode == "debug",
	})
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zlog.Sync()

	// Initialize database
	db, err := database.Open(&database.Config{
		Driver:   cfg.Database.Driver,
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
		Path:     cfg.Database.Path,
	})
	if err != nil {
		zlog.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		zlog.Fatal("failed to migrate database", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Redis is optional; the engine reads through to the database without it.
	var quizCache quiz.Cache
	if cfg.Redis.Enabled {
		redisCache := cache.NewRedisCache(cache.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := redisCache.Ping(pingCtx); err != nil {
			zlog.Warn("redis unavailable, running without cache", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
			redisCache.Close()
		} else {
			quizCache = redisCache
			defer redisCache.Close()
		}
		cancel()
	}

	wsHub := websocket.NewHub(cfg.Server.AllowedOrigins, zlog.Named("ws"))
	go wsHub.Run(ctx)

	monitoring.Init()

	// Repositories
	authRepo := auth.NewRepository(db)
	catalogRepo := catalog.NewRepository(db)
	quizRepo := quiz.NewRepository(db)

	// Services
	authService := auth.NewService(authRepo, cfg.JWT.Secret, time.Duration(cfg.JWT.ExpireHours)*time.Hour, zlog.Named("auth"))
	catalogService := catalog.NewService(catalogRepo, zlog.Named("catalog"))
	guard := quiz.NewGuard(authRepo)
	quizService := quiz.NewService(quizRepo, guard, quizCache, wsHub, quiz.DefaultEngineConfig(), zlog.Named("quiz"))

	var reaper *quiz.Reaper
	if cfg.Engine.ReaperSchedule != "" {
		reaper = quiz.NewReaper(quizService, cfg.Engine.ReaperSchedule, zlog.Named("reaper"))
		if err := reaper.Start(); err != nil {
			zlog.Fatal("failed to start session reaper", zap.Error(err))
		}
	}

	// Handlers
	authHandler := auth.NewHandler(authService, zlog.Named("auth"))
	catalogHandler := catalog.NewHandler(catalogService, zlog.Named("catalog"))
	quizHandler := quiz.NewHandler(quizService, guard, wsHub, zlog.Named("quiz"))

	router := mux.NewRouter()
	router.Use(logger.RequestLogger(zlog.Named("http")))
	router.Use(monitoring.MetricsMiddleware())

	router.Handle("/metrics", monitoring.Handler()).Methods(http.MethodGet)
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(r.Context())
		}
		if err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "ok")
	}).Methods(http.MethodGet)

	// Auth routes - no JWT required
	publicRouter := router.PathPrefix("/api").Subrouter()
	authHandler.RegisterPublic(publicRouter)

	// Everything else - JWT required
	apiRouter := router.PathPrefix("/api").Subrouter()
	apiRouter.Use(auth.JWTMiddleware(cfg.JWT.Secret))
	authHandler.RegisterRoutes(apiRouter)
	catalogHandler.RegisterRoutes(apiRouter)
	quizHandler.RegisterRoutes(apiRouter)

	wsRouter := router.PathPrefix("/ws").Subrouter()
	wsRouter.Use(auth.JWTMiddleware(cfg.JWT.Secret))
	wsRouter.HandleFunc("/students/{studentID:[0-9]+}", quizHandler.WatchStudent)

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Requested-With", logger.RequestIDHeader},
		ExposedHeaders:   []string{"Content-Length", logger.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      corsMiddleware.Handler(router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		zlog.Info("server starting", zap.String("addr", srv.Addr), zap.String("mode", cfg.Server.Mode))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if reaper != nil {
		reaper.Stop(shutdownCtx)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("server forced to shutdown", zap.Error(err))
	}
	zlog.Info("server shutdown gracefully")
}
