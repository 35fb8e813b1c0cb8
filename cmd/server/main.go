package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/zhikangxie107/intr.vu/internal/config"
	"github.com/zhikangxie107/intr.vu/internal/exec"
	"github.com/zhikangxie107/intr.vu/internal/handlers"
	"github.com/zhikangxie107/intr.vu/internal/interviewer"
	"github.com/zhikangxie107/intr.vu/internal/jobs"
	"github.com/zhikangxie107/intr.vu/internal/llm"
	_ "github.com/zhikangxie107/intr.vu/internal/llm/gemini"
	"github.com/zhikangxie107/intr.vu/internal/metrics"
	"github.com/zhikangxie107/intr.vu/internal/models"
	"github.com/zhikangxie107/intr.vu/internal/poller"
	"github.com/zhikangxie107/intr.vu/internal/prompts"
	"github.com/zhikangxie107/intr.vu/internal/questions"
	"github.com/zhikangxie107/intr.vu/internal/repositories"
	"github.com/zhikangxie107/intr.vu/internal/routers"
	"github.com/zhikangxie107/intr.vu/internal/speech"
	"github.com/zhikangxie107/intr.vu/internal/utils"
)

func initDatabase(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.Postgres.DSN()), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.AutoMigrate(&models.Session{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return db, nil
}

func registerRoutes(router *chi.Mux,
	sessionHandler *handlers.SessionHandler,
	interviewHandler *handlers.InterviewHandler,
	questionHandler *handlers.QuestionHandler,
	speechHandler *handlers.SpeechHandler,
	runHandler *handlers.RunHandler,
	healthHandler *handlers.HealthHandler,
) {
	routers.HealthRoutes(router, healthHandler)
	routers.SessionRoutes(router, sessionHandler)
	routers.InterviewRoutes(router, interviewHandler)
	routers.QuestionRoutes(router, questionHandler)
	routers.SpeechRoutes(router, speechHandler)
	routers.RunRoutes(router, runHandler)
}

func main() {
	logger := utils.InitLogger()
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	db, err := initDatabase(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}

	catalog, err := questions.NewCatalog()
	if err != nil {
		logger.Fatal("Failed to load question catalog", zap.Error(err))
	}

	promptManager, err := prompts.NewPromptManager()
	if err != nil {
		logger.Fatal("Failed to initialize prompt manager", zap.Error(err))
	}

	provider, err := llm.NewProvider("gemini", cfg)
	if err != nil {
		logger.Fatal("Failed to initialize LLM provider", zap.Error(err))
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.Warn("Redis unreachable, TTS caching disabled", zap.Error(err))
		redisClient = nil
	}

	sessions := repositories.NewSessionRepository(db)
	orchestrator := interviewer.NewOrchestrator(sessions, catalog, provider, promptManager, logger,
		interviewer.WithSampling(cfg.Gemini.Temperature, cfg.Gemini.MaxOutputTokens))
	driver := poller.New(orchestrator, sessions, cfg.PollInterval, logger)

	ttsClient := speech.NewTTSClient(cfg.TTS, redisClient, logger)
	sttClient := speech.NewSTTClient(cfg.STT, logger)
	execClient := exec.NewClient(cfg.Exec, logger)

	sessionHandler := handlers.NewSessionHandler(sessions, driver, logger)
	interviewHandler := handlers.NewInterviewHandler(orchestrator, logger)
	questionHandler := handlers.NewQuestionHandler(catalog)
	speechHandler := handlers.NewSpeechHandler(ttsClient, sttClient, logger)
	runHandler := handlers.NewRunHandler(execClient, logger)
	healthHandler := handlers.NewHealthHandler(db, provider, catalog)

	sweeper := jobs.NewSessionSweeper(sessions, cfg.Sweeper, logger)
	if err := sweeper.Start(); err != nil {
		logger.Error("Failed to start session sweeper", zap.Error(err))
	}

	router := chi.NewRouter()
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))
	router.Use(chimiddleware.RequestID, chimiddleware.RealIP, chimiddleware.Recoverer, chimiddleware.Timeout(60*time.Second))
	router.Use(metrics.Middleware)

	registerRoutes(router, sessionHandler, interviewHandler, questionHandler, speechHandler, runHandler, healthHandler)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Interview service starting", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")
	driver.StopAll()
	sweeper.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
}
