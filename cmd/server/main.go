package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Mithun-AM/Exam-allocation-system/internal/api"
	"github.com/Mithun-AM/Exam-allocation-system/internal/api/handlers"
	"github.com/Mithun-AM/Exam-allocation-system/internal/repository"
	"github.com/Mithun-AM/Exam-allocation-system/internal/service"
	"github.com/Mithun-AM/Exam-allocation-system/pkg/auth"
	"github.com/Mithun-AM/Exam-allocation-system/pkg/config"
	"github.com/Mithun-AM/Exam-allocation-system/pkg/logger"
	"github.com/Mithun-AM/Exam-allocation-system/pkg/postgres"
	"github.com/Mithun-AM/Exam-allocation-system/pkg/redis"

	"go.uber.org/zap"
)

// @title Exam Allocation Chatbot API
// @version 1.0
// @description Retrieval-augmented assistant for exam scheduling, room allocation and invigilation duties

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting exam allocation chatbot service")

	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := redis.NewClient(ctx, &cfg.Redis, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close()

	store := repository.NewStore(db, appLogger)

	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Expiration, cfg.JWT.RefreshExp)
	authService := service.NewAuthService(store.Users, jwtManager, appLogger)

	llmService, err := service.NewLLMService(ctx, &cfg.GigaChat, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize LLM service", zap.Error(err))
	}
	defer llmService.Close()

	embeddingService := service.NewEmbeddingService(&cfg.Embedding, appLogger)

	vectorCache := service.NewVectorCacheService(&cfg.VectorCache, embeddingService, store, appLogger)
	if err := vectorCache.Init(); err != nil {
		appLogger.Fatal("Failed to initialize vector cache", zap.Error(err))
	}

	analyzer := service.NewLLMAnalyzer(llmService, appLogger)
	retrieval := service.NewRetrievalService(store, appLogger)
	formatter := service.NewContextService(&cfg.Chat, &cfg.VectorCache, appLogger)
	chat := service.NewChatService(llmService, &cfg.Chat, appLogger)
	sessions := service.NewSessionService(redisClient, &cfg.Redis, appLogger)

	chatbotService := service.NewChatbotService(
		analyzer, retrieval, formatter, chat, vectorCache, embeddingService, sessions, cfg, appLogger)

	authHandler := handlers.NewAuthHandler(authService, appLogger)
	chatbotHandler := handlers.NewChatbotHandler(chatbotService, appLogger)

	app := api.SetupRouter(authHandler, chatbotHandler, jwtManager, appLogger)

	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}
