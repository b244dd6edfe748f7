package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"

	"clv-tracking-service/internal/config"
	"clv-tracking-service/internal/controller"
	"clv-tracking-service/internal/db"
	httpserver "clv-tracking-service/internal/http"
	"clv-tracking-service/internal/repository"
	"clv-tracking-service/internal/routes"
	"clv-tracking-service/internal/service"
	"clv-tracking-service/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("load config: %v", err))
	}

	log, err := logger.New(cfg.LogLevel, cfg.Environment)
	if err != nil {
		panic(fmt.Sprintf("create logger: %v", err))
	}
	defer log.Sync()
	log = logger.WithService(log, "clv-api")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conn, err := db.NewConnection(ctx, cfg.API)
	if err != nil {
		log.Fatal("connect clickhouse", zap.Error(err))
	}
	defer conn.Close()

	if err := db.RunMigrations(ctx, conn); err != nil {
		log.Fatal("apply migrations", zap.Error(err))
	}

	customerRepo := repository.NewCustomerRepository(conn)
	activityRepo := repository.NewActivityRepository(conn)

	worker := service.NewActivityWorker(activityRepo, log,
		cfg.API.WorkerBufferSize, cfg.API.WorkerBatchSize, cfg.API.WorkerFlushEvery)
	defer worker.Shutdown()

	customerService := service.NewCustomerService(customerRepo, worker)
	customerController := controller.NewCustomerController(customerService, func() error {
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return conn.Ping(pingCtx)
	})

	server := httpserver.NewServer(cfg.API.FiberPrefork, func(app *fiber.App) {
		routes.RegisterAPI(app, customerController)
	})

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		if err := server.Shutdown(); err != nil {
			log.Error("server shutdown", zap.Error(err))
		}
	}()

	log.Info("starting customer api", zap.String("addr", cfg.API.HTTPPort))
	if err := server.Listen(cfg.API.HTTPPort); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
