package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"

	"clv-tracking-service/internal/apiclient"
	"clv-tracking-service/internal/config"
	"clv-tracking-service/internal/controller"
	"clv-tracking-service/internal/docstore"
	httpserver "clv-tracking-service/internal/http"
	"clv-tracking-service/internal/identity"
	"clv-tracking-service/internal/model"
	"clv-tracking-service/internal/netstatus"
	"clv-tracking-service/internal/routes"
	"clv-tracking-service/internal/syncer"
	"clv-tracking-service/internal/tracker"
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
	log = logger.WithService(log, "clv-tracker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := docstore.Open(cfg.Tracker.DocStorePath)
	if err != nil {
		log.Fatal("open docstore", zap.Error(err))
	}
	defer store.Close()

	api := apiclient.New(cfg.Tracker.APIBaseURL, cfg.Tracker.APITimeout)

	provider := identity.NewStaticProvider(identity.Identity{
		UID:         cfg.Tracker.IdentityUID,
		Email:       cfg.Tracker.IdentityEmail,
		DisplayName: cfg.Tracker.IdentityName,
	})

	monitor := netstatus.NewMonitor(func(probeCtx context.Context) error {
		_, healthErr := api.Health(probeCtx)
		return healthErr
	}, cfg.Tracker.HealthPollEvery, log)
	monitor.Start()
	defer monitor.Stop()

	capture := tracker.NewCapture(cfg.Tracker.APIBaseURL, cfg.Tracker.QueueHighWater)
	synth := tracker.NewSynthesizer(tracker.BaselineByName(cfg.Tracker.BaselineProfile))
	publisher := syncer.NewPublisher(store, api, log)

	scheduler := syncer.NewScheduler(capture, synth, publisher, api, store, provider, monitor, syncer.Options{
		SyncInterval:   cfg.Tracker.SyncInterval,
		FlushInterval:  cfg.Tracker.FlushInterval,
		RetryBaseDelay: cfg.Tracker.RetryBaseDelay,
		MaxRetries:     cfg.Tracker.MaxRetries,
	}, log)

	// Auth transitions count as activity in their own right.
	unsubAuth := provider.OnChange(func(_ identity.Identity, signedIn bool) {
		if signedIn {
			capture.Record(model.ActivityLogin, nil)
		} else {
			capture.Record(model.ActivitySessionEnd, nil)
		}
	})
	defer unsubAuth()

	scheduler.Start()
	defer scheduler.Stop()

	if cfg.Tracker.IdentityUID != "" {
		provider.SignIn()
	}

	trackerController := controller.NewTrackerController(capture, scheduler)
	server := httpserver.NewServer(false, func(app *fiber.App) {
		routes.RegisterTracker(app, trackerController)
	})

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		if err := server.Shutdown(); err != nil {
			log.Error("server shutdown", zap.Error(err))
		}
	}()

	log.Info("starting tracker", zap.String("addr", cfg.Tracker.HTTPPort))
	if err := server.Listen(cfg.Tracker.HTTPPort); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
