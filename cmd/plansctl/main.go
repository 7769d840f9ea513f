package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"couple-plans-backend-go/internal/cli"
	"couple-plans-backend-go/internal/config"
	"couple-plans-backend-go/internal/core"
	"couple-plans-backend-go/internal/db"
	"couple-plans-backend-go/internal/events"
	"couple-plans-backend-go/internal/mirror"
	"couple-plans-backend-go/internal/seed"
	"couple-plans-backend-go/pkg/cache"
	"couple-plans-backend-go/pkg/messagequeue"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := zap.NewDevelopment()
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer logger.Sync()

	appConfig, err := config.LoadConfig()
	if err != nil {
		return err
	}
	users, err := appConfig.Users()
	if err != nil {
		return err
	}

	if err := db.InitFirestore(ctx, appConfig, logger); err != nil {
		return fmt.Errorf("initializing Firestore: %w", err)
	}
	defer db.Close()

	// Wire repositories and services against a throwaway mirror; Firestore is authoritative.
	planRepo := db.NewFirestorePlanRepository(db.GetFirestoreClient(), appConfig.WorkspaceID)
	workspaceRepo := db.NewFirestoreWorkspaceRepository(db.GetFirestoreClient(), appConfig.WorkspaceID)
	store := mirror.New(cache.NewMemoryCache(), nil, logger)

	app := &cli.App{Users: users}

	var publisher core.EventPublisher = events.NopPublisher{}
	if appConfig.RabbitMQURL != "" {
		mq, err := messagequeue.NewRabbitMQService(messagequeue.NewRabbitMQServiceConfig{URL: appConfig.RabbitMQURL})
		if err != nil {
			return fmt.Errorf("connecting to RabbitMQ: %w", err)
		}
		defer mq.Close()
		queuePublisher := events.NewQueuePublisher(mq, appConfig.RabbitMQQueue, logger)
		publisher = queuePublisher
		app.Events = queuePublisher
	}

	app.Locations = core.NewLocationService(workspaceRepo, store, logger)
	app.Plans, err = core.NewPlanService(core.PlanServiceConfig{
		Repo:              planRepo,
		Mirror:            store,
		Locations:         app.Locations,
		Events:            publisher,
		Logger:            logger,
		DefaultOwnerEmail: config.DefaultOwner(users).Email,
		ExportVersion:     appConfig.AppVersion,
	})
	if err != nil {
		return err
	}
	app.Load = func(ctx context.Context) error {
		if err := app.Locations.Load(ctx); err != nil {
			return err
		}
		return app.Plans.Load(ctx)
	}

	app.Seed, err = seed.Load(appConfig.SeedFile)
	if err != nil {
		return err
	}

	return cli.NewRootCmd(app).ExecuteContext(ctx)
}
