package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"couple-plans-backend-go/internal/api"
	"couple-plans-backend-go/internal/config"
	"couple-plans-backend-go/internal/core"
	"couple-plans-backend-go/internal/crypto"
	"couple-plans-backend-go/internal/db"
	"couple-plans-backend-go/internal/events"
	"couple-plans-backend-go/internal/identity"
	"couple-plans-backend-go/internal/middleware"
	"couple-plans-backend-go/internal/mirror"
	"couple-plans-backend-go/internal/models"
	"couple-plans-backend-go/internal/realtime"
	"couple-plans-backend-go/internal/seed"
	"couple-plans-backend-go/pkg/cache"
	"couple-plans-backend-go/pkg/messagequeue"
)

func main() {
	// Load .env file. In production, environment variables should be set directly.
	if os.Getenv("GIN_MODE") != "release" {
		if err := godotenv.Load(); err != nil {
			log.Println("Warning: Error loading .env file:", err)
		}
	}

	// --- 1. Initialize Logger (Zap) ---
	zapLogger, err := newLogger(os.Getenv("GIN_MODE"))
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to initialize Zap logger: %v", err)
	}
	defer zapLogger.Sync()

	// --- 2. Load Application Configuration ---
	appConfig, err := config.LoadConfig()
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to load application configuration", zap.Error(err))
	}
	users, _ := appConfig.Users() // validated by LoadConfig
	zapLogger.Info("Application configuration loaded successfully.",
		zap.String("workspaceId", appConfig.WorkspaceID), zap.Int("collaborators", len(users)))

	// --- 3. Initialize Firebase Admin SDK (Firestore and Auth clients) ---
	initCtx, cancelInitCtx := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelInitCtx()
	if err := db.InitFirestore(initCtx, appConfig, zapLogger); err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize Firestore and Firebase Admin SDK", zap.Error(err))
	}
	defer db.Close()

	firestoreClient := db.GetFirestoreClient()
	firebaseAuthClient := db.GetFirebaseAuthClient()
	if firestoreClient == nil || firebaseAuthClient == nil {
		zapLogger.Fatal("CRITICAL_ERROR: Firebase clients are nil after initialization. Application cannot start.")
	}

	// --- 4. Initialize Repositories ---
	planRepo := db.NewFirestorePlanRepository(firestoreClient, appConfig.WorkspaceID)
	workspaceRepo := db.NewFirestoreWorkspaceRepository(firestoreClient, appConfig.WorkspaceID)

	// --- 5. Initialize Local Mirror ---
	var mirrorCache cache.Cache
	if appConfig.RedisAddress != "" {
		redisCache, err := cache.NewRedisCache(initCtx, cache.NewRedisCacheConfig{
			Address:  appConfig.RedisAddress,
			Password: appConfig.RedisPassword,
			DB:       appConfig.RedisDB,
			Prefix:   appConfig.WorkspaceID,
		})
		if err != nil {
			zapLogger.Fatal("CRITICAL_ERROR: Failed to connect to Redis", zap.Error(err))
		}
		defer redisCache.Close()
		mirrorCache = redisCache
		zapLogger.Info("Mirror backed by Redis", zap.String("address", appConfig.RedisAddress))
	} else {
		mirrorCache = cache.NewMemoryCache()
		zapLogger.Warn("REDIS_ADDRESS is not configured. Mirror is kept in memory and lost on restart.")
	}

	var sessionKey []byte
	if appConfig.MirrorEncryptionKey != "" {
		sessionKey, err = crypto.DecodeKey(appConfig.MirrorEncryptionKey)
		if err != nil {
			zapLogger.Fatal("CRITICAL_ERROR: Invalid MIRROR_ENCRYPTION_KEY", zap.Error(err))
		}
	}
	store := mirror.New(mirrorCache, sessionKey, zapLogger)

	owner := config.DefaultOwner(users)
	seedData, err := seed.Load(appConfig.SeedFile)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to load seed file", zap.Error(err))
	}
	seedPlans, err := seedData.BuildPlans(core.Actor{Username: owner.Username, Email: owner.Email}, time.Now())
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Invalid seed plans", zap.Error(err))
	}
	if err := store.SeedIfEmpty(initCtx, users, seedData.Locations, seedPlans); err != nil {
		zapLogger.Warn("Failed to seed mirror", zap.Error(err))
	}

	// --- 6. Initialize Event Publisher ---
	var publisher core.EventPublisher = events.NopPublisher{}
	if appConfig.RabbitMQURL != "" {
		mq, err := messagequeue.NewRabbitMQService(messagequeue.NewRabbitMQServiceConfig{URL: appConfig.RabbitMQURL})
		if err != nil {
			zapLogger.Fatal("CRITICAL_ERROR: Failed to connect to RabbitMQ", zap.Error(err))
		}
		defer mq.Close()
		publisher = events.NewQueuePublisher(mq, appConfig.RabbitMQQueue, zapLogger)
		zapLogger.Info("Plan events published to RabbitMQ", zap.String("queue", appConfig.RabbitMQQueue))
	}

	// --- 7. Initialize Services ---
	locationService := core.NewLocationService(workspaceRepo, store, zapLogger)
	planService, err := core.NewPlanService(core.PlanServiceConfig{
		Repo:              planRepo,
		Mirror:            store,
		Locations:         locationService,
		Events:            publisher,
		Logger:            zapLogger,
		DefaultOwnerEmail: owner.Email,
		ExportVersion:     appConfig.AppVersion,
	})
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize PlanService", zap.Error(err))
	}

	var passwordVerifier core.PasswordVerifier
	if appConfig.FirebaseWebAPIKey != "" {
		v, err := identity.NewPasswordVerifier(initCtx, appConfig.FirebaseWebAPIKey)
		if err != nil {
			zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize password sign-in", zap.Error(err))
		}
		passwordVerifier = v
	} else {
		zapLogger.Warn("FIREBASE_WEB_API_KEY is not configured. POST /api/v1/auth/login is disabled.")
	}
	sessionService := core.NewSessionService(users, passwordVerifier, firebaseAuthClient, store, zapLogger)

	// Remote failures at startup leave the services running on the mirror.
	if err := locationService.Load(initCtx); err != nil {
		zapLogger.Warn("Failed to load locations from Firestore, using mirror", zap.Error(err))
	}
	if err := planService.Load(initCtx); err != nil {
		zapLogger.Warn("Failed to load plans from Firestore, using mirror", zap.Error(err))
	}
	zapLogger.Info("Core services initialized successfully.")

	// --- 8. Start Realtime Watcher ---
	hub := realtime.NewHub()
	hub.PublishPlans(planService.ListPlans(initCtx, models.PlanFilter{}))
	hub.PublishLocations(locationService.ListLocations(initCtx))

	watchCtx, stopWatching := context.WithCancel(context.Background())
	defer stopWatching()
	watcher := realtime.NewWatcher(planRepo, workspaceRepo, planService, locationService, hub, zapLogger)
	go func() {
		if err := watcher.Run(watchCtx); err != nil {
			zapLogger.Error("Realtime watcher stopped", zap.Error(err))
		}
	}()

	// --- 9. Setup Gin HTTP Engine ---
	if appConfig.IsRelease() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()

	router.Use(middleware.RequestLogger(zapLogger))
	router.Use(middleware.RecoveryMiddleware(zapLogger))
	router.Use(middleware.CORSMiddleware(appConfig))

	// --- 10. Setup API Routes ---
	authMW := middleware.NewAuthMiddleware(firebaseAuthClient, sessionService, zapLogger)
	api.SetupRoutes(router, zapLogger, authMW, planService, locationService, sessionService, hub, appConfig.AppVersion)

	// --- 11. Configure and Start HTTP Server ---
	serverAddr := fmt.Sprintf(":%s", appConfig.Port)
	httpServer := &http.Server{
		Addr:              serverAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	zapLogger.Info("Starting HTTP server...", zap.String("address", serverAddr), zap.String("ginMode", gin.Mode()))
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// --- 12. Graceful Shutdown Handling ---
	quitChannel := make(chan os.Signal, 1)
	signal.Notify(quitChannel, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quitChannel
	zapLogger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	stopWatching()
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	// Event streams keep their connections open; Close ends whatever Shutdown could not drain.
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
		_ = httpServer.Close()
	}

	zapLogger.Info("Server exiting gracefully.")
}

func newLogger(ginMode string) (*zap.Logger, error) {
	if ginMode == "release" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
