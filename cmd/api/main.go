package main

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/curiosity-whiteboard/whiteboard-backend/config"
	"github.com/curiosity-whiteboard/whiteboard-backend/internal/auth"
	"github.com/curiosity-whiteboard/whiteboard-backend/internal/boards"
	"github.com/curiosity-whiteboard/whiteboard-backend/internal/bootstrap"
	"github.com/curiosity-whiteboard/whiteboard-backend/internal/logger"
	"github.com/curiosity-whiteboard/whiteboard-backend/internal/solve"

	fbauth "firebase.google.com/go/v4/auth"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zlog, err := logger.New(cfg.App.Environment, cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zlog.Sync()

	bootstrap.SetGinMode(cfg.App.Environment)

	ctx := context.Background()

	fileStore := boards.NewFileStore(cfg.Store.FilePath)

	var authClient *fbauth.Client
	var userStore boards.Store
	app, err := auth.NewApp(ctx, cfg.Firebase.CredentialsPath)
	if err != nil {
		zlog.Fatal("init firebase", zap.Error(err))
	}
	if app != nil {
		authClient, err = app.Auth(ctx)
		if err != nil {
			zlog.Fatal("init firebase auth", zap.Error(err))
		}
		fsClient, err := app.Firestore(ctx)
		if err != nil {
			zlog.Fatal("init firestore", zap.Error(err))
		}
		defer fsClient.Close()
		userStore = boards.NewFirestoreStore(fsClient)
	} else {
		zlog.Warn("FIREBASE_CREDENTIALS_PATH not set, running anonymous-only")
	}

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	}

	if cfg.Store.RetentionDays > 0 {
		retention := boards.NewRetention(fileStore, time.Duration(cfg.Store.RetentionDays)*24*time.Hour, zlog)
		if err := retention.Start(); err != nil {
			zlog.Fatal("start retention sweep", zap.Error(err))
		}
		defer retention.Stop()
	}

	solver := solve.New(solve.NewClient(solve.ClientOptions{
		BaseURL:        cfg.OpenAI.BaseURL,
		APIKey:         cfg.OpenAI.APIKey,
		Model:          cfg.OpenAI.Model,
		RequestsPerSec: cfg.OpenAI.RequestsPerSec,
		Burst:          cfg.OpenAI.Burst,
	}), zlog)

	r := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName:    "whiteboard-backend",
		Version:        cfg.App.Version,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AuthClient:     authClient,
		Boards:         boards.NewResolver(fileStore, userStore),
		Solver:         solver,
		Redis:          rdb,
		SolveQPS:       cfg.Redis.SolveQPS,
		Log:            zlog,
	})

	zlog.Info("listening", zap.String("port", cfg.Server.Port))
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		zlog.Fatal("server exited", zap.Error(err))
	}
}
