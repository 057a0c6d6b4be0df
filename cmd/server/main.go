package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"kenolive/internal/app"
	"kenolive/internal/cache"
	"kenolive/internal/config"
	"kenolive/internal/keno"
	"kenolive/internal/logger"
	"kenolive/internal/service"
	"kenolive/internal/transport/rest"
	"kenolive/internal/transport/ws"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

// @title Keno Live API
// @version 1.0
// @description Real-time keno rooms with a shared countdown and synchronized draws
// @host localhost:8080
// @BasePath /v1
func main() {
	cfg := config.Load()
	if err := logger.Init(cfg.LogLevel); err != nil {
		logger.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()
	logger.Info("started")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := app.Open(ctx, cfg)
	if err != nil {
		logger.Fatalf("Failed to open %s store: %v", cfg.StoreDriver, err)
	}
	defer store.Close()
	repos := store.Repos

	// Redis connection
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	defer rdb.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := rdb.Ping(pingCtx).Result(); err != nil {
		logger.Fatalf("Failed to ping Redis: %v", err)
	}
	logger.Infof("Connected to Redis at %s", cfg.RedisAddr)

	// Initialize WebSocket hub
	wsHub := ws.NewHub()
	defer wsHub.Close()
	logger.Info("WebSocket hub started")

	// Initialize caches
	roomCache := cache.NewRoomCache(rdb)
	leaderboard := cache.NewLeaderboardCache(rdb)

	// Initialize services
	authSvc := service.NewAuthService(repos.Players, cfg.JWTSecret, cfg.TokenTTL)
	roomSvc := service.NewRoomService(repos.Rooms, repos.Players, roomCache)
	gameSvc := service.NewGameService(repos, leaderboard, keno.NewDrawer(nil))
	lobbySvc := service.NewLobbyService(repos.Rooms, repos.Players, roomSvc, cfg.PublicBaseURL)
	rankingSvc := service.NewRankingService(repos.Players, leaderboard)

	// Inject broadcaster (wsHub implements service.Broadcaster)
	roomSvc.SetBroadcaster(wsHub)
	gameSvc.SetBroadcaster(wsHub)

	// Create router with container
	container := &rest.Container{
		AuthService:    authSvc,
		RoomService:    roomSvc,
		GameService:    gameSvc,
		LobbyService:   lobbySvc,
		RankingService: rankingSvc,
		WSHub:          wsHub,
		CORSOrigins:    cfg.CORSOrigins,
	}

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           rest.NewRouter(container),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infof("Server starting on :%s", cfg.HTTPPort)
		logger.Info("Endpoints:")
		logger.Info("  POST /v1/auth/register")
		logger.Info("  POST /v1/auth/login")
		logger.Info("  POST /v1/salas/enter")
		logger.Info("  GET  /v1/salas/{roomId}/qr")
		logger.Info("  GET  /v1/ranking")
		logger.Info("  WS   /v1/ws/sala/{roomId}")
		logger.Info("  WS   /v1/ws/game")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Errorf("Server stopped with error: %v", err)
		return
	}
	logger.Info("Server exited")
}
