package main

import (
	"context"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Maxim12412/Monopolista/internal/cache"
	"github.com/Maxim12412/Monopolista/internal/config"
	"github.com/Maxim12412/Monopolista/internal/game"
	"github.com/Maxim12412/Monopolista/internal/repository"
	"github.com/Maxim12412/Monopolista/internal/service"
	"github.com/Maxim12412/Monopolista/internal/store"
	"github.com/Maxim12412/Monopolista/internal/transport/rest"
	"github.com/Maxim12412/Monopolista/internal/transport/ws"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	log.Println("started")
	ctx := context.Background()

	cfg := config.Load()

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(ctx)

	// Ping MongoDB
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB:", err)
	}
	log.Println("Connected to MongoDB")

	db := mongoClient.Database("monopolista")

	// Redis connection
	redisAddr := cfg.RedisAddr
	// Remove redis:// prefix if present
	if len(redisAddr) > 8 && redisAddr[:8] == "redis://" {
		redisAddr = redisAddr[8:]
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})
	defer rdb.Close()

	// Ping Redis
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("Failed to ping Redis:", err)
	}
	log.Println("Connected to Redis")

	// Initialize WebSocket hub
	wsHub := ws.NewHub()
	log.Println("WebSocket hub started")

	// Initialize persistence and caches
	snapshotRepo := repository.NewSnapshotRepo(db)
	roomCache := cache.NewRoomCache(rdb)
	leaderboard := cache.NewLeaderboardCache(rdb)

	// Initialize the room registry and game engine
	roomStore := store.New()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	engine := game.NewEngine(rng)

	// Initialize services
	authSvc := service.NewAuthService(cfg.JWTSecret)
	gameSvc := service.NewGameService(roomStore, engine, snapshotRepo, roomCache, leaderboard, authSvc, cfg)

	// Inject broadcaster (wsHub implements service.Broadcaster)
	gameSvc.SetBroadcaster(wsHub)
	wsHub.OnDisconnect = gameSvc.HandleDisconnect

	// Idle-room sweeper
	sweepCtx, stopSweeper := context.WithCancel(ctx)
	defer stopSweeper()
	go gameSvc.RunSweeper(sweepCtx)

	// Create router with container
	container := &rest.Container{
		AuthService: authSvc,
		GameService: gameSvc,
		WSHub:       wsHub,
	}

	router := rest.NewRouter(container)

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.Port)
		log.Println("Endpoints:")
		log.Println("  POST /v1/rooms")
		log.Println("  POST /v1/rooms/{code}/join")
		log.Println("  GET  /v1/leaderboard")
		log.Println("  WS   /v1/ws/rooms/{code}")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
