package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/playmatatu/mergeballs/internal/api"
	"github.com/playmatatu/mergeballs/internal/arena"
	"github.com/playmatatu/mergeballs/internal/config"
	"github.com/playmatatu/mergeballs/internal/redis"
	"github.com/playmatatu/mergeballs/internal/ws"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize configuration
	cfg := config.Load()

	tuning, err := config.LoadTuning(cfg.TuningFile)
	if err != nil {
		log.Fatalf("Failed to load tuning: %v", err)
	}
	if cfg.TuningFile != "" {
		log.Printf("[CONFIG] tuning loaded from %s", cfg.TuningFile)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize Redis (optional)
	rdb, err := redis.Connect(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	hub := ws.NewHub()

	// Round results go through Redis when it is there so every server
	// instance sees them; otherwise straight to local clients.
	var publisher arena.Publisher = hub
	if rdb != nil {
		defer rdb.Close()
		publisher = arena.NewRedisPublisher(rdb)
		ws.StartGameEventSubscriber(ctx, rdb, hub)
	}

	manager := arena.NewManager(ctx, arena.Options{
		TickHz:    cfg.TickHz,
		Tuning:    tuning.Game(),
		Bounds:    tuning.InitialBounds(),
		MaxBodies: cfg.MaxBodiesPerSession,
	}, publisher)
	defer manager.StopAll()

	arena.StartIdleReaper(ctx, manager,
		time.Duration(cfg.SessionIdleSeconds)*time.Second,
		time.Duration(cfg.ReaperIntervalSeconds)*time.Second)

	// Set up Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	api.SetupRoutes(router, manager, hub, cfg, tuning)

	// Start server
	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{Addr: ":" + port, Handler: router}
	go func() {
		log.Printf("Starting merge-balls server on port %s (tick=%dHz)", port, cfg.TickHz)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}
