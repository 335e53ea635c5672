package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/zyhxx/classseat/internal/config"
	"github.com/zyhxx/classseat/internal/database"
	"github.com/zyhxx/classseat/internal/handler"
	"github.com/zyhxx/classseat/internal/middleware"
	"github.com/zyhxx/classseat/internal/queue"
	"github.com/zyhxx/classseat/internal/repository"
	"github.com/zyhxx/classseat/internal/router"
	queue_publisher "github.com/zyhxx/classseat/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments set env directly
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := database.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("ensure schema: %v", err)
	}

	users := repository.NewUserRepo(db)
	seats := repository.NewSeatRepo(db)

	// The seat rows are created exactly once; later starts see a
	// populated table and leave it untouched.
	if err := seats.Seed(ctx, cfg.SeatCount); err != nil {
		log.Fatalf("seed seats: %v", err)
	}

	// Rate limiting degrades to a no-op when Redis is unreachable.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting disabled")
	}
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	// The audit consumer only runs when a broker is configured.
	if url := queue_publisher.BrokerURL(); url != "" {
		go queue.StartReservationConsumer(url)
	}

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users), cfg.JWTSecret, limiter)
	router.RegisterSeats(e, handler.NewSeatHandler(seats), cfg.JWTSecret)
	router.RegisterAdmin(e, handler.NewAdminHandler(users, seats), cfg.JWTSecret, users)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, seats=%d)", addr, cfg.Env, cfg.SeatCount)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
