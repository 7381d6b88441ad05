package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/hostelhq/hms/internal/apperror"
	"github.com/hostelhq/hms/internal/auth"
	"github.com/hostelhq/hms/internal/config"
	"github.com/hostelhq/hms/internal/database"
	"github.com/hostelhq/hms/internal/email"
	"github.com/hostelhq/hms/internal/handler"
	"github.com/hostelhq/hms/internal/middleware"
	"github.com/hostelhq/hms/internal/queue"
	"github.com/hostelhq/hms/internal/repository"
	"github.com/hostelhq/hms/internal/router"
)

func main() {
	// .env is optional; in containers the environment arrives pre-set.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	hostels := repository.NewHostelRepo(db)
	rooms := repository.NewRoomRepo(db)
	bookings := repository.NewBookingRepo(db)

	issuer := auth.NewIssuer(cfg)
	mail := email.NewSMTPSender(cfg)
	events := queue.NewPublisher(cfg.AMQPURL)

	guard := &middleware.Guard{
		Issuer: issuer,
		Users:  users,
		Tokens: tokens,
		Secure: cfg.IsProduction(),
	}

	h := router.Handlers{
		Auth:   handler.NewAuthHandler(cfg, issuer, users, tokens, mail),
		User:   handler.NewUserHandler(users, rooms, bookings, events),
		Admin:  handler.NewAdminHandler(users),
		Hostel: handler.NewHostelHandler(hostels),
		Room:   handler.NewRoomHandler(rooms, hostels),
	}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = apperror.EchoHandler
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	var cache echo.MiddlewareFunc
	if rdb != nil {
		e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
		cache = middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	} else {
		log.Println("redis unavailable; rate limiting and response cache disabled")
	}

	router.Register(e, h, guard, cache)

	go queue.StartBookingConsumer(cfg.AMQPURL)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
