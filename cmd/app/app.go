package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	v1 "livepoll/api/v1"
	"livepoll/internal/gateway"
	"livepoll/internal/poll"
	"livepoll/internal/store"
	"livepoll/pkg/async"
	"livepoll/pkg/logger"
	"livepoll/pkg/server"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/valyala/fasthttp/reuseport"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("failed to load .env file, make sure it exists:", err)
		os.Exit(1)
	}

	level := zerolog.InfoLevel
	if os.Getenv("APP_BUILD_MODE") == "dev" {
		level = zerolog.DebugLevel
	}
	logger.Configure(level)

	app := server.NewFiber()
	app.Use(limiter.New(limiter.Config{
		Max:        60,
		Expiration: time.Second * 60,
	}))

	var st store.Store
	if dsn := os.Getenv("APP_DB"); dsn != "" {
		gs, err := store.NewGorm(dsn)
		if err != nil {
			log.Fatal().Err(err).Msg("could not open database")
		}
		st = gs
	} else {
		log.Warn().Msg("APP_DB is not set, polls will not survive a restart")
		st = store.NewMemory()
	}

	svc := poll.NewService(st)
	sched := poll.NewScheduler(svc)
	hub := gateway.NewHub()
	gw := gateway.New(svc, sched, hub)
	sched.OnEnded = gw.AnnounceEnded

	go hub.Run()

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "timestamp": time.Now()})
	})
	gateway.RegisterRoutes(app, gw)
	v1.SetupRoutes(app, svc, gw)

	run(app, hub, sched)
}

func run(app *fiber.App, hub *gateway.Hub, sched *poll.Scheduler) {
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = ":5000"
	}

	var errCh <-chan error
	if os.Getenv("APP_BUILD_MODE") == "dev" {
		log.Info().Msg("dev mode enabled")
		errCh = async.ErrAble(func() error { return app.Listen(port) })
	} else {
		ln, err := reuseport.Listen("tcp4", port)
		if err != nil {
			log.Fatal().Err(err).Str("port", port).Msg("could not listen")
		}
		errCh = async.ErrAble(func() error { return app.Listener(ln) })
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Fatal().Err(err).Msg("server stopped")
	case <-quit:
		log.Info().Msg("shutting down...")
		sched.Stop()
		_ = app.Shutdown()
		hub.Shutdown()
	}
}
