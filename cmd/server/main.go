package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/benbeisheim/chessrules-backend/internal/archive"
	"github.com/benbeisheim/chessrules-backend/internal/config"
	"github.com/benbeisheim/chessrules-backend/internal/controller"
	"github.com/benbeisheim/chessrules-backend/internal/service"
	"github.com/benbeisheim/chessrules-backend/internal/storage"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
	level, _ := cfg.Level()
	log.SetLevel(level)

	opts := service.Options{Clock: cfg.Clock()}
	if cfg.ArchivePath != "" {
		a, err := archive.Open(cfg.ArchivePath)
		if err != nil {
			log.Fatalf("open archive: %v", err)
		}
		defer a.Close()
		opts.Archive = a
	}
	if cfg.SnapshotDir != "" {
		s, err := storage.Open(cfg.SnapshotDir)
		if err != nil {
			log.Fatalf("open snapshots: %v", err)
		}
		defer s.Close()
		opts.Snapshots = s
	}

	// Initialize services
	gameManager := service.NewGameManager(opts)
	if _, err := gameManager.Restore(); err != nil {
		log.Errorf("restore games: %v", err)
	}
	gameService := service.NewGameService(gameManager)

	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, X-Player-ID",
		AllowMethods:     "GET, POST, OPTIONS",
		AllowCredentials: cfg.AllowOrigins != "*",
	}))

	controller.RegisterRoutes(app, gameService, cfg.Origins())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		if err := app.Shutdown(); err != nil {
			log.Errorf("shutdown: %v", err)
		}
	}()

	if err := app.Listen(cfg.Addr); err != nil {
		log.Errorf("listen: %v", err)
	}
}
