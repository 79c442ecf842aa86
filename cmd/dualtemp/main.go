package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/energye/systray"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/dualtemp/dualtemp/internal/api/http"
	"github.com/dualtemp/dualtemp/internal/app"
	"github.com/dualtemp/dualtemp/internal/config"
	"github.com/dualtemp/dualtemp/internal/scheduler"
	"github.com/dualtemp/dualtemp/internal/settings"
	"github.com/dualtemp/dualtemp/internal/tray"
	"github.com/dualtemp/dualtemp/internal/weather/client"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	store, err := settings.Open(cfg.SettingsPath)
	if err != nil {
		log.Fatalf("failed to open settings store: %v", err)
	}

	// Shared HTTP client for outbound calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}
	weatherClient := client.New(httpClient, cfg)

	// Wiring is circular on purpose: tray menu actions call back into
	// the controller, which renders through the tray.
	var controller *app.App
	presenter := tray.New(tray.Callbacks{
		Refresh:         func() { controller.RefreshNow() },
		OpenPreferences: func() { controller.OpenPreferences() },
		Quit:            systray.Quit,
	})
	sched := scheduler.New(func() { controller.RefreshNow() })
	controller = app.New(store, weatherClient, sched, presenter, "http://"+cfg.PrefsAddr+"/")

	// Local preferences UI.
	prefsApp := fiber.New(fiber.Config{
		AppName:               "dualtemp",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})
	prefsApp.Use(logger.New())
	prefsApp.Use(recover.New())

	prefsApp.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "dualtemp",
		})
	})

	httpapi.RegisterRoutes(prefsApp, controller)

	go func() {
		if err := prefsApp.Listen(cfg.PrefsAddr); err != nil {
			log.Printf("preferences server stopped: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := controller.WatchSettings(ctx); err != nil {
		log.Printf("settings watcher unavailable: %v", err)
	}

	// A termination signal closes the tray loop.
	go func() {
		<-ctx.Done()
		systray.Quit()
	}()

	systray.Run(func() {
		if err := controller.Start(); err != nil {
			log.Printf("failed to start refresh timer: %v", err)
		}
	}, func() {
		stop()
		sched.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := prefsApp.ShutdownWithContext(shutdownCtx); err != nil {
			log.Printf("error during shutdown: %v", err)
		}
	})
}
