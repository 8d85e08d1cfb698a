package cmd

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/wadesk/wadesk/core/config"
	"github.com/wadesk/wadesk/ui/rest"
	"github.com/wadesk/wadesk/ui/rest/middleware"
)

var restCmd = &cobra.Command{
	Use:   "rest",
	Short: "Serve the relay HTTP API and provider webhooks",
	Run:   restServer,
}

func init() {
	rootCmd.AddCommand(restCmd)
}

func restServer(_ *cobra.Command, _ []string) {
	cfg := config.Global

	app := fiber.New(fiber.Config{
		AppName:      "Wadesk Relay",
		Network:      "tcp",
		ServerHeader: "Hidden",
	})

	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.App.CorsAllowedOrigins, ", "),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Agent-ID, X-Request-ID",
	}))
	app.Use(middleware.Recovery())
	if cfg.App.Debug {
		app.Use(logger.New())
	}

	api := app.Group(cfg.App.BasePath)
	rest.InitRestWebhook(api, webhookUsecase, cfg.Meta.VerifyToken)
	rest.InitRestMessage(api, messageUsecase, chatUsecase)
	rest.InitRestHealth(api, healthUsecase)

	go func() {
		if err := app.Listen(":" + cfg.App.Port); err != nil {
			logrus.Fatalln("Failed to start server:", err)
		}
	}()
	logrus.Infof("Relay listening on port %s (provider: %s)", cfg.App.Port, cfg.Provider.Active)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		logrus.Errorf("Server shutdown error: %v", err)
	}
}
