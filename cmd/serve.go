package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"datarec/core/config"
	"datarec/core/loader"
	"datarec/core/logger"
	"datarec/core/middleware/auth"
	"datarec/core/middleware/rayid"
	"datarec/feature/recon"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve reconciliation jobs over HTTP",
	Long:  `Starts the HTTP server and mounts the jobs directory under /recon.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configDir)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if !cfg.Server.IsValidPort() {
			return fmt.Errorf("invalid server port %q", cfg.Server.Port)
		}

		logg, err := logger.New(&cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// Storage is lazy; the database is optional and only sql jobs need it.
		env, err := sourceEnv(cfg, false, true)
		if err != nil {
			return err
		}
		if dbEnv, err := sourceEnv(cfg, true, false); err != nil {
			logg.Warn("Optional database connection failed", zap.Error(err))
		} else {
			env.DB = dbEnv.DB
			logg.Info("Connected to database")
		}
		defer closeDB(env, logg)

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
			BodyLimit:             cfg.Server.BodyLimit(),
		})

		mgr := loader.NewManager(logg)
		mgr.Register(recon.NewFeature(reconConfig(cfg, env), logg))

		// RayID first so every log line can be traced
		app.Use(rayid.New())
		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		if err := mgr.LoadAll(app); err != nil {
			return err
		}

		errCh := make(chan error, 1)
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port), zap.String("jobs", cfg.Jobs.Dir))
			errCh <- app.Listen(cfg.Server.Address())
		}()

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		select {
		case err := <-errCh:
			return fmt.Errorf("server failed: %w", err)
		case <-sig:
		}
		logg.Info("Shutting down server...")
		return app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(serveCmd)
}
