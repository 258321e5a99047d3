package main

import (
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/bazaar/internal/config"
	"github.com/example/bazaar/internal/routes"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg := config.Load()

		rt, err := newRuntime(ctx, cfg)
		if err != nil {
			return err
		}
		defer rt.Close()

		svc, err := rt.services()
		if err != nil {
			return err
		}

		app := routes.NewApp(cfg.JWTSecret, svc, true)

		errCh := make(chan error, 1)
		go func() {
			log.Printf("Starting server on :%s", cfg.AppPort)
			errCh <- app.Listen(":" + cfg.AppPort)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		log.Printf("Shutting down server")
		return app.ShutdownWithTimeout(10 * time.Second)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.RunE = serveCmd.RunE
}
