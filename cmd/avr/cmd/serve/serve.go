package serve

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"adaptive-voice/internal/app"
)

var configPath string

func init() {
	Cmd.Flags().StringVarP(&configPath, "config", "c", "",
		"config file path (default $AVR_CONFIG_PATH or ~/.adaptive-voice/config.yaml)")
}

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the recognition API server",
	Long: `Start the recognition API server.

Clients open a session with their capability snapshot, then stream audio
clips for transcription. The runtime picks the best engine per session and
fails over automatically when one degrades.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		srv, err := app.InitializeServer(configPath)
		if err != nil {
			return err
		}

		if err := srv.Start(); err != nil {
			return err
		}

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("shutdown error: %v", err)
			return err
		}
		return nil
	},
}
