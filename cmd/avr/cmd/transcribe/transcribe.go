package transcribe

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"adaptive-voice/internal/app/audio"
	"adaptive-voice/internal/app/config"
	"adaptive-voice/internal/app/engine"
	"adaptive-voice/internal/app/fingerprint"
	"adaptive-voice/internal/app/retry"
)

var (
	audioFile  string
	configPath string
)

func init() {
	Cmd.Flags().StringVarP(&audioFile, "file", "f", "", "audio file to transcribe (wav, webm, ogg, mp3)")
	Cmd.Flags().StringVarP(&configPath, "config", "c", "", "config file path")

	Cmd.MarkFlagRequired("file")
}

// Cmd represents the transcribe command
var Cmd = &cobra.Command{
	Use:   "transcribe",
	Short: "Transcribe a local audio file through the cloud engine",
	Long: `Transcribe a local audio file through the configured cloud engine.

One-shot mode for testing credentials and provider configuration without
running the API server. Transient failures retry with backoff.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		data, err := os.ReadFile(audioFile)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", audioFile, err)
		}

		clip := &audio.Clip{
			Data: data,
			MIME: mime.TypeByExtension(filepath.Ext(audioFile)),
		}

		cloud := engine.NewCloud(cfg.Cloud, nil, zap.NewNop())
		if err := cloud.Initialize(cmd.Context()); err != nil {
			return err
		}
		defer cloud.Cleanup()

		result := retry.Do(cmd.Context(), retry.DefaultStrategy(), func(ctx context.Context) (*engine.Transcript, error) {
			return cloud.Transcribe(ctx, clip)
		})
		if !result.Success {
			return result.Err
		}

		fmt.Printf("fingerprint: %s\n", fingerprint.FromBytes(data))
		fmt.Printf("attempts:    %d\n", result.Attempts)
		fmt.Println(result.Data.Text)
		return nil
	},
}
