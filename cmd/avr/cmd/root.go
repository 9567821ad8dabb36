package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"adaptive-voice/cmd/avr/cmd/probe"
	"adaptive-voice/cmd/avr/cmd/serve"
	"adaptive-voice/cmd/avr/cmd/transcribe"
	"adaptive-voice/cmd/avr/cmd/version"
)

var Verbose bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "avr",
	Short: "Adaptive voice recognition runtime",
	Long: `Adaptive voice recognition runtime.
- Serves a session-based recognition API that routes each client to the
  best speech-to-text engine for its capabilities and network quality
- Falls back between native, cloud and offline engines with retry
- Caches transcripts and tracks recognition accuracy per session`,
	TraverseChildren: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serve.Cmd)
	rootCmd.AddCommand(transcribe.Cmd)
	rootCmd.AddCommand(probe.Cmd)
	rootCmd.AddCommand(version.Cmd)

	rootCmd.PersistentFlags().BoolVarP(&Verbose, "verbose", "V", false, "verbose output")
}
