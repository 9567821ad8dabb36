package probe

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"adaptive-voice/internal/app/config"
	"adaptive-voice/internal/app/network"
)

var (
	probeURL   string
	samples    int
	configPath string
)

func init() {
	Cmd.Flags().StringVarP(&probeURL, "url", "u", "", "probe URL (defaults to the configured one)")
	Cmd.Flags().IntVarP(&samples, "samples", "n", 0, "number of probe samples")
	Cmd.Flags().StringVarP(&configPath, "config", "c", "", "config file path")
}

// Cmd represents the probe command
var Cmd = &cobra.Command{
	Use:   "probe",
	Short: "Measure network quality against the probe endpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		testerConfig := cfg.Network
		if probeURL != "" {
			testerConfig.ProbeURL = probeURL
		}
		if samples > 0 {
			testerConfig.Samples = samples
		}

		tester := network.NewTester(testerConfig, nil, zap.NewNop())
		quality := tester.TestQuality(cmd.Context())

		if quality == (network.QualityResult{}) {
			fmt.Println("network unreachable")
			return nil
		}

		fmt.Printf("bandwidth: %.1f kbps\n", quality.BandwidthKbps)
		fmt.Printf("latency:   %.1f ms\n", quality.LatencyMs)
		fmt.Printf("jitter:    %.1f ms\n", quality.JitterMs)
		fmt.Printf("stable:    %t\n", quality.IsStable)
		return nil
	},
}
