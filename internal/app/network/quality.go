package network

import (
	"context"
	"io"
	"math"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// QualityResult describes a measured network profile. A zero value means the
// network is effectively unusable.
type QualityResult struct {
	BandwidthKbps float64 `json:"bandwidth_kbps"`
	LatencyMs     float64 `json:"latency_ms"`
	JitterMs      float64 `json:"jitter_ms"`
	IsStable      bool    `json:"is_stable"`
}

// TesterConfig configures the probe loop.
type TesterConfig struct {
	ProbeURL        string        `yaml:"probe_url"`
	Samples         int           `yaml:"samples"`
	ProbeTimeout    time.Duration `yaml:"probe_timeout"`
	JitterThreshold time.Duration `yaml:"jitter_threshold"`
}

// Tester estimates bandwidth, latency and jitter from small timed HTTP probes.
type Tester struct {
	config TesterConfig
	client *http.Client
	logger *zap.Logger
}

// NewTester creates a network quality tester. A nil client gets a default one
// scoped to the probe timeout.
func NewTester(config TesterConfig, client *http.Client, logger *zap.Logger) *Tester {
	if config.Samples <= 0 {
		config.Samples = 3
	}
	if config.ProbeTimeout == 0 {
		config.ProbeTimeout = 5 * time.Second
	}
	if config.JitterThreshold == 0 {
		config.JitterThreshold = 100 * time.Millisecond
	}
	if client == nil {
		client = &http.Client{Timeout: config.ProbeTimeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tester{config: config, client: client, logger: logger}
}

// TestQuality issues N small timed fetches and aggregates the timings.
// Soft-fail contract: total network failure yields the zero result, never an
// error, so callers can detect an offline state without exception handling.
func (t *Tester) TestQuality(ctx context.Context) QualityResult {
	rtts := make([]time.Duration, 0, t.config.Samples)
	var totalBytes int64
	var totalElapsed time.Duration

	for i := 0; i < t.config.Samples; i++ {
		n, rtt, err := t.probe(ctx)
		if err != nil {
			t.logger.Debug("network probe failed",
				zap.Int("sample", i),
				zap.Error(err))
			return QualityResult{}
		}
		rtts = append(rtts, rtt)
		totalBytes += n
		totalElapsed += rtt
	}

	latency := mean(rtts)
	jitter := meanAbsDeviation(rtts, latency)

	var bandwidthKbps float64
	if totalElapsed > 0 {
		bits := float64(totalBytes) * 8
		bandwidthKbps = bits / totalElapsed.Seconds() / 1000
	}

	return QualityResult{
		BandwidthKbps: bandwidthKbps,
		LatencyMs:     float64(latency.Microseconds()) / 1000,
		JitterMs:      float64(jitter.Microseconds()) / 1000,
		IsStable:      jitter <= t.config.JitterThreshold,
	}
}

func (t *Tester) probe(ctx context.Context) (int64, time.Duration, error) {
	probeCtx, cancel := context.WithTimeout(ctx, t.config.ProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, t.config.ProbeURL, nil)
	if err != nil {
		return 0, 0, err
	}
	req.Header.Set("Cache-Control", "no-cache")

	start := time.Now()
	resp, err := t.client.Do(req)
	if err != nil {
		return 0, 0, err
	}
	defer resp.Body.Close()

	n, err := io.Copy(io.Discard, resp.Body)
	if err != nil {
		return 0, 0, err
	}
	return n, time.Since(start), nil
}

func mean(values []time.Duration) time.Duration {
	if len(values) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range values {
		sum += v
	}
	return sum / time.Duration(len(values))
}

func meanAbsDeviation(values []time.Duration, avg time.Duration) time.Duration {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += math.Abs(float64(v - avg))
	}
	return time.Duration(sum / float64(len(values)))
}
