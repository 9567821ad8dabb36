package audio

import (
	"math"
	"sync"

	"go.uber.org/zap"
)

// PreprocessConfig selects which cleanup stages run on a sample frame.
type PreprocessConfig struct {
	HighPass       bool    `yaml:"high_pass"`
	HighPassCutoff float64 `yaml:"high_pass_cutoff"` // Hz, default 80
	NoiseGate      bool    `yaml:"noise_gate"`
	NoiseGateLevel float64 `yaml:"noise_gate_level"` // amplitude threshold in [0,1]
	NoiseGateRatio float64 `yaml:"noise_gate_ratio"` // attenuation below the gate, default 0.1
	Normalization  bool    `yaml:"normalization"`
	SampleRate     int     `yaml:"sample_rate"`
}

// PreprocessResult carries the cleaned samples plus the config that produced them.
type PreprocessResult struct {
	Samples []float64
	Config  PreprocessConfig
	Success bool
	Err     error
}

// PreprocessorStatus reports the live node count for diagnostics.
type PreprocessorStatus struct {
	IsActive  bool `json:"is_active"`
	NodeCount int  `json:"node_count"`
}

// Preprocessor builds a per-call stage chain over raw sample frames: an
// optional high-pass filter to remove rumble and an optional noise gate
// modeled as a downward compressor. Normalization is a documented placeholder
// that only logs a warning.
type Preprocessor struct {
	mu        sync.Mutex
	config    PreprocessConfig
	logger    *zap.Logger
	nodeCount int
	destroyed bool
}

// NewPreprocessor creates a preprocessor. Defaults: 80 Hz cutoff, 16 kHz
// sample rate, 10:1 gate attenuation.
func NewPreprocessor(config PreprocessConfig, logger *zap.Logger) *Preprocessor {
	if config.HighPassCutoff == 0 {
		config.HighPassCutoff = 80
	}
	if config.SampleRate == 0 {
		config.SampleRate = DefaultPCMProfile.SampleRate
	}
	if config.NoiseGateRatio == 0 {
		config.NoiseGateRatio = 0.1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Preprocessor{config: config, logger: logger}
}

// Process runs the enabled stages over the frame. With every stage disabled
// the input passes through unmodified.
func (p *Preprocessor) Process(samples []float64) PreprocessResult {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.destroyed {
		p.nodeCount = 0
	}

	out := samples
	nodes := 0

	if p.config.HighPass {
		out = highPass(out, p.config.HighPassCutoff, p.config.SampleRate)
		nodes++
	}
	if p.config.NoiseGate {
		out = noiseGate(out, p.config.NoiseGateLevel, p.config.NoiseGateRatio)
		nodes++
	}
	if p.config.Normalization {
		// Normalization is not implemented yet; kept as a no-op so enabling
		// it in config is harmless.
		p.logger.Warn("normalization requested but not implemented, passing through")
	}

	p.nodeCount = nodes
	p.destroyed = false

	return PreprocessResult{Samples: out, Config: p.config, Success: true}
}

// Status reports whether any stage is wired and how many nodes the last
// Process call built.
func (p *Preprocessor) Status() PreprocessorStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return PreprocessorStatus{
		IsActive:  !p.destroyed && p.nodeCount > 0,
		NodeCount: p.nodeCount,
	}
}

// Destroy tears down the stage chain. Idempotent.
func (p *Preprocessor) Destroy() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nodeCount = 0
	p.destroyed = true
}

// highPass applies a one-pole high-pass filter at the given cutoff. Removes
// low-frequency rumble below speech range.
func highPass(samples []float64, cutoffHz float64, sampleRate int) []float64 {
	if len(samples) == 0 {
		return samples
	}
	rc := 1.0 / (2 * math.Pi * cutoffHz)
	dt := 1.0 / float64(sampleRate)
	alpha := rc / (rc + dt)

	out := make([]float64, len(samples))
	out[0] = samples[0]
	for i := 1; i < len(samples); i++ {
		out[i] = alpha * (out[i-1] + samples[i] - samples[i-1])
	}
	return out
}

// noiseGate attenuates samples whose magnitude falls below the threshold,
// behaving like a hard-knee downward compressor.
func noiseGate(samples []float64, threshold, ratio float64) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		if math.Abs(s) < threshold {
			out[i] = s * ratio
		} else {
			out[i] = s
		}
	}
	return out
}
