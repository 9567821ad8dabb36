package audio

import (
	"math"
	"sync"
	"time"

	"go.uber.org/zap"
)

// VADResult is the outcome of a voice-activity check over one frame.
type VADResult struct {
	HasVoice   bool    `json:"has_voice"`
	Confidence float64 `json:"confidence"`
	Volume     float64 `json:"volume"`
}

// EnhancerConfig tunes voice detection.
type EnhancerConfig struct {
	VADThreshold     float64       `yaml:"vad_threshold"`    // speech-band energy threshold
	SpeechBandLowHz  float64       `yaml:"speech_band_low"`  // default 300
	SpeechBandHighHz float64       `yaml:"speech_band_high"` // default 3400
	SampleRate       int           `yaml:"sample_rate"`
	MonitorInterval  time.Duration `yaml:"monitor_interval"`
}

// Enhancer composes voice activity detection, noise suppression and volume
// detection atop an optional preprocessor.
type Enhancer struct {
	config       EnhancerConfig
	preprocessor *Preprocessor
	logger       *zap.Logger
}

// NewEnhancer creates an enhancer. The preprocessor is optional; when present
// its stages run before any detection.
func NewEnhancer(config EnhancerConfig, preprocessor *Preprocessor, logger *zap.Logger) *Enhancer {
	if config.VADThreshold == 0 {
		config.VADThreshold = 0.01
	}
	if config.SpeechBandLowHz == 0 {
		config.SpeechBandLowHz = 300
	}
	if config.SpeechBandHighHz == 0 {
		config.SpeechBandHighHz = 3400
	}
	if config.SampleRate == 0 {
		config.SampleRate = DefaultPCMProfile.SampleRate
	}
	if config.MonitorInterval == 0 {
		config.MonitorInterval = 100 * time.Millisecond
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Enhancer{config: config, preprocessor: preprocessor, logger: logger}
}

// Enhance runs the configured preprocessor stages over the frame. Without a
// preprocessor the frame passes through untouched.
func (e *Enhancer) Enhance(samples []float64) []float64 {
	if e.preprocessor == nil {
		return samples
	}
	result := e.preprocessor.Process(samples)
	if !result.Success {
		return samples
	}
	return result.Samples
}

// DetectVoiceActivity computes speech-band energy over the frame and compares
// it against the threshold. Confidence scales with the margin above the
// threshold. A non-positive override keeps the configured threshold.
func (e *Enhancer) DetectVoiceActivity(samples []float64, thresholdOverride float64) VADResult {
	threshold := e.config.VADThreshold
	if thresholdOverride > 0 {
		threshold = thresholdOverride
	}

	cleaned := e.Enhance(samples)
	energy := e.speechBandEnergy(cleaned)
	volume := e.Volume(cleaned)

	if energy < threshold {
		return VADResult{HasVoice: false, Confidence: 0, Volume: volume}
	}

	// Margin of 2x threshold or more reads as full confidence.
	confidence := math.Min(1, (energy-threshold)/threshold)
	return VADResult{HasVoice: true, Confidence: confidence, Volume: volume}
}

// Volume returns the RMS level of the frame, clamped to [0,1].
func (e *Enhancer) Volume(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += s * s
	}
	rms := math.Sqrt(sum / float64(len(samples)))
	return math.Min(1, rms)
}

// FrameSource yields the most recent audio frame for polling monitors.
type FrameSource func() []float64

// Monitor is the explicit stop handle returned by the polling monitors. The
// underlying ticker keeps firing until Stop is invoked; nothing is released
// on garbage collection.
type Monitor struct {
	stopOnce sync.Once
	done     chan struct{}
}

// Stop releases the monitor's ticker. Safe to call more than once.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.done) })
}

// MonitorVoiceActivity polls the source at the configured interval and
// reports each VAD result to fn. The returned handle must be stopped.
func (e *Enhancer) MonitorVoiceActivity(source FrameSource, fn func(VADResult)) *Monitor {
	return e.startMonitor(func() {
		fn(e.DetectVoiceActivity(source(), 0))
	})
}

// MonitorVolume polls the source at the configured interval and reports the
// current volume to fn. The returned handle must be stopped.
func (e *Enhancer) MonitorVolume(source FrameSource, fn func(float64)) *Monitor {
	return e.startMonitor(func() {
		fn(e.Volume(source()))
	})
}

func (e *Enhancer) startMonitor(tick func()) *Monitor {
	m := &Monitor{done: make(chan struct{})}
	ticker := time.NewTicker(e.config.MonitorInterval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-m.done:
				return
			case <-ticker.C:
				tick()
			}
		}
	}()

	return m
}

// speechBandEnergy estimates energy inside the speech band using Goertzel
// probes at a handful of frequencies across the band.
func (e *Enhancer) speechBandEnergy(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}

	const probes = 8
	low, high := e.config.SpeechBandLowHz, e.config.SpeechBandHighHz
	step := (high - low) / float64(probes-1)

	var total float64
	for i := 0; i < probes; i++ {
		freq := low + step*float64(i)
		total += goertzel(samples, freq, e.config.SampleRate)
	}
	return total / probes
}

// goertzel returns the normalized magnitude of a single frequency bin.
func goertzel(samples []float64, freqHz float64, sampleRate int) float64 {
	n := len(samples)
	k := 2 * math.Pi * freqHz / float64(sampleRate)
	coeff := 2 * math.Cos(k)

	var s0, s1, s2 float64
	for _, x := range samples {
		s0 = x + coeff*s1 - s2
		s2 = s1
		s1 = s0
	}

	power := s1*s1 + s2*s2 - coeff*s1*s2
	if power < 0 {
		power = 0
	}
	return math.Sqrt(power) / float64(n)
}
