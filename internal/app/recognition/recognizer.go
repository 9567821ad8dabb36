package recognition

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"adaptive-voice/internal/app/accuracy"
	"adaptive-voice/internal/app/apperrors"
	"adaptive-voice/internal/app/audio"
	"adaptive-voice/internal/app/cache"
	"adaptive-voice/internal/app/capability"
	"adaptive-voice/internal/app/engine"
	"adaptive-voice/internal/app/fingerprint"
	"adaptive-voice/internal/app/metrics"
	"adaptive-voice/internal/app/network"
	"adaptive-voice/internal/app/retry"
)

// State is the orchestrator lifecycle phase.
type State string

const (
	StateIdle         State = "idle"
	StateInitializing State = "initializing"
	StateReady        State = "ready"
	StateTranscribing State = "transcribing"
	StateSwitching    State = "switching"
	StateError        State = "error"
)

// Strategy is a recommendation the UI can act on. Unlike SelectBestEngine it
// never errors; an unusable environment reads as Disabled.
type Strategy string

const (
	StrategyWebSpeech Strategy = "webspeech"
	StrategyCloud     Strategy = "cloud"
	StrategyOffline   Strategy = "offline"
	StrategyDisabled  Strategy = "disabled"
)

// Result is one completed recognition.
type Result struct {
	Text       string      `json:"text"`
	Confidence float64     `json:"confidence,omitempty"`
	EngineType engine.Type `json:"engine_type"`
	LatencyMs  int64       `json:"latency_ms"`
	Timestamp  time.Time   `json:"timestamp"`
	Cached     bool        `json:"cached"`
}

// PerformanceReport is a read-only projection of runtime state for the UI.
type PerformanceReport struct {
	State            State             `json:"state"`
	CurrentEngine    engine.Type       `json:"current_engine"`
	AvailableEngines []engine.Type     `json:"available_engines"`
	Accuracy         accuracy.Accuracy `json:"accuracy"`
	CacheStats       cache.Stats       `json:"cache_stats"`
	Options          Options           `json:"options"`
}

// Config assembles a session runtime.
type Config struct {
	Environment capability.Environment
	Options     Options
	Cloud       engine.CloudConfig
	Network     network.TesterConfig

	// Native is the delegate for the client's built-in recognizer; nil
	// when the client did not attach one.
	Native engine.NativeRecognizer

	CacheSize int
	CacheTTL  time.Duration
}

// Recognizer is the adaptive voice-recognition orchestrator: it detects
// capabilities once, owns the three engines, and routes transcriptions
// through cache, retry and failover.
type Recognizer struct {
	mu    sync.Mutex
	state State

	opts     Options
	env      capability.Environment
	caps     capability.BrowserInfo
	detected bool

	registry    *engine.Registry
	initialized map[engine.Type]bool
	current     engine.Type

	cache     *cache.LRU
	tracker   *accuracy.Tracker
	netTester *network.Tester
	enhancer  *audio.Enhancer
	metrics   *metrics.Metrics
	logger    *zap.Logger

	config Config
}

// New creates an uninitialized runtime for one session.
func New(config Config, m *metrics.Metrics, logger *zap.Logger) (*Recognizer, error) {
	if config.Options == (Options{}) {
		config.Options = DefaultOptions()
	}
	if err := config.Options.Validate(); err != nil {
		return nil, err
	}
	if config.CacheSize == 0 {
		config.CacheSize = 50
	}
	if config.CacheTTL == 0 {
		config.CacheTTL = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if m == nil {
		m = metrics.New()
	}

	return &Recognizer{
		state:       StateIdle,
		opts:        config.Options,
		env:         config.Environment,
		registry:    engine.NewRegistry(),
		initialized: make(map[engine.Type]bool),
		cache:       cache.NewLRU(config.CacheSize, config.CacheTTL),
		tracker:     accuracy.NewTracker(),
		netTester:   network.NewTester(config.Network, &http.Client{}, logger),
		enhancer:    audio.NewEnhancer(audio.EnhancerConfig{}, audio.NewPreprocessor(audio.PreprocessConfig{}, logger), logger),
		metrics:     m,
		logger:      logger,
		config:      config,
	}, nil
}

// Initialize detects capabilities, constructs the three engines and
// initializes every one that reports support. At least one engine must come
// up or the runtime is unusable.
func (r *Recognizer) Initialize(ctx context.Context) error {
	r.mu.Lock()
	r.state = StateInitializing
	if !r.detected {
		r.caps = capability.Detect(r.env)
		r.detected = true
	}
	caps := r.caps
	r.mu.Unlock()

	engines := []engine.Engine{
		engine.NewWebSpeech(caps, r.config.Native, r.logger),
		engine.NewCloud(r.config.Cloud, nil, r.logger),
		engine.NewOffline(caps, r.logger),
	}

	for _, e := range engines {
		if err := r.registry.Register(e); err != nil {
			r.setState(StateError)
			return err
		}
		if !e.IsSupported() {
			r.logger.Debug("engine unsupported in this environment", zap.String("engine", string(e.Type())))
			continue
		}
		if err := e.Initialize(ctx); err != nil {
			r.logger.Warn("engine failed to initialize",
				zap.String("engine", string(e.Type())),
				zap.Error(err))
			continue
		}
		r.mu.Lock()
		r.initialized[e.Type()] = true
		r.mu.Unlock()
	}

	r.mu.Lock()
	usable := len(r.initialized) > 0
	r.mu.Unlock()

	if !usable {
		r.setState(StateError)
		return apperrors.New(apperrors.CodeUnsupportedCapability,
			"no recognition engine is usable in this environment")
	}

	if t, err := r.SelectBestEngine(ctx); err == nil {
		r.mu.Lock()
		r.current = t
		r.mu.Unlock()
	}

	r.setState(StateReady)
	return nil
}

// SelectBestEngine picks an engine by priority: the native recognizer when
// usable and not overridden, then cloud when the measured network quality
// passes the threshold, then the offline fallback.
func (r *Recognizer) SelectBestEngine(ctx context.Context) (engine.Type, error) {
	r.mu.Lock()
	opts := r.opts
	r.mu.Unlock()

	if r.available(engine.TypeWebSpeech) && !opts.PreferCloudSTT {
		return engine.TypeWebSpeech, nil
	}

	if r.available(engine.TypeCloud) && r.networkAcceptable(ctx, opts) {
		return engine.TypeCloud, nil
	}

	if r.available(engine.TypeOffline) && opts.EnableOfflineFallback {
		return engine.TypeOffline, nil
	}

	return "", apperrors.New(apperrors.CodeUnsupportedCapability,
		"no recognition engine is usable in this environment")
}

// RecommendStrategy is the soft form of SelectBestEngine for the UI: it maps
// an unusable environment to StrategyDisabled instead of an error.
func (r *Recognizer) RecommendStrategy(ctx context.Context) Strategy {
	t, err := r.SelectBestEngine(ctx)
	if err != nil {
		return StrategyDisabled
	}
	return Strategy(t)
}

// SwitchEngine is the explicit manual override.
func (r *Recognizer) SwitchEngine(t engine.Type) error {
	e, ok := r.registry.Get(t)
	if !ok {
		return apperrors.Newf(apperrors.CodeUnknownEngine, "engine %q is not registered", t)
	}
	if !e.IsSupported() || !r.available(t) {
		return apperrors.Newf(apperrors.CodeUnknownEngine, "engine %q is not usable in this environment", t)
	}

	r.mu.Lock()
	r.state = StateSwitching
	r.current = t
	r.state = StateReady
	r.mu.Unlock()

	r.metrics.RecordEngineSwitch(string(t), "manual")
	r.logger.Info("engine switched", zap.String("engine", string(t)))
	return nil
}

// CurrentEngine returns the engine transcriptions currently route to.
func (r *Recognizer) CurrentEngine() engine.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Transcribe recognizes one clip: cache lookup, then the current engine under
// the retry policy, then one automatic failover to the next-priority engine.
// The wall-clock budget spans retries and the switch. An empty fp derives the
// fingerprint from the clip bytes.
func (r *Recognizer) Transcribe(ctx context.Context, clip *audio.Clip, fp string) (*Result, error) {
	r.mu.Lock()
	if r.state == StateIdle || r.state == StateInitializing {
		r.mu.Unlock()
		return nil, apperrors.New(apperrors.CodeEngineInit, "runtime not initialized")
	}
	r.state = StateTranscribing
	opts := r.opts
	current := r.current
	r.mu.Unlock()

	if clip == nil || len(clip.Data) == 0 {
		r.setState(StateReady)
		return nil, apperrors.New(apperrors.CodeNoSpeech, "empty audio clip")
	}

	// Uncompressed clips get a VAD gate before any engine spends a network
	// round trip on silence.
	if audio.IsPCMMIME(clip.MIME) {
		if vad := r.enhancer.DetectVoiceActivity(audio.DecodePCM16(clip.Data), 0); !vad.HasVoice {
			r.setState(StateReady)
			return nil, apperrors.New(apperrors.CodeNoSpeech, "no voice activity detected in clip")
		}
	}

	if fp == "" {
		fp = fingerprint.FromBytes(clip.Data)
	}

	start := time.Now()

	if entry, ok := r.cache.Get(fp); ok {
		r.metrics.RecordCacheHit()
		r.setState(StateReady)
		return &Result{
			Text:       entry.Transcript,
			Confidence: entry.Confidence,
			EngineType: current,
			LatencyMs:  time.Since(start).Milliseconds(),
			Timestamp:  time.Now(),
			Cached:     true,
		}, nil
	}
	r.metrics.RecordCacheMiss()

	strategy := retry.Strategy{
		MaxRetries:        opts.MaxRetries,
		RetryDelay:        opts.RetryDelay,
		BackoffMultiplier: 2,
		RetryablePatterns: retry.DefaultStrategy().RetryablePatterns,
	}

	transcript, used, err := r.transcribeWithFailover(ctx, current, clip, strategy)
	latency := time.Since(start)

	if err != nil {
		r.metrics.RecordRecognition(string(current), false, latency.Seconds())
		r.setState(StateError)
		return nil, err
	}

	r.cache.Set(fp, cache.Entry{
		Transcript: transcript.Text,
		Confidence: transcript.Confidence,
	})
	r.tracker.RecordRecognition()
	r.metrics.RecordRecognition(string(used), true, latency.Seconds())

	if latency > opts.LatencyThreshold {
		r.logger.Warn("recognition exceeded latency threshold",
			zap.Duration("latency", latency),
			zap.String("engine", string(used)))
	}

	r.setState(StateReady)
	return &Result{
		Text:       transcript.Text,
		Confidence: transcript.Confidence,
		EngineType: used,
		LatencyMs:  latency.Milliseconds(),
		Timestamp:  time.Now(),
	}, nil
}

// transcribeWithFailover runs the current engine under the retry policy and,
// if it exhausts its attempts, tries the next-priority usable engine exactly
// once before giving up.
func (r *Recognizer) transcribeWithFailover(ctx context.Context, current engine.Type, clip *audio.Clip, strategy retry.Strategy) (*engine.Transcript, engine.Type, error) {
	e, ok := r.registry.Get(current)
	if !ok {
		return nil, current, apperrors.Newf(apperrors.CodeUnknownEngine, "engine %q is not registered", current)
	}

	deadline := time.Now().Add(60 * time.Second)
	strategy.Timeout = time.Until(deadline)

	result := retry.Do(ctx, strategy, func(ctx context.Context) (*engine.Transcript, error) {
		return e.Transcribe(ctx, clip)
	})
	if result.Success {
		return result.Data, current, nil
	}
	if !retry.Retryable(result.Err, strategy.RetryablePatterns) {
		// Non-retryable errors surface immediately; switching engines
		// would not fix a permission denial.
		return nil, current, result.Err
	}

	fallbacks := lo.Filter(r.registry.Supported(), func(t engine.Type, _ int) bool {
		return t != current && r.available(t)
	})
	if len(fallbacks) == 0 {
		return nil, current, result.Err
	}

	next := fallbacks[0]
	fallback, _ := r.registry.Get(next)

	r.mu.Lock()
	r.state = StateSwitching
	r.current = next
	r.mu.Unlock()
	r.metrics.RecordEngineSwitch(string(next), "failover")
	r.logger.Info("failing over to next engine",
		zap.String("from", string(current)),
		zap.String("to", string(next)),
		zap.Error(result.Err))

	// One attempt on the fallback, inside whatever budget remains.
	remaining := time.Until(deadline)
	if remaining <= 0 {
		return nil, next, apperrors.Wrap(result.Err, apperrors.CodeTimeout, "recognition budget exhausted before failover")
	}
	once := retry.Strategy{
		MaxRetries:        0,
		RetryDelay:        strategy.RetryDelay,
		RetryablePatterns: strategy.RetryablePatterns,
		Timeout:           remaining,
	}
	retryResult := retry.Do(ctx, once, func(ctx context.Context) (*engine.Transcript, error) {
		return fallback.Transcribe(ctx, clip)
	})
	if retryResult.Success {
		return retryResult.Data, next, nil
	}
	return nil, next, retryResult.Err
}

// AddFeedback records a user verdict against the session's accuracy tracker.
func (r *Recognizer) AddFeedback(fb accuracy.Feedback) {
	r.tracker.AddFeedback(fb)
}

// GetPerformanceReport projects current runtime state. The report itself is
// never mutated.
func (r *Recognizer) GetPerformanceReport() PerformanceReport {
	r.mu.Lock()
	state := r.state
	current := r.current
	opts := r.opts
	r.mu.Unlock()

	return PerformanceReport{
		State:            state,
		CurrentEngine:    current,
		AvailableEngines: r.availableEngines(),
		Accuracy:         r.tracker.GetAccuracy(),
		CacheStats:       r.cache.GetStats(),
		Options:          opts,
	}
}

// UpdateOptions applies a partial update; invalid patches leave the current
// options untouched.
func (r *Recognizer) UpdateOptions(patch OptionsPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next, err := patch.apply(r.opts)
	if err != nil {
		return err
	}
	r.opts = next
	return nil
}

// Capabilities returns the cached capability snapshot, detecting on first use.
func (r *Recognizer) Capabilities() capability.BrowserInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.detected {
		r.caps = capability.Detect(r.env)
		r.detected = true
	}
	return r.caps
}

// Cache exposes the transcript cache (the web layer sweeps it periodically).
func (r *Recognizer) Cache() *cache.LRU { return r.cache }

// Cleanup releases every engine and clears in-memory state.
func (r *Recognizer) Cleanup() {
	for _, t := range r.registry.List() {
		if e, ok := r.registry.Get(t); ok {
			if err := e.Cleanup(); err != nil {
				r.logger.Warn("engine cleanup failed", zap.String("engine", string(t)), zap.Error(err))
			}
		}
	}

	r.cache.Clear()
	r.tracker.Reset()

	r.mu.Lock()
	r.initialized = make(map[engine.Type]bool)
	r.current = ""
	r.state = StateIdle
	r.mu.Unlock()
}

func (r *Recognizer) setState(s State) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
}

// available reports whether an engine is registered, supported and initialized.
func (r *Recognizer) available(t engine.Type) bool {
	e, ok := r.registry.Get(t)
	if !ok || !e.IsSupported() {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.initialized[t]
}

func (r *Recognizer) availableEngines() []engine.Type {
	return lo.Filter(r.registry.Supported(), func(t engine.Type, _ int) bool {
		return r.available(t)
	})
}

func (r *Recognizer) networkAcceptable(ctx context.Context, opts Options) bool {
	quality := r.netTester.TestQuality(ctx)
	if !quality.IsStable || quality.BandwidthKbps == 0 {
		return false
	}
	return quality.LatencyMs <= float64(opts.NetworkQualityThreshold.Milliseconds())
}
