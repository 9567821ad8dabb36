package engine

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"adaptive-voice/internal/app/apperrors"
	"adaptive-voice/internal/app/audio"
	"adaptive-voice/internal/app/capability"
)

// NativeRecognizer is the delegate through which the client's built-in
// recognizer performs one utterance. Each call is a one-shot completion;
// there is no shared mutable event state between utterances.
type NativeRecognizer interface {
	Recognize(ctx context.Context, clip *audio.Clip) (*Transcript, error)
}

// acceptedWebSpeechEngines lists the browser engines whose native recognizer
// is trusted. Firefox and Safari report the API but their implementations are
// not usable, so they fall through to the cloud engine.
var acceptedWebSpeechEngines = map[capability.BrowserEngine]bool{
	capability.EngineChrome: true,
	capability.EngineEdge:   true,
}

// WebSpeech wraps the browser's native recognizer.
type WebSpeech struct {
	mu          sync.Mutex
	caps        capability.BrowserInfo
	recognizer  NativeRecognizer
	logger      *zap.Logger
	initialized bool
}

// NewWebSpeech creates the native engine for a session's capability snapshot.
func NewWebSpeech(caps capability.BrowserInfo, recognizer NativeRecognizer, logger *zap.Logger) *WebSpeech {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebSpeech{caps: caps, recognizer: recognizer, logger: logger}
}

func (w *WebSpeech) Type() Type { return TypeWebSpeech }

// IsSupported requires both the reported API flag and an accepted engine family.
func (w *WebSpeech) IsSupported() bool {
	return w.caps.WebSpeechSupported && acceptedWebSpeechEngines[w.caps.Engine]
}

func (w *WebSpeech) Initialize(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.IsSupported() {
		return apperrors.Newf(apperrors.CodeEngineInit,
			"web speech engine unsupported for browser engine %q", w.caps.Engine)
	}
	if w.recognizer == nil {
		return apperrors.New(apperrors.CodeEngineInit, "no native recognizer delegate attached")
	}

	w.initialized = true
	w.logger.Debug("web speech engine initialized",
		zap.String("browser_engine", string(w.caps.Engine)),
		zap.String("browser_version", w.caps.Version))
	return nil
}

func (w *WebSpeech) Transcribe(ctx context.Context, clip *audio.Clip) (*Transcript, error) {
	w.mu.Lock()
	initialized := w.initialized
	recognizer := w.recognizer
	w.mu.Unlock()

	if !initialized {
		return nil, apperrors.New(apperrors.CodeEngineInit, "web speech engine not initialized")
	}

	transcript, err := recognizer.Recognize(ctx, clip)
	if err != nil {
		return nil, err
	}
	if transcript == nil || transcript.Text == "" {
		return nil, apperrors.New(apperrors.CodeNoSpeech, "native recognizer produced no speech")
	}
	return transcript, nil
}

func (w *WebSpeech) Cleanup() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.initialized = false
	return nil
}
