package engine

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"adaptive-voice/internal/app/apperrors"
	"adaptive-voice/internal/app/audio"
	"adaptive-voice/internal/app/capability"
)

// offlinePlaceholderTranscript is what the stub model produces until a real
// local model ships.
const offlinePlaceholderTranscript = "offline transcription unavailable"

// Offline runs a local model inside the client. Supported only when the
// session reports WebAssembly and a secure context, which the model loader
// needs.
//
// The recognizer itself is a stub: Transcribe returns a fixed placeholder.
// TODO: wire the wasm whisper build as the local model backend.
type Offline struct {
	mu          sync.Mutex
	caps        capability.BrowserInfo
	logger      *zap.Logger
	initialized bool
}

// NewOffline creates the offline engine for a session's capability snapshot.
func NewOffline(caps capability.BrowserInfo, logger *zap.Logger) *Offline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Offline{caps: caps, logger: logger}
}

func (o *Offline) Type() Type { return TypeOffline }

func (o *Offline) IsSupported() bool {
	return o.caps.WASMSupported && o.caps.IsSecureContext
}

func (o *Offline) Initialize(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.IsSupported() {
		return apperrors.New(apperrors.CodeEngineInit,
			"offline engine requires webassembly and a secure context")
	}

	o.initialized = true
	o.logger.Debug("offline engine initialized (placeholder model)")
	return nil
}

func (o *Offline) Transcribe(ctx context.Context, clip *audio.Clip) (*Transcript, error) {
	o.mu.Lock()
	initialized := o.initialized
	o.mu.Unlock()

	if !initialized {
		return nil, apperrors.New(apperrors.CodeEngineInit, "offline engine not initialized")
	}

	return &Transcript{Text: offlinePlaceholderTranscript}, nil
}

func (o *Offline) Cleanup() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.initialized = false
	return nil
}
