package engine

import (
	"context"

	"adaptive-voice/internal/app/audio"
)

// Type identifies a recognition engine variant.
type Type string

const (
	TypeWebSpeech Type = "webspeech"
	TypeCloud     Type = "cloud"
	TypeOffline   Type = "offline"
)

// Priority is the failover order the orchestrator walks when the preferred
// engine is exhausted.
var Priority = []Type{TypeWebSpeech, TypeCloud, TypeOffline}

// ParseType validates a wire-level engine name.
func ParseType(s string) (Type, bool) {
	switch Type(s) {
	case TypeWebSpeech, TypeCloud, TypeOffline:
		return Type(s), true
	default:
		return "", false
	}
}

// Transcript is a single recognition outcome. Confidence is 0 when the
// backend does not report one.
type Transcript struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence,omitempty"`
}

// Engine is the shared capability surface over the three incompatible
// speech-to-text backends.
type Engine interface {
	// Type identifies the variant.
	Type() Type

	// IsSupported reports whether this engine can run in the session's
	// environment. Cheap and side-effect free.
	IsSupported() bool

	// Initialize prepares the engine. Fails with an engine_init_failed
	// error when the engine is unsupported.
	Initialize(ctx context.Context) error

	// Transcribe recognizes one audio clip.
	Transcribe(ctx context.Context, clip *audio.Clip) (*Transcript, error)

	// Cleanup releases engine resources.
	Cleanup() error
}
