package dto

import (
	"time"

	"adaptive-voice/internal/app/accuracy"
	"adaptive-voice/internal/app/capability"
	"adaptive-voice/internal/app/network"
	"adaptive-voice/internal/app/recognition"
)

// CreateSessionRequest carries the client's capability snapshot and optional
// option overrides.
type CreateSessionRequest struct {
	Environment capability.Environment    `json:"environment" binding:"required"`
	Options     *recognition.OptionsPatch `json:"options,omitempty"`
}

// SessionResponse describes a newly created or queried session.
type SessionResponse struct {
	SessionID           string                 `json:"session_id"`
	Capabilities        capability.BrowserInfo `json:"capabilities"`
	RecommendedStrategy recognition.Strategy   `json:"recommended_strategy"`
	CreatedAt           time.Time              `json:"created_at"`
}

// TranscribeRequest is the JSON variant of the transcribe endpoint: base64
// audio plus an optional pre-recognized native transcript from the client's
// built-in engine.
type TranscribeRequest struct {
	AudioBase64 string `json:"audio_base64" binding:"required"`
	MIME        string `json:"mime,omitempty"`
	Fingerprint string `json:"fingerprint,omitempty"`

	// NativeText relays a transcript the client's own recognizer already
	// produced, so the runtime can route it through caching, accuracy
	// tracking and failover like any other engine result.
	NativeText       string  `json:"native_text,omitempty"`
	NativeConfidence float64 `json:"native_confidence,omitempty"`
}

// TranscribeResponse wraps a recognition result.
type TranscribeResponse struct {
	SessionID string              `json:"session_id"`
	Result    *recognition.Result `json:"result"`
}

// FeedbackRequest records a user verdict on a transcript.
type FeedbackRequest struct {
	Transcript     string `json:"transcript" binding:"required"`
	UserCorrection string `json:"user_correction,omitempty"`
	WasHelpful     bool   `json:"was_helpful"`
}

// ToFeedback converts the request to the domain type.
func (r FeedbackRequest) ToFeedback() accuracy.Feedback {
	return accuracy.Feedback{
		Transcript:     r.Transcript,
		UserCorrection: r.UserCorrection,
		WasHelpful:     r.WasHelpful,
	}
}

// ReportResponse wraps a performance report.
type ReportResponse struct {
	SessionID string                        `json:"session_id"`
	Report    recognition.PerformanceReport `json:"report"`
}

// SwitchEngineRequest selects an engine by name.
type SwitchEngineRequest struct {
	Engine string `json:"engine" binding:"required"`
}

// ProbeResponse reports the server-measured network quality.
type ProbeResponse struct {
	Quality network.QualityResult `json:"quality"`
}
