package recognition

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Options tunes the adaptive runtime. Zero values are filled in by
// DefaultOptions; every mutation path revalidates.
type Options struct {
	PreferCloudSTT        bool `json:"prefer_cloud_stt" yaml:"prefer_cloud_stt"`
	EnableOfflineFallback bool `json:"enable_offline_fallback" yaml:"enable_offline_fallback"`

	// NetworkQualityThreshold is the highest acceptable probe latency for
	// routing to the cloud engine.
	NetworkQualityThreshold time.Duration `json:"network_quality_threshold" yaml:"network_quality_threshold"`

	// LatencyThreshold flags recognitions slower than this in the report.
	LatencyThreshold time.Duration `json:"latency_threshold" yaml:"latency_threshold"`

	// AccuracyThreshold flags sessions whose accuracy falls below it.
	AccuracyThreshold float64 `json:"accuracy_threshold" yaml:"accuracy_threshold" validate:"gte=0,lte=1"`

	MaxRetries int           `json:"max_retries" yaml:"max_retries" validate:"gte=0,lte=10"`
	RetryDelay time.Duration `json:"retry_delay" yaml:"retry_delay" validate:"gte=0"`
}

// DefaultOptions returns the runtime defaults.
func DefaultOptions() Options {
	return Options{
		PreferCloudSTT:          false,
		EnableOfflineFallback:   true,
		NetworkQualityThreshold: 300 * time.Millisecond,
		LatencyThreshold:        3 * time.Second,
		AccuracyThreshold:       0.7,
		MaxRetries:              2,
		RetryDelay:              time.Second,
	}
}

// Validate checks option bounds.
func (o Options) Validate() error {
	if err := validate.Struct(o); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}
	return nil
}

// OptionsPatch is a partial options update; nil fields keep their current value.
type OptionsPatch struct {
	PreferCloudSTT          *bool          `json:"prefer_cloud_stt,omitempty"`
	EnableOfflineFallback   *bool          `json:"enable_offline_fallback,omitempty"`
	NetworkQualityThreshold *time.Duration `json:"network_quality_threshold,omitempty"`
	LatencyThreshold        *time.Duration `json:"latency_threshold,omitempty"`
	AccuracyThreshold       *float64       `json:"accuracy_threshold,omitempty"`
	MaxRetries              *int           `json:"max_retries,omitempty"`
	RetryDelay              *time.Duration `json:"retry_delay,omitempty"`
}

// apply merges the patch over the current options and validates the result.
func (p OptionsPatch) apply(current Options) (Options, error) {
	next := current

	if p.PreferCloudSTT != nil {
		next.PreferCloudSTT = *p.PreferCloudSTT
	}
	if p.EnableOfflineFallback != nil {
		next.EnableOfflineFallback = *p.EnableOfflineFallback
	}
	if p.NetworkQualityThreshold != nil {
		next.NetworkQualityThreshold = *p.NetworkQualityThreshold
	}
	if p.LatencyThreshold != nil {
		next.LatencyThreshold = *p.LatencyThreshold
	}
	if p.AccuracyThreshold != nil {
		next.AccuracyThreshold = *p.AccuracyThreshold
	}
	if p.MaxRetries != nil {
		next.MaxRetries = *p.MaxRetries
	}
	if p.RetryDelay != nil {
		next.RetryDelay = *p.RetryDelay
	}

	if err := next.Validate(); err != nil {
		return current, err
	}
	return next, nil
}
