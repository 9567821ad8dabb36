package audio

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDetectVoiceActivity_SpeechToneVsSilence(t *testing.T) {
	e := NewEnhancer(EnhancerConfig{VADThreshold: 0.01}, nil, nil)

	speech := sine(1000, 16000, 1024, 0.5) // inside the speech band
	silence := make([]float64, 1024)

	withVoice := e.DetectVoiceActivity(speech, 0)
	assert.True(t, withVoice.HasVoice)
	assert.Greater(t, withVoice.Confidence, 0.0)
	assert.LessOrEqual(t, withVoice.Confidence, 1.0)
	assert.Greater(t, withVoice.Volume, 0.0)

	quiet := e.DetectVoiceActivity(silence, 0)
	assert.False(t, quiet.HasVoice)
	assert.Equal(t, 0.0, quiet.Confidence)
	assert.Equal(t, 0.0, quiet.Volume)
}

func TestDetectVoiceActivity_ThresholdOverride(t *testing.T) {
	e := NewEnhancer(EnhancerConfig{VADThreshold: 0.0001}, nil, nil)
	speech := sine(1000, 16000, 1024, 0.05)

	assert.True(t, e.DetectVoiceActivity(speech, 0).HasVoice)
	// An absurdly high override silences the same frame.
	assert.False(t, e.DetectVoiceActivity(speech, 10).HasVoice)
}

func TestDetectVoiceActivity_ConfidenceScalesWithMargin(t *testing.T) {
	e := NewEnhancer(EnhancerConfig{VADThreshold: 0.005}, nil, nil)

	faint := e.DetectVoiceActivity(sine(1000, 16000, 1024, 0.05), 0)
	loud := e.DetectVoiceActivity(sine(1000, 16000, 1024, 0.9), 0)

	assert.True(t, faint.HasVoice)
	assert.True(t, loud.HasVoice)
	assert.Greater(t, loud.Confidence, faint.Confidence)
}

func TestVolume_BoundedToUnitRange(t *testing.T) {
	e := NewEnhancer(EnhancerConfig{}, nil, nil)

	assert.Equal(t, 0.0, e.Volume(nil))
	assert.Equal(t, 0.0, e.Volume(make([]float64, 100)))

	blown := make([]float64, 100)
	for i := range blown {
		blown[i] = 4.0
	}
	assert.Equal(t, 1.0, e.Volume(blown))

	normal := e.Volume(sine(440, 16000, 1024, 0.5))
	assert.Greater(t, normal, 0.0)
	assert.Less(t, normal, 1.0)
}

func TestEnhance_AppliesPreprocessorWhenPresent(t *testing.T) {
	pre := NewPreprocessor(PreprocessConfig{
		NoiseGate:      true,
		NoiseGateLevel: 0.1,
		NoiseGateRatio: 0,
	}, nil)
	e := NewEnhancer(EnhancerConfig{}, pre, nil)

	out := e.Enhance([]float64{0.01, 0.5})
	assert.Equal(t, 0.0, out[0], "quiet sample gated to zero")
	assert.Equal(t, 0.5, out[1])

	bare := NewEnhancer(EnhancerConfig{}, nil, nil)
	in := []float64{0.01, 0.5}
	assert.Equal(t, in, bare.Enhance(in))
}

func TestMonitorVolume_StopReleasesTicker(t *testing.T) {
	e := NewEnhancer(EnhancerConfig{MonitorInterval: 5 * time.Millisecond}, nil, nil)

	var ticks atomic.Int32
	source := func() []float64 { return sine(440, 16000, 64, 0.5) }

	monitor := e.MonitorVolume(source, func(v float64) {
		assert.Greater(t, v, 0.0)
		ticks.Add(1)
	})

	assert.Eventually(t, func() bool { return ticks.Load() >= 2 },
		time.Second, time.Millisecond)

	monitor.Stop()
	monitor.Stop() // stop is safe to call twice

	settled := ticks.Load()
	time.Sleep(50 * time.Millisecond)
	assert.LessOrEqual(t, ticks.Load(), settled+1, "no further ticks after stop")
}

func TestMonitorVoiceActivity_ReportsResults(t *testing.T) {
	e := NewEnhancer(EnhancerConfig{
		VADThreshold:    0.001,
		MonitorInterval: 5 * time.Millisecond,
	}, nil, nil)

	var sawVoice atomic.Bool
	monitor := e.MonitorVoiceActivity(
		func() []float64 { return sine(1000, 16000, 512, 0.5) },
		func(r VADResult) {
			if r.HasVoice {
				sawVoice.Store(true)
			}
		})
	defer monitor.Stop()

	assert.Eventually(t, sawVoice.Load, time.Second, time.Millisecond)
}
