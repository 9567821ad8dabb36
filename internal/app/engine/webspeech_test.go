package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adaptive-voice/internal/app/apperrors"
	"adaptive-voice/internal/app/audio"
	"adaptive-voice/internal/app/capability"
)

// recognizerFunc adapts a function to the NativeRecognizer delegate.
type recognizerFunc func(ctx context.Context, clip *audio.Clip) (*Transcript, error)

func (f recognizerFunc) Recognize(ctx context.Context, clip *audio.Clip) (*Transcript, error) {
	return f(ctx, clip)
}

func chromeCaps() capability.BrowserInfo {
	return capability.BrowserInfo{Engine: capability.EngineChrome, WebSpeechSupported: true}
}

func TestWebSpeech_SupportGating(t *testing.T) {
	tests := []struct {
		name      string
		caps      capability.BrowserInfo
		supported bool
	}{
		{"chrome with api", chromeCaps(), true},
		{"edge with api", capability.BrowserInfo{Engine: capability.EngineEdge, WebSpeechSupported: true}, true},
		{"firefox forced to fallback", capability.BrowserInfo{Engine: capability.EngineFirefox, WebSpeechSupported: true}, false},
		{"safari forced to fallback", capability.BrowserInfo{Engine: capability.EngineSafari, WebSpeechSupported: true}, false},
		{"chrome without api flag", capability.BrowserInfo{Engine: capability.EngineChrome}, false},
		{"unknown engine", capability.BrowserInfo{Engine: capability.EngineUnknown, WebSpeechSupported: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWebSpeech(tt.caps, nil, nil)
			assert.Equal(t, tt.supported, w.IsSupported())
		})
	}
}

func TestWebSpeech_InitializeFailsWhenUnsupported(t *testing.T) {
	w := NewWebSpeech(capability.BrowserInfo{Engine: capability.EngineSafari}, nil, nil)

	err := w.Initialize(context.Background())
	assert.True(t, errors.Is(err, apperrors.ErrEngineInit))
}

func TestWebSpeech_InitializeRequiresRecognizer(t *testing.T) {
	w := NewWebSpeech(chromeCaps(), nil, nil)
	assert.Error(t, w.Initialize(context.Background()))
}

func TestWebSpeech_TranscribeDelegates(t *testing.T) {
	recognizer := recognizerFunc(func(ctx context.Context, clip *audio.Clip) (*Transcript, error) {
		return &Transcript{Text: "Hello world", Confidence: 0.95}, nil
	})

	w := NewWebSpeech(chromeCaps(), recognizer, nil)
	require.NoError(t, w.Initialize(context.Background()))

	transcript, err := w.Transcribe(context.Background(), testClip())
	require.NoError(t, err)
	assert.Equal(t, "Hello world", transcript.Text)
	assert.Equal(t, 0.95, transcript.Confidence)
}

func TestWebSpeech_EmptyResultIsNoSpeech(t *testing.T) {
	recognizer := recognizerFunc(func(ctx context.Context, clip *audio.Clip) (*Transcript, error) {
		return &Transcript{}, nil
	})

	w := NewWebSpeech(chromeCaps(), recognizer, nil)
	require.NoError(t, w.Initialize(context.Background()))

	_, err := w.Transcribe(context.Background(), testClip())
	assert.True(t, errors.Is(err, apperrors.ErrNoSpeech))
}

func TestWebSpeech_TranscribeBeforeInitialize(t *testing.T) {
	w := NewWebSpeech(chromeCaps(), recognizerFunc(func(ctx context.Context, clip *audio.Clip) (*Transcript, error) {
		return &Transcript{Text: "x"}, nil
	}), nil)

	_, err := w.Transcribe(context.Background(), testClip())
	assert.True(t, errors.Is(err, apperrors.ErrEngineInit))
}

func TestOffline_SupportGating(t *testing.T) {
	supported := NewOffline(capability.BrowserInfo{WASMSupported: true, IsSecureContext: true}, nil)
	assert.True(t, supported.IsSupported())

	assert.False(t, NewOffline(capability.BrowserInfo{WASMSupported: true}, nil).IsSupported())
	assert.False(t, NewOffline(capability.BrowserInfo{IsSecureContext: true}, nil).IsSupported())
}

func TestOffline_PlaceholderTranscript(t *testing.T) {
	o := NewOffline(capability.BrowserInfo{WASMSupported: true, IsSecureContext: true}, nil)
	require.NoError(t, o.Initialize(context.Background()))

	transcript, err := o.Transcribe(context.Background(), testClip())
	require.NoError(t, err)
	assert.Equal(t, offlinePlaceholderTranscript, transcript.Text)
}

func TestRegistry_RegisterAndLookup(t *testing.T) {
	r := NewRegistry()

	cloud := NewCloud(CloudConfig{Endpoint: "http://example.test"}, nil, nil)
	require.NoError(t, r.Register(cloud))
	assert.Error(t, r.Register(cloud), "duplicate registration rejected")
	assert.Error(t, r.Register(nil))

	got, ok := r.Get(TypeCloud)
	require.True(t, ok)
	assert.Equal(t, cloud, got)

	_, ok = r.Get(TypeWebSpeech)
	assert.False(t, ok)
}

func TestRegistry_SupportedInPriorityOrder(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(NewCloud(CloudConfig{Endpoint: "http://example.test"}, nil, nil)))
	require.NoError(t, r.Register(NewWebSpeech(chromeCaps(), nil, nil)))
	require.NoError(t, r.Register(NewOffline(capability.BrowserInfo{}, nil))) // unsupported

	assert.Equal(t, []Type{TypeWebSpeech, TypeCloud, TypeOffline}, r.List())
	assert.Equal(t, []Type{TypeWebSpeech, TypeCloud}, r.Supported())
}
