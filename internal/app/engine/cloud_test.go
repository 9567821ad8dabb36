package engine

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adaptive-voice/internal/app/apperrors"
	"adaptive-voice/internal/app/audio"
)

func testClip() *audio.Clip {
	return &audio.Clip{Data: []byte("fake-audio-bytes"), MIME: "audio/webm"}
}

func TestCloud_TranscribeSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "audio/webm", r.Header.Get("Content-Type"))

		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "fake-audio-bytes", string(body))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"text": "bonjour le monde", "confidence": 0.91}`))
	}))
	defer server.Close()

	c := NewCloud(CloudConfig{Endpoint: server.URL}, nil, nil)
	require.NoError(t, c.Initialize(context.Background()))

	transcript, err := c.Transcribe(context.Background(), testClip())
	require.NoError(t, err)
	assert.Equal(t, "bonjour le monde", transcript.Text)
	assert.Equal(t, 0.91, transcript.Confidence)
}

func TestCloud_NonOKStatusIsRetryableNetworkError(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusInternalServerError, http.StatusBadGateway} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		c := NewCloud(CloudConfig{Endpoint: server.URL}, nil, nil)
		require.NoError(t, c.Initialize(context.Background()))

		_, err := c.Transcribe(context.Background(), testClip())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cloud STT request failed")
		assert.Equal(t, apperrors.CodeNetwork, apperrors.CodeOf(err))
		assert.True(t, apperrors.IsRetryable(err))

		server.Close()
	}
}

func TestCloud_TransportErrorIsRetryable(t *testing.T) {
	c := NewCloud(CloudConfig{Endpoint: "http://127.0.0.1:1"}, nil, nil)
	require.NoError(t, c.Initialize(context.Background()))

	_, err := c.Transcribe(context.Background(), testClip())
	require.Error(t, err)
	assert.True(t, apperrors.IsRetryable(err))
}

func TestCloud_EmptyTextIsNoSpeech(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"text": ""}`))
	}))
	defer server.Close()

	c := NewCloud(CloudConfig{Endpoint: server.URL}, nil, nil)
	require.NoError(t, c.Initialize(context.Background()))

	_, err := c.Transcribe(context.Background(), testClip())
	assert.True(t, errors.Is(err, apperrors.ErrNoSpeech))
}

func TestCloud_EmptyClipRejected(t *testing.T) {
	c := NewCloud(CloudConfig{Endpoint: "http://example.test"}, nil, nil)

	_, err := c.Transcribe(context.Background(), nil)
	assert.True(t, errors.Is(err, apperrors.ErrNoSpeech))

	_, err = c.Transcribe(context.Background(), &audio.Clip{})
	assert.Error(t, err)
}

func TestCloud_InitializeValidatesConfig(t *testing.T) {
	assert.Error(t, NewCloud(CloudConfig{}, nil, nil).Initialize(context.Background()),
		"http provider requires an endpoint")

	assert.Error(t, NewCloud(CloudConfig{Endpoint: "ftp://nope"}, nil, nil).Initialize(context.Background()))

	assert.Error(t, NewCloud(CloudConfig{Provider: CloudProviderOpenAI}, nil, nil).Initialize(context.Background()),
		"openai provider requires an api key")

	assert.Error(t, NewCloud(CloudConfig{Provider: "grpc"}, nil, nil).Initialize(context.Background()))

	assert.NoError(t, NewCloud(CloudConfig{Provider: CloudProviderOpenAI, APIKey: "sk-test"}, nil, nil).
		Initialize(context.Background()))
}

func TestCloud_AlwaysSupported(t *testing.T) {
	assert.True(t, NewCloud(CloudConfig{}, nil, nil).IsSupported())
}
