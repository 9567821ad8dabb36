package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"adaptive-voice/internal/app/apperrors"
	"adaptive-voice/internal/app/audio"
)

// CloudProvider selects the wire protocol the cloud engine speaks.
type CloudProvider string

const (
	// CloudProviderHTTP posts raw audio to a configurable endpoint and
	// expects a JSON body with a "text" field.
	CloudProviderHTTP CloudProvider = "http"
	// CloudProviderOpenAI transcribes through the OpenAI audio API.
	CloudProviderOpenAI CloudProvider = "openai"
)

// CloudConfig configures the cloud STT engine.
type CloudConfig struct {
	Provider CloudProvider     `yaml:"provider"`
	Endpoint string            `yaml:"endpoint"`
	APIKey   string            `yaml:"api_key"`
	Model    string            `yaml:"model"`
	Language string            `yaml:"language"`
	Timeout  time.Duration     `yaml:"timeout"`
	Headers  map[string]string `yaml:"headers"`
}

// cloudResponse is the generic HTTP wire contract.
type cloudResponse struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence,omitempty"`
}

// Cloud posts audio to a remote STT service. Always supported: whether the
// network is actually good enough is the orchestrator's call, made from
// measured quality rather than a capability flag.
type Cloud struct {
	mu     sync.Mutex
	config CloudConfig
	client *http.Client
	openai *openai.Client
	logger *zap.Logger
}

// NewCloud creates the cloud engine. A nil client gets a default one scoped
// to the configured timeout.
func NewCloud(config CloudConfig, client *http.Client, logger *zap.Logger) *Cloud {
	if config.Provider == "" {
		config.Provider = CloudProviderHTTP
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.Model == "" {
		config.Model = openai.Whisper1
	}
	if client == nil {
		client = &http.Client{Timeout: config.Timeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cloud{config: config, client: client, logger: logger}
}

func (c *Cloud) Type() Type { return TypeCloud }

// IsSupported is unconditionally true; the cloud engine is the universal fallback.
func (c *Cloud) IsSupported() bool { return true }

func (c *Cloud) Initialize(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.config.Provider {
	case CloudProviderHTTP:
		if c.config.Endpoint == "" {
			return apperrors.New(apperrors.CodeEngineInit, "cloud STT endpoint is required")
		}
		if !strings.HasPrefix(c.config.Endpoint, "http://") && !strings.HasPrefix(c.config.Endpoint, "https://") {
			return apperrors.New(apperrors.CodeEngineInit, "cloud STT endpoint must start with http:// or https://")
		}
	case CloudProviderOpenAI:
		if c.config.APIKey == "" {
			return apperrors.New(apperrors.CodeEngineInit, "cloud STT api key is required for the openai provider")
		}
		cfg := openai.DefaultConfig(c.config.APIKey)
		if c.config.Endpoint != "" {
			cfg.BaseURL = c.config.Endpoint
		}
		cfg.HTTPClient = c.client
		c.openai = openai.NewClientWithConfig(cfg)
	default:
		return apperrors.Newf(apperrors.CodeEngineInit, "unknown cloud STT provider %q", c.config.Provider)
	}

	return nil
}

func (c *Cloud) Transcribe(ctx context.Context, clip *audio.Clip) (*Transcript, error) {
	if clip == nil || len(clip.Data) == 0 {
		return nil, apperrors.New(apperrors.CodeNoSpeech, "empty audio clip")
	}

	if c.config.Provider == CloudProviderOpenAI {
		return c.transcribeOpenAI(ctx, clip)
	}
	return c.transcribeHTTP(ctx, clip)
}

func (c *Cloud) transcribeHTTP(ctx context.Context, clip *audio.Clip) (*Transcript, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, bytes.NewReader(clip.Data))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeNetwork, "failed to build cloud STT request")
	}

	contentType := clip.MIME
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)
	if c.config.Language != "" {
		req.Header.Set("Accept-Language", c.config.Language)
	}
	for key, value := range c.config.Headers {
		req.Header.Set(key, value)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeNetwork, "cloud STT request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeNetwork, "failed to read cloud STT response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Every non-2xx is treated as retryable: the failover policy
		// decides when to give up, not the transport.
		return nil, apperrors.Newf(apperrors.CodeNetwork,
			"cloud STT request failed: status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var parsed cloudResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeNetwork, "invalid cloud STT response body")
	}
	if parsed.Text == "" {
		return nil, apperrors.New(apperrors.CodeNoSpeech, "cloud STT returned no text")
	}

	return &Transcript{Text: parsed.Text, Confidence: parsed.Confidence}, nil
}

func (c *Cloud) transcribeOpenAI(ctx context.Context, clip *audio.Clip) (*Transcript, error) {
	c.mu.Lock()
	client := c.openai
	c.mu.Unlock()

	if client == nil {
		return nil, apperrors.New(apperrors.CodeEngineInit, "cloud STT engine not initialized")
	}

	resp, err := client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.config.Model,
		Reader:   bytes.NewReader(clip.Data),
		FilePath: filenameForMIME(clip.MIME),
		Language: c.config.Language,
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeNetwork, "cloud STT request failed")
	}
	if resp.Text == "" {
		return nil, apperrors.New(apperrors.CodeNoSpeech, "cloud STT returned no text")
	}

	return &Transcript{Text: resp.Text}, nil
}

func (c *Cloud) Cleanup() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.openai = nil
	return nil
}

// filenameForMIME gives the OpenAI API a filename whose extension matches the
// payload, which is how it sniffs the container format.
func filenameForMIME(mime string) string {
	switch {
	case strings.Contains(mime, "wav"):
		return "clip.wav"
	case strings.Contains(mime, "webm"):
		return "clip.webm"
	case strings.Contains(mime, "ogg"):
		return "clip.ogg"
	case strings.Contains(mime, "mpeg"), strings.Contains(mime, "mp3"):
		return "clip.mp3"
	default:
		return "clip.wav"
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return fmt.Sprintf("%s... (%d bytes)", s[:n], len(s))
}
