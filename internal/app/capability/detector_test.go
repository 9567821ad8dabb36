package capability

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	chromeUA  = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	edgeUA    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 Edg/120.0.2210.91"
	firefoxUA = "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0"
	safariUA  = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15"
)

func TestDetect_EngineIdentification(t *testing.T) {
	tests := []struct {
		name    string
		ua      string
		engine  BrowserEngine
		version string
	}{
		{"chrome", chromeUA, EngineChrome, "120.0.0.0"},
		{"edge over chrome token", edgeUA, EngineEdge, "120.0.2210.91"},
		{"firefox", firefoxUA, EngineFirefox, "121.0"},
		{"safari", safariUA, EngineSafari, "17.1"},
		{"unknown", "curl/8.4.0", EngineUnknown, ""},
		{"empty", "", EngineUnknown, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := Detect(Environment{UserAgent: tt.ua})
			assert.Equal(t, tt.engine, info.Engine)
			assert.Equal(t, tt.version, info.Version)
		})
	}
}

func TestDetect_FeatureFlagsCarriedThrough(t *testing.T) {
	info := Detect(Environment{
		UserAgent:     chromeUA,
		SecureContext: true,
		WebSpeech:     true,
		WebAudio:      true,
		WASM:          true,
	})

	assert.True(t, info.WebSpeechSupported)
	assert.True(t, info.WebAudioSupported)
	assert.True(t, info.WASMSupported)
	assert.True(t, info.IsSecureContext)
	assert.Equal(t, chromeUA, info.UserAgent)
}

func TestDetect_UnknownAgentDegradesConservatively(t *testing.T) {
	// Feature flags from an agent we cannot identify are not trusted.
	info := Detect(Environment{
		UserAgent: "SomeBot/1.0",
		WebSpeech: true,
		WebAudio:  true,
		WASM:      true,
	})

	assert.Equal(t, EngineUnknown, info.Engine)
	assert.False(t, info.WebSpeechSupported)
	assert.False(t, info.WebAudioSupported)
	assert.False(t, info.WASMSupported)
}

func TestDetect_IsPure(t *testing.T) {
	env := Environment{UserAgent: chromeUA, WebSpeech: true}
	first := Detect(env)
	second := Detect(env)
	assert.Equal(t, first, second)
}
