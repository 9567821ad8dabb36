package capability

import (
	"strings"
)

// BrowserEngine identifies the client's browser engine family.
type BrowserEngine string

const (
	EngineChrome  BrowserEngine = "chrome"
	EngineEdge    BrowserEngine = "edge"
	EngineFirefox BrowserEngine = "firefox"
	EngineSafari  BrowserEngine = "safari"
	EngineUnknown BrowserEngine = "unknown"
)

// Environment is the explicit capability snapshot reported by a client when it
// opens a session. Feature flags come from the client's own probes; Detect never
// consults ambient state, which keeps it substitutable in tests.
type Environment struct {
	UserAgent     string `json:"user_agent"`
	SecureContext bool   `json:"secure_context"`
	WebSpeech     bool   `json:"web_speech"`
	WebAudio      bool   `json:"web_audio"`
	WASM          bool   `json:"wasm"`
	Online        bool   `json:"online"`
}

// BrowserInfo is the immutable capability snapshot derived from an Environment.
// Produced once per session and cached by the orchestrator.
type BrowserInfo struct {
	Engine             BrowserEngine `json:"engine"`
	Version            string        `json:"version"`
	WebSpeechSupported bool          `json:"web_speech_supported"`
	WebAudioSupported  bool          `json:"web_audio_supported"`
	WASMSupported      bool          `json:"wasm_supported"`
	IsSecureContext    bool          `json:"is_secure_context"`
	UserAgent          string        `json:"user_agent"`
}

// Detect maps an environment snapshot to supported-API flags. Pure and
// side-effect free; unknown or unparsable agents degrade to a conservative
// unsupported snapshot rather than failing.
func Detect(env Environment) BrowserInfo {
	engine, version := parseUserAgent(env.UserAgent)

	info := BrowserInfo{
		Engine:          engine,
		Version:         version,
		IsSecureContext: env.SecureContext,
		UserAgent:       env.UserAgent,
	}

	// Feature flags are taken at face value for engines we can identify.
	// An unrecognizable agent keeps everything off.
	if engine != EngineUnknown {
		info.WebSpeechSupported = env.WebSpeech
		info.WebAudioSupported = env.WebAudio
		info.WASMSupported = env.WASM
	}

	return info
}

// parseUserAgent extracts the engine family and version token from a user
// agent string. Order matters: Edge and Chrome both advertise "Chrome", and
// Chrome advertises "Safari".
func parseUserAgent(ua string) (BrowserEngine, string) {
	lower := strings.ToLower(ua)

	switch {
	case strings.Contains(lower, "edg/"), strings.Contains(lower, "edge/"):
		return EngineEdge, versionAfter(lower, "edg/", "edge/")
	case strings.Contains(lower, "chrome/"), strings.Contains(lower, "crios/"):
		return EngineChrome, versionAfter(lower, "chrome/", "crios/")
	case strings.Contains(lower, "firefox/"):
		return EngineFirefox, versionAfter(lower, "firefox/")
	case strings.Contains(lower, "safari/") && strings.Contains(lower, "version/"):
		return EngineSafari, versionAfter(lower, "version/")
	default:
		return EngineUnknown, ""
	}
}

func versionAfter(ua string, markers ...string) string {
	for _, marker := range markers {
		idx := strings.Index(ua, marker)
		if idx < 0 {
			continue
		}
		rest := ua[idx+len(marker):]
		end := strings.IndexFunc(rest, func(r rune) bool {
			return r != '.' && (r < '0' || r > '9')
		})
		if end < 0 {
			return rest
		}
		return rest[:end]
	}
	return ""
}
