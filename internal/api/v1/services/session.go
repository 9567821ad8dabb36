package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"adaptive-voice/internal/api/errors"
	"adaptive-voice/internal/app/apperrors"
	"adaptive-voice/internal/app/audio"
	"adaptive-voice/internal/app/capability"
	"adaptive-voice/internal/app/config"
	"adaptive-voice/internal/app/engine"
	"adaptive-voice/internal/app/metrics"
	"adaptive-voice/internal/app/recognition"
)

// defaultSessionIdleTTL is how long a session survives without requests.
const defaultSessionIdleTTL = 30 * time.Minute

// Session binds one client's recognition runtime to an id.
type Session struct {
	ID         string
	Recognizer *recognition.Recognizer
	CreatedAt  time.Time

	mu       sync.Mutex
	lastSeen time.Time
}

// Touch refreshes the idle clock.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// SessionManager owns all live sessions. Each session gets its own runtime;
// the Prometheus metrics set is shared.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	config  *config.Config
	metrics *metrics.Metrics
	logger  *zap.Logger
	idleTTL time.Duration

	stopOnce sync.Once
	done     chan struct{}
}

// NewSessionManager creates the manager. Call StartSweeper to enable idle
// session reaping and cache TTL sweeps.
func NewSessionManager(cfg *config.Config, m *metrics.Metrics, logger *zap.Logger) *SessionManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if m == nil {
		m = metrics.New()
	}
	return &SessionManager{
		sessions: make(map[string]*Session),
		config:   cfg,
		metrics:  m,
		logger:   logger,
		idleTTL:  defaultSessionIdleTTL,
		done:     make(chan struct{}),
	}
}

// CreateSession builds and initializes a runtime for the client's capability
// snapshot. An environment with no usable engine fails here rather than on
// first transcription.
func (m *SessionManager) CreateSession(ctx context.Context, env capability.Environment, patch *recognition.OptionsPatch) (*Session, error) {
	opts := m.config.Options
	if opts == (recognition.Options{}) {
		opts = recognition.DefaultOptions()
	}

	recognizer, err := recognition.New(recognition.Config{
		Environment: env,
		Options:     opts,
		Cloud:       m.config.Cloud,
		Network:     m.config.Network,
		Native:      relayRecognizer{},
		CacheSize:   m.config.Cache.MaxEntries,
		CacheTTL:    m.config.Cache.TTL,
	}, m.metrics, m.logger)
	if err != nil {
		return nil, err
	}

	if patch != nil {
		if err := recognizer.UpdateOptions(*patch); err != nil {
			return nil, err
		}
	}

	if err := recognizer.Initialize(ctx); err != nil {
		recognizer.Cleanup()
		return nil, err
	}

	session := &Session{
		ID:         uuid.New().String(),
		Recognizer: recognizer,
		CreatedAt:  time.Now(),
		lastSeen:   time.Now(),
	}

	m.mu.Lock()
	m.sessions[session.ID] = session
	m.mu.Unlock()

	m.logger.Info("session created",
		zap.String("session_id", session.ID),
		zap.String("engine", string(recognizer.CurrentEngine())),
		zap.String("user_agent", env.UserAgent))

	return session, nil
}

// GetSession looks up a live session and refreshes its idle clock.
func (m *SessionManager) GetSession(id string) (*Session, error) {
	m.mu.RLock()
	session, ok := m.sessions[id]
	m.mu.RUnlock()

	if !ok {
		return nil, errors.NewNotFoundError("session")
	}
	session.Touch()
	return session, nil
}

// CloseSession releases a session's runtime.
func (m *SessionManager) CloseSession(id string) error {
	m.mu.Lock()
	session, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return errors.NewNotFoundError("session")
	}

	session.Recognizer.Cleanup()
	m.logger.Info("session closed", zap.String("session_id", id))
	return nil
}

// Count returns the number of live sessions.
func (m *SessionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// StartSweeper runs periodic maintenance: transcript cache TTL sweeps and
// idle session reaping. Stops when Shutdown is called.
func (m *SessionManager) StartSweeper(interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-m.done:
				return
			case <-ticker.C:
				m.sweep()
			}
		}
	}()
}

// Shutdown stops the sweeper and closes every session.
func (m *SessionManager) Shutdown() {
	m.stopOnce.Do(func() { close(m.done) })

	m.mu.Lock()
	sessions := lo.Values(m.sessions)
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, session := range sessions {
		session.Recognizer.Cleanup()
	}
}

func (m *SessionManager) sweep() {
	m.mu.RLock()
	sessions := lo.Values(m.sessions)
	m.mu.RUnlock()

	cutoff := time.Now().Add(-m.idleTTL)
	for _, session := range sessions {
		removed := session.Recognizer.Cache().CleanExpired()
		if removed > 0 {
			m.logger.Debug("swept expired cache entries",
				zap.String("session_id", session.ID),
				zap.Int("removed", removed))
		}

		if session.idleSince().Before(cutoff) {
			if err := m.CloseSession(session.ID); err == nil {
				m.logger.Info("reaped idle session", zap.String("session_id", session.ID))
			}
		}
	}
}

// nativeTranscriptKey carries a client-relayed transcript through the
// request context into the web speech engine.
type nativeTranscriptKey struct{}

// WithNativeTranscript attaches a transcript the client's built-in recognizer
// already produced, so the runtime treats it as the web speech engine result.
func WithNativeTranscript(ctx context.Context, text string, confidence float64) context.Context {
	return context.WithValue(ctx, nativeTranscriptKey{}, &engine.Transcript{
		Text:       text,
		Confidence: confidence,
	})
}

// relayRecognizer is the server-side stand-in for the browser's recognizer:
// it surfaces whatever transcript the request relayed. A request without one
// reads as no speech, which lets the runtime fail over to the cloud engine.
type relayRecognizer struct{}

func (relayRecognizer) Recognize(ctx context.Context, clip *audio.Clip) (*engine.Transcript, error) {
	if transcript, ok := ctx.Value(nativeTranscriptKey{}).(*engine.Transcript); ok && transcript.Text != "" {
		return transcript, nil
	}
	return nil, apperrors.New(apperrors.CodeNoSpeech, "no native transcript relayed for this request")
}
