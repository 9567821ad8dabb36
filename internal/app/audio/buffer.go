package audio

import (
	"sync"
	"time"
)

// Clip is a flushed audio payload with its MIME type preserved.
type Clip struct {
	Data []byte
	MIME string
}

// PCMProfile describes the assumed encoding used to estimate chunk durations
// from byte sizes.
type PCMProfile struct {
	SampleRate int `yaml:"sample_rate"`
	BitDepth   int `yaml:"bit_depth"`
	Channels   int `yaml:"channels"`
}

// DefaultPCMProfile matches the capture profile the learning client records with.
var DefaultPCMProfile = PCMProfile{SampleRate: 16000, BitDepth: 16, Channels: 1}

// bytesPerSecond returns the PCM data rate, or 0 for a degenerate profile.
func (p PCMProfile) bytesPerSecond() int {
	return p.SampleRate * (p.BitDepth / 8) * p.Channels
}

// BufferConfig bounds a recording buffer.
type BufferConfig struct {
	DurationThreshold time.Duration `yaml:"duration_threshold"`
	MaxSizeBytes      int           `yaml:"max_size_bytes"`
	MIME              string        `yaml:"mime"`
	Profile           PCMProfile    `yaml:"profile"`
}

// Buffer accumulates short audio chunks until a duration or size threshold is
// met. It is owned by exactly one in-flight recording session.
type Buffer struct {
	mu            sync.Mutex
	config        BufferConfig
	chunks        [][]byte
	totalDuration time.Duration
	totalSize     int
}

// NewBuffer creates a recording buffer with sane defaults for unset fields.
func NewBuffer(config BufferConfig) *Buffer {
	if config.DurationThreshold == 0 {
		config.DurationThreshold = 3 * time.Second
	}
	if config.MaxSizeBytes == 0 {
		config.MaxSizeBytes = 1 << 20
	}
	if config.Profile.bytesPerSecond() == 0 {
		config.Profile = DefaultPCMProfile
	}
	return &Buffer{config: config}
}

// Add appends a chunk and reports whether the buffer can accept more. It
// returns false the moment totalDuration or totalSize reaches its threshold,
// signaling the caller to stop appending and flush. Zero-byte chunks are
// accepted and counted as zero duration; they never alone trigger readiness.
func (b *Buffer) Add(chunk []byte) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.chunks = append(b.chunks, chunk)
	b.totalSize += len(chunk)
	b.totalDuration += estimateDuration(len(chunk), b.config.Profile)

	if b.totalDuration >= b.config.DurationThreshold {
		return false
	}
	if b.totalSize >= b.config.MaxSizeBytes {
		return false
	}
	return true
}

// Flush concatenates all chunks into a single clip, preserving the configured
// MIME type, and clears state. Returns nil if the buffer is empty.
func (b *Buffer) Flush() *Clip {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.chunks) == 0 {
		b.reset()
		return nil
	}

	data := make([]byte, 0, b.totalSize)
	for _, chunk := range b.chunks {
		data = append(data, chunk...)
	}
	b.reset()

	return &Clip{Data: data, MIME: b.config.MIME}
}

// Clear drops all accumulated chunks.
func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reset()
}

// Duration returns the estimated accumulated duration.
func (b *Buffer) Duration() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.totalDuration
}

// Size returns the accumulated size in bytes.
func (b *Buffer) Size() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.totalSize
}

func (b *Buffer) reset() {
	b.chunks = nil
	b.totalDuration = 0
	b.totalSize = 0
}

func estimateDuration(sizeBytes int, profile PCMProfile) time.Duration {
	bps := profile.bytesPerSecond()
	if bps <= 0 || sizeBytes <= 0 {
		return 0
	}
	return time.Duration(float64(sizeBytes) / float64(bps) * float64(time.Second))
}
