package audio

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// one second of audio under the default profile
func oneSecondChunk() []byte {
	return make([]byte, DefaultPCMProfile.bytesPerSecond())
}

func TestBuffer_AddReportsReadinessOnDuration(t *testing.T) {
	buf := NewBuffer(BufferConfig{DurationThreshold: 2 * time.Second, MaxSizeBytes: 1 << 30})

	assert.True(t, buf.Add(oneSecondChunk()))
	assert.False(t, buf.Add(oneSecondChunk()), "second chunk reaches the duration threshold")
}

func TestBuffer_AddReportsReadinessOnSize(t *testing.T) {
	buf := NewBuffer(BufferConfig{DurationThreshold: time.Hour, MaxSizeBytes: 10})

	assert.True(t, buf.Add(make([]byte, 4)))
	assert.True(t, buf.Add(make([]byte, 4)))
	assert.False(t, buf.Add(make([]byte, 4)), "12 bytes reaches the 10 byte cap")
}

func TestBuffer_ZeroByteChunksNeverTriggerReadiness(t *testing.T) {
	buf := NewBuffer(BufferConfig{DurationThreshold: time.Second, MaxSizeBytes: 100})

	for i := 0; i < 50; i++ {
		assert.True(t, buf.Add(nil))
	}
	assert.Equal(t, time.Duration(0), buf.Duration())
	assert.Equal(t, 0, buf.Size())
}

func TestBuffer_FlushEmptyReturnsNil(t *testing.T) {
	buf := NewBuffer(BufferConfig{})
	assert.Nil(t, buf.Flush())
}

func TestBuffer_FlushConcatenatesAndClears(t *testing.T) {
	buf := NewBuffer(BufferConfig{MIME: "audio/webm", MaxSizeBytes: 1 << 20})

	buf.Add([]byte{1, 2, 3})
	buf.Add([]byte{4, 5})
	buf.Add([]byte{6})

	clip := buf.Flush()
	require.NotNil(t, clip)
	assert.Equal(t, "audio/webm", clip.MIME)
	assert.True(t, bytes.Equal([]byte{1, 2, 3, 4, 5, 6}, clip.Data))
	assert.Equal(t, 6, len(clip.Data), "flushed size equals sum of chunk sizes")

	// State cleared: next flush is nil and counters reset.
	assert.Nil(t, buf.Flush())
	assert.Equal(t, 0, buf.Size())
	assert.Equal(t, time.Duration(0), buf.Duration())
}

func TestBuffer_DurationMonotonicBetweenClears(t *testing.T) {
	buf := NewBuffer(BufferConfig{DurationThreshold: time.Hour, MaxSizeBytes: 1 << 30})

	var last time.Duration
	for i := 0; i < 5; i++ {
		buf.Add(oneSecondChunk())
		d := buf.Duration()
		assert.GreaterOrEqual(t, d, last)
		last = d
	}

	buf.Clear()
	assert.Equal(t, time.Duration(0), buf.Duration())
}
