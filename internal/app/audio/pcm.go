package audio

import (
	"encoding/binary"
	"strings"
)

// IsPCMMIME reports whether a MIME type names uncompressed PCM audio the DSP
// stages can operate on directly.
func IsPCMMIME(mime string) bool {
	switch {
	case strings.Contains(mime, "wav"),
		strings.Contains(mime, "l16"),
		strings.Contains(mime, "pcm"):
		return true
	default:
		return false
	}
}

// DecodePCM16 converts little-endian 16-bit PCM bytes to normalized samples
// in [-1,1]. A wav container's RIFF header is skipped when present. A trailing
// odd byte is dropped.
func DecodePCM16(data []byte) []float64 {
	if len(data) >= 44 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WAVE" {
		data = data[44:]
	}

	samples := make([]float64, 0, len(data)/2)
	for i := 0; i+1 < len(data); i += 2 {
		v := int16(binary.LittleEndian.Uint16(data[i:]))
		samples = append(samples, float64(v)/32768)
	}
	return samples
}
