// Package audio provides PCM codec helpers, microphone capture, and
// gapless playback for the live call pipeline.
//
// The wire carries 16-bit signed little-endian mono PCM: 16 kHz upstream
// (microphone to model) and 24 kHz downstream (model to speaker).
package audio

import (
	"encoding/base64"
	"encoding/binary"
	"time"
)

// Fixed audio parameters for the live session.
const (
	CaptureRate  = 16000
	PlaybackRate = 24000
	ChannelCount = 1
	BytesPerSamp = 2 // 16-bit
)

// FloatToPCM16 converts float32 samples in [-1, 1] to 16-bit signed
// little-endian PCM bytes. Out-of-range samples are clipped.
func FloatToPCM16(samples []float32) []byte {
	out := make([]byte, len(samples)*BytesPerSamp)
	for i, s := range samples {
		v := int32(s * 32768)
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}
		binary.LittleEndian.PutUint16(out[i*2:], uint16(int16(v)))
	}
	return out
}

// PCM16ToFloat converts 16-bit signed little-endian PCM bytes to float32
// samples in [-1, 1). A trailing odd byte is ignored.
func PCM16ToFloat(pcm []byte) []float32 {
	n := len(pcm) / BytesPerSamp
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		v := int16(binary.LittleEndian.Uint16(pcm[i*2:]))
		out[i] = float32(v) / 32768.0
	}
	return out
}

// EncodeChunk base64-encodes raw PCM bytes for the wire.
func EncodeChunk(pcm []byte) string {
	return base64.StdEncoding.EncodeToString(pcm)
}

// DecodeChunk decodes a base64 wire payload back to raw PCM bytes.
func DecodeChunk(data string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(data)
}

// Duration returns the playback time of a PCM byte slice at the given
// sample rate (mono, 16-bit).
func Duration(pcm []byte, rate int) time.Duration {
	samples := len(pcm) / BytesPerSamp
	return time.Duration(samples) * time.Second / time.Duration(rate)
}
