package audio

import (
	"testing"
	"time"
)

func TestFloatPCMRoundTrip(t *testing.T) {
	in := []float32{0, 0.5, -0.5, 0.25, -1}
	pcm := FloatToPCM16(in)
	if len(pcm) != len(in)*2 {
		t.Fatalf("expected %d bytes, got %d", len(in)*2, len(pcm))
	}

	out := PCM16ToFloat(pcm)
	if len(out) != len(in) {
		t.Fatalf("expected %d samples, got %d", len(in), len(out))
	}
	for i := range in {
		diff := in[i] - out[i]
		if diff < 0 {
			diff = -diff
		}
		if diff > 1.0/32768 {
			t.Errorf("sample %d: %v -> %v (diff %v)", i, in[i], out[i], diff)
		}
	}
}

func TestFloatToPCM16Clips(t *testing.T) {
	pcm := FloatToPCM16([]float32{2.0, -2.0})
	out := PCM16ToFloat(pcm)
	if out[0] < 0.999 {
		t.Errorf("positive overdrive should clip to full scale, got %v", out[0])
	}
	if out[1] > -0.999 {
		t.Errorf("negative overdrive should clip to full scale, got %v", out[1])
	}
}

func TestChunkRoundTrip(t *testing.T) {
	pcm := []byte{0x01, 0x02, 0xff, 0x7f, 0x00, 0x80}
	got, err := DecodeChunk(EncodeChunk(pcm))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(got) != string(pcm) {
		t.Fatalf("round trip mismatch: %v != %v", got, pcm)
	}
}

func TestDecodeChunkRejectsGarbage(t *testing.T) {
	if _, err := DecodeChunk("not base64!!!"); err == nil {
		t.Fatal("expected error for invalid base64")
	}
}

func TestDuration(t *testing.T) {
	tests := []struct {
		bytes int
		rate  int
		want  time.Duration
	}{
		{PlaybackRate * 2, PlaybackRate, time.Second},
		{CaptureRate, CaptureRate, 500 * time.Millisecond},
		{0, PlaybackRate, 0},
	}
	for _, tt := range tests {
		got := Duration(make([]byte, tt.bytes), tt.rate)
		if got != tt.want {
			t.Errorf("Duration(%d bytes @ %d) = %v, want %v", tt.bytes, tt.rate, got, tt.want)
		}
	}
}
