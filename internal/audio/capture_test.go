package audio

import (
	"testing"

	"priorityone/internal/logger"
)

func TestCaptureAssemblesFixedFrames(t *testing.T) {
	c := NewCapture(logger.New(logger.LevelOff, nil), WithFrameChanSize(4))
	frameBytes := captureFrameSamples * BytesPerSamp

	// One and a half frames in, one complete frame out.
	c.onFrames(make([]byte, frameBytes+frameBytes/2))
	if got := len(c.frames); got != 1 {
		t.Fatalf("expected 1 frame ready, got %d", got)
	}
	frame := <-c.frames
	if len(frame) != frameBytes {
		t.Fatalf("frame length = %d, want %d", len(frame), frameBytes)
	}

	// The remainder completes on the next callback.
	c.onFrames(make([]byte, frameBytes/2))
	if got := len(c.frames); got != 1 {
		t.Fatalf("expected carried remainder to complete a frame, got %d", got)
	}
}

func TestCaptureDropsWhenConsumerLags(t *testing.T) {
	c := NewCapture(logger.New(logger.LevelOff, nil), WithFrameChanSize(1))
	frameBytes := captureFrameSamples * BytesPerSamp

	c.onFrames(make([]byte, 3*frameBytes))
	if got := len(c.frames); got != 1 {
		t.Fatalf("channel should hold 1 frame, got %d", got)
	}
	if got := c.dropped.Load(); got != 2 {
		t.Fatalf("dropped = %d, want 2", got)
	}
}

// The device callback runs on the audio thread while Stop holds c.mu
// across Uninit, and Uninit waits for the callback to return. The
// callback must therefore work without c.mu; taking it here would
// hang this test.
func TestCaptureCallbackIndependentOfStructLock(t *testing.T) {
	c := NewCapture(logger.New(logger.LevelOff, nil), WithFrameChanSize(1))
	frameBytes := captureFrameSamples * BytesPerSamp

	c.mu.Lock()
	c.onFrames(make([]byte, 2*frameBytes))
	c.mu.Unlock()

	if got := len(c.frames); got != 1 {
		t.Fatalf("channel should hold 1 frame, got %d", got)
	}
	if got := c.dropped.Load(); got != 1 {
		t.Fatalf("dropped = %d, want 1", got)
	}
}
