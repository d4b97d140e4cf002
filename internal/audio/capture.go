package audio

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gen2brain/malgo"

	"priorityone/internal/logger"
)

// Samples per outgoing frame. Matches the chunk size the live session
// expects; at 16 kHz one frame is 256 ms of speech.
const captureFrameSamples = 4096

// CaptureOption configures the Capture.
type CaptureOption func(*Capture)

// WithFrameChanSize sets the outgoing frame channel capacity.
func WithFrameChanSize(n int) CaptureOption {
	return func(c *Capture) { c.frames = make(chan []byte, n) }
}

// Capture owns the microphone for the duration of one call. It delivers
// fixed-size 16 kHz mono PCM frames on a buffered channel. Delivery is
// fire-and-forget: when the consumer falls behind, frames are dropped
// rather than ever blocking the device callback.
type Capture struct {
	log    *logger.Logger
	frames chan []byte

	mu      sync.Mutex
	mctx    *malgo.AllocatedContext
	device  *malgo.Device
	running bool

	// Touched only on the audio thread. The device callback must stay
	// off c.mu: Uninit waits for the callback to return, so sharing the
	// struct lock with it would deadlock Stop.
	pending []byte // partial frame carried between device callbacks
	dropped atomic.Int64
}

// NewCapture creates an idle microphone capture. Call Start to acquire
// the device.
func NewCapture(log *logger.Logger, opts ...CaptureOption) *Capture {
	c := &Capture{
		log:    log,
		frames: make(chan []byte, 32),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Frames returns the channel carrying captured PCM frames.
func (c *Capture) Frames() <-chan []byte { return c.frames }

// Start acquires the default capture device and begins streaming frames.
// Returns an error if the microphone is unavailable; the capture is then
// safe to Start again later.
func (c *Capture) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil
	}

	mctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(msg string) {
		c.log.Debug("miniaudio: %s", msg)
	})
	if err != nil {
		return fmt.Errorf("audio context init: %w", err)
	}

	cfg := malgo.DefaultDeviceConfig(malgo.Capture)
	cfg.Capture.Format = malgo.FormatS16
	cfg.Capture.Channels = ChannelCount
	cfg.SampleRate = CaptureRate
	cfg.Alsa.NoMMap = 1

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, input []byte, _ uint32) {
			c.onFrames(input)
		},
	}

	device, err := malgo.InitDevice(mctx.Context, cfg, callbacks)
	if err != nil {
		_ = mctx.Uninit()
		mctx.Free()
		return fmt.Errorf("microphone init: %w", err)
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		_ = mctx.Uninit()
		mctx.Free()
		return fmt.Errorf("microphone start: %w", err)
	}

	c.mctx = mctx
	c.device = device
	c.pending = c.pending[:0]
	c.running = true
	c.log.Info("microphone capture started (rate=%d)", CaptureRate)
	return nil
}

// Stop releases the microphone. Safe to call when not running and safe
// to call more than once.
func (c *Capture) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return
	}
	c.device.Uninit()
	_ = c.mctx.Uninit()
	c.mctx.Free()
	c.device = nil
	c.mctx = nil
	c.running = false

	if n := c.dropped.Load(); n > 0 {
		c.log.Warn("microphone capture stopped, %d frames dropped", n)
	} else {
		c.log.Info("microphone capture stopped")
	}
}

// onFrames accumulates device callback data into fixed-size frames and
// hands complete frames to the channel. Runs on the audio thread, so it
// must never block and never take c.mu.
func (c *Capture) onFrames(input []byte) {
	c.pending = append(c.pending, input...)
	frameBytes := captureFrameSamples * BytesPerSamp

	for len(c.pending) >= frameBytes {
		frame := make([]byte, frameBytes)
		copy(frame, c.pending[:frameBytes])
		c.pending = c.pending[frameBytes:]
		select {
		case c.frames <- frame:
		default:
			c.dropped.Add(1)
		}
	}
}
