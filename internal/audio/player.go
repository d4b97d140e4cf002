package audio

import (
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"priorityone/internal/logger"
)

// StreamPlayer plays 24 kHz mono PCM chunks gaplessly through oto.
//
// A single long-lived oto player reads from an internal queue that yields
// silence when empty, so chunks enqueued in arrival order play strictly
// back-to-back regardless of how they were framed on the network.
//
// The player owns the playback cursor: Enqueue advances the projected
// end-of-audio instant monotonically, and Speaking reports whether that
// instant is still in the future: the "caller is speaking" indicator.
type StreamPlayer struct {
	log    *logger.Logger
	queue  *pcmQueue
	player *oto.Player

	cursor playCursor
}

// NewStreamPlayer initializes the system audio output. The underlying
// context is process-wide; create one StreamPlayer and share it.
func NewStreamPlayer(log *logger.Logger) (*StreamPlayer, error) {
	op := &oto.NewContextOptions{
		SampleRate:   PlaybackRate,
		ChannelCount: ChannelCount,
		Format:       oto.FormatSignedInt16LE,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-ready

	p := &StreamPlayer{
		log:    log,
		queue:  newPCMQueue(),
		cursor: playCursor{now: time.Now},
	}
	p.player = ctx.NewPlayer(p.queue)
	p.player.Play()

	log.Debug("stream player initialized (rate=%d, channels=%d)", PlaybackRate, ChannelCount)
	return p, nil
}

// Enqueue schedules a PCM chunk for gapless playback and advances the
// playback cursor.
func (p *StreamPlayer) Enqueue(pcm []byte) {
	if len(pcm) == 0 {
		return
	}
	p.queue.push(pcm)
	p.cursor.advance(Duration(pcm, PlaybackRate))
}

// Speaking reports whether scheduled audio is still playing.
func (p *StreamPlayer) Speaking() bool { return p.cursor.speaking() }

// Flush drops all queued audio and resets the cursor. Used when a call
// ends so stale caller speech never bleeds into the next screen.
func (p *StreamPlayer) Flush() {
	n := p.queue.reset()
	p.cursor.clear()
	if n > 0 {
		p.log.Debug("stream player flushed %d queued bytes", n)
	}
}

// Close stops playback and releases the player. The audio context itself
// stays alive for the life of the process.
func (p *StreamPlayer) Close() error {
	p.Flush()
	return p.player.Close()
}

// ── playback cursor ──────────────────────────────────────────────

// playCursor is the monotonic end-of-audio instant. Each enqueue reads
// and advances it atomically: start = max(now, endAt), endAt = start + d.
type playCursor struct {
	mu    sync.Mutex
	endAt time.Time
	now   func() time.Time
}

func (c *playCursor) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	start := c.now()
	if c.endAt.After(start) {
		start = c.endAt
	}
	c.endAt = start.Add(d)
}

func (c *playCursor) speaking() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.endAt.After(c.now())
}

func (c *playCursor) clear() {
	c.mu.Lock()
	c.endAt = time.Time{}
	c.mu.Unlock()
}

// ── PCM queue ────────────────────────────────────────────────────

// pcmQueue is the io.Reader the oto player consumes. When no audio is
// buffered it yields silence, keeping the device fed and the stream
// position advancing so later chunks start exactly on time.
type pcmQueue struct {
	mu  sync.Mutex
	buf []byte
}

func newPCMQueue() *pcmQueue {
	return &pcmQueue{}
}

func (q *pcmQueue) push(pcm []byte) {
	q.mu.Lock()
	q.buf = append(q.buf, pcm...)
	q.mu.Unlock()
}

func (q *pcmQueue) reset() int {
	q.mu.Lock()
	n := len(q.buf)
	q.buf = q.buf[:0]
	q.mu.Unlock()
	return n
}

// Read never returns io.EOF; an empty queue produces silence.
func (q *pcmQueue) Read(p []byte) (int, error) {
	q.mu.Lock()
	n := copy(p, q.buf)
	q.buf = q.buf[n:]
	q.mu.Unlock()

	for i := n; i < len(p); i++ {
		p[i] = 0
	}
	return len(p), nil
}
