// Package call runs the live phase of one emergency call: it owns the
// microphone, the remote speech session, the transcript, and the unit
// board, and hands a sealed result to the debrief when the call ends.
package call

import (
	"context"
	"errors"
	"sync"

	"priorityone/internal/dispatch"
	"priorityone/internal/domain"
	"priorityone/internal/live"
	"priorityone/internal/logger"
	"priorityone/internal/transcript"
)

// Microphone streams captured PCM frames for the duration of a call.
type Microphone interface {
	Start() error
	Stop()
	Frames() <-chan []byte
}

// Playback schedules caller speech for gapless output.
type Playback interface {
	Enqueue(pcm []byte)
	Speaking() bool
	Flush()
}

// RemoteSession is one live connection to the speech model.
type RemoteSession interface {
	SendAudio(ctx context.Context, pcm []byte) error
	Events() <-chan live.Event
	Close() error
}

// Dialer opens a remote session with the given caller persona.
type Dialer func(ctx context.Context, systemPrompt string) (RemoteSession, error)

// Coordinator drives one call at a time through the incoming, active and
// ended states. All methods are safe for concurrent use; the UI polls
// the snapshot accessors while the pump goroutines run.
type Coordinator struct {
	mic    Microphone
	player Playback
	dial   Dialer
	board  *dispatch.Board
	log    *logger.Logger

	mu       sync.Mutex
	status   domain.CallStatus
	scenario *domain.Scenario
	builder  *transcript.Builder
	data     domain.CallData
	session  RemoteSession
	cancel   context.CancelFunc
	result   *domain.CallResult

	wg sync.WaitGroup
}

// NewCoordinator wires the call hardware together. The coordinator
// starts idle in the ended state with no scenario.
func NewCoordinator(mic Microphone, player Playback, dial Dialer, board *dispatch.Board, log *logger.Logger) *Coordinator {
	return &Coordinator{
		mic:    mic,
		player: player,
		dial:   dial,
		board:  board,
		log:    log,
		status: domain.CallEnded,
	}
}

// Begin stages a new incoming call for the given scenario. The phone is
// ringing; nothing is live until Answer.
func (c *Coordinator) Begin(sc *domain.Scenario) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status == domain.CallActive {
		return domain.ErrCallInProgress
	}

	c.status = domain.CallIncoming
	c.scenario = sc
	c.builder = transcript.NewBuilder()
	c.data = domain.CallData{}
	c.result = nil
	c.board.Clear()
	c.log.Info("incoming call: %s (shift %d)", sc.Title, sc.Shift)
	return nil
}

// Answer connects the live session and opens the microphone. On any
// failure everything acquired so far is released and the call stays
// incoming, so the trainee can try answering again. If the call was
// ended while the dial was in flight, the session is released and the
// call stays ended.
func (c *Coordinator) Answer(ctx context.Context) error {
	c.mu.Lock()
	if c.status != domain.CallIncoming {
		c.mu.Unlock()
		return domain.ErrCallNotActive
	}
	prompt := c.scenario.CallerPrompt
	c.mu.Unlock()

	session, err := c.dial(ctx, prompt)
	if err != nil {
		return err
	}
	if err := c.mic.Start(); err != nil {
		session.Close()
		return err
	}

	pumpCtx, cancel := context.WithCancel(context.Background())

	c.mu.Lock()
	if c.status != domain.CallIncoming {
		// The trainee hung up while the dial was in flight. The sealed
		// result stands; release everything acquired here.
		c.mu.Unlock()
		cancel()
		c.mic.Stop()
		if err := session.Close(); err != nil {
			c.log.Warn("call: session close: %v", err)
		}
		return domain.ErrCallNotActive
	}
	c.session = session
	c.cancel = cancel
	c.status = domain.CallActive
	c.mu.Unlock()

	c.wg.Add(2)
	go c.pumpMic(pumpCtx, session)
	go c.pumpEvents(session)
	go c.board.Run(pumpCtx)

	c.log.Info("call answered")
	return nil
}

// pumpMic forwards microphone frames to the remote session. Send errors
// are logged and skipped; the session read side decides when it is dead.
func (c *Coordinator) pumpMic(ctx context.Context, session RemoteSession) {
	defer c.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-c.mic.Frames():
			if !ok {
				return
			}
			if err := session.SendAudio(ctx, frame); err != nil {
				if ctx.Err() != nil || errors.Is(err, live.ErrSessionClosed) {
					return
				}
				c.log.Warn("call: send audio: %v", err)
			}
		}
	}
}

// pumpEvents consumes the remote event stream until it closes: caller
// audio goes to the player, transcription fragments to the transcript.
func (c *Coordinator) pumpEvents(session RemoteSession) {
	defer c.wg.Done()

	for ev := range session.Events() {
		switch {
		case ev.Err != nil:
			// The call survives a dropped session; the trainee ends
			// it from the UI and the transcript so far still grades.
			c.log.Error("call: session error: %v", ev.Err)
		case len(ev.Audio) > 0:
			c.player.Enqueue(ev.Audio)
		case ev.OperatorText != "":
			c.addFragment(domain.SpeakerOperator, ev.OperatorText)
		case ev.CallerText != "":
			c.addFragment(domain.SpeakerCaller, ev.CallerText)
		case ev.TurnComplete:
			c.log.Debug("call: caller turn complete")
		}
	}
}

func (c *Coordinator) addFragment(sp domain.Speaker, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.builder != nil {
		c.builder.Add(sp, text)
	}
}

// End hangs up: releases the microphone and the session, flushes queued
// caller audio, clears the board, and seals the call result. Teardown
// keeps going past individual failures. Calling End again returns the
// same result.
func (c *Coordinator) End() *domain.CallResult {
	c.mu.Lock()
	if c.status == domain.CallEnded {
		result := c.result
		c.mu.Unlock()
		return result
	}
	session := c.session
	cancel := c.cancel
	c.session = nil
	c.cancel = nil
	c.mu.Unlock()

	c.mic.Stop()
	if cancel != nil {
		cancel()
	}
	if session != nil {
		if err := session.Close(); err != nil {
			c.log.Warn("call: session close: %v", err)
		}
	}
	c.wg.Wait()
	c.player.Flush()
	c.board.Clear()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = domain.CallEnded
	c.result = &domain.CallResult{
		Transcript: c.builder.Entries(),
		Data:       c.data.Clone(),
	}
	c.log.Info("call ended: %d transcript entries, %d units dispatched",
		len(c.result.Transcript), len(c.result.Data.Dispatched))
	return c.result
}

// ── Trainee actions ──────────────────────────────────────────────

// SetAddress records the logged address. A non-empty address locates the
// caller on the map; clearing it hides the location again.
func (c *Coordinator) SetAddress(addr string) {
	c.mu.Lock()
	c.data.Address = addr
	c.mu.Unlock()

	if addr != "" {
		c.board.Reveal()
	} else {
		c.board.Hide()
	}
}

// SetDescription records the incident description.
func (c *Coordinator) SetDescription(desc string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data.Description = desc
}

// SetNotes records free-form notes.
func (c *Coordinator) SetNotes(notes string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data.Notes = notes
}

// ToggleUnit dispatches or recalls a unit type, keeping the call record
// and the map in lockstep. Returns true if the unit is now dispatched.
func (c *Coordinator) ToggleUnit(t domain.UnitType) bool {
	dispatched := c.board.Toggle(t)

	c.mu.Lock()
	defer c.mu.Unlock()
	if dispatched {
		if !c.data.HasDispatched(t) {
			c.data.Dispatched = append(c.data.Dispatched, t)
		}
	} else {
		kept := c.data.Dispatched[:0]
		for _, u := range c.data.Dispatched {
			if u != t {
				kept = append(kept, u)
			}
		}
		c.data.Dispatched = kept
	}
	return dispatched
}

// ── Snapshots for the UI ─────────────────────────────────────────

// Status returns the current call state.
func (c *Coordinator) Status() domain.CallStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Scenario returns the staged scenario, nil when none is staged.
func (c *Coordinator) Scenario() *domain.Scenario {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scenario
}

// Transcript returns a snapshot of the coalesced transcript so far.
func (c *Coordinator) Transcript() []domain.TranscriptionEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.builder == nil {
		return nil
	}
	return c.builder.Entries()
}

// Data returns a snapshot of the trainee-entered call record.
func (c *Coordinator) Data() domain.CallData {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data.Clone()
}

// Speaking reports whether caller audio is currently playing.
func (c *Coordinator) Speaking() bool { return c.player.Speaking() }

// Board exposes the unit map for rendering.
func (c *Coordinator) Board() *dispatch.Board { return c.board }
