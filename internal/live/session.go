// Package live maintains a bidirectional websocket session with the
// conversational speech model: microphone PCM goes up, synthesized
// caller audio and incremental transcriptions of both speakers come
// back down.
package live

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"nhooyr.io/websocket"

	"priorityone/internal/audio"
	"priorityone/internal/logger"
)

const (
	// DefaultEndpoint is the bidirectional generate-content websocket.
	DefaultEndpoint = "wss://generativelanguage.googleapis.com/ws/google.ai.generativelanguage.v1beta.GenerativeService.BidiGenerateContent"

	// DefaultModel is the native-audio conversational model.
	DefaultModel = "models/gemini-2.5-flash-native-audio-preview-09-2025"

	// DefaultVoice is the caller voice preset.
	DefaultVoice = "Zephyr"

	captureMime = "audio/pcm;rate=16000"

	// Server frames carry base64 audio well past the websocket
	// library's 32 KiB default read limit.
	readLimit = 1 << 24
)

// ErrSessionClosed reports a send attempted on a closed session.
var ErrSessionClosed = errors.New("live: session closed")

// Event is one message from the remote session. Exactly one of the
// content fields is meaningful per event, except Err, which is terminal:
// the event channel closes after it is delivered.
type Event struct {
	Audio        []byte // 24 kHz mono PCM16 caller speech
	OperatorText string // transcription fragment of the trainee
	CallerText   string // transcription fragment of the simulated caller
	TurnComplete bool
	Err          error
}

// Option configures a Session before dialing.
type Option func(*Session)

// WithModel overrides the conversational model.
func WithModel(model string) Option {
	return func(s *Session) { s.model = model }
}

// WithVoice overrides the caller voice preset.
func WithVoice(voice string) Option {
	return func(s *Session) { s.voice = voice }
}

// WithEndpoint overrides the websocket endpoint, used by tests.
func WithEndpoint(endpoint string) Option {
	return func(s *Session) { s.endpoint = endpoint }
}

// WithEventBuffer sets the event channel capacity.
func WithEventBuffer(n int) Option {
	return func(s *Session) { s.events = make(chan Event, n) }
}

// Session is one live call to the speech model. Create with Dial; events
// arrive on Events until the session ends or Close is called.
type Session struct {
	endpoint string
	model    string
	voice    string
	log      *logger.Logger

	conn   *websocket.Conn
	events chan Event
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
}

// Dial connects, configures the session with the given system prompt,
// and waits for the server's setup acknowledgement before returning.
// The caller persona and voice are fixed for the life of the session.
func Dial(ctx context.Context, apiKey, systemPrompt string, log *logger.Logger, opts ...Option) (*Session, error) {
	s := &Session{
		endpoint: DefaultEndpoint,
		model:    DefaultModel,
		voice:    DefaultVoice,
		log:      log,
		events:   make(chan Event, 64),
	}
	for _, opt := range opts {
		opt(s)
	}

	url := s.endpoint + "?key=" + apiKey
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("live: dial: %w", err)
	}
	conn.SetReadLimit(readLimit)
	s.conn = conn

	setup := setupFrame{Setup: setupBody{
		Model: s.model,
		GenerationConfig: generationConfig{
			ResponseModalities: []string{"AUDIO"},
			SpeechConfig: &speechConfig{
				VoiceConfig: voiceConfig{
					PrebuiltVoiceConfig: prebuiltVoiceConfig{VoiceName: s.voice},
				},
			},
		},
		SystemInstruction:        &content{Parts: []part{{Text: systemPrompt}}},
		InputAudioTranscription:  &transcriptionCfg{},
		OutputAudioTranscription: &transcriptionCfg{},
	}}
	if err := s.write(ctx, setup); err != nil {
		conn.Close(websocket.StatusInternalError, "setup failed")
		return nil, fmt.Errorf("live: send setup: %w", err)
	}

	// The server acknowledges setup before any content flows.
	frame, err := s.read(ctx)
	if err != nil {
		conn.Close(websocket.StatusInternalError, "setup failed")
		return nil, fmt.Errorf("live: await setup ack: %w", err)
	}
	if frame.SetupComplete == nil {
		conn.Close(websocket.StatusProtocolError, "unexpected frame")
		return nil, fmt.Errorf("live: expected setup ack, got %+v", frame)
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go s.readLoop(loopCtx)

	s.log.Info("live session open (model=%s, voice=%s)", s.model, s.voice)
	return s, nil
}

// Events returns the server event stream. Closed when the session ends.
func (s *Session) Events() <-chan Event {
	return s.events
}

// SendAudio streams one microphone frame of 16 kHz mono PCM16. Returns
// ErrSessionClosed once Close has run, even when Close and the send
// interleave.
func (s *Session) SendAudio(ctx context.Context, pcm []byte) error {
	if s.isClosed() {
		return ErrSessionClosed
	}

	frame := realtimeFrame{RealtimeInput: realtimeInput{
		MediaChunks: []inlineData{{
			MimeType: captureMime,
			Data:     audio.EncodeChunk(pcm),
		}},
	}}
	if err := s.write(ctx, frame); err != nil {
		// Close may have taken the connection down after the check
		// above; report that as the closed sentinel, not a wire error.
		if s.isClosed() {
			return ErrSessionClosed
		}
		return err
	}
	return nil
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close tears down the session. Safe to call more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	err := s.conn.Close(websocket.StatusNormalClosure, "call ended")
	s.log.Info("live session closed")
	return err
}

// write marshals and sends one client frame.
func (s *Session) write(ctx context.Context, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal frame: %w", err)
	}
	return s.conn.Write(ctx, websocket.MessageText, data)
}

// read blocks for one server frame.
func (s *Session) read(ctx context.Context) (*serverFrame, error) {
	_, data, err := s.conn.Read(ctx)
	if err != nil {
		return nil, err
	}
	var frame serverFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		return nil, fmt.Errorf("unmarshal frame: %w", err)
	}
	return &frame, nil
}

// readLoop pumps server frames into the event channel until the
// connection drops or Close cancels the context.
func (s *Session) readLoop(ctx context.Context) {
	defer close(s.events)

	for {
		frame, err := s.read(ctx)
		if err != nil {
			if s.isClosed() || ctx.Err() != nil {
				return
			}
			s.log.Error("live: read: %v", err)
			s.deliver(ctx, Event{Err: err})
			return
		}
		if frame.ServerContent == nil {
			continue
		}
		s.dispatch(ctx, frame.ServerContent)
	}
}

// dispatch fans one server content frame out as events.
func (s *Session) dispatch(ctx context.Context, sc *serverContent) {
	if sc.ModelTurn != nil {
		for _, p := range sc.ModelTurn.Parts {
			if p.InlineData == nil || p.InlineData.Data == "" {
				continue
			}
			pcm, err := audio.DecodeChunk(p.InlineData.Data)
			if err != nil {
				s.log.Warn("live: bad audio chunk: %v", err)
				continue
			}
			s.deliver(ctx, Event{Audio: pcm})
		}
	}
	if sc.InputTranscription != nil && sc.InputTranscription.Text != "" {
		s.deliver(ctx, Event{OperatorText: sc.InputTranscription.Text})
	}
	if sc.OutputTranscription != nil && sc.OutputTranscription.Text != "" {
		s.deliver(ctx, Event{CallerText: sc.OutputTranscription.Text})
	}
	if sc.TurnComplete {
		s.deliver(ctx, Event{TurnComplete: true})
	}
}

// deliver sends an event unless the session is shutting down.
func (s *Session) deliver(ctx context.Context, ev Event) {
	select {
	case s.events <- ev:
	case <-ctx.Done():
	}
}
