package live

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"nhooyr.io/websocket"

	"priorityone/internal/audio"
	"priorityone/internal/logger"
)

// fakeModel is a minimal server side of the protocol: it validates the
// setup frame, acks it, echoes scripted content, then waits for close.
func fakeModel(t *testing.T, script []serverFrame, gotAudio chan<- []byte) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") == "" {
			t.Error("missing api key in query")
		}

		c, err := websocket.Accept(w, r, nil)
		if err != nil {
			t.Errorf("accept: %v", err)
			return
		}
		defer c.CloseNow()
		c.SetReadLimit(readLimit)

		ctx := r.Context()

		_, data, err := c.Read(ctx)
		if err != nil {
			t.Errorf("read setup: %v", err)
			return
		}
		var setup setupFrame
		if err := json.Unmarshal(data, &setup); err != nil {
			t.Errorf("unmarshal setup: %v", err)
			return
		}
		if setup.Setup.Model != DefaultModel {
			t.Errorf("setup model = %q", setup.Setup.Model)
		}
		if got := setup.Setup.GenerationConfig.SpeechConfig.VoiceConfig.PrebuiltVoiceConfig.VoiceName; got != DefaultVoice {
			t.Errorf("setup voice = %q", got)
		}
		if setup.Setup.InputAudioTranscription == nil || setup.Setup.OutputAudioTranscription == nil {
			t.Error("transcription not enabled in setup")
		}

		ack, _ := json.Marshal(map[string]any{"setupComplete": map[string]any{}})
		if err := c.Write(ctx, websocket.MessageText, ack); err != nil {
			t.Errorf("write ack: %v", err)
			return
		}

		if gotAudio != nil {
			_, data, err := c.Read(ctx)
			if err != nil {
				t.Errorf("read realtime: %v", err)
				return
			}
			var rt realtimeFrame
			if err := json.Unmarshal(data, &rt); err != nil {
				t.Errorf("unmarshal realtime: %v", err)
				return
			}
			if len(rt.RealtimeInput.MediaChunks) != 1 {
				t.Errorf("expected 1 media chunk, got %d", len(rt.RealtimeInput.MediaChunks))
				return
			}
			chunk := rt.RealtimeInput.MediaChunks[0]
			if chunk.MimeType != captureMime {
				t.Errorf("chunk mime = %q", chunk.MimeType)
			}
			pcm, err := audio.DecodeChunk(chunk.Data)
			if err != nil {
				t.Errorf("decode chunk: %v", err)
				return
			}
			gotAudio <- pcm
		}

		for _, frame := range script {
			data, _ := json.Marshal(frame)
			if err := c.Write(ctx, websocket.MessageText, data); err != nil {
				return
			}
		}

		// Hold the connection open, draining client frames, until the
		// client closes it.
		for {
			if _, _, err := c.Read(ctx); err != nil {
				return
			}
		}
	}
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dialTest(t *testing.T, srv *httptest.Server) *Session {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	log := logger.New(logger.LevelOff, nil)
	s, err := Dial(ctx, "test-key", "You are a panicked caller.", log, WithEndpoint(wsURL(srv)))
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestDialPerformsSetupHandshake(t *testing.T) {
	srv := httptest.NewServer(fakeModel(t, nil, nil))
	defer srv.Close()

	s := dialTest(t, srv)
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestSendAudioAndReceiveEvents(t *testing.T) {
	callerPCM := []byte{0x01, 0x02, 0x03, 0x04}
	script := []serverFrame{
		{ServerContent: &serverContent{
			ModelTurn: &content{Parts: []part{{InlineData: &inlineData{
				MimeType: "audio/pcm;rate=24000",
				Data:     audio.EncodeChunk(callerPCM),
			}}}},
		}},
		{ServerContent: &serverContent{
			InputTranscription: &transcription{Text: "911, what's your "},
		}},
		{ServerContent: &serverContent{
			OutputTranscription: &transcription{Text: "Please hurry!"},
		}},
		{ServerContent: &serverContent{TurnComplete: true}},
	}

	gotAudio := make(chan []byte, 1)
	srv := httptest.NewServer(fakeModel(t, script, gotAudio))
	defer srv.Close()

	s := dialTest(t, srv)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	micPCM := []byte{0xAA, 0xBB, 0xCC, 0xDD}
	if err := s.SendAudio(ctx, micPCM); err != nil {
		t.Fatalf("SendAudio: %v", err)
	}

	select {
	case pcm := <-gotAudio:
		if string(pcm) != string(micPCM) {
			t.Fatalf("server received %v, sent %v", pcm, micPCM)
		}
	case <-ctx.Done():
		t.Fatal("server never received audio")
	}

	var events []Event
	for ev := range s.Events() {
		if ev.Err != nil {
			t.Fatalf("unexpected event error: %v", ev.Err)
		}
		events = append(events, ev)
		if ev.TurnComplete {
			break
		}
	}

	if len(events) != 4 {
		t.Fatalf("expected 4 events, got %d: %+v", len(events), events)
	}
	if string(events[0].Audio) != string(callerPCM) {
		t.Errorf("audio event = %v", events[0].Audio)
	}
	if events[1].OperatorText != "911, what's your " {
		t.Errorf("operator fragment = %q", events[1].OperatorText)
	}
	if events[2].CallerText != "Please hurry!" {
		t.Errorf("caller fragment = %q", events[2].CallerText)
	}
}

func TestCloseIsIdempotentAndEndsEventStream(t *testing.T) {
	srv := httptest.NewServer(fakeModel(t, nil, nil))
	defer srv.Close()

	s := dialTest(t, srv)
	if err := s.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	select {
	case _, ok := <-s.Events():
		if ok {
			t.Fatal("expected closed event channel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("event channel never closed")
	}

	ctx := context.Background()
	if err := s.SendAudio(ctx, []byte{0x00}); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("SendAudio after Close = %v, want ErrSessionClosed", err)
	}
}

// A send that loses the race with Close must come back as the closed
// sentinel rather than a raw connection error.
func TestSendAudioDuringCloseReportsSessionClosed(t *testing.T) {
	srv := httptest.NewServer(fakeModel(t, nil, nil))
	defer srv.Close()

	s := dialTest(t, srv)
	done := make(chan struct{})
	go func() {
		defer close(done)
		ctx := context.Background()
		for i := 0; i < 200; i++ {
			if err := s.SendAudio(ctx, []byte{0x00}); err != nil {
				if !errors.Is(err, ErrSessionClosed) {
					t.Errorf("concurrent SendAudio = %v, want ErrSessionClosed", err)
				}
				return
			}
		}
	}()

	s.Close()
	<-done
}

func TestDialRejectsBadAck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer c.CloseNow()
		c.Read(r.Context())
		bad, _ := json.Marshal(map[string]any{"serverContent": map[string]any{"turnComplete": true}})
		c.Write(r.Context(), websocket.MessageText, bad)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	log := logger.New(logger.LevelOff, nil)
	if _, err := Dial(ctx, "test-key", "prompt", log, WithEndpoint(wsURL(srv))); err == nil {
		t.Fatal("Dial should fail on a non-ack first frame")
	}
}
