package live

// Wire types for the bidirectional generate-content websocket protocol.
// Client frames carry either the one-time setup or streamed audio; server
// frames carry synthesized audio plus incremental transcriptions of both
// sides of the conversation.

// ── Client frames ────────────────────────────────────────────────

// setupFrame is the first message on a new connection.
type setupFrame struct {
	Setup setupBody `json:"setup"`
}

type setupBody struct {
	Model                    string            `json:"model"`
	GenerationConfig         generationConfig  `json:"generationConfig"`
	SystemInstruction        *content          `json:"systemInstruction,omitempty"`
	InputAudioTranscription  *transcriptionCfg `json:"inputAudioTranscription,omitempty"`
	OutputAudioTranscription *transcriptionCfg `json:"outputAudioTranscription,omitempty"`
}

type generationConfig struct {
	ResponseModalities []string      `json:"responseModalities"`
	SpeechConfig       *speechConfig `json:"speechConfig,omitempty"`
}

type speechConfig struct {
	VoiceConfig voiceConfig `json:"voiceConfig"`
}

type voiceConfig struct {
	PrebuiltVoiceConfig prebuiltVoiceConfig `json:"prebuiltVoiceConfig"`
}

type prebuiltVoiceConfig struct {
	VoiceName string `json:"voiceName"`
}

// transcriptionCfg is empty; presence alone enables the feature.
type transcriptionCfg struct{}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"` // base64 PCM
}

// realtimeFrame streams microphone audio to the model mid-session.
type realtimeFrame struct {
	RealtimeInput realtimeInput `json:"realtimeInput"`
}

type realtimeInput struct {
	MediaChunks []inlineData `json:"mediaChunks"`
}

// ── Server frames ────────────────────────────────────────────────

// serverFrame is the envelope for every message the server sends.
type serverFrame struct {
	SetupComplete *struct{}      `json:"setupComplete,omitempty"`
	ServerContent *serverContent `json:"serverContent,omitempty"`
}

type serverContent struct {
	ModelTurn           *content       `json:"modelTurn,omitempty"`
	InputTranscription  *transcription `json:"inputTranscription,omitempty"`
	OutputTranscription *transcription `json:"outputTranscription,omitempty"`
	TurnComplete        bool           `json:"turnComplete,omitempty"`
}

type transcription struct {
	Text string `json:"text"`
}
