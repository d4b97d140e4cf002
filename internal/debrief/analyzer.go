// Package debrief grades a finished call. A supervisor persona reviews
// the transcript and the trainee's actions over the generate-content
// REST API and returns structured feedback, which a second request turns
// into spoken audio.
package debrief

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"priorityone/internal/audio"
	"priorityone/internal/domain"
	"priorityone/internal/logger"
)

// ── Wire types ───────────────────────────────────────────────────

// generateRequest is the request body for a generateContent call.
type generateRequest struct {
	Contents          []reqContent  `json:"contents"`
	SystemInstruction *reqContent   `json:"systemInstruction,omitempty"`
	GenerationConfig  *reqGenConfig `json:"generationConfig,omitempty"`
}

type reqContent struct {
	Parts []reqPart `json:"parts"`
}

type reqPart struct {
	Text string `json:"text"`
}

type reqGenConfig struct {
	ResponseMimeType   string           `json:"responseMimeType,omitempty"`
	ResponseSchema     *schema          `json:"responseSchema,omitempty"`
	ResponseModalities []string         `json:"responseModalities,omitempty"`
	SpeechConfig       *reqSpeechConfig `json:"speechConfig,omitempty"`
}

type reqSpeechConfig struct {
	VoiceConfig reqVoiceConfig `json:"voiceConfig"`
}

type reqVoiceConfig struct {
	PrebuiltVoiceConfig reqPrebuiltVoice `json:"prebuiltVoiceConfig"`
}

type reqPrebuiltVoice struct {
	VoiceName string `json:"voiceName"`
}

// schema is a JSON-schema fragment for constrained model output.
type schema struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
}

// generateResponse is the response envelope.
type generateResponse struct {
	Candidates []candidate `json:"candidates"`
}

type candidate struct {
	Content struct {
		Parts []respPart `json:"parts"`
	} `json:"content"`
}

type respPart struct {
	Text       string `json:"text,omitempty"`
	InlineData *struct {
		MimeType string `json:"mimeType"`
		Data     string `json:"data"`
	} `json:"inlineData,omitempty"`
}

// analysisResult is the supervisor's structured verdict. Pointer fields
// surface missing keys as validation failures rather than zero values.
type analysisResult struct {
	Score             *int    `json:"score"`
	ResponseTime      *string `json:"responseTime"`
	DispatchAccuracy  *string `json:"dispatchAccuracy"`
	ToneManagement    *string `json:"toneManagement"`
	ProtocolAdherence *string `json:"protocolAdherence"`
	OverallCritique   *string `json:"overallCritique"`
}

// analysisSchema constrains the grading response. Descriptions steer the
// model toward useful critiques; the required list makes every field a
// hard contract.
var analysisSchema = &schema{
	Type: "OBJECT",
	Properties: map[string]*schema{
		"score": {
			Type:        "INTEGER",
			Description: "A score from 0 to 100 representing the dispatcher's performance. Be fair. A decent performance should be 70-85. A perfect performance is 100.",
		},
		"responseTime": {
			Type:        "STRING",
			Description: "Critique of the time taken. Example: 'Good job getting the address early. Next time, try to confirm the apartment number a bit sooner.'",
		},
		"dispatchAccuracy": {
			Type:        "STRING",
			Description: "Critique of the units dispatched. Example: 'Correctly dispatching ALS for a cardiac call was the right move. Good decision-making.'",
		},
		"toneManagement": {
			Type:        "STRING",
			Description: "Critique of the dispatcher's tone. Example: 'Your calm tone was effective. However, avoid unprofessional phrases like 'no worries'. Stick to 'I understand.''",
		},
		"protocolAdherence": {
			Type:        "STRING",
			Description: "Critique of their adherence to protocol. Example: 'You covered all the Six W's, which is great. You just need to work on the flow.'",
		},
		"overallCritique": {
			Type:        "STRING",
			Description: "A final, encouraging but constructive summary. Example: 'Overall, a solid performance. You made the right calls. Focus on refining your language. You're on the right track.'",
		},
	},
	Required: []string{"score", "responseTime", "dispatchAccuracy", "toneManagement", "protocolAdherence", "overallCritique"},
}

// ── Client ───────────────────────────────────────────────────────

const (
	// DefaultBaseURL is the generative language REST API root.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	// DefaultAnalysisModel grades the call.
	DefaultAnalysisModel = "gemini-2.5-pro"

	// DefaultTTSModel speaks the critique.
	DefaultTTSModel = "gemini-2.5-flash-preview-tts"

	// DefaultVoice is the supervisor voice preset.
	DefaultVoice = "Charon"
)

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL overrides the API root, used by tests.
func WithBaseURL(url string) ClientOption {
	return func(c *Client) { c.baseURL = strings.TrimRight(url, "/") }
}

// WithAnalysisModel overrides the grading model.
func WithAnalysisModel(model string) ClientOption {
	return func(c *Client) { c.analysisModel = model }
}

// WithTTSModel overrides the speech model.
func WithTTSModel(model string) ClientOption {
	return func(c *Client) { c.ttsModel = model }
}

// WithVoice overrides the supervisor voice preset.
func WithVoice(voice string) ClientOption {
	return func(c *Client) { c.voice = voice }
}

// WithHTTPTimeout sets the HTTP client timeout.
func WithHTTPTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.http.Timeout = d }
}

// Client talks to the generate-content REST API for grading and speech.
type Client struct {
	baseURL       string
	apiKey        string
	analysisModel string
	ttsModel      string
	voice         string
	http          *http.Client
	log           *logger.Logger
}

// Compile-time interface checks.
var (
	_ domain.CallAnalyzer      = (*Client)(nil)
	_ domain.SpeechSynthesizer = (*Client)(nil)
)

// NewClient creates a debrief client. Grading requests can take a while
// on the larger model, so the default timeout is generous.
func NewClient(apiKey string, log *logger.Logger, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:       DefaultBaseURL,
		apiKey:        apiKey,
		analysisModel: DefaultAnalysisModel,
		ttsModel:      DefaultTTSModel,
		voice:         DefaultVoice,
		http:          &http.Client{Timeout: 90 * time.Second},
		log:           log,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Analyze submits the finished call for grading and returns the
// supervisor's verdict. Any missing field in the model's reply is a hard
// failure; callers fall back to the degraded debrief.
func (c *Client) Analyze(ctx context.Context, result *domain.CallResult, sc *domain.Scenario) (*domain.DebriefData, error) {
	req := generateRequest{
		Contents:          []reqContent{{Parts: []reqPart{{Text: buildUserPrompt(result, sc)}}}},
		SystemInstruction: &reqContent{Parts: []reqPart{{Text: supervisorPrompt}}},
		GenerationConfig: &reqGenConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   analysisSchema,
		},
	}

	text, err := c.generateText(ctx, c.analysisModel, req)
	if err != nil {
		return nil, err
	}

	var verdict analysisResult
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &verdict); err != nil {
		return nil, fmt.Errorf("debrief: unmarshal verdict: %w", err)
	}
	if err := verdict.validate(); err != nil {
		return nil, fmt.Errorf("debrief: incomplete verdict: %w", err)
	}

	score := *verdict.Score
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	c.log.Info("call graded: score=%d", score)
	return &domain.DebriefData{
		Score: score,
		Feedback: domain.Feedback{
			ResponseTime:      *verdict.ResponseTime,
			DispatchAccuracy:  *verdict.DispatchAccuracy,
			ToneManagement:    *verdict.ToneManagement,
			ProtocolAdherence: *verdict.ProtocolAdherence,
			OverallCritique:   *verdict.OverallCritique,
		},
	}, nil
}

// validate rejects a verdict with any missing field.
func (r *analysisResult) validate() error {
	missing := func(name string) error { return fmt.Errorf("missing field %q", name) }
	switch {
	case r.Score == nil:
		return missing("score")
	case r.ResponseTime == nil:
		return missing("responseTime")
	case r.DispatchAccuracy == nil:
		return missing("dispatchAccuracy")
	case r.ToneManagement == nil:
		return missing("toneManagement")
	case r.ProtocolAdherence == nil:
		return missing("protocolAdherence")
	case r.OverallCritique == nil:
		return missing("overallCritique")
	}
	return nil
}

// Synthesize renders the critique as supervisor speech and returns raw
// 24 kHz mono PCM16.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if text == "" {
		return nil, fmt.Errorf("debrief: nothing to synthesize")
	}

	req := generateRequest{
		Contents: []reqContent{{Parts: []reqPart{{Text: speechTone + text}}}},
		GenerationConfig: &reqGenConfig{
			ResponseModalities: []string{"AUDIO"},
			SpeechConfig: &reqSpeechConfig{
				VoiceConfig: reqVoiceConfig{
					PrebuiltVoiceConfig: reqPrebuiltVoice{VoiceName: c.voice},
				},
			},
		},
	}

	resp, err := c.generate(ctx, c.ttsModel, req)
	if err != nil {
		return nil, err
	}
	for _, cand := range resp.Candidates {
		for _, p := range cand.Content.Parts {
			if p.InlineData != nil && p.InlineData.Data != "" {
				return audio.DecodeChunk(p.InlineData.Data)
			}
		}
	}
	return nil, fmt.Errorf("debrief: no audio in TTS response")
}

// generateText runs a request and returns the first text part.
func (c *Client) generateText(ctx context.Context, model string, req generateRequest) (string, error) {
	resp, err := c.generate(ctx, model, req)
	if err != nil {
		return "", err
	}
	for _, cand := range resp.Candidates {
		for _, p := range cand.Content.Parts {
			if p.Text != "" {
				return p.Text, nil
			}
		}
	}
	return "", fmt.Errorf("debrief: empty response from %s", model)
}

// generate POSTs one generateContent request.
func (c *Client) generate(ctx context.Context, model string, body generateRequest) (*generateResponse, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("debrief: marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("debrief: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.log.Debug("debrief: POST %s:generateContent (%d bytes)", model, len(jsonData))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("debrief: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("debrief: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("debrief: API %s\n%s", resp.Status, string(respBody))
	}

	var out generateResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("debrief: unmarshal response: %w", err)
	}
	if len(out.Candidates) == 0 {
		return nil, fmt.Errorf("debrief: empty response (no candidates)")
	}
	return &out, nil
}
