package debrief

import (
	"fmt"
	"strings"

	"priorityone/internal/domain"
	"priorityone/internal/transcript"
)

// supervisorPrompt is the grading persona. The response schema attached
// to the request forces the JSON shape; this sets the judgement.
const supervisorPrompt = `
You are Field Training Officer (FTO) Miller, an experienced and respected 911 dispatch trainer.
Your job is to provide constructive feedback to a rookie dispatcher based on a call transcript and the actions they took.
Your tone should be firm, fair, and educational. Acknowledge successes but be clear about areas that need improvement. The goal is to build a competent dispatcher, not to break their spirit.
Evaluate the following, providing both a positive and a negative point if applicable:
1.  **Response Time**: Did they get the critical information (address, nature of emergency) promptly? Were there any delays?
2.  **Dispatch Accuracy**: Did they send the right units? Was their choice of ALS vs BLS correct for the situation?
3.  **Tone Management**: How was their tone? Did it help or hinder the call? Did they remain professional?
4.  **Protocol Adherence**: Did they follow the "Six W's" (Who, What, Where, When, Why, Weapons)? Did they miss any steps?
5.  **Overall Critique**: A final summary that balances positive reinforcement with actionable advice for the next call.

Based on the provided scenario and transcript, return a JSON object with your analysis.
`

// speechTone prefixes the spoken critique so the TTS model delivers it
// like a supervisor, not a narrator.
const speechTone = "Say with a calm, professional, and instructive tone: "

// buildUserPrompt assembles the grading request body: what the scenario
// demanded, what the trainee logged and dispatched, and the full call.
func buildUserPrompt(result *domain.CallResult, sc *domain.Scenario) string {
	units := "None"
	if len(result.Data.Dispatched) > 0 {
		names := make([]string, len(result.Data.Dispatched))
		for i, u := range result.Data.Dispatched {
			names[i] = string(u)
		}
		units = strings.Join(names, ", ")
	}

	required := make([]string, len(sc.RequiredUnits))
	for i, u := range sc.RequiredUnits {
		required[i] = string(u)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**Scenario:** %s - %s\n", sc.Title, sc.CallerPrompt)
	fmt.Fprintf(&b, "**Required Actions:** %s\n", strings.Join(required, ", "))
	b.WriteString("---\n**Dispatcher Actions:**\n")
	fmt.Fprintf(&b, "- Address Logged: %s\n", result.Data.Address)
	fmt.Fprintf(&b, "- Description: %s\n", result.Data.Description)
	fmt.Fprintf(&b, "- Notes: %s\n", result.Data.Notes)
	fmt.Fprintf(&b, "- Units Dispatched: %s\n", units)
	b.WriteString("---\n**Call Transcript:**\n")
	b.WriteString(transcript.Format(result.Transcript))
	return b.String()
}
