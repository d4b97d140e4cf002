package debrief

import (
	"context"

	"priorityone/internal/domain"
	"priorityone/internal/logger"
)

// Service runs the full debrief flow: grade the call, then voice the
// critique. It never fails outright; a broken analysis degrades to the
// fixed fallback review and a broken synthesis just drops the audio, so
// the trainee always reaches the debrief screen.
type Service struct {
	analyzer domain.CallAnalyzer
	speech   domain.SpeechSynthesizer
	log      *logger.Logger
}

// NewService creates a debrief service. speech may be nil to skip audio.
func NewService(analyzer domain.CallAnalyzer, speech domain.SpeechSynthesizer, log *logger.Logger) *Service {
	return &Service{analyzer: analyzer, speech: speech, log: log}
}

// Run grades the finished call and attaches spoken feedback.
func (s *Service) Run(ctx context.Context, result *domain.CallResult, sc *domain.Scenario) *domain.DebriefData {
	data, err := s.analyzer.Analyze(ctx, result, sc)
	if err != nil {
		s.log.Error("debrief: analysis failed: %v", err)
		return domain.DegradedDebrief()
	}

	if s.speech != nil {
		audio, err := s.speech.Synthesize(ctx, data.Feedback.OverallCritique)
		if err != nil {
			s.log.Warn("debrief: speech synthesis failed: %v", err)
		} else {
			data.Audio = audio
		}
	}
	return data
}
