// Package transcript accumulates the live call history from streamed
// transcription fragments.
package transcript

import (
	"slices"
	"strings"
	"sync"

	"priorityone/internal/domain"
)

// Builder coalesces transcription fragments into ordered entries.
//
// It is a small explicit state machine: at most one entry is "open" at a
// time. Fragments from the open entry's speaker append to it; a fragment
// from the other speaker closes it and opens a new one. Entry order is
// arrival order.
type Builder struct {
	mu      sync.Mutex
	entries []domain.TranscriptionEntry
	open    bool // entries[len-1] is still accepting fragments
}

// NewBuilder creates an empty transcript builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Add appends a transcription fragment for the given speaker. Empty
// fragments are ignored.
func (b *Builder) Add(speaker domain.Speaker, fragment string) {
	if fragment == "" {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.open {
		last := &b.entries[len(b.entries)-1]
		if last.Speaker == speaker {
			last.Text += fragment
			return
		}
	}
	b.entries = append(b.entries, domain.TranscriptionEntry{Speaker: speaker, Text: fragment})
	b.open = true
}

// Entries returns a copy of the coalesced call history in arrival order.
func (b *Builder) Entries() []domain.TranscriptionEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.entries)
}

// Len returns the number of coalesced entries so far.
func (b *Builder) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

// Format renders the transcript as speaker-labelled lines for the
// debrief request.
func Format(entries []domain.TranscriptionEntry) string {
	var sb strings.Builder
	for i, e := range entries {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(strings.ToUpper(string(e.Speaker)))
		sb.WriteString(": ")
		sb.WriteString(e.Text)
	}
	return sb.String()
}
