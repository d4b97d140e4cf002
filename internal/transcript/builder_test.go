package transcript

import (
	"testing"

	"priorityone/internal/domain"
)

func TestBuilderCoalescesSameSpeaker(t *testing.T) {
	b := NewBuilder()
	b.Add(domain.SpeakerOperator, "911, what is ")
	b.Add(domain.SpeakerOperator, "the address ")
	b.Add(domain.SpeakerOperator, "of the emergency?")

	entries := b.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected 1 coalesced entry, got %d", len(entries))
	}
	if entries[0].Text != "911, what is the address of the emergency?" {
		t.Fatalf("unexpected coalesced text: %q", entries[0].Text)
	}
	if entries[0].Speaker != domain.SpeakerOperator {
		t.Fatalf("unexpected speaker: %s", entries[0].Speaker)
	}
}

func TestBuilderAlternatingSpeakers(t *testing.T) {
	b := NewBuilder()
	b.Add(domain.SpeakerOperator, "911, what is your emergency?")
	b.Add(domain.SpeakerCaller, "My neighbor ")
	b.Add(domain.SpeakerCaller, "hasn't been seen in days.")
	b.Add(domain.SpeakerOperator, "What is the address?")
	b.Add(domain.SpeakerCaller, "123 Maple Street.")

	entries := b.Entries()
	want := []domain.TranscriptionEntry{
		{Speaker: domain.SpeakerOperator, Text: "911, what is your emergency?"},
		{Speaker: domain.SpeakerCaller, Text: "My neighbor hasn't been seen in days."},
		{Speaker: domain.SpeakerOperator, Text: "What is the address?"},
		{Speaker: domain.SpeakerCaller, Text: "123 Maple Street."},
	}
	if len(entries) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(entries))
	}
	for i := range want {
		if entries[i] != want[i] {
			t.Errorf("entry %d: got %+v, want %+v", i, entries[i], want[i])
		}
	}
}

func TestBuilderReturnsToEarlierSpeakerOpensNewEntry(t *testing.T) {
	b := NewBuilder()
	b.Add(domain.SpeakerCaller, "Help!")
	b.Add(domain.SpeakerOperator, "I'm here.")
	b.Add(domain.SpeakerCaller, "He's not breathing!")

	entries := b.Entries()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Text != "Help!" || entries[2].Text != "He's not breathing!" {
		t.Fatalf("caller fragments must not merge across the operator turn: %+v", entries)
	}
}

func TestBuilderIgnoresEmptyFragments(t *testing.T) {
	b := NewBuilder()
	b.Add(domain.SpeakerCaller, "")
	if b.Len() != 0 {
		t.Fatalf("empty fragment created an entry")
	}
	b.Add(domain.SpeakerCaller, "hello")
	b.Add(domain.SpeakerCaller, "")
	if got := b.Entries()[0].Text; got != "hello" {
		t.Fatalf("empty fragment mutated entry: %q", got)
	}
}

func TestBuilderEntriesIsACopy(t *testing.T) {
	b := NewBuilder()
	b.Add(domain.SpeakerOperator, "original")
	entries := b.Entries()
	entries[0].Text = "mutated"
	if b.Entries()[0].Text != "original" {
		t.Fatal("Entries must return an independent copy")
	}
}

func TestFormat(t *testing.T) {
	entries := []domain.TranscriptionEntry{
		{Speaker: domain.SpeakerOperator, Text: "911."},
		{Speaker: domain.SpeakerCaller, Text: "There's a fire."},
	}
	want := "OPERATOR: 911.\nCALLER: There's a fire."
	if got := Format(entries); got != want {
		t.Fatalf("Format = %q, want %q", got, want)
	}
	if got := Format(nil); got != "" {
		t.Fatalf("Format(nil) = %q, want empty", got)
	}
}
