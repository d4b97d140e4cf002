package scenario

import (
	"context"
	"testing"

	"priorityone/internal/domain"
	"priorityone/internal/logger"
)

func TestCatalogList(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	cat := NewCatalog(log)
	ctx := context.Background()

	scenarios, err := cat.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(scenarios) != 5 {
		t.Fatalf("expected 5 scenarios, got %d", len(scenarios))
	}
	// Ordered by shift, tutorial first.
	for i, s := range scenarios {
		if s.Shift != i {
			t.Errorf("scenario %d: expected shift %d, got %d", i, i, s.Shift)
		}
	}
}

func TestCatalogGet(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	cat := NewCatalog(log)
	ctx := context.Background()

	tests := []struct {
		id      string
		wantErr error
	}{
		{"tutorial", nil},
		{"shift2_cardiac", nil},
		{"shift4_mci", nil},
		{"nonexistent", domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			s, err := cat.Get(ctx, tt.id)
			if tt.wantErr != nil {
				if err != tt.wantErr {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if s.ID != tt.id {
				t.Fatalf("expected ID %s, got %s", tt.id, s.ID)
			}
			if s.CallerPrompt == "" {
				t.Fatal("scenario has no caller prompt")
			}
			if len(s.RequiredUnits) == 0 {
				t.Fatal("scenario has no required units")
			}
		})
	}
}

func TestCatalogForShift(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	cat := NewCatalog(log)
	ctx := context.Background()

	tests := []struct {
		shift    int
		wantID   string
		tutorial bool
		wantErr  error
	}{
		{0, "tutorial", true, nil},
		{1, "shift1_noise", false, nil},
		{4, "shift4_mci", false, nil},
		{9, "", false, domain.ErrNotFound},
	}

	for _, tt := range tests {
		s, err := cat.ForShift(ctx, tt.shift)
		if tt.wantErr != nil {
			if err != tt.wantErr {
				t.Fatalf("shift %d: expected %v, got %v", tt.shift, tt.wantErr, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("shift %d: unexpected error: %v", tt.shift, err)
		}
		if s.ID != tt.wantID {
			t.Errorf("shift %d: expected %s, got %s", tt.shift, tt.wantID, s.ID)
		}
		if s.IsTutorial() != tt.tutorial {
			t.Errorf("shift %d: IsTutorial = %v, want %v", tt.shift, s.IsTutorial(), tt.tutorial)
		}
	}
}
