// Package dispatch simulates the unit map for one call: dispatched units
// spawn at the map edge and close on the caller location every tick until
// they arrive on scene.
package dispatch

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"slices"
	"sync"
	"time"

	"priorityone/internal/domain"
	"priorityone/internal/logger"
)

// Option configures the board.
type Option func(*Board)

// WithTickInterval sets how often Run advances the simulation.
func WithTickInterval(d time.Duration) Option {
	return func(b *Board) {
		b.tickInterval = d
	}
}

// WithRand sets the random source, used by tests for determinism.
func WithRand(rnd *rand.Rand) Option {
	return func(b *Board) {
		b.rnd = rnd
	}
}

// WithApproachRate sets the fraction of the remaining distance a unit
// covers per tick.
func WithApproachRate(rate float64) Option {
	return func(b *Board) {
		b.approachRate = rate
	}
}

// WithArrivalRadius sets how close a unit must get before it is on scene.
func WithArrivalRadius(radius float64) Option {
	return func(b *Board) {
		b.arrivalRadius = radius
	}
}

// Board owns the per-call map state. All methods are safe for concurrent
// use; the UI reads snapshots while Run ticks in the background.
type Board struct {
	log           *logger.Logger
	tickInterval  time.Duration
	approachRate  float64
	arrivalRadius float64

	mu       sync.Mutex
	rnd      *rand.Rand
	units    []domain.MapUnit
	caller   domain.Location
	located  bool // caller location generated for this call
	revealed bool // caller location currently shown, units may move
}

// New creates an empty board.
func New(log *logger.Logger, opts ...Option) *Board {
	b := &Board{
		log:           log,
		tickInterval:  100 * time.Millisecond,
		approachRate:  0.03,
		arrivalRadius: 5,
		rnd:           rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Reveal marks the caller location as known. The location is generated
// once per call; revealing again after a Hide shows the same spot.
func (b *Board) Reveal() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.located {
		// Keep the scene away from the edges so approaching units
		// are visible for a while.
		b.caller = domain.Location{
			X: 20 + b.rnd.Float64()*60,
			Y: 20 + b.rnd.Float64()*60,
		}
		b.located = true
		b.log.Debug("caller located at (%.1f, %.1f)", b.caller.X, b.caller.Y)
	}
	b.revealed = true
}

// Hide removes the caller location from the map, freezing unit movement.
// The generated location is kept for a later Reveal.
func (b *Board) Hide() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.revealed = false
}

// CallerLocation returns the caller position and whether it is shown.
func (b *Board) CallerLocation() (domain.Location, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.caller, b.revealed
}

// Toggle dispatches the given unit type, or recalls it if already out.
// Returns true if the unit is dispatched after the call.
func (b *Board) Toggle(t domain.UnitType) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, u := range b.units {
		if u.Type == t {
			b.units = slices.Delete(b.units, i, i+1)
			b.log.Info("unit recalled: %s", t)
			return false
		}
	}

	u := domain.MapUnit{
		ID:     fmt.Sprintf("%s-%d", t, time.Now().UnixMilli()),
		Type:   t,
		Pos:    b.spawnPoint(),
		Status: domain.UnitEnroute,
	}
	b.units = append(b.units, u)
	b.log.Info("unit dispatched: %s from (%.1f, %.1f)", t, u.Pos.X, u.Pos.Y)
	return true
}

// spawnPoint picks a random point just off one of the four map edges.
// Caller must hold b.mu.
func (b *Board) spawnPoint() domain.Location {
	along := b.rnd.Float64() * 100
	switch b.rnd.Intn(4) {
	case 0:
		return domain.Location{X: along, Y: -5}
	case 1:
		return domain.Location{X: 105, Y: along}
	case 2:
		return domain.Location{X: along, Y: 105}
	default:
		return domain.Location{X: -5, Y: along}
	}
}

// Dispatched reports whether the given unit type is currently out.
func (b *Board) Dispatched(t domain.UnitType) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, u := range b.units {
		if u.Type == t {
			return true
		}
	}
	return false
}

// Units returns a snapshot of the current unit markers.
func (b *Board) Units() []domain.MapUnit {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.units)
}

// Tick advances every enroute unit toward the caller by the approach
// rate. A no-op until the caller location is revealed; units hold at the
// edge with no destination to drive to.
func (b *Board) Tick() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.revealed {
		return
	}

	for i := range b.units {
		u := &b.units[i]
		if u.Status != domain.UnitEnroute {
			continue
		}

		dx := b.caller.X - u.Pos.X
		dy := b.caller.Y - u.Pos.Y
		dist := math.Hypot(dx, dy)
		if dist <= b.arrivalRadius {
			u.Status = domain.UnitOnScene
			b.log.Info("unit on scene: %s", u.Type)
			continue
		}

		u.Pos.X += dx * b.approachRate
		u.Pos.Y += dy * b.approachRate
	}
}

// Run ticks the simulation until ctx is cancelled. Blocking; callers run
// it in a goroutine for the duration of a call.
func (b *Board) Run(ctx context.Context) {
	ticker := time.NewTicker(b.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.Tick()
		}
	}
}

// Clear resets the board for the next call.
func (b *Board) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.units = nil
	b.located = false
	b.revealed = false
}
