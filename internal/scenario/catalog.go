// Package scenario provides the static incident catalog that drives the
// simulated callers and the supervisor's grading context.
package scenario

import (
	"context"
	"sort"
	"sync"

	"priorityone/internal/domain"
	"priorityone/internal/logger"
)

// Compile-time interface check.
var _ domain.ScenarioSource = (*Catalog)(nil)

// Catalog holds scenarios in memory. Safe for concurrent reads.
type Catalog struct {
	mu        sync.RWMutex
	scenarios map[string]*domain.Scenario
	log       *logger.Logger
}

// NewCatalog creates a catalog preloaded with the built-in shift scenarios.
func NewCatalog(log *logger.Logger) *Catalog {
	c := &Catalog{
		scenarios: make(map[string]*domain.Scenario),
		log:       log,
	}
	c.seed()
	return c
}

// List returns all scenarios ordered by shift.
func (c *Catalog) List(ctx context.Context) ([]*domain.Scenario, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*domain.Scenario, 0, len(c.scenarios))
	for _, s := range c.scenarios {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Shift < out[j].Shift })
	c.log.Debug("listing scenarios, count=%d", len(out))
	return out, nil
}

// Get returns a scenario by ID.
func (c *Catalog) Get(ctx context.Context, id string) (*domain.Scenario, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s, ok := c.scenarios[id]
	if !ok {
		c.log.Debug("scenario not found: %s", id)
		return nil, domain.ErrNotFound
	}
	return s, nil
}

// ForShift returns the scenario assigned to the given shift number.
// Shift 0 is the tutorial call.
func (c *Catalog) ForShift(ctx context.Context, shift int) (*domain.Scenario, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, s := range c.scenarios {
		if s.Shift == shift {
			return s, nil
		}
	}
	c.log.Debug("no scenario for shift %d", shift)
	return nil, domain.ErrNotFound
}

// seed populates the catalog with the built-in incidents.
func (c *Catalog) seed() {
	for _, s := range builtins {
		c.scenarios[s.ID] = s
	}
	c.log.Debug("seeded %d scenarios", len(c.scenarios))
}

var builtins = []*domain.Scenario{
	{
		ID:    "tutorial",
		Title: "Welfare Check",
		Shift: 0,
		CallerPrompt: "You are an elderly woman who is worried about your neighbor. " +
			"You haven't seen them in a few days. You are concerned but not panicked. " +
			"Speak calmly and a little slowly. Your goal is to get the operator to " +
			"send someone to check on your neighbor.",
		KeyFacts: []string{
			"Neighbor's address",
			"How long they have been unseen",
			"Reason for concern",
		},
		RequiredUnits: []domain.UnitType{domain.UnitPolice},
	},
	{
		ID:    "shift1_noise",
		Title: "Noise Complaint",
		Shift: 1,
		CallerPrompt: "You are annoyed by a loud party next door. It's late and you " +
			"have to work early. You are irritated but not in danger. Your goal is " +
			"to get the police to shut the party down.",
		KeyFacts: []string{
			"Your address",
			"Location of party",
			"Type of noise",
		},
		RequiredUnits: []domain.UnitType{domain.UnitPolice},
	},
	{
		ID:    "shift2_cardiac",
		Title: "Cardiac Arrest",
		Shift: 2,
		CallerPrompt: "You are panicked. Your spouse has just collapsed and is not " +
			"breathing. You need to convey the urgency and location immediately. " +
			"Between panicked breaths, you must listen to the operator's instructions " +
			"for CPR. Your emotional state is PANIC.",
		KeyFacts: []string{
			"Address",
			"Patient is not breathing",
			"Patient is unconscious",
		},
		RequiredUnits: []domain.UnitType{domain.UnitEMSALS, domain.UnitFire},
	},
	{
		ID:    "shift3_invasion",
		Title: "Home Invasion",
		Shift: 3,
		CallerPrompt: "You are hiding in a closet, whispering. You can hear intruders " +
			"in your house. Your emotional state is FEAR. You must stay quiet. Answer " +
			"questions in short, whispered phrases. The operator's volume will affect " +
			"your ability to stay hidden. If they are too loud, you have to tell them " +
			"to be quiet.",
		KeyFacts: []string{
			"Address",
			"Number of intruders",
			"Your location in the house",
			"Presence of weapons",
		},
		RequiredUnits: []domain.UnitType{domain.UnitSWAT},
	},
	{
		ID:    "shift4_mci",
		Title: "Multi-Car Pile-up",
		Shift: 4,
		CallerPrompt: "You are a witness to a major multi-car accident on the freeway. " +
			"You are overwhelmed and trying to describe the chaotic scene. There are " +
			"multiple injuries. Your emotional state is CONFUSED and SHAKEN. You need " +
			"to estimate the number of vehicles and injured people.",
		KeyFacts: []string{
			"Freeway and nearest exit",
			"Approximate number of vehicles",
			"Visible injuries/hazards (fire, smoke)",
		},
		RequiredUnits: []domain.UnitType{
			domain.UnitPolice, domain.UnitFire, domain.UnitEMSALS, domain.UnitEMSBLS,
		},
	},
}
