// Package domain defines the core types and interfaces for the dispatch
// trainer. All other packages depend on domain; domain depends on nothing.
package domain

// UnitType identifies an emergency-response unit the trainee can dispatch.
type UnitType string

const (
	UnitPolice UnitType = "Police"
	UnitFire   UnitType = "Fire"
	UnitEMSBLS UnitType = "EMS (BLS)"
	UnitEMSALS UnitType = "EMS (ALS)"
	UnitSWAT   UnitType = "SWAT"
)

// AllUnitTypes lists every dispatchable unit type in display order.
var AllUnitTypes = []UnitType{UnitPolice, UnitFire, UnitEMSBLS, UnitEMSALS, UnitSWAT}

// Scenario is a predefined incident template. The caller instruction drives
// the simulated caller's persona; KeyFacts and RequiredUnits drive grading.
// Scenarios are immutable once loaded from the catalog.
type Scenario struct {
	ID            string
	Title         string
	Shift         int // 0 = tutorial, 1..4 = graded shifts
	CallerPrompt  string
	KeyFacts      []string
	RequiredUnits []UnitType
}

// IsTutorial reports whether this scenario is the ungraded training call.
func (s *Scenario) IsTutorial() bool { return s.Shift == 0 }
