package domain

// Location is a scene-relative position. Coordinates run 0..100 on both
// axes; unit spawn points sit just outside that square.
type Location struct {
	X float64
	Y float64
}

// UnitStatus tracks a dispatched unit's approach.
type UnitStatus int

const (
	// UnitEnroute: moving toward the caller location each tick.
	UnitEnroute UnitStatus = iota
	// UnitOnScene: arrived; position is frozen.
	UnitOnScene
)

// String returns a human-readable unit status.
func (s UnitStatus) String() string {
	switch s {
	case UnitEnroute:
		return "enroute"
	case UnitOnScene:
		return "onscene"
	default:
		return "unknown"
	}
}

// MapUnit is one dispatched unit marker on the scene map. A MapUnit
// exists if and only if its unit type is in CallData's dispatched set.
type MapUnit struct {
	ID     string
	Type   UnitType
	Pos    Location
	Status UnitStatus
}
