package enums

import "fmt"

// TargetUnit selects the unit an item's target, threshold and display quantity
// are expressed in.
type TargetUnit string

const (
	TargetUnitPackage     TargetUnit = "package"
	TargetUnitMeasurement TargetUnit = "measurement"
)

var validTargetUnits = []TargetUnit{
	TargetUnitPackage,
	TargetUnitMeasurement,
}

// String implements fmt.Stringer.
func (t TargetUnit) String() string {
	return string(t)
}

// IsValid reports whether the value is a known TargetUnit.
func (t TargetUnit) IsValid() bool {
	for _, candidate := range validTargetUnits {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseTargetUnit converts raw input into a TargetUnit.
func ParseTargetUnit(value string) (TargetUnit, error) {
	for _, candidate := range validTargetUnits {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid target unit %q", value)
}
