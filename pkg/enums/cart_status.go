package enums

import "fmt"

// CartStatus tracks a shopping cart through its lifecycle. Completed and
// abandoned are terminal.
type CartStatus string

const (
	CartStatusActive    CartStatus = "active"
	CartStatusCompleted CartStatus = "completed"
	CartStatusAbandoned CartStatus = "abandoned"
)

var validCartStatuses = []CartStatus{
	CartStatusActive,
	CartStatusCompleted,
	CartStatusAbandoned,
}

// String implements fmt.Stringer.
func (c CartStatus) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CartStatus.
func (c CartStatus) IsValid() bool {
	for _, candidate := range validCartStatuses {
		if candidate == c {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status accepts no further transitions.
func (c CartStatus) IsTerminal() bool {
	return c == CartStatusCompleted || c == CartStatusAbandoned
}

// ParseCartStatus converts raw input into a CartStatus.
func ParseCartStatus(value string) (CartStatus, error) {
	for _, candidate := range validCartStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid cart status %q", value)
}
