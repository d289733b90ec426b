package enums

import "fmt"

// LogEntryKind distinguishes how an inventory log entry came to be. Due-date
// estimation only considers restock entries, so corrections with a positive
// audit delta never shift the estimate.
type LogEntryKind string

const (
	LogEntryKindConsume    LogEntryKind = "consume"
	LogEntryKindRestock    LogEntryKind = "restock"
	LogEntryKindCorrection LogEntryKind = "correction"
)

var validLogEntryKinds = []LogEntryKind{
	LogEntryKindConsume,
	LogEntryKindRestock,
	LogEntryKindCorrection,
}

// String implements fmt.Stringer.
func (k LogEntryKind) String() string {
	return string(k)
}

// IsValid reports whether the value is a known LogEntryKind.
func (k LogEntryKind) IsValid() bool {
	for _, candidate := range validLogEntryKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseLogEntryKind converts raw input into a LogEntryKind.
func ParseLogEntryKind(value string) (LogEntryKind, error) {
	for _, candidate := range validLogEntryKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid log entry kind %q", value)
}
