package types

// BlockerSeverity represents how severe a reported blocker is
type BlockerSeverity string

const (
	BlockerSeverityLow      BlockerSeverity = "LOW"
	BlockerSeverityMedium   BlockerSeverity = "MEDIUM"
	BlockerSeverityHigh     BlockerSeverity = "HIGH"
	BlockerSeverityCritical BlockerSeverity = "CRITICAL"
)

// AllBlockerSeverities returns all valid blocker severities
func AllBlockerSeverities() []BlockerSeverity {
	return []BlockerSeverity{
		BlockerSeverityLow,
		BlockerSeverityMedium,
		BlockerSeverityHigh,
		BlockerSeverityCritical,
	}
}

// IsValid checks if the blocker severity is valid
func (s BlockerSeverity) IsValid() bool {
	switch s {
	case BlockerSeverityLow,
		BlockerSeverityMedium,
		BlockerSeverityHigh,
		BlockerSeverityCritical:
		return true
	default:
		return false
	}
}

// Normalize returns the severity, mapping unknown values to medium so that a
// sloppy provider response never fails the whole analysis.
func (s BlockerSeverity) Normalize() BlockerSeverity {
	if !s.IsValid() {
		return BlockerSeverityMedium
	}
	return s
}

// String returns the string representation of the blocker severity
func (s BlockerSeverity) String() string {
	return string(s)
}
