package enums

import "strings"

// OccurrenceType classifies an incident reported by a driver.
type OccurrenceType string

const (
	OccurrenceAccident  OccurrenceType = "accident"
	OccurrenceTheft     OccurrenceType = "theft"
	OccurrenceBreakdown OccurrenceType = "breakdown"
	OccurrenceOther     OccurrenceType = "other"
)

var validOccurrenceTypes = []OccurrenceType{
	OccurrenceAccident,
	OccurrenceTheft,
	OccurrenceBreakdown,
	OccurrenceOther,
}

// String implements fmt.Stringer.
func (o OccurrenceType) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OccurrenceType.
func (o OccurrenceType) IsValid() bool {
	for _, candidate := range validOccurrenceTypes {
		if candidate == o {
			return true
		}
	}
	return false
}

// GuessOccurrenceType inspects free text for an incident category, falling
// back to OccurrenceOther. Incident reports arrive as prose, not enum values.
func GuessOccurrenceType(text string) OccurrenceType {
	lowered := strings.ToLower(text)
	switch {
	case strings.Contains(lowered, "accident") || strings.Contains(lowered, "crash") || strings.Contains(lowered, "collision"):
		return OccurrenceAccident
	case strings.Contains(lowered, "theft") || strings.Contains(lowered, "robbery") || strings.Contains(lowered, "stolen"):
		return OccurrenceTheft
	case strings.Contains(lowered, "breakdown") || strings.Contains(lowered, "flat tire") || strings.Contains(lowered, "engine"):
		return OccurrenceBreakdown
	default:
		return OccurrenceOther
	}
}
