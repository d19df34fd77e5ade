package enums

import "fmt"

// JourneyStatus is the driver's cached shift state, derived from the journey
// event log. The log is the source of truth; this field exists for fast reads.
type JourneyStatus string

const (
	JourneyStatusOffJourney JourneyStatus = "off_journey"
	JourneyStatusOnJourney  JourneyStatus = "on_journey"
	JourneyStatusMealBreak  JourneyStatus = "meal_break"
	JourneyStatusWaitBreak  JourneyStatus = "wait_break"
	JourneyStatusRestBreak  JourneyStatus = "rest_break"
)

var validJourneyStatuses = []JourneyStatus{
	JourneyStatusOffJourney,
	JourneyStatusOnJourney,
	JourneyStatusMealBreak,
	JourneyStatusWaitBreak,
	JourneyStatusRestBreak,
}

// String implements fmt.Stringer.
func (j JourneyStatus) String() string {
	return string(j)
}

// IsValid reports whether the value is a known JourneyStatus.
func (j JourneyStatus) IsValid() bool {
	for _, candidate := range validJourneyStatuses {
		if candidate == j {
			return true
		}
	}
	return false
}

// IsBreak reports whether the driver is currently on any break.
func (j JourneyStatus) IsBreak() bool {
	switch j {
	case JourneyStatusMealBreak, JourneyStatusWaitBreak, JourneyStatusRestBreak:
		return true
	default:
		return false
	}
}

// ParseJourneyStatus converts raw input into a JourneyStatus.
func ParseJourneyStatus(value string) (JourneyStatus, error) {
	for _, candidate := range validJourneyStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid journey status %q", value)
}
