package enums

import "fmt"

// JourneyEventType identifies an append-only shift/break marker.
type JourneyEventType string

const (
	JourneyEventJourneyStart JourneyEventType = "journey_start"
	JourneyEventJourneyEnd   JourneyEventType = "journey_end"
	JourneyEventMealStart    JourneyEventType = "meal_start"
	JourneyEventMealEnd      JourneyEventType = "meal_end"
	JourneyEventWaitStart    JourneyEventType = "wait_start"
	JourneyEventWaitEnd      JourneyEventType = "wait_end"
	JourneyEventRestStart    JourneyEventType = "rest_start"
	JourneyEventRestEnd      JourneyEventType = "rest_end"
)

var validJourneyEventTypes = []JourneyEventType{
	JourneyEventJourneyStart,
	JourneyEventJourneyEnd,
	JourneyEventMealStart,
	JourneyEventMealEnd,
	JourneyEventWaitStart,
	JourneyEventWaitEnd,
	JourneyEventRestStart,
	JourneyEventRestEnd,
}

// String implements fmt.Stringer.
func (j JourneyEventType) String() string {
	return string(j)
}

// IsValid reports whether the value is a known JourneyEventType.
func (j JourneyEventType) IsValid() bool {
	for _, candidate := range validJourneyEventTypes {
		if candidate == j {
			return true
		}
	}
	return false
}

// ParseJourneyEventType converts raw input into a JourneyEventType.
func ParseJourneyEventType(value string) (JourneyEventType, error) {
	for _, candidate := range validJourneyEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid journey event type %q", value)
}
