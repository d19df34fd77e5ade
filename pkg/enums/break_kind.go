package enums

import "strings"

// BreakKind distinguishes the three break flavors of the journey graph.
type BreakKind string

const (
	BreakMeal BreakKind = "meal"
	BreakWait BreakKind = "wait"
	BreakRest BreakKind = "rest"
)

// StartEvent returns the journey event that opens this break.
func (b BreakKind) StartEvent() JourneyEventType {
	switch b {
	case BreakWait:
		return JourneyEventWaitStart
	case BreakRest:
		return JourneyEventRestStart
	default:
		return JourneyEventMealStart
	}
}

// EndEvent returns the journey event that closes this break.
func (b BreakKind) EndEvent() JourneyEventType {
	switch b {
	case BreakWait:
		return JourneyEventWaitEnd
	case BreakRest:
		return JourneyEventRestEnd
	default:
		return JourneyEventMealEnd
	}
}

// GuessBreakKind maps free text onto a break kind, defaulting to meal.
func GuessBreakKind(text string) BreakKind {
	lowered := strings.ToLower(text)
	switch {
	case strings.Contains(lowered, "wait"):
		return BreakWait
	case strings.Contains(lowered, "rest") || strings.Contains(lowered, "sleep"):
		return BreakRest
	default:
		return BreakMeal
	}
}
