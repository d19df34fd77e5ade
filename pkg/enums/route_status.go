package enums

import "fmt"

// RouteStatus tracks the lifecycle of a driver's route for one calendar day.
type RouteStatus string

const (
	RouteStatusPlanned   RouteStatus = "planned"
	RouteStatusActive    RouteStatus = "active"
	RouteStatusCompleted RouteStatus = "completed"
)

var validRouteStatuses = []RouteStatus{
	RouteStatusPlanned,
	RouteStatusActive,
	RouteStatusCompleted,
}

// String implements fmt.Stringer.
func (r RouteStatus) String() string {
	return string(r)
}

// IsValid reports whether the value is a known RouteStatus.
func (r RouteStatus) IsValid() bool {
	for _, candidate := range validRouteStatuses {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRouteStatus converts raw input into a RouteStatus.
func ParseRouteStatus(value string) (RouteStatus, error) {
	for _, candidate := range validRouteStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid route status %q", value)
}
