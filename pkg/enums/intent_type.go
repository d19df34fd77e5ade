package enums

// IntentType is the classified purpose of an inbound chat message. The
// classifier is free-text-driven and may return unknown for any input.
type IntentType string

const (
	IntentStartRoute       IntentType = "start_route"
	IntentDeliver          IntentType = "deliver"
	IntentFail             IntentType = "fail"
	IntentPauseBreak       IntentType = "pause_break"
	IntentResume           IntentType = "resume"
	IntentSummary          IntentType = "summary"
	IntentDelay            IntentType = "delay"
	IntentNavigate         IntentType = "navigate"
	IntentContact          IntentType = "contact"
	IntentUndo             IntentType = "undo"
	IntentDetails          IntentType = "details"
	IntentHelp             IntentType = "help"
	IntentGreeting         IntentType = "greeting"
	IntentFinish           IntentType = "finish"
	IntentAskSalesperson   IntentType = "ask_salesperson"
	IntentAskSupervisor    IntentType = "ask_supervisor"
	IntentListPending      IntentType = "list_pending"
	IntentIncident         IntentType = "incident"
	IntentExitRoute        IntentType = "exit_route"
	IntentArrived          IntentType = "arrived"
	IntentUnloadingStarted IntentType = "unloading_started"
	IntentUnloadingEnded   IntentType = "unloading_ended"
	IntentStartShift       IntentType = "start_shift"
	IntentEndShift         IntentType = "end_shift"
	IntentOther            IntentType = "other"
	IntentUnknown          IntentType = "unknown"
)

var validIntentTypes = []IntentType{
	IntentStartRoute,
	IntentDeliver,
	IntentFail,
	IntentPauseBreak,
	IntentResume,
	IntentSummary,
	IntentDelay,
	IntentNavigate,
	IntentContact,
	IntentUndo,
	IntentDetails,
	IntentHelp,
	IntentGreeting,
	IntentFinish,
	IntentAskSalesperson,
	IntentAskSupervisor,
	IntentListPending,
	IntentIncident,
	IntentExitRoute,
	IntentArrived,
	IntentUnloadingStarted,
	IntentUnloadingEnded,
	IntentStartShift,
	IntentEndShift,
	IntentOther,
	IntentUnknown,
}

// String implements fmt.Stringer.
func (i IntentType) String() string {
	return string(i)
}

// IsValid reports whether the value is a known IntentType.
func (i IntentType) IsValid() bool {
	for _, candidate := range validIntentTypes {
		if candidate == i {
			return true
		}
	}
	return false
}

// ParseIntentType converts raw classifier output into an IntentType. Anything
// outside the closed enumeration degrades to IntentUnknown rather than erroring,
// since classifier output is untrusted.
func ParseIntentType(value string) IntentType {
	for _, candidate := range validIntentTypes {
		if string(candidate) == value {
			return candidate
		}
	}
	return IntentUnknown
}
