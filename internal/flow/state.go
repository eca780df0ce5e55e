package flow

// State is the ride-intent flow's current stage. The flow is a strict state
// machine: every operation names the stages it may run from and illegal
// jumps are rejected with an invalid-state error.
type State string

const (
	// StateIdle is the resting state: map centered, no destination.
	StateIdle State = "idle"
	// StateSearching means the rider is typing a free-text destination.
	StateSearching State = "searching"
	// StateDestinationChosen means a suggestion with coordinates was picked.
	StateDestinationChosen State = "destination_chosen"
	// StatePicking means the rider is choosing a point on the map.
	StatePicking State = "picking"
	// StateLocationConfirmed means a map pick was locked in.
	StateLocationConfirmed State = "location_confirmed"
	// StateQuoting means fares are displayed and a class can be chosen.
	StateQuoting State = "quoting"
	// StateDispatching means a driver search is running for a confirmed ride.
	StateDispatching State = "dispatching"
)

var validTransitions = map[State][]State{
	StateIdle:              {StateSearching, StatePicking},
	StateSearching:         {StateSearching, StateDestinationChosen, StatePicking, StateIdle},
	StateDestinationChosen: {StateQuoting, StateSearching, StatePicking, StateIdle},
	StatePicking:           {StateLocationConfirmed, StateIdle},
	StateLocationConfirmed: {StateQuoting, StatePicking, StateSearching, StateIdle},
	StateQuoting:           {StateDispatching, StateSearching, StatePicking, StateIdle},
	StateDispatching:       {StateQuoting, StateIdle},
}

// IsValid reports whether the state is one of the defined stages.
func (s State) IsValid() bool {
	_, ok := validTransitions[s]
	return ok
}

// CanTransitionTo reports whether moving to the target stage is allowed.
func (s State) CanTransitionTo(target State) bool {
	for _, t := range validTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

func (s State) String() string {
	return string(s)
}
