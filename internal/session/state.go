package session

// State is where a dialog is in its life.
type State string

const (
	StateIdle   State = "idle"
	StateOpen   State = "open"
	StateSaving State = "saving"
)

// Mode says whether the dialog creates a record or edits one.
type Mode string

const (
	ModeAdd  Mode = "add"
	ModeEdit Mode = "edit"
)

// validTransitions defines which state changes are allowed. Cancelling is
// always allowed and ends the session, so it is not listed.
var validTransitions = map[State][]State{
	StateIdle:   {StateOpen},
	StateOpen:   {StateSaving},
	StateSaving: {StateIdle, StateOpen},
}

// IsValidTransition checks if a state change is allowed.
func IsValidTransition(from, to State) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
