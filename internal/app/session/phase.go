package session

// Phase represents the session lifecycle phase.
type Phase int

const (
	PhaseIdle     Phase = iota // Created, catalogue not loaded yet
	PhaseStarting              // First catalogue load in flight
	PhaseReady                 // Catalogue loaded, accepting commands
	PhaseClosed                // Session has ended
)

// String returns the string representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseStarting:
		return "starting"
	case PhaseReady:
		return "ready"
	case PhaseClosed:
		return "closed"
	default:
		return "unknown"
	}
}
