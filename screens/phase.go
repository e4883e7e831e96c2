package screens

// Phase is the state of one asynchronous operation
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseLoaded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseLoaded:
		return "loaded"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Done reports whether the operation has finished, successfully or not
func (p Phase) Done() bool {
	return p == PhaseLoaded || p == PhaseFailed
}
