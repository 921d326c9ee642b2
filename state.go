package spectra

import "fmt"

// State is the render loop phase.
type State int32

const (
	StateIdle State = iota
	StateInitializing
	StateRunning
	StateDraining
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateInitializing:
		return "initializing"
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}
