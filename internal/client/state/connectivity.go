package state

import "errors"

// ErrAlreadyResolved is returned when a resolved connectivity check is
// resolved a second time.
var ErrAlreadyResolved = errors.New("connectivity already resolved")

type Phase int

const (
	Checking Phase = iota
	Ready
	Unavailable
)

func (p Phase) String() string {
	switch p {
	case Checking:
		return "checking"
	case Ready:
		return "ready"
	case Unavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Connectivity is the backend reachability as seen by this boot.
// It only moves forward: Checking -> Ready or Checking -> Unavailable.
type Connectivity struct {
	Phase  Phase
	Reason string
}

func (c Connectivity) Resolved() bool {
	return c.Phase != Checking
}

// MarkReady returns the Ready state reached from c.
func (c Connectivity) MarkReady() (Connectivity, error) {
	if c.Resolved() {
		return c, ErrAlreadyResolved
	}
	return Connectivity{Phase: Ready}, nil
}

// MarkUnavailable returns the terminal Unavailable state reached from c.
func (c Connectivity) MarkUnavailable(reason string) (Connectivity, error) {
	if c.Resolved() {
		return c, ErrAlreadyResolved
	}
	return Connectivity{Phase: Unavailable, Reason: reason}, nil
}
