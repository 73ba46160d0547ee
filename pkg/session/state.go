package session

// State is the lifecycle state of the manager.
type State int

const (
	StateUnauthenticated State = iota
	StateEphemeral
	StatePersistent
)

func (s State) String() string {
	switch s {
	case StateEphemeral:
		return "authenticated_ephemeral"
	case StatePersistent:
		return "authenticated_persistent"
	default:
		return "unauthenticated"
	}
}

// allowed reports whether from can move to to without a fresh sign-in.
// The ephemeral and persistent states never lead into each other directly.
func allowed(from, to State) bool {
	return from == to || from == StateUnauthenticated || to == StateUnauthenticated
}

// Status is what Check reports to the caller.
type Status struct {
	Authenticated bool
	Identity      Identity
	Tier          Tier
}

// State derives the lifecycle state from the status.
func (s Status) State() State {
	if !s.Authenticated {
		return StateUnauthenticated
	}
	if s.Tier == TierPersistent {
		return StatePersistent
	}
	return StateEphemeral
}

func statusOf(rec *Record) Status {
	if rec == nil {
		return Status{}
	}
	return Status{
		Authenticated: true,
		Identity:      rec.Identity,
		Tier:          rec.Tier,
	}
}
