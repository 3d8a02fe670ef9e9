package session

// State is the session client's lifecycle state.
type State int

const (
	// StateIdle is entered when the session is constructed.
	StateIdle State = iota

	// StateAcquiringMedia is entered once the local media request is issued.
	StateAcquiringMedia

	// StateNegotiating is entered when the local stream is ready, the peer
	// session exists and the room has been joined.
	StateNegotiating

	// StateConnected is entered when the remote stream is attached.
	StateConnected

	// StateEnded is terminal; teardown has run.
	StateEnded

	// StateFailed is terminal; the captured reason is in Status.Reason.
	// A retry restarts from a fresh session, never this one.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAcquiringMedia:
		return "acquiring-media"
	case StateNegotiating:
		return "negotiating"
	case StateConnected:
		return "connected"
	case StateEnded:
		return "ended"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state admits no further transitions.
func (s State) Terminal() bool {
	return s == StateEnded || s == StateFailed
}

// Role is a participant's negotiation role. Exactly one Initiator and one
// Receiver are required per room; the booking flow assigns them and the hub
// cannot validate the pairing without out-of-band coordination. Two
// initiators (or two receivers) never complete negotiation.
type Role string

const (
	RoleInitiator Role = "initiator"
	RoleReceiver  Role = "receiver"
)

// Status is a snapshot of the client-local session state.
type Status struct {
	State        State
	Role         Role
	AudioEnabled bool
	VideoEnabled bool

	// Reason is set when State is StateFailed.
	Reason error
}
