package auth

// State is the login state the presentation layer observes.
type State int

const (
	StateLoggedOut State = iota
	StateAwaitingMFA
	StateLoggedIn
)

func (s State) String() string {
	switch s {
	case StateLoggedOut:
		return "logged_out"
	case StateAwaitingMFA:
		return "awaiting_mfa"
	case StateLoggedIn:
		return "logged_in"
	default:
		return "unknown"
	}
}

// Phase tracks progress through an MFA challenge.
type Phase int

const (
	PhaseNone Phase = iota
	PhaseChallengeIssued
	PhaseAwaitingCode
	PhaseCompleted
)

func (p Phase) String() string {
	switch p {
	case PhaseNone:
		return "none"
	case PhaseChallengeIssued:
		return "challenge_issued"
	case PhaseAwaitingCode:
		return "awaiting_code"
	case PhaseCompleted:
		return "completed"
	default:
		return "unknown"
	}
}
