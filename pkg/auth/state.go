package auth

import "fmt"

// AuthorizationState is the state of a single peer's connection during
// authorization (spec §3).
type AuthorizationState int

const (
	// Unknown is the implicit default. It is never stored in the state
	// table; it is what NextState and IsAuthorized see for any
	// identifier that has no entry.
	Unknown AuthorizationState = iota
	// Connecting means a handshake is in progress.
	Connecting
	// Authorized means the peer passed identity verification and may
	// exchange traffic.
	Authorized
	// Unauthorized is a terminal rejection. It is only ever returned,
	// never stored (spec §3 invariant 4).
	Unauthorized
	// Internal means the connection is in-process and was
	// auto-authorized without a handshake.
	Internal
)

// String implements fmt.Stringer.
func (s AuthorizationState) String() string {
	switch s {
	case Unknown:
		return "Unknown"
	case Connecting:
		return "Connecting"
	case Authorized:
		return "Authorized"
	case Unauthorized:
		return "Unauthorized"
	case Internal:
		return "Internal"
	default:
		return fmt.Sprintf("AuthorizationState(%d)", int(s))
	}
}

// AuthorizationActionKind distinguishes the three shapes of action the
// engine accepts. TrustIdentifying additionally carries an identifier.
type AuthorizationActionKind int

const (
	// ActionConnecting begins a handshake for a peer identifier.
	ActionConnecting AuthorizationActionKind = iota
	// ActionTrustIdentifying supplies the identifier the remote peer
	// claims after a successful trust exchange.
	ActionTrustIdentifying
	// ActionUnauthorizing rejects or tears down a peer.
	ActionUnauthorizing
)

// AuthorizationAction is the input to NextState (spec §3).
type AuthorizationAction struct {
	Kind AuthorizationActionKind
	// VerifiedID is only meaningful when Kind is ActionTrustIdentifying.
	VerifiedID string
}

// String implements fmt.Stringer.
func (a AuthorizationAction) String() string {
	switch a.Kind {
	case ActionConnecting:
		return "Connecting"
	case ActionTrustIdentifying:
		return "TrustIdentifying"
	case ActionUnauthorizing:
		return "Unauthorizing"
	default:
		return fmt.Sprintf("AuthorizationAction(%d)", int(a.Kind))
	}
}

// ConnectingAction is the Connecting action.
func ConnectingAction() AuthorizationAction {
	return AuthorizationAction{Kind: ActionConnecting}
}

// TrustIdentifyingAction is the TrustIdentifying(verifiedID) action.
//
// NextState does not reject a verifiedID that another peer already holds:
// the registry rename and the state table entry for verifiedID replace
// whatever was there before.
func TrustIdentifyingAction(verifiedID string) AuthorizationAction {
	return AuthorizationAction{Kind: ActionTrustIdentifying, VerifiedID: verifiedID}
}

// UnauthorizingAction is the Unauthorizing action.
func UnauthorizingAction() AuthorizationAction {
	return AuthorizationAction{Kind: ActionUnauthorizing}
}

// PeerStatus is the observable status published to callbacks. Only
// Authorized and Unauthorized are ever published; intermediate states
// are never notified (spec §3).
type PeerStatus int

const (
	// StatusAuthorized is published when a peer becomes authorized
	// (including Internal auto-authorization).
	StatusAuthorized PeerStatus = iota
	// StatusUnauthorized is published when a peer is evicted.
	StatusUnauthorized
)

// String implements fmt.Stringer.
func (s PeerStatus) String() string {
	switch s {
	case StatusAuthorized:
		return "Authorized"
	case StatusUnauthorized:
		return "Unauthorized"
	default:
		return fmt.Sprintf("PeerStatus(%d)", int(s))
	}
}
