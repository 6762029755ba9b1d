// Package handshake implements the minimal handshake-handler consumer
// side of the Peer Authorization Manager contract (spec §6 "Handshake
// handler (consumes the manager)"). It does not negotiate a wire
// protocol — that remains a non-goal — it only dispatches already
// decoded actions to the manager and translates the result into an
// Outcome a caller's wire-protocol layer can act on.
package handshake

import (
	"errors"

	"go.uber.org/zap"

	"github.com/circuitmesh/peerauth/pkg/auth"
	"github.com/circuitmesh/peerauth/pkg/authmetrics"
)

// Outcome tells a handshake handler's caller what to do with the
// connection after a NextState call (spec §6: "On AlreadyConnecting or
// InvalidMessageOrder it MUST close the connection. On ConnectionLost
// it MUST treat the peer as gone. On success it MAY proceed with
// handshake continuation.").
type Outcome int

const (
	// OutcomeContinue means the handshake may proceed (the peer is now
	// Connecting).
	OutcomeContinue Outcome = iota
	// OutcomeAuthorized means the peer is now Authorized or Internal.
	OutcomeAuthorized
	// OutcomeClose means the caller must close the connection.
	OutcomeClose
	// OutcomeGone means the peer is already gone; the caller must treat
	// it as such (it may already have been evicted by the registry).
	OutcomeGone
)

// Handler dispatches wire-level handshake events to an *auth.Manager.
type Handler struct {
	manager *auth.Manager
	log     *zap.Logger
}

// New constructs a Handler over manager. log may be nil, in which case
// a no-op logger is used.
func New(manager *auth.Manager, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{manager: manager, log: log}
}

// OnAccept begins a handshake for a newly accepted connection.
func (h *Handler) OnAccept(peerID string) (Outcome, AuthorizationOutcome) {
	return h.dispatch(peerID, auth.ConnectingAction())
}

// OnTrustClaim supplies the identifier the remote peer claims after a
// successful trust exchange (identity verification itself happens
// upstream of this handler, per spec §1).
func (h *Handler) OnTrustClaim(peerID, claimedID string) (Outcome, AuthorizationOutcome) {
	return h.dispatch(peerID, auth.TrustIdentifyingAction(claimedID))
}

// OnReject tears a peer's connection down, e.g. after a failed
// challenge or an explicit rejection.
func (h *Handler) OnReject(peerID string) (Outcome, AuthorizationOutcome) {
	return h.dispatch(peerID, auth.UnauthorizingAction())
}

// ExternalNotifier is a caller-supplied hook a Handler forwards
// authorization status changes to, e.g. a wire-protocol layer that needs
// to push a message to the remote peer once it becomes Authorized.
type ExternalNotifier func(peerID string, status auth.PeerStatus) error

// RegisterExternalNotifier registers notify as an auth.Callback on the
// underlying manager. A failing notify never aborts the transition that
// triggered it (spec §4.C "Notification ordering": a misbehaving
// observer must never break the state machine): its error is wrapped in
// an *auth.CallbackError, counted via authmetrics, and returned so the
// manager's own fanout still logs it.
func (h *Handler) RegisterExternalNotifier(notify ExternalNotifier) error {
	return h.manager.RegisterCallback(func(peerID string, status auth.PeerStatus) error {
		if err := notify(peerID, status); err != nil {
			authmetrics.CountCallbackError()
			return &auth.CallbackError{PeerID: peerID, Status: status, Message: err.Error()}
		}
		return nil
	})
}

// AuthorizationOutcome carries the raw result alongside the higher
// level Outcome, so a caller that wants to build its own wire-protocol
// reply doesn't have to re-derive it.
type AuthorizationOutcome struct {
	State AuthorizationState
	Err   error
}

// AuthorizationState re-exports auth.AuthorizationState so callers of
// this package don't need a second import for the common case.
type AuthorizationState = auth.AuthorizationState

func (h *Handler) dispatch(peerID string, action auth.AuthorizationAction) (Outcome, AuthorizationOutcome) {
	state, err := h.manager.NextState(peerID, action)
	result := AuthorizationOutcome{State: state, Err: err}

	if err == nil {
		switch state {
		case auth.Connecting:
			return OutcomeContinue, result
		case auth.Authorized, auth.Internal:
			return OutcomeAuthorized, result
		default: // Unauthorized
			return OutcomeClose, result
		}
	}

	var invalidOrder *auth.InvalidMessageOrderError
	switch {
	case errors.Is(err, auth.ErrAlreadyConnecting):
		h.log.Warn("handshake rejected: already connecting", zap.String("peer_id", peerID))
		return OutcomeClose, result
	case errors.As(err, &invalidOrder):
		h.log.Warn("handshake rejected: invalid message order",
			zap.String("peer_id", peerID), zap.Error(err))
		return OutcomeClose, result
	case errors.Is(err, auth.ErrConnectionLost):
		h.log.Info("peer gone before transition completed", zap.String("peer_id", peerID))
		return OutcomeGone, result
	default:
		h.log.Error("unexpected authorization error", zap.String("peer_id", peerID), zap.Error(err))
		return OutcomeClose, result
	}
}
