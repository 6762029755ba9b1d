package auth

import (
	"errors"
	"fmt"
)

// ErrAlreadyConnecting is returned when a Connecting action arrives
// while the peer is already Connecting (spec §7).
var ErrAlreadyConnecting = errors.New("already attempting to connect")

// ErrConnectionLost is returned when the Network Registry refuses a
// mutation requested by a transition; the peer is considered gone
// (spec §7).
var ErrConnectionLost = errors.New("connection lost while authorizing peer")

// ErrManagerClosed is returned by NextState once the manager has been
// closed (IsAuthorized then reports false and RegisterCallback returns an
// *AuthorizationCallbackError). It is this implementation's analogue of a
// poisoned lock (spec §4.B, §7).
var ErrManagerClosed = errors.New("authorization manager is closed")

// InvalidMessageOrderError is returned for any disallowed
// (state, action) pair not covered by ErrAlreadyConnecting (spec §7).
type InvalidMessageOrderError struct {
	From   AuthorizationState
	Action AuthorizationAction
}

// Error implements error.
func (e *InvalidMessageOrderError) Error() string {
	return fmt.Sprintf("attempting to transition from %s via %s", e.From, e.Action)
}

// AuthorizationCallbackError is returned by RegisterCallback when the
// manager cannot accept a new callback, e.g. because it has been closed
// (spec §7).
type AuthorizationCallbackError struct {
	Message string
}

// Error implements error.
func (e *AuthorizationCallbackError) Error() string {
	return fmt.Sprintf("unable to register callback: %s", e.Message)
}

// CallbackError is the error type callbacks should return on failure.
// It is logged and swallowed by the fanout; it never aborts a
// transition (spec §4.C "Notification ordering").
type CallbackError struct {
	PeerID  string
	Status  PeerStatus
	Message string
}

// Error implements error.
func (e *CallbackError) Error() string {
	return fmt.Sprintf("callback failed for peer %s (%s): %s", e.PeerID, e.Status, e.Message)
}
