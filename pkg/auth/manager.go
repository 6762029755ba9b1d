// Package auth implements the Peer Authorization Manager: the state
// machine that tracks and transitions the authorization status of every
// connected peer, gates message delivery on authorization, and
// notifies callbacks when a peer's status changes.
package auth

import (
	"sync"

	"go.uber.org/zap"

	"github.com/circuitmesh/peerauth/pkg/network"
)

// Registry is the Network Registry external collaborator this manager
// requires (spec §6). github.com/circuitmesh/peerauth/pkg/network
// provides a concrete, goroutine-safe implementation; production
// callers may supply their own as long as it satisfies this interface.
type Registry = network.Registry

// Manager tracks and transitions the authorization status of every
// connected peer on a node's network (spec §1).
//
// A Manager must be constructed with NewManager; the zero value is not
// usable.
type Manager struct {
	registry network.Registry
	identity string
	log      *zap.Logger

	mu        sync.Mutex
	states    map[string]AuthorizationState
	callbacks callbackList
	intake    *disconnectIntake
	closed    bool

	// intakeBuffer and dedupeSize are read by NewManager right after
	// options run, then never touched again.
	intakeBuffer int
	dedupeSize   int
}

// ManagerOption configures optional Manager behavior.
type ManagerOption func(*Manager)

// WithLogger overrides the manager's logger. The default is a no-op
// logger, matching the teacher's pattern of accepting an explicit
// *zap.Logger rather than reaching for a global.
func WithLogger(log *zap.Logger) ManagerOption {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// WithIntakeBuffer sets the disconnect intake channel's buffer size.
// Defaults to 256.
func WithIntakeBuffer(size int) ManagerOption {
	return func(m *Manager) { m.intakeBuffer = size }
}

// WithDisconnectDedupeSize bounds the LRU used to collapse repeated
// disconnect notifications for the same identifier between drains.
// Defaults to 1024.
func WithDisconnectDedupeSize(size int) ManagerOption {
	return func(m *Manager) { m.dedupeSize = size }
}

// NewManager constructs a Manager and registers exactly one disconnect
// listener with registry, per spec §6 "add_disconnect_listener... at
// construction".
func NewManager(registry network.Registry, localIdentity string, opts ...ManagerOption) *Manager {
	m := &Manager{
		registry:     registry,
		identity:     localIdentity,
		log:          zap.NewNop(),
		states:       make(map[string]AuthorizationState),
		intakeBuffer: 256,
		dedupeSize:   1024,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.intake = newDisconnectIntake(m.intakeBuffer, m.dedupeSize)

	registry.AddDisconnectListener(func(peerID string) {
		if !m.intake.notify(peerID) {
			m.log.Error("unable to notify authorization manager of disconnection",
				zap.String("peer_id", peerID))
		}
	})

	return m
}

// LocalIdentity returns the identity string this manager was
// constructed with, for handshake handlers to advertise (spec §6).
func (m *Manager) LocalIdentity() string {
	return m.identity
}

// drainLocked removes every identifier delivered by the disconnect
// intake from the state table. Callers must hold m.mu.
func (m *Manager) drainLocked() {
	for _, peerID := range m.intake.drain() {
		delete(m.states, peerID)
	}
}

func (m *Manager) notifyLocked(peerID string, status PeerStatus) {
	m.callbacks.notify(peerID, status, func(peerID string, status PeerStatus, err error) {
		m.log.Error("unable to call authorization change callback",
			zap.String("peer_id", peerID), zap.Stringer("status", status), zap.Error(err))
	})
}

// NextState applies action to peerID's current state under the state
// table lock, after first draining the disconnect intake so evictions
// are observed before the decision is made (spec §4.C).
//
// Either both the state table and the Network Registry reflect the new
// state on return, or neither does, modulo the registry's own side
// effects on a failed mutation.
func (m *Manager) NextState(peerID string, action AuthorizationAction) (AuthorizationState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return Unknown, ErrManagerClosed
	}

	m.drainLocked()

	cur, ok := m.states[peerID]
	if !ok {
		cur = Unknown
	}

	switch cur {
	case Unknown:
		return m.fromUnknownLocked(peerID, action)
	case Connecting:
		return m.fromConnectingLocked(peerID, action)
	case Authorized:
		return m.fromAuthorizedLocked(peerID, action)
	default: // Internal
		return Unknown, &InvalidMessageOrderError{From: cur, Action: action}
	}
}

func (m *Manager) fromUnknownLocked(peerID string, action AuthorizationAction) (AuthorizationState, error) {
	switch action.Kind {
	case ActionConnecting:
		if endpoint, ok := m.registry.GetPeerEndpoint(peerID); ok && network.IsInproc(endpoint) {
			m.log.Debug("authorizing inproc connection", zap.String("peer_id", peerID))
			m.states[peerID] = Internal
			m.notifyLocked(peerID, StatusAuthorized)
			return Internal, nil
		}
		m.states[peerID] = Connecting
		return Connecting, nil
	case ActionUnauthorizing:
		if err := m.registry.RemoveConnection(peerID); err != nil {
			return Unknown, ErrConnectionLost
		}
		return Unauthorized, nil
	default:
		return Unknown, &InvalidMessageOrderError{From: Unknown, Action: action}
	}
}

func (m *Manager) fromConnectingLocked(peerID string, action AuthorizationAction) (AuthorizationState, error) {
	switch action.Kind {
	case ActionConnecting:
		return Connecting, ErrAlreadyConnecting
	case ActionTrustIdentifying:
		newID := action.VerifiedID
		if err := m.registry.UpdatePeerID(peerID, newID); err != nil {
			delete(m.states, peerID)
			return Unknown, ErrConnectionLost
		}
		delete(m.states, peerID)
		m.intake.forget(newID)
		m.states[newID] = Authorized
		m.notifyLocked(newID, StatusAuthorized)
		return Authorized, nil
	case ActionUnauthorizing:
		delete(m.states, peerID)
		if err := m.registry.RemoveConnection(peerID); err != nil {
			return Unknown, ErrConnectionLost
		}
		m.notifyLocked(peerID, StatusUnauthorized)
		return Unauthorized, nil
	default:
		return Connecting, &InvalidMessageOrderError{From: Connecting, Action: action}
	}
}

func (m *Manager) fromAuthorizedLocked(peerID string, action AuthorizationAction) (AuthorizationState, error) {
	if action.Kind != ActionUnauthorizing {
		return Authorized, &InvalidMessageOrderError{From: Authorized, Action: action}
	}
	delete(m.states, peerID)
	if err := m.registry.RemoveConnection(peerID); err != nil {
		return Unknown, ErrConnectionLost
	}
	m.notifyLocked(peerID, StatusUnauthorized)
	return Unauthorized, nil
}

// IsAuthorized reports whether peerID is currently Authorized or
// Internal, after first draining the disconnect intake so the answer
// reflects all known evictions (spec §4.D). It never returns an error:
// absent or unauthorized peers are simply false.
func (m *Manager) IsAuthorized(peerID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return false
	}

	m.drainLocked()

	state, ok := m.states[peerID]
	if !ok {
		return false
	}
	return state == Authorized || state == Internal
}

// RegisterCallback appends cb to the ordered callback list (spec §4.D).
func (m *Manager) RegisterCallback(cb Callback) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return &AuthorizationCallbackError{Message: "manager is closed"}
	}
	m.callbacks.register(cb)
	return nil
}

// Close marks the manager closed. Subsequent NextState and
// RegisterCallback calls fail with ErrManagerClosed /
// AuthorizationCallbackError, and IsAuthorized reports false, rather
// than operating on torn-down state
// (this implementation's analogue of a poisoned lock, see DESIGN.md).
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
}
