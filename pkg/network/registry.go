// Package network provides the Network Registry external collaborator
// the Peer Authorization Manager depends on (spec §6): the mapping from
// a peer identifier to a transport endpoint, renaming, removal, and a
// disconnect-event stream.
package network

import (
	"io"
	"sync"

	"github.com/google/uuid"
)

// Registry is the Network Registry contract the authorization manager
// consumes (spec §6). Implementations must be safe for concurrent use;
// Manager calls GetPeerEndpoint, UpdatePeerID and RemoveConnection while
// holding its own lock, so a Registry implementation must never call
// back into the Manager from within these methods.
type Registry interface {
	// GetPeerEndpoint returns the endpoint string for id and whether it
	// was found.
	GetPeerEndpoint(id string) (endpoint string, ok bool)
	// UpdatePeerID atomically renames a peer's registry entry.
	UpdatePeerID(oldID, newID string) error
	// RemoveConnection removes and closes the connection for id.
	RemoveConnection(id string) error
	// AddDisconnectListener registers fn to be called, with the current
	// identifier (temporary or verified), every time a connection is
	// lost. It must be called exactly once, at manager construction.
	AddDisconnectListener(fn func(id string))
}

type peerEntry struct {
	endpoint string
	conn     io.Closer
}

// InMemoryRegistry is a concrete, goroutine-safe Registry. It does not
// dial or accept real sockets (the Transport layer is out of scope, per
// spec §1); it only tracks identifier -> endpoint/connection mappings
// and fans out disconnect notifications, the way
// internal/network/server.go keys inbound connections by address in the
// example corpus, generalized here to the opaque peer-identifier model
// spec §3 requires.
type InMemoryRegistry struct {
	mu        sync.Mutex
	peers     map[string]peerEntry
	listeners []func(id string)
}

// NewInMemoryRegistry constructs an empty registry.
func NewInMemoryRegistry() *InMemoryRegistry {
	return &InMemoryRegistry{
		peers: make(map[string]peerEntry),
	}
}

// Accept registers a freshly accepted connection under a newly minted
// temporary identifier and returns that identifier. conn may be nil for
// tests that don't exercise connection teardown.
func (r *InMemoryRegistry) Accept(endpoint string, conn io.Closer) string {
	id := uuid.NewString()
	r.mu.Lock()
	r.peers[id] = peerEntry{endpoint: endpoint, conn: conn}
	r.mu.Unlock()
	return id
}

// AddConnection registers conn under an explicit identifier, for tests
// and callers that already have an identifier scheme (e.g. a transport
// that assigns its own temporary ids).
func (r *InMemoryRegistry) AddConnection(id, endpoint string, conn io.Closer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.peers[id] = peerEntry{endpoint: endpoint, conn: conn}
}

// GetPeerEndpoint implements Registry.
func (r *InMemoryRegistry) GetPeerEndpoint(id string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.peers[id]
	if !ok {
		return "", false
	}
	return entry.endpoint, true
}

// UpdatePeerID implements Registry. It is atomic with respect to other
// Registry methods: the rename is performed entirely under r.mu.
func (r *InMemoryRegistry) UpdatePeerID(oldID, newID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.peers[oldID]
	if !ok {
		return &UnknownPeerError{ID: oldID}
	}
	delete(r.peers, oldID)
	r.peers[newID] = entry
	return nil
}

// RemoveConnection implements Registry.
func (r *InMemoryRegistry) RemoveConnection(id string) error {
	r.mu.Lock()
	entry, ok := r.peers[id]
	if ok {
		delete(r.peers, id)
	}
	r.mu.Unlock()

	if !ok {
		return &UnknownPeerError{ID: id}
	}
	if entry.conn != nil {
		return entry.conn.Close()
	}
	return nil
}

// AddDisconnectListener implements Registry.
func (r *InMemoryRegistry) AddDisconnectListener(fn func(id string)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, fn)
}

// Disconnect simulates the transport layer reporting a lost connection
// for id: it removes the registry entry (if present) and fans the
// notification out to every registered listener. Tests and a real
// transport driver both call this.
func (r *InMemoryRegistry) Disconnect(id string) {
	r.mu.Lock()
	delete(r.peers, id)
	listeners := append([]func(id string){}, r.listeners...)
	r.mu.Unlock()

	for _, fn := range listeners {
		fn(id)
	}
}

// PeerIDs returns a snapshot of every identifier currently registered,
// in no particular order. Intended for tests, mirroring the Rust test
// helper network.peer_ids() used throughout the source this spec was
// distilled from.
func (r *InMemoryRegistry) PeerIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.peers))
	for id := range r.peers {
		ids = append(ids, id)
	}
	return ids
}

// UnknownPeerError is returned by UpdatePeerID and RemoveConnection
// when the given identifier has no registry entry. The authorization
// manager maps any such error to ErrConnectionLost (spec §6).
type UnknownPeerError struct {
	ID string
}

func (e *UnknownPeerError) Error() string {
	return "unknown peer: " + e.ID
}
