package auth

// Callback is invoked on every transition to a terminal observable
// status (spec §3, §6 "Callback interface (consumed)"). It must not
// re-enter the manager (no IsAuthorized or RegisterCallback from inside
// a callback): callbacks run synchronously while the state table's lock
// is held (spec §5 "Lock discipline").
type Callback func(peerID string, status PeerStatus) error

// callbackList is an append-only, in-order list of registered
// callbacks. It lives inside the same mutex as the state table so that
// observers see transitions in the order they occur (spec §4.B).
type callbackList struct {
	callbacks []Callback
}

func (l *callbackList) register(cb Callback) {
	l.callbacks = append(l.callbacks, cb)
}

// notify invokes every registered callback, in registration order. A
// callback that returns an error is reported through onErr and
// execution continues with the next callback; a single misbehaving
// observer must never break the state machine (spec §4.C).
func (l *callbackList) notify(peerID string, status PeerStatus, onErr func(peerID string, status PeerStatus, err error)) {
	for _, cb := range l.callbacks {
		if err := cb(peerID, status); err != nil {
			if onErr != nil {
				onErr(peerID, status, err)
			}
		}
	}
}
