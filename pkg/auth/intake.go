package auth

import (
	lru "github.com/hashicorp/golang-lru"
)

// disconnectIntake is the single-producer, single-consumer buffer
// described in spec §4.A. The producer side (a closure handed to the
// Network Registry's AddDisconnectListener at construction time) is
// lock-free; the consumer side is only ever touched by the manager
// while it holds the state-table mutex.
type disconnectIntake struct {
	ch chan string
	// seen dedupes identifiers that were queued more than once by the
	// time a single drain runs, e.g. a connection that flapped twice
	// before the manager got around to calling NextState or
	// IsAuthorized. It is purged at the end of every drain, so dedupe
	// never spans two separate drains: an identifier delivered, then
	// reused, then delivered again is still removed from the state
	// table both times (spec §3 invariant 5 holds for every drain, not
	// just the first one to see a given identifier).
	seen *lru.Cache
}

func newDisconnectIntake(bufferSize, dedupeSize int) *disconnectIntake {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	if dedupeSize <= 0 {
		dedupeSize = 1024
	}
	cache, err := lru.New(dedupeSize)
	if err != nil {
		// lru.New only errors for a non-positive size, which we just
		// guarded against.
		panic(err)
	}
	return &disconnectIntake{
		ch:   make(chan string, bufferSize),
		seen: cache,
	}
}

// notify is called by the Network Registry's disconnect listener. It
// never blocks: a full channel means a send is dropped and logged by
// the caller, mirroring spec §4.A "Send errors on the producer side are
// logged but not propagated".
func (d *disconnectIntake) notify(peerID string) (delivered bool) {
	select {
	case d.ch <- peerID:
		return true
	default:
		return false
	}
}

// drain pulls every currently available identifier off the channel,
// non-blockingly, collapsing duplicates queued more than once within
// this one call. The dedupe cache is purged before returning, so it
// never suppresses a notification delivered by a later, separate
// drain. Callers must hold the state table's mutex.
func (d *disconnectIntake) drain() []string {
	defer d.seen.Purge()

	var out []string
	for {
		select {
		case peerID := <-d.ch:
			if d.seen.Contains(peerID) {
				continue
			}
			d.seen.Add(peerID, struct{}{})
			out = append(out, peerID)
		default:
			return out
		}
	}
}

// forget drops the dedupe entry for an identifier, in case it is still
// set from notifications queued earlier within the drain currently in
// progress. A no-op once that drain has returned, since drain already
// purges the whole cache itself.
func (d *disconnectIntake) forget(peerID string) {
	d.seen.Remove(peerID)
}
