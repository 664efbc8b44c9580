package goAuthClient

import "sync"

// opClass partitions Manager operations into single-flight classes. Login,
// restore, and register share one class because all three replace the whole
// identity; profile updates, OAuth flows, and password-reset steps each get
// their own.
type opClass uint8

const (
	opClassSession opClass = iota
	opClassProfile
	opClassOAuth
	opClassReset

	opClassCount
)

func (c opClass) String() string {
	switch c {
	case opClassSession:
		return "session"
	case opClassProfile:
		return "profile"
	case opClassOAuth:
		return "oauth"
	case opClassReset:
		return "reset"
	default:
		return "unknown"
	}
}

// opGuard is the OperationLock: at most one in-flight operation per class.
// Contention is rejected immediately, never queued: the caller gets Busy
// and decides whether to re-invoke.
type opGuard struct {
	mu       sync.Mutex
	inFlight [opClassCount]bool
}

func (g *opGuard) tryAcquire(c opClass) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.inFlight[c] {
		return false
	}
	g.inFlight[c] = true
	return true
}

func (g *opGuard) release(c opClass) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.inFlight[c] = false
}
