package services

import (
	"sync"
	"time"
)

// exchangeState tags the lifecycle of a single authorization code
type exchangeState int

const (
	exchangePending exchangeState = iota
	exchangeInFlight
	exchangeDone
	exchangeFailed
)

// codeExchange tracks one authorization code through
// Pending -> Exchanging -> Done | Failed. Failed is terminal: the code was
// consumed upstream, so a retry can never succeed.
type codeExchange struct {
	state     exchangeState
	result    *loginResult
	err       error
	done      chan struct{}
	createdAt time.Time
}

// loginResult is the outcome of a successful exchange
type loginResult struct {
	accountID    int
	accessToken  string
	refreshToken string
}

// exchangeLatch guarantees at most one upstream exchange per authorization
// code. The first caller for a code performs the exchange; concurrent or
// repeated callers observe the first caller's outcome instead of exchanging
// again. Entries expire after ttl to bound memory.
type exchangeLatch struct {
	mu    sync.Mutex
	codes map[string]*codeExchange
	ttl   time.Duration
}

// newExchangeLatch creates a latch whose entries expire after ttl
func newExchangeLatch(ttl time.Duration) *exchangeLatch {
	return &exchangeLatch{
		codes: make(map[string]*codeExchange),
		ttl:   ttl,
	}
}

// begin registers the code and reports whether the caller owns the exchange.
// The owner must finish the returned record with complete or fail.
func (l *exchangeLatch) begin(code string) (*codeExchange, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweepLocked()

	if ex, ok := l.codes[code]; ok {
		return ex, false
	}

	ex := &codeExchange{
		state:     exchangeInFlight,
		done:      make(chan struct{}),
		createdAt: time.Now(),
	}
	l.codes[code] = ex
	return ex, true
}

// complete transitions the record to Done and wakes waiters
func (l *exchangeLatch) complete(ex *codeExchange, result *loginResult) {
	l.mu.Lock()
	ex.state = exchangeDone
	ex.result = result
	l.mu.Unlock()
	close(ex.done)
}

// fail transitions the record to Failed and wakes waiters
func (l *exchangeLatch) fail(ex *codeExchange, err error) {
	l.mu.Lock()
	ex.state = exchangeFailed
	ex.err = err
	l.mu.Unlock()
	close(ex.done)
}

// outcome reads a finished record. Callers must wait on ex.done first.
func (l *exchangeLatch) outcome(ex *codeExchange) (*loginResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return ex.result, ex.err
}

// sweepLocked drops expired entries. Caller holds l.mu.
func (l *exchangeLatch) sweepLocked() {
	cutoff := time.Now().Add(-l.ttl)
	for code, ex := range l.codes {
		if ex.createdAt.Before(cutoff) && ex.state != exchangeInFlight {
			delete(l.codes, code)
		}
	}
}
