package service

import (
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/splitledger/splitledger/internal/money"
)

// Ledger coordinates the per-group shared state the engine has to protect:
// it serializes balance-affecting writes for one group while letting
// different groups proceed in parallel, and it caches aggregated balances
// until the next write invalidates them.
//
// The pure calculator functions need none of this; everything here exists
// for the stateful path (expense writes, settlement transitions, cached
// aggregation).
type Ledger struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
	cache map[string]map[string]money.Cents
	gens  map[string]uint64
	sf    singleflight.Group
}

// NewLedger creates an empty coordinator.
func NewLedger() *Ledger {
	return &Ledger{
		locks: make(map[string]*sync.Mutex),
		cache: make(map[string]map[string]money.Cents),
		gens:  make(map[string]uint64),
	}
}

// Lock acquires the group's write lock and returns the unlock function.
// Every balance-affecting mutation (expense create/update/delete,
// settlement propose/confirm/cancel) runs inside this lock.
func (l *Ledger) Lock(groupID string) func() {
	l.mu.Lock()
	lock, ok := l.locks[groupID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[groupID] = lock
	}
	l.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// Balances returns the cached balance map for the group, computing it with
// compute on a miss. Concurrent callers for the same group collapse into a
// single computation.
//
// The result is cached only if no Invalidate arrived while the computation
// was in flight: the generation counter recorded before computing must
// still match at install time, otherwise the result is returned to the
// caller but dropped from the cache so the next read recomputes against
// the post-write state.
func (l *Ledger) Balances(groupID string, compute func() (map[string]money.Cents, error)) (map[string]money.Cents, error) {
	l.mu.Lock()
	cached, ok := l.cache[groupID]
	gen := l.gens[groupID]
	l.mu.Unlock()
	if ok {
		return copyBalances(cached), nil
	}

	v, err, _ := l.sf.Do(groupID, func() (interface{}, error) {
		balances, err := compute()
		if err != nil {
			return nil, err
		}
		l.mu.Lock()
		if l.gens[groupID] == gen {
			l.cache[groupID] = balances
		}
		l.mu.Unlock()
		return balances, nil
	})
	if err != nil {
		return nil, err
	}
	return copyBalances(v.(map[string]money.Cents)), nil
}

// copyBalances keeps callers from mutating the cached map.
func copyBalances(balances map[string]money.Cents) map[string]money.Cents {
	out := make(map[string]money.Cents, len(balances))
	for id, b := range balances {
		out[id] = b
	}
	return out
}

// Invalidate drops the cached balances for a group and bumps its
// generation, so an in-flight computation cannot re-install a result that
// predates this write. Called after every balance-affecting write, while
// the group lock is still held.
func (l *Ledger) Invalidate(groupID string) {
	l.mu.Lock()
	delete(l.cache, groupID)
	l.gens[groupID]++
	l.mu.Unlock()
	// Callers arriving after this point must not join a flight that
	// started before the write.
	l.sf.Forget(groupID)
}
