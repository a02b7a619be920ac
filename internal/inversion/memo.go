package inversion

import (
	"fmt"
	"sync"

	"github.com/roach88/domq/internal/domain"
)

// Memo caches Inverse results by the structural key of the request, so
// equal domains, symbols and contexts share one computation however they
// were built.
//
// Thread-safe: can be called concurrently.
type Memo struct {
	mu      sync.Mutex
	results map[string]Result
	hits    int
	misses  int
}

// NewMemo creates an empty memo.
func NewMemo() *Memo {
	return &Memo{
		results: make(map[string]Result),
	}
}

// Inverse returns the cached inversion of e for symbol under ctx,
// computing it on first use. It fails only when the request has no
// canonical encoding (a NaN float, for example).
func (m *Memo) Inverse(e domain.Expr, symbol string, ctx domain.Context) (Result, error) {
	key, err := domain.InversionKey(e, symbol, ctx)
	if err != nil {
		return Result{}, fmt.Errorf("memo: %w", err)
	}

	m.mu.Lock()
	if r, ok := m.results[key]; ok {
		m.hits++
		m.mu.Unlock()
		return r, nil
	}
	m.mu.Unlock()

	// Computed outside the lock; concurrent misses on one key compute the
	// same value.
	r := Inverse(e, symbol, ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.misses++
	m.results[key] = r
	return r, nil
}

// Len returns the number of cached results.
func (m *Memo) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.results)
}

// Stats returns the number of cache hits and misses so far.
func (m *Memo) Stats() (hits, misses int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits, m.misses
}

// Reset drops every cached result.
func (m *Memo) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.results)
	m.hits, m.misses = 0, 0
}
