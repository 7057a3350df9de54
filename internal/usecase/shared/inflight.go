package shared

import (
	"sync"

	"github.com/runoshun/tempo/internal/domain"
)

// InFlight marks keys with an operation in progress.
// A second Acquire for a busy key fails fast instead of waiting.
// The zero value is ready to use.
type InFlight struct {
	busy map[string]struct{}
	mu   sync.Mutex
}

// Acquire marks key as busy and returns the function that releases it.
// It returns domain.ErrOperationInFlight if key is already busy.
func (f *InFlight) Acquire(key string) (release func(), err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.busy == nil {
		f.busy = make(map[string]struct{})
	}
	if _, ok := f.busy[key]; ok {
		return nil, domain.ErrOperationInFlight
	}
	f.busy[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.busy, key)
			f.mu.Unlock()
		})
	}, nil
}

// Busy reports whether key has an operation in progress.
func (f *InFlight) Busy(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.busy[key]
	return ok
}
