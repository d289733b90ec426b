package ledger

import (
	"sync"

	"github.com/google/uuid"
)

// keyedMutex serializes mutations per item so two racing events on the same
// item apply as one read-modify-write each, without blocking unrelated items.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*itemLock
}

type itemLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: map[uuid.UUID]*itemLock{}}
}

// Lock acquires the mutex for the given key and returns its unlock function.
func (k *keyedMutex) Lock(key uuid.UUID) func() {
	k.mu.Lock()
	lock, ok := k.locks[key]
	if !ok {
		lock = &itemLock{}
		k.locks[key] = lock
	}
	lock.refs++
	k.mu.Unlock()

	lock.mu.Lock()

	return func() {
		lock.mu.Unlock()
		k.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
