package utilities

import "sync"

// KeyedMutex provides mutual exclusion per string key: per-category for step
// renumbering, per-session for attempt transitions, per-(user,step) for
// progress writes. Entries are dropped once the last holder releases.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*keyedLock)}
}

// Lock blocks until the key is exclusively held by the caller.
func (km *KeyedMutex) Lock(key string) {
	km.mu.Lock()
	entry, ok := km.locks[key]
	if !ok {
		entry = &keyedLock{}
		km.locks[key] = entry
	}
	entry.refs++
	km.mu.Unlock()

	entry.mu.Lock()
}

// Unlock releases the key. Must pair with a prior Lock on every exit path.
func (km *KeyedMutex) Unlock(key string) {
	km.mu.Lock()
	entry, ok := km.locks[key]
	if ok {
		entry.refs--
		if entry.refs == 0 {
			delete(km.locks, key)
		}
	}
	km.mu.Unlock()

	if ok {
		entry.mu.Unlock()
	}
}
