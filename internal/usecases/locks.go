package usecases

import "sync"

// keyedMutex serializes the netting read-modify-write per
// (account, symbol). Entries are never removed; the key space is the
// set of traded pairs of one session and stays small.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*sync.Mutex)}
}

func (k *keyedMutex) get(key string) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()

	l, ok := k.locks[key]
	if !ok {
		l = &sync.Mutex{}
		k.locks[key] = l
	}

	return l
}

func (k *keyedMutex) Lock(key string) func() {
	l := k.get(key)
	l.Lock()

	return l.Unlock
}
