package distlock

import (
	"context"
	"sync"
)

var (
	localMu    sync.Mutex
	localLocks = map[string]*sync.Mutex{}
)

// LocalLock is an in-process lock. Instances created with the same key
// exclude each other.
type LocalLock struct {
	mu   *sync.Mutex
	held bool
}

// NewLocalLock returns a lock sharing its mutex with every other LocalLock
// for key.
func NewLocalLock(key string) *LocalLock {
	localMu.Lock()
	defer localMu.Unlock()
	mu, ok := localLocks[key]
	if !ok {
		mu = &sync.Mutex{}
		localLocks[key] = mu
	}
	return &LocalLock{mu: mu}
}

func (l *LocalLock) Acquire(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if l.held {
		return false, nil
	}
	l.held = l.mu.TryLock()
	return l.held, nil
}

func (l *LocalLock) Release(ctx context.Context) error {
	if l.held {
		l.held = false
		l.mu.Unlock()
	}
	return nil
}
