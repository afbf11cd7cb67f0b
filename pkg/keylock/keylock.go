// Package keylock serializes work per key, within one process or across instances through Redis.
package keylock

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrLockNotAcquired is returned when a lock cannot be acquired before the context ends
	ErrLockNotAcquired = errors.New("lock not acquired")
	// ErrLockNotHeld is returned when releasing a lock that expired or was taken over
	ErrLockNotHeld = errors.New("lock not held")
)

// Release gives a held lock back. Calling it more than once is a no-op.
type Release func()

// Locker blocks until key is free or ctx is done.
type Locker interface {
	Acquire(ctx context.Context, key string) (Release, error)
}

type entry struct {
	held chan struct{}
	refs int
}

// Local is an in-process per-key mutex. Entries are dropped once nobody holds or waits for them.
type Local struct {
	mu    sync.Mutex
	locks map[string]*entry
}

func NewLocal() *Local {
	return &Local{locks: make(map[string]*entry)}
}

func (l *Local) Acquire(ctx context.Context, key string) (Release, error) {
	l.mu.Lock()
	e, ok := l.locks[key]
	if !ok {
		e = &entry{held: make(chan struct{}, 1)}
		l.locks[key] = e
	}
	e.refs++
	l.mu.Unlock()

	select {
	case e.held <- struct{}{}:
	case <-ctx.Done():
		l.leave(key, e)
		return nil, errors.Join(ErrLockNotAcquired, ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.held
			l.leave(key, e)
		})
	}, nil
}

func (l *Local) leave(key string, e *entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.locks, key)
	}
}

// Len reports how many keys are currently held or awaited.
func (l *Local) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
