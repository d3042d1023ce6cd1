package chatbot

import (
	"context"
	"sync"
)

// Dispatcher serializes turns per chat identity: one inbound event is
// processed to completion before the next for that identity, while distinct
// identities run concurrently. This calling convention is the engine's only
// concurrency discipline.
type Dispatcher struct {
	engine *Engine

	mu    sync.Mutex
	locks map[string]*chatLock
}

type chatLock struct {
	sync.Mutex
	refs int
}

// NewDispatcher creates a dispatcher over the engine.
func NewDispatcher(engine *Engine) *Dispatcher {
	if engine == nil {
		panic("chatbot: engine required")
	}
	return &Dispatcher{
		engine: engine,
		locks:  make(map[string]*chatLock),
	}
}

// Dispatch processes one inbound message, blocking until the turn completes.
// Calls for the same chat identity queue behind each other.
func (d *Dispatcher) Dispatch(ctx context.Context, chatID, text string) {
	lock := d.acquire(chatID)
	lock.Lock()
	defer func() {
		lock.Unlock()
		d.release(chatID, lock)
	}()

	d.engine.ProcessInboundText(ctx, chatID, text)
}

func (d *Dispatcher) acquire(chatID string) *chatLock {
	d.mu.Lock()
	defer d.mu.Unlock()
	lock, ok := d.locks[chatID]
	if !ok {
		lock = &chatLock{}
		d.locks[chatID] = lock
	}
	lock.refs++
	return lock
}

func (d *Dispatcher) release(chatID string, lock *chatLock) {
	d.mu.Lock()
	defer d.mu.Unlock()
	lock.refs--
	if lock.refs == 0 {
		delete(d.locks, chatID)
	}
}
