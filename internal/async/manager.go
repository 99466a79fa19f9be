package async

import (
	"sync"

	"github.com/kelsos/atom-tasks/internal/logger"
)

// Registry tracks promises that are waiting for an answer delivered by id,
// such as a dialog waiting for the user.
type Registry[T any] struct {
	mu      sync.Mutex
	pending map[uint64]*Promise[T]
	next    uint64
}

func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{pending: make(map[uint64]*Promise[T])}
}

// Register allocates an id and the promise that will be settled for it
func (r *Registry[T]) Register() (uint64, *Promise[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.next++
	p := NewPromise[T]()
	r.pending[r.next] = p

	logger.Debug("Registered pending request %d", r.next)
	return r.next, p
}

func (r *Registry[T]) take(id uint64) (*Promise[T], bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.pending[id]
	if ok {
		delete(r.pending, id)
	}
	return p, ok
}

// Resolve settles the promise for id with v. Unknown ids are ignored.
func (r *Registry[T]) Resolve(id uint64, v T) bool {
	p, ok := r.take(id)
	if !ok {
		logger.Debug("Ignoring answer for unknown request %d", id)
		return false
	}
	return p.Resolve(v)
}

// RejectAll settles every pending promise with err
func (r *Registry[T]) RejectAll(err error) {
	r.mu.Lock()
	pending := r.pending
	r.pending = make(map[uint64]*Promise[T])
	r.mu.Unlock()

	for id, p := range pending {
		p.Reject(err)
		logger.Debug("Pending request %d cancelled: %v", id, err)
	}
}
