package flows

import (
	"sync"

	apperrors "github.com/kelsos/atom-tasks/internal/errors"
)

// Control names. Per-task controls are suffixed with the task id.
const (
	ControlEmail  = "email"
	ControlCreate = "create"
	ControlLoad   = "load"
	ControlEdit   = "edit:"
	ControlToggle = "toggle:"
	ControlDelete = "delete:"
)

// controls tracks which controls have a call in flight
type controls struct {
	mu   sync.Mutex
	busy map[string]struct{}
}

func (c *controls) acquire(name string) (func(), error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.busy == nil {
		c.busy = make(map[string]struct{})
	}
	if _, ok := c.busy[name]; ok {
		return nil, apperrors.ErrBusy
	}
	c.busy[name] = struct{}{}

	return func() {
		c.mu.Lock()
		delete(c.busy, name)
		c.mu.Unlock()
	}, nil
}

func (c *controls) isBusy(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.busy[name]
	return ok
}

func (c *controls) any() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.busy) > 0
}
