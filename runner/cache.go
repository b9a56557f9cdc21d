package runner

import (
	"fmt"
	"sync"

	goerrors "github.com/kbukum/butler/errors"
	"github.com/kbukum/butler/task"
)

// cache holds the results of one run, keyed by arena index. Each key is
// written once; later layers only read.
type cache struct {
	mu      sync.RWMutex
	results map[int]task.Result
}

func newCache() *cache {
	return &cache{results: make(map[int]task.Result)}
}

func (c *cache) get(id int) (task.Result, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.results[id]
	return r, ok
}

func (c *cache) put(id int, r task.Result) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.results[id]; ok {
		return goerrors.Internal(fmt.Errorf("result of task %d written twice", id))
	}
	c.results[id] = r
	return nil
}

// anyChanged reports whether any of ids changed. Every id must already be
// cached.
func (c *cache) anyChanged(ids []int) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	changed := false
	for _, id := range ids {
		r, ok := c.results[id]
		if !ok {
			return false, goerrors.Internal(fmt.Errorf("result of task %d read before it was written", id))
		}
		changed = changed || r.Changed
	}
	return changed, nil
}

func (c *cache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.results)
}
