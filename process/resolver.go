package process

import (
	"os/exec"
	"sync"

	goerrors "github.com/kbukum/butler/errors"
)

// Resolver finds executables on PATH and remembers the answer for the
// lifetime of the process. Entries are never evicted.
type Resolver struct {
	mu       sync.RWMutex
	cache    map[string]string
	lookPath func(string) (string, error)
}

// NewResolver creates a Resolver backed by exec.LookPath.
func NewResolver() *Resolver {
	return &Resolver{
		cache:    make(map[string]string),
		lookPath: exec.LookPath,
	}
}

// DefaultResolver is used by Run.
var DefaultResolver = NewResolver()

// Resolve returns the path of the named executable. Misses are not cached.
func (r *Resolver) Resolve(name string) (string, error) {
	r.mu.RLock()
	path, ok := r.cache[name]
	r.mu.RUnlock()
	if ok {
		return path, nil
	}

	path, err := r.lookPath(name)
	if err != nil {
		return "", goerrors.NotFound("executable", name).WithCause(err)
	}

	r.mu.Lock()
	r.cache[name] = path
	r.mu.Unlock()
	return path, nil
}

// Len returns the number of cached entries.
func (r *Resolver) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cache)
}
