package logger

import (
	"sync"
)

// Components holds the named loggers butler packages pick up by default.
var Components = []string{"runner", "loader", "process", "cli"}

var registry = &loggerRegistry{
	loggers: make(map[string]*Logger),
}

type loggerRegistry struct {
	mu      sync.RWMutex
	loggers map[string]*Logger
}

// Register stores a named logger in the registry.
func Register(name string, l *Logger) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.loggers[name] = l
}

// Get retrieves a named logger. If the name is not registered it returns the
// global logger tagged with the requested component name.
func Get(name string) *Logger {
	registry.mu.RLock()
	l, ok := registry.loggers[name]
	registry.mu.RUnlock()
	if ok {
		return l
	}
	return GetGlobalLogger().WithComponent(name)
}

// RegisterDefaults registers a component logger derived from the global
// logger for each name, or for Components when none are given. Call it
// after Init so the registered loggers pick up the configured level.
func RegisterDefaults(names ...string) {
	if len(names) == 0 {
		names = Components
	}
	for _, name := range names {
		Register(name, GetGlobalLogger().WithComponent(name))
	}
}
