package command

import (
	"fmt"
	"sort"
	"sync"
)

// Dispatcher receives each complete command, in stream order. Errors are
// returned to whoever is feeding the stream.
type Dispatcher interface {
	Dispatch(cmd Command) error
}

// DispatcherFunc adapts a function to the Dispatcher interface.
type DispatcherFunc func(cmd Command) error

func (f DispatcherFunc) Dispatch(cmd Command) error {
	return f(cmd)
}

// Registry routes commands to handlers by name. It is safe to share one
// registry between streams.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]DispatcherFunc
	fallback DispatcherFunc
}

func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string]DispatcherFunc),
	}
}

// Register installs the handler for a command name, replacing any previous one.
func (r *Registry) Register(name string, h DispatcherFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = h
}

// SetFallback installs a handler for names nothing else claims.
func (r *Registry) SetFallback(h DispatcherFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = h
}

// Names returns the registered command names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) Dispatch(cmd Command) error {
	r.mu.RLock()
	h, ok := r.handlers[cmd.Name]
	if !ok {
		h = r.fallback
	}
	r.mu.RUnlock()

	if h == nil {
		return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Name)
	}
	if err := h(cmd); err != nil {
		return fmt.Errorf("command %q: %w", cmd.Name, err)
	}
	return nil
}
