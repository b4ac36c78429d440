package protocols

import (
	"fmt"
)

// GenesisLevel is the level of the block that activates the first protocol.
const GenesisLevel int64 = 1

// Registration binds a protocol code to its handler.
type Registration struct {
	Code    string
	Handler Handler
}

// Registry selects the handler for a block. It is immutable after construction.
type Registry struct {
	initial  Handler
	handlers map[string]Handler
}

// NewRegistry builds a registry dispatching GenesisLevel to initial and every
// other level by protocol code.
func NewRegistry(initial Handler, registrations ...Registration) (*Registry, error) {
	if initial == nil {
		return nil, fmt.Errorf("initial handler is nil")
	}
	handlers := make(map[string]Handler, len(registrations))
	for _, r := range registrations {
		if r.Code == "" || r.Handler == nil {
			return nil, fmt.Errorf("incomplete registration for %q", r.Code)
		}
		if _, ok := handlers[r.Code]; ok {
			return nil, fmt.Errorf("protocol %s registered twice", r.Code)
		}
		handlers[r.Code] = r.Handler
	}
	return &Registry{initial: initial, handlers: handlers}, nil
}

// Resolve returns the handler for a block at level produced under code.
func (r *Registry) Resolve(level int64, code string) (Handler, error) {
	if level == GenesisLevel {
		return r.initial, nil
	}
	h, ok := r.handlers[code]
	if !ok {
		return nil, fmt.Errorf("protocol %s at level %d: %w", code, level, ErrUnknownProtocol)
	}
	return h, nil
}
