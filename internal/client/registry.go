package client

import (
	"context"
	"fmt"
	"strings"
	"sync"

	errspkg "github.com/drblury/gateflow/internal/client/errors"
	"github.com/drblury/gateflow/internal/client/objects"
)

// EventArgs carries the positional and keyword arguments a middleware chain
// derives from an envelope on its way to a terminal handler.
type EventArgs struct {
	Args   []any
	Kwargs map[string]any
}

// NewEventArgs returns an empty argument set with an allocated kwarg map.
func NewEventArgs() EventArgs {
	return EventArgs{Kwargs: make(map[string]any)}
}

// EventInvocation is what a terminal handler receives: the resolved
// arguments plus the dispatching client when the registration asked for it.
type EventInvocation struct {
	Client *Client
	Args   []any
	Kwargs map[string]any
}

// EventHandler is a user-registered terminal callback.
type EventHandler func(ctx context.Context, inv *EventInvocation) error

// MiddlewareFunc is one registered transformation step. It derives the next
// name and argument set from the envelope and must return a Resolution built
// via Continue or Terminal.
type MiddlewareFunc func(ctx context.Context, c *Client, env *objects.Envelope, args EventArgs) (Resolution, error)

// EventRegistration binds a terminal name to a handler together with its
// declared capabilities. Capabilities are recorded once at registration; the
// dispatcher never inspects handlers at invocation time.
type EventRegistration struct {
	Name string

	// Handler is invoked for events resolved from gateway envelopes.
	Handler EventHandler

	// Respond is invoked through the interaction-response path instead of
	// Handler. It is only meaningful for the command-error slot.
	Respond CommandFunc

	// WantsClient injects the dispatching client under the "self" kwarg.
	WantsClient bool

	// WantsContext injects the execution context under the first declared
	// parameter name when invoked through the interaction-response path.
	WantsContext bool

	// Params are the declared parameter names, in order. The error recovery
	// path uses them to decide where the raised error is bound.
	Params []string
}

type entryKind int

const (
	entryMiddleware entryKind = iota
	entryAlias
	entryTerminal
)

// registryEntry is one slot: a middleware step, a pass-through alias to a
// terminal name, or a terminal handler slot (unset until registered).
type registryEntry struct {
	kind       entryKind
	next       string
	middleware MiddlewareFunc
	handler    *EventRegistration
}

// Registry is the client-scoped mapping from event and middleware names to
// their slots. It is constructed once with all supported names pre-populated;
// registration only ever fills terminal slots, and no entry is ever removed.
// Registration is expected during single-threaded setup before the dispatch
// loop starts; lookups afterwards are read-mostly.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*registryEntry
}

// NewRegistry pre-populates a registry: every supported event gets a
// pass-through slot aliasing its on_-prefixed terminal name plus an unset
// terminal slot, and the dynamic command-error terminal slot is reserved.
func NewRegistry(events []string) *Registry {
	r := &Registry{entries: make(map[string]*registryEntry, len(events)*2+1)}
	for _, event := range events {
		terminal := TerminalPrefix + event
		r.entries[event] = &registryEntry{kind: entryAlias, next: terminal}
		r.entries[terminal] = &registryEntry{kind: entryTerminal}
	}
	r.entries[CommandErrorEvent] = &registryEntry{kind: entryTerminal}
	return r
}

// Register binds a terminal handler. It fails with ErrInvalidName when the
// name lacks the terminal prefix or is not a reserved terminal slot, and
// with ErrDuplicateRegistration when the slot is already bound. There is no
// unregister: re-registration is a programming error, not a runtime state.
func (r *Registry) Register(name string, reg *EventRegistration) error {
	if reg == nil || (reg.Handler == nil && reg.Respond == nil) {
		return errspkg.ErrHandlerRequired
	}
	if !strings.HasPrefix(name, TerminalPrefix) {
		return fmt.Errorf("%w: %q must start with %q", errspkg.ErrInvalidName, name, TerminalPrefix)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[name]
	if !ok || entry.kind != entryTerminal {
		return fmt.Errorf("%w: %q is not a supported event", errspkg.ErrInvalidName, name)
	}
	if entry.handler != nil {
		return fmt.Errorf("%w: %q", errspkg.ErrDuplicateRegistration, name)
	}

	reg.Name = name
	entry.handler = reg
	return nil
}

// RegisterMiddleware installs a middleware step under the given name,
// overwriting any existing slot. This is the internal registration call used
// for the built-in chains; event names gain their command semantics here.
func (r *Registry) RegisterMiddleware(name string, fn MiddlewareFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[name] = &registryEntry{kind: entryMiddleware, middleware: fn}
}

// Terminal returns the registration bound to a terminal name, or false when
// the slot is unset or unknown.
func (r *Registry) Terminal(name string) (*EventRegistration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[name]
	if !ok || entry.kind != entryTerminal || entry.handler == nil {
		return nil, false
	}
	return entry.handler, true
}

func (r *Registry) lookup(name string) (*registryEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[name]
	return entry, ok
}
