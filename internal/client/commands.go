package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	errspkg "github.com/drblury/gateflow/internal/client/errors"
	"github.com/drblury/gateflow/internal/client/objects"
)

// CommandInvocation is what a command body receives: the execution context,
// the owning manager instance when declared, and the built keyword mapping.
type CommandInvocation struct {
	Client  *Client
	Context *objects.MessageContext
	Manager any
	Kwargs  map[string]any
}

// CommandFunc is a single-shot command body: it runs to completion and
// returns exactly one reply value.
type CommandFunc func(ctx context.Context, inv *CommandInvocation) (any, error)

// StreamFunc is a streaming command body: it pushes a finite, ordered,
// non-restartable sequence of reply values through send. The reply driver
// sends the first as the initial reply and every later one as a follow-up;
// pushing nothing means no reply is ever sent, which is an acceptable
// terminal state.
type StreamFunc func(ctx context.Context, inv *CommandInvocation, send func(v any) error) error

// CommandDescriptor binds a command name to its body together with the
// declared parameter names and capability flags. Capabilities are computed
// once at registration time; the router never inspects signatures per
// invocation.
type CommandDescriptor struct {
	Name string

	// Params are the declared parameter names, in order. Every declared
	// param defaults to nil in the keyword mapping before caller-supplied
	// options are overlaid.
	Params []string

	// WantsContext injects the execution context under the first declared
	// parameter name.
	WantsContext bool

	// WantsManager injects the owning manager instance under the "self"
	// kwarg. ManagerKey locates the instance in the catalog.
	WantsManager bool
	ManagerKey   string

	// Exactly one of Run or Stream must be set.
	Run    CommandFunc
	Stream StreamFunc
}

// Catalog maps registered command names to descriptors and manager keys to
// their owning instances. Concurrency-safe: registration normally happens
// during setup, but lookups can race a late registration.
type Catalog struct {
	mu       sync.RWMutex
	commands map[string]*CommandDescriptor
	managers map[string]any
}

// NewCatalog returns an empty command catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		commands: make(map[string]*CommandDescriptor),
		managers: make(map[string]any),
	}
}

// Register adds a command descriptor, rejecting duplicates and descriptors
// without exactly one body.
func (t *Catalog) Register(desc *CommandDescriptor) error {
	if desc == nil || desc.Name == "" {
		return errspkg.ErrCommandNameRequired
	}
	if (desc.Run == nil) == (desc.Stream == nil) {
		return errspkg.ErrCommandHandlerRequired
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.commands[desc.Name]; ok {
		return fmt.Errorf("%w: command %q", errspkg.ErrDuplicateRegistration, desc.Name)
	}
	t.commands[desc.Name] = desc
	return nil
}

// Lookup returns the descriptor for a command name, or false when absent.
func (t *Catalog) Lookup(name string) (*CommandDescriptor, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	desc, ok := t.commands[name]
	return desc, ok
}

// RegisterManager records the instance owning the commands grouped under key.
func (t *Catalog) RegisterManager(key string, instance any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.managers[key] = instance
}

// Owner returns the manager instance registered under key, or nil.
func (t *Catalog) Owner(key string) any {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.managers[key]
}

// CommandError wraps a failure raised inside a command body or its routing.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return "gateflow: command " + e.Command + " failed: " + e.Err.Error()
}

func (e *CommandError) Unwrap() error { return e.Err }

// routeInteraction resolves the target command, applies admission control,
// builds its keyword arguments, and hands off to the reply driver. An
// interaction naming no registered command is a no-op, not an error.
func (c *Client) routeInteraction(ctx context.Context, interaction *objects.Interaction) error {
	desc, ok := c.catalog.Lookup(interaction.Data.Name)
	if !ok {
		return nil
	}

	start := time.Now()
	mctx := objects.NewMessageContext(interaction, desc.Name)

	if err := c.throttler.Admit(ctx, mctx); err != nil {
		if errors.Is(err, errspkg.ErrThrottled) {
			throttleRejections.WithLabelValues(desc.Name).Inc()
		}
		commandsExecuted.WithLabelValues(desc.Name, "throttled").Inc()
		return &CommandError{Command: desc.Name, Err: err}
	}

	kwargs := buildKwargs(desc.Params, interaction.Data.Options)

	err := c.respondInteraction(ctx, responderFromCommand(desc), mctx, interaction, kwargs)
	status := "ok"
	if err != nil {
		status = "error"
	}
	commandsExecuted.WithLabelValues(desc.Name, status).Inc()
	commandDuration.WithLabelValues(desc.Name).Observe(time.Since(start).Seconds())
	return err
}

// buildKwargs starts from every declared parameter defaulted to nil, then
// overlays caller-supplied options by name. Caller values win for matching
// keys; unknown option names are dropped silently and never widen the
// declared set.
func buildKwargs(params []string, options []objects.InteractionOption) map[string]any {
	kwargs := make(map[string]any, len(params))
	for _, p := range params {
		kwargs[p] = nil
	}
	for _, opt := range options {
		if _, declared := kwargs[opt.Name]; declared {
			kwargs[opt.Name] = opt.Value
		}
	}
	return kwargs
}

// recoverCommandError attempts the registered error handler before letting a
// command failure propagate. Handlers declaring one parameter receive the
// error alone; two parameters receive the execution context and the error;
// anything else is a configuration error and the cause propagates unchanged.
func (c *Client) recoverCommandError(ctx context.Context, interaction *objects.Interaction, cause error) error {
	reg, ok := c.registry.Terminal(CommandErrorEvent)
	if !ok || reg.Respond == nil {
		return cause
	}

	n := len(reg.Params)
	if n < 1 || n >= 3 {
		return cause
	}

	command := ""
	if interaction.Data != nil {
		command = interaction.Data.Name
	}
	mctx := objects.NewMessageContext(interaction, command)

	// The error is always bound under the last declared parameter; the
	// response path fills the first with the context for the two-param shape.
	kwargs := map[string]any{reg.Params[n-1]: cause}

	return c.respondInteraction(ctx, responderFromRegistration(reg), mctx, interaction, kwargs)
}
