package client

import (
	"context"
	"fmt"
	"strings"

	errspkg "github.com/drblury/gateflow/internal/client/errors"
	"github.com/drblury/gateflow/internal/client/objects"
)

// Resolution is the result of one middleware step: either a continuation to
// the next step or a terminal name with the final argument set. Middleware
// builds values through Continue and Terminal; the zero value is malformed.
type Resolution struct {
	name     string
	args     EventArgs
	terminal bool
}

// Continue resolves on to the next registered step.
func Continue(next string, args EventArgs) Resolution {
	return Resolution{name: next, args: args}
}

// Terminal stops resolution at the given terminal name.
func Terminal(name string, args EventArgs) Resolution {
	return Resolution{name: name, args: args, terminal: true}
}

// Name returns the next or terminal name carried by the resolution.
func (r Resolution) Name() string { return r.name }

// Args returns the argument set carried by the resolution.
func (r Resolution) Args() EventArgs { return r.args }

// IsTerminal reports whether resolution stops here. A continuation naming a
// terminal-prefixed slot is treated as terminal as well.
func (r Resolution) IsTerminal() bool {
	return r.terminal || strings.HasPrefix(r.name, TerminalPrefix)
}

// resolve handles all middleware recursively, stopping at the first terminal
// name. No cycle detection is performed: a middleware chain that references
// itself recurses without bound, and keeping chains acyclic is the middleware
// author's responsibility.
func (c *Client) resolve(ctx context.Context, env *objects.Envelope, name string, args EventArgs) (Resolution, error) {
	entry, ok := c.registry.lookup(name)
	if !ok {
		return Resolution{}, fmt.Errorf("%w: %q", errspkg.ErrUnregisteredMiddleware, name)
	}

	switch entry.kind {
	case entryTerminal:
		// An unset terminal slot is still the terminal result: no middleware
		// was registered beyond the default pass-through.
		return Terminal(name, args), nil

	case entryAlias:
		if strings.HasPrefix(entry.next, TerminalPrefix) {
			return Terminal(entry.next, args), nil
		}
		return c.resolve(ctx, env, entry.next, args)

	default:
		res, err := entry.middleware(ctx, c, env, args)
		if err != nil {
			return Resolution{}, err
		}
		if res.Name() == "" {
			return Resolution{}, fmt.Errorf("%w: step %q", errspkg.ErrMalformedMiddlewareResult, name)
		}
		if _, known := c.registry.lookup(res.Name()); !known {
			return Resolution{}, fmt.Errorf("%w: %q", errspkg.ErrUnregisteredMiddleware, res.Name())
		}
		if res.IsTerminal() {
			return Terminal(res.Name(), res.Args()), nil
		}
		return c.resolve(ctx, env, res.Name(), res.Args())
	}
}
