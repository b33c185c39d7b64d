package client

import (
	"context"
	"fmt"

	"github.com/tidwall/gjson"

	errspkg "github.com/drblury/gateflow/internal/client/errors"
	"github.com/drblury/gateflow/internal/client/jsoncodec"
	loggingpkg "github.com/drblury/gateflow/internal/client/logging"
	"github.com/drblury/gateflow/internal/client/objects"
)

// MiddlewareBuilder constructs a middleware step using the client instance.
type MiddlewareBuilder func(*Client) MiddlewareFunc

// MiddlewareRegistration captures how a middleware step should be installed
// on the client registry.
type MiddlewareRegistration struct {
	Event      string
	Middleware MiddlewareFunc
	Builder    MiddlewareBuilder
}

// DefaultMiddlewares returns the built-in middleware chain installed by the
// client constructor.
func DefaultMiddlewares() []MiddlewareRegistration {
	return []MiddlewareRegistration{
		ReadyMiddleware(),
		InteractionCreateMiddleware(),
	}
}

// ReadyMiddleware captures the bot user and session id from the ready
// payload before handing the event to its terminal slot.
func ReadyMiddleware() MiddlewareRegistration {
	return MiddlewareRegistration{
		Event: "ready",
		Builder: func(c *Client) MiddlewareFunc {
			return c.readyMiddleware
		},
	}
}

// InteractionCreateMiddleware routes inbound interactions through the
// command router before handing the event to its terminal slot.
func InteractionCreateMiddleware() MiddlewareRegistration {
	return MiddlewareRegistration{
		Event: "interaction_create",
		Builder: func(c *Client) MiddlewareFunc {
			return c.interactionCreateMiddleware
		},
	}
}

func (c *Client) registerConfiguredMiddlewares(deps Dependencies) {
	var defaults []MiddlewareRegistration
	if !deps.DisableDefaultMiddlewares {
		defaults = DefaultMiddlewares()
	}
	registrations := make([]MiddlewareRegistration, 0, len(defaults)+len(deps.Middlewares))
	registrations = append(registrations, defaults...)
	registrations = append(registrations, deps.Middlewares...)

	for _, reg := range registrations {
		mw := reg.Middleware
		if mw == nil && reg.Builder != nil {
			mw = reg.Builder(c)
		}
		if mw == nil {
			panic(fmt.Sprintf("middleware registration for %q requires Middleware or Builder", reg.Event))
		}
		c.registry.RegisterMiddleware(reg.Event, mw)
	}
}

func (c *Client) readyMiddleware(ctx context.Context, _ *Client, env *objects.Envelope, args EventArgs) (Resolution, error) {
	c.Logger.Debug("`ready` middleware has been invoked", nil)

	if user := gjson.GetBytes(env.Data, "user"); user.Exists() {
		bot := &objects.User{}
		if err := jsoncodec.Unmarshal([]byte(user.Raw), bot); err != nil {
			return Resolution{}, fmt.Errorf("gateflow: decoding ready user: %w", err)
		}
		c.setBot(bot)
	}
	if session := gjson.GetBytes(env.Data, "session_id"); session.Exists() {
		c.setSessionID(session.String())
	}

	return Terminal("on_ready", args), nil
}

// interactionCreateMiddleware handles command execution for inbound
// interactions. Routing failures go through the error recovery path; an
// unrecovered failure aborts this dispatch, so the on_interaction_create
// terminal never observes it.
func (c *Client) interactionCreateMiddleware(ctx context.Context, _ *Client, env *objects.Envelope, args EventArgs) (Resolution, error) {
	if len(env.Data) == 0 {
		return Resolution{}, errspkg.ErrEnvelopeRequired
	}

	interaction := &objects.Interaction{}
	if err := jsoncodec.Unmarshal(env.Data, interaction); err != nil {
		return Resolution{}, fmt.Errorf("gateflow: decoding interaction: %w", err)
	}

	if interaction.Data != nil && interaction.Data.Name != "" {
		if err := c.routeInteraction(ctx, interaction); err != nil {
			if err = c.recoverCommandError(ctx, interaction, err); err != nil {
				c.Logger.Error("Command execution failed", err, loggingpkg.LogFields{
					"command": interaction.Data.Name,
				})
				return Resolution{}, err
			}
		}
	}

	out := NewEventArgs()
	out.Args = []any{interaction}
	return Terminal("on_interaction_create", out), nil
}
