package client

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	errspkg "github.com/drblury/gateflow/internal/client/errors"
	"github.com/drblury/gateflow/internal/client/objects"
	"github.com/drblury/gateflow/internal/client/throttle"
)

func runCmd(reply any) CommandFunc {
	return func(context.Context, *CommandInvocation) (any, error) { return reply, nil }
}

func TestCatalogRegister(t *testing.T) {
	t.Parallel()

	t.Run("accepts single-shot", func(t *testing.T) {
		cat := NewCatalog()
		if err := cat.Register(&CommandDescriptor{Name: "ping", Run: runCmd("pong")}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := cat.Lookup("ping"); !ok {
			t.Fatal("expected command to be visible")
		}
	})

	t.Run("rejects missing name", func(t *testing.T) {
		cat := NewCatalog()
		if err := cat.Register(&CommandDescriptor{Run: runCmd(nil)}); !errors.Is(err, errspkg.ErrCommandNameRequired) {
			t.Fatalf("expected ErrCommandNameRequired, got %v", err)
		}
	})

	t.Run("rejects no body", func(t *testing.T) {
		cat := NewCatalog()
		if err := cat.Register(&CommandDescriptor{Name: "ping"}); !errors.Is(err, errspkg.ErrCommandHandlerRequired) {
			t.Fatalf("expected ErrCommandHandlerRequired, got %v", err)
		}
	})

	t.Run("rejects both bodies", func(t *testing.T) {
		cat := NewCatalog()
		desc := &CommandDescriptor{
			Name:   "ping",
			Run:    runCmd(nil),
			Stream: func(context.Context, *CommandInvocation, func(any) error) error { return nil },
		}
		if err := cat.Register(desc); !errors.Is(err, errspkg.ErrCommandHandlerRequired) {
			t.Fatalf("expected ErrCommandHandlerRequired, got %v", err)
		}
	})

	t.Run("rejects duplicate", func(t *testing.T) {
		cat := NewCatalog()
		if err := cat.Register(&CommandDescriptor{Name: "ping", Run: runCmd(nil)}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		err := cat.Register(&CommandDescriptor{Name: "ping", Run: runCmd(nil)})
		if !errors.Is(err, errspkg.ErrDuplicateRegistration) {
			t.Fatalf("expected ErrDuplicateRegistration, got %v", err)
		}
	})
}

func TestBuildKwargs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		params  []string
		options []objects.InteractionOption
		want    map[string]any
	}{
		{
			name:   "declared params default to nil",
			params: []string{"a", "b"},
			want:   map[string]any{"a": nil, "b": nil},
		},
		{
			name:    "options overlay matching keys",
			params:  []string{"a", "b"},
			options: []objects.InteractionOption{{Name: "b", Value: float64(5)}},
			want:    map[string]any{"a": nil, "b": float64(5)},
		},
		{
			name:    "unknown options are dropped",
			params:  []string{"a"},
			options: []objects.InteractionOption{{Name: "zz", Value: "x"}},
			want:    map[string]any{"a": nil},
		},
		{
			name: "no params yields empty map",
			options: []objects.InteractionOption{
				{Name: "a", Value: 1},
			},
			want: map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := buildKwargs(tt.params, tt.options)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("buildKwargs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRouteInteractionUnknownCommand(t *testing.T) {
	t.Parallel()

	c := testClient()
	if err := c.routeInteraction(context.Background(), testInteraction("missing")); err != nil {
		t.Fatalf("expected unknown command to be a no-op, got %v", err)
	}
	if got := testSender(c).sent(); len(got) != 0 {
		t.Fatalf("expected no replies, got %d", len(got))
	}
}

func TestRouteInteractionBuildsInvocation(t *testing.T) {
	t.Parallel()

	c := testClient()
	var got *CommandInvocation
	desc := &CommandDescriptor{
		Name:   "greet",
		Params: []string{"who"},
		Run: func(_ context.Context, inv *CommandInvocation) (any, error) {
			got = inv
			return "hello", nil
		},
	}
	if err := c.catalog.Register(desc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	interaction := testInteraction("greet")
	interaction.Data.Options = []objects.InteractionOption{{Name: "who", Value: "world"}}

	if err := c.routeInteraction(context.Background(), interaction); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil {
		t.Fatal("command body not invoked")
	}
	if got.Client != c {
		t.Fatal("expected the dispatching client on the invocation")
	}
	if got.Context == nil || got.Context.Command != "greet" {
		t.Fatal("expected a message context naming the command")
	}
	if got.Kwargs["who"] != "world" {
		t.Fatalf("expected option overlay, got %v", got.Kwargs)
	}

	sent := testSender(c).sent()
	if len(sent) != 1 || sent[0].kind != "initial" || sent[0].message.Content != "hello" {
		t.Fatalf("expected one initial reply with content, got %+v", sent)
	}
}

func TestRouteInteractionManagerInjection(t *testing.T) {
	t.Parallel()

	c := testClient()
	type greeter struct{ prefix string }
	owner := &greeter{prefix: "hi"}
	c.catalog.RegisterManager("greetings", owner)

	var self any
	desc := &CommandDescriptor{
		Name:         "greet",
		WantsManager: true,
		ManagerKey:   "greetings",
		Run: func(_ context.Context, inv *CommandInvocation) (any, error) {
			self = inv.Kwargs["self"]
			return inv.Manager.(*greeter).prefix, nil
		},
	}
	if err := c.catalog.Register(desc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := c.routeInteraction(context.Background(), testInteraction("greet")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if self != owner {
		t.Fatal("expected the manager instance under the self kwarg")
	}
}

func TestRouteInteractionThrottled(t *testing.T) {
	t.Parallel()

	c := testClient()
	c.throttler = admitNone{err: &throttle.ThrottleError{Key: "user:42", RetryAfter: time.Second}}
	if err := c.catalog.Register(&CommandDescriptor{Name: "ping", Run: runCmd("pong")}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := c.routeInteraction(context.Background(), testInteraction("ping"))
	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) || cmdErr.Command != "ping" {
		t.Fatalf("expected CommandError for ping, got %v", err)
	}
	if !errors.Is(err, errspkg.ErrThrottled) {
		t.Fatalf("expected ErrThrottled in the chain, got %v", err)
	}
	if got := testSender(c).sent(); len(got) != 0 {
		t.Fatalf("expected no replies for a throttled command, got %d", len(got))
	}
}

func TestRecoverCommandError(t *testing.T) {
	t.Parallel()

	cause := errors.New("kaboom")

	t.Run("no handler returns cause", func(t *testing.T) {
		c := testClient()
		if err := c.recoverCommandError(context.Background(), testInteraction("ping"), cause); !errors.Is(err, cause) {
			t.Fatalf("expected cause to propagate, got %v", err)
		}
	})

	t.Run("single param receives error", func(t *testing.T) {
		c := testClient()
		var got any
		reg := &EventRegistration{
			Params: []string{"error"},
			Respond: func(_ context.Context, inv *CommandInvocation) (any, error) {
				got = inv.Kwargs["error"]
				return "recovered", nil
			},
		}
		if err := c.registry.Register(CommandErrorEvent, reg); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if err := c.recoverCommandError(context.Background(), testInteraction("ping"), cause); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != cause {
			t.Fatalf("expected the cause under the declared param, got %v", got)
		}
		sent := testSender(c).sent()
		if len(sent) != 1 || sent[0].message.Content != "recovered" {
			t.Fatalf("expected the recovery reply, got %+v", sent)
		}
	})

	t.Run("two params receive context and error", func(t *testing.T) {
		c := testClient()
		var gotCtx, gotErr any
		reg := &EventRegistration{
			Params:       []string{"ctx", "error"},
			WantsContext: true,
			Respond: func(_ context.Context, inv *CommandInvocation) (any, error) {
				gotCtx = inv.Kwargs["ctx"]
				gotErr = inv.Kwargs["error"]
				return "recovered", nil
			},
		}
		if err := c.registry.Register(CommandErrorEvent, reg); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if err := c.recoverCommandError(context.Background(), testInteraction("ping"), cause); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if gotErr != cause {
			t.Fatalf("expected the cause under the last param, got %v", gotErr)
		}
		mctx, ok := gotCtx.(*objects.MessageContext)
		if !ok || mctx.Command != "ping" {
			t.Fatalf("expected the execution context under the first param, got %v", gotCtx)
		}
	})

	t.Run("too many params returns cause", func(t *testing.T) {
		c := testClient()
		reg := &EventRegistration{
			Params:  []string{"a", "b", "c"},
			Respond: func(context.Context, *CommandInvocation) (any, error) { return nil, nil },
		}
		if err := c.registry.Register(CommandErrorEvent, reg); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if err := c.recoverCommandError(context.Background(), testInteraction("ping"), cause); !errors.Is(err, cause) {
			t.Fatalf("expected cause to propagate, got %v", err)
		}
		if got := testSender(c).sent(); len(got) != 0 {
			t.Fatalf("expected no replies, got %d", len(got))
		}
	})

	t.Run("failing recovery wraps as command error", func(t *testing.T) {
		c := testClient()
		recoveryErr := errors.New("handler also broke")
		reg := &EventRegistration{
			Params: []string{"error"},
			Respond: func(context.Context, *CommandInvocation) (any, error) {
				return nil, recoveryErr
			},
		}
		if err := c.registry.Register(CommandErrorEvent, reg); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		err := c.recoverCommandError(context.Background(), testInteraction("ping"), cause)
		if !errors.Is(err, recoveryErr) {
			t.Fatalf("expected the recovery failure, got %v", err)
		}
	})
}
