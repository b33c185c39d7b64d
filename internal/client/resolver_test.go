package client

import (
	"context"
	"errors"
	"testing"

	errspkg "github.com/drblury/gateflow/internal/client/errors"
	"github.com/drblury/gateflow/internal/client/objects"
)

func TestResolutionIsTerminal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		res  Resolution
		want bool
	}{
		{name: "terminal constructor", res: Terminal("on_ready", NewEventArgs()), want: true},
		{name: "continue to plain name", res: Continue("message_create", NewEventArgs()), want: false},
		{name: "continue to prefixed name", res: Continue("on_message_create", NewEventArgs()), want: true},
		{name: "zero value", res: Resolution{}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.res.IsTerminal(); got != tt.want {
				t.Fatalf("IsTerminal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolvePassThrough(t *testing.T) {
	t.Parallel()

	c := testClient()
	res, err := c.resolve(context.Background(), &objects.Envelope{}, "typing_start", NewEventArgs())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.IsTerminal() || res.Name() != "on_typing_start" {
		t.Fatalf("expected terminal on_typing_start, got %q (terminal=%v)", res.Name(), res.IsTerminal())
	}
}

func TestResolveUnsetTerminalSlot(t *testing.T) {
	t.Parallel()

	// An unset terminal slot is still a valid terminal result; whether a
	// handler is bound is the dispatcher's concern, not the resolver's.
	c := testClient()
	res, err := c.resolve(context.Background(), &objects.Envelope{}, "on_guild_create", NewEventArgs())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.IsTerminal() || res.Name() != "on_guild_create" {
		t.Fatalf("expected terminal on_guild_create, got %q", res.Name())
	}
}

func TestResolveUnknownName(t *testing.T) {
	t.Parallel()

	c := testClient()
	_, err := c.resolve(context.Background(), &objects.Envelope{}, "made_up_event", NewEventArgs())
	if !errors.Is(err, errspkg.ErrUnregisteredMiddleware) {
		t.Fatalf("expected ErrUnregisteredMiddleware, got %v", err)
	}
}

func TestResolveMultiHopChain(t *testing.T) {
	t.Parallel()

	c := testClient()
	var order []string

	c.registry.RegisterMiddleware("message_create", func(_ context.Context, _ *Client, _ *objects.Envelope, args EventArgs) (Resolution, error) {
		order = append(order, "first")
		args.Kwargs["stage"] = "first"
		return Continue("enrich_message", args), nil
	})
	c.registry.RegisterMiddleware("enrich_message", func(_ context.Context, _ *Client, _ *objects.Envelope, args EventArgs) (Resolution, error) {
		order = append(order, "second")
		args.Args = append(args.Args, "payload")
		return Terminal("on_message_create", args), nil
	})

	res, err := c.resolve(context.Background(), &objects.Envelope{}, "message_create", NewEventArgs())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Name() != "on_message_create" {
		t.Fatalf("expected on_message_create, got %q", res.Name())
	}
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("expected both steps to run in order, got %v", order)
	}
	if res.Args().Kwargs["stage"] != "first" {
		t.Fatal("expected kwargs to flow through the chain")
	}
	if len(res.Args().Args) != 1 || res.Args().Args[0] != "payload" {
		t.Fatalf("expected positional args to flow through the chain, got %v", res.Args().Args)
	}
}

func TestResolveContinueToPrefixedNameStops(t *testing.T) {
	t.Parallel()

	c := testClient()
	c.registry.RegisterMiddleware("message_create", func(_ context.Context, _ *Client, _ *objects.Envelope, args EventArgs) (Resolution, error) {
		return Continue("on_message_create", args), nil
	})

	res, err := c.resolve(context.Background(), &objects.Envelope{}, "message_create", NewEventArgs())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.IsTerminal() || res.Name() != "on_message_create" {
		t.Fatalf("expected prefixed continuation to terminate, got %q", res.Name())
	}
}

func TestResolveMiddlewareFailures(t *testing.T) {
	t.Parallel()

	stepErr := errors.New("boom")

	tests := []struct {
		name    string
		fn      MiddlewareFunc
		wantErr error
	}{
		{
			name: "step error propagates",
			fn: func(context.Context, *Client, *objects.Envelope, EventArgs) (Resolution, error) {
				return Resolution{}, stepErr
			},
			wantErr: stepErr,
		},
		{
			name: "empty result is malformed",
			fn: func(_ context.Context, _ *Client, _ *objects.Envelope, args EventArgs) (Resolution, error) {
				return Resolution{}, nil
			},
			wantErr: errspkg.ErrMalformedMiddlewareResult,
		},
		{
			name: "unknown next name",
			fn: func(_ context.Context, _ *Client, _ *objects.Envelope, args EventArgs) (Resolution, error) {
				return Continue("nowhere", args), nil
			},
			wantErr: errspkg.ErrUnregisteredMiddleware,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := testClient()
			c.registry.RegisterMiddleware("message_create", tt.fn)
			_, err := c.resolve(context.Background(), &objects.Envelope{}, "message_create", NewEventArgs())
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
