package client

import (
	"context"
	"errors"
	"strings"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	errspkg "github.com/drblury/gateflow/internal/client/errors"
	"github.com/drblury/gateflow/internal/client/jsoncodec"
	loggingpkg "github.com/drblury/gateflow/internal/client/logging"
	"github.com/drblury/gateflow/internal/client/objects"
)

// metadata keys on the internal envelope bus.
const (
	metadataKeyCorrelationID = "correlation_id"
	metadataKeyEventName     = "gateway_event"
)

// handleBusMessage consumes one raw envelope from the internal bus and
// launches its dispatch as an independent task. Envelopes start dispatching
// in arrival order, but completion order across envelopes is not guaranteed.
func (c *Client) handleBusMessage(msg *message.Message) error {
	env := &objects.Envelope{}
	if err := jsoncodec.Unmarshal(msg.Payload, env); err != nil {
		c.Logger.Error("Dropping undecodable envelope", err, loggingpkg.LogFields{
			"message_uuid": msg.UUID,
		})
		eventsDropped.WithLabelValues("decode").Inc()
		return nil
	}

	correlationID := msg.Metadata[metadataKeyCorrelationID]

	c.tasks.Add(1)
	go c.runDispatch(msg.Context(), env, correlationID)
	return nil
}

// runDispatch isolates one dispatch: a panic or error inside it never
// terminates the dispatch loop or other in-flight tasks.
func (c *Client) runDispatch(ctx context.Context, env *objects.Envelope, correlationID string) {
	defer c.tasks.Done()
	defer func() {
		if r := recover(); r != nil {
			c.Logger.Error("Dispatch panicked", nil, loggingpkg.LogFields{
				"event":          env.EventName,
				"correlation_id": correlationID,
				"panic":          r,
			})
			eventsDropped.WithLabelValues("panic").Inc()
		}
	}()

	tracer := otel.Tracer("gateflow-dispatch")
	ctx, span := tracer.Start(ctx, "DispatchEvent")
	defer span.End()
	span.SetAttributes(
		attribute.String("event.name", env.EventName),
		attribute.String("event.correlation_id", correlationID),
	)

	c.dispatch(ctx, env)
}

// dispatch is the event entry point: it case-normalizes the envelope's event
// name, resolves it through the middleware chain, and invokes the bound
// terminal handler. An unbound terminal is a normal state; the event is
// silently dropped.
func (c *Client) dispatch(ctx context.Context, env *objects.Envelope) {
	name := strings.ToLower(env.EventName)
	if name == "" {
		return
	}

	res, err := c.resolve(ctx, env, name, NewEventArgs())
	if err != nil {
		c.Logger.Error("Middleware resolution failed", err, loggingpkg.LogFields{
			"event": name,
		})
		eventsDropped.WithLabelValues(dropReason(err)).Inc()
		return
	}

	reg, bound := c.registry.Terminal(res.Name())
	if !bound || reg.Handler == nil {
		c.Logger.Trace("No terminal handler bound", loggingpkg.LogFields{
			"event":    name,
			"terminal": res.Name(),
		})
		eventsDropped.WithLabelValues("unbound").Inc()
		return
	}

	args := res.Args()
	kwargs := args.Kwargs
	if kwargs == nil {
		kwargs = make(map[string]any)
	}
	if reg.WantsClient {
		kwargs["self"] = c
	}

	inv := &EventInvocation{Client: c, Args: args.Args, Kwargs: kwargs}
	if err := reg.Handler(ctx, inv); err != nil {
		c.Logger.Error("Event handler failed", err, loggingpkg.LogFields{
			"event":    name,
			"terminal": res.Name(),
		})
		return
	}

	eventsDispatched.WithLabelValues(name).Inc()
}

func dropReason(err error) string {
	switch {
	case errors.Is(err, errspkg.ErrUnregisteredMiddleware):
		return "unregistered_middleware"
	case errors.Is(err, errspkg.ErrMalformedMiddlewareResult):
		return "malformed_result"
	default:
		return "middleware_error"
	}
}
