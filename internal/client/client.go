package client

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	configpkg "github.com/drblury/gateflow/internal/client/config"
	errspkg "github.com/drblury/gateflow/internal/client/errors"
	"github.com/drblury/gateflow/internal/client/gateway"
	idspkg "github.com/drblury/gateflow/internal/client/ids"
	"github.com/drblury/gateflow/internal/client/jsoncodec"
	loggingpkg "github.com/drblury/gateflow/internal/client/logging"
	"github.com/drblury/gateflow/internal/client/objects"
	"github.com/drblury/gateflow/internal/client/rest"
	"github.com/drblury/gateflow/internal/client/throttle"

	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// envelopeTopic is the internal bus topic carrying raw gateway envelopes
// from the read pump to the dispatch handler.
const envelopeTopic = "gateway.events"

var routerRun = func(router *message.Router, ctx context.Context) error {
	return router.Run(ctx)
}

// Gateway supplies envelopes from the remote dispatch endpoint. It is
// otherwise opaque to the dispatch core.
type Gateway interface {
	Connect(ctx context.Context) error
	Receive(ctx context.Context) (*objects.Envelope, error)
	Close() error
}

// ReplySender delivers interaction replies. Failures propagate as
// request-scoped errors, never process-fatal ones.
type ReplySender interface {
	SendInitial(ctx context.Context, interactionID, token string, msg *objects.Message) error
	SendFollowUp(ctx context.Context, applicationID, token string, msg *objects.Message) error
}

// Throttler applies admission control to command invocations. The router
// only invokes it and lets it fail fast; policy lives in the implementation.
type Throttler interface {
	Admit(ctx context.Context, mctx *objects.MessageContext) error
}

// Dependencies holds the optional collaborators a Client can use. Leave
// fields nil to use the defaults built from the configuration.
type Dependencies struct {
	Gateway   Gateway
	Replies   ReplySender
	Throttler Throttler

	// Middlewares are appended after the default middleware chain.
	Middlewares []MiddlewareRegistration
	// DisableDefaultMiddlewares skips installing the built-in chain.
	DisableDefaultMiddlewares bool
}

// Client is the main instance between the programmer and the remote
// service. Register events and commands on it before calling Start.
type Client struct {
	Conf   *configpkg.Config
	Logger loggingpkg.ServiceLogger

	registry  *Registry
	catalog   *Catalog
	gateway   Gateway
	replies   ReplySender
	throttler Throttler

	bus    *gochannel.GoChannel
	router *message.Router

	tasks sync.WaitGroup

	mu        sync.RWMutex
	bot       *objects.User
	sessionID string
}

// NewClient constructs a Client for the supplied configuration, panicking on
// invalid wiring the way a misconfigured process should fail at startup.
func NewClient(conf *configpkg.Config, log loggingpkg.ServiceLogger, deps Dependencies) *Client {
	c, err := TryNewClient(conf, log, deps)
	if err != nil {
		panic(err)
	}
	return c
}

// TryNewClient constructs a Client, returning wiring errors instead of
// panicking.
func TryNewClient(conf *configpkg.Config, log loggingpkg.ServiceLogger, deps Dependencies) (*Client, error) {
	if conf == nil {
		return nil, errspkg.ErrConfigRequired
	}
	if log == nil {
		return nil, errspkg.ErrLoggerRequired
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}

	log.Info("Creating gateway client", loggingpkg.LogFields{
		"gateway_url": conf.GatewayURL(),
		"config":      conf,
	})

	c := &Client{
		Conf:      conf,
		Logger:    log,
		registry:  NewRegistry(GatewayEvents),
		catalog:   NewCatalog(),
		gateway:   deps.Gateway,
		replies:   deps.Replies,
		throttler: deps.Throttler,
	}

	if c.gateway == nil {
		c.gateway = gateway.NewConn(gateway.Config{
			URL:      conf.GatewayURL(),
			Token:    conf.Token,
			Intents:  conf.Intents,
			Compress: conf.GatewayCompress,
			Logger:   log,
		})
	}
	if c.replies == nil {
		c.replies = rest.New(conf.APIBaseURL, conf.Token, log)
	}
	if c.throttler == nil {
		c.throttler = throttle.NewCooldown(throttle.CooldownConfig{
			Rate:  conf.ThrottleRate,
			Per:   conf.ThrottlePer,
			Scope: throttle.Scope(conf.ThrottleScope),
		})
	}

	wmLogger := loggingpkg.NewWatermillAdapter(log)
	c.bus = gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, wmLogger)

	router, err := message.NewRouter(message.RouterConfig{}, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("gateflow: building router: %w", err)
	}
	c.router = router
	c.router.AddMiddleware(c.correlationIDMiddleware(), c.logEnvelopesMiddleware())
	c.router.AddNoPublisherHandler(
		"dispatch_gateway_events",
		envelopeTopic,
		c.bus,
		c.handleBusMessage,
	)

	c.registerConfiguredMiddlewares(deps)

	if conf.MetricsEnabled {
		registerMetrics()
	}

	return c, nil
}

// EventOption customises an event registration's capability descriptor.
type EventOption func(*EventRegistration)

// WithClientArg asks the dispatcher to inject the client under the "self"
// kwarg when invoking the handler.
func WithClientArg() EventOption {
	return func(reg *EventRegistration) { reg.WantsClient = true }
}

// On binds a terminal handler to an event name. The name must carry the
// terminal prefix and match a supported event; binding a name twice is a
// programming error surfaced as ErrDuplicateRegistration.
func (c *Client) On(name string, handler EventHandler, opts ...EventOption) error {
	if handler == nil {
		return errspkg.ErrHandlerRequired
	}
	reg := &EventRegistration{Handler: handler}
	for _, opt := range opts {
		opt(reg)
	}
	return c.registry.Register(name, reg)
}

// OnCommandError registers the error recovery handler. The declared
// parameter names decide where the raised error is bound: the last parameter
// always receives the error, and a two-parameter shape receives the
// execution context first.
func (c *Client) OnCommandError(handler CommandFunc, params ...string) error {
	if handler == nil {
		return errspkg.ErrHandlerRequired
	}
	return c.registry.Register(CommandErrorEvent, &EventRegistration{
		Respond:      handler,
		Params:       params,
		WantsContext: len(params) == 2,
	})
}

// RegisterCommand adds a command descriptor to the catalog.
func (c *Client) RegisterCommand(desc *CommandDescriptor) error {
	return c.catalog.Register(desc)
}

// RegisterManager records the instance owning a group of commands so the
// router can inject it into handlers that declared WantsManager.
func (c *Client) RegisterManager(key string, instance any) {
	c.catalog.RegisterManager(key, instance)
}

// Bot returns the authenticated user captured from the ready payload, or
// nil before the gateway handshake completes.
func (c *Client) Bot() *objects.User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.bot
}

func (c *Client) setBot(user *objects.User) {
	c.mu.Lock()
	c.bot = user
	c.mu.Unlock()
}

// SessionID returns the gateway session identifier from the ready payload.
func (c *Client) SessionID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sessionID
}

func (c *Client) setSessionID(id string) {
	c.mu.Lock()
	c.sessionID = id
	c.mu.Unlock()
}

// Start connects the gateway, pumps envelopes onto the internal bus, and
// runs the dispatch router until the context is cancelled.
func (c *Client) Start(ctx context.Context) error {
	c.startMetricsServer()

	if err := c.gateway.Connect(ctx); err != nil {
		return err
	}
	go c.readPump(ctx)

	return routerRun(c.router, ctx)
}

// Close tears down the gateway session and the internal bus, then waits for
// in-flight dispatch tasks.
func (c *Client) Close() error {
	err := c.gateway.Close()
	if cerr := c.router.Close(); err == nil {
		err = cerr
	}
	if cerr := c.bus.Close(); err == nil {
		err = cerr
	}
	c.tasks.Wait()
	return err
}

// readPump forwards gateway envelopes onto the internal bus, reconnecting
// with capped backoff when the session drops.
func (c *Client) readPump(ctx context.Context) {
	backoff := time.Second
	const maxBackoff = time.Minute

	for {
		env, err := c.gateway.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.Logger.Error("Gateway receive failed, reconnecting", err, loggingpkg.LogFields{
				"backoff": backoff.String(),
			})
			c.gateway.Close()

			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			if backoff < maxBackoff {
				backoff *= 2
			}

			if err := c.gateway.Connect(ctx); err != nil {
				c.Logger.Error("Gateway reconnect failed", err, nil)
			}
			continue
		}
		backoff = time.Second

		payload, err := jsoncodec.Marshal(env)
		if err != nil {
			c.Logger.Error("Failed to marshal envelope", err, nil)
			continue
		}

		msg := message.NewMessage(idspkg.CorrelationID(), payload)
		msg.SetContext(ctx)
		msg.Metadata.Set(metadataKeyEventName, env.EventName)

		if err := c.bus.Publish(envelopeTopic, msg); err != nil {
			c.Logger.Error("Failed to publish envelope", err, loggingpkg.LogFields{
				"event": env.EventName,
			})
		}
	}
}

// correlationIDMiddleware ensures each envelope on the bus carries a
// correlation identifier.
func (c *Client) correlationIDMiddleware() message.HandlerMiddleware {
	return func(h message.HandlerFunc) message.HandlerFunc {
		return func(msg *message.Message) ([]*message.Message, error) {
			if _, ok := msg.Metadata[metadataKeyCorrelationID]; !ok {
				msg.Metadata[metadataKeyCorrelationID] = idspkg.CorrelationID()
			}
			return h(msg)
		}
	}
}

// logEnvelopesMiddleware logs every envelope consumed from the bus.
func (c *Client) logEnvelopesMiddleware() message.HandlerMiddleware {
	return func(h message.HandlerFunc) message.HandlerFunc {
		return func(msg *message.Message) ([]*message.Message, error) {
			c.Logger.Debug("Processing envelope", loggingpkg.LogFields{
				"message_uuid": msg.UUID,
				"event":        msg.Metadata[metadataKeyEventName],
				"metadata":     msg.Metadata,
			})
			return h(msg)
		}
	}
}

func (c *Client) startMetricsServer() {
	if !c.Conf.MetricsEnabled || c.Conf.MetricsPort <= 0 {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	addr := fmt.Sprintf(":%d", c.Conf.MetricsPort)

	c.Logger.Info("Starting metrics server", loggingpkg.LogFields{"address": addr})
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			c.Logger.Error("Failed to start metrics server", err, loggingpkg.LogFields{"address": addr})
		}
	}()
}
