// Package gateflow is a client for a push-based, event-driven gateway. It
// holds a persistent websocket connection to the remote dispatch endpoint,
// receives typed event envelopes, routes each through a chain of middleware
// steps, and invokes user-registered terminal handlers. The interaction path
// resolves inbound command invocations against a command catalog, builds
// keyword arguments from declared parameters and caller options, applies
// admission control, and executes single-shot or streaming command bodies,
// sending one initial reply plus any follow-ups over the REST API.
//
// Inbound envelopes travel over an internal Watermill gochannel bus so the
// socket read pump stays decoupled from dispatch; each envelope then runs as
// an independent task with its own correlation ID, OpenTelemetry span, and
// panic isolation. Failures inside one dispatch never stop the loop.
//
// A minimal setup fills Config (or loads it with ConfigFromEnv), creates a
// Client, registers events with On and commands with RegisterCommand, and
// calls Start; see examples/simple for a copy/paste starting point.
//
// # Events and middleware
//
// Every supported event name is reserved at construction time with a
// pass-through middleware slot and an on_-prefixed terminal slot. User code
// binds terminal handlers only; binding the same name twice or a name
// without the on_ prefix is a registration error. The built-in chain
// installs middleware for ready (captures the bot user) and
// interaction_create (drives command execution); custom middleware steps
// can be appended through Dependencies.Middlewares.
//
// # Commands
//
// Commands declare their parameter names and capability flags once at
// registration. Single-shot bodies return one reply value; streaming bodies
// push a finite sequence through a send callback, where the first value
// becomes the initial reply and the rest become follow-ups. A registered
// on_command_error handler intercepts command failures with either an
// (error) or a (context, error) parameter shape.
package gateflow
