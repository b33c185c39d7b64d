package errors

import sterrors "errors"

var (
	// ErrInvalidName is returned when an event registration name does not
	// follow the terminal-handler naming convention or is not a name the
	// client recognizes.
	ErrInvalidName = sterrors.New("gateflow: event name is invalid")

	// ErrDuplicateRegistration is returned when a terminal handler or command
	// name is bound twice. Re-registration is a programming error.
	ErrDuplicateRegistration = sterrors.New("gateflow: name is already registered")

	// ErrUnregisteredMiddleware is returned when a middleware step resolves to
	// a name with no registry entry.
	ErrUnregisteredMiddleware = sterrors.New("gateflow: middleware has not been registered")

	// ErrMalformedMiddlewareResult is returned when a middleware step returns
	// an empty resolution.
	ErrMalformedMiddlewareResult = sterrors.New("gateflow: middleware returned a malformed resolution")

	// ErrThrottled is returned by the throttler when a caller exceeds the
	// configured rate policy.
	ErrThrottled = sterrors.New("gateflow: command invocation throttled")

	ErrConfigRequired         = sterrors.New("gateflow: configuration is required")
	ErrLoggerRequired         = sterrors.New("gateflow: logger is required")
	ErrTokenRequired          = sterrors.New("gateflow: bot token is required")
	ErrHandlerRequired        = sterrors.New("gateflow: handler function is required")
	ErrCommandNameRequired    = sterrors.New("gateflow: command name is required")
	ErrCommandHandlerRequired = sterrors.New("gateflow: command requires exactly one of Run or Stream")
	ErrEnvelopeRequired       = sterrors.New("gateflow: envelope payload is required")
	ErrGatewayClosed          = sterrors.New("gateflow: gateway connection closed")
	ErrReconnectRequested     = sterrors.New("gateflow: gateway requested a reconnect")
)
