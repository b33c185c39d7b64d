package gateflow

import (
	clientpkg "github.com/drblury/gateflow/internal/client"
	configpkg "github.com/drblury/gateflow/internal/client/config"
	errspkg "github.com/drblury/gateflow/internal/client/errors"
	gatewaypkg "github.com/drblury/gateflow/internal/client/gateway"
	idspkg "github.com/drblury/gateflow/internal/client/ids"
	jsoncodec "github.com/drblury/gateflow/internal/client/jsoncodec"
	loggingpkg "github.com/drblury/gateflow/internal/client/logging"
	"github.com/drblury/gateflow/internal/client/objects"
	restpkg "github.com/drblury/gateflow/internal/client/rest"
	throttlepkg "github.com/drblury/gateflow/internal/client/throttle"
)

type (
	Config       = configpkg.Config
	Client       = clientpkg.Client
	Dependencies = clientpkg.Dependencies

	Registry          = clientpkg.Registry
	EventArgs         = clientpkg.EventArgs
	EventHandler      = clientpkg.EventHandler
	EventInvocation   = clientpkg.EventInvocation
	EventRegistration = clientpkg.EventRegistration
	EventOption       = clientpkg.EventOption

	Resolution             = clientpkg.Resolution
	MiddlewareFunc         = clientpkg.MiddlewareFunc
	MiddlewareBuilder      = clientpkg.MiddlewareBuilder
	MiddlewareRegistration = clientpkg.MiddlewareRegistration

	Catalog           = clientpkg.Catalog
	CommandDescriptor = clientpkg.CommandDescriptor
	CommandFunc       = clientpkg.CommandFunc
	StreamFunc        = clientpkg.StreamFunc
	CommandInvocation = clientpkg.CommandInvocation
	CommandError      = clientpkg.CommandError

	Gateway     = clientpkg.Gateway
	ReplySender = clientpkg.ReplySender
	Throttler   = clientpkg.Throttler

	GatewayConfig = gatewaypkg.Config
	GatewayConn   = gatewaypkg.Conn
	RESTClient    = restpkg.Client

	Cooldown       = throttlepkg.Cooldown
	CooldownConfig = throttlepkg.CooldownConfig
	ThrottleScope  = throttlepkg.Scope
	ThrottleError  = throttlepkg.ThrottleError

	Envelope          = objects.Envelope
	Interaction       = objects.Interaction
	InteractionData   = objects.InteractionData
	InteractionOption = objects.InteractionOption
	Message           = objects.Message
	MessageFlags      = objects.MessageFlags
	Embed             = objects.Embed
	EmbedField        = objects.EmbedField
	Attachment        = objects.Attachment
	User              = objects.User
	GuildMember       = objects.GuildMember
	MessageContext    = objects.MessageContext

	LogFields     = loggingpkg.LogFields
	ServiceLogger = loggingpkg.ServiceLogger
)

var (
	NewClient      = clientpkg.NewClient
	TryNewClient   = clientpkg.TryNewClient
	NewRegistry    = clientpkg.NewRegistry
	NewCatalog     = clientpkg.NewCatalog
	ConfigFromEnv  = configpkg.FromEnv
	ValidateConfig = configpkg.ValidateConfig

	DefaultMiddlewares          = clientpkg.DefaultMiddlewares
	ReadyMiddleware             = clientpkg.ReadyMiddleware
	InteractionCreateMiddleware = clientpkg.InteractionCreateMiddleware

	Continue = clientpkg.Continue
	Terminal = clientpkg.Terminal

	WithClientArg = clientpkg.WithClientArg

	NewGatewayConn = gatewaypkg.NewConn
	NewRESTClient  = restpkg.New
	NewCooldown    = throttlepkg.NewCooldown

	NewMessageContext = objects.NewMessageContext

	NewSlogServiceLogger = loggingpkg.NewSlogServiceLogger
	NewWatermillAdapter  = loggingpkg.NewWatermillAdapter

	CorrelationID = idspkg.CorrelationID

	Marshal   = jsoncodec.Marshal
	Unmarshal = jsoncodec.Unmarshal
	Encode    = jsoncodec.Encode
	Decode    = jsoncodec.Decode

	ErrInvalidName               = errspkg.ErrInvalidName
	ErrDuplicateRegistration     = errspkg.ErrDuplicateRegistration
	ErrUnregisteredMiddleware    = errspkg.ErrUnregisteredMiddleware
	ErrMalformedMiddlewareResult = errspkg.ErrMalformedMiddlewareResult
	ErrThrottled                 = errspkg.ErrThrottled
	ErrConfigRequired            = errspkg.ErrConfigRequired
	ErrLoggerRequired            = errspkg.ErrLoggerRequired
	ErrTokenRequired             = errspkg.ErrTokenRequired
	ErrHandlerRequired           = errspkg.ErrHandlerRequired
	ErrCommandNameRequired       = errspkg.ErrCommandNameRequired
	ErrCommandHandlerRequired    = errspkg.ErrCommandHandlerRequired
	ErrEnvelopeRequired          = errspkg.ErrEnvelopeRequired
	ErrGatewayClosed             = errspkg.ErrGatewayClosed
	ErrReconnectRequested        = errspkg.ErrReconnectRequested
)

// Reserved names of the event namespace.
const (
	TerminalPrefix    = clientpkg.TerminalPrefix
	CommandErrorEvent = clientpkg.CommandErrorEvent
)

// FlagEphemeral marks a reply as visible only to the requester.
const FlagEphemeral = objects.FlagEphemeral

// Throttle scopes.
const (
	ScopeGlobal  = throttlepkg.ScopeGlobal
	ScopeUser    = throttlepkg.ScopeUser
	ScopeChannel = throttlepkg.ScopeChannel
	ScopeGuild   = throttlepkg.ScopeGuild
)

// GatewayEvents lists every event name the client pre-populates at startup.
var GatewayEvents = clientpkg.GatewayEvents
