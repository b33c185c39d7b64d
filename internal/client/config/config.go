package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config groups the settings required to run a gateway client. Zero values
// fall back to the defaults of the remote service's public endpoints.
type Config struct {
	// Token is the secret bot token used for both the gateway identify
	// handshake and REST authorization.
	Token string `env:"GATEFLOW_TOKEN"`

	// Gateway connection settings.
	SocketBaseURL   string `env:"GATEFLOW_SOCKET_URL" envDefault:"wss://gateway.discord.gg/"`
	GatewayVersion  int    `env:"GATEFLOW_GATEWAY_VERSION" envDefault:"9"`
	GatewayEncoding string `env:"GATEFLOW_GATEWAY_ENCODING" envDefault:"json"`
	// GatewayCompress asks the remote service to deflate dispatch payloads.
	GatewayCompress bool `env:"GATEFLOW_GATEWAY_COMPRESS"`
	// Intents selects which event families the gateway pushes to this client.
	Intents int `env:"GATEFLOW_INTENTS"`

	// APIBaseURL is the REST endpoint used for interaction replies.
	APIBaseURL string `env:"GATEFLOW_API_URL" envDefault:"https://discord.com/api/v9"`

	// ReceivedMessage is the fallback reply content used when a command
	// produces an empty result. It is sent ephemerally to the caller.
	ReceivedMessage string `env:"GATEFLOW_RECEIVED_MESSAGE" envDefault:"Command arrived, but there was no response."`

	// Throttle tuning. A non-positive rate disables admission control.
	ThrottleRate  int           `env:"GATEFLOW_THROTTLE_RATE" envDefault:"5"`
	ThrottlePer   time.Duration `env:"GATEFLOW_THROTTLE_PER" envDefault:"1m"`
	ThrottleScope string        `env:"GATEFLOW_THROTTLE_SCOPE" envDefault:"user"`

	// Metrics configuration.
	MetricsEnabled bool `env:"GATEFLOW_METRICS_ENABLED"`
	// MetricsPort is the port where Prometheus metrics will be exposed.
	MetricsPort int `env:"GATEFLOW_METRICS_PORT"`
}

// FromEnv builds a Config from GATEFLOW_* environment variables and
// validates it.
func FromEnv() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("gateflow: parsing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// GatewayURL assembles the websocket URL from the configured base, version,
// and encoding.
func (c *Config) GatewayURL() string {
	return fmt.Sprintf("%s?v=%d&encoding=%s", c.SocketBaseURL, c.GatewayVersion, c.GatewayEncoding)
}

func (c Config) String() string {
	copy := c
	if copy.Token != "" {
		copy.Token = "***REDACTED***"
	}
	// Use a type alias to avoid infinite recursion when printing
	type configAlias Config
	return fmt.Sprintf("%+v", configAlias(copy))
}

// Validate checks that the configuration can drive a client. The token is
// not required here so offline tests can build clients; it is checked when
// the gateway connects.
func (c *Config) Validate() error {
	var errs []error

	if c.SocketBaseURL == "" {
		errs = append(errs, errors.New("gateway: socket base URL is required"))
	}
	if c.GatewayVersion <= 0 {
		errs = append(errs, fmt.Errorf("gateway: invalid version %d", c.GatewayVersion))
	}
	if c.GatewayEncoding != "json" {
		errs = append(errs, fmt.Errorf("gateway: unsupported encoding %q", c.GatewayEncoding))
	}
	if c.APIBaseURL == "" {
		errs = append(errs, errors.New("rest: API base URL is required"))
	}
	if c.ThrottlePer < 0 {
		errs = append(errs, errors.New("throttle: window cannot be negative"))
	}
	if c.MetricsPort < 0 || c.MetricsPort > 65535 {
		errs = append(errs, fmt.Errorf("metrics: invalid port %d", c.MetricsPort))
	}

	return errors.Join(errs...)
}

// ValidateConfig is a convenience function to validate a config pointer.
func ValidateConfig(c *Config) error {
	if c == nil {
		return errors.New("config is nil")
	}
	return c.Validate()
}
