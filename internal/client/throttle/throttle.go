// Package throttle provides the admission-control collaborator consulted by
// the command router before executing a command.
package throttle

import (
	"context"
	"fmt"
	"sync"
	"time"

	errspkg "github.com/drblury/gateflow/internal/client/errors"
	"github.com/drblury/gateflow/internal/client/objects"
)

// Scope selects which part of the execution context keys a cooldown bucket.
type Scope string

const (
	ScopeGlobal  Scope = "global"
	ScopeUser    Scope = "user"
	ScopeChannel Scope = "channel"
	ScopeGuild   Scope = "guild"
)

// ThrottleError reports a rejected invocation and when the bucket resets.
type ThrottleError struct {
	Key        string
	RetryAfter time.Duration
}

func (e *ThrottleError) Error() string {
	return fmt.Sprintf("gateflow: command invocation throttled (key %s, retry in %s)", e.Key, e.RetryAfter)
}

// Is allows errors.Is to match ThrottleError with ErrThrottled.
func (e *ThrottleError) Is(target error) bool {
	return target == errspkg.ErrThrottled
}

// CooldownConfig customises the cooldown behaviour.
type CooldownConfig struct {
	// Rate is the number of invocations allowed per window. A non-positive
	// rate disables throttling.
	Rate  int
	Per   time.Duration
	Scope Scope
}

func (cfg CooldownConfig) withDefaults() CooldownConfig {
	if cfg.Per <= 0 {
		cfg.Per = time.Minute
	}
	if cfg.Scope == "" {
		cfg.Scope = ScopeUser
	}
	return cfg
}

// Cooldown limits command invocations using fixed-window buckets keyed by
// command name plus the configured scope.
type Cooldown struct {
	cfg CooldownConfig

	mu      sync.Mutex
	buckets map[string]*bucket
}

type bucket struct {
	remaining int
	reset     time.Time
}

// NewCooldown constructs a Cooldown throttler (defaults applied to zero
// values).
func NewCooldown(cfg CooldownConfig) *Cooldown {
	return &Cooldown{
		cfg:     cfg.withDefaults(),
		buckets: make(map[string]*bucket),
	}
}

// Admit checks the execution context against the rate policy. It fails with
// a ThrottleError when the caller exceeds the policy; the router propagates
// that failure instead of swallowing it.
func (c *Cooldown) Admit(ctx context.Context, mctx *objects.MessageContext) error {
	if c.cfg.Rate <= 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	key := c.bucketKey(mctx)
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	b, ok := c.buckets[key]
	if !ok || now.After(b.reset) {
		c.buckets[key] = &bucket{remaining: c.cfg.Rate - 1, reset: now.Add(c.cfg.Per)}
		return nil
	}
	if b.remaining <= 0 {
		return &ThrottleError{Key: key, RetryAfter: b.reset.Sub(now)}
	}
	b.remaining--
	return nil
}

func (c *Cooldown) bucketKey(mctx *objects.MessageContext) string {
	key := mctx.Command
	switch c.cfg.Scope {
	case ScopeUser:
		if mctx.Author != nil {
			key += ":user:" + mctx.Author.ID
		}
	case ScopeChannel:
		key += ":channel:" + mctx.ChannelID
	case ScopeGuild:
		key += ":guild:" + mctx.GuildID
	}
	return key
}
