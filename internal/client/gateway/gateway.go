// Package gateway maintains the persistent websocket connection to the
// remote dispatch endpoint and yields event envelopes one at a time.
package gateway

import (
	"bytes"
	"compress/zlib"
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"

	errspkg "github.com/drblury/gateflow/internal/client/errors"
	"github.com/drblury/gateflow/internal/client/jsoncodec"
	loggingpkg "github.com/drblury/gateflow/internal/client/logging"
	"github.com/drblury/gateflow/internal/client/objects"
)

// Config holds the connection settings for one gateway session.
type Config struct {
	// URL is the fully assembled websocket URL, version and encoding included.
	URL   string
	Token string
	// Intents selects which event families the remote service pushes.
	Intents int
	// Compress asks the remote service to deflate dispatch payloads; binary
	// frames are then inflated before decoding.
	Compress bool
	Logger   loggingpkg.ServiceLogger
}

// Conn is a live gateway session. Receive blocks until the next dispatch
// envelope; control opcodes (hello, heartbeat, ack) are absorbed internally.
type Conn struct {
	cfg Config

	mu sync.Mutex // guards ws writes and reconnect state
	ws *websocket.Conn

	seq       atomic.Int64
	sessionID atomic.Value

	heartbeatStop chan struct{}
}

type identifyProperties struct {
	OS      string `json:"os"`
	Browser string `json:"browser"`
	Device  string `json:"device"`
}

type identifyData struct {
	Token      string             `json:"token"`
	Intents    int                `json:"intents"`
	Compress   bool               `json:"compress,omitempty"`
	Properties identifyProperties `json:"properties"`
}

type helloData struct {
	HeartbeatInterval int64 `json:"heartbeat_interval"`
}

// NewConn builds an unconnected gateway session.
func NewConn(cfg Config) *Conn {
	return &Conn{cfg: cfg}
}

// Connect dials the gateway, completes the hello/identify handshake, and
// starts the heartbeat loop. The supplied context must outlive the session.
func (g *Conn) Connect(ctx context.Context) error {
	if g.cfg.Token == "" {
		return errspkg.ErrTokenRequired
	}

	ws, _, err := websocket.Dial(ctx, g.cfg.URL, nil)
	if err != nil {
		return fmt.Errorf("gateflow: dialing gateway: %w", err)
	}
	ws.SetReadLimit(1 << 22)

	hello, err := readEnvelope(ctx, ws, g.cfg.Compress)
	if err != nil {
		ws.Close(websocket.StatusProtocolError, "no hello")
		return fmt.Errorf("gateflow: awaiting hello: %w", err)
	}
	if hello.Op != objects.OpHello {
		ws.Close(websocket.StatusProtocolError, "unexpected opcode")
		return fmt.Errorf("gateflow: expected hello opcode, got %d", hello.Op)
	}

	var d helloData
	if err := jsoncodec.Unmarshal(hello.Data, &d); err != nil {
		ws.Close(websocket.StatusProtocolError, "bad hello")
		return fmt.Errorf("gateflow: decoding hello: %w", err)
	}

	g.mu.Lock()
	g.ws = ws
	g.heartbeatStop = make(chan struct{})
	g.mu.Unlock()

	if err := g.send(ctx, objects.OpIdentify, identifyData{
		Token:    g.cfg.Token,
		Intents:  g.cfg.Intents,
		Compress: g.cfg.Compress,
		Properties: identifyProperties{
			OS:      "linux",
			Browser: "gateflow",
			Device:  "gateflow",
		},
	}); err != nil {
		g.Close()
		return fmt.Errorf("gateflow: identifying: %w", err)
	}

	interval := time.Duration(d.HeartbeatInterval) * time.Millisecond
	go g.heartbeat(ctx, interval, g.heartbeatStop)

	if g.cfg.Logger != nil {
		g.cfg.Logger.Info("Gateway connected", loggingpkg.LogFields{
			"heartbeat_interval": interval.String(),
		})
	}
	return nil
}

// Receive suspends until the next dispatch envelope arrives. Reconnect and
// invalid-session opcodes surface as ErrReconnectRequested so the caller can
// re-establish the session.
func (g *Conn) Receive(ctx context.Context) (*objects.Envelope, error) {
	g.mu.Lock()
	ws := g.ws
	g.mu.Unlock()
	if ws == nil {
		return nil, errspkg.ErrGatewayClosed
	}

	for {
		env, err := readEnvelope(ctx, ws, g.cfg.Compress)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errspkg.ErrGatewayClosed, err)
		}

		switch env.Op {
		case objects.OpDispatch:
			g.seq.Store(env.Sequence)
			return env, nil
		case objects.OpHeartbeat:
			if err := g.send(ctx, objects.OpHeartbeat, g.lastSequence()); err != nil {
				return nil, err
			}
		case objects.OpHeartbeatACK:
			// Nothing to track yet; zombie detection would hook in here.
		case objects.OpReconnect, objects.OpInvalidSession:
			return nil, errspkg.ErrReconnectRequested
		default:
			if g.cfg.Logger != nil {
				g.cfg.Logger.Debug("Ignoring gateway opcode", loggingpkg.LogFields{"op": env.Op})
			}
		}
	}
}

// SessionID returns the session identifier captured from the ready payload,
// if the client recorded one.
func (g *Conn) SessionID() string {
	if v, ok := g.sessionID.Load().(string); ok {
		return v
	}
	return ""
}

// SetSessionID records the session identifier for future resume support.
func (g *Conn) SetSessionID(id string) {
	g.sessionID.Store(id)
}

// Close tears down the session. Safe to call more than once.
func (g *Conn) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.heartbeatStop != nil {
		close(g.heartbeatStop)
		g.heartbeatStop = nil
	}
	if g.ws == nil {
		return nil
	}
	err := g.ws.Close(websocket.StatusNormalClosure, "")
	g.ws = nil
	return err
}

func (g *Conn) heartbeat(ctx context.Context, interval time.Duration, stop chan struct{}) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			if err := g.send(ctx, objects.OpHeartbeat, g.lastSequence()); err != nil {
				if g.cfg.Logger != nil {
					g.cfg.Logger.Error("Heartbeat failed", err, nil)
				}
				return
			}
		}
	}
}

func (g *Conn) lastSequence() any {
	seq := g.seq.Load()
	if seq == 0 {
		return nil
	}
	return seq
}

func (g *Conn) send(ctx context.Context, op int, data any) error {
	payload, err := jsoncodec.Marshal(struct {
		Op   int `json:"op"`
		Data any `json:"d"`
	}{Op: op, Data: data})
	if err != nil {
		return fmt.Errorf("gateflow: marshalling gateway payload: %w", err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.ws == nil {
		return errspkg.ErrGatewayClosed
	}
	return g.ws.Write(ctx, websocket.MessageText, payload)
}

func readEnvelope(ctx context.Context, ws *websocket.Conn, compressed bool) (*objects.Envelope, error) {
	typ, data, err := ws.Read(ctx)
	if err != nil {
		return nil, err
	}
	if typ == websocket.MessageBinary && compressed {
		data, err = inflate(data)
		if err != nil {
			return nil, err
		}
	}

	env := &objects.Envelope{}
	if err := jsoncodec.Unmarshal(data, env); err != nil {
		return nil, fmt.Errorf("gateflow: decoding envelope: %w", err)
	}
	return env, nil
}

func inflate(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("gateflow: inflating payload: %w", err)
	}
	defer r.Close()
	return io.ReadAll(r)
}
