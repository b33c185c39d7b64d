package client

import (
	"context"
	"io"
	"log/slog"
	"sync"

	configpkg "github.com/drblury/gateflow/internal/client/config"
	loggingpkg "github.com/drblury/gateflow/internal/client/logging"
	"github.com/drblury/gateflow/internal/client/objects"
)

func testLogger() loggingpkg.ServiceLogger {
	return loggingpkg.NewSlogServiceLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testConfig() *configpkg.Config {
	return &configpkg.Config{
		SocketBaseURL:   "wss://gateway.example.invalid/",
		GatewayVersion:  9,
		GatewayEncoding: "json",
		APIBaseURL:      "https://api.example.invalid",
		ReceivedMessage: "Command arrived, but there was no response.",
	}
}

// testClient builds a Client with only the pieces the dispatch core needs,
// skipping the bus and gateway wiring.
func testClient() *Client {
	c := &Client{
		Conf:      testConfig(),
		Logger:    testLogger(),
		registry:  NewRegistry(GatewayEvents),
		catalog:   NewCatalog(),
		throttler: admitAll{},
	}
	sender := &recordingSender{}
	c.replies = sender
	c.registerConfiguredMiddlewares(Dependencies{})
	return c
}

func testSender(c *Client) *recordingSender {
	return c.replies.(*recordingSender)
}

type admitAll struct{}

func (admitAll) Admit(context.Context, *objects.MessageContext) error { return nil }

type admitNone struct{ err error }

func (a admitNone) Admit(context.Context, *objects.MessageContext) error { return a.err }

type sentReply struct {
	kind    string // "initial" or "followup"
	id      string // interaction id or application id
	token   string
	message *objects.Message
}

// recordingSender captures replies instead of performing HTTP requests.
type recordingSender struct {
	mu      sync.Mutex
	replies []sentReply
	fail    error
}

func (r *recordingSender) SendInitial(_ context.Context, interactionID, token string, msg *objects.Message) error {
	if r.fail != nil {
		return r.fail
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replies = append(r.replies, sentReply{kind: "initial", id: interactionID, token: token, message: msg})
	return nil
}

func (r *recordingSender) SendFollowUp(_ context.Context, applicationID, token string, msg *objects.Message) error {
	if r.fail != nil {
		return r.fail
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replies = append(r.replies, sentReply{kind: "followup", id: applicationID, token: token, message: msg})
	return nil
}

func (r *recordingSender) sent() []sentReply {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]sentReply, len(r.replies))
	copy(out, r.replies)
	return out
}

func testInteraction(command string) *objects.Interaction {
	return &objects.Interaction{
		ID:            "901",
		ApplicationID: "100",
		Type:          2,
		Token:         "tok",
		ChannelID:     "77",
		User:          &objects.User{ID: "42", Username: "caller"},
		Data:          &objects.InteractionData{Name: command},
	}
}
