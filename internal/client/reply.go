package client

import (
	"context"
	"fmt"

	"github.com/drblury/gateflow/internal/client/objects"
)

// responder is the executable view of either a command descriptor or the
// command-error registration, so both run through the same response path.
type responder struct {
	name         string
	run          CommandFunc
	stream       StreamFunc
	params       []string
	wantsContext bool
	wantsManager bool
	managerKey   string
}

func responderFromCommand(desc *CommandDescriptor) responder {
	return responder{
		name:         desc.Name,
		run:          desc.Run,
		stream:       desc.Stream,
		params:       desc.Params,
		wantsContext: desc.WantsContext,
		wantsManager: desc.WantsManager,
		managerKey:   desc.ManagerKey,
	}
}

func responderFromRegistration(reg *EventRegistration) responder {
	return responder{
		name:         reg.Name,
		run:          reg.Respond,
		params:       reg.Params,
		wantsContext: reg.WantsContext,
	}
}

// respondInteraction executes a command body and emits its replies. A
// single-shot body produces exactly one initial reply; a streaming body
// sends its first value as the initial reply and every later one as a
// follow-up keyed by the application id and token.
func (c *Client) respondInteraction(
	ctx context.Context,
	r responder,
	mctx *objects.MessageContext,
	interaction *objects.Interaction,
	kwargs map[string]any,
) error {
	var manager any
	if r.wantsManager {
		manager = c.catalog.Owner(r.managerKey)
		kwargs["self"] = manager
	}
	if r.wantsContext && len(r.params) > 0 {
		kwargs[r.params[0]] = mctx
	}

	inv := &CommandInvocation{
		Client:  c,
		Context: mctx,
		Manager: manager,
		Kwargs:  kwargs,
	}

	if r.stream != nil {
		sent := 0
		send := func(v any) error {
			msg := c.convertMessage(v)
			var err error
			if sent == 0 {
				err = c.replies.SendInitial(ctx, interaction.ID, interaction.Token, msg)
			} else {
				err = c.replies.SendFollowUp(ctx, interaction.ApplicationID, interaction.Token, msg)
			}
			if err != nil {
				return err
			}
			sent++
			return nil
		}
		if err := r.stream(ctx, inv, send); err != nil {
			return &CommandError{Command: r.name, Err: err}
		}
		return nil
	}

	result, err := r.run(ctx, inv)
	if err != nil {
		return &CommandError{Command: r.name, Err: err}
	}
	return c.replies.SendInitial(ctx, interaction.ID, interaction.Token, c.convertMessage(result))
}

// convertMessage normalizes a command result into a reply message: embeds
// and attachments wrap into a default message, non-empty values become
// content, and an empty result falls back to the configured received-message
// echo marked ephemeral.
func (c *Client) convertMessage(v any) *objects.Message {
	switch m := v.(type) {
	case *objects.Message:
		if m != nil {
			return m
		}
	case objects.Message:
		return &m
	case *objects.Embed:
		if m != nil {
			return &objects.Message{Embeds: []objects.Embed{*m}}
		}
	case objects.Embed:
		return &objects.Message{Embeds: []objects.Embed{m}}
	case *objects.Attachment:
		if m != nil {
			return &objects.Message{Attachments: []objects.Attachment{*m}}
		}
	case objects.Attachment:
		return &objects.Message{Attachments: []objects.Attachment{m}}
	case string:
		if m != "" {
			return &objects.Message{Content: m}
		}
	case nil:
	default:
		if s := fmt.Sprint(m); s != "" {
			return &objects.Message{Content: s}
		}
	}

	return &objects.Message{
		Content: c.Conf.ReceivedMessage,
		Flags:   objects.FlagEphemeral,
	}
}
