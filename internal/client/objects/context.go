package objects

// MessageContext is the per-invocation execution context the command router
// derives from an interaction: the caller identity, the originating request,
// and the name of the invoked command.
type MessageContext struct {
	Author      *User
	Interaction *Interaction
	Command     string
	GuildID     string
	ChannelID   string
}

// NewMessageContext builds the execution context for one interaction.
func NewMessageContext(interaction *Interaction, command string) *MessageContext {
	return &MessageContext{
		Author:      interaction.Author(),
		Interaction: interaction,
		Command:     command,
		GuildID:     interaction.GuildID,
		ChannelID:   interaction.ChannelID,
	}
}
