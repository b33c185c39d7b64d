package objects

// Interaction is an inbound request that names a target command and supplies
// option values, plus the identity needed to construct a reply channel.
type Interaction struct {
	ID            string           `json:"id"`
	ApplicationID string           `json:"application_id"`
	Type          int              `json:"type"`
	Data          *InteractionData `json:"data,omitempty"`
	GuildID       string           `json:"guild_id,omitempty"`
	ChannelID     string           `json:"channel_id,omitempty"`
	Member        *GuildMember     `json:"member,omitempty"`
	User          *User            `json:"user,omitempty"`
	Token         string           `json:"token"`
	Version       int              `json:"version,omitempty"`
}

// InteractionData carries the invoked command name and its options.
type InteractionData struct {
	ID      string              `json:"id,omitempty"`
	Name    string              `json:"name"`
	Type    int                 `json:"type,omitempty"`
	Options []InteractionOption `json:"options,omitempty"`
}

// InteractionOption is one caller-supplied name/value pair.
type InteractionOption struct {
	Name    string              `json:"name"`
	Type    int                 `json:"type,omitempty"`
	Value   any                 `json:"value,omitempty"`
	Options []InteractionOption `json:"options,omitempty"`
}

// Author returns whichever identity the interaction carries: the guild
// member's user when invoked from a guild, the bare user otherwise.
func (i *Interaction) Author() *User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}
