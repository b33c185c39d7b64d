package objects

// MessageFlags alter how a reply is presented to the caller.
type MessageFlags int

// FlagEphemeral marks a reply as visible only to the requester.
const FlagEphemeral MessageFlags = 1 << 6

// Message is an outbound reply payload.
type Message struct {
	Content     string       `json:"content,omitempty"`
	TTS         bool         `json:"tts,omitempty"`
	Embeds      []Embed      `json:"embeds,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
	Flags       MessageFlags `json:"flags,omitempty"`
}

// Embed is a rich content block inside a message.
type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	URL         string       `json:"url,omitempty"`
	Color       int          `json:"color,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
}

// EmbedField is one name/value row of an embed.
type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// Attachment references a file carried by a message.
type Attachment struct {
	ID          string `json:"id,omitempty"`
	Filename    string `json:"filename"`
	Description string `json:"description,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	URL         string `json:"url,omitempty"`
}

// Interaction callback types used by the reply sender.
const (
	// ResponseChannelMessage answers an interaction with a channel message.
	ResponseChannelMessage = 4
)

// InteractionResponse is the body of an initial interaction callback.
type InteractionResponse struct {
	Type int      `json:"type"`
	Data *Message `json:"data,omitempty"`
}
