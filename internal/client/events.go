package client

// TerminalPrefix is the reserved prefix for terminal handler names. Middleware
// resolution stops at the first name carrying it.
const TerminalPrefix = "on_"

// CommandErrorEvent is the dynamic terminal slot consulted by the error
// recovery path when a command invocation fails. It is never resolved from a
// gateway envelope.
const CommandErrorEvent = "on_command_error"

// GatewayEvents lists every event name the client supports. The registry is
// pre-populated with a middleware slot and a terminal slot for each at
// construction time; user registration only ever fills the terminal slots.
var GatewayEvents = []string{
	"ready",
	"resumed",
	"channel_create",
	"channel_update",
	"channel_delete",
	"channel_pins_update",
	"thread_create",
	"thread_update",
	"thread_delete",
	"guild_create",
	"guild_update",
	"guild_delete",
	"guild_ban_add",
	"guild_ban_remove",
	"guild_emojis_update",
	"guild_member_add",
	"guild_member_remove",
	"guild_member_update",
	"guild_role_create",
	"guild_role_update",
	"guild_role_delete",
	"integration_create",
	"integration_update",
	"integration_delete",
	"interaction_create",
	"invite_create",
	"invite_delete",
	"message_create",
	"message_update",
	"message_delete",
	"message_delete_bulk",
	"message_reaction_add",
	"message_reaction_remove",
	"message_reaction_remove_all",
	"message_reaction_remove_emoji",
	"presence_update",
	"stage_instance_create",
	"stage_instance_update",
	"stage_instance_delete",
	"typing_start",
	"user_update",
	"voice_state_update",
	"voice_server_update",
	"webhooks_update",
}
