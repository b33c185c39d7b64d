package objects

// User identifies an account on the remote service. Only the fields the
// dispatch core reads are mapped.
type User struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Discriminator string `json:"discriminator,omitempty"`
	Bot           bool   `json:"bot,omitempty"`
}

// GuildMember is a user's membership inside one guild.
type GuildMember struct {
	User *User  `json:"user,omitempty"`
	Nick string `json:"nick,omitempty"`
}
