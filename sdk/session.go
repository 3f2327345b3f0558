package sdk

import "slices"

// Session is the result of a successful authenticate command. It is replaced
// wholesale on each authentication and never modified after construction.
type Session struct {
	AccessToken string      `json:"access_token"`
	User        User        `json:"user"`
	Scopes      []string    `json:"scopes"`
	Expires     string      `json:"expires"`
	Application Application `json:"application"`
}

// User is the authenticated user's identity.
type User struct {
	ID            string  `json:"id"`
	Username      string  `json:"username"`
	Discriminator string  `json:"discriminator"`
	Avatar        *string `json:"avatar,omitempty"`
	PublicFlags   int     `json:"public_flags"`
}

// Application identifies the activity the session was granted to.
type Application struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Icon        *string  `json:"icon,omitempty"`
	Description string   `json:"description"`
	RPCOrigins  []string `json:"rpc_origins,omitempty"`
}

// Clone returns a deep copy so callers can hand sessions to observers without
// sharing slices or pointers.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.Scopes = slices.Clone(s.Scopes)
	c.Application.RPCOrigins = slices.Clone(s.Application.RPCOrigins)
	if s.User.Avatar != nil {
		avatar := *s.User.Avatar
		c.User.Avatar = &avatar
	}
	if s.Application.Icon != nil {
		icon := *s.Application.Icon
		c.Application.Icon = &icon
	}
	return &c
}
