package models

// User is an authenticated principal, identified by the OpenID URL asserted
// by the external identity provider. Name and email are optional profile
// fields refreshed on each login.
type User struct {
	ID        int64  `json:"id"`
	OpenIDURL string `json:"openid_url"`
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
}
