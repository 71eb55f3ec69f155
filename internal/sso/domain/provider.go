package domain

import "time"

// Provider is the configuration of one external OAuth2/OIDC identity
// provider. The client secret is intentionally absent: it is resolved
// out-of-band from the environment and never stored.
type Provider struct {
	ID       string   `json:"id"`
	Active   bool     `json:"active"`
	Title    string   `json:"title"`
	ClientID string   `json:"client_id"`
	Scopes   []string `json:"scopes,omitempty"`

	// When set, the three static endpoints below are ignored and resolved
	// via OpenID discovery instead.
	OpenIDDiscoveryEndpoint string `json:"openid_discovery_endpoint,omitempty"`

	AuthorizationEndpoint string `json:"authorization_endpoint,omitempty"`
	TokenEndpoint         string `json:"token_endpoint,omitempty"`
	UserInfoEndpoint      string `json:"userinfo_endpoint,omitempty"`

	// Claim extraction paths ($.-rooted), email is the only mandatory one.
	UserInfoEmailPath     string `json:"userinfo_email_path"`
	UserInfoFirstNamePath string `json:"userinfo_first_name_path,omitempty"`
	UserInfoSurnamePath   string `json:"userinfo_surname_path,omitempty"`

	// Optional group resolution.
	GroupsInfoEndpoint       string `json:"groupsinfo_endpoint,omitempty"`
	GroupsInfoIdentifierPath string `json:"groupsinfo_identifier_path,omitempty"`

	// Group new accounts are added to on first login, if set.
	DefaultGroupID string `json:"default_group_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UsesDiscovery reports whether endpoints are resolved via OpenID discovery.
func (p Provider) UsesDiscovery() bool {
	return p.OpenIDDiscoveryEndpoint != ""
}
