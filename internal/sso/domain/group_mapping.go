package domain

import "time"

// GroupMapping associates a set of provider-side group identifiers with one
// or more local groups. An account holding any of the external identifiers
// is added to every mapped local group on login.
type GroupMapping struct {
	ID         string `json:"id"`
	ProviderID string `json:"provider_id"`
	Title      string `json:"title"`

	// ExternalGroupIDs are the provider-side identifiers (ids or unique
	// strings) this rule matches.
	ExternalGroupIDs []string `json:"external_group_ids"`

	// GroupIDs are the local groups the rule maps to.
	GroupIDs []string `json:"group_ids"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
