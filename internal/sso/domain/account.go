package domain

import "time"

// Account is a local account materialized from a delegated login. There is
// no password: authentication always happens at the external provider.
type Account struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name,omitempty"`
	Surname   string    `json:"surname,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
