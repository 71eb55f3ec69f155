// Package statetoken encodes the OAuth2 round-trip state parameter as a
// compact signed token. The token is self-contained (issuer, expiry, test
// flag, post-login redirect) and signed with a per-flow secret that never
// leaves the caller's session, so a valid signature proves the callback
// belongs to a flow this session started.
package statetoken

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidSignature reports a token signed with a different secret.
	ErrInvalidSignature = errors.New("statetoken: invalid signature")
	// ErrExpired reports a token past its expiry.
	ErrExpired = errors.New("statetoken: expired")
	// ErrMalformed reports a token that could not be parsed at all.
	ErrMalformed = errors.New("statetoken: malformed token")
)

// State is the flow metadata carried through the identity provider.
type State struct {
	Issuer    string
	ExpiresAt time.Time
	Test      bool
	BackURL   string
}

type claims struct {
	jwt.RegisteredClaims

	Test    bool   `json:"test"`
	BackURL string `json:"back_url,omitempty"`
}

// Encode signs the state with the given per-flow secret using HS256.
// Expiry is carried at second precision.
func Encode(s State, secret []byte) (string, error) {
	if len(secret) == 0 {
		return "", fmt.Errorf("statetoken: empty signing secret")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.Issuer,
			ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
		},
		Test:    s.Test,
		BackURL: s.BackURL,
	})

	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("statetoken: signing failed: %w", err)
	}
	return signed, nil
}

// Decode verifies the token against the given secret and returns the carried
// state. Failures are always one of ErrInvalidSignature, ErrExpired or
// ErrMalformed; a state is never returned alongside an error.
func Decode(token string, secret []byte) (State, error) {
	if len(secret) == 0 {
		return State{}, ErrInvalidSignature
	}

	var c claims
	_, err := jwt.ParseWithClaims(token, &c,
		func(t *jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return State{}, ErrExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return State{}, ErrInvalidSignature
		default:
			return State{}, ErrMalformed
		}
	}

	s := State{
		Issuer:  c.Issuer,
		Test:    c.Test,
		BackURL: c.BackURL,
	}
	if c.ExpiresAt != nil {
		s.ExpiresAt = c.ExpiresAt.Time.UTC()
	}
	return s, nil
}
