package session

import (
	"net/http"
	"time"
)

const (
	// FlowCookieName identifies the browser across the init/callback pair.
	// Lax, not Strict: the callback arrives as a cross-site redirect and the
	// cookie must still be sent.
	FlowCookieName = "sso_flow"

	// SessionCookieName carries the login session id after a successful
	// callback.
	SessionCookieName = "sso_session"
)

// CookieOptions defines how cookies are issued.
type CookieOptions struct {
	Path   string
	Secure bool
	Domain string
}

func (o CookieOptions) normalize() CookieOptions {
	if o.Path == "" {
		o.Path = "/"
	}
	return o
}

// SetFlowCookie issues the flow cookie used to look up the state secret on
// callback. Its lifetime matches the state token's.
func SetFlowCookie(w http.ResponseWriter, flowID string, ttl time.Duration, opts CookieOptions) {
	opts = opts.normalize()

	http.SetCookie(w, &http.Cookie{
		Name:     FlowCookieName,
		Value:    flowID,
		Path:     opts.Path,
		Domain:   opts.Domain,
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// SetSessionCookie issues the login session cookie to the client.
func SetSessionCookie(w http.ResponseWriter, sessionID string, expiresAt time.Time, opts CookieOptions) {
	opts = opts.normalize()

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    sessionID,
		Path:     opts.Path,
		Domain:   opts.Domain,
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie removes the login session cookie from the client.
func ClearSessionCookie(w http.ResponseWriter, opts CookieOptions) {
	opts = opts.normalize()

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     opts.Path,
		Domain:   opts.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
