package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/ssobridge/internal/sso/service"
	"github.com/aussiebroadwan/ssobridge/internal/sso/session"
	"github.com/aussiebroadwan/ssobridge/pkg/httpx"
)

// SessionHandler lets the browser inspect and end its login session.
type SessionHandler struct {
	SessionService *service.SessionService
	CookieOpts     session.CookieOptions
}

// SessionResponse describes the caller's current session.
type SessionResponse struct {
	AccountID  string    `json:"account_id"`
	Email      string    `json:"email"`
	FirstName  string    `json:"first_name,omitempty"`
	Surname    string    `json:"surname,omitempty"`
	ProviderID string    `json:"provider_id"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// HandleGet returns the current session, if any.
//
//	@Summary	Current session
//	@Tags		Sessions
//	@Produce	json
//	@Success	200	{object}	SessionResponse
//	@Failure	401	{object}	ErrorResponse
//	@Router		/v1/session [get]
func (h *SessionHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := sessionIDFromRequest(r)
	if id == "" {
		httpx.WriteJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "no session",
		})
		return
	}

	sess, account, err := h.SessionService.Resolve(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, SessionResponse{
		AccountID:  account.ID,
		Email:      account.Email,
		FirstName:  account.FirstName,
		Surname:    account.Surname,
		ProviderID: sess.ProviderID,
		ExpiresAt:  sess.ExpiresAt,
	})
}

// HandleLogout ends the current session.
//
//	@Summary	Logout
//	@Tags		Sessions
//	@Success	204
//	@Router		/v1/session [delete]
func (h *SessionHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if id := sessionIDFromRequest(r); id != "" {
		if err := h.SessionService.Logout(r.Context(), id); err != nil {
			writeServiceError(w, r, err)
			return
		}
	}
	session.ClearSessionCookie(w, h.CookieOpts)
	w.WriteHeader(http.StatusNoContent)
}

func sessionIDFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(session.SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
