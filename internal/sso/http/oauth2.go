package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/ssobridge/internal/sso/service"
	"github.com/aussiebroadwan/ssobridge/internal/sso/session"
	"github.com/aussiebroadwan/ssobridge/pkg/httpx"
	"github.com/aussiebroadwan/ssobridge/pkg/idx"
)

// OAuth2Handler exposes the two browser-facing legs of the login flow.
type OAuth2Handler struct {
	FlowService *service.FlowService
	CookieOpts  session.CookieOptions
	StateTTL    time.Duration
}

// DryRunResponse is the body returned by a test-mode callback.
type DryRunResponse struct {
	Status string             `json:"status"`
	Trace  *service.FlowTrace `json:"trace"`
}

// HandleInit starts a login flow and redirects the browser to the provider.
//
//	@Summary		Start a login flow
//	@Description	Initiates the authorization-code flow for one provider. Stores a fresh
//	@Description	state-signing secret against the browser's flow cookie and redirects to
//	@Description	the provider's authorization endpoint.
//	@Tags			OAuth2
//	@Param			providerID	path		string	true	"Provider id"
//	@Param			BackURL		query		string	false	"Where to land after login (same-site only)"
//	@Param			test		query		bool	false	"Dry-run mode: callback reports what would happen without committing"
//	@Success		302			{string}	string	"Redirect to the provider"
//	@Failure		400			{object}	ErrorResponse
//	@Failure		404			{object}	ErrorResponse
//	@Router			/oauth2/init/{providerID} [get]
func (h *OAuth2Handler) HandleInit(w http.ResponseWriter, r *http.Request) {
	providerID := r.PathValue("providerID")
	backURL := r.URL.Query().Get("BackURL")
	test := parseBoolParam(r.URL.Query().Get("test"))

	flowID := flowIDFromRequest(r)
	if flowID == "" {
		flowID = idx.New().String()
	}

	redirect, err := h.FlowService.InitiateFlow(r.Context(), flowID, providerID, test, backURL)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	session.SetFlowCookie(w, flowID, h.StateTTL, h.CookieOpts)
	httpx.NoCache(w)
	http.Redirect(w, r, redirect, http.StatusFound)
}

// HandleCallback completes a login flow when the provider redirects back.
//
//	@Summary		Provider callback
//	@Description	Validates the state token, exchanges the code, extracts identity and
//	@Description	group claims, and either commits the login (302 to the back url) or, in
//	@Description	test mode, returns a trace of what would have happened.
//	@Tags			OAuth2
//	@Produce		json
//	@Param			providerID	path		string	true	"Provider id"
//	@Param			code		query		string	true	"Authorization code"
//	@Param			state		query		string	true	"Signed state token from init"
//	@Success		302			{string}	string	"Redirect to back url or landing page"
//	@Success		200			{object}	DryRunResponse	"Dry-run trace"
//	@Failure		400			{object}	ErrorResponse	"Missing params or bad state"
//	@Failure		404			{object}	ErrorResponse
//	@Failure		500			{object}	ErrorResponse	"Upstream or persistence failure"
//	@Router			/oauth2/callback/{providerID} [get]
func (h *OAuth2Handler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	providerID := r.PathValue("providerID")
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	flowID := flowIDFromRequest(r)

	outcome, err := h.FlowService.HandleCallback(r.Context(), flowID, providerID, code, state)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)

	if outcome.Test {
		httpx.WriteJSON(w, http.StatusOK, DryRunResponse{
			Status: "dry_run",
			Trace:  outcome.Trace,
		})
		return
	}

	session.SetSessionCookie(w, outcome.Session.ID, outcome.Session.ExpiresAt, h.CookieOpts)
	http.Redirect(w, r, outcome.RedirectURL, http.StatusFound)
}

func flowIDFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(session.FlowCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func parseBoolParam(v string) bool {
	switch v {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
