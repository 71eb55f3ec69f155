package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/aussiebroadwan/ssobridge/internal/sso/cache"
	"github.com/aussiebroadwan/ssobridge/internal/sso/domain"
	"github.com/aussiebroadwan/ssobridge/internal/sso/service"
	"github.com/aussiebroadwan/ssobridge/internal/sso/session"
	"github.com/aussiebroadwan/ssobridge/internal/sso/store/drivers/sqlite"
	"github.com/stretchr/testify/require"
)

const testAdminToken = "test-admin-token"

// newTestRouter wires a full router against in-memory backends, the same way
// the application does at startup.
func newTestRouter(t *testing.T, adminToken, baseURL string) *Router {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	sessions := session.NewMemoryStore()
	metadata := service.NewMetadataResolver(cache.NewMemory(), time.Hour)
	logins := &service.SessionService{Store: st, Sessions: sessions, TTL: time.Hour}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := NewRouter("test", st, adminToken, session.CookieOptions{Path: "/"}, 2*time.Minute, logger)
	r.FlowService = &service.FlowService{
		Store:      st,
		Sessions:   sessions,
		Secrets:    service.StaticSecretResolver{"p1": "s3cret"},
		Metadata:   metadata,
		Exchange:   service.NewExchangeClient(),
		Reconciler: &service.Reconciler{Store: st},
		Logins:     logins,
		BaseURL:    baseURL,
		StateTTL:   2 * time.Minute,
	}
	r.ProviderService = &service.ProviderService{Store: st, Metadata: metadata}
	r.GroupMappingService = &service.GroupMappingService{Store: st}
	r.GroupService = &service.GroupService{Store: st}
	r.SessionService = logins
	r.ApplyRoutes()
	return r
}

func do(t *testing.T, r *Router, method, target, token string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	}

	req := httptest.NewRequest(method, target, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func TestAdminAuth(t *testing.T) {
	t.Run("empty configured token disables the admin surface", func(t *testing.T) {
		r := newTestRouter(t, "", "https://sso.example.com")
		rec := do(t, r, http.MethodGet, "/v1/providers", "", nil)
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("missing or wrong token is rejected", func(t *testing.T) {
		r := newTestRouter(t, testAdminToken, "https://sso.example.com")

		rec := do(t, r, http.MethodGet, "/v1/providers", "", nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Header().Get("WWW-Authenticate"), "Bearer")

		rec = do(t, r, http.MethodGet, "/v1/providers", "wrong-token", nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token passes", func(t *testing.T) {
		r := newTestRouter(t, testAdminToken, "https://sso.example.com")
		rec := do(t, r, http.MethodGet, "/v1/providers", testAdminToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.JSONEq(t, "[]", rec.Body.String())
	})
}

func TestProviderCRUD(t *testing.T) {
	r := newTestRouter(t, testAdminToken, "https://sso.example.com")

	body := ProviderRequest{
		Active:                true,
		Title:                 "Test IdP",
		ClientID:              "client-1",
		Scopes:                []string{"openid", "email"},
		AuthorizationEndpoint: "https://idp.example.com/authorize",
		TokenEndpoint:         "https://idp.example.com/token",
		UserInfoEndpoint:      "https://idp.example.com/userinfo",
		UserInfoEmailPath:     "$.email",
	}

	rec := do(t, r, http.MethodPost, "/v1/providers", testAdminToken, body)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeBody[ProviderResponse](t, rec)
	require.NotEmpty(t, created.ID)
	require.Equal(t, "Test IdP", created.Title)

	// Operational fields are derived, not stored.
	require.Equal(t, service.SecretEnvKey(created.ID), created.ClientSecretEnv)
	require.False(t, created.ClientSecretSet)
	require.Equal(t, "https://sso.example.com/oauth2/init/"+created.ID, created.InitURL)
	require.Equal(t, created.InitURL+"?test=1", created.TestURL)

	rec = do(t, r, http.MethodGet, "/v1/providers/"+created.ID, testAdminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, r, http.MethodGet, "/v1/providers", testAdminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decodeBody[[]ProviderResponse](t, rec), 1)

	body.Title = "Renamed IdP"
	rec = do(t, r, http.MethodPut, "/v1/providers/"+created.ID, testAdminToken, body)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Renamed IdP", decodeBody[ProviderResponse](t, rec).Title)

	rec = do(t, r, http.MethodDelete, "/v1/providers/"+created.ID, testAdminToken, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, r, http.MethodGet, "/v1/providers/"+created.ID, testAdminToken, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProviderValidation(t *testing.T) {
	r := newTestRouter(t, testAdminToken, "https://sso.example.com")

	t.Run("invalid json body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/providers", bytes.NewReader([]byte("{not json")))
		req.Header.Set("Authorization", "Bearer "+testAdminToken)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "invalid_request", decodeBody[ErrorResponse](t, rec).Error)
	})

	t.Run("missing title", func(t *testing.T) {
		rec := do(t, r, http.MethodPost, "/v1/providers", testAdminToken, ProviderRequest{
			ClientID:          "client-1",
			UserInfoEmailPath: "$.email",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "invalid_request", decodeBody[ErrorResponse](t, rec).Error)
	})
}

func TestGroupsAndMappings(t *testing.T) {
	r := newTestRouter(t, testAdminToken, "https://sso.example.com")

	rec := do(t, r, http.MethodPost, "/v1/groups", testAdminToken, GroupRequest{Title: "Admins"})
	require.Equal(t, http.StatusCreated, rec.Code)
	group := decodeBody[domain.Group](t, rec)
	require.NotEmpty(t, group.ID)

	rec = do(t, r, http.MethodPost, "/v1/providers", testAdminToken, ProviderRequest{
		Active:                true,
		Title:                 "Test IdP",
		ClientID:              "client-1",
		AuthorizationEndpoint: "https://idp.example.com/authorize",
		TokenEndpoint:         "https://idp.example.com/token",
		UserInfoEndpoint:      "https://idp.example.com/userinfo",
		UserInfoEmailPath:     "$.email",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	provider := decodeBody[domain.Provider](t, rec)

	rec = do(t, r, http.MethodPost, "/v1/providers/"+provider.ID+"/mappings", testAdminToken, GroupMappingRequest{
		Title:            "IdP Admins",
		ExternalGroupIDs: []string{"idp-admins"},
		GroupIDs:         []string{group.ID},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	mapping := decodeBody[domain.GroupMapping](t, rec)
	require.Equal(t, provider.ID, mapping.ProviderID)

	rec = do(t, r, http.MethodGet, "/v1/providers/"+provider.ID+"/mappings", testAdminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decodeBody[[]domain.GroupMapping](t, rec), 1)

	rec = do(t, r, http.MethodPut, "/v1/mappings/"+mapping.ID, testAdminToken, GroupMappingRequest{
		Title:            "Renamed",
		ExternalGroupIDs: []string{"idp-ops"},
		GroupIDs:         []string{group.ID},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decodeBody[domain.GroupMapping](t, rec)
	require.Equal(t, "Renamed", updated.Title)
	require.Equal(t, provider.ID, updated.ProviderID)

	rec = do(t, r, http.MethodDelete, "/v1/mappings/"+mapping.ID, testAdminToken, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, r, http.MethodGet, "/v1/groups", testAdminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decodeBody[[]domain.Group](t, rec), 1)
}

func TestOAuth2InitErrors(t *testing.T) {
	r := newTestRouter(t, testAdminToken, "https://sso.example.com")

	rec := do(t, r, http.MethodGet, "/oauth2/init/unknown", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "not_found", decodeBody[ErrorResponse](t, rec).Error)
}

func TestOAuth2CallbackMissingParams(t *testing.T) {
	r := newTestRouter(t, testAdminToken, "https://sso.example.com")

	rec := do(t, r, http.MethodGet, "/oauth2/callback/p1?state=abc", "", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "invalid_request", decodeBody[ErrorResponse](t, rec).Error)

	rec = do(t, r, http.MethodGet, "/oauth2/callback/p1?code=abc", "", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionEndpointsWithoutSession(t *testing.T) {
	r := newTestRouter(t, testAdminToken, "https://sso.example.com")

	rec := do(t, r, http.MethodGet, "/v1/session", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// Logout without a session still clears the cookie and succeeds.
	rec = do(t, r, http.MethodDelete, "/v1/session", "", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestHealthEndpoints(t *testing.T) {
	r := newTestRouter(t, testAdminToken, "https://sso.example.com")

	rec := do(t, r, http.MethodGet, "/livez", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, r, http.MethodGet, "/readyz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

// TestLoginFlowThroughRouter walks the whole browser journey: init, provider
// callback, session inspection, logout.
func TestLoginFlowThroughRouter(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /token", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"access_token":"tok"}`))
	})
	mux.HandleFunc("GET /userinfo", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"email":"a@b.com","first_name":"A","last_name":"B"}`))
	})
	idp := httptest.NewServer(mux)
	defer idp.Close()

	r := newTestRouter(t, testAdminToken, "https://sso.example.com")
	require.NoError(t, r.store.Providers().CreateProvider(context.Background(), domain.Provider{
		ID:                    "p1",
		Active:                true,
		Title:                 "Test IdP",
		ClientID:              "client-1",
		AuthorizationEndpoint: idp.URL + "/authorize",
		TokenEndpoint:         idp.URL + "/token",
		UserInfoEndpoint:      idp.URL + "/userinfo",
		UserInfoEmailPath:     "$.email",
	}))

	// Init: the browser gets a flow cookie and a redirect to the provider.
	rec := do(t, r, http.MethodGet, "/oauth2/init/p1", "", nil)
	require.Equal(t, http.StatusFound, rec.Code)

	var flowCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.FlowCookieName {
			flowCookie = c
		}
	}
	require.NotNil(t, flowCookie)

	authRedirect, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	state := authRedirect.Query().Get("state")
	require.NotEmpty(t, state)

	// Callback: the provider sends the browser back with code and state.
	target := "/oauth2/callback/p1?code=abc123&state=" + url.QueryEscape(state)
	rec = do(t, r, http.MethodGet, target, "", nil, flowCookie)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/", rec.Header().Get("Location"))

	var sessionCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.SessionCookieName {
			sessionCookie = c
		}
	}
	require.NotNil(t, sessionCookie)
	require.NotEmpty(t, sessionCookie.Value)

	// The session endpoint sees the logged-in account.
	rec = do(t, r, http.MethodGet, "/v1/session", "", nil, sessionCookie)
	require.Equal(t, http.StatusOK, rec.Code)
	sess := decodeBody[SessionResponse](t, rec)
	require.Equal(t, "a@b.com", sess.Email)
	require.Equal(t, "p1", sess.ProviderID)

	// Logout ends it.
	rec = do(t, r, http.MethodDelete, "/v1/session", "", nil, sessionCookie)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, r, http.MethodGet, "/v1/session", "", nil, sessionCookie)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

// TestDryRunCallback drives a test-mode flow end to end and checks nothing
// was committed.
func TestDryRunCallback(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /token", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"access_token":"tok"}`))
	})
	mux.HandleFunc("GET /userinfo", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"email":"a@b.com"}`))
	})
	idp := httptest.NewServer(mux)
	defer idp.Close()

	r := newTestRouter(t, testAdminToken, "https://sso.example.com")
	require.NoError(t, r.store.Providers().CreateProvider(context.Background(), domain.Provider{
		ID:                    "p1",
		Active:                true,
		Title:                 "Test IdP",
		ClientID:              "client-1",
		AuthorizationEndpoint: idp.URL + "/authorize",
		TokenEndpoint:         idp.URL + "/token",
		UserInfoEndpoint:      idp.URL + "/userinfo",
		UserInfoEmailPath:     "$.email",
	}))

	rec := do(t, r, http.MethodGet, "/oauth2/init/p1?test=1", "", nil)
	require.Equal(t, http.StatusFound, rec.Code)

	var flowCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.FlowCookieName {
			flowCookie = c
		}
	}
	require.NotNil(t, flowCookie)

	authRedirect, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	state := authRedirect.Query().Get("state")

	target := "/oauth2/callback/p1?code=abc123&state=" + url.QueryEscape(state)
	rec = do(t, r, http.MethodGet, target, "", nil, flowCookie)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody[DryRunResponse](t, rec)
	require.Equal(t, "dry_run", resp.Status)
	require.NotNil(t, resp.Trace)
	require.Equal(t, "a@b.com", resp.Trace.Email)
	require.True(t, resp.Trace.WouldCreateAccount)

	// No session cookie was set and no account exists.
	require.Empty(t, rec.Result().Cookies())
	rec = do(t, r, http.MethodGet, "/v1/session", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
