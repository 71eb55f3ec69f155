package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/ssobridge/internal/sso/domain"
	"github.com/aussiebroadwan/ssobridge/internal/sso/service"
	"github.com/aussiebroadwan/ssobridge/pkg/httpx"
)

// ProvidersHandler exposes the admin CRUD surface for provider
// configuration. Client secrets are never part of this API; they are
// resolved from the environment at flow time.
type ProvidersHandler struct {
	ProviderService *service.ProviderService
	Secrets         service.SecretResolver
	BaseURL         string
}

// ProviderResponse is a provider row enriched with the operational fields
// an operator needs: the env var the client secret is read from, whether it
// is currently set, and the flow entry points.
type ProviderResponse struct {
	domain.Provider
	ClientSecretEnv string `json:"client_secret_env"`
	ClientSecretSet bool   `json:"client_secret_set"`
	InitURL         string `json:"init_url"`
	TestURL         string `json:"test_url"`
}

func (h *ProvidersHandler) toResponse(p domain.Provider) ProviderResponse {
	_, err := h.Secrets.ClientSecret(p.ID)
	initURL := strings.TrimRight(h.BaseURL, "/") + "/oauth2/init/" + p.ID
	return ProviderResponse{
		Provider:        p,
		ClientSecretEnv: service.SecretEnvKey(p.ID),
		ClientSecretSet: err == nil,
		InitURL:         initURL,
		TestURL:         initURL + "?test=1",
	}
}

// ProviderRequest is the create/update body for a provider.
type ProviderRequest struct {
	Active                   bool     `json:"active"`
	Title                    string   `json:"title"`
	ClientID                 string   `json:"client_id"`
	Scopes                   []string `json:"scopes,omitempty"`
	OpenIDDiscoveryEndpoint  string   `json:"openid_discovery_endpoint,omitempty"`
	AuthorizationEndpoint    string   `json:"authorization_endpoint,omitempty"`
	TokenEndpoint            string   `json:"token_endpoint,omitempty"`
	UserInfoEndpoint         string   `json:"userinfo_endpoint,omitempty"`
	UserInfoEmailPath        string   `json:"userinfo_email_path"`
	UserInfoFirstNamePath    string   `json:"userinfo_first_name_path,omitempty"`
	UserInfoSurnamePath      string   `json:"userinfo_surname_path,omitempty"`
	GroupsInfoEndpoint       string   `json:"groupsinfo_endpoint,omitempty"`
	GroupsInfoIdentifierPath string   `json:"groupsinfo_identifier_path,omitempty"`
	DefaultGroupID           string   `json:"default_group_id,omitempty"`
}

func (req ProviderRequest) toDomain() domain.Provider {
	return domain.Provider{
		Active:                   req.Active,
		Title:                    req.Title,
		ClientID:                 req.ClientID,
		Scopes:                   req.Scopes,
		OpenIDDiscoveryEndpoint:  req.OpenIDDiscoveryEndpoint,
		AuthorizationEndpoint:    req.AuthorizationEndpoint,
		TokenEndpoint:            req.TokenEndpoint,
		UserInfoEndpoint:         req.UserInfoEndpoint,
		UserInfoEmailPath:        req.UserInfoEmailPath,
		UserInfoFirstNamePath:    req.UserInfoFirstNamePath,
		UserInfoSurnamePath:      req.UserInfoSurnamePath,
		GroupsInfoEndpoint:       req.GroupsInfoEndpoint,
		GroupsInfoIdentifierPath: req.GroupsInfoIdentifierPath,
		DefaultGroupID:           req.DefaultGroupID,
	}
}

// HandleCreate creates a provider.
//
//	@Summary	Create provider
//	@Tags		Providers
//	@Security	AdminAuth
//	@Accept		json
//	@Produce	json
//	@Param		provider	body		ProviderRequest	true	"Provider configuration"
//	@Success	201			{object}	ProviderResponse
//	@Failure	400			{object}	ErrorResponse
//	@Router		/v1/providers [post]
func (h *ProvidersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req ProviderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "invalid JSON body",
		})
		return
	}

	p, err := h.ProviderService.CreateProvider(r.Context(), req.toDomain())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, h.toResponse(p))
}

// HandleList lists all providers.
//
//	@Summary	List providers
//	@Tags		Providers
//	@Security	AdminAuth
//	@Produce	json
//	@Success	200	{array}	ProviderResponse
//	@Router		/v1/providers [get]
func (h *ProvidersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	providers, err := h.ProviderService.ListProviders(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := make([]ProviderResponse, 0, len(providers))
	for _, p := range providers {
		out = append(out, h.toResponse(p))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleGet returns one provider.
//
//	@Summary	Get provider
//	@Tags		Providers
//	@Security	AdminAuth
//	@Produce	json
//	@Param		id	path		string	true	"Provider id"
//	@Success	200	{object}	ProviderResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/v1/providers/{id} [get]
func (h *ProvidersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	p, err := h.ProviderService.GetProvider(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, h.toResponse(p))
}

// HandleUpdate replaces a provider's configuration.
//
//	@Summary	Update provider
//	@Tags		Providers
//	@Security	AdminAuth
//	@Accept		json
//	@Produce	json
//	@Param		id			path		string			true	"Provider id"
//	@Param		provider	body		ProviderRequest	true	"Provider configuration"
//	@Success	200			{object}	ProviderResponse
//	@Failure	400			{object}	ErrorResponse
//	@Failure	404			{object}	ErrorResponse
//	@Router		/v1/providers/{id} [put]
func (h *ProvidersHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req ProviderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "invalid JSON body",
		})
		return
	}

	p := req.toDomain()
	p.ID = r.PathValue("id")

	updated, err := h.ProviderService.UpdateProvider(r.Context(), p)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, h.toResponse(updated))
}

// HandleDelete removes a provider and its mappings.
//
//	@Summary	Delete provider
//	@Tags		Providers
//	@Security	AdminAuth
//	@Param		id	path	string	true	"Provider id"
//	@Success	204
//	@Failure	404	{object}	ErrorResponse
//	@Router		/v1/providers/{id} [delete]
func (h *ProvidersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.ProviderService.DeleteProvider(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
