package http

import (
	"encoding/json"
	"net/http"

	"github.com/aussiebroadwan/ssobridge/internal/sso/domain"
	"github.com/aussiebroadwan/ssobridge/internal/sso/service"
	"github.com/aussiebroadwan/ssobridge/pkg/httpx"
)

// GroupMappingsHandler exposes the admin CRUD surface for group mappings.
type GroupMappingsHandler struct {
	GroupMappingService *service.GroupMappingService
}

// GroupMappingRequest is the create/update body for a mapping.
type GroupMappingRequest struct {
	Title            string   `json:"title"`
	ExternalGroupIDs []string `json:"external_group_ids"`
	GroupIDs         []string `json:"group_ids"`
}

// HandleCreate creates a mapping under a provider.
//
//	@Summary	Create group mapping
//	@Tags		GroupMappings
//	@Security	AdminAuth
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string				true	"Provider id"
//	@Param		mapping	body		GroupMappingRequest	true	"Mapping"
//	@Success	201		{object}	domain.GroupMapping
//	@Failure	400		{object}	ErrorResponse
//	@Failure	404		{object}	ErrorResponse
//	@Router		/v1/providers/{id}/mappings [post]
func (h *GroupMappingsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req GroupMappingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "invalid JSON body",
		})
		return
	}

	m, err := h.GroupMappingService.CreateGroupMapping(r.Context(), domain.GroupMapping{
		ProviderID:       r.PathValue("id"),
		Title:            req.Title,
		ExternalGroupIDs: req.ExternalGroupIDs,
		GroupIDs:         req.GroupIDs,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, m)
}

// HandleList lists all mappings of one provider.
//
//	@Summary	List group mappings
//	@Tags		GroupMappings
//	@Security	AdminAuth
//	@Produce	json
//	@Param		id	path	string	true	"Provider id"
//	@Success	200	{array}	domain.GroupMapping
//	@Failure	404	{object}	ErrorResponse
//	@Router		/v1/providers/{id}/mappings [get]
func (h *GroupMappingsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	mappings, err := h.GroupMappingService.ListGroupMappings(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if mappings == nil {
		mappings = []domain.GroupMapping{}
	}
	httpx.WriteJSON(w, http.StatusOK, mappings)
}

// HandleUpdate replaces a mapping.
//
//	@Summary	Update group mapping
//	@Tags		GroupMappings
//	@Security	AdminAuth
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string				true	"Mapping id"
//	@Param		mapping	body		GroupMappingRequest	true	"Mapping"
//	@Success	200		{object}	domain.GroupMapping
//	@Failure	400		{object}	ErrorResponse
//	@Failure	404		{object}	ErrorResponse
//	@Router		/v1/mappings/{id} [put]
func (h *GroupMappingsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req GroupMappingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "invalid JSON body",
		})
		return
	}

	m, err := h.GroupMappingService.UpdateGroupMapping(r.Context(), domain.GroupMapping{
		ID:               r.PathValue("id"),
		Title:            req.Title,
		ExternalGroupIDs: req.ExternalGroupIDs,
		GroupIDs:         req.GroupIDs,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, m)
}

// HandleDelete removes a mapping.
//
//	@Summary	Delete group mapping
//	@Tags		GroupMappings
//	@Security	AdminAuth
//	@Param		id	path	string	true	"Mapping id"
//	@Success	204
//	@Failure	404	{object}	ErrorResponse
//	@Router		/v1/mappings/{id} [delete]
func (h *GroupMappingsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.GroupMappingService.DeleteGroupMapping(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
