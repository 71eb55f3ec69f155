package http

import (
	"encoding/json"
	"net/http"

	"github.com/aussiebroadwan/ssobridge/internal/sso/domain"
	"github.com/aussiebroadwan/ssobridge/internal/sso/service"
	"github.com/aussiebroadwan/ssobridge/pkg/httpx"
)

// GroupsHandler exposes the admin surface for local groups.
type GroupsHandler struct {
	GroupService *service.GroupService
}

// GroupRequest is the create body for a group.
type GroupRequest struct {
	Title string `json:"title"`
}

// HandleCreate creates a group.
//
//	@Summary	Create group
//	@Tags		Groups
//	@Security	AdminAuth
//	@Accept		json
//	@Produce	json
//	@Param		group	body		GroupRequest	true	"Group"
//	@Success	201		{object}	domain.Group
//	@Failure	400		{object}	ErrorResponse
//	@Router		/v1/groups [post]
func (h *GroupsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req GroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "invalid JSON body",
		})
		return
	}

	g, err := h.GroupService.CreateGroup(r.Context(), req.Title)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, g)
}

// HandleList lists all groups.
//
//	@Summary	List groups
//	@Tags		Groups
//	@Security	AdminAuth
//	@Produce	json
//	@Success	200	{array}	domain.Group
//	@Router		/v1/groups [get]
func (h *GroupsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	groups, err := h.GroupService.ListGroups(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if groups == nil {
		groups = []domain.Group{}
	}
	httpx.WriteJSON(w, http.StatusOK, groups)
}
