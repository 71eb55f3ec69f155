package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/ssobridge/internal/sso/service"
	"github.com/aussiebroadwan/ssobridge/pkg/httpx"
	"github.com/aussiebroadwan/ssobridge/pkg/slogx"
)

// ErrorResponse is the JSON body every failed request gets.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// writeServiceError maps the service error taxonomy onto HTTP statuses:
// validation and state problems are the caller's fault (400), unknown
// providers are 404, and upstream or persistence failures are 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	l := slogx.FromContext(r.Context())

	var (
		validationErr  *service.ValidationError
		stateErr       *service.StateError
		upstreamErr    *service.UpstreamError
		persistenceErr *service.PersistenceError
	)

	switch {
	case errors.As(err, &validationErr):
		httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: validationErr.Error(),
		})
	case errors.Is(err, service.ErrProviderNotFound),
		errors.Is(err, service.ErrGroupMappingNotFound),
		errors.Is(err, service.ErrGroupNotFound):
		httpx.WriteJSON(w, http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: err.Error(),
		})
	case errors.Is(err, service.ErrSessionNotFound):
		httpx.WriteJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: err.Error(),
		})
	case errors.As(err, &stateErr):
		l.Warn("rejected callback state", "reason", stateErr.Reason)
		httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "bad_state",
			Message: stateErr.Error(),
		})
	case errors.As(err, &upstreamErr):
		l.Error("upstream failure", "op", upstreamErr.Op, "error", upstreamErr.Err)
		httpx.WriteJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "upstream_error",
			Message: upstreamErr.Error(),
		})
	case errors.As(err, &persistenceErr):
		l.Error("persistence failure", "op", persistenceErr.Op, "error", persistenceErr.Err)
		httpx.WriteJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "persistence_error",
			Message: "internal storage failure",
		})
	default:
		l.Error("unhandled error", "error", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "server_error",
			Message: "internal server error",
		})
	}
}
