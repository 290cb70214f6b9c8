package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/campusconnect/places-engine/pkg/auth"
	"github.com/campusconnect/places-engine/pkg/models"
	"github.com/campusconnect/places-engine/pkg/services"
)

// ReviewUpdateRequest for POST /api/place-updates/{id}/review.
type ReviewUpdateRequest struct {
	ApprovalStatus string `json:"approval_status"`
}

// PlaceUpdateHandler handles the staged-edit HTTP surface.
type PlaceUpdateHandler struct {
	reviewService services.UpdateReviewService
	logger        *zap.Logger
}

// NewPlaceUpdateHandler creates a new PlaceUpdateHandler.
func NewPlaceUpdateHandler(reviewService services.UpdateReviewService, logger *zap.Logger) *PlaceUpdateHandler {
	return &PlaceUpdateHandler{reviewService: reviewService, logger: logger}
}

// RegisterRoutes registers the place-update routes on the given mux.
func (h *PlaceUpdateHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("POST /api/places/{id}/updates", authMiddleware.RequireAuth(h.Propose))
	mux.HandleFunc("GET /api/place-updates/pending", authMiddleware.RequireAuth(h.ListPending))
	mux.HandleFunc("GET /api/place-updates/{id}", authMiddleware.RequireAuth(h.Get))
	mux.HandleFunc("POST /api/place-updates/{id}/review", authMiddleware.RequireAuth(h.Review))
}

// Propose handles POST /api/places/{id}/updates.
func (h *PlaceUpdateHandler) Propose(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.ActorFromContext(r.Context())
	if err != nil {
		_ = ErrorResponse(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}
	placeID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var input services.ProposeUpdateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	update, err := h.reviewService.Propose(r.Context(), placeID, input, actor)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}
	_ = WriteJSON(w, http.StatusCreated, update)
}

// ListPending handles GET /api/place-updates/pending.
func (h *PlaceUpdateHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.ActorFromContext(r.Context())
	if err != nil {
		_ = ErrorResponse(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	updates, err := h.reviewService.ListPending(r.Context(), actor)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}
	_ = WriteJSON(w, http.StatusOK, map[string]any{"updates": updates})
}

// Get handles GET /api/place-updates/{id}.
func (h *PlaceUpdateHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.ActorFromContext(r.Context())
	if err != nil {
		_ = ErrorResponse(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	detail, err := h.reviewService.Get(r.Context(), id, actor)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}
	_ = WriteJSON(w, http.StatusOK, detail)
}

// Review handles POST /api/place-updates/{id}/review. The decision is carried
// in the body as approval_status, approved or rejected.
func (h *PlaceUpdateHandler) Review(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.ActorFromContext(r.Context())
	if err != nil {
		_ = ErrorResponse(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req ReviewUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	switch req.ApprovalStatus {
	case models.ApprovalApproved:
		place, err := h.reviewService.Approve(r.Context(), id, actor)
		if err != nil {
			WriteServiceError(w, h.logger, err)
			return
		}
		_ = WriteJSON(w, http.StatusOK, map[string]any{
			"message": "place update approved",
			"place":   place,
		})
	case models.ApprovalRejected:
		if err := h.reviewService.Reject(r.Context(), id, actor); err != nil {
			WriteServiceError(w, h.logger, err)
			return
		}
		_ = WriteJSON(w, http.StatusOK, map[string]string{"message": "place update rejected"})
	default:
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "approval_status must be approved or rejected")
	}
}
