package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campusconnect/places-engine/pkg/auth"
	"github.com/campusconnect/places-engine/pkg/services"
)

// DeleteSubtreeResponse reports every place removed by a recursive delete.
type DeleteSubtreeResponse struct {
	Removed []uuid.UUID `json:"removed"`
	Total   int         `json:"total"`
}

// PlaceHandler handles place HTTP requests.
type PlaceHandler struct {
	placeService services.PlaceService
	logger       *zap.Logger
}

// NewPlaceHandler creates a new PlaceHandler.
func NewPlaceHandler(placeService services.PlaceService, logger *zap.Logger) *PlaceHandler {
	return &PlaceHandler{placeService: placeService, logger: logger}
}

// RegisterRoutes registers the place routes on the given mux. Reads take
// optional auth so creators and admins see their own pending places; writes
// require it.
func (h *PlaceHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("POST /api/places", authMiddleware.RequireAuth(h.Create))
	mux.HandleFunc("GET /api/places", h.List)
	mux.HandleFunc("GET /api/places/roots", h.ListRoots)
	mux.HandleFunc("GET /api/places/search", h.Search)
	mux.HandleFunc("GET /api/places/{id}", authMiddleware.OptionalAuth(h.Get))
	mux.HandleFunc("DELETE /api/places/{id}", authMiddleware.RequireAuth(h.Delete))
	mux.HandleFunc("DELETE /api/places/{id}/tree", authMiddleware.RequireAuth(h.DeleteSubtree))
	mux.HandleFunc("GET /api/place-types", h.ListTypes)
}

// Create handles POST /api/places.
func (h *PlaceHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.ActorFromContext(r.Context())
	if err != nil {
		_ = ErrorResponse(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	var input services.CreatePlaceInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	place, err := h.placeService.Create(r.Context(), input, actor)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}
	_ = WriteJSON(w, http.StatusCreated, place)
}

// Get handles GET /api/places/{id}.
func (h *PlaceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	detail, err := h.placeService.Get(r.Context(), id, auth.OptionalActorFromContext(r.Context()))
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}
	_ = WriteJSON(w, http.StatusOK, detail)
}

// List handles GET /api/places.
func (h *PlaceHandler) List(w http.ResponseWriter, r *http.Request) {
	places, err := h.placeService.ListApproved(r.Context())
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}
	writePlaceList(w, places)
}

// ListRoots handles GET /api/places/roots.
func (h *PlaceHandler) ListRoots(w http.ResponseWriter, r *http.Request) {
	places, err := h.placeService.ListRoots(r.Context())
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}
	writePlaceList(w, places)
}

// Search handles GET /api/places/search. A bare q parameter is free-text
// search; the named parameters filter by specific fields (university,
// academic_unit and place_type by exact name) and cannot be combined with q.
func (h *PlaceHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	input := services.SearchPlacesInput{
		Query:            q.Get("q"),
		Name:             q.Get("name"),
		RelativeLocation: q.Get("relative_location"),
		University:       q.Get("university"),
		AcademicUnit:     q.Get("academic_unit"),
		PlaceType:        q.Get("place_type"),
	}

	places, err := h.placeService.Search(r.Context(), input)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}
	writePlaceList(w, places)
}

// ListTypes handles GET /api/place-types.
func (h *PlaceHandler) ListTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.placeService.ListTypes(r.Context())
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}
	_ = WriteJSON(w, http.StatusOK, map[string]any{"place_types": types})
}

// Delete handles DELETE /api/places/{id}.
func (h *PlaceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.ActorFromContext(r.Context())
	if err != nil {
		_ = ErrorResponse(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.placeService.Delete(r.Context(), id, actor); err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}
	_ = WriteJSON(w, http.StatusOK, map[string]string{"message": "place deleted"})
}

// DeleteSubtree handles DELETE /api/places/{id}/tree.
func (h *PlaceHandler) DeleteSubtree(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.ActorFromContext(r.Context())
	if err != nil {
		_ = ErrorResponse(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	removed, err := h.placeService.DeleteSubtree(r.Context(), id, actor)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}
	_ = WriteJSON(w, http.StatusOK, DeleteSubtreeResponse{Removed: removed, Total: len(removed)})
}

func writePlaceList(w http.ResponseWriter, places any) {
	_ = WriteJSON(w, http.StatusOK, map[string]any{"places": places})
}

// pathUUID parses the named path segment as a UUID, writing a 400 on failure.
func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}
