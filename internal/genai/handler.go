package genai

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/taskweave/taskweave/internal/api"
	"github.com/taskweave/taskweave/internal/auth"
)

// Handler handles generation HTTP endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new generation handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Generate runs one AI generation attempt for the authenticated user.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(w, r)
	if !ok {
		return
	}

	var in GenerationInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		api.HandleError(w, api.NewBadRequestError("invalid request body"))
		return
	}

	result, err := h.svc.Generate(r.Context(), userID, in)
	if err != nil {
		ue := Classify(err)
		api.JSONErrorBody(w, HTTPStatus(ue.Kind), ue)
		return
	}

	api.JSON(w, http.StatusCreated, result)
}

// Usage returns the authenticated user's generation quota status.
func (h *Handler) Usage(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(w, r)
	if !ok {
		return
	}

	st, err := h.svc.Usage(r.Context(), userID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusOK, st)
}

func userIDFromRequest(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	claims := auth.GetUserClaims(r.Context())
	if claims == nil {
		api.HandleError(w, api.ErrUnauthorized)
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		api.HandleError(w, api.ErrUnauthorized)
		return uuid.Nil, false
	}
	return userID, true
}
