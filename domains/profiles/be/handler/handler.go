package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Crane-Ceeshar/CCD-Suite-sub007/domains/profiles/be/service"
	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/envelope"
	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/validation"
)

// Handler wires the profiles service to the HTTP surface.
type Handler struct {
	svc    service.Service
	logger *zap.Logger
}

// New constructs a Handler instance.
func New(svc service.Service, logger *zap.Logger) *Handler {
	if svc == nil {
		panic("profiles service is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &Handler{svc: svc, logger: logger}
}

// RegisterRoutes mounts the profile routes on the router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/me", h.getMe)
	r.Patch("/me", h.updateMe)
}

type profileResponse struct {
	UserID    string    `json:"user_id"`
	TenantID  string    `json:"tenant_id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type updateMeRequest struct {
	FullName  *string `json:"full_name"`
	AvatarURL *string `json:"avatar_url"`
}

func (h *Handler) getMe(w http.ResponseWriter, r *http.Request) {
	profile, err := h.svc.GetSelf(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	envelope.WriteOK(w, toAPIProfile(profile))
}

func (h *Handler) updateMe(w http.ResponseWriter, r *http.Request) {
	var req updateMeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		envelope.WriteError(w, http.StatusBadRequest, envelope.CodeValidation, "invalid request body")
		return
	}

	profile, err := h.svc.UpdateSelf(r.Context(), service.UpdateSelfInput{
		FullName:  req.FullName,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	envelope.WriteOK(w, toAPIProfile(profile))
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *validation.Error

	switch {
	case errors.As(err, &validationErr):
		envelope.Write(w, http.StatusBadRequest, envelope.ErrWithDetails(
			envelope.CodeValidation, "invalid request", validationErr.Fields,
		))
	case errors.Is(err, service.ErrNotFound):
		envelope.WriteError(w, http.StatusNotFound, envelope.CodeNotFound, "profile not found")
	case errors.Is(err, service.ErrConflict):
		envelope.WriteError(w, http.StatusConflict, envelope.CodeConflict, "profile conflict")
	default:
		h.logger.Error("profiles handler failure", zap.String("path", r.URL.Path), zap.Error(err))
		envelope.WriteError(w, http.StatusBadGateway, envelope.CodeUpstream, "upstream failure")
	}
}

func toAPIProfile(p service.Profile) profileResponse {
	return profileResponse{
		UserID:    p.UserID.String(),
		TenantID:  p.TenantID.String(),
		Email:     p.Email,
		FullName:  p.FullName,
		Role:      p.Role,
		AvatarURL: p.AvatarURL,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
