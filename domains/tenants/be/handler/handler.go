package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Crane-Ceeshar/CCD-Suite-sub007/domains/tenants/be/service"
	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/envelope"
	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/persistence"
	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/validation"
)

// Payloads are small JSON documents; cap reads defensively.
const maxBodyBytes = 1 << 20

// Handler wires the tenants service to the HTTP surface. All routes are
// admin-only; role enforcement happens in middleware before requests land here.
type Handler struct {
	svc    service.Service
	logger *zap.Logger
}

// New constructs a Handler instance.
func New(svc service.Service, logger *zap.Logger) *Handler {
	if svc == nil {
		panic("tenants service is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &Handler{svc: svc, logger: logger}
}

// RegisterRoutes mounts the tenant routes on the router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/tenant", h.getTenant)
	r.Patch("/tenant", h.updateTenant)
	r.Get("/tenant/settings", h.getSettings)
	r.Patch("/tenant/settings", h.updateSettings)
}

type tenantResponse struct {
	ID          string                      `json:"id"`
	Name        string                      `json:"name"`
	Slug        string                      `json:"slug"`
	Plan        string                      `json:"plan"`
	Settings    persistence.TenantSettings  `json:"settings"`
	MaxUsers    int                         `json:"max_users"`
	IsActive    bool                        `json:"is_active"`
	TrialEndsAt *time.Time                  `json:"trial_ends_at,omitempty"`
	CreatedAt   time.Time                   `json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`
}

type updateTenantRequest struct {
	Name *string `json:"name"`
}

func (h *Handler) getTenant(w http.ResponseWriter, r *http.Request) {
	tenant, err := h.svc.Get(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	envelope.WriteOK(w, toAPITenant(tenant))
}

func (h *Handler) updateTenant(w http.ResponseWriter, r *http.Request) {
	var req updateTenantRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		envelope.WriteError(w, http.StatusBadRequest, envelope.CodeValidation, "invalid request body")
		return
	}

	tenant, err := h.svc.Update(r.Context(), service.UpdateInput{Name: req.Name})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	envelope.WriteOK(w, toAPITenant(tenant))
}

func (h *Handler) getSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.svc.GetSettings(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	envelope.WriteOK(w, settings)
}

func (h *Handler) updateSettings(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		envelope.WriteError(w, http.StatusBadRequest, envelope.CodeValidation, "invalid request body")
		return
	}

	settings, err := h.svc.UpdateSettings(r.Context(), payload)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	envelope.WriteOK(w, settings)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *validation.Error

	switch {
	case errors.As(err, &validationErr):
		envelope.Write(w, http.StatusBadRequest, envelope.ErrWithDetails(
			envelope.CodeValidation, "invalid request", validationErr.Fields,
		))
	case errors.Is(err, service.ErrNotFound):
		envelope.WriteError(w, http.StatusNotFound, envelope.CodeNotFound, "tenant not found")
	case errors.Is(err, service.ErrConflict):
		envelope.WriteError(w, http.StatusConflict, envelope.CodeConflict, "tenant conflict")
	default:
		h.logger.Error("tenants handler failure", zap.String("path", r.URL.Path), zap.Error(err))
		envelope.WriteError(w, http.StatusBadGateway, envelope.CodeUpstream, "upstream failure")
	}
}

func toAPITenant(t service.Tenant) tenantResponse {
	return tenantResponse{
		ID:          t.ID.String(),
		Name:        t.Name,
		Slug:        t.Slug,
		Plan:        t.Plan,
		Settings:    t.Settings,
		MaxUsers:    t.MaxUsers,
		IsActive:    t.IsActive,
		TrialEndsAt: t.TrialEndsAt,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
