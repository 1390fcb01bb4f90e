package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Crane-Ceeshar/CCD-Suite-sub007/domains/flags/be/service"
	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/envelope"
)

// Handler wires the flags service to the HTTP surface.
type Handler struct {
	svc    service.Service
	logger *zap.Logger
}

// New constructs a Handler instance.
func New(svc service.Service, logger *zap.Logger) *Handler {
	if svc == nil {
		panic("flags service is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &Handler{svc: svc, logger: logger}
}

// RegisterRoutes mounts the flag routes on the router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/feature-flags", h.list)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	flags, err := h.svc.Resolve(r.Context())
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			envelope.WriteError(w, http.StatusNotFound, envelope.CodeNotFound, "tenant not found")
			return
		}
		h.logger.Error("flags handler failure", zap.String("path", r.URL.Path), zap.Error(err))
		envelope.WriteError(w, http.StatusBadGateway, envelope.CodeUpstream, "upstream failure")
		return
	}

	envelope.WriteOK(w, flags)
}
