package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Crane-Ceeshar/CCD-Suite-sub007/domains/seo/be/service"
	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/envelope"
	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/requestparams"
	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/validation"
)

// Handler wires the seo service to the HTTP surface.
type Handler struct {
	svc    service.Service
	logger *zap.Logger
}

// New constructs a Handler instance.
func New(svc service.Service, logger *zap.Logger) *Handler {
	if svc == nil {
		panic("seo service is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &Handler{svc: svc, logger: logger}
}

// RegisterRoutes mounts the seo routes on the router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/seo", func(r chi.Router) {
		r.Route("/audits", func(r chi.Router) {
			r.Get("/", h.listAudits)
			r.Post("/", h.createAudit)
			r.Get("/{auditId}", h.getAudit)
			r.Delete("/{auditId}", h.deleteAudit)
		})
		r.Route("/backlinks", func(r chi.Router) {
			r.Get("/", h.listBacklinks)
			r.Post("/", h.createBacklink)
			r.Delete("/{backlinkId}", h.deleteBacklink)
		})
	})
}

type auditResponse struct {
	ID        string          `json:"id"`
	SiteURL   string          `json:"site_url"`
	Status    string          `json:"status"`
	Score     *int            `json:"score,omitempty"`
	Issues    json.RawMessage `json:"issues"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type backlinkResponse struct {
	ID           string    `json:"id"`
	SourceURL    string    `json:"source_url"`
	TargetURL    string    `json:"target_url"`
	AnchorText   string    `json:"anchor_text"`
	DomainRating *int      `json:"domain_rating,omitempty"`
	DiscoveredAt time.Time `json:"discovered_at"`
	CreatedAt    time.Time `json:"created_at"`
}

type createAuditRequest struct {
	SiteURL string `json:"site_url"`
}

type createBacklinkRequest struct {
	SourceURL    string     `json:"source_url"`
	TargetURL    string     `json:"target_url"`
	AnchorText   string     `json:"anchor_text"`
	DomainRating *int       `json:"domain_rating"`
	DiscoveredAt *time.Time `json:"discovered_at"`
}

func (h *Handler) listAudits(w http.ResponseWriter, r *http.Request) {
	params := requestparams.ParseList(r)

	result, err := h.svc.ListAudits(r.Context(), service.ListOptions{
		Page:      params.Page,
		PerPage:   params.PerPage,
		Search:    params.Search,
		SortBy:    params.SortBy,
		SortOrder: params.SortOrder,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	items := make([]auditResponse, 0, len(result.Audits))
	for _, audit := range result.Audits {
		items = append(items, toAPIAudit(audit))
	}

	envelope.WriteList(w, items, envelope.NewMeta(result.Page, result.PerPage, result.Total))
}

func (h *Handler) getAudit(w http.ResponseWriter, r *http.Request) {
	id, ok := requestparams.UUIDParam(r, "auditId")
	if !ok {
		envelope.WriteError(w, http.StatusNotFound, envelope.CodeNotFound, "audit not found")
		return
	}

	audit, err := h.svc.GetAudit(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	envelope.WriteOK(w, toAPIAudit(audit))
}

func (h *Handler) createAudit(w http.ResponseWriter, r *http.Request) {
	var req createAuditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		envelope.WriteError(w, http.StatusBadRequest, envelope.CodeValidation, "invalid request body")
		return
	}

	audit, err := h.svc.CreateAudit(r.Context(), service.CreateAuditInput{SiteURL: req.SiteURL})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	envelope.WriteCreated(w, toAPIAudit(audit))
}

func (h *Handler) deleteAudit(w http.ResponseWriter, r *http.Request) {
	id, ok := requestparams.UUIDParam(r, "auditId")
	if !ok {
		envelope.WriteError(w, http.StatusNotFound, envelope.CodeNotFound, "audit not found")
		return
	}

	if err := h.svc.DeleteAudit(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}

	envelope.WriteOK(w, map[string]bool{"deleted": true})
}

func (h *Handler) listBacklinks(w http.ResponseWriter, r *http.Request) {
	params := requestparams.ParseList(r)

	result, err := h.svc.ListBacklinks(r.Context(), service.ListOptions{
		Page:      params.Page,
		PerPage:   params.PerPage,
		Search:    params.Search,
		SortBy:    params.SortBy,
		SortOrder: params.SortOrder,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	items := make([]backlinkResponse, 0, len(result.Backlinks))
	for _, backlink := range result.Backlinks {
		items = append(items, toAPIBacklink(backlink))
	}

	envelope.WriteList(w, items, envelope.NewMeta(result.Page, result.PerPage, result.Total))
}

func (h *Handler) createBacklink(w http.ResponseWriter, r *http.Request) {
	var req createBacklinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		envelope.WriteError(w, http.StatusBadRequest, envelope.CodeValidation, "invalid request body")
		return
	}

	backlink, err := h.svc.CreateBacklink(r.Context(), service.CreateBacklinkInput{
		SourceURL:    req.SourceURL,
		TargetURL:    req.TargetURL,
		AnchorText:   req.AnchorText,
		DomainRating: req.DomainRating,
		DiscoveredAt: req.DiscoveredAt,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	envelope.WriteCreated(w, toAPIBacklink(backlink))
}

func (h *Handler) deleteBacklink(w http.ResponseWriter, r *http.Request) {
	id, ok := requestparams.UUIDParam(r, "backlinkId")
	if !ok {
		envelope.WriteError(w, http.StatusNotFound, envelope.CodeNotFound, "backlink not found")
		return
	}

	if err := h.svc.DeleteBacklink(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}

	envelope.WriteOK(w, map[string]bool{"deleted": true})
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *validation.Error

	switch {
	case errors.As(err, &validationErr):
		envelope.Write(w, http.StatusBadRequest, envelope.ErrWithDetails(
			envelope.CodeValidation, "invalid request", validationErr.Fields,
		))
	case errors.Is(err, service.ErrAuditNotFound):
		envelope.WriteError(w, http.StatusNotFound, envelope.CodeNotFound, "audit not found")
	case errors.Is(err, service.ErrBacklinkNotFound):
		envelope.WriteError(w, http.StatusNotFound, envelope.CodeNotFound, "backlink not found")
	case errors.Is(err, service.ErrBacklinkConflict):
		envelope.WriteError(w, http.StatusConflict, envelope.CodeConflict, "backlink already recorded")
	default:
		h.logger.Error("seo handler failure", zap.String("path", r.URL.Path), zap.Error(err))
		envelope.WriteError(w, http.StatusBadGateway, envelope.CodeUpstream, "upstream failure")
	}
}

func toAPIAudit(a service.Audit) auditResponse {
	issues := a.Issues
	if issues == nil {
		issues = json.RawMessage("[]")
	}
	return auditResponse{
		ID:        a.ID.String(),
		SiteURL:   a.SiteURL,
		Status:    a.Status,
		Score:     a.Score,
		Issues:    issues,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func toAPIBacklink(b service.Backlink) backlinkResponse {
	return backlinkResponse{
		ID:           b.ID.String(),
		SourceURL:    b.SourceURL,
		TargetURL:    b.TargetURL,
		AnchorText:   b.AnchorText,
		DomainRating: b.DomainRating,
		DiscoveredAt: b.DiscoveredAt,
		CreatedAt:    b.CreatedAt,
	}
}
