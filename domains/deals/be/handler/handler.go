package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Crane-Ceeshar/CCD-Suite-sub007/domains/deals/be/service"
	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/envelope"
	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/requestparams"
	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/validation"
)

// Handler wires the deals service to the HTTP surface.
type Handler struct {
	svc    service.Service
	logger *zap.Logger
}

// New constructs a Handler instance.
func New(svc service.Service, logger *zap.Logger) *Handler {
	if svc == nil {
		panic("deals service is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &Handler{svc: svc, logger: logger}
}

// RegisterRoutes mounts the deal routes on the router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/deals", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/{dealId}", h.get)
		r.Patch("/{dealId}", h.update)
		r.Delete("/{dealId}", h.delete)
	})
}

type dealResponse struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Stage           string     `json:"stage"`
	AmountCents     int64      `json:"amount_cents"`
	Currency        string     `json:"currency"`
	ContactName     string     `json:"contact_name"`
	ExpectedCloseAt *time.Time `json:"expected_close_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

type createDealRequest struct {
	Name            string     `json:"name"`
	Stage           *string    `json:"stage"`
	AmountCents     *int64     `json:"amount_cents"`
	Currency        *string    `json:"currency"`
	ContactName     string     `json:"contact_name"`
	ExpectedCloseAt *time.Time `json:"expected_close_at"`
}

type updateDealRequest struct {
	Name            *string             `json:"name"`
	Stage           *string             `json:"stage"`
	AmountCents     *int64              `json:"amount_cents"`
	Currency        *string             `json:"currency"`
	ContactName     *string             `json:"contact_name"`
	ExpectedCloseAt optional[time.Time] `json:"expected_close_at"`
}

// optional distinguishes "absent", "null" and "set" on PATCH payloads.
type optional[T any] struct {
	present bool
	value   *T
}

func (o *optional[T]) UnmarshalJSON(data []byte) error {
	o.present = true
	if string(data) == "null" {
		o.value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.value = &v
	return nil
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	params := requestparams.ParseList(r)

	result, err := h.svc.List(r.Context(), service.ListOptions{
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

	items := make([]dealResponse, 0, len(result.Deals))
	for _, deal := range result.Deals {
		items = append(items, toAPIDeal(deal))
	}

	envelope.WriteList(w, items, envelope.NewMeta(result.Page, result.PerPage, result.Total))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := requestparams.UUIDParam(r, "dealId")
	if !ok {
		envelope.WriteError(w, http.StatusNotFound, envelope.CodeNotFound, "deal not found")
		return
	}

	deal, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	envelope.WriteOK(w, toAPIDeal(deal))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createDealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		envelope.WriteError(w, http.StatusBadRequest, envelope.CodeValidation, "invalid request body")
		return
	}

	deal, err := h.svc.Create(r.Context(), service.CreateInput{
		Name:            req.Name,
		Stage:           req.Stage,
		AmountCents:     req.AmountCents,
		Currency:        req.Currency,
		ContactName:     req.ContactName,
		ExpectedCloseAt: req.ExpectedCloseAt,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	envelope.WriteCreated(w, toAPIDeal(deal))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := requestparams.UUIDParam(r, "dealId")
	if !ok {
		envelope.WriteError(w, http.StatusNotFound, envelope.CodeNotFound, "deal not found")
		return
	}

	var req updateDealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		envelope.WriteError(w, http.StatusBadRequest, envelope.CodeValidation, "invalid request body")
		return
	}

	input := service.UpdateInput{
		Name:        req.Name,
		Stage:       req.Stage,
		AmountCents: req.AmountCents,
		Currency:    req.Currency,
		ContactName: req.ContactName,
	}
	if req.ExpectedCloseAt.present {
		if req.ExpectedCloseAt.value == nil {
			input.ClearCloseTarget = true
		} else {
			input.ExpectedCloseAt = req.ExpectedCloseAt.value
		}
	}

	deal, err := h.svc.Update(r.Context(), id, input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	envelope.WriteOK(w, toAPIDeal(deal))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := requestparams.UUIDParam(r, "dealId")
	if !ok {
		envelope.WriteError(w, http.StatusNotFound, envelope.CodeNotFound, "deal not found")
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
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
	case errors.Is(err, service.ErrNotFound):
		envelope.WriteError(w, http.StatusNotFound, envelope.CodeNotFound, "deal not found")
	default:
		h.logger.Error("deals handler failure", zap.String("path", r.URL.Path), zap.Error(err))
		envelope.WriteError(w, http.StatusBadGateway, envelope.CodeUpstream, "upstream failure")
	}
}

func toAPIDeal(d service.Deal) dealResponse {
	return dealResponse{
		ID:              d.ID.String(),
		Name:            d.Name,
		Stage:           d.Stage,
		AmountCents:     d.AmountCents,
		Currency:        d.Currency,
		ContactName:     d.ContactName,
		ExpectedCloseAt: d.ExpectedCloseAt,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}
