package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Crane-Ceeshar/CCD-Suite-sub007/domains/tasks/be/service"
	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/envelope"
	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/requestparams"
	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/validation"
)

// Handler wires the tasks service to the HTTP surface.
type Handler struct {
	svc    service.Service
	logger *zap.Logger
}

// New constructs a Handler instance.
func New(svc service.Service, logger *zap.Logger) *Handler {
	if svc == nil {
		panic("tasks service is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &Handler{svc: svc, logger: logger}
}

// RegisterRoutes mounts the task routes on the router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/{taskId}", h.get)
		r.Patch("/{taskId}", h.update)
		r.Delete("/{taskId}", h.delete)
	})
}

type taskResponse struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Notes      string     `json:"notes"`
	Status     string     `json:"status"`
	Priority   string     `json:"priority"`
	AssigneeID *string    `json:"assignee_id,omitempty"`
	DueDate    *time.Time `json:"due_date,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

type createTaskRequest struct {
	Title      string     `json:"title"`
	Notes      string     `json:"notes"`
	Status     *string    `json:"status"`
	Priority   *string    `json:"priority"`
	AssigneeID *uuid.UUID `json:"assignee_id"`
	DueDate    *time.Time `json:"due_date"`
}

type updateTaskRequest struct {
	Title      *string             `json:"title"`
	Notes      *string             `json:"notes"`
	Status     *string             `json:"status"`
	Priority   *string             `json:"priority"`
	AssigneeID optional[uuid.UUID] `json:"assignee_id"`
	DueDate    optional[time.Time] `json:"due_date"`
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

	items := make([]taskResponse, 0, len(result.Tasks))
	for _, task := range result.Tasks {
		items = append(items, toAPITask(task))
	}

	envelope.WriteList(w, items, envelope.NewMeta(result.Page, result.PerPage, result.Total))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := requestparams.UUIDParam(r, "taskId")
	if !ok {
		envelope.WriteError(w, http.StatusNotFound, envelope.CodeNotFound, "task not found")
		return
	}

	task, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	envelope.WriteOK(w, toAPITask(task))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		envelope.WriteError(w, http.StatusBadRequest, envelope.CodeValidation, "invalid request body")
		return
	}

	task, err := h.svc.Create(r.Context(), service.CreateInput{
		Title:      req.Title,
		Notes:      req.Notes,
		Status:     req.Status,
		Priority:   req.Priority,
		AssigneeID: req.AssigneeID,
		DueDate:    req.DueDate,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	envelope.WriteCreated(w, toAPITask(task))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := requestparams.UUIDParam(r, "taskId")
	if !ok {
		envelope.WriteError(w, http.StatusNotFound, envelope.CodeNotFound, "task not found")
		return
	}

	var req updateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		envelope.WriteError(w, http.StatusBadRequest, envelope.CodeValidation, "invalid request body")
		return
	}

	input := service.UpdateInput{
		Title:    req.Title,
		Notes:    req.Notes,
		Status:   req.Status,
		Priority: req.Priority,
	}
	if req.AssigneeID.present {
		if req.AssigneeID.value == nil {
			input.ClearAssignee = true
		} else {
			input.AssigneeID = req.AssigneeID.value
		}
	}
	if req.DueDate.present {
		if req.DueDate.value == nil {
			input.ClearDueDate = true
		} else {
			input.DueDate = req.DueDate.value
		}
	}

	task, err := h.svc.Update(r.Context(), id, input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	envelope.WriteOK(w, toAPITask(task))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := requestparams.UUIDParam(r, "taskId")
	if !ok {
		envelope.WriteError(w, http.StatusNotFound, envelope.CodeNotFound, "task not found")
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
		envelope.WriteError(w, http.StatusNotFound, envelope.CodeNotFound, "task not found")
	default:
		h.logger.Error("tasks handler failure", zap.String("path", r.URL.Path), zap.Error(err))
		envelope.WriteError(w, http.StatusBadGateway, envelope.CodeUpstream, "upstream failure")
	}
}

func toAPITask(t service.Task) taskResponse {
	resp := taskResponse{
		ID:        t.ID.String(),
		Title:     t.Title,
		Notes:     t.Notes,
		Status:    t.Status,
		Priority:  t.Priority,
		DueDate:   t.DueDate,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
	if t.AssigneeID != nil {
		s := t.AssigneeID.String()
		resp.AssigneeID = &s
	}
	return resp
}
