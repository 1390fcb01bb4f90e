package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Crane-Ceeshar/CCD-Suite-sub007/domains/tasks/be/service"
	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/validation"
)

type mockService struct {
	listFn   func(ctx context.Context, opts service.ListOptions) (service.ListResult, error)
	getFn    func(ctx context.Context, id uuid.UUID) (service.Task, error)
	createFn func(ctx context.Context, input service.CreateInput) (service.Task, error)
	updateFn func(ctx context.Context, id uuid.UUID, input service.UpdateInput) (service.Task, error)
	deleteFn func(ctx context.Context, id uuid.UUID) error
}

func (m *mockService) List(ctx context.Context, opts service.ListOptions) (service.ListResult, error) {
	if m.listFn == nil {
		panic("listFn not configured")
	}
	return m.listFn(ctx, opts)
}

func (m *mockService) Get(ctx context.Context, id uuid.UUID) (service.Task, error) {
	if m.getFn == nil {
		panic("getFn not configured")
	}
	return m.getFn(ctx, id)
}

func (m *mockService) Create(ctx context.Context, input service.CreateInput) (service.Task, error) {
	if m.createFn == nil {
		panic("createFn not configured")
	}
	return m.createFn(ctx, input)
}

func (m *mockService) Update(ctx context.Context, id uuid.UUID, input service.UpdateInput) (service.Task, error) {
	if m.updateFn == nil {
		panic("updateFn not configured")
	}
	return m.updateFn(ctx, id, input)
}

func (m *mockService) Delete(ctx context.Context, id uuid.UUID) error {
	if m.deleteFn == nil {
		panic("deleteFn not configured")
	}
	return m.deleteFn(ctx, id)
}

func newTestRouter(svc service.Service) http.Handler {
	r := chi.NewRouter()
	New(svc, zap.NewNop()).RegisterRoutes(r)
	return r
}

func TestListReportsPaginationMeta(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&mockService{
		listFn: func(ctx context.Context, opts service.ListOptions) (service.ListResult, error) {
			require.Equal(t, 2, opts.Page)
			require.Equal(t, 10, opts.PerPage)

			tasks := make([]service.Task, 5)
			for i := range tasks {
				tasks[i] = service.Task{ID: uuid.New(), Title: fmt.Sprintf("task %d", i)}
			}
			return service.ListResult{Tasks: tasks, Page: 2, PerPage: 10, Total: 15}, nil
		},
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tasks?page=2&per_page=10", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool              `json:"success"`
		Data    []json.RawMessage `json:"data"`
		Meta    *struct {
			Page       int `json:"page"`
			PerPage    int `json:"per_page"`
			Total      int `json:"total"`
			TotalPages int `json:"total_pages"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.Len(t, resp.Data, 5)
	require.NotNil(t, resp.Meta)
	require.Equal(t, 2, resp.Meta.Page)
	require.Equal(t, 10, resp.Meta.PerPage)
	require.Equal(t, 15, resp.Meta.Total)
	require.Equal(t, 2, resp.Meta.TotalPages)
}

func TestGetMalformedIDLooksAbsent(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&mockService{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tasks/not-a-uuid", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "NOT_FOUND")
}

func TestCreateValidationDetailsInEnvelope(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&mockService{
		createFn: func(ctx context.Context, input service.CreateInput) (service.Task, error) {
			return service.Task{}, validation.NewError(map[string]string{"title": "title is required"})
		},
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/tasks", strings.NewReader(`{"title":"  "}`)))

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Success bool `json:"success"`
		Error   *struct {
			Code    string              `json:"code"`
			Details map[string][]string `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.False(t, resp.Success)
	require.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	require.Contains(t, resp.Error.Details, "title")
}

func TestUpdateDistinguishesNullFromAbsent(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&mockService{
		updateFn: func(ctx context.Context, id uuid.UUID, input service.UpdateInput) (service.Task, error) {
			require.True(t, input.ClearDueDate)
			require.False(t, input.ClearAssignee)
			require.Nil(t, input.AssigneeID)
			return service.Task{ID: id, Title: "kept"}, nil
		},
	})

	target := "/tasks/" + uuid.NewString()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, target, strings.NewReader(`{"due_date":null}`)))

	require.Equal(t, http.StatusOK, rec.Code)
}
