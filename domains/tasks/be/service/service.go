package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Crane-Ceeshar/CCD-Suite-sub007/domains/tasks/be/repo"
	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/persistence"
	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/validation"
)

// Domain sentinel errors.
var ErrNotFound = errors.New("task not found")

var (
	validStatuses   = map[string]struct{}{"todo": {}, "in_progress": {}, "done": {}, "archived": {}}
	validPriorities = map[string]struct{}{"low": {}, "medium": {}, "high": {}, "urgent": {}}
)

// Task represents the domain view of a task record.
type Task struct {
	ID         uuid.UUID
	Title      string
	Notes      string
	Status     string
	Priority   string
	AssigneeID *uuid.UUID
	DueDate    *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ListOptions controls filtering and pagination.
type ListOptions struct {
	Page      int
	PerPage   int
	Search    *string
	SortBy    *string
	SortOrder *string
}

// ListResult wraps a page of tasks with pagination state.
type ListResult struct {
	Tasks   []Task
	Page    int
	PerPage int
	Total   int
}

// CreateInput represents the payload required to create a task.
type CreateInput struct {
	Title      string
	Notes      string
	Status     *string
	Priority   *string
	AssigneeID *uuid.UUID
	DueDate    *time.Time
}

// UpdateInput encapsulates patchable task fields.
type UpdateInput struct {
	Title      *string
	Notes      *string
	Status     *string
	Priority   *string
	AssigneeID *uuid.UUID
	DueDate    *time.Time
	// Explicit nulls on PATCH.
	ClearAssignee bool
	ClearDueDate  bool
}

// Service defines the business operations for the tasks domain.
type Service interface {
	List(ctx context.Context, opts ListOptions) (ListResult, error)
	Get(ctx context.Context, id uuid.UUID) (Task, error)
	Create(ctx context.Context, input CreateInput) (Task, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (Task, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo repo.Repository
}

// New constructs a tasks Service instance backed by the provided repository.
func New(r repo.Repository) Service {
	if r == nil {
		panic("tasks repository is required")
	}
	return &service{repo: r}
}

func (s *service) List(ctx context.Context, opts ListOptions) (ListResult, error) {
	page := opts.Page
	if page < 1 {
		page = 1
	}
	perPage := opts.PerPage
	if perPage <= 0 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}

	records, total, err := s.repo.List(ctx, persistence.ListParams{
		Page:      page,
		PerPage:   perPage,
		Search:    opts.Search,
		SortBy:    opts.SortBy,
		SortOrder: opts.SortOrder,
	})
	if err != nil {
		if errors.Is(err, persistence.ErrUnsupportedSort) {
			return ListResult{}, validation.NewError(map[string]string{"sort_by": err.Error()})
		}
		return ListResult{}, err
	}

	tasks := make([]Task, 0, len(records))
	for _, record := range records {
		tasks = append(tasks, mapTask(record))
	}

	return ListResult{Tasks: tasks, Page: page, PerPage: perPage, Total: total}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (Task, error) {
	if id == uuid.Nil {
		return Task{}, ErrNotFound
	}

	record, err := s.repo.Get(ctx, id)
	if err != nil {
		return Task{}, mapPersistenceError(err)
	}
	return mapTask(record), nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (Task, error) {
	fieldErrors := validation.FieldErrors{}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		fieldErrors.Add("title", "title is required")
	}

	status := "todo"
	if input.Status != nil {
		status = *input.Status
		if _, ok := validStatuses[status]; !ok {
			fieldErrors.Add("status", "unsupported status")
		}
	}

	priority := "medium"
	if input.Priority != nil {
		priority = *input.Priority
		if _, ok := validPriorities[priority]; !ok {
			fieldErrors.Add("priority", "unsupported priority")
		}
	}

	if len(fieldErrors) > 0 {
		return Task{}, &validation.Error{Fields: fieldErrors}
	}

	record, err := s.repo.Create(ctx, persistence.CreateTaskParams{
		Title:      title,
		Notes:      strings.TrimSpace(input.Notes),
		Status:     status,
		Priority:   priority,
		AssigneeID: input.AssigneeID,
		DueDate:    input.DueDate,
	})
	if err != nil {
		return Task{}, mapPersistenceError(err)
	}

	return mapTask(record), nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (Task, error) {
	if id == uuid.Nil {
		return Task{}, ErrNotFound
	}

	fieldErrors := validation.FieldErrors{}
	params := persistence.UpdateTaskParams{
		Notes:         input.Notes,
		AssigneeID:    input.AssigneeID,
		DueDate:       input.DueDate,
		ClearAssignee: input.ClearAssignee,
		ClearDueDate:  input.ClearDueDate,
	}
	fieldsSet := input.Notes != nil || input.AssigneeID != nil || input.DueDate != nil ||
		input.ClearAssignee || input.ClearDueDate

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			fieldErrors.Add("title", "title cannot be empty")
		} else {
			params.Title = &title
			fieldsSet = true
		}
	}
	if input.Status != nil {
		if _, ok := validStatuses[*input.Status]; !ok {
			fieldErrors.Add("status", "unsupported status")
		} else {
			params.Status = input.Status
			fieldsSet = true
		}
	}
	if input.Priority != nil {
		if _, ok := validPriorities[*input.Priority]; !ok {
			fieldErrors.Add("priority", "unsupported priority")
		} else {
			params.Priority = input.Priority
			fieldsSet = true
		}
	}

	if !fieldsSet && len(fieldErrors) == 0 {
		fieldErrors.Add("payload", "at least one field must be provided")
	}
	if len(fieldErrors) > 0 {
		return Task{}, &validation.Error{Fields: fieldErrors}
	}

	record, err := s.repo.Update(ctx, id, params)
	if err != nil {
		return Task{}, mapPersistenceError(err)
	}

	return mapTask(record), nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return ErrNotFound
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return mapPersistenceError(err)
	}
	return nil
}

func mapTask(record persistence.Task) Task {
	return Task{
		ID:         record.ID,
		Title:      record.Title,
		Notes:      record.Notes,
		Status:     record.Status,
		Priority:   record.Priority,
		AssigneeID: record.AssigneeID,
		DueDate:    record.DueDate,
		CreatedAt:  record.CreatedAt,
		UpdatedAt:  record.UpdatedAt,
	}
}

func mapPersistenceError(err error) error {
	if errors.Is(err, persistence.ErrTaskNotFound) {
		return ErrNotFound
	}
	return err
}
