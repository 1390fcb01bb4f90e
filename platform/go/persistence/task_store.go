package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const TasksTable = "tasks"

// Task represents a row in the tasks table.
type Task struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	TenantID   uuid.UUID  `db:"tenant_id" json:"tenant_id"`
	Title      string     `db:"title" json:"title"`
	Notes      string     `db:"notes" json:"notes"`
	Status     string     `db:"status" json:"status"`
	Priority   string     `db:"priority" json:"priority"`
	AssigneeID *uuid.UUID `db:"assignee_id" json:"assignee_id,omitempty"`
	DueDate    *time.Time `db:"due_date" json:"due_date,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}

// ErrTaskNotFound indicates a missing task in the caller's tenant.
var ErrTaskNotFound = errors.New("task not found")

var taskSortColumns = map[string]string{
	"created_at": "created_at",
	"due_date":   "due_date",
	"priority":   "priority",
	"status":     "status",
	"title":      "title",
}

// TaskStore exposes persistence helpers for the tasks table.
type TaskStore struct {
	db *TenantDB
}

// NewTaskStore returns a store instance bound to the shared TenantDB.
func NewTaskStore(db *TenantDB) *TaskStore {
	if db == nil {
		panic("task store requires tenant db")
	}
	return &TaskStore{db: db}
}

// ListTasks returns one page of the tenant's tasks plus the total row count.
func (s *TaskStore) ListTasks(ctx context.Context, tenantID uuid.UUID, params ListParams) ([]Task, int, error) {
	params = params.normalize()

	order, err := orderClause(taskSortColumns, params, "ORDER BY created_at DESC")
	if err != nil {
		return nil, 0, err
	}

	where := "tenant_id = $1"
	args := []any{tenantID}
	if term := params.searchTerm(); term != "" {
		args = append(args, "%"+term+"%")
		where += fmt.Sprintf(" AND (title ILIKE $%d OR notes ILIKE $%d)", len(args), len(args))
	}

	var tasks []Task
	var total int

	err = s.db.WithTenant(ctx, tenantID, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, fmt.Sprintf(
			"SELECT COUNT(*) FROM %s WHERE %s", TasksTable, where,
		), args...).Scan(&total); err != nil {
			return fmt.Errorf("count tasks: %w", err)
		}

		limit, offset := params.limitOffset()
		rows, err := tx.Query(ctx, fmt.Sprintf(`
            SELECT id, tenant_id, title, notes, status, priority, assignee_id, due_date, created_at, updated_at
            FROM %s WHERE %s %s LIMIT %d OFFSET %d
        `, TasksTable, where, order, limit, offset), args...)
		if err != nil {
			return fmt.Errorf("list tasks: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			task, err := scanTask(rows)
			if err != nil {
				return err
			}
			tasks = append(tasks, task)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// GetTask returns a single task scoped to the caller's tenant.
func (s *TaskStore) GetTask(ctx context.Context, tenantID, taskID uuid.UUID) (Task, error) {
	var task Task

	err := s.db.WithTenant(ctx, tenantID, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, fmt.Sprintf(`
            SELECT id, tenant_id, title, notes, status, priority, assignee_id, due_date, created_at, updated_at
            FROM %s WHERE tenant_id = $1 AND id = $2
        `, TasksTable), tenantID, taskID)

		var scanErr error
		task, scanErr = scanTask(row)
		return scanErr
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Task{}, ErrTaskNotFound
		}
		return Task{}, err
	}

	return task, nil
}

// CreateTaskParams captures the fields required to insert a task.
type CreateTaskParams struct {
	Title      string
	Notes      string
	Status     string
	Priority   string
	AssigneeID *uuid.UUID
	DueDate    *time.Time
}

// CreateTask inserts a task scoped to the caller's tenant.
func (s *TaskStore) CreateTask(ctx context.Context, tenantID uuid.UUID, params CreateTaskParams) (Task, error) {
	var task Task

	err := s.db.WithTenant(ctx, tenantID, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, fmt.Sprintf(`
            INSERT INTO %s (id, tenant_id, title, notes, status, priority, assignee_id, due_date)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
            RETURNING id, tenant_id, title, notes, status, priority, assignee_id, due_date, created_at, updated_at
        `, TasksTable), uuid.New(), tenantID, params.Title, params.Notes, params.Status, params.Priority, params.AssigneeID, params.DueDate)

		var scanErr error
		task, scanErr = scanTask(row)
		return scanErr
	})
	if err != nil {
		return Task{}, err
	}

	return task, nil
}

// UpdateTaskParams represents the patchable task fields. Nil means unchanged.
type UpdateTaskParams struct {
	Title      *string
	Notes      *string
	Status     *string
	Priority   *string
	AssigneeID *uuid.UUID
	DueDate    *time.Time
	// ClearAssignee / ClearDueDate explicitly null the column; a nil pointer
	// alone is indistinguishable from "leave as is" on a PATCH.
	ClearAssignee bool
	ClearDueDate  bool
}

// UpdateTask applies the provided fields and returns the updated record.
func (s *TaskStore) UpdateTask(ctx context.Context, tenantID, taskID uuid.UUID, params UpdateTaskParams) (Task, error) {
	setParts := []string{}
	var args []any

	addSet := func(column string, value any) {
		args = append(args, value)
		setParts = append(setParts, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if params.Title != nil {
		addSet("title", strings.TrimSpace(*params.Title))
	}
	if params.Notes != nil {
		addSet("notes", *params.Notes)
	}
	if params.Status != nil {
		addSet("status", *params.Status)
	}
	if params.Priority != nil {
		addSet("priority", *params.Priority)
	}
	if params.ClearAssignee {
		setParts = append(setParts, "assignee_id = NULL")
	} else if params.AssigneeID != nil {
		addSet("assignee_id", *params.AssigneeID)
	}
	if params.ClearDueDate {
		setParts = append(setParts, "due_date = NULL")
	} else if params.DueDate != nil {
		addSet("due_date", *params.DueDate)
	}

	if len(setParts) == 0 {
		return Task{}, errors.New("no fields to update")
	}

	args = append(args, tenantID, taskID)
	query := fmt.Sprintf(`
        UPDATE %s
        SET %s, updated_at = NOW()
        WHERE tenant_id = $%d AND id = $%d
        RETURNING id, tenant_id, title, notes, status, priority, assignee_id, due_date, created_at, updated_at
    `, TasksTable, strings.Join(setParts, ", "), len(args)-1, len(args))

	var task Task
	err := s.db.WithTenant(ctx, tenantID, func(tx pgx.Tx) error {
		var scanErr error
		task, scanErr = scanTask(tx.QueryRow(ctx, query, args...))
		return scanErr
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Task{}, ErrTaskNotFound
		}
		return Task{}, err
	}

	return task, nil
}

// DeleteTask removes a task scoped to the caller's tenant.
func (s *TaskStore) DeleteTask(ctx context.Context, tenantID, taskID uuid.UUID) error {
	return s.db.WithTenant(ctx, tenantID, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, fmt.Sprintf(
			"DELETE FROM %s WHERE tenant_id = $1 AND id = $2", TasksTable,
		), tenantID, taskID)
		if err != nil {
			return fmt.Errorf("delete task: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrTaskNotFound
		}
		return nil
	})
}

func scanTask(row pgx.Row) (Task, error) {
	var task Task
	if err := row.Scan(
		&task.ID,
		&task.TenantID,
		&task.Title,
		&task.Notes,
		&task.Status,
		&task.Priority,
		&task.AssigneeID,
		&task.DueDate,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		return Task{}, err
	}
	return task, nil
}
