package persistence

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestTaskStoreTenantIsolation(t *testing.T) {
	t.Parallel()

	ctx, db, tenants := setupTestDB(t)
	store := NewTaskStore(db)

	tenantA := createTestTenant(t, ctx, tenants, "Acme Co", "acme-co")
	tenantB := createTestTenant(t, ctx, tenants, "Beta Inc", "beta-inc")

	taskA, err := store.CreateTask(ctx, tenantA.ID, CreateTaskParams{
		Title:    "Prepare launch checklist",
		Status:   "todo",
		Priority: "high",
	})
	require.NoError(t, err)
	require.Equal(t, tenantA.ID, taskA.TenantID)

	taskB, err := store.CreateTask(ctx, tenantB.ID, CreateTaskParams{
		Title:    "Renew contract",
		Status:   "todo",
		Priority: "medium",
	})
	require.NoError(t, err)

	// Reads from the other tenant look exactly like absence.
	_, err = store.GetTask(ctx, tenantA.ID, taskB.ID)
	require.ErrorIs(t, err, ErrTaskNotFound)
	_, err = store.GetTask(ctx, tenantB.ID, taskA.ID)
	require.ErrorIs(t, err, ErrTaskNotFound)

	// So do writes.
	_, err = store.UpdateTask(ctx, tenantA.ID, taskB.ID, UpdateTaskParams{Status: ptr("done")})
	require.ErrorIs(t, err, ErrTaskNotFound)
	require.ErrorIs(t, store.DeleteTask(ctx, tenantA.ID, taskB.ID), ErrTaskNotFound)

	// Each tenant lists only its own rows.
	tasksA, totalA, err := store.ListTasks(ctx, tenantA.ID, ListParams{})
	require.NoError(t, err)
	require.Equal(t, 1, totalA)
	require.Len(t, tasksA, 1)
	require.Equal(t, taskA.ID, tasksA[0].ID)

	// The victim's row is untouched.
	got, err := store.GetTask(ctx, tenantB.ID, taskB.ID)
	require.NoError(t, err)
	require.Equal(t, "todo", got.Status)
}

func TestTaskStoreListPagination(t *testing.T) {
	t.Parallel()

	ctx, db, tenants := setupTestDB(t)
	store := NewTaskStore(db)

	tenant := createTestTenant(t, ctx, tenants, "Acme Co", "acme-co")

	for i := 0; i < 15; i++ {
		_, err := store.CreateTask(ctx, tenant.ID, CreateTaskParams{
			Title:    fmt.Sprintf("task %02d", i),
			Status:   "todo",
			Priority: "low",
		})
		require.NoError(t, err)
	}

	page2, total, err := store.ListTasks(ctx, tenant.ID, ListParams{
		Page:    2,
		PerPage: 10,
		SortBy:  ptr("title"),
	})
	require.NoError(t, err)
	require.Equal(t, 15, total)
	require.Len(t, page2, 5)
	require.Equal(t, "task 10", page2[0].Title)
}

func TestTaskStoreListRejectsUnknownSort(t *testing.T) {
	t.Parallel()

	ctx, db, tenants := setupTestDB(t)
	store := NewTaskStore(db)

	tenant := createTestTenant(t, ctx, tenants, "Acme Co", "acme-co")

	_, _, err := store.ListTasks(ctx, tenant.ID, ListParams{SortBy: ptr("secret_column")})
	require.ErrorIs(t, err, ErrUnsupportedSort)
}

func TestTaskStoreUpdateClearsNullableFields(t *testing.T) {
	t.Parallel()

	ctx, db, tenants := setupTestDB(t)
	store := NewTaskStore(db)

	tenant := createTestTenant(t, ctx, tenants, "Acme Co", "acme-co")
	assignee := uuid.New()

	task, err := store.CreateTask(ctx, tenant.ID, CreateTaskParams{
		Title:      "Follow up",
		Status:     "todo",
		Priority:   "medium",
		AssigneeID: &assignee,
	})
	require.NoError(t, err)
	require.NotNil(t, task.AssigneeID)

	updated, err := store.UpdateTask(ctx, tenant.ID, task.ID, UpdateTaskParams{ClearAssignee: true})
	require.NoError(t, err)
	require.Nil(t, updated.AssigneeID)
}

func ptr[T any](v T) *T { return &v }
