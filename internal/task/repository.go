package task

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"portfolio-api/internal/database"
	"portfolio-api/internal/ownership"
)

var ErrNotFound = errors.New("task not found")

// Repository handles task persistence
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new task.
func (r *Repository) Create(ctx context.Context, t *Task) (*Task, error) {
	dbTask := &database.Task{
		Title:          t.Title,
		Description:    t.Description,
		OwnerUserID:    t.OwnerUserID,
		OwnerSessionID: t.OwnerSessionID,
	}

	_, err := r.db.NewInsert().
		Model(dbTask).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return mapDBTaskToModel(dbTask), nil
}

// GetByID retrieves a task by ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Task, error) {
	dbTask := new(database.Task)
	err := r.db.NewSelect().
		Model(dbTask).
		Where("id = ?", id).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	return mapDBTaskToModel(dbTask), nil
}

// ListForPrincipal returns the tasks visible to the caller: everything
// for admins, otherwise the caller's own tasks by identity or session.
func (r *Repository) ListForPrincipal(ctx context.Context, p ownership.Principal) ([]*Task, error) {
	var dbTasks []*database.Task

	q := r.db.NewSelect().
		Model(&dbTasks).
		Order("created_at DESC")

	switch {
	case p.IsAdmin():
		// No filter; admins see all tasks.
	case p.User != nil:
		q = q.Where("owner_user_id = ?", p.User.ID)
	case p.SessionID != "":
		q = q.Where("owner_session_id = ?", p.SessionID)
	default:
		return []*Task{}, nil
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	tasks := make([]*Task, 0, len(dbTasks))
	for _, dbt := range dbTasks {
		tasks = append(tasks, mapDBTaskToModel(dbt))
	}

	return tasks, nil
}

// Update persists title, description and completion state.
func (r *Repository) Update(ctx context.Context, t *Task) error {
	result, err := r.db.NewUpdate().
		Model((*database.Task)(nil)).
		Set("title = ?", t.Title).
		Set("description = ?", t.Description).
		Set("completed = ?", t.Completed).
		Set("updated_at = NOW()").
		Where("id = ?", t.ID).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	return checkAffected(result)
}

// Delete removes a task.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.NewDelete().
		Model((*database.Task)(nil)).
		Where("id = ?", id).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return checkAffected(result)
}

func checkAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func mapDBTaskToModel(dbt *database.Task) *Task {
	return &Task{
		ID:             dbt.ID,
		Title:          dbt.Title,
		Description:    dbt.Description,
		Completed:      dbt.Completed,
		OwnerUserID:    dbt.OwnerUserID,
		OwnerSessionID: dbt.OwnerSessionID,
		CreatedAt:      dbt.CreatedAt,
		UpdatedAt:      dbt.UpdatedAt,
	}
}
