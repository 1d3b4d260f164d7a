package project

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"portfolio-api/internal/database"
)

var (
	ErrNotFound      = errors.New("project not found")
	ErrDuplicateSlug = errors.New("project slug already exists")
)

// ListFilter narrows the public project listing.
type ListFilter struct {
	Featured *bool
	Tag      string
}

// Repository handles project persistence
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new project.
func (r *Repository) Create(ctx context.Context, p *Project) (*Project, error) {
	dbProject := &database.Project{
		Title:          p.Title,
		Slug:           p.Slug,
		Description:    p.Description,
		Tags:           p.Tags,
		RepoURL:        p.RepoURL,
		LiveURL:        p.LiveURL,
		Featured:       p.Featured,
		OwnerUserID:    p.OwnerUserID,
		OwnerSessionID: p.OwnerSessionID,
	}

	_, err := r.db.NewInsert().
		Model(dbProject).
		Returning("*").
		Exec(ctx)
	if err != nil {
		if strings.Contains(err.Error(), "unique constraint") || strings.Contains(err.Error(), "duplicate key") {
			return nil, ErrDuplicateSlug
		}
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return mapDBProjectToModel(dbProject), nil
}

// GetByID retrieves a project by ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Project, error) {
	dbProject := new(database.Project)
	err := r.db.NewSelect().
		Model(dbProject).
		Where("id = ?", id).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return mapDBProjectToModel(dbProject), nil
}

// GetBySlug retrieves a project by its URL slug.
func (r *Repository) GetBySlug(ctx context.Context, slug string) (*Project, error) {
	dbProject := new(database.Project)
	err := r.db.NewSelect().
		Model(dbProject).
		Where("slug = ?", slug).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return mapDBProjectToModel(dbProject), nil
}

// List returns projects matching the filter, featured first.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]*Project, error) {
	var dbProjects []*database.Project

	q := r.db.NewSelect().
		Model(&dbProjects).
		Order("featured DESC").
		Order("created_at DESC")

	if filter.Featured != nil {
		q = q.Where("featured = ?", *filter.Featured)
	}
	if filter.Tag != "" {
		q = q.Where("? = ANY(tags)", filter.Tag)
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	projects := make([]*Project, 0, len(dbProjects))
	for _, dbp := range dbProjects {
		projects = append(projects, mapDBProjectToModel(dbp))
	}

	return projects, nil
}

// Update persists the editable project fields.
func (r *Repository) Update(ctx context.Context, p *Project) error {
	result, err := r.db.NewUpdate().
		Model((*database.Project)(nil)).
		Set("title = ?", p.Title).
		Set("slug = ?", p.Slug).
		Set("description = ?", p.Description).
		Set("tags = ?", p.Tags).
		Set("repo_url = ?", p.RepoURL).
		Set("live_url = ?", p.LiveURL).
		Set("featured = ?", p.Featured).
		Set("updated_at = NOW()").
		Where("id = ?", p.ID).
		Exec(ctx)

	if err != nil {
		if strings.Contains(err.Error(), "unique constraint") || strings.Contains(err.Error(), "duplicate key") {
			return ErrDuplicateSlug
		}
		return fmt.Errorf("failed to update project: %w", err)
	}

	return checkAffected(result)
}

// Delete removes a project.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.NewDelete().
		Model((*database.Project)(nil)).
		Where("id = ?", id).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
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

func mapDBProjectToModel(dbp *database.Project) *Project {
	tags := dbp.Tags
	if tags == nil {
		tags = []string{}
	}

	return &Project{
		ID:             dbp.ID,
		Title:          dbp.Title,
		Slug:           dbp.Slug,
		Description:    dbp.Description,
		Tags:           tags,
		RepoURL:        dbp.RepoURL,
		LiveURL:        dbp.LiveURL,
		Featured:       dbp.Featured,
		OwnerUserID:    dbp.OwnerUserID,
		OwnerSessionID: dbp.OwnerSessionID,
		CreatedAt:      dbp.CreatedAt,
		UpdatedAt:      dbp.UpdatedAt,
	}
}
