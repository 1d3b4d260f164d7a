package contact

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"portfolio-api/internal/database"
)

var ErrNotFound = errors.New("contact not found")

// Repository handles contact persistence
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new contact submission.
func (r *Repository) Create(ctx context.Context, c *Contact) (*Contact, error) {
	dbContact := &database.Contact{
		Name:           c.Name,
		Email:          c.Email,
		Message:        c.Message,
		OwnerUserID:    c.OwnerUserID,
		OwnerSessionID: c.OwnerSessionID,
	}

	_, err := r.db.NewInsert().
		Model(dbContact).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}

	return mapDBContactToModel(dbContact), nil
}

// GetByID retrieves a contact by ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Contact, error) {
	dbContact := new(database.Contact)
	err := r.db.NewSelect().
		Model(dbContact).
		Where("id = ?", id).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}

	return mapDBContactToModel(dbContact), nil
}

// List returns all submissions, newest first. Admin surface only.
func (r *Repository) List(ctx context.Context, unreadOnly bool) ([]*Contact, error) {
	var dbContacts []*database.Contact

	q := r.db.NewSelect().
		Model(&dbContacts).
		Order("created_at DESC")

	if unreadOnly {
		q = q.Where("read = ?", false)
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}

	contacts := make([]*Contact, 0, len(dbContacts))
	for _, dbc := range dbContacts {
		contacts = append(contacts, mapDBContactToModel(dbc))
	}

	return contacts, nil
}

// MarkRead flags a submission as read.
func (r *Repository) MarkRead(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.NewUpdate().
		Model((*database.Contact)(nil)).
		Set("read = ?", true).
		Where("id = ?", id).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to mark contact read: %w", err)
	}

	return checkAffected(result)
}

// Delete removes a submission.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.NewDelete().
		Model((*database.Contact)(nil)).
		Where("id = ?", id).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
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

func mapDBContactToModel(dbc *database.Contact) *Contact {
	return &Contact{
		ID:             dbc.ID,
		Name:           dbc.Name,
		Email:          dbc.Email,
		Message:        dbc.Message,
		Read:           dbc.Read,
		OwnerUserID:    dbc.OwnerUserID,
		OwnerSessionID: dbc.OwnerSessionID,
		CreatedAt:      dbc.CreatedAt,
	}
}
