package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"portfolio-api/internal/database"
)

// settingsRowID pins the single settings row.
const settingsRowID = 1

// Settings is the site-wide configuration exposed to clients.
type Settings struct {
	SiteTitle    string    `json:"site_title"`
	Tagline      string    `json:"tagline,omitempty"`
	FooterText   string    `json:"footer_text,omitempty"`
	GithubURL    string    `json:"github_url,omitempty"`
	LinkedinURL  string    `json:"linkedin_url,omitempty"`
	ContactEmail string    `json:"contact_email,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Service reads and writes the single settings row. The row is created
// lazily on first read, so a fresh database never 404s.
type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db: db}
}

// Get returns the settings row, creating the default row if none
// exists yet. Safe under concurrent first reads.
func (s *Service) Get(ctx context.Context) (*Settings, error) {
	row, err := s.fetch(ctx)
	if err == nil {
		return mapDBSettingsToModel(row), nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	defaultRow := &database.SiteSettings{
		ID:        settingsRowID,
		SiteTitle: "My Portfolio",
	}
	_, err = s.db.NewInsert().
		Model(defaultRow).
		On("CONFLICT (id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create default settings: %w", err)
	}

	// Re-select so a concurrent creator's row wins over our default.
	row, err = s.fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	return mapDBSettingsToModel(row), nil
}

// Update replaces the editable settings fields, creating the row first
// if it does not exist.
func (s *Service) Update(ctx context.Context, updated *Settings) (*Settings, error) {
	if _, err := s.Get(ctx); err != nil {
		return nil, err
	}

	row := new(database.SiteSettings)
	_, err := s.db.NewUpdate().
		Model(row).
		Set("site_title = ?", updated.SiteTitle).
		Set("tagline = ?", updated.Tagline).
		Set("footer_text = ?", updated.FooterText).
		Set("github_url = ?", updated.GithubURL).
		Set("linkedin_url = ?", updated.LinkedinURL).
		Set("contact_email = ?", updated.ContactEmail).
		Set("updated_at = NOW()").
		Where("id = ?", settingsRowID).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to update settings: %w", err)
	}

	return mapDBSettingsToModel(row), nil
}

// ContactEmail resolves the notification address for contact
// submissions.
func (s *Service) ContactEmail(ctx context.Context) (string, error) {
	settings, err := s.Get(ctx)
	if err != nil {
		return "", err
	}
	return settings.ContactEmail, nil
}

func (s *Service) fetch(ctx context.Context) (*database.SiteSettings, error) {
	row := new(database.SiteSettings)
	err := s.db.NewSelect().
		Model(row).
		Where("id = ?", settingsRowID).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return row, nil
}

func mapDBSettingsToModel(row *database.SiteSettings) *Settings {
	return &Settings{
		SiteTitle:    row.SiteTitle,
		Tagline:      row.Tagline,
		FooterText:   row.FooterText,
		GithubURL:    row.GithubURL,
		LinkedinURL:  row.LinkedinURL,
		ContactEmail: row.ContactEmail,
		UpdatedAt:    row.UpdatedAt,
	}
}
