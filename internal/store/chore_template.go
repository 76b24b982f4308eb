package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/chorestore/internal/model"
)

type TemplateStore struct {
	db *sql.DB
}

func NewTemplateStore(db *sql.DB) *TemplateStore {
	return &TemplateStore{db: db}
}

func scanTemplate(s scanner) (*model.ChoreTemplate, error) {
	var t model.ChoreTemplate
	var desc sql.NullString
	var active int
	err := s.Scan(&t.ID, &t.HouseholdID, &t.Title, &desc, &t.Points, &t.Recurrence, &active, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	t.Description = stringPtr(desc)
	t.IsActive = active != 0
	return &t, nil
}

const templateCols = `id, household_id, title, description, points, recurrence, is_active, created_at`

func (s *TemplateStore) Create(ctx context.Context, householdID, title string, description *string, points int, recurrence model.Recurrence) (*model.ChoreTemplate, error) {
	id := newID()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chore_templates (id, household_id, title, description, points, recurrence) VALUES (?, ?, ?, ?, ?, ?)`,
		id, householdID, title, nullString(description), points, string(recurrence),
	)
	if err != nil {
		return nil, fmt.Errorf("insert template: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *TemplateStore) GetByID(ctx context.Context, id string) (*model.ChoreTemplate, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+templateCols+` FROM chore_templates WHERE id = ?`, id)
	t, err := scanTemplate(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}
	return t, nil
}

// GetInHousehold returns the template only if it belongs to householdID.
// Inactive templates are included.
func (s *TemplateStore) GetInHousehold(ctx context.Context, id, householdID string) (*model.ChoreTemplate, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+templateCols+` FROM chore_templates WHERE id = ? AND household_id = ?`, id, householdID)
	t, err := scanTemplate(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}
	return t, nil
}

// ListActive returns the household's active templates, newest first.
func (s *TemplateStore) ListActive(ctx context.Context, householdID string) ([]model.ChoreTemplate, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+templateCols+` FROM chore_templates
		 WHERE household_id = ? AND is_active = 1
		 ORDER BY created_at DESC, rowid DESC`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	templates := []model.ChoreTemplate{}
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, *t)
	}
	return templates, rows.Err()
}

func (s *TemplateStore) Update(ctx context.Context, t *model.ChoreTemplate) (*model.ChoreTemplate, error) {
	_, err := s.db.ExecContext(ctx,
		`UPDATE chore_templates SET title = ?, description = ?, points = ?, recurrence = ?, is_active = ? WHERE id = ?`,
		t.Title, nullString(t.Description), t.Points, string(t.Recurrence), boolInt(t.IsActive), t.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update template: %w", err)
	}
	return s.GetByID(ctx, t.ID)
}

// Deactivate soft-deletes a template. Existing instances are untouched.
func (s *TemplateStore) Deactivate(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE chore_templates SET is_active = 0 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deactivate template: %w", err)
	}
	return nil
}
