package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/spice-ledger/internal/model"
)

// SeedDefaultCategories inserts the default categories, silently skipping
// any name that already exists.
func (s *SQLiteStorage) SeedDefaultCategories(ctx context.Context) error {
	if err := s.ready(ctx); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO categories (name, type)
		VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	inserted := int64(0)
	for _, cat := range model.DefaultCategories {
		result, execErr := stmt.ExecContext(ctx, cat.Name, string(cat.Type))
		if execErr != nil {
			return fmt.Errorf("failed to seed category %s: %w", cat.Name, execErr)
		}
		if n, rowsErr := result.RowsAffected(); rowsErr == nil {
			inserted += n
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit default categories: %w", err)
	}

	slog.Debug("seeded default categories", "inserted", inserted, "total", len(model.DefaultCategories))
	return nil
}

// AddCategory registers a new category. A name that already exists fails
// with ErrConstraintViolation.
func (s *SQLiteStorage) AddCategory(ctx context.Context, name string, categoryType model.CategoryType) (*model.Category, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	if err := validateCategory(name, categoryType, s.strict); err != nil {
		return nil, err
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (name, type)
		VALUES (?, ?)`, name, string(categoryType))
	if err != nil {
		if isConstraintViolation(err) {
			return nil, fmt.Errorf("%w: category %q already exists: %w", ErrConstraintViolation, name, err)
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get category ID: %w", err)
	}

	slog.Info("created new category", "name", name, "type", categoryType, "id", id)
	return &model.Category{
		ID:   id,
		Name: name,
		Type: categoryType,
	}, nil
}

// GetCategories returns every category ordered by name.
func (s *SQLiteStorage) GetCategories(ctx context.Context) ([]model.Category, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, type
		FROM categories
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []model.Category
	for rows.Next() {
		var cat model.Category
		var categoryType string
		if err := rows.Scan(&cat.ID, &cat.Name, &categoryType); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		cat.Type = model.CategoryType(categoryType)
		categories = append(categories, cat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	slog.Debug("retrieved categories", "count", len(categories))
	return categories, nil
}

// GetCategoryByName returns a category by its name, or nil if it does not exist.
func (s *SQLiteStorage) GetCategoryByName(ctx context.Context, name string) (*model.Category, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	var cat model.Category
	var categoryType string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, type
		FROM categories
		WHERE name = ?`, name).Scan(&cat.ID, &cat.Name, &categoryType)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}

	cat.Type = model.CategoryType(categoryType)
	return &cat, nil
}
