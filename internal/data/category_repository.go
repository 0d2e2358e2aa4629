package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// CategoryRepository handles database operations for categories.
type CategoryRepository struct {
	db sqlx.ExtContext
}

// NewCategoryRepository creates a new CategoryRepository.
func NewCategoryRepository(db sqlx.ExtContext) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// FindByTag finds a category by its unique tag.
func (r *CategoryRepository) FindByTag(ctx context.Context, tag string) (*Category, error) {
	var category Category
	err := sqlx.GetContext(ctx, r.db, &category, "SELECT id, tag, post_count FROM categories WHERE tag = ?", tag)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found is not an error
		}
		return nil, classify(err)
	}
	return &category, nil
}

// GetAll retrieves all categories from the database.
func (r *CategoryRepository) GetAll(ctx context.Context) ([]*Category, error) {
	var categories []*Category
	err := sqlx.SelectContext(ctx, r.db, &categories, "SELECT id, tag, post_count FROM categories ORDER BY id")
	if err != nil {
		return nil, classify(err)
	}
	return categories, nil
}

// Save creates a new category with a zero count and returns its ID.
func (r *CategoryRepository) Save(ctx context.Context, category *Category) (int64, error) {
	res, err := sqlx.NamedExecContext(ctx, r.db, "INSERT INTO categories (tag, post_count) VALUES (:tag, 0)", category)
	if err != nil {
		return 0, classify(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	category.ID = id
	category.Count = 0
	return id, nil
}

// GetByID finds a category by its ID.
func (r *CategoryRepository) GetByID(ctx context.Context, id int64) (*Category, error) {
	var category Category
	err := sqlx.GetContext(ctx, r.db, &category, "SELECT id, tag, post_count FROM categories WHERE id = ?", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("category with id %d: %w", id, ErrNotFound)
		}
		return nil, classify(err)
	}
	return &category, nil
}

// AdjustCount adds delta to the category's post count.
func (r *CategoryRepository) AdjustCount(ctx context.Context, id int64, delta int) error {
	return adjustCounter(ctx, r.db, "categories", "post_count", id, delta)
}
