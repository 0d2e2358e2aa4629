package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// LabelRepository handles database operations for labels.
type LabelRepository struct {
	db sqlx.ExtContext
}

// NewLabelRepository creates a new LabelRepository.
func NewLabelRepository(db sqlx.ExtContext) *LabelRepository {
	return &LabelRepository{db: db}
}

// FindByName finds a label by its unique name. It returns nil, nil when absent.
func (r *LabelRepository) FindByName(ctx context.Context, name string) (*Label, error) {
	var label Label
	err := sqlx.GetContext(ctx, r.db, &label, "SELECT id, name, post_count FROM labels WHERE name = ?", name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, classify(err)
	}
	return &label, nil
}

// GetByID finds a label by its ID.
func (r *LabelRepository) GetByID(ctx context.Context, id int64) (*Label, error) {
	var label Label
	err := sqlx.GetContext(ctx, r.db, &label, "SELECT id, name, post_count FROM labels WHERE id = ?", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("label with id %d: %w", id, ErrNotFound)
		}
		return nil, classify(err)
	}
	return &label, nil
}

// GetAll retrieves all labels ordered by name.
func (r *LabelRepository) GetAll(ctx context.Context) ([]*Label, error) {
	var labels []*Label
	if err := sqlx.SelectContext(ctx, r.db, &labels, "SELECT id, name, post_count FROM labels ORDER BY name"); err != nil {
		return nil, classify(err)
	}
	return labels, nil
}

// Save inserts a new label with a zero count. A concurrent insert of the
// same name surfaces as ErrDuplicate.
func (r *LabelRepository) Save(ctx context.Context, label *Label) (int64, error) {
	res, err := sqlx.NamedExecContext(ctx, r.db, "INSERT INTO labels (name, post_count) VALUES (:name, 0)", label)
	if err != nil {
		return 0, fmt.Errorf("failed to insert label %q: %w", label.Name, classify(err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	label.ID = id
	label.Count = 0
	return id, nil
}

// ListForPost returns the labels attached to a post.
func (r *LabelRepository) ListForPost(ctx context.Context, postID int64) ([]*Label, error) {
	var labels []*Label
	query := `SELECT l.id, l.name, l.post_count FROM labels l
		JOIN post_labels pl ON pl.label_id = l.id
		WHERE pl.post_id = ? ORDER BY l.name`
	if err := sqlx.SelectContext(ctx, r.db, &labels, query, postID); err != nil {
		return nil, classify(err)
	}
	return labels, nil
}

// AdjustCount adds delta to the label's post count.
func (r *LabelRepository) AdjustCount(ctx context.Context, id int64, delta int) error {
	return adjustCounter(ctx, r.db, "labels", "post_count", id, delta)
}
