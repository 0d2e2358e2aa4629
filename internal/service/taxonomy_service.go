package service

import (
	"context"
	"fmt"
	"go-blog-app/internal/data"
	"strings"
)

// TaxonomyService is the category and label registry.
type TaxonomyService struct {
	core
}

// NewTaxonomyService creates a new TaxonomyService.
func NewTaxonomyService(d Deps) *TaxonomyService {
	return &TaxonomyService{core: newCore(d)}
}

// EnsureCategory returns the category with the given tag, creating it with
// a zero count if it does not exist yet. It is an operator action.
func (s *TaxonomyService) EnsureCategory(ctx context.Context, tag string) (*data.Category, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return nil, fmt.Errorf("category tag is blank: %w", ErrInvalidInput)
	}
	var category *data.Category
	err := s.atomic(ctx, "ensure_category", func(tx *data.Tx) error {
		found, err := tx.Categories.FindByTag(ctx, tag)
		if err != nil {
			return err
		}
		if found != nil {
			category = found
			return nil
		}
		created := &data.Category{Tag: tag}
		if _, err := tx.Categories.Save(ctx, created); err != nil {
			return conflict(err)
		}
		category = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(keyCategories)
	return category, nil
}

// SeedCategories ensures every configured category exists.
func (s *TaxonomyService) SeedCategories(ctx context.Context, tags []string) error {
	for _, tag := range tags {
		if _, err := s.EnsureCategory(ctx, tag); err != nil {
			return fmt.Errorf("failed to seed category %q: %w", tag, err)
		}
	}
	return nil
}

// ResolveLabel returns the label with the given name, creating it with a
// zero count if needed.
func (s *TaxonomyService) ResolveLabel(ctx context.Context, name string) (*data.Label, error) {
	var label *data.Label
	err := s.atomic(ctx, "resolve_label", func(tx *data.Tx) error {
		var err error
		label, err = resolveLabel(ctx, tx, name)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(keyLabels)
	return label, nil
}

// Categories lists every category with its post count.
func (s *TaxonomyService) Categories(ctx context.Context) ([]*data.Category, error) {
	var categories []*data.Category
	if s.cached(keyCategories, &categories) {
		return categories, nil
	}
	gen := s.generation()
	categories, err := s.Store.Read().Categories.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	s.remember(keyCategories, categories, gen)
	return categories, nil
}

// Labels lists every label with its post count.
func (s *TaxonomyService) Labels(ctx context.Context) ([]*data.Label, error) {
	var labels []*data.Label
	if s.cached(keyLabels, &labels) {
		return labels, nil
	}
	gen := s.generation()
	labels, err := s.Store.Read().Labels.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	s.remember(keyLabels, labels, gen)
	return labels, nil
}

// resolveLabel looks a label up by name inside tx and inserts it when
// absent. Losing an insert race to another transaction yields a retryable
// conflict.
func resolveLabel(ctx context.Context, tx *data.Tx, name string) (*data.Label, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("label name is blank: %w", ErrInvalidInput)
	}
	label, err := tx.Labels.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if label != nil {
		return label, nil
	}
	label = &data.Label{Name: name}
	if _, err := tx.Labels.Save(ctx, label); err != nil {
		return nil, conflict(err)
	}
	return label, nil
}
