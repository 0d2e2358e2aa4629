package data

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Tx bundles every repository bound to the same transaction (or, for
// Store.Read, to the pool). Repositories obtained from one Tx commit or
// roll back together.
type Tx struct {
	Users      *UserRepository
	Categories *CategoryRepository
	Labels     *LabelRepository
	Posts      *PostRepository
	Comments   *CommentRepository
	Reactions  *ReactionRepository
}

func newTx(ext sqlx.ExtContext) *Tx {
	return &Tx{
		Users:      NewUserRepository(ext),
		Categories: NewCategoryRepository(ext),
		Labels:     NewLabelRepository(ext),
		Posts:      NewPostRepository(ext),
		Comments:   NewCommentRepository(ext),
		Reactions:  NewReactionRepository(ext),
	}
}

// Store owns the connection pool and hands out transaction-scoped repositories.
type Store struct {
	db   *sqlx.DB
	read *Tx
}

// NewStore creates a Store on top of an open pool.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db, read: newTx(db)}
}

// Read returns repositories that run each statement on its own, outside any transaction.
func (s *Store) Read() *Tx {
	return s.read
}

// WithTx runs fn inside a single database transaction. The transaction is
// committed if fn returns nil and rolled back otherwise (including on panic).
func (s *Store) WithTx(ctx context.Context, fn func(tx *Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelDefault})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", classify(err))
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(newTx(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", classify(err))
	}
	return nil
}
