package service

import (
	"context"
	"fmt"
	"go-blog-app/internal/data"
)

const auditBatch = 500

// CounterDrift is a stored counter that disagrees with the rows it summarizes.
type CounterDrift struct {
	Table   string
	ID      int64
	Counter string
	Stored  int
	Actual  int
}

func (d CounterDrift) String() string {
	return fmt.Sprintf("%s %d %s: stored %d, actual %d", d.Table, d.ID, d.Counter, d.Stored, d.Actual)
}

// AuditService recounts denormalized counters from their source rows.
type AuditService struct {
	core
}

// NewAuditService creates a new AuditService.
func NewAuditService(d Deps) *AuditService {
	return &AuditService{core: newCore(d)}
}

// CheckCounters compares every category, label, post and comment counter
// with a fresh count. Each drift is logged and reported as a violation; the
// stored values are left alone.
func (s *AuditService) CheckCounters(ctx context.Context) ([]CounterDrift, error) {
	read := s.Store.Read()
	var drifts []CounterDrift
	check := func(table string, id int64, counter string, stored int, count func() (int, error)) error {
		actual, err := count()
		if err != nil {
			return fmt.Errorf("failed to count %s of %s %d: %w", counter, table, id, err)
		}
		if actual != stored {
			drifts = append(drifts, CounterDrift{Table: table, ID: id, Counter: counter, Stored: stored, Actual: actual})
		}
		return nil
	}

	categories, err := read.Categories.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range categories {
		if err := check("categories", c.ID, "post_count", c.Count, func() (int, error) {
			return read.Posts.CountByCategory(ctx, c.ID)
		}); err != nil {
			return nil, err
		}
	}

	labels, err := read.Labels.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, l := range labels {
		if err := check("labels", l.ID, "post_count", l.Count, func() (int, error) {
			return read.Posts.CountByLabel(ctx, l.ID)
		}); err != nil {
			return nil, err
		}
	}

	for offset := 0; ; offset += auditBatch {
		posts, err := read.Posts.ListPosts(ctx, auditBatch, offset)
		if err != nil {
			return nil, err
		}
		for _, p := range posts {
			if err := check("posts", p.ID, "comment_count", p.CommentCount, func() (int, error) {
				return read.Comments.CountByPost(ctx, p.ID)
			}); err != nil {
				return nil, err
			}
			if err := check("posts", p.ID, "like_count", p.LikeCount, func() (int, error) {
				return read.Reactions.Count(ctx, data.PostLike, p.ID)
			}); err != nil {
				return nil, err
			}
			if err := s.checkComments(ctx, read, p.ID, check); err != nil {
				return nil, err
			}
		}
		if len(posts) < auditBatch {
			break
		}
	}

	for _, d := range drifts {
		s.Metrics.Violation("audit_counters")
		s.Log.With(map[string]interface{}{"table": d.Table, "id": d.ID, "counter": d.Counter}).Warn("counter drift: " + d.String())
	}
	return drifts, nil
}

func (s *AuditService) checkComments(ctx context.Context, read *data.Tx, postID int64, check func(string, int64, string, int, func() (int, error)) error) error {
	for offset := 0; ; offset += auditBatch {
		comments, err := read.Comments.ListByPost(ctx, postID, auditBatch, offset)
		if err != nil {
			return err
		}
		for _, c := range comments {
			if err := check("comments", c.ID, "like_count", c.LikeCount, func() (int, error) {
				return read.Reactions.Count(ctx, data.CommentLike, c.ID)
			}); err != nil {
				return err
			}
			if err := check("comments", c.ID, "dislike_count", c.DislikeCount, func() (int, error) {
				return read.Reactions.Count(ctx, data.CommentDislike, c.ID)
			}); err != nil {
				return err
			}
		}
		if len(comments) < auditBatch {
			return nil
		}
	}
}
