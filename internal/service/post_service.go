package service

import (
	"context"
	"fmt"
	"go-blog-app/internal/auth"
	"go-blog-app/internal/data"
	"time"
)

// sitemapLimit is the most URLs a single sitemap file may list.
const sitemapLimit = 50000

// PostInput carries the fields of a new post.
type PostInput struct {
	Title       string
	Body        string
	Summary     string
	CategoryTag string
	Labels      []string
}

// PostEdit carries the editable fields of a post. The category is fixed at creation.
type PostEdit struct {
	Title   string
	Body    string
	Summary string
	Labels  []string
}

// PostService provides business logic for publishing posts.
type PostService struct {
	core
}

// NewPostService creates a new PostService.
func NewPostService(d Deps) *PostService {
	return &PostService{core: newCore(d)}
}

// CreatePost publishes a post. The category must already exist; labels are
// created on first use. The insert, label links and every counter increment
// commit together.
func (s *PostService) CreatePost(ctx context.Context, id auth.Identity, in PostInput) (*data.Post, error) {
	if !id.IsAuthor() {
		return nil, ErrUnauthorized
	}
	names := cleanLabels(in.Labels)

	var post *data.Post
	err := s.atomic(ctx, "create_post", func(tx *data.Tx) error {
		category, err := tx.Categories.FindByTag(ctx, in.CategoryTag)
		if err != nil {
			return err
		}
		if category == nil {
			return fmt.Errorf("category %q: %w", in.CategoryTag, ErrNotFound)
		}

		// Names that differ only in ways the store ignores resolve to one label.
		labels := make([]*data.Label, 0, len(names))
		seen := make(map[int64]struct{}, len(names))
		for _, name := range names {
			label, err := resolveLabel(ctx, tx, name)
			if err != nil {
				return err
			}
			if _, ok := seen[label.ID]; ok {
				continue
			}
			seen[label.ID] = struct{}{}
			labels = append(labels, label)
		}

		now := time.Now().UTC()
		p := &data.Post{
			Title:       in.Title,
			Body:        in.Body,
			BodyHTML:    s.Renderer.Render(in.Body),
			Summary:     in.Summary,
			SummaryHTML: s.Renderer.Render(in.Summary),
			CategoryID:  category.ID,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := tx.Posts.CreatePost(ctx, p); err != nil {
			return err
		}

		if err := tx.Categories.AdjustCount(ctx, category.ID, 1); err != nil {
			return err
		}
		for _, label := range labels {
			if err := tx.Posts.LinkLabel(ctx, p.ID, label.ID); err != nil {
				return err
			}
			if err := tx.Labels.AdjustCount(ctx, label.ID, 1); err != nil {
				return err
			}
		}

		post, err = hydrate(ctx, tx, p)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.invalidatePrefix(prefixTaxon, prefixPost)
	return post, nil
}

// EditPost updates a post's title, text and label set. Only labels that
// enter or leave the set have their counts adjusted, and text is only
// re-rendered when its raw value changed.
func (s *PostService) EditPost(ctx context.Context, id auth.Identity, postID int64, in PostEdit) (*data.Post, error) {
	if !id.IsAuthor() {
		return nil, ErrUnauthorized
	}
	names := cleanLabels(in.Labels)

	var post *data.Post
	err := s.atomic(ctx, "edit_post", func(tx *data.Tx) error {
		p, err := tx.Posts.GetPostByID(ctx, postID)
		if err != nil {
			return err
		}

		oldIDs, err := tx.Posts.LabelIDs(ctx, postID)
		if err != nil {
			return err
		}
		current := make(map[int64]struct{}, len(oldIDs))
		for _, lid := range oldIDs {
			current[lid] = struct{}{}
		}

		wanted := make(map[int64]struct{}, len(names))
		for _, name := range names {
			label, err := resolveLabel(ctx, tx, name)
			if err != nil {
				return err
			}
			if _, ok := wanted[label.ID]; ok {
				continue
			}
			wanted[label.ID] = struct{}{}
			if _, ok := current[label.ID]; ok {
				continue
			}
			if err := tx.Posts.LinkLabel(ctx, postID, label.ID); err != nil {
				return err
			}
			if err := tx.Labels.AdjustCount(ctx, label.ID, 1); err != nil {
				return err
			}
		}
		for _, lid := range oldIDs {
			if _, ok := wanted[lid]; ok {
				continue
			}
			if err := tx.Posts.UnlinkLabel(ctx, postID, lid); err != nil {
				return err
			}
			if err := tx.Labels.AdjustCount(ctx, lid, -1); err != nil {
				return err
			}
		}

		p.Title = in.Title
		if p.Body != in.Body {
			p.Body = in.Body
			p.BodyHTML = s.Renderer.Render(in.Body)
		}
		if p.Summary != in.Summary {
			p.Summary = in.Summary
			p.SummaryHTML = s.Renderer.Render(in.Summary)
		}
		p.UpdatedAt = time.Now().UTC()
		if err := tx.Posts.UpdatePost(ctx, p); err != nil {
			return err
		}

		post, err = hydrate(ctx, tx, p)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.invalidatePrefix(prefixTaxon, prefixPost)
	return post, nil
}

// DeletePost removes a post together with its comments, their reactions
// and the post's likes, and releases its category and labels.
func (s *PostService) DeletePost(ctx context.Context, id auth.Identity, postID int64) error {
	if !id.IsAuthor() {
		return ErrUnauthorized
	}
	err := s.atomic(ctx, "delete_post", func(tx *data.Tx) error {
		p, err := tx.Posts.GetPostByID(ctx, postID)
		if err != nil {
			return err
		}
		if err := tx.Categories.AdjustCount(ctx, p.CategoryID, -1); err != nil {
			return err
		}

		labelIDs, err := tx.Posts.LabelIDs(ctx, postID)
		if err != nil {
			return err
		}
		for _, lid := range labelIDs {
			if err := tx.Posts.UnlinkLabel(ctx, postID, lid); err != nil {
				return err
			}
			if err := tx.Labels.AdjustCount(ctx, lid, -1); err != nil {
				return err
			}
		}

		// Reactions go first; they reference the comments.
		if err := tx.Reactions.DeleteForPost(ctx, postID); err != nil {
			return err
		}
		if _, err := tx.Comments.DeleteByPost(ctx, postID); err != nil {
			return err
		}
		return tx.Posts.DeletePost(ctx, postID)
	})
	if err != nil {
		return err
	}
	s.invalidatePrefix(prefixTaxon, prefixPost)
	return nil
}

// GetPost returns a post with its category and labels.
func (s *PostService) GetPost(ctx context.Context, postID int64) (*data.Post, error) {
	key := postKey(postID)
	var post data.Post
	if s.cached(key, &post) {
		return &post, nil
	}
	gen := s.generation()
	read := s.Store.Read()
	p, err := read.Posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	p, err = hydrate(ctx, read, p)
	if err != nil {
		return nil, err
	}
	s.remember(key, p, gen)
	return p, nil
}

// ListPosts returns one page of posts, newest first. Pages start at 1.
func (s *PostService) ListPosts(ctx context.Context, page int) ([]*data.Post, error) {
	limit, offset := pageOffset(page, s.Config.Blog.PostsPerPage)
	read := s.Store.Read()
	posts, err := read.Posts.ListPosts(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	return hydrateAll(ctx, read, posts)
}

// ListByCategory returns one page of a category's posts.
func (s *PostService) ListByCategory(ctx context.Context, tag string, page int) ([]*data.Post, error) {
	read := s.Store.Read()
	category, err := read.Categories.FindByTag(ctx, tag)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, fmt.Errorf("category %q: %w", tag, ErrNotFound)
	}
	limit, offset := pageOffset(page, s.Config.Blog.PostsPerPage)
	posts, err := read.Posts.ListPostsByCategory(ctx, category.ID, limit, offset)
	if err != nil {
		return nil, err
	}
	return hydrateAll(ctx, read, posts)
}

// ListByLabel returns one page of the posts carrying a label.
func (s *PostService) ListByLabel(ctx context.Context, name string, page int) ([]*data.Post, error) {
	read := s.Store.Read()
	label, err := read.Labels.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if label == nil {
		return nil, fmt.Errorf("label %q: %w", name, ErrNotFound)
	}
	limit, offset := pageOffset(page, s.Config.Blog.PostsPerPage)
	posts, err := read.Posts.ListPostsByLabel(ctx, label.ID, limit, offset)
	if err != nil {
		return nil, err
	}
	return hydrateAll(ctx, read, posts)
}

// AllPosts returns every post newest first, without categories or labels.
func (s *PostService) AllPosts(ctx context.Context) ([]*data.Post, error) {
	return s.Store.Read().Posts.ListPosts(ctx, sitemapLimit, 0)
}

// hydrate loads the category and labels of a post.
func hydrate(ctx context.Context, tx *data.Tx, p *data.Post) (*data.Post, error) {
	category, err := tx.Categories.GetByID(ctx, p.CategoryID)
	if err != nil {
		return nil, err
	}
	labels, err := tx.Labels.ListForPost(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.Category = category
	p.Labels = labels
	return p, nil
}

func hydrateAll(ctx context.Context, tx *data.Tx, posts []*data.Post) ([]*data.Post, error) {
	categories := make(map[int64]*data.Category)
	for _, p := range posts {
		category, ok := categories[p.CategoryID]
		if !ok {
			var err error
			category, err = tx.Categories.GetByID(ctx, p.CategoryID)
			if err != nil {
				return nil, err
			}
			categories[p.CategoryID] = category
		}
		labels, err := tx.Labels.ListForPost(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		p.Category = category
		p.Labels = labels
	}
	return posts, nil
}
