package handler

import (
	"go-blog-app/internal/auth"
	"go-blog-app/internal/data"
	"time"
)

type categoryResponse struct {
	ID    int64  `json:"id"`
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

type labelResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type postResponse struct {
	ID           int64             `json:"id"`
	Title        string            `json:"title"`
	Body         string            `json:"body,omitempty"`
	BodyHTML     string            `json:"body_html,omitempty"`
	Summary      string            `json:"summary"`
	SummaryHTML  string            `json:"summary_html"`
	Category     *categoryResponse `json:"category,omitempty"`
	Labels       []labelResponse   `json:"labels"`
	CommentCount int               `json:"comment_count"`
	LikeCount    int               `json:"like_count"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

type commentResponse struct {
	ID           int64     `json:"id"`
	PostID       int64     `json:"post_id"`
	Username     string    `json:"username"`
	Body         string    `json:"body"`
	BodyHTML     string    `json:"body_html"`
	LikeCount    int       `json:"like_count"`
	DislikeCount int       `json:"dislike_count"`
	CreatedAt    time.Time `json:"created_at"`
}

type userResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

func newCategory(c *data.Category) *categoryResponse {
	if c == nil {
		return nil
	}
	return &categoryResponse{ID: c.ID, Tag: c.Tag, Count: c.Count}
}

func newCategories(cs []*data.Category) []*categoryResponse {
	out := make([]*categoryResponse, 0, len(cs))
	for _, c := range cs {
		out = append(out, newCategory(c))
	}
	return out
}

func newLabels(ls []*data.Label) []labelResponse {
	out := make([]labelResponse, 0, len(ls))
	for _, l := range ls {
		out = append(out, labelResponse{ID: l.ID, Name: l.Name, Count: l.Count})
	}
	return out
}

// newPost builds the full view of a post. Listings drop the body.
func newPost(p *data.Post, withBody bool) postResponse {
	resp := postResponse{
		ID:           p.ID,
		Title:        p.Title,
		Summary:      p.Summary,
		SummaryHTML:  p.SummaryHTML,
		Category:     newCategory(p.Category),
		Labels:       newLabels(p.Labels),
		CommentCount: p.CommentCount,
		LikeCount:    p.LikeCount,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
	if withBody {
		resp.Body = p.Body
		resp.BodyHTML = p.BodyHTML
	}
	return resp
}

func newPosts(ps []*data.Post) []postResponse {
	out := make([]postResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, newPost(p, false))
	}
	return out
}

func newComment(c *data.Comment) commentResponse {
	return commentResponse{
		ID:           c.ID,
		PostID:       c.PostID,
		Username:     c.Username,
		Body:         c.Body,
		BodyHTML:     c.BodyHTML,
		LikeCount:    c.LikeCount,
		DislikeCount: c.DislikeCount,
		CreatedAt:    c.CreatedAt,
	}
}

func newComments(cs []*data.Comment) []commentResponse {
	out := make([]commentResponse, 0, len(cs))
	for _, c := range cs {
		out = append(out, newComment(c))
	}
	return out
}

func newUser(m auth.Member) userResponse {
	return userResponse{ID: m.ID, Username: m.Username, Role: m.Role()}
}
