package data

import (
	"time"
)

// User is a registered account. Exactly one user is the author; see auth.Identity.
type User struct {
	ID           int64     `db:"id"`
	Username     string    `db:"username"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

// Category groups posts. Count is the number of live posts assigned to it.
type Category struct {
	ID    int64  `db:"id"`
	Tag   string `db:"tag"`
	Count int    `db:"post_count"`
}

// Label tags posts. Count is the number of live posts carrying it.
type Label struct {
	ID    int64  `db:"id"`
	Name  string `db:"name"`
	Count int    `db:"post_count"`
}

// Post is a published article. BodyHTML and SummaryHTML are always the
// rendered image of Body and Summary.
type Post struct {
	ID           int64     `db:"id"`
	Title        string    `db:"title"`
	Body         string    `db:"body"`
	BodyHTML     string    `db:"body_html"`
	Summary      string    `db:"summary"`
	SummaryHTML  string    `db:"summary_html"`
	CategoryID   int64     `db:"category_id"`
	CommentCount int       `db:"comment_count"`
	LikeCount    int       `db:"like_count"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`

	Category *Category `db:"-"`
	Labels   []*Label  `db:"-"`
}

// Comment is a reader's reply to a post.
type Comment struct {
	ID           int64     `db:"id"`
	PostID       int64     `db:"post_id"`
	UserID       int64     `db:"user_id"`
	Body         string    `db:"body"`
	BodyHTML     string    `db:"body_html"`
	LikeCount    int       `db:"like_count"`
	DislikeCount int       `db:"dislike_count"`
	CreatedAt    time.Time `db:"created_at"`

	Username string `db:"username"`
}

// Reaction names one of the join tables that record a user's reaction to a target.
type Reaction string

const (
	PostLike       Reaction = "post_likes"
	CommentLike    Reaction = "comment_likes"
	CommentDislike Reaction = "comment_dislikes"
)
