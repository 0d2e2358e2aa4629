package auth

import (
	"go-blog-app/internal/config"
	"go-blog-app/internal/data"
)

// Casbin subjects. Every request maps to exactly one of these.
const (
	RoleAnonymous = "anonymous"
	RoleReader    = "reader"
	RoleAuthor    = "author"
)

// Identity is the acting party of a request. It is either Anonymous or a
// Member; core operations receive it explicitly.
type Identity interface {
	// UserID returns the member's id, or false for anonymous callers.
	UserID() (int64, bool)
	// IsAuthor reports whether the caller holds publishing privilege.
	IsAuthor() bool
	// Role is the casbin subject for the identity.
	Role() string
}

// Anonymous is an unauthenticated caller.
type Anonymous struct{}

func (Anonymous) UserID() (int64, bool) { return 0, false }
func (Anonymous) IsAuthor() bool        { return false }
func (Anonymous) Role() string          { return RoleAnonymous }

// Member is a logged-in user.
type Member struct {
	ID       int64
	Username string
	author   bool
}

func (m Member) UserID() (int64, bool) { return m.ID, true }
func (m Member) IsAuthor() bool        { return m.author }

func (m Member) Role() string {
	if m.author {
		return RoleAuthor
	}
	return RoleReader
}

// NewMember builds the identity of a loaded user. The author privilege
// requires both the configured username and the configured id to match.
func NewMember(u *data.User, cfg config.AuthorConfig) Member {
	return Member{
		ID:       u.ID,
		Username: u.Username,
		author:   u.Username == cfg.Username && u.ID == cfg.UserID,
	}
}
