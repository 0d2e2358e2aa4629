package service

import (
	"context"
	"errors"
	"fmt"
	"go-blog-app/internal/auth"
	"go-blog-app/internal/data"
	"strings"
	"time"
)

// UserService manages accounts and resolves session identities.
type UserService struct {
	core
}

// NewUserService creates a new UserService.
func NewUserService(d Deps) *UserService {
	return &UserService{core: newCore(d)}
}

// Register creates a reader account.
func (s *UserService) Register(ctx context.Context, username, password string) (auth.Member, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return auth.Member{}, fmt.Errorf("username and password are required: %w", ErrInvalidInput)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return auth.Member{}, fmt.Errorf("failed to hash password: %w", err)
	}
	u := &data.User{Username: username, PasswordHash: hash, CreatedAt: time.Now().UTC()}
	err = s.atomic(ctx, "register", func(tx *data.Tx) error {
		return tx.Users.CreateUser(ctx, u)
	})
	if errors.Is(err, data.ErrDuplicate) {
		return auth.Member{}, fmt.Errorf("%q: %w", username, ErrUsernameTaken)
	}
	if err != nil {
		return auth.Member{}, err
	}
	return auth.NewMember(u, s.Config.Author), nil
}

// Authenticate checks a username and password.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (auth.Member, error) {
	u, err := s.Store.Read().Users.GetUserByUsername(ctx, username)
	if errors.Is(err, data.ErrNotFound) {
		return auth.Member{}, ErrUnauthorized
	}
	if err != nil {
		return auth.Member{}, err
	}
	if err := auth.CheckPassword(u.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return auth.Member{}, ErrUnauthorized
		}
		return auth.Member{}, err
	}
	return auth.NewMember(u, s.Config.Author), nil
}

// EnsureAuthor creates the configured author account if it does not exist.
// The account is created with the configured id so the author check holds.
func (s *UserService) EnsureAuthor(ctx context.Context) error {
	cfg := s.Config.Author
	if cfg.Username == "" {
		return fmt.Errorf("author username is not configured: %w", ErrInvalidInput)
	}
	u, err := s.Store.Read().Users.GetUserByUsername(ctx, cfg.Username)
	switch {
	case err == nil:
		if u.ID != cfg.UserID {
			s.Log.Warn(fmt.Sprintf("user %q has id %d, not the configured author id %d; it will not be able to publish", u.Username, u.ID, cfg.UserID))
		}
		return nil
	case !errors.Is(err, data.ErrNotFound):
		return err
	}

	if cfg.Password == "" {
		s.Log.Warn("author.password is empty; the author cannot sign in until one is set")
	}
	hash := ""
	if cfg.Password != "" {
		if hash, err = auth.HashPassword(cfg.Password); err != nil {
			return fmt.Errorf("failed to hash author password: %w", err)
		}
	}
	author := &data.User{ID: cfg.UserID, Username: cfg.Username, PasswordHash: hash, CreatedAt: time.Now().UTC()}
	if err := s.atomic(ctx, "ensure_author", func(tx *data.Tx) error {
		return tx.Users.CreateUser(ctx, author)
	}); err != nil {
		return fmt.Errorf("failed to create author account: %w", err)
	}
	s.Log.Info(fmt.Sprintf("Created author account %q", cfg.Username))
	return nil
}

// LoginExternal maps an identity asserted by the OIDC provider onto a local
// reader account, creating it on first sign-in. The author account cannot
// be claimed this way.
func (s *UserService) LoginExternal(ctx context.Context, username string) (auth.Member, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return auth.Member{}, fmt.Errorf("external username is blank: %w", ErrInvalidInput)
	}
	author := s.Config.Author
	if strings.EqualFold(username, author.Username) {
		return auth.Member{}, fmt.Errorf("external login as the author: %w", ErrUnauthorized)
	}

	var u *data.User
	err := s.atomic(ctx, "login_external", func(tx *data.Tx) error {
		found, err := tx.Users.GetUserByUsername(ctx, username)
		if err == nil {
			// The database may match usernames case-insensitively.
			if found.ID == author.UserID || found.Username != username {
				return fmt.Errorf("external login %q matched account %q: %w", username, found.Username, ErrUnauthorized)
			}
			u = found
			return nil
		}
		if !errors.Is(err, data.ErrNotFound) {
			return err
		}
		created := &data.User{Username: username, CreatedAt: time.Now().UTC()}
		if err := tx.Users.CreateUser(ctx, created); err != nil {
			return conflict(err)
		}
		u = created
		return nil
	})
	if err != nil {
		return auth.Member{}, err
	}
	return auth.NewMember(u, s.Config.Author), nil
}

// Identify resolves the user id stored in a session. Zero, or an id whose
// account no longer exists, is anonymous.
func (s *UserService) Identify(ctx context.Context, userID int64) (auth.Identity, error) {
	if userID == 0 {
		return auth.Anonymous{}, nil
	}
	u, err := s.Store.Read().Users.GetUserByID(ctx, userID)
	if errors.Is(err, data.ErrNotFound) {
		return auth.Anonymous{}, nil
	}
	if err != nil {
		return nil, err
	}
	return auth.NewMember(u, s.Config.Author), nil
}
