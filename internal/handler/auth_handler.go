package handler

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"go-blog-app/internal/auth"
	"go-blog-app/internal/logger"
	"go-blog-app/internal/middleware"
	"go-blog-app/internal/service"
	"go-blog-app/internal/session"
	"io"
	"net/http"
	"strings"
)

// AuthHandler holds the dependencies for the authentication handlers.
type AuthHandler struct {
	auth    *auth.Authenticator
	session session.Manager
	users   *service.UserService
	log     logger.Logger
}

// NewAuthHandler creates a new AuthHandler. A nil authenticator disables OIDC login.
func NewAuthHandler(a *auth.Authenticator, sm session.Manager, users *service.UserService, log logger.Logger) *AuthHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &AuthHandler{auth: a, session: sm, users: users, log: log}
}

// handleLogin checks a username and password and starts a session.
func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	form := credentialsForm{Username: strings.TrimSpace(r.FormValue("username")), Password: r.FormValue("password")}
	if err := validateForm(form); err != nil {
		return &middleware.AppError{Error: err, Message: err.Error(), Code: http.StatusBadRequest}
	}
	member, err := h.users.Authenticate(r.Context(), form.Username, form.Password)
	if err != nil {
		if errors.Is(err, service.ErrUnauthorized) {
			return &middleware.AppError{Error: err, Message: "Invalid username or password", Code: http.StatusUnauthorized}
		}
		return middleware.FromService(err)
	}
	return h.startSession(w, r, member, http.StatusOK)
}

// handleRegister creates a reader account and signs it in.
func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	form := credentialsForm{Username: strings.TrimSpace(r.FormValue("username")), Password: r.FormValue("password")}
	if err := validateForm(form); err != nil {
		return &middleware.AppError{Error: err, Message: err.Error(), Code: http.StatusBadRequest}
	}
	member, err := h.users.Register(r.Context(), form.Username, form.Password)
	if err != nil {
		return middleware.FromService(err)
	}
	return h.startSession(w, r, member, http.StatusCreated)
}

// handleLogout destroys the user's session.
func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	if err := h.session.Destroy(r.Context()); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to log out", Code: http.StatusInternalServerError}
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// handleOIDCLogin redirects the user to the OIDC provider to log in.
// It uses a random 'state' string for CSRF protection.
func (h *AuthHandler) handleOIDCLogin(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	if h.auth == nil {
		return &middleware.AppError{Error: errors.New("oidc is not configured"), Message: "Not found", Code: http.StatusNotFound}
	}
	state, err := randString(16)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Internal Server Error", Code: http.StatusInternalServerError}
	}
	h.session.Put(r.Context(), session.OIDCStateKey, state)
	http.Redirect(w, r, h.auth.AuthCodeURL(state), http.StatusFound)
	return nil
}

// handleOIDCCallback is the redirect URL for the OIDC provider.
// It verifies the state, exchanges the code and signs the reader in.
func (h *AuthHandler) handleOIDCCallback(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	if h.auth == nil {
		return &middleware.AppError{Error: errors.New("oidc is not configured"), Message: "Not found", Code: http.StatusNotFound}
	}
	state := h.session.PopString(r.Context(), session.OIDCStateKey)
	if state == "" || r.URL.Query().Get("state") != state {
		return &middleware.AppError{Error: errors.New("oidc state mismatch"), Message: "state did not match", Code: http.StatusBadRequest}
	}

	username, err := h.auth.ExchangeUsername(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to verify login", Code: http.StatusUnauthorized}
	}
	member, err := h.users.LoginExternal(r.Context(), username)
	if err != nil {
		return middleware.FromService(err)
	}
	if appErr := h.renew(r, member); appErr != nil {
		return appErr
	}
	http.Redirect(w, r, "/posts", http.StatusFound)
	return nil
}

func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, member auth.Member, status int) *middleware.AppError {
	if appErr := h.renew(r, member); appErr != nil {
		return appErr
	}
	middleware.WriteJSON(w, status, map[string]interface{}{"user": newUser(member)})
	return nil
}

// renew rotates the session token on privilege change and stores the user id.
func (h *AuthHandler) renew(r *http.Request, member auth.Member) *middleware.AppError {
	if err := h.session.RenewToken(r.Context()); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to start session", Code: http.StatusInternalServerError}
	}
	h.session.Put(r.Context(), session.UserIDKey, member.ID)
	h.log.Info("User " + member.Username + " signed in")
	return nil
}

// randString is a helper function to generate a random string for the 'state' parameter.
func randString(nByte int) (string, error) {
	b := make([]byte, nByte)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
