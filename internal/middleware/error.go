package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"go-blog-app/internal/logger"
	"go-blog-app/internal/service"
	"net/http"
)

// AppError represents a custom error type for the application.
type AppError struct {
	Error   error
	Message string
	Code    int
}

// AppHandler is a custom handler function type that returns an AppError.
type AppHandler func(http.ResponseWriter, *http.Request) *AppError

// FromService maps a service error onto the status the caller should see.
func FromService(err error) *AppError {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return &AppError{Error: err, Message: "Not found", Code: http.StatusNotFound}
	case errors.Is(err, service.ErrUnauthorized):
		return &AppError{Error: err, Message: "Unauthorized", Code: http.StatusUnauthorized}
	case errors.Is(err, service.ErrInvalidInput):
		return &AppError{Error: err, Message: "Invalid input", Code: http.StatusBadRequest}
	case errors.Is(err, service.ErrAlreadyReacted):
		return &AppError{Error: err, Message: "Already reacted", Code: http.StatusConflict}
	case errors.Is(err, service.ErrUsernameTaken):
		return &AppError{Error: err, Message: "Username already taken", Code: http.StatusConflict}
	case errors.Is(err, service.ErrStoreConflict):
		return &AppError{Error: err, Message: "Busy, please retry", Code: http.StatusServiceUnavailable}
	}
	return &AppError{Error: err, Message: "Internal Server Error", Code: http.StatusInternalServerError}
}

// Error is a middleware that converts handler errors into JSON error responses.
func Error(log logger.Logger) func(AppHandler) http.Handler {
	return func(next AppHandler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					err, ok := rec.(error)
					if !ok {
						err = fmt.Errorf("%v", rec)
					}
					log.Error(err, "Panic recovered")
					WriteError(w, http.StatusInternalServerError, "Internal Server Error")
				}
			}()

			appErr := next(w, r)
			if appErr == nil {
				return
			}
			if appErr.Code >= http.StatusInternalServerError {
				log.Error(appErr.Error, appErr.Message)
			} else {
				log.Debug(fmt.Sprintf("%s %s: %s: %v", r.Method, r.URL.Path, appErr.Message, appErr.Error))
			}
			WriteError(w, appErr.Code, appErr.Message)
		})
	}
}

// WriteJSON writes v as a JSON body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes {"error": message} with the given status.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"error": message})
}
