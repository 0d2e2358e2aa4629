package handler

import (
	"fmt"
	"go-blog-app/internal/service"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// postForm is submitted to create a post.
type postForm struct {
	Title      string   `validate:"required,max=128"`
	Body       string   `validate:"required"`
	Summary    string   `validate:"required"`
	Category   string   `validate:"required,max=64"`
	Labels     string   `validate:"required"`
	LabelNames []string `validate:"dive,max=64"`
}

// editForm is submitted to edit a post.
type editForm struct {
	Title      string   `validate:"required,max=128"`
	Body       string   `validate:"required"`
	Summary    string   `validate:"required"`
	Labels     string   `validate:"required"`
	LabelNames []string `validate:"dive,max=64"`
}

// commentForm is submitted to comment on a post.
type commentForm struct {
	Comment string `validate:"required"`
}

// credentialsForm is submitted to log in or register.
type credentialsForm struct {
	Username string `validate:"required,min=1,max=64"`
	Password string `validate:"required"`
}

func parsePostForm(r *http.Request) postForm {
	labels := r.FormValue("labels")
	return postForm{
		Title:      strings.TrimSpace(r.FormValue("title")),
		Body:       r.FormValue("body"),
		Summary:    r.FormValue("summary"),
		Category:   strings.TrimSpace(r.FormValue("category")),
		Labels:     labels,
		LabelNames: service.ParseLabels(labels),
	}
}

func parseEditForm(r *http.Request) editForm {
	labels := r.FormValue("labels")
	return editForm{
		Title:      strings.TrimSpace(r.FormValue("title")),
		Body:       r.FormValue("body"),
		Summary:    r.FormValue("summary"),
		Labels:     labels,
		LabelNames: service.ParseLabels(labels),
	}
}

// validateForm checks a form against its tags and returns a readable message.
func validateForm(s interface{}) error {
	if err := validate.Struct(s); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok {
			msgs := make([]string, 0, len(fieldErrs))
			for _, e := range fieldErrs {
				msgs = append(msgs, formatFieldError(e))
			}
			return fmt.Errorf("%s", strings.Join(msgs, "; "))
		}
		return err
	}
	return nil
}

func formatFieldError(e validator.FieldError) string {
	field := strings.ToLower(e.Field())
	if strings.HasPrefix(field, "labelnames[") {
		return fmt.Sprintf("label %q must be at most %s characters", e.Value(), e.Param())
	}
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, e.Param())
	}
	return fmt.Sprintf("%s is invalid", field)
}

// idParam reads a positive integer route parameter.
func idParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", name, chi.URLParam(r, name))
	}
	return id, nil
}

// textParam reads a route parameter, undoing any percent-encoding chi left in place.
func textParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

// pageParam reads the optional ?page= query value. Missing or bad values mean page 1.
func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
