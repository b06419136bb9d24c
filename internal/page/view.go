// Package page holds the state of the portal pages: what a page shows after a
// load, and the view/edit/save cycle of editable pages.
package page

import (
	"errors"

	appErrors "github.com/fomo-campus/fomo-portal/pkg/errors"
)

// Status is the render state of a page.
type Status string

const (
	StatusLoading  Status = "loading"
	StatusContent  Status = "content"
	StatusEmpty    Status = "empty"
	StatusError    Status = "error"
	StatusRedirect Status = "redirect"
)

// LoginPath is where unauthenticated visitors are sent.
const LoginPath = "/auth/login"

// View is the outcome of loading a page.
type View[T any] struct {
	Status   Status           `json:"status"`
	Data     *T               `json:"data,omitempty"`
	Redirect string           `json:"redirect,omitempty"`
	Error    *appErrors.Error `json:"error,omitempty"`
}

// Loading is the initial view of every page.
func Loading[T any]() View[T] {
	return View[T]{Status: StatusLoading}
}

// Content wraps loaded data.
func Content[T any](data T) View[T] {
	return View[T]{Status: StatusContent, Data: &data}
}

// Empty is a successful load with nothing to show.
func Empty[T any]() View[T] {
	return View[T]{Status: StatusEmpty}
}

// RedirectTo sends the visitor elsewhere.
func RedirectTo[T any](target string) View[T] {
	return View[T]{Status: StatusRedirect, Redirect: target}
}

// Failed carries a typed error.
func Failed[T any](err error) View[T] {
	return View[T]{Status: StatusError, Error: appErrors.FromError(err)}
}

// Resolve maps a load outcome onto a view. isEmpty may be nil, in which case
// a successful load always has content. Unauthorized loads redirect to login.
func Resolve[T any](data T, err error, isEmpty func(T) bool) View[T] {
	switch {
	case err == nil && isEmpty != nil && isEmpty(data):
		return Empty[T]()
	case err == nil:
		return Content(data)
	case errors.Is(err, appErrors.ErrUnauthorized):
		return RedirectTo[T](LoginPath)
	default:
		return Failed[T](err)
	}
}

// Redirects reports whether the view sends the visitor elsewhere.
func (v View[T]) Redirects() bool {
	return v.Status == StatusRedirect
}
