// Package apperr defines the sentinel errors services return so handlers can
// map failures to HTTP status codes without string matching.
package apperr

import (
	"errors"
	"net/http"
)

var (
	// ErrValidation marks input rejected before any write happened.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks a lookup for a row that does not exist in the caller's tenant.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks a per-tenant uniqueness violation, e.g. a duplicate document number.
	ErrConflict = errors.New("conflict")
	// ErrDispatch marks a failed notification send. Document writes that
	// happened before the dispatch attempt stay committed.
	ErrDispatch = errors.New("dispatch failed")
)

// HTTPStatus maps a service error to the response status code.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrDispatch):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
