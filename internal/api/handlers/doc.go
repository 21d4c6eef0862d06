// Package handlers implements HTTP handlers for the price-alert-dispatcher API.
package handlers

import (
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/price-alert-dispatcher/internal/store"
)

// StatusResponse is a generic status response body.
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

// storeError maps store sentinels onto HTTP errors.
func storeError(what string, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return huma.Error404NotFound(what + " not found")
	case errors.Is(err, store.ErrVersionConflict):
		return huma.Error409Conflict(what + " was modified concurrently, retry")
	default:
		return huma.Error500InternalServerError(what + ": " + err.Error())
	}
}
