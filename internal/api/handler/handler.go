// Package handler implements the TestDesk REST endpoints on top of the
// state store.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/good-yellow-bee/testdesk/internal/state"
)

// DefaultDismissAfter is how long the dashboard shows a new notification.
const DefaultDismissAfter = 3 * time.Second

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Handler serves all dashboard endpoints.
type Handler struct {
	store        *state.Store
	log          zerolog.Logger
	validate     *validator.Validate
	dismissAfter time.Duration
}

// New creates a handler. A zero dismissAfter uses DefaultDismissAfter.
func New(store *state.Store, log zerolog.Logger, dismissAfter time.Duration) *Handler {
	if dismissAfter <= 0 {
		dismissAfter = DefaultDismissAfter
	}
	return &Handler{
		store:        store,
		log:          log,
		validate:     validator.New(),
		dismissAfter: dismissAfter,
	}
}

// decode reads a JSON body into dst and validates its struct tags. An
// empty body is accepted when allowEmpty is set.
func (h *Handler) decode(r *http.Request, dst any, allowEmpty bool) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(dst)
	if errors.Is(err, io.EOF) && allowEmpty {
		err = nil
	}
	if err != nil {
		return ErrInvalidBody
	}
	return h.validate.Struct(dst)
}

// projectID parses the {id} URL parameter.
func projectID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, NewBadRequest("invalid project id")
	}
	return id, nil
}
