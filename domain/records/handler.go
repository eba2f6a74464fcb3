package records

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/emergent-company/emergent.relations/domain/relations"
	"github.com/emergent-company/emergent.relations/internal/docstore"
	"github.com/emergent-company/emergent.relations/pkg/apperror"
	"github.com/emergent-company/emergent.relations/pkg/logger"
)

const maxOffset = 1_000_000

// Handler serves stored records with their relations
type Handler struct {
	store docstore.Store
	svc   *relations.Service
	log   *slog.Logger
}

// NewHandler creates a new records handler
func NewHandler(store docstore.Store, svc *relations.Service, log *slog.Logger) *Handler {
	return &Handler{
		store: store,
		svc:   svc,
		log:   log.With(logger.Scope("records.handler")),
	}
}

// HydrateRequest is the body of POST /api/hydrate
type HydrateRequest struct {
	Collection string `json:"collection"`
	Data       any    `json:"data"`
}

// Get handles GET /api/:plural/:id
func (h *Handler) Get(c echo.Context) error {
	collection, err := collectionParam(c)
	if err != nil {
		return err
	}
	id := c.Param("id")

	ctx := c.Request().Context()
	recs, err := h.store.BatchReadByIDs(ctx, collection, []string{id})
	if err != nil {
		return storeError(ctx, err)
	}
	if len(recs) == 0 {
		return apperror.NewNotFound(collection, id)
	}

	resp, err := h.svc.Hydrate(ctx, collection, recs[0])
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// List handles GET /api/:plural, either ?ids=a,b or a page with limit/offset
func (h *Handler) List(c echo.Context) error {
	collection, err := collectionParam(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	var recs []docstore.Record
	if raw := c.QueryParam("ids"); raw != "" {
		ids := splitIDs(raw)
		if len(ids) > docstore.MaxListLimit {
			return apperror.ErrBadRequest.WithMessage(fmt.Sprintf("at most %d ids per request", docstore.MaxListLimit))
		}
		recs, err = h.store.BatchReadByIDs(ctx, collection, ids)
	} else {
		opts := docstore.ListOptions{Limit: docstore.DefaultListLimit}
		if limitStr := c.QueryParam("limit"); limitStr != "" {
			limit, perr := parsePositiveInt(limitStr, 1, docstore.MaxListLimit)
			if perr != nil {
				return apperror.ErrBadRequest.WithMessage(fmt.Sprintf("limit must be between 1 and %d", docstore.MaxListLimit))
			}
			opts.Limit = limit
		}
		if offsetStr := c.QueryParam("offset"); offsetStr != "" {
			offset, perr := parsePositiveInt(offsetStr, 0, maxOffset)
			if perr != nil {
				return apperror.ErrBadRequest.WithMessage("offset must be a non-negative integer")
			}
			opts.Offset = offset
		}
		recs, err = h.store.List(ctx, collection, opts)
	}
	if err != nil {
		return storeError(ctx, err)
	}
	if recs == nil {
		recs = []docstore.Record{}
	}

	resp, err := h.svc.Hydrate(ctx, collection, recs)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// Hydrate handles POST /api/hydrate for caller-supplied records
func (h *Handler) Hydrate(c echo.Context) error {
	var req HydrateRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}
	if strings.TrimSpace(req.Collection) == "" {
		return apperror.NewBadRequest("collection is required")
	}

	resp, err := h.svc.Hydrate(c.Request().Context(), req.Collection, req.Data)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

func collectionParam(c echo.Context) (string, error) {
	plural := c.Param("plural")
	kind, ok := relations.KindFromPlural(plural)
	if !ok {
		return "", apperror.ErrNotFound.WithMessage(fmt.Sprintf("unknown collection '%s'", plural))
	}
	return string(kind), nil
}

// storeError keeps typed store errors and wraps anything else as a storage failure.
func storeError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return apperror.ErrStorage.WithMessage("request canceled").WithInternal(err)
	}
	if _, ok := apperror.As(err); ok {
		return err
	}
	return apperror.ErrStorage.WithInternal(err)
}

func splitIDs(raw string) []string {
	parts := strings.Split(raw, ",")
	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			ids = append(ids, p)
		}
	}
	return ids
}

func parsePositiveInt(s string, min, max int) (int, error) {
	var n int
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, apperror.ErrBadRequest
		}
		n = n*10 + int(c-'0')
		if n > max {
			return 0, apperror.ErrBadRequest
		}
	}
	if n < min {
		return 0, apperror.ErrBadRequest
	}
	return n, nil
}
