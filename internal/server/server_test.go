package server

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/emergent-company/emergent.relations/internal/config"
)

func newTestServer() *echo.Echo {
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	e := NewEcho(&config.Config{BodyLimit: "64B", CORSOrigins: []string{"*"}}, log)

	e.GET("/api/teams", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{"data": []any{}})
	})
	e.GET("/api/boom", func(c echo.Context) error {
		panic("boom")
	})
	e.POST("/api/hydrate", func(c echo.Context) error {
		var body map[string]any
		if err := c.Bind(&body); err != nil {
			return err
		}
		return c.NoContent(http.StatusNoContent)
	})
	return e
}

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestNewEcho_TrailingSlashAndRequestID(t *testing.T) {
	rec := serve(newTestServer(), httptest.NewRequest(http.MethodGet, "/api/teams/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
	assert.JSONEq(t, `{"data":[]}`, rec.Body.String())
}

func TestNewEcho_RecoversPanics(t *testing.T) {
	rec := serve(newTestServer(), httptest.NewRequest(http.MethodGet, "/api/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"internal_error"`)
}

func TestNewEcho_BodyLimit(t *testing.T) {
	e := newTestServer()

	small := httptest.NewRequest(http.MethodPost, "/api/hydrate", strings.NewReader(`{"collection":"Team"}`))
	small.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	assert.Equal(t, http.StatusNoContent, serve(e, small).Code)

	large := httptest.NewRequest(http.MethodPost, "/api/hydrate",
		strings.NewReader(`{"collection":"Team","data":"`+strings.Repeat("x", 128)+`"}`))
	large.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := serve(e, large)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Contains(t, rec.Body.String(), `"payload_too_large"`)
}
