package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONSerializer(t *testing.T) {
	e := echo.New()
	e.JSONSerializer = JSONSerializer{}

	t.Run("serialize", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

		require.NoError(t, c.JSON(http.StatusOK, map[string]any{"data": nil, "relations": nil}))
		assert.JSONEq(t, `{"data":null,"relations":null}`, rec.Body.String())
		assert.Contains(t, rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON)
	})

	t.Run("deserialize", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"collection":"Report","data":{"id":"r1"}}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		c := e.NewContext(req, httptest.NewRecorder())

		var body struct {
			Collection string `json:"collection"`
			Data       any    `json:"data"`
		}
		require.NoError(t, c.Bind(&body))
		assert.Equal(t, "Report", body.Collection)
		assert.Equal(t, map[string]any{"id": "r1"}, body.Data)
	})

	t.Run("syntax error is a bad request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"collection":`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		c := e.NewContext(req, httptest.NewRecorder())

		var body map[string]any
		err := c.Bind(&body)
		require.Error(t, err)

		httpErr, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, httpErr.Code)
	})
}
