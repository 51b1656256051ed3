package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"catercost/internal/apierror"
	"catercost/internal/costing"
	"catercost/internal/middleware"
	"catercost/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serveError(t *testing.T, err error) (*httptest.ResponseRecorder, apierror.APIError) {
	t.Helper()
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	r.GET("/", func(c *gin.Context) { writeError(c, err) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	var body apierror.APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestWriteError_ServiceSentinels(t *testing.T) {
	cases := []struct {
		err    error
		status int
		detail string
	}{
		{fmt.Errorf("%w: recipe", service.ErrNotFound), http.StatusNotFound, "recipe"},
		{fmt.Errorf("%w: end_date before start_date", service.ErrInvalidInput), http.StatusBadRequest, "end_date before start_date"},
		{fmt.Errorf("%w: event number already exists", service.ErrConflict), http.StatusConflict, "event number already exists"},
		{service.ErrUnavailable, http.StatusServiceUnavailable, "service unavailable"},
	}
	for _, tc := range cases {
		t.Run(tc.detail, func(t *testing.T) {
			w, body := serveError(t, tc.err)
			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, tc.detail, body.Detail)
		})
	}
}

func TestWriteError_CycleCarriesPath(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	err := fmt.Errorf("replace recipe: %w", &costing.EngineError{
		Code:    costing.ErrCodeCycleDetected,
		Message: "recipe composition contains a cycle",
		Path:    []uuid.UUID{a, b, a},
	})

	w, body := serveError(t, err)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "CYCLE_DETECTED", body.Code)
	assert.Equal(t, []string{a.String(), b.String(), a.String()}, body.Path)
}

func TestWriteError_EngineCodes(t *testing.T) {
	w, body := serveError(t, &costing.EngineError{Code: costing.ErrCodeRecipeNotFound, Message: "recipe not found"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "RECIPE_NOT_FOUND", body.Code)

	w, body = serveError(t, &costing.EngineError{Code: costing.ErrCodeInvalidTarget, Message: "target must be positive"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_SCALING_TARGET", body.Code)
}

func TestWriteError_UnknownIsInternal(t *testing.T) {
	w, body := serveError(t, errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", body.Detail)
}
