package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext(t *testing.T) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestOK(t *testing.T) {
	c, rec := newContext(t)
	require.NoError(t, OK(c, map[string]string{"k": "v"}))

	assert.Equal(t, http.StatusOK, rec.Code)
	env := decode(t, rec)
	assert.True(t, env.Success)
	assert.NotNil(t, env.Data)
	assert.Empty(t, env.Message)
	assert.Nil(t, env.Pagination)
}

func TestFailEnvelope(t *testing.T) {
	c, rec := newContext(t)
	require.NoError(t, BadRequest(c, "nope"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decode(t, rec)
	assert.False(t, env.Success)
	assert.Equal(t, "nope", env.Message)
	assert.Nil(t, env.Data)
}

func TestPaginatedPageMath(t *testing.T) {
	tests := []struct {
		total     int64
		limit     int
		wantPages int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{25, 10, 3},
	}

	for _, tt := range tests {
		c, rec := newContext(t)
		require.NoError(t, Paginated(c, []int{}, 1, tt.limit, tt.total))

		env := decode(t, rec)
		require.NotNil(t, env.Pagination)
		assert.Equal(t, tt.wantPages, env.Pagination.Pages, "total=%d", tt.total)
		assert.Equal(t, tt.total, env.Pagination.Total)
	}
}

func TestMessage(t *testing.T) {
	c, rec := newContext(t)
	require.NoError(t, Message(c, "done"))

	env := decode(t, rec)
	assert.True(t, env.Success)
	assert.Equal(t, "done", env.Message)
}
