package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shareit-app/service-booking/pkg/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestError_MapsDomainCodes(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{domain.NewNotFoundError("Booking", "1"), http.StatusNotFound, "NOT_FOUND"},
		{fmt.Errorf("wrapped: %w", domain.NewForbiddenError("no")), http.StatusForbidden, "FORBIDDEN"},
		{domain.NewConflictError("busy"), http.StatusConflict, "CONFLICT"},
		{domain.NewInvalidStateError("APPROVED", "REJECTED"), http.StatusConflict, "INVALID_STATE"},
		{domain.NewValidationError("bad"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{errors.New("db down"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		Error(c, tc.err)

		assert.Equal(t, tc.status, w.Code)
		var body Envelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.False(t, body.Success)
		require.NotNil(t, body.Error)
		assert.Equal(t, tc.code, body.Error.Code)
	}
}

func TestError_UsesDomainMessage(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	Error(c, domain.NewNotFoundError("Item", "7"))

	var body Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Item not found: 7", body.Error.Message)
}

func TestPaginated(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	Paginated(c, []string{"a", "b"}, 5, 1, 2)

	var body Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Meta)
	assert.Equal(t, 3, body.Meta.TotalPages)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	Paginated(c, []string{}, 0, 1, 0)
	body = Envelope{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Meta)
	assert.Equal(t, 0, body.Meta.TotalPages)
}
