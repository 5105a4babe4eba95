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

	"github.com/versatil/versatil-backend/internal/platform/apierr"
)

func respond(t *testing.T, err error) (int, ErrorEnvelope) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	RespondErr(c, err)
	var env ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec.Code, env
}

func TestRespondErr(t *testing.T) {
	status, env := respond(t, fmt.Errorf("wrapped: %w", apierr.NotFound("assistant_not_found", "Assistant not found")))
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "assistant_not_found", env.Error.Code)
	assert.Equal(t, "Assistant not found", env.Error.Message)

	status, env = respond(t, apierr.Conflict(http.StatusBadRequest, "email_taken", "Email already registered"))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "email_taken", env.Error.Code)

	status, env = respond(t, errors.New("pq: connection refused to 10.0.0.1"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "internal_error", env.Error.Code)
	assert.NotContains(t, env.Error.Message, "10.0.0.1")

	status, env = respond(t, fmt.Errorf("ctx: %w", apierr.ErrForbidden))
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "forbidden", env.Error.Code)
}
