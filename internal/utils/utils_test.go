package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Kind     string `json:"kind" validate:"omitempty,oneof=A B"`
}

func TestValidate_ReportsJSONFieldNames(t *testing.T) {
	err := Validate(sample{Email: "nope", Password: "short", Kind: "C"})
	require.Error(t, err)

	msg := FormatValidationError(err)
	assert.Contains(t, msg, "name is required")
	assert.Contains(t, msg, "Please add a valid email")
	assert.Contains(t, msg, "password must be at least 8 characters")
	assert.Contains(t, msg, "kind must be one of [A B]")
}

func TestValidate_Passes(t *testing.T) {
	assert.NoError(t, Validate(sample{Name: "n", Email: "n@example.com", Password: "longenough"}))
}

func TestErrorHelpers_WriteEnvelopeAndAbort(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		name   string
		send   func(*gin.Context)
		status int
		kind   string
	}{
		{"validation", func(c *gin.Context) { ValidationError(c, "m") }, http.StatusBadRequest, KindValidation},
		{"bad request", func(c *gin.Context) { BadRequest(c, "m") }, http.StatusBadRequest, KindBadRequest},
		{"unauthorized", func(c *gin.Context) { Unauthorized(c, "m") }, http.StatusUnauthorized, KindUnauthorized},
		{"forbidden", func(c *gin.Context) { Forbidden(c, "m") }, http.StatusForbidden, KindForbidden},
		{"not found", func(c *gin.Context) { NotFound(c, "m") }, http.StatusNotFound, KindNotFound},
		{"conflict", func(c *gin.Context) { Conflict(c, "m") }, http.StatusConflict, KindConflict},
		{"too many", func(c *gin.Context) { TooManyRequests(c, "m") }, http.StatusTooManyRequests, KindTooManyRequests},
		{"internal", func(c *gin.Context) { InternalServerError(c, "m") }, http.StatusInternalServerError, KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			tt.send(c)

			assert.True(t, c.IsAborted())
			assert.Equal(t, tt.status, w.Code)

			var body ResponseData
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.status, body.Status)
			assert.Equal(t, "m", body.Message)
			assert.Equal(t, tt.kind, body.Error)
			assert.Nil(t, body.Data)
		})
	}
}

func TestBindJSON_RejectsMalformedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{not json"))
	c.Request.Header.Set("Content-Type", "application/json")

	var s sample
	assert.False(t, BindJSON(c, &s))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
