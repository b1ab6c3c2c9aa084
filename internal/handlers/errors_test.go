package handlers

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

	"hms-server/internal/services"
	"hms-server/internal/utils"
)

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		err         error
		wantStatus  int
		wantKind    string
		wantMessage string
	}{
		{services.ValidationError("name is required"), http.StatusBadRequest, utils.KindValidation, "name is required"},
		{services.ErrNotPending, http.StatusBadRequest, utils.KindBadRequest, "Cannot cancel a confirmed or completed appointment"},
		{services.ErrInvalidCredentials, http.StatusUnauthorized, utils.KindUnauthorized, "Invalid credentials"},
		{services.ErrAppointmentNotFound, http.StatusNotFound, utils.KindNotFound, services.ErrAppointmentNotFound.Error()},
		{fmt.Errorf("create appointment: %w", services.ErrSlotTaken), http.StatusConflict, utils.KindConflict, "Appointment time slot is already booked."},
		{errors.New("connection refused"), http.StatusInternalServerError, utils.KindInternal, "Server error"},
	}
	for _, tt := range tests {
		t.Run(tt.wantMessage, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			respondError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.True(t, c.IsAborted())
			var body utils.ResponseData
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantKind, body.Error)
			assert.Equal(t, tt.wantMessage, body.Message)
		})
	}
}

func TestCallerWithoutAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	id, ok := caller(c)
	assert.False(t, ok)
	assert.Empty(t, id)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
