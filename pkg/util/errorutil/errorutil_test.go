package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestToDomainError(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))

	conflict := NewConflict("taken", map[string]any{"field": "email"})
	wrapped := fmt.Errorf("create: %w", conflict)
	de := ToDomainError(wrapped)
	assert.Equal(t, CodeConflict, de.Code)
	assert.Equal(t, http.StatusConflict, de.HTTPStatus)
	assert.Equal(t, "email", de.Details["field"])

	de = ToDomainError(gorm.ErrRecordNotFound)
	assert.Equal(t, CodeNotFound, de.Code)
	assert.Equal(t, http.StatusNotFound, de.HTTPStatus)

	boom := errors.New("boom")
	de = ToDomainError(boom)
	assert.Equal(t, CodeInternal, de.Code)
	assert.ErrorIs(t, de, boom)
}

func TestHasCode(t *testing.T) {
	assert.True(t, HasCode(NewForbidden("no"), CodeForbidden))
	assert.True(t, HasCode(fmt.Errorf("wrap: %w", NewInvalidReference("recruiter_id", 9)), CodeInvalidReference))
	assert.False(t, HasCode(errors.New("plain"), CodeForbidden))
}

func TestFromStatus(t *testing.T) {
	tests := []struct {
		status int
		code   string
	}{
		{http.StatusBadRequest, CodeValidation},
		{http.StatusUnauthorized, CodeUnauthorized},
		{http.StatusForbidden, CodeForbidden},
		{http.StatusNotFound, CodeNotFound},
		{http.StatusConflict, CodeConflict},
		{http.StatusTooManyRequests, "REQUEST_FAILED"},
		{http.StatusBadGateway, CodeInternal},
	}
	for _, tt := range tests {
		de := FromStatus(tt.status, "x")
		assert.Equal(t, tt.code, de.Code, "status %d", tt.status)
		assert.Equal(t, tt.status, de.HTTPStatus)
	}
}
