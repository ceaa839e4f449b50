package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/account-security/internal/domain"
	"github.com/spec-kit/account-security/internal/domain/security"
	"github.com/spec-kit/account-security/internal/domain/user"
)

func TestToDomainErrorMapsKinds(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"format", domain.NewFormatError("email", "invalid address"), http.StatusBadRequest, "VALIDATION_FAILED"},
		{"rule", &domain.RuleViolation{Message: "email already registered", Code: 5}, http.StatusUnprocessableEntity, "BUSINESS_RULE_VIOLATED"},
		{"not found", security.ErrNoActiveChallenge, http.StatusNotFound, "NOT_FOUND"},
		{"wrapped not found", fmt.Errorf("load: %w", user.ErrUserNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"conflict", &security.AlreadyUsedError{UsedAt: time.Now()}, http.StatusConflict, "CONFLICT"},
		{"unauthenticated", user.ErrInvalidCredentials, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"fiber", fiber.NewError(http.StatusBadRequest, "invalid payload"), http.StatusBadRequest, "Bad Request"},
		{"infrastructure", errors.New("connection reset"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			de := ToDomainError(tc.err)
			require.NotNil(t, de)
			assert.Equal(t, tc.status, de.HTTPStatus)
			assert.Equal(t, tc.code, de.Code)
		})
	}
}

func TestToDomainErrorCarriesRuleCode(t *testing.T) {
	de := ToDomainError(fmt.Errorf("sign up: %w", user.EmailTakenViolation()))

	require.NotNil(t, de)
	assert.Equal(t, 5, de.Details["rule"])
	assert.Equal(t, "email already registered", de.Message)
}

func TestToDomainErrorHidesInternalMessage(t *testing.T) {
	de := ToDomainError(errors.New("dial tcp 10.0.0.1:5432: refused"))

	assert.Equal(t, "internal server error", de.Message)
	assert.Nil(t, ToDomainError(nil))
}
