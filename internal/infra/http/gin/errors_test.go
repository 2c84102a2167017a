package ginserver

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"rara/internal/app/access"
	"rara/internal/app/handlers/bookings"
	"rara/internal/app/middleware"
	"rara/internal/app/services/assistant"
	"rara/internal/app/services/auth"
	domainavailability "rara/internal/domain/availability"
	domainbooking "rara/internal/domain/booking"
	domainmessaging "rara/internal/domain/messaging"
	"rara/internal/domain/pricing"
	domainproperty "rara/internal/domain/property"
	"rara/internal/domain/shared/daterange"
	"rara/internal/domain/shared/money"
	domainuser "rara/internal/domain/user"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"email taken", auth.ErrEmailExists, http.StatusBadRequest, "Email already exists"},
		{"bad credentials", auth.ErrInvalidCredentials, http.StatusBadRequest, "Invalid credentials"},
		{"anonymous", access.ErrUnauthenticated, http.StatusUnauthorized, "authentication required"},
		{"own listing", bookings.ErrOwnListing, http.StatusForbidden, bookings.ErrOwnListing.Error()},
		{"wrapped not found", fmt.Errorf("load: %w", domainproperty.ErrNotFound), http.StatusNotFound, "load: " + domainproperty.ErrNotFound.Error()},
		{"overlap", domainavailability.ErrUnavailable, http.StatusConflict, domainavailability.ErrUnavailable.Error()},
		{"validation", &middleware.ValidationError{Detail: "Title is required"}, http.StatusBadRequest, "Title is required"},
		{"generator down", assistant.ErrNotConfigured, http.StatusBadGateway, assistant.ErrNotConfigured.Error()},
		{"stay too long", pricing.ErrStayTooLong, http.StatusBadRequest, pricing.ErrStayTooLong.Error()},
		{"window too long", daterange.ErrRangeTooLong, http.StatusBadRequest, daterange.ErrRangeTooLong.Error()},
		{"amount overflow", money.ErrOverflow, http.StatusBadRequest, money.ErrOverflow.Error()},
		{"message too long", domainmessaging.ErrTextTooLong, http.StatusBadRequest, domainmessaging.ErrTextTooLong.Error()},
		{"guest missing", domainbooking.ErrGuestRequired, http.StatusBadRequest, domainbooking.ErrGuestRequired.Error()},
		{"host missing", domainbooking.ErrHostRequired, http.StatusBadRequest, domainbooking.ErrHostRequired.Error()},
		{"no credentials", domainuser.ErrCredentials, http.StatusBadRequest, domainuser.ErrCredentials.Error()},
		{"rate limited", errRateLimited, http.StatusTooManyRequests, "too many requests"},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError, "internal error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, msg := statusFor(tc.err)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.msg, msg)
		})
	}
}
