package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"rara/internal/app/access"
	"rara/internal/app/handlers/properties"
	"rara/internal/app/handlers/reviews"
	"rara/internal/app/middleware"
	"rara/internal/app/services/assistant"
	"rara/internal/app/services/auth"
	"rara/internal/app/uow"
	domainavailability "rara/internal/domain/availability"
	domainbooking "rara/internal/domain/booking"
	domainmessaging "rara/internal/domain/messaging"
	"rara/internal/domain/pricing"
	domainproperty "rara/internal/domain/property"
	domainreviews "rara/internal/domain/reviews"
	"rara/internal/domain/shared/daterange"
	"rara/internal/domain/shared/money"
	domainuser "rara/internal/domain/user"
	"rara/internal/infra/obs"
	"rara/internal/infra/storage/s3"
)

var errRateLimited = errors.New("too many requests")

// errorRule maps a family of sentinel errors to a status. Message overrides the
// error text when set.
type errorRule struct {
	status  int
	message string
	targets []error
}

var errorRules = []errorRule{
	{status: http.StatusBadRequest, message: "Email already exists", targets: []error{auth.ErrEmailExists}},
	{status: http.StatusBadRequest, message: "Invalid credentials", targets: []error{auth.ErrInvalidCredentials}},
	{status: http.StatusUnauthorized, message: "authentication required", targets: []error{
		access.ErrUnauthenticated,
		auth.ErrInvalidToken,
		auth.ErrTokenRequired,
	}},
	{status: http.StatusForbidden, targets: []error{access.ErrForbidden, domainmessaging.ErrNotParticipant}},
	{status: http.StatusNotFound, targets: []error{
		domainproperty.ErrNotFound,
		domainbooking.ErrNotFound,
		domainuser.ErrNotFound,
		domainmessaging.ErrNotFound,
		domainavailability.ErrBlockNotFound,
	}},
	{status: http.StatusConflict, targets: []error{
		domainavailability.ErrUnavailable,
		domainavailability.ErrOverlappingBlock,
		domainbooking.ErrInvalidTransition,
		domainbooking.ErrNotDeletable,
		domainreviews.ErrDuplicateBooking,
		domainproperty.ErrNotBookable,
		domainuser.ErrEmailAlreadyUsed,
		properties.ErrActiveBookings,
		uow.ErrConcurrentUpdate,
	}},
	{status: http.StatusTooManyRequests, targets: []error{errRateLimited}},
	{status: http.StatusBadGateway, targets: []error{
		assistant.ErrExternalService,
		s3.ErrNotConfigured,
	}},
	{status: http.StatusBadRequest, targets: []error{
		middleware.ErrValidation,
		auth.ErrPasswordTooShort,
		assistant.ErrInvalidPhoto,
		s3.ErrUnsupportedContent,
		daterange.ErrInvalidRange,
		daterange.ErrInvalidDay,
		domainavailability.ErrDateInPast,
		pricing.ErrNoNights,
		pricing.ErrInvalidRate,
		pricing.ErrCurrencyUnset,
		pricing.ErrStayTooLong,
		pricing.ErrRateTooHigh,
		daterange.ErrRangeTooLong,
		money.ErrInvalidCurrency,
		money.ErrCurrencyMismatch,
		money.ErrNegativeAmount,
		money.ErrOverflow,
		reviews.ErrStayNotCompleted,
		reviews.ErrBookingMismatch,
		domainreviews.ErrInvalidRating,
		domainreviews.ErrCommentLength,
		domainreviews.ErrBookingRequired,
		domainmessaging.ErrEmptyText,
		domainmessaging.ErrTextTooLong,
		domainmessaging.ErrParticipants,
		domainproperty.ErrTitleRequired,
		domainproperty.ErrTypeRequired,
		domainproperty.ErrLocationRequired,
		domainproperty.ErrNightlyRate,
		domainproperty.ErrCapacity,
		domainproperty.ErrInvalidStatus,
		domainbooking.ErrInvalidStatus,
		domainbooking.ErrGuestRequired,
		domainbooking.ErrHostRequired,
		domainuser.ErrEmailRequired,
		domainuser.ErrNameRequired,
		domainuser.ErrCredentials,
		properties.ErrUnknownStatus,
	}},
}

// statusFor returns the HTTP status and client message for err.
func statusFor(err error) (int, string) {
	for _, rule := range errorRules {
		for _, target := range rule.targets {
			if errors.Is(err, target) {
				msg := rule.message
				if msg == "" {
					msg = err.Error()
				}
				return rule.status, msg
			}
		}
	}
	return http.StatusInternalServerError, "internal error"
}

// respondError writes the {"message"} body. Unmapped errors are logged with the
// request id and hidden behind a generic message.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	status, msg := statusFor(err)
	if status == http.StatusInternalServerError && logger != nil {
		logger.ErrorContext(c.Request.Context(), "request failed",
			"error", err,
			"path", c.FullPath(),
			"request_id", obs.RequestIDFromContext(c.Request.Context()),
		)
	}
	c.AbortWithStatusJSON(status, gin.H{"message": msg})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": msg})
}
