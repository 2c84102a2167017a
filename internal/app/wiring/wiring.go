// Package wiring registers every command and query handler on the in-memory
// buses and wraps them in the middleware pipeline.
package wiring

import (
	"log/slog"
	"time"

	"rara/internal/app/access"
	"rara/internal/app/commands"
	"rara/internal/app/dto"
	"rara/internal/app/handlers/availability"
	"rara/internal/app/handlers/bookings"
	"rara/internal/app/handlers/messaging"
	"rara/internal/app/handlers/properties"
	"rara/internal/app/handlers/reports"
	"rara/internal/app/handlers/reviews"
	"rara/internal/app/middleware"
	"rara/internal/app/outbox"
	"rara/internal/app/queries"
	"rara/internal/app/uow"
	domainmessaging "rara/internal/domain/messaging"
)

type Deps struct {
	UoWFactory    uow.UoWFactory
	Outbox        outbox.Outbox
	Encoder       outbox.EventEncoder
	Idempotency   middleware.IdempotencyStore
	Conversations domainmessaging.Repository
	Clock         func() time.Time
	Logger        *slog.Logger
}

type Buses struct {
	Commands  commands.Bus
	Queries   queries.Bus
	Validator middleware.Validator
}

// NewBuses builds the command pipeline
// Authorization → Validation → Idempotency → OutboxFlush → Transaction
// and the query pipeline Authorization → Validation. The flush wraps the
// transaction so the relay is woken only after commit.
func NewBuses(d Deps) Buses {
	encoder := d.Encoder
	if encoder == nil {
		encoder = outbox.JSONEventEncoder{}
	}
	clock := d.Clock

	cmdBus := commands.NewInMemoryBus()
	commands.RegisterHandler[properties.CreatePropertyCommand, dto.Property](cmdBus, properties.CreatePropertyCommand{}.Key(),
		&properties.CreatePropertyHandler{UoWFactory: d.UoWFactory, Outbox: d.Outbox, Encoder: encoder, Clock: clock})
	commands.RegisterHandler[properties.UpdatePropertyCommand, dto.Property](cmdBus, properties.UpdatePropertyCommand{}.Key(),
		&properties.UpdatePropertyHandler{UoWFactory: d.UoWFactory, Outbox: d.Outbox, Encoder: encoder, Clock: clock})
	commands.RegisterHandler[properties.DeletePropertyCommand, properties.DeletePropertyResult](cmdBus, properties.DeletePropertyCommand{}.Key(),
		&properties.DeletePropertyHandler{UoWFactory: d.UoWFactory, Outbox: d.Outbox, Encoder: encoder, Clock: clock})
	commands.RegisterHandler[properties.SetPropertyStatusCommand, dto.Property](cmdBus, properties.SetPropertyStatusCommand{}.Key(),
		&properties.SetPropertyStatusHandler{UoWFactory: d.UoWFactory, Outbox: d.Outbox, Encoder: encoder, Clock: clock})

	commands.RegisterHandler[bookings.RequestBookingCommand, *dto.Booking](cmdBus, bookings.RequestBookingCommand{}.Key(),
		&bookings.RequestBookingHandler{UoWFactory: d.UoWFactory, Outbox: d.Outbox, Encoder: encoder, Clock: clock})
	commands.RegisterHandler[bookings.UpdateBookingStatusCommand, dto.Booking](cmdBus, bookings.UpdateBookingStatusCommand{}.Key(),
		&bookings.UpdateBookingStatusHandler{UoWFactory: d.UoWFactory, Outbox: d.Outbox, Encoder: encoder, Clock: clock})
	commands.RegisterHandler[bookings.DeleteBookingCommand, bookings.DeleteBookingResult](cmdBus, bookings.DeleteBookingCommand{}.Key(),
		&bookings.DeleteBookingHandler{UoWFactory: d.UoWFactory, Outbox: d.Outbox, Encoder: encoder, Clock: clock})
	commands.RegisterHandler[bookings.CompleteStaysCommand, bookings.CompleteStaysResult](cmdBus, bookings.CompleteStaysCommand{}.Key(),
		&bookings.CompleteStaysHandler{UoWFactory: d.UoWFactory, Outbox: d.Outbox, Encoder: encoder, Clock: clock, Logger: d.Logger})

	commands.RegisterHandler[reviews.SubmitReviewCommand, dto.Review](cmdBus, reviews.SubmitReviewCommand{}.Key(),
		&reviews.SubmitReviewHandler{UoWFactory: d.UoWFactory, Outbox: d.Outbox, Encoder: encoder, Clock: clock})

	blocks := &availability.BlocksHandler{UoWFactory: d.UoWFactory, Outbox: d.Outbox, Encoder: encoder, Clock: clock}
	commands.RegisterHandler(cmdBus, availability.AddBlockCommand{}.Key(), blocks.AddHandler())
	commands.RegisterHandler(cmdBus, availability.RemoveBlockCommand{}.Key(), blocks.RemoveHandler())

	commands.RegisterHandler[messaging.StartConversationCommand, dto.Conversation](cmdBus, messaging.StartConversationCommand{}.Key(),
		&messaging.StartConversationHandler{UoWFactory: d.UoWFactory, Conversations: d.Conversations, Clock: clock})
	commands.RegisterHandler[messaging.PostMessageCommand, domainmessaging.Message](cmdBus, messaging.PostMessageCommand{}.Key(),
		&messaging.PostMessageHandler{Conversations: d.Conversations, Clock: clock})
	commands.RegisterHandler[messaging.NotifyBookingStatusCommand, domainmessaging.Message](cmdBus, messaging.NotifyBookingStatusCommand{}.Key(),
		&messaging.NotifyBookingStatusHandler{Conversations: d.Conversations, Clock: clock, Logger: d.Logger})

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler[properties.GetPropertyQuery, dto.Property](queryBus, properties.GetPropertyQuery{}.Key(),
		&properties.GetPropertyHandler{UoWFactory: d.UoWFactory})
	queries.RegisterHandler[properties.SearchCatalogQuery, dto.PropertyCollection](queryBus, properties.SearchCatalogQuery{}.Key(),
		&properties.SearchCatalogHandler{UoWFactory: d.UoWFactory, Clock: clock})
	lists := &properties.ListPropertiesHandler{UoWFactory: d.UoWFactory}
	queries.RegisterHandler(queryBus, properties.ListHostPropertiesQuery{}.Key(), lists.Host())
	queries.RegisterHandler(queryBus, properties.ListAdminPropertiesQuery{}.Key(), lists.Admin())

	bookingQueries := &bookings.BookingQueries{UoWFactory: d.UoWFactory}
	queries.RegisterHandler(queryBus, bookings.ListBookingsQuery{}.Key(), bookingQueries.ListHandler())
	queries.RegisterHandler(queryBus, bookings.GetBookingQuery{}.Key(), bookingQueries.GetHandler())

	queries.RegisterHandler(queryBus, availability.ListBlocksQuery{}.Key(), blocks.ListHandler())
	queries.RegisterHandler[availability.GetAvailabilityQuery, dto.Availability](queryBus, availability.GetAvailabilityQuery{}.Key(),
		&availability.GetAvailabilityHandler{UoWFactory: d.UoWFactory, Clock: clock})
	queries.RegisterHandler[availability.QuoteQuery, dto.Quote](queryBus, availability.QuoteQuery{}.Key(),
		&availability.QuoteHandler{UoWFactory: d.UoWFactory, Clock: clock})

	queries.RegisterHandler[reviews.ListReviewsQuery, reviews.ReviewCollection](queryBus, reviews.ListReviewsQuery{}.Key(),
		&reviews.ListReviewsHandler{UoWFactory: d.UoWFactory})
	queries.RegisterHandler[reports.EarningsQuery, dto.Earnings](queryBus, reports.EarningsQuery{}.Key(),
		&reports.EarningsHandler{UoWFactory: d.UoWFactory})
	queries.RegisterHandler[reports.OccupancyQuery, dto.Occupancy](queryBus, reports.OccupancyQuery{}.Key(),
		&reports.OccupancyHandler{UoWFactory: d.UoWFactory, Clock: clock})
	queries.RegisterHandler[messaging.ListConversationsQuery, dto.ConversationCollection](queryBus, messaging.ListConversationsQuery{}.Key(),
		&messaging.ListConversationsHandler{UoWFactory: d.UoWFactory, Conversations: d.Conversations})

	validator := middleware.NewStructValidator()
	authorizer := access.RoleAuthorizer{}
	var idempotency middleware.CommandMiddleware
	if d.Idempotency != nil {
		idempotency = middleware.Idempotency(d.Idempotency, nil)
	}

	return Buses{
		Commands: middleware.ChainCommands(cmdBus,
			middleware.Authorization(authorizer),
			middleware.Validation(validator),
			idempotency,
			middleware.OutboxFlush(d.Outbox, d.Logger),
			middleware.Transaction(d.UoWFactory, nil),
		),
		Queries: middleware.ChainQueries(queryBus,
			middleware.QueryAuthorization(authorizer),
			middleware.QueryValidation(validator),
		),
		Validator: validator,
	}
}
