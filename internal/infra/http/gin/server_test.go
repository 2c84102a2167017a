package ginserver

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"rara/internal/app/dto"
	"rara/internal/app/handlers/reviews"
	authsvc "rara/internal/app/services/auth"
	"rara/internal/app/wiring"
	"rara/internal/infra/config"
	"rara/internal/infra/obs"
	"rara/internal/infra/security"
	"rara/internal/infra/storage/memory"
)

var testToday = time.Date(2030, time.June, 1, 9, 0, 0, 0, time.UTC)

type testAPI struct {
	t             *testing.T
	router        *gin.Engine
	buses         wiring.Buses
	conversations *memory.ConversationRepository
	now           time.Time
}

// authOption adjusts the auth handler before the router is built.
type authOption func(*AuthHandler)

func newTestAPI(t *testing.T, opts ...authOption) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store := memory.NewStore()
	box := memory.NewOutbox()
	store.UseOutbox(box)
	factory := memory.Factory{Store: store}
	api := &testAPI{t: t, conversations: memory.NewConversationRepository(), now: testToday}
	clock := func() time.Time { return api.now }

	api.buses = wiring.NewBuses(wiring.Deps{
		UoWFactory:    factory,
		Outbox:        box,
		Idempotency:   memory.NewIdempotencyStore(time.Hour),
		Conversations: api.conversations,
		Clock:         clock,
		Logger:        logger,
	})
	buses := api.buses
	authService := &authsvc.Service{
		UoWFactory:  factory,
		Passwords:   security.BcryptHasher{Cost: bcrypt.MinCost},
		Tokens:      security.JWTIssuer{Secret: []byte("test-secret"), TTL: time.Hour, Issuer: "rara"},
		AdminEmails: []string{"admin@rara.dev"},
		Logger:      logger,
	}
	authHandler := AuthHandler{Service: authService, Logger: logger}
	for _, opt := range opts {
		opt(&authHandler)
	}
	handlers := Handlers{
		Auth:    authHandler,
		Listing: ListingHandler{Commands: buses.Commands, Queries: buses.Queries, Logger: logger},
		Review:  ReviewHandler{Commands: buses.Commands, Queries: buses.Queries, Logger: logger},
		Block:   BlockHandler{Commands: buses.Commands, Queries: buses.Queries, Logger: logger},
		Booking: BookingHandler{Commands: buses.Commands, Queries: buses.Queries, Logger: logger},
		Host:    HostHandler{Queries: buses.Queries, Logger: logger},
		Admin:   AdminHandler{Commands: buses.Commands, Queries: buses.Queries, Logger: logger},
		Chat:    ChatHandler{Commands: buses.Commands, Queries: buses.Queries, Logger: logger},

		AuthMiddleware: AuthMiddleware{Service: authService, Logger: logger}.Handle,
	}
	api.router = NewRouter(config.Config{Env: "test"}, obs.Middleware{Logger: logger}, obs.Health{}, handlers)
	return api
}

func (a *testAPI) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) signup(email string) string {
	a.t.Helper()
	return a.register(email).Token
}

func (a *testAPI) register(email string) dto.AuthResult {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/api/auth/signup", "", gin.H{
		"email":     email,
		"password":  "correct-horse",
		"firstName": "Test",
		"lastName":  "User",
	})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	var res dto.AuthResult
	decode(a.t, rec, &res)
	require.NotEmpty(a.t, res.Token)
	return res
}

func (a *testAPI) createListing(token string) dto.Property {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/api/listings", token, gin.H{
		"title":         "Cliffside villa",
		"type":          "Villa",
		"location":      "Uluwatu, Bali",
		"coords":        gin.H{"lat": -8.8, "lng": 115.1},
		"pricePerNight": 200000,
		"maxGuests":     4,
		"bedrooms":      2,
		"beds":          2,
		"bathrooms":     2,
		"amenities":     []string{"Wifi", "Pool"},
	})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	var p dto.Property
	decode(a.t, rec, &p)
	return p
}

// publishedListing creates a listing for host and has admin publish it.
func (a *testAPI) publishedListing(host, admin string) dto.Property {
	a.t.Helper()
	listing := a.createListing(host)
	rec := a.do(http.MethodPatch, "/api/admin/listings/"+listing.ID+"/status", admin, gin.H{"status": "Published"})
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())
	return listing
}

func (a *testAPI) book(guest, listingID, from, to string) dto.Booking {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/api/bookings", guest, gin.H{"propertyId": listingID, "from": from, "to": to})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	var b dto.Booking
	decode(a.t, rec, &b)
	return b
}

func (a *testAPI) setBookingStatus(token, bookingID, status string) *httptest.ResponseRecorder {
	a.t.Helper()
	return a.do(http.MethodPatch, "/api/admin/bookings/"+bookingID+"/status", token, gin.H{"status": status})
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
}

func message(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	decode(t, rec, &body)
	return body.Message
}

func TestBookingFlow(t *testing.T) {
	api := newTestAPI(t)
	admin := api.signup("admin@rara.dev")
	host := api.signup("host@rara.dev")
	guest := api.signup("guest@rara.dev")
	other := api.signup("other@rara.dev")

	listing := api.createListing(host)
	assert.Equal(t, "Pending Review", listing.Status)

	rec := api.do(http.MethodGet, "/api/listings", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var catalog dto.PropertyCollection
	decode(t, rec, &catalog)
	assert.Empty(t, catalog.Items)

	rec = api.do(http.MethodPatch, "/api/admin/listings/"+listing.ID+"/status", admin, gin.H{"status": "Published"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = api.do(http.MethodGet, "/api/listings", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &catalog)
	require.Len(t, catalog.Items, 1)
	assert.Equal(t, listing.ID, catalog.Items[0].ID)

	rec = api.do(http.MethodPost, "/api/bookings", guest, gin.H{
		"propertyId": listing.ID,
		"dates":      gin.H{"from": "2030-06-10", "to": "2030-06-15"},
		"amount":     1,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var booking dto.Booking
	decode(t, rec, &booking)
	assert.Equal(t, 5, booking.Nights)
	assert.Equal(t, int64(1100000), booking.Amount)
	assert.Equal(t, "Pending Confirmation", booking.Status)

	rec = api.do(http.MethodPut, "/api/bookings/"+booking.ID, host, gin.H{"status": "Confirmed"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(http.MethodPatch, "/api/admin/bookings/"+booking.ID+"/status", admin, gin.H{"status": "Confirmed"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = api.do(http.MethodPost, "/api/bookings", other, gin.H{
		"propertyId": listing.ID,
		"from":       "2030-06-12",
		"to":         "2030-06-14",
	})
	assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())

	rec = api.do(http.MethodPost, "/api/bookings", other, gin.H{
		"propertyId": listing.ID,
		"from":       "2030-06-15",
		"to":         "2030-06-17",
	})
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = api.do(http.MethodGet, "/api/listings/"+listing.ID+"/availability?from=2030-06-01&to=2030-06-30", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestReviewRequiresCompletedStay(t *testing.T) {
	api := newTestAPI(t)
	admin := api.signup("admin@rara.dev")
	host := api.signup("host@rara.dev")
	guest := api.signup("guest@rara.dev")

	listing := api.createListing(host)
	rec := api.do(http.MethodPatch, "/api/admin/listings/"+listing.ID+"/status", admin, gin.H{"status": "Published"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(http.MethodPost, "/api/bookings", guest, gin.H{
		"propertyId": listing.ID,
		"dates":      gin.H{"from": "2030-06-10", "to": "2030-06-12"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var booking dto.Booking
	decode(t, rec, &booking)

	review := gin.H{"bookingId": booking.ID, "rating": 5, "comment": "Wonderful stay, would return."}
	rec = api.do(http.MethodPost, "/api/listings/"+listing.ID+"/reviews", guest, review)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	for _, status := range []string{"Confirmed", "Completed"} {
		rec = api.do(http.MethodPatch, "/api/admin/bookings/"+booking.ID+"/status", admin, gin.H{"status": status})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	rec = api.do(http.MethodPost, "/api/listings/"+listing.ID+"/reviews", host, review)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(http.MethodPost, "/api/listings/"+listing.ID+"/reviews", guest, review)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = api.do(http.MethodPost, "/api/listings/"+listing.ID+"/reviews", guest, review)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = api.do(http.MethodGet, "/api/listings/"+listing.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var p dto.Property
	decode(t, rec, &p)
	assert.Equal(t, 1, p.ReviewsCount)
	assert.Equal(t, 5.0, p.Rating)

	rec = api.do(http.MethodGet, "/api/listings/"+listing.ID+"/reviews", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list reviews.ReviewCollection
	decode(t, rec, &list)
	require.Len(t, list.Items, 1)
	assert.Equal(t, map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 1}, list.Distribution)

	rec = api.do(http.MethodPatch, "/api/admin/bookings/"+booking.ID+"/status", admin, gin.H{"status": "Confirmed"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAuthErrorsAreMapped(t *testing.T) {
	api := newTestAPI(t)
	api.signup("guest@rara.dev")

	rec := api.do(http.MethodPost, "/api/auth/signup", "", gin.H{"email": "GUEST@rara.dev", "password": "correct-horse"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Email already exists", message(t, rec))

	rec = api.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "guest@rara.dev", "password": "wrong-horse"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid credentials", message(t, rec))

	rec = api.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "guest@rara.dev", "password": "correct-horse"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(http.MethodGet, "/api/bookings", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAccessRules(t *testing.T) {
	api := newTestAPI(t)
	host := api.signup("host@rara.dev")
	guest := api.signup("guest@rara.dev")
	listing := api.createListing(host)

	rec := api.do(http.MethodPost, "/api/listings", "", gin.H{"title": "x"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(http.MethodGet, "/api/admin/listings", guest, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(http.MethodPut, "/api/listings/"+listing.ID, guest, gin.H{"title": "Mine now"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(http.MethodGet, "/api/listings/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(http.MethodGet, "/api/listings/"+listing.ID, guest, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(http.MethodGet, "/api/listings/"+listing.ID, host, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(http.MethodPost, "/api/bookings", guest, gin.H{
		"propertyId": listing.ID,
		"from":       "2030-06-10",
		"to":         "2030-06-12",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = api.do(http.MethodPost, "/api/listings", host, gin.H{"title": "Missing fields"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIdempotentBookingReplays(t *testing.T) {
	api := newTestAPI(t)
	admin := api.signup("admin@rara.dev")
	host := api.signup("host@rara.dev")
	guest := api.signup("guest@rara.dev")
	listing := api.createListing(host)
	rec := api.do(http.MethodPatch, "/api/admin/listings/"+listing.ID+"/status", admin, gin.H{"status": "Published"})
	require.Equal(t, http.StatusOK, rec.Code)

	send := func() dto.Booking {
		raw, err := json.Marshal(gin.H{"propertyId": listing.ID, "from": "2030-07-01", "to": "2030-07-03"})
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, "/api/bookings", bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+guest)
		req.Header.Set("Idempotency-Key", "retry-1")
		out := httptest.NewRecorder()
		api.router.ServeHTTP(out, req)
		require.Equal(t, http.StatusCreated, out.Code, out.Body.String())
		var b dto.Booking
		decode(t, out, &b)
		return b
	}
	first := send()
	second := send()
	assert.Equal(t, first.ID, second.ID)

	rec = api.do(http.MethodGet, "/api/bookings", guest, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list dto.BookingCollection
	decode(t, rec, &list)
	assert.Len(t, list.Items, 1)
}

func TestHealthEndpoints(t *testing.T) {
	api := newTestAPI(t)

	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/livez", "", nil).Code)
	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/readyz", "", nil).Code)
}
