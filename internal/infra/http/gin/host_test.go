package ginserver

import (
	"net/http"
	"testing"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rara/internal/app/dto"
)

func (a *testAPI) blockedDays(listingID string) []string {
	a.t.Helper()
	rec := a.do(http.MethodGet, "/api/listings/"+listingID+"/availability?from=2030-06-01&to=2030-06-30", "", nil)
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())
	var av dto.Availability
	decode(a.t, rec, &av)
	return av.BlockedDays
}

func TestHostBlocks(t *testing.T) {
	api := newTestAPI(t)
	admin := api.signup("admin@rara.dev")
	host := api.signup("host@rara.dev")
	guest := api.signup("guest@rara.dev")
	listing := api.publishedListing(host, admin)
	blocks := "/api/listings/" + listing.ID + "/blocks"

	rec := api.do(http.MethodPost, blocks, host, gin.H{"from": "2030-06-20", "to": "2030-06-23", "note": "repainting"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var block dto.Block
	decode(t, rec, &block)
	assert.Equal(t, "2030-06-20", block.From)
	assert.Equal(t, "repainting", block.Note)

	days := api.blockedDays(listing.ID)
	assert.Subset(t, days, []string{"2030-06-20", "2030-06-21", "2030-06-22"})
	assert.NotContains(t, days, "2030-06-23")

	rec = api.do(http.MethodPost, "/api/bookings", guest, gin.H{"propertyId": listing.ID, "from": "2030-06-22", "to": "2030-06-24"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = api.do(http.MethodGet, blocks, guest, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = api.do(http.MethodPost, blocks, guest, gin.H{"from": "2030-06-25", "to": "2030-06-26"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = api.do(http.MethodGet, blocks, admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(http.MethodPost, blocks, host, gin.H{"from": "2030-05-20", "to": "2030-05-22"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = api.do(http.MethodPost, blocks, host, gin.H{"from": "2030-06-02", "to": "2031-06-10"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	stay := api.book(guest, listing.ID, "2030-06-10", "2030-06-12")
	require.Equal(t, http.StatusOK, api.setBookingStatus(admin, stay.ID, "Confirmed").Code)
	rec = api.do(http.MethodPost, blocks, host, gin.H{"from": "2030-06-11", "to": "2030-06-13"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = api.do(http.MethodDelete, blocks+"/"+block.ID, host, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var remaining dto.BlockCollection
	decode(t, rec, &remaining)
	assert.Empty(t, remaining.Items)
	assert.NotContains(t, api.blockedDays(listing.ID), "2030-06-20")
}

func TestDeleteListingWaitsForActiveStays(t *testing.T) {
	api := newTestAPI(t)
	admin := api.signup("admin@rara.dev")
	host := api.signup("host@rara.dev")
	guest := api.signup("guest@rara.dev")

	listing := api.publishedListing(host, admin)
	pending := api.book(guest, listing.ID, "2030-06-10", "2030-06-12")

	rec := api.do(http.MethodDelete, "/api/listings/"+listing.ID, host, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	rec = api.do(http.MethodDelete, "/api/listings/"+listing.ID, guest, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(http.MethodPut, "/api/bookings/"+pending.ID, guest, gin.H{"status": "Cancelled"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = api.do(http.MethodDelete, "/api/listings/"+listing.ID, host, nil)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	rec = api.do(http.MethodGet, "/api/listings/"+listing.ID, host, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	second := api.publishedListing(host, admin)
	stay := api.book(guest, second.ID, "2030-06-10", "2030-06-12")
	require.Equal(t, http.StatusOK, api.setBookingStatus(admin, stay.ID, "Confirmed").Code)
	rec = api.do(http.MethodDelete, "/api/listings/"+second.ID, host, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	api.now = time.Date(2030, time.June, 12, 11, 0, 0, 0, time.UTC)
	rec = api.do(http.MethodDelete, "/api/listings/"+second.ID, host, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
}

func TestHostReports(t *testing.T) {
	api := newTestAPI(t)
	admin := api.signup("admin@rara.dev")
	host := api.signup("host@rara.dev")
	guest := api.signup("guest@rara.dev")
	listing := api.publishedListing(host, admin)

	upcoming := api.book(guest, listing.ID, "2030-06-10", "2030-06-15")
	require.Equal(t, http.StatusOK, api.setBookingStatus(admin, upcoming.ID, "Confirmed").Code)
	done := api.book(guest, listing.ID, "2030-06-20", "2030-06-22")
	for _, status := range []string{"Confirmed", "Completed"} {
		require.Equal(t, http.StatusOK, api.setBookingStatus(admin, done.ID, status).Code)
	}
	api.book(guest, listing.ID, "2030-06-25", "2030-06-27")

	rec := api.do(http.MethodGet, "/api/host/listings/"+listing.ID+"/earnings", host, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var earnings dto.Earnings
	decode(t, rec, &earnings)
	assert.Equal(t, int64(440000), earnings.Completed)
	assert.Equal(t, int64(1100000), earnings.Upcoming)
	assert.Equal(t, int64(1540000), earnings.Total)
	assert.Equal(t, []dto.MonthlyEarnings{{Month: "2030-06", Amount: 440000}}, earnings.Monthly)

	rec = api.do(http.MethodGet, "/api/host/listings/"+listing.ID+"/occupancy?from=2030-06-01&to=2030-07-01", host, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var occ dto.Occupancy
	decode(t, rec, &occ)
	assert.Equal(t, 30, occ.Nights)
	assert.Equal(t, 7, occ.BookedNights)
	assert.InDelta(t, 7.0/30.0, occ.Rate, 1e-9)
	assert.Len(t, occ.BlockedDays, 7)
	assert.NotContains(t, occ.BlockedDays, "2030-06-25")

	rec = api.do(http.MethodGet, "/api/host/listings/"+listing.ID+"/occupancy", host, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &occ)
	assert.Equal(t, "2030-06-01", occ.From)
	assert.Equal(t, "2030-07-01", occ.To)

	for _, path := range []string{"/earnings", "/occupancy"} {
		rec = api.do(http.MethodGet, "/api/host/listings/"+listing.ID+path, guest, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code, path)
		rec = api.do(http.MethodGet, "/api/host/listings/"+listing.ID+path, admin, nil)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}
