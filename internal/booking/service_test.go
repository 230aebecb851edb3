package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/drivelink/drivelink-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() (*Service, *memStore) {
	store := NewMemStore()
	return NewService(store), store
}

func seedDriver(store *memStore, id uint, username string) {
	u := &models.User{
		Username:        username,
		Role:            models.RoleDriver,
		Phase:           models.PhaseActive,
		Rating:          4.5,
		YearsExperience: 3,
		LicenseType:     "C1",
	}
	u.ID = id
	store.PutDriver(u)
}

func validInput() CreateRequestInput {
	start := time.Date(2026, 9, 10, 8, 0, 0, 0, time.UTC)
	return CreateRequestInput{
		StartDate:    start,
		EndDate:      start.Add(48 * time.Hour),
		Route:        "Kampala - Gulu",
		Requirements: "refrigerated truck, 10t",
	}
}

func TestCreateRequestValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	tests := []struct {
		name     string
		clientID uint
		mutate   func(*CreateRequestInput)
	}{
		{"missing client", 0, func(in *CreateRequestInput) {}},
		{"missing route", 7, func(in *CreateRequestInput) { in.Route = "" }},
		{"missing dates", 7, func(in *CreateRequestInput) {
			in.StartDate = time.Time{}
			in.EndDate = time.Time{}
		}},
		{"end before start", 7, func(in *CreateRequestInput) {
			in.EndDate = in.StartDate.Add(-time.Hour)
		}},
		{"end equals start", 7, func(in *CreateRequestInput) {
			in.EndDate = in.StartDate
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			_, err := svc.CreateRequest(ctx, tt.clientID, in)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestCreateRequestAppearsInOpenFeed(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	req, err := svc.CreateRequest(ctx, 7, validInput())
	require.NoError(t, err)
	require.NotZero(t, req.ID)
	assert.Nil(t, req.SelectedDriverID)
	assert.False(t, req.Closed)
	assert.Empty(t, req.Applications)

	feed, err := svc.ListOpenRequests(ctx)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, req.ID, feed[0].ID)
}

func TestOpenFeedOrderAndLimit(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	total := OpenFeedLimit + 5
	var lastID uint
	for i := 0; i < total; i++ {
		req, err := svc.CreateRequest(ctx, 7, validInput())
		require.NoError(t, err)
		lastID = req.ID
	}

	feed, err := svc.ListOpenRequests(ctx)
	require.NoError(t, err)
	require.Len(t, feed, OpenFeedLimit)

	// Newest first, so the most recently created request leads the feed.
	assert.Equal(t, lastID, feed[0].ID)
	for i := 1; i < len(feed); i++ {
		assert.Greater(t, feed[i-1].ID, feed[i].ID)
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	seedDriver(store, 100, "driver-a")

	req, err := svc.CreateRequest(ctx, 7, validInput())
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.Apply(ctx, req.ID, 100))
	}

	got, err := store.GetRequest(ctx, req.ID)
	require.NoError(t, err)
	require.Len(t, got.Applications, 1)
	assert.Equal(t, uint(100), got.Applications[0].DriverID)
}

func TestApplyAfterSelectionConflicts(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	seedDriver(store, 100, "driver-a")
	seedDriver(store, 101, "driver-b")

	req, err := svc.CreateRequest(ctx, 7, validInput())
	require.NoError(t, err)
	require.NoError(t, svc.Apply(ctx, req.ID, 100))
	require.NoError(t, svc.SelectDriver(ctx, req.ID, 7, 100))

	err = svc.Apply(ctx, req.ID, 101)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestApplyUnknownRequest(t *testing.T) {
	svc, _ := newTestService()
	err := svc.Apply(context.Background(), 999, 100)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCandidatesInApplicationOrder(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	seedDriver(store, 100, "driver-a")
	seedDriver(store, 101, "driver-b")
	seedDriver(store, 102, "driver-c")

	req, err := svc.CreateRequest(ctx, 7, validInput())
	require.NoError(t, err)
	for _, id := range []uint{101, 100, 102} {
		require.NoError(t, svc.Apply(ctx, req.ID, id))
	}

	candidates, err := svc.Candidates(ctx, req.ID)
	require.NoError(t, err)
	require.Len(t, candidates, 3)
	assert.Equal(t, uint(101), candidates[0].ID)
	assert.Equal(t, uint(100), candidates[1].ID)
	assert.Equal(t, uint(102), candidates[2].ID)
	assert.Equal(t, "driver-b", candidates[0].Username)
}

func TestCandidatesSkipMissingDrivers(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	seedDriver(store, 100, "driver-a")
	seedDriver(store, 101, "driver-b")

	req, err := svc.CreateRequest(ctx, 7, validInput())
	require.NoError(t, err)
	require.NoError(t, svc.Apply(ctx, req.ID, 100))
	require.NoError(t, svc.Apply(ctx, req.ID, 101))

	store.RemoveDriver(100)

	candidates, err := svc.Candidates(ctx, req.ID)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, uint(101), candidates[0].ID)
}

func TestSelectDriverChecks(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	seedDriver(store, 100, "driver-a")
	seedDriver(store, 101, "driver-b")

	req, err := svc.CreateRequest(ctx, 7, validInput())
	require.NoError(t, err)
	require.NoError(t, svc.Apply(ctx, req.ID, 100))

	// Only the owner may select.
	err = svc.SelectDriver(ctx, req.ID, 8, 100)
	assert.ErrorIs(t, err, ErrAuthorization)

	// The driver must have applied.
	err = svc.SelectDriver(ctx, req.ID, 7, 101)
	assert.ErrorIs(t, err, ErrValidation)

	require.NoError(t, svc.SelectDriver(ctx, req.ID, 7, 100))

	// A second selection, even of the same driver, conflicts.
	err = svc.SelectDriver(ctx, req.ID, 7, 100)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestConcurrentSelectionHasOneWinner(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	const drivers = 16
	req, err := svc.CreateRequest(ctx, 7, validInput())
	require.NoError(t, err)
	for i := uint(1); i <= drivers; i++ {
		seedDriver(store, 100+i, "driver")
		require.NoError(t, svc.Apply(ctx, req.ID, 100+i))
	}

	var wg sync.WaitGroup
	errs := make([]error, drivers)
	for i := 0; i < drivers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = svc.SelectDriver(ctx, req.ID, 7, uint(101+i))
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, ErrConflict)
		}
	}
	assert.Equal(t, 1, winners)

	got, err := store.GetRequest(ctx, req.ID)
	require.NoError(t, err)
	require.NotNil(t, got.SelectedDriverID)
}

func TestFinalizeAuthorization(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	seedDriver(store, 100, "driver-a")
	seedDriver(store, 101, "driver-b")

	req, err := svc.CreateRequest(ctx, 7, validInput())
	require.NoError(t, err)
	require.NoError(t, svc.Apply(ctx, req.ID, 100))
	require.NoError(t, svc.Apply(ctx, req.ID, 101))

	// Nobody selected yet.
	_, err = svc.Finalize(ctx, req.ID, 100)
	assert.ErrorIs(t, err, ErrConflict)

	require.NoError(t, svc.SelectDriver(ctx, req.ID, 7, 100))

	// Only the selected driver may finalize.
	_, err = svc.Finalize(ctx, req.ID, 101)
	assert.ErrorIs(t, err, ErrAuthorization)

	booking, err := svc.Finalize(ctx, req.ID, 100)
	require.NoError(t, err)
	require.NotNil(t, booking)

	// A second finalization conflicts.
	_, err = svc.Finalize(ctx, req.ID, 100)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestFinalizeCopiesRequestFields(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	seedDriver(store, 100, "driver-a")

	in := validInput()
	req, err := svc.CreateRequest(ctx, 7, in)
	require.NoError(t, err)
	require.NoError(t, svc.Apply(ctx, req.ID, 100))
	require.NoError(t, svc.SelectDriver(ctx, req.ID, 7, 100))

	booking, err := svc.Finalize(ctx, req.ID, 100)
	require.NoError(t, err)

	assert.Equal(t, req.ID, booking.RequestID)
	assert.Equal(t, uint(100), booking.DriverID)
	assert.Equal(t, uint(7), booking.ClientID)
	assert.True(t, booking.StartDate.Equal(in.StartDate))
	assert.True(t, booking.EndDate.Equal(in.EndDate))
	assert.Equal(t, in.Route, booking.Route)
	assert.Equal(t, in.Requirements, booking.Requirements)
	assert.Equal(t, models.BookingStatusPending, booking.Status)

	// The finalized request leaves the open feed.
	feed, err := svc.ListOpenRequests(ctx)
	require.NoError(t, err)
	assert.Empty(t, feed)
}

func TestUpdateBookingStatus(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	seedDriver(store, 100, "driver-a")

	req, err := svc.CreateRequest(ctx, 7, validInput())
	require.NoError(t, err)
	require.NoError(t, svc.Apply(ctx, req.ID, 100))
	require.NoError(t, svc.SelectDriver(ctx, req.ID, 7, 100))
	booking, err := svc.Finalize(ctx, req.ID, 100)
	require.NoError(t, err)

	// Outsiders cannot touch the booking.
	err = svc.UpdateBookingStatus(ctx, booking.ID, 999, models.BookingStatusConfirmed)
	assert.ErrorIs(t, err, ErrAuthorization)

	// Unknown status is rejected before any store access.
	err = svc.UpdateBookingStatus(ctx, booking.ID, 100, models.BookingStatus("paused"))
	assert.ErrorIs(t, err, ErrValidation)

	// Skipping a step is an invalid transition.
	err = svc.UpdateBookingStatus(ctx, booking.ID, 100, models.BookingStatusActive)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	require.NoError(t, svc.UpdateBookingStatus(ctx, booking.ID, 100, models.BookingStatusConfirmed))
	require.NoError(t, svc.UpdateBookingStatus(ctx, booking.ID, 7, models.BookingStatusActive))

	// Active bookings can no longer be cancelled.
	err = svc.UpdateBookingStatus(ctx, booking.ID, 7, models.BookingStatusCancelled)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	require.NoError(t, svc.UpdateBookingStatus(ctx, booking.ID, 100, models.BookingStatusCompleted))

	got, err := svc.GetBooking(ctx, booking.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCompleted, got.Status)
}

func TestGetBookingRestrictedToParties(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	seedDriver(store, 100, "driver-a")

	req, err := svc.CreateRequest(ctx, 7, validInput())
	require.NoError(t, err)
	require.NoError(t, svc.Apply(ctx, req.ID, 100))
	require.NoError(t, svc.SelectDriver(ctx, req.ID, 7, 100))
	booking, err := svc.Finalize(ctx, req.ID, 100)
	require.NoError(t, err)

	_, err = svc.GetBooking(ctx, booking.ID, 999)
	assert.ErrorIs(t, err, ErrAuthorization)

	for _, caller := range []uint{7, 100} {
		got, err := svc.GetBooking(ctx, booking.ID, caller)
		require.NoError(t, err)
		assert.Equal(t, booking.ID, got.ID)
	}
}

func TestFullLifecycle(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	seedDriver(store, 100, "driver-a")
	seedDriver(store, 101, "driver-b")
	seedDriver(store, 102, "driver-c")

	req, err := svc.CreateRequest(ctx, 7, validInput())
	require.NoError(t, err)

	for _, id := range []uint{100, 101, 102} {
		require.NoError(t, svc.Apply(ctx, req.ID, id))
	}

	candidates, err := svc.Candidates(ctx, req.ID)
	require.NoError(t, err)
	require.Len(t, candidates, 3)

	require.NoError(t, svc.SelectDriver(ctx, req.ID, 7, 101))

	// A later selection of a different candidate loses.
	err = svc.SelectDriver(ctx, req.ID, 7, 100)
	assert.ErrorIs(t, err, ErrConflict)

	booking, err := svc.Finalize(ctx, req.ID, 101)
	require.NoError(t, err)
	assert.Equal(t, uint(101), booking.DriverID)

	// The losing candidates cannot act on the closed request.
	err = svc.Apply(ctx, req.ID, 100)
	assert.ErrorIs(t, err, ErrConflict)
	_, err = svc.Finalize(ctx, req.ID, 102)
	assert.ErrorIs(t, err, ErrAuthorization)

	// Walk the booking through a full happy path.
	for _, to := range []models.BookingStatus{
		models.BookingStatusConfirmed,
		models.BookingStatusActive,
		models.BookingStatusCompleted,
	} {
		require.NoError(t, svc.UpdateBookingStatus(ctx, booking.ID, 101, to))
	}

	clientBookings, err := svc.ListBookingsByClient(ctx, 7)
	require.NoError(t, err)
	require.Len(t, clientBookings, 1)
	assert.Equal(t, models.BookingStatusCompleted, clientBookings[0].Status)

	driverBookings, err := svc.ListBookingsByDriver(ctx, 101)
	require.NoError(t, err)
	require.Len(t, driverBookings, 1)
}
