package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/drivelink/drivelink-backend/internal/models"
)

const (
	// OpenFeedLimit bounds the driver-facing feed to the most recent requests.
	OpenFeedLimit = 30

	opTimeout    = 5 * time.Second
	retryBackoff = 100 * time.Millisecond
)

// Service implements the booking lifecycle: request intake, driver
// application, client selection, driver finalization and status updates.
// Every method is a single serializable operation against the store; the
// selection and finalization steps rely on the store's conditional writes so
// that concurrent callers cannot both win.
type Service struct {
	store Store
}

// NewService builds a Service on top of a Store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// CreateRequestInput carries the client-supplied fields of a new request.
type CreateRequestInput struct {
	StartDate    time.Time
	EndDate      time.Time
	Route        string
	Requirements string
}

// CreateRequest opens a new booking request for the client. The request is
// immediately visible in the open feed with an empty candidate list.
func (s *Service) CreateRequest(ctx context.Context, clientID uint, in CreateRequestInput) (*models.BookingRequest, error) {
	if clientID == 0 {
		return nil, fmt.Errorf("%w: missing client id", ErrValidation)
	}
	if in.Route == "" {
		return nil, fmt.Errorf("%w: route is required", ErrValidation)
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return nil, fmt.Errorf("%w: start and end dates are required", ErrValidation)
	}
	if !in.EndDate.After(in.StartDate) {
		return nil, fmt.Errorf("%w: end date must be after start date", ErrValidation)
	}

	req := &models.BookingRequest{
		ClientID:     clientID,
		StartDate:    in.StartDate,
		EndDate:      in.EndDate,
		Route:        in.Route,
		Requirements: in.Requirements,
	}
	err := s.run(ctx, "create request", func(ctx context.Context) error {
		return s.store.CreateRequest(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	log.Printf("create request: request %d opened by client %d", req.ID, clientID)
	return req, nil
}

// ListOpenRequests returns the global most-recent-first feed of open
// requests, capped at OpenFeedLimit. Every driver sees the same feed.
func (s *Service) ListOpenRequests(ctx context.Context) ([]models.BookingRequest, error) {
	var requests []models.BookingRequest
	err := s.run(ctx, "list open requests", func(ctx context.Context) error {
		var err error
		requests, err = s.store.ListOpenRequests(ctx, OpenFeedLimit)
		return err
	})
	return requests, err
}

// ListRequestsByClient returns the client's own requests, newest first.
func (s *Service) ListRequestsByClient(ctx context.Context, clientID uint) ([]models.BookingRequest, error) {
	var requests []models.BookingRequest
	err := s.run(ctx, "list client requests", func(ctx context.Context) error {
		var err error
		requests, err = s.store.ListRequestsByClient(ctx, clientID)
		return err
	})
	return requests, err
}

// Apply appends the driver to the request's candidate list. Applying twice
// is a no-op; applying after a driver has been selected or the request was
// finalized returns ErrConflict.
func (s *Service) Apply(ctx context.Context, requestID, driverID uint) error {
	if requestID == 0 || driverID == 0 {
		return fmt.Errorf("%w: missing request or driver id", ErrValidation)
	}
	return s.run(ctx, "apply", func(ctx context.Context) error {
		req, err := s.store.GetRequest(ctx, requestID)
		if err != nil {
			return err
		}
		if req.Closed || req.SelectedDriverID != nil {
			return fmt.Errorf("%w: request %d is no longer accepting applications", ErrConflict, requestID)
		}
		if req.HasCandidate(driverID) {
			return nil
		}
		if err := s.store.AddApplication(ctx, requestID, driverID); err != nil {
			return err
		}
		log.Printf("apply: driver %d applied to request %d", driverID, requestID)
		return nil
	})
}

// Candidates resolves the request's applications to public driver summaries,
// in application order. Candidate ids that no longer resolve to a driver
// profile are skipped.
func (s *Service) Candidates(ctx context.Context, requestID uint) ([]models.DriverSummary, error) {
	if requestID == 0 {
		return nil, fmt.Errorf("%w: missing request id", ErrValidation)
	}
	var summaries []models.DriverSummary
	err := s.run(ctx, "list candidates", func(ctx context.Context) error {
		req, err := s.store.GetRequest(ctx, requestID)
		if err != nil {
			return err
		}
		summaries = summaries[:0]
		for _, app := range req.Applications {
			driver, err := s.store.GetDriver(ctx, app.DriverID)
			if errors.Is(err, ErrNotFound) {
				log.Printf("list candidates: request %d references missing driver %d, skipping", requestID, app.DriverID)
				continue
			}
			if err != nil {
				return err
			}
			summaries = append(summaries, driver.Summary())
		}
		return nil
	})
	return summaries, err
}

// SelectDriver sets the request's selected driver exactly once. The caller
// must own the request and the driver must be a candidate. Under concurrent
// selection attempts exactly one caller succeeds; the rest get ErrConflict.
func (s *Service) SelectDriver(ctx context.Context, requestID, clientID, driverID uint) error {
	if requestID == 0 || driverID == 0 {
		return fmt.Errorf("%w: missing request or driver id", ErrValidation)
	}
	return s.run(ctx, "select driver", func(ctx context.Context) error {
		req, err := s.store.GetRequest(ctx, requestID)
		if err != nil {
			return err
		}
		if req.ClientID != clientID {
			return fmt.Errorf("%w: request %d does not belong to client %d", ErrAuthorization, requestID, clientID)
		}
		if req.Closed {
			return fmt.Errorf("%w: request %d is already finalized", ErrConflict, requestID)
		}
		if !req.HasCandidate(driverID) {
			return fmt.Errorf("%w: driver %d has not applied to request %d", ErrValidation, driverID, requestID)
		}
		won, err := s.store.SelectDriver(ctx, requestID, driverID)
		if err != nil {
			return err
		}
		if !won {
			return fmt.Errorf("%w: request %d already has a selected driver", ErrConflict, requestID)
		}
		log.Printf("select driver: client %d selected driver %d on request %d", clientID, driverID, requestID)
		return nil
	})
}

// Finalize converts the selected driver's commitment into a Booking. Only
// the driver the client selected may finalize; the booking copies the
// request's window, route and requirements and starts in the pending status.
// The request is closed in the same write, so a second finalization gets
// ErrConflict.
func (s *Service) Finalize(ctx context.Context, requestID, driverID uint) (*models.Booking, error) {
	if requestID == 0 || driverID == 0 {
		return nil, fmt.Errorf("%w: missing request or driver id", ErrValidation)
	}
	var booking *models.Booking
	err := s.run(ctx, "finalize", func(ctx context.Context) error {
		req, err := s.store.GetRequest(ctx, requestID)
		if err != nil {
			return err
		}
		if req.SelectedDriverID == nil {
			return fmt.Errorf("%w: request %d has no selected driver", ErrConflict, requestID)
		}
		if *req.SelectedDriverID != driverID {
			return fmt.Errorf("%w: driver %d is not the selected driver for request %d", ErrAuthorization, driverID, requestID)
		}
		if req.Closed {
			return fmt.Errorf("%w: request %d is already finalized", ErrConflict, requestID)
		}

		b := &models.Booking{
			RequestID:    req.ID,
			DriverID:     driverID,
			ClientID:     req.ClientID,
			StartDate:    req.StartDate,
			EndDate:      req.EndDate,
			Route:        req.Route,
			Requirements: req.Requirements,
			Status:       models.BookingStatusPending,
		}
		won, err := s.store.FinalizeRequest(ctx, requestID, b)
		if err != nil {
			return err
		}
		if !won {
			return fmt.Errorf("%w: request %d is already finalized", ErrConflict, requestID)
		}
		booking = b
		log.Printf("finalize: driver %d finalized request %d into booking %d", driverID, requestID, b.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// UpdateBookingStatus moves the booking along the status transition table.
// Only the booking's driver or client may write. The write is conditional on
// the status the caller observed, so a concurrent update returns ErrConflict
// instead of silently overwriting.
func (s *Service) UpdateBookingStatus(ctx context.Context, bookingID, callerID uint, to models.BookingStatus) error {
	if bookingID == 0 || callerID == 0 {
		return fmt.Errorf("%w: missing booking or caller id", ErrValidation)
	}
	if !models.ValidBookingStatus(to) {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, to)
	}
	return s.run(ctx, "update booking status", func(ctx context.Context) error {
		b, err := s.store.GetBooking(ctx, bookingID)
		if err != nil {
			return err
		}
		if b.DriverID != callerID && b.ClientID != callerID {
			return fmt.Errorf("%w: caller %d is not a party to booking %d", ErrAuthorization, callerID, bookingID)
		}
		if !models.CanTransition(b.Status, to) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, b.Status, to)
		}
		won, err := s.store.UpdateBookingStatus(ctx, bookingID, b.Status, to)
		if err != nil {
			return err
		}
		if !won {
			return fmt.Errorf("%w: booking %d changed status concurrently", ErrConflict, bookingID)
		}
		log.Printf("update booking status: booking %d moved %s -> %s by user %d", bookingID, b.Status, to, callerID)
		return nil
	})
}

// GetBooking returns the booking, restricted to its two parties.
func (s *Service) GetBooking(ctx context.Context, bookingID, callerID uint) (*models.Booking, error) {
	var booking *models.Booking
	err := s.run(ctx, "get booking", func(ctx context.Context) error {
		b, err := s.store.GetBooking(ctx, bookingID)
		if err != nil {
			return err
		}
		if b.DriverID != callerID && b.ClientID != callerID {
			return fmt.Errorf("%w: caller %d is not a party to booking %d", ErrAuthorization, callerID, bookingID)
		}
		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// ListBookingsByClient returns the client's bookings, newest first.
func (s *Service) ListBookingsByClient(ctx context.Context, clientID uint) ([]models.Booking, error) {
	var bookings []models.Booking
	err := s.run(ctx, "list client bookings", func(ctx context.Context) error {
		var err error
		bookings, err = s.store.ListBookingsByClient(ctx, clientID)
		return err
	})
	return bookings, err
}

// ListBookingsByDriver returns the driver's bookings, newest first.
func (s *Service) ListBookingsByDriver(ctx context.Context, driverID uint) ([]models.Booking, error) {
	var bookings []models.Booking
	err := s.run(ctx, "list driver bookings", func(ctx context.Context) error {
		var err error
		bookings, err = s.store.ListBookingsByDriver(ctx, driverID)
		return err
	})
	return bookings, err
}

// run executes fn under the operation timeout, retrying once on transient
// store errors. Workflow errors pass through untouched; anything else is
// surfaced as ErrPersistence after the retry.
func (s *Service) run(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	err := fn(ctx)
	if err == nil || isWorkflowErr(err) {
		return err
	}

	log.Printf("%s: transient store error, retrying once: %v", op, err)
	select {
	case <-time.After(retryBackoff):
	case <-ctx.Done():
		return fmt.Errorf("%s: %w: %v", op, ErrPersistence, ctx.Err())
	}

	err = fn(ctx)
	if err == nil || isWorkflowErr(err) {
		return err
	}
	return fmt.Errorf("%s: %w: %v", op, ErrPersistence, err)
}

func isWorkflowErr(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrAuthorization) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrInvalidTransition)
}
