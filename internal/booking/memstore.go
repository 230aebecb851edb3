package booking

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/drivelink/drivelink-backend/internal/models"
)

// memStore keeps the whole workflow state in process memory. It backs the
// test suite and the dev mode that runs without Postgres, the same way the
// storage service falls back to local disk when S3 is not configured.
type memStore struct {
	mu       sync.Mutex
	nextID   uint
	requests map[uint]*models.BookingRequest
	bookings map[uint]*models.Booking
	drivers  map[uint]*models.User
}

// NewMemStore returns an empty in-memory Store.
func NewMemStore() *memStore {
	return &memStore{
		nextID:   1,
		requests: make(map[uint]*models.BookingRequest),
		bookings: make(map[uint]*models.Booking),
		drivers:  make(map[uint]*models.User),
	}
}

// PutDriver registers a driver profile for candidate resolution.
func (s *memStore) PutDriver(u *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *u
	if cp.ID == 0 {
		cp.ID = s.nextID
		s.nextID++
	}
	s.drivers[cp.ID] = &cp
}

// RemoveDriver drops a driver profile, leaving dangling applications behind.
func (s *memStore) RemoveDriver(id uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drivers, id)
}

func copyRequest(r *models.BookingRequest) *models.BookingRequest {
	cp := *r
	cp.Applications = make([]models.Application, len(r.Applications))
	copy(cp.Applications, r.Applications)
	if r.SelectedDriverID != nil {
		id := *r.SelectedDriverID
		cp.SelectedDriverID = &id
	}
	return &cp
}

func (s *memStore) CreateRequest(ctx context.Context, req *models.BookingRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	req.ID = s.nextID
	s.nextID++
	req.CreatedAt = time.Now()
	s.requests[req.ID] = copyRequest(req)
	return nil
}

func (s *memStore) GetRequest(ctx context.Context, id uint) (*models.BookingRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyRequest(req), nil
}

func (s *memStore) ListOpenRequests(ctx context.Context, limit int) ([]models.BookingRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.BookingRequest
	for _, req := range s.requests {
		if req.Closed || req.SelectedDriverID != nil {
			continue
		}
		out = append(out, *copyRequest(req))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memStore) ListRequestsByClient(ctx context.Context, clientID uint) ([]models.BookingRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.BookingRequest
	for _, req := range s.requests {
		if req.ClientID == clientID {
			out = append(out, *copyRequest(req))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *memStore) AddApplication(ctx context.Context, requestID, driverID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[requestID]
	if !ok {
		return ErrNotFound
	}
	for _, a := range req.Applications {
		if a.DriverID == driverID {
			return nil
		}
	}
	app := models.Application{RequestID: requestID, DriverID: driverID}
	app.ID = s.nextID
	s.nextID++
	app.CreatedAt = time.Now()
	req.Applications = append(req.Applications, app)
	return nil
}

func (s *memStore) SelectDriver(ctx context.Context, requestID, driverID uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[requestID]
	if !ok {
		return false, ErrNotFound
	}
	if req.Closed || req.SelectedDriverID != nil {
		return false, nil
	}
	id := driverID
	req.SelectedDriverID = &id
	return true, nil
}

func (s *memStore) FinalizeRequest(ctx context.Context, requestID uint, b *models.Booking) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[requestID]
	if !ok {
		return false, ErrNotFound
	}
	if req.Closed {
		return false, nil
	}
	req.Closed = true
	b.ID = s.nextID
	s.nextID++
	b.CreatedAt = time.Now()
	cp := *b
	s.bookings[b.ID] = &cp
	return true, nil
}

func (s *memStore) GetBooking(ctx context.Context, id uint) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (s *memStore) ListBookingsByClient(ctx context.Context, clientID uint) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Booking
	for _, b := range s.bookings {
		if b.ClientID == clientID {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *memStore) ListBookingsByDriver(ctx context.Context, driverID uint) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Booking
	for _, b := range s.bookings {
		if b.DriverID == driverID {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *memStore) UpdateBookingStatus(ctx context.Context, id uint, from, to models.BookingStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return false, ErrNotFound
	}
	if b.Status != from {
		return false, nil
	}
	b.Status = to
	return true, nil
}

func (s *memStore) GetDriver(ctx context.Context, id uint) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.drivers[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}
