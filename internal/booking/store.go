package booking

import (
	"context"
	"errors"

	"github.com/drivelink/drivelink-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the persistence boundary of the booking workflow. Implementations
// translate their own "row missing" errors to ErrNotFound; any other error is
// treated as transient by the service and retried once.
type Store interface {
	CreateRequest(ctx context.Context, req *models.BookingRequest) error
	GetRequest(ctx context.Context, id uint) (*models.BookingRequest, error)
	ListOpenRequests(ctx context.Context, limit int) ([]models.BookingRequest, error)
	ListRequestsByClient(ctx context.Context, clientID uint) ([]models.BookingRequest, error)

	// AddApplication appends a driver to the request's candidate list.
	// Appending the same driver twice is a no-op.
	AddApplication(ctx context.Context, requestID, driverID uint) error

	// SelectDriver sets the selected driver if and only if none is set yet.
	// Returns false when the conditional write did not apply.
	SelectDriver(ctx context.Context, requestID, driverID uint) (bool, error)

	// FinalizeRequest atomically closes the request and creates the booking.
	// Returns false when the request was already closed.
	FinalizeRequest(ctx context.Context, requestID uint, b *models.Booking) (bool, error)

	GetBooking(ctx context.Context, id uint) (*models.Booking, error)
	ListBookingsByClient(ctx context.Context, clientID uint) ([]models.Booking, error)
	ListBookingsByDriver(ctx context.Context, driverID uint) ([]models.Booking, error)

	// UpdateBookingStatus writes the new status if the booking still has the
	// expected current status. Returns false when the conditional write did
	// not apply.
	UpdateBookingStatus(ctx context.Context, id uint, from, to models.BookingStatus) (bool, error)

	GetDriver(ctx context.Context, id uint) (*models.User, error)
}

// gormStore is the Postgres-backed store used in production.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore wraps a gorm connection in a Store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) CreateRequest(ctx context.Context, req *models.BookingRequest) error {
	return s.db.WithContext(ctx).Create(req).Error
}

func (s *gormStore) GetRequest(ctx context.Context, id uint) (*models.BookingRequest, error) {
	var req models.BookingRequest
	err := s.db.WithContext(ctx).
		Preload("Applications", func(db *gorm.DB) *gorm.DB {
			return db.Order("applications.created_at ASC")
		}).
		First(&req, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (s *gormStore) ListOpenRequests(ctx context.Context, limit int) ([]models.BookingRequest, error) {
	var requests []models.BookingRequest
	err := s.db.WithContext(ctx).
		Where("closed = ? AND selected_driver_id IS NULL", false).
		Order("created_at DESC").
		Limit(limit).
		Preload("Applications").
		Find(&requests).Error
	return requests, err
}

func (s *gormStore) ListRequestsByClient(ctx context.Context, clientID uint) ([]models.BookingRequest, error) {
	var requests []models.BookingRequest
	err := s.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("created_at DESC").
		Preload("Applications").
		Find(&requests).Error
	return requests, err
}

func (s *gormStore) AddApplication(ctx context.Context, requestID, driverID uint) error {
	app := models.Application{RequestID: requestID, DriverID: driverID}
	// The unique (request_id, driver_id) index makes the append idempotent.
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&app).Error
}

func (s *gormStore) SelectDriver(ctx context.Context, requestID, driverID uint) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&models.BookingRequest{}).
		Where("id = ? AND selected_driver_id IS NULL AND closed = ?", requestID, false).
		Update("selected_driver_id", driverID)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (s *gormStore) FinalizeRequest(ctx context.Context, requestID uint, b *models.Booking) (bool, error) {
	won := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.BookingRequest{}).
			Where("id = ? AND closed = ?", requestID, false).
			Update("closed", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		if err := tx.Create(b).Error; err != nil {
			return err
		}
		won = true
		return nil
	})
	return won, err
}

func (s *gormStore) GetBooking(ctx context.Context, id uint) (*models.Booking, error) {
	var b models.Booking
	err := s.db.WithContext(ctx).
		Preload("Driver").
		Preload("Client").
		First(&b, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *gormStore) ListBookingsByClient(ctx context.Context, clientID uint) ([]models.Booking, error) {
	var bookings []models.Booking
	err := s.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("created_at DESC").
		Preload("Driver").
		Find(&bookings).Error
	return bookings, err
}

func (s *gormStore) ListBookingsByDriver(ctx context.Context, driverID uint) ([]models.Booking, error) {
	var bookings []models.Booking
	err := s.db.WithContext(ctx).
		Where("driver_id = ?", driverID).
		Order("created_at DESC").
		Preload("Client").
		Find(&bookings).Error
	return bookings, err
}

func (s *gormStore) UpdateBookingStatus(ctx context.Context, id uint, from, to models.BookingStatus) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (s *gormStore) GetDriver(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Where("id = ? AND role = ?", id, models.RoleDriver).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
