package mocks

import (
	"context"

	"github.com/minhngvn/cinema-booking-api/internal/domain"
)

type MockBookingRepo struct {
	domain.BookingRepository
	ReserveFunc              func(ctx context.Context, booking *domain.Booking) error
	GetBookedSeatIDsFunc     func(ctx context.Context, showtimeID int) ([]int, error)
	GetSummariesByUserIdFunc func(ctx context.Context, userID int, pagination domain.Pagination) ([]domain.BookingSummary, *domain.Metadata, error)
	GetByIdAndUserIdFunc     func(ctx context.Context, bookingID, userID int) (*domain.BookingDetail, error)
}

func (m *MockBookingRepo) Reserve(ctx context.Context, booking *domain.Booking) error {
	return m.ReserveFunc(ctx, booking)
}

func (m *MockBookingRepo) GetBookedSeatIDs(ctx context.Context, showtimeID int) ([]int, error) {
	return m.GetBookedSeatIDsFunc(ctx, showtimeID)
}

func (m *MockBookingRepo) GetSummariesByUserId(
	ctx context.Context,
	userID int,
	pagination domain.Pagination) ([]domain.BookingSummary, *domain.Metadata, error) {

	return m.GetSummariesByUserIdFunc(ctx, userID, pagination)
}

func (m *MockBookingRepo) GetByIdAndUserId(ctx context.Context, bookingID, userID int) (*domain.BookingDetail, error) {
	return m.GetByIdAndUserIdFunc(ctx, bookingID, userID)
}
