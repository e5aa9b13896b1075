package mocks

import (
	"context"

	"github.com/minhngvn/cinema-booking-api/internal/domain"
)

type MockSeatRepo struct {
	GetSeatsByShowtimeFunc          func(ctx context.Context, showtimeID int) (*domain.ShowtimeSeats, error)
	GetSeatsByShowtimeAndLabelsFunc func(ctx context.Context, showtimeID int, seatIDs []domain.SeatID) (*domain.ShowtimeSeats, error)
}

func (m *MockSeatRepo) GetSeatsByShowtime(ctx context.Context, showtimeID int) (*domain.ShowtimeSeats, error) {
	return m.GetSeatsByShowtimeFunc(ctx, showtimeID)
}

func (m *MockSeatRepo) GetSeatsByShowtimeAndLabels(
	ctx context.Context,
	showtimeID int,
	seatIDs []domain.SeatID) (*domain.ShowtimeSeats, error) {

	return m.GetSeatsByShowtimeAndLabelsFunc(ctx, showtimeID, seatIDs)
}
