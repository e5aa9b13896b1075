package mocks

import (
	"context"
	"time"

	"github.com/minhngvn/cinema-booking-api/internal/domain"
)

type MockShowtimeRepo struct {
	GetShowtimesByMovieAndDateFunc func(ctx context.Context, movieID int, date time.Time) ([]domain.TheaterShowtimes, error)
	GetByIdFunc                    func(ctx context.Context, id int) (*domain.Showtime, error)
}

func (m *MockShowtimeRepo) GetShowtimesByMovieAndDate(
	ctx context.Context,
	movieID int,
	date time.Time) ([]domain.TheaterShowtimes, error) {

	return m.GetShowtimesByMovieAndDateFunc(ctx, movieID, date)
}

func (m *MockShowtimeRepo) GetById(ctx context.Context, id int) (*domain.Showtime, error) {
	return m.GetByIdFunc(ctx, id)
}
