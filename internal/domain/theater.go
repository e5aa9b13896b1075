package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Theater struct {
	ID      int
	Name    string
	Address string
	City    string
	Halls   []Hall
}

type Hall struct {
	ID        int
	TheaterID int
	Name      string
	Showtimes []Showtime
}

// Showtime is one scheduled screening of a movie in a specific hall. Its
// identity is the (movie, hall, start time) triple; the seat-status rows
// derived from the hall layout are created alongside it.
type Showtime struct {
	ID          int
	MovieID     int
	MovieTitle  string
	HallID      int
	HallName    string
	TheaterID   int
	TheaterName string
	StartTime   time.Time
	BasePrice   decimal.Decimal
}

type ShowtimeRepository interface {
	GetShowtimesByMovieAndDate(ctx context.Context, movieID int, date time.Time) ([]TheaterShowtimes, error)
	GetById(ctx context.Context, id int) (*Showtime, error)
}

// TheaterShowtimes groups a movie's showtimes on one date by theater and hall.
type TheaterShowtimes struct {
	Theater   Theater
	Showtimes []Showtime
}
