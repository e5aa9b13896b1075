package domain

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

var seatLabelRgx = regexp.MustCompile(`^([A-Z])([1-9][0-9]{0,2})$`)

// SeatID identifies a physical seat within a hall by its row label and seat
// number, e.g. C7. The pair is unique per hall and fixed at hall-creation
// time.
type SeatID struct {
	Row    string
	Number int
}

func (s SeatID) String() string {
	return fmt.Sprintf("%s%d", s.Row, s.Number)
}

// ParseSeatID parses a seat label of the form "<row><number>", e.g. "C7".
func ParseSeatID(label string) (SeatID, error) {
	matches := seatLabelRgx.FindStringSubmatch(label)
	if matches == nil {
		return SeatID{}, fmt.Errorf("invalid seat label: %q", label)
	}

	number, err := strconv.Atoi(matches[2])
	if err != nil {
		return SeatID{}, fmt.Errorf("invalid seat number in label %q", label)
	}

	return SeatID{Row: matches[1], Number: number}, nil
}

type SeatStatus string

const (
	SeatStatusAvailable SeatStatus = "available"
	SeatStatusBooked    SeatStatus = "booked"
)

type Seat struct {
	ID         int
	Row        string
	Number     int
	Type       string
	ExtraPrice decimal.Decimal
	Available  bool
}

// ShowtimeSeats is the full seat map of one showtime together with the
// context needed to render or price it. Seats are ordered by row and number.
type ShowtimeSeats struct {
	ShowtimeID  int
	MovieTitle  string
	TheaterID   int
	TheaterName string
	HallID      int
	HallName    string
	StartTime   time.Time
	BasePrice   decimal.Decimal
	Seats       []Seat
}

type SeatRepository interface {
	GetSeatsByShowtime(ctx context.Context, showtimeID int) (*ShowtimeSeats, error)
	GetSeatsByShowtimeAndLabels(ctx context.Context, showtimeID int, seatIDs []SeatID) (*ShowtimeSeats, error)
}
