package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SeatHold is a short-lived, pre-payment claim on a seat set, kept in Redis
// and keyed by the visitor's session. A hold does not book anything; the
// reservation transaction remains the single authority on seat state.
type SeatHold struct {
	Id          string `json:"-"`
	ShowtimeID  int
	MovieTitle  string
	TheaterName string
	HallName    string
	Date        time.Time
	BasePrice   decimal.Decimal
	TotalPrice  decimal.Decimal
	Seats       []HoldSeat
}

type HoldSeat struct {
	Id         int
	Row        string
	Number     int
	SeatType   string
	ExtraPrice decimal.Decimal
}

func NewSeatHold(showtimeID int, showtimeSeats *ShowtimeSeats) SeatHold {
	id := uuid.New().String()
	seats := toHoldSeats(showtimeSeats.Seats)
	totalPrice := calculateTotalPrice(showtimeSeats.BasePrice, seats)

	return SeatHold{
		Id:          id,
		ShowtimeID:  showtimeID,
		MovieTitle:  showtimeSeats.MovieTitle,
		TheaterName: showtimeSeats.TheaterName,
		HallName:    showtimeSeats.HallName,
		Date:        showtimeSeats.StartTime,
		BasePrice:   showtimeSeats.BasePrice,
		TotalPrice:  totalPrice,
		Seats:       seats,
	}
}

// SeatLabels returns the labels of the held seats, e.g. ["A1", "A2"].
func (h SeatHold) SeatLabels() []string {
	labels := make([]string, len(h.Seats))

	for i, seat := range h.Seats {
		labels[i] = SeatID{Row: seat.Row, Number: seat.Number}.String()
	}

	return labels
}

func calculateTotalPrice(basePrice decimal.Decimal, holdSeats []HoldSeat) decimal.Decimal {
	total := decimal.Zero

	for _, v := range holdSeats {
		seatPrice := basePrice.Add(v.ExtraPrice)
		total = total.Add(seatPrice)
	}

	return total
}

func toHoldSeats(seats []Seat) []HoldSeat {
	holdSeats := make([]HoldSeat, len(seats))

	for i, seat := range seats {
		holdSeats[i] = HoldSeat{
			Id:         seat.ID,
			Row:        seat.Row,
			Number:     seat.Number,
			SeatType:   seat.Type,
			ExtraPrice: seat.ExtraPrice,
		}
	}

	return holdSeats
}
