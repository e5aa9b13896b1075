package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestNewSeatHold(t *testing.T) {
	showtimeSeats := &ShowtimeSeats{
		ShowtimeID:  1,
		MovieTitle:  "Interstellar",
		TheaterName: "Downtown Cinema",
		HallName:    "Hall 1",
		StartTime:   time.Date(2026, 9, 12, 20, 0, 0, 0, time.UTC),
		BasePrice:   decimal.NewFromInt(50),
		Seats: []Seat{
			{ID: 1, Row: "A", Number: 1, Type: "Standard", ExtraPrice: decimal.Zero},
			{ID: 2, Row: "A", Number: 2, Type: "VIP", ExtraPrice: decimal.NewFromInt(15)},
			{ID: 3, Row: "B", Number: 1, Type: "Recliner", ExtraPrice: decimal.NewFromInt(10)},
		},
	}

	hold := NewSeatHold(1, showtimeSeats)

	if hold.Id == "" {
		t.Error("expected hold to have an id")
	}

	if hold.ShowtimeID != 1 {
		t.Errorf("ShowtimeID = %d, want 1", hold.ShowtimeID)
	}

	if len(hold.Seats) != 3 {
		t.Fatalf("len(Seats) = %d, want 3", len(hold.Seats))
	}

	// 50 + (50+15) + (50+10)
	wantTotal := decimal.NewFromInt(175)
	if !hold.TotalPrice.Equal(wantTotal) {
		t.Errorf("TotalPrice = %s, want %s", hold.TotalPrice, wantTotal)
	}
}

func TestSeatHoldSeatLabels(t *testing.T) {
	hold := SeatHold{
		Seats: []HoldSeat{
			{Id: 1, Row: "A", Number: 1},
			{Id: 2, Row: "C", Number: 12},
		},
	}

	labels := hold.SeatLabels()

	want := []string{"A1", "C12"}
	if len(labels) != len(want) {
		t.Fatalf("len(labels) = %d, want %d", len(labels), len(want))
	}

	for i := range want {
		if labels[i] != want[i] {
			t.Errorf("labels[%d] = %q, want %q", i, labels[i], want[i])
		}
	}
}
