package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Booking is one completed purchase of a seat set on a showtime. The seat set
// is immutable once the booking exists; Code is the globally unique
// transaction identifier printed on the ticket.
type Booking struct {
	ID         int
	Code       string
	UserID     int
	ShowtimeID int
	PaymentID  int
	Seats      []SeatID
	TotalPrice decimal.Decimal
	CreatedAt  time.Time

	// CheckoutSessionID links a booking made through the checkout flow to
	// its pending payment; empty for direct bookings.
	CheckoutSessionID string

	// Resolved showtime details, populated by Reserve and detail lookups.
	MovieTitle   string
	TheaterName  string
	HallName     string
	ShowtimeDate time.Time
}

type BookingSummary struct {
	BookingID    int
	Code         string
	MovieTitle   string
	PosterUrl    string
	ShowtimeDate time.Time
	TheaterName  string
	HallName     string
	CreatedAt    time.Time
}

type BookingDetail struct {
	BookingID    int
	Code         string
	MovieTitle   string
	PosterUrl    string
	ShowtimeDate time.Time
	TheaterName  string
	HallName     string
	Seats        []SeatID
	TotalPrice   decimal.Decimal
	CreatedAt    time.Time
}

// BookingRepository owns the seat-status state of every showtime. Reserve is
// the only writer path that flips a seat from available to booked; it must be
// atomic and must serialize conflicting reservations so that a contended seat
// is sold exactly once.
type BookingRepository interface {
	// Reserve atomically books booking.Seats on booking.ShowtimeID for
	// booking.UserID, creating the payment and ticket records in the same
	// transaction. On success the booking's ID, Code, PaymentID, CreatedAt
	// and resolved showtime fields are populated. It returns
	// ErrRecordNotFound for an unknown showtime, *UnknownSeatsError for
	// labels outside the hall layout, and *SeatConflictError when any
	// requested seat is already booked; in every failure case no mutation
	// survives.
	Reserve(ctx context.Context, booking *Booking) error

	// GetBookedSeatIDs returns the internal seat ids currently booked for a
	// showtime.
	GetBookedSeatIDs(ctx context.Context, showtimeID int) ([]int, error)

	GetSummariesByUserId(ctx context.Context, userID int, pagination Pagination) ([]BookingSummary, *Metadata, error)
	GetByIdAndUserId(ctx context.Context, bookingID, userID int) (*BookingDetail, error)
}
