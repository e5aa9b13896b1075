package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUserAlreadyExists   = errors.New("user already exists")
	ErrRecordNotFound      = errors.New("record not found")
	ErrEditConflict        = errors.New("edit conflict")
	ErrSeatAlreadyReserved = errors.New("seat(s) are already reserved")
	ErrHoldNotFound        = errors.New("seat hold not found or has expired")
	ErrSeatLockExpired     = errors.New("your selections have expired, please select your seats again")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrPriceMismatch       = errors.New("total price does not match the selected seats")
)

// SeatConflictError reports a reservation attempt against seats that are
// already booked. Seats carries the contended seat labels so callers can show
// the user exactly which selections changed under them.
type SeatConflictError struct {
	Seats []string
}

func (e *SeatConflictError) Error() string {
	return fmt.Sprintf("seats already booked: %s", strings.Join(e.Seats, ", "))
}

// UnknownSeatsError reports requested seat labels that do not exist in the
// showtime's hall layout.
type UnknownSeatsError struct {
	Seats []string
}

func (e *UnknownSeatsError) Error() string {
	return fmt.Sprintf("seats not in hall layout: %s", strings.Join(e.Seats, ", "))
}
