// Package api contains the request and response types of the public HTTP API.
package api

import (
	"time"

	"github.com/shopspring/decimal"
)

type ErrorResponse struct {
	Message   string    `json:"message"`
	Seats     []string  `json:"seats,omitempty"`
	RequestId string    `json:"requestId"`
	Timestamp time.Time `json:"timestamp"`
}

type ValidationError struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

type ValidationErrorResponse struct {
	Message          string            `json:"message"`
	ValidationErrors []ValidationError `json:"validationErrors"`
	RequestId        string            `json:"requestId"`
	Timestamp        time.Time         `json:"timestamp"`
}

type SystemInfo struct {
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

type HealthcheckResponse struct {
	Status     string     `json:"status"`
	SystemInfo SystemInfo `json:"systemInfo"`
}

type Metadata struct {
	CurrentPage  int `json:"currentPage"`
	FirstPage    int `json:"firstPage"`
	LastPage     int `json:"lastPage"`
	PageSize     int `json:"pageSize"`
	TotalRecords int `json:"totalRecords"`
}

type RegisterRequest struct {
	FirstName string `json:"firstName" validate:"required,alpha,max=50"`
	LastName  string `json:"lastName" validate:"required,alpha,max=50"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,password"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type TokenResponse struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

type ActivateUserRequest struct {
	Token string `json:"token" validate:"required,len=43"`
}

type UserResponse struct {
	Id        int       `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Activated bool      `json:"activated"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
}

type UpdateUserRequest struct {
	FirstName *string `json:"firstName" validate:"omitempty,alpha,max=50"`
	LastName  *string `json:"lastName" validate:"omitempty,alpha,max=50"`
}

type MovieSummary struct {
	Id          int       `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	PosterUrl   string    `json:"posterUrl"`
	ReleaseDate time.Time `json:"releaseDate"`
	Status      string    `json:"status"`
}

const (
	MovieStatusComingSoon = "COMING_SOON"
	MovieStatusNowShowing = "NOW_SHOWING"
)

type MovieListResponse struct {
	Movies   []MovieSummary `json:"movies"`
	Metadata *Metadata      `json:"metadata,omitempty"`
}

type MovieResponse struct {
	Id          int       `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Genres      []string  `json:"genres"`
	Language    string    `json:"language"`
	Duration    int       `json:"duration"`
	Director    string    `json:"director"`
	CastMembers []string  `json:"castMembers"`
	PosterUrl   string    `json:"posterUrl"`
	ReleaseDate time.Time `json:"releaseDate"`
}

type Showtime struct {
	Id        int             `json:"id"`
	HallName  string          `json:"hallName"`
	StartTime time.Time       `json:"startTime"`
	BasePrice decimal.Decimal `json:"basePrice"`
}

type TheaterShowtimes struct {
	TheaterId   int        `json:"theaterId"`
	TheaterName string     `json:"theaterName"`
	City        string     `json:"city"`
	Showtimes   []Showtime `json:"showtimes"`
}

type ShowtimeListResponse struct {
	MovieId  int                `json:"movieId"`
	Date     string             `json:"date"`
	Theaters []TheaterShowtimes `json:"theaters"`
}

type Seat struct {
	Id         int             `json:"id"`
	Label      string          `json:"label"`
	Number     int             `json:"number"`
	ExtraPrice decimal.Decimal `json:"extraPrice"`
	Type       string          `json:"type"`
	Available  bool            `json:"available"`
}

type SeatRow struct {
	Row   string `json:"row"`
	Seats []Seat `json:"seats"`
}

type SeatMapResponse struct {
	TheaterId   int             `json:"theaterId"`
	TheaterName string          `json:"theaterName"`
	HallId      int             `json:"hallId"`
	ShowtimeId  int             `json:"showtimeId"`
	BasePrice   decimal.Decimal `json:"basePrice"`
	SeatRows    []SeatRow       `json:"seatRows"`
}

type CreateHoldRequest struct {
	Seats []string `json:"seats" validate:"required,min=1,max=10,unique,dive,seat_id"`
}

type HoldSeat struct {
	Id         int             `json:"id"`
	Label      string          `json:"label"`
	Type       string          `json:"type"`
	ExtraPrice decimal.Decimal `json:"extraPrice"`
}

type Hold struct {
	ShowtimeId   int             `json:"showtimeId"`
	MovieName    string          `json:"movieName"`
	TheaterName  string          `json:"theaterName"`
	HallName     string          `json:"hallName"`
	ShowtimeDate string          `json:"showtimeDate"`
	Seats        []HoldSeat      `json:"seats"`
	HoldTime     int             `json:"holdTime"`
	BasePrice    decimal.Decimal `json:"basePrice"`
	TotalPrice   decimal.Decimal `json:"totalPrice"`
}

type HoldResponse struct {
	Hold Hold `json:"hold"`
}

type CreateBookingRequest struct {
	Seats      []string        `json:"seats" validate:"required,min=1,max=10,unique,dive,seat_id"`
	TotalPrice decimal.Decimal `json:"totalPrice" validate:"required,gt=0"`
}

type TicketResponse struct {
	Id            int             `json:"id"`
	Code          string          `json:"code"`
	MovieTitle    string          `json:"movieTitle"`
	TheaterName   string          `json:"theaterName"`
	HallName      string          `json:"hallName"`
	ShowtimeDate  time.Time       `json:"showtimeDate"`
	Seats         []string        `json:"seats"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
	PaymentStatus string          `json:"paymentStatus"`
	CreatedAt     time.Time       `json:"createdAt"`
}

type BookingSummary struct {
	Id          int       `json:"id"`
	Code        string    `json:"code"`
	MovieTitle  string    `json:"movieTitle"`
	PosterUrl   string    `json:"posterUrl"`
	TheaterName string    `json:"theaterName"`
	HallName    string    `json:"hallName"`
	Date        time.Time `json:"date"`
	CreatedAt   time.Time `json:"createdAt"`
}

type UserBookingsResponse struct {
	Bookings []BookingSummary `json:"bookings"`
	Metadata Metadata         `json:"metadata"`
}

type BookingDetailResponse struct {
	Id           int             `json:"id"`
	Code         string          `json:"code"`
	MovieTitle   string          `json:"movieTitle"`
	PosterUrl    string          `json:"posterUrl"`
	TheaterName  string          `json:"theaterName"`
	HallName     string          `json:"hallName"`
	ShowtimeDate time.Time       `json:"showtimeDate"`
	Seats        []string        `json:"seats"`
	TotalPrice   decimal.Decimal `json:"totalPrice"`
	CreatedAt    time.Time       `json:"createdAt"`
}

type CheckoutSessionResponse struct {
	RedirectUrl string `json:"redirectUrl"`
}
