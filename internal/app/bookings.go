package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/minhngvn/cinema-booking-api/api"
	"github.com/minhngvn/cinema-booking-api/internal/domain"
	"github.com/minhngvn/cinema-booking-api/internal/queue"
	"github.com/redis/go-redis/v9"
	qrcode "github.com/skip2/go-qrcode"
)

func (app *Application) CreateBookingHandler(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	showtimeID, err := app.readIDParam(r, "showtimeId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var input api.CreateBookingRequest

	err = app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	seats := make([]domain.SeatID, len(input.Seats))
	for i, label := range input.Seats {
		seats[i], err = domain.ParseSeatID(label)
		if err != nil {
			app.badRequestResponse(w, r, err)
			return
		}
	}

	sessionID := app.sessionManager.Token(r.Context())

	err = app.checkSeatLockOwnership(r.Context(), showtimeID, seats, sessionID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSeatAlreadyReserved):
			logger.Warn("booking rejected: requested seats are held by another session")
			app.editConflictResponseWithErr(w, r, fmt.Errorf("some of the selected seats are held by another customer"))
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	userID := app.contextGetUserId(r)

	booking := &domain.Booking{
		UserID:     userID,
		ShowtimeID: showtimeID,
		Seats:      seats,
		TotalPrice: input.TotalPrice,
	}

	err = app.bookingRepo.Reserve(r.Context(), booking)
	if err != nil {
		var seatConflict *domain.SeatConflictError
		var unknownSeats *domain.UnknownSeatsError

		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		case errors.As(err, &unknownSeats):
			app.errorResponse(w, r, http.StatusUnprocessableEntity, unknownSeats.Error())
		case errors.Is(err, domain.ErrPriceMismatch):
			app.errorResponse(w, r, http.StatusUnprocessableEntity, err.Error())
		case errors.As(err, &seatConflict):
			logger.Warn("booking conflict", "seats", seatConflict.Seats)
			app.seatConflictResponse(w, r, seatConflict.Seats)
		case errors.Is(err, domain.ErrSeatAlreadyReserved), errors.Is(err, domain.ErrEditConflict):
			app.editConflictResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	app.finalizeBooking(r, sessionID, booking)

	resp := toTicketResponse(booking, input.Seats)

	err = app.writeJSON(w, http.StatusCreated, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// checkSeatLockOwnership rejects a booking when any requested seat carries a
// Redis lock owned by another session. Locks are advisory; the reservation
// transaction remains the authority, but honoring them here keeps a held seat
// from being snatched while its holder is paying.
func (app *Application) checkSeatLockOwnership(
	ctx context.Context,
	showtimeID int,
	seats []domain.SeatID,
	sessionID string) error {

	showtimeSeats, err := app.seatRepo.GetSeatsByShowtimeAndLabels(ctx, showtimeID, seats)
	if err != nil {
		return err
	}

	// Unresolved labels are left for the reservation transaction, which
	// distinguishes an unknown showtime from seats outside the hall layout.
	if len(showtimeSeats.Seats) != len(seats) {
		return nil
	}

	for _, seat := range showtimeSeats.Seats {
		owner, err := app.redis.Get(ctx, seatLockKey(showtimeID, seat.ID)).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return err
		}

		if owner != sessionID {
			return domain.ErrSeatAlreadyReserved
		}
	}

	return nil
}

// finalizeBooking runs the post-commit side effects: the hold cleanup, the
// confirmation email and the booking event. None of them can fail the booking.
func (app *Application) finalizeBooking(r *http.Request, sessionID string, booking *domain.Booking) {
	hold, err := app.getSessionHold(r.Context(), sessionID)
	if err == nil && hold.ShowtimeID == booking.ShowtimeID {
		app.releaseHold(r.Context(), sessionID, hold)
	}

	user, err := app.userRepo.GetById(r.Context(), booking.UserID)
	if err != nil {
		app.contextGetLogger(r).Error("failed to load user for booking confirmation", "error", err)
		return
	}

	seatLabels := make([]string, len(booking.Seats))
	for i, seat := range booking.Seats {
		seatLabels[i] = seat.String()
	}

	go func(ctx context.Context) {
		gLogger := app.contextGetLogger(r.WithContext(ctx))

		defer func() {
			if err := recover(); err != nil {
				gLogger.Error("panic occurred during booking confirmation side effects", "panic", err)
			}
		}()

		data := map[string]any{
			"code":        booking.Code,
			"movieTitle":  booking.MovieTitle,
			"theaterName": booking.TheaterName,
			"hallName":    booking.HallName,
			"showtime":    booking.ShowtimeDate.Format(time.RFC1123),
			"seats":       seatLabels,
			"totalPrice":  booking.TotalPrice.StringFixed(2),
		}

		err := app.mailer.Send(user.Email, "booking_confirmation.tmpl", data)
		if err != nil {
			gLogger.Error("failed to send booking confirmation email", "error", err)
		}

		if app.events == nil {
			return
		}

		event := queue.BookingConfirmedEvent{
			BookingID:    booking.ID,
			Code:         booking.Code,
			UserID:       booking.UserID,
			ShowtimeID:   booking.ShowtimeID,
			MovieTitle:   booking.MovieTitle,
			TheaterName:  booking.TheaterName,
			HallName:     booking.HallName,
			ShowtimeDate: booking.ShowtimeDate,
			Seats:        seatLabels,
			TotalPrice:   booking.TotalPrice.StringFixed(2),
			ConfirmedAt:  booking.CreatedAt,
		}

		err = app.events.PublishBookingConfirmed(ctx, event)
		if err != nil {
			gLogger.Error("failed to publish booking confirmed event", "error", err)
		}
	}(context.WithoutCancel(r.Context()))
}

func toTicketResponse(booking *domain.Booking, seatLabels []string) api.TicketResponse {
	return api.TicketResponse{
		Id:            booking.ID,
		Code:          booking.Code,
		MovieTitle:    booking.MovieTitle,
		TheaterName:   booking.TheaterName,
		HallName:      booking.HallName,
		ShowtimeDate:  booking.ShowtimeDate,
		Seats:         seatLabels,
		TotalPrice:    booking.TotalPrice,
		PaymentStatus: string(domain.PaymentStatusCompleted),
		CreatedAt:     booking.CreatedAt,
	}
}

type bookingListParams struct {
	Page     int `validate:"min=1"`
	PageSize int `validate:"min=1,max=50"`
}

func (app *Application) GetUserBookingsHandler(w http.ResponseWriter, r *http.Request) {
	var params bookingListParams
	var err error

	params.Page, err = app.readInt(r, "page", DefaultPage)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	params.PageSize, err = app.readInt(r, "pageSize", DefaultPageSize)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(params)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	userId := app.contextGetUserId(r)
	pagination := domain.Pagination{
		Page:     params.Page,
		PageSize: params.PageSize,
	}

	bookings, metadata, err := app.bookingRepo.GetSummariesByUserId(r.Context(), userId, pagination)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.UserBookingsResponse{
		Bookings: toBookingSummaries(bookings),
		Metadata: *toApiMetadata(metadata),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toBookingSummaries(bookings []domain.BookingSummary) []api.BookingSummary {
	summaries := make([]api.BookingSummary, len(bookings))

	for i, v := range bookings {
		summaries[i] = api.BookingSummary{
			Id:          v.BookingID,
			Code:        v.Code,
			MovieTitle:  v.MovieTitle,
			PosterUrl:   v.PosterUrl,
			TheaterName: v.TheaterName,
			HallName:    v.HallName,
			Date:        v.ShowtimeDate,
			CreatedAt:   v.CreatedAt,
		}
	}

	return summaries
}

func (app *Application) GetUserBookingById(w http.ResponseWriter, r *http.Request) {
	bookingId, err := app.readIDParam(r, "bookingId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	userId := app.contextGetUserId(r)

	detail, err := app.bookingRepo.GetByIdAndUserId(r.Context(), bookingId, userId)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	seatLabels := make([]string, len(detail.Seats))
	for i, seat := range detail.Seats {
		seatLabels[i] = seat.String()
	}

	resp := api.BookingDetailResponse{
		Id:           detail.BookingID,
		Code:         detail.Code,
		MovieTitle:   detail.MovieTitle,
		PosterUrl:    detail.PosterUrl,
		TheaterName:  detail.TheaterName,
		HallName:     detail.HallName,
		ShowtimeDate: detail.ShowtimeDate,
		Seats:        seatLabels,
		TotalPrice:   detail.TotalPrice,
		CreatedAt:    detail.CreatedAt,
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// GetBookingTicket renders the booking's ticket code as a QR code PNG, which
// the theater entrance scanner validates.
func (app *Application) GetBookingTicket(w http.ResponseWriter, r *http.Request) {
	bookingId, err := app.readIDParam(r, "bookingId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	userId := app.contextGetUserId(r)

	detail, err := app.bookingRepo.GetByIdAndUserId(r.Context(), bookingId, userId)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	png, err := qrcode.Encode(detail.Code, qrcode.Medium, 256)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
