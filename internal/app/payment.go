package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/minhngvn/cinema-booking-api/api"
	"github.com/minhngvn/cinema-booking-api/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

func (app *Application) CreateCheckoutSessionHandler(w http.ResponseWriter, r *http.Request) {
	sessionId := app.sessionManager.Token(r.Context())

	hold, err := app.getSessionHold(r.Context(), sessionId)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrHoldNotFound):
			app.notFoundResponseWithErr(w, r, fmt.Errorf("there is no seat hold bound to the current session"))
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	for _, seat := range hold.Seats {
		ownerSessionId, err := app.redis.Get(r.Context(), seatLockKey(hold.ShowtimeID, seat.Id)).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				app.editConflictResponseWithErr(w, r, fmt.Errorf("your seat selections have expired"))
				return
			}

			app.serverErrorResponse(w, r, err)
			return
		}

		if sessionId != ownerSessionId {
			app.editConflictResponseWithErr(
				w,
				r,
				fmt.Errorf("seat %d doesn't belong to the current session", seat.Id),
			)
			return
		}
	}

	userId := app.contextGetUserId(r)
	user, err := app.userRepo.GetById(r.Context(), userId)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	payment := domain.Payment{
		UserID:   userId,
		Amount:   hold.TotalPrice,
		Currency: "USD",
		Status:   domain.PaymentStatusPending,
	}

	err = app.paymentRepo.Create(r.Context(), &payment)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	checkoutSession, err := app.paymentProvider.CreateCheckoutSession(sessionId, user, *hold, payment)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.paymentRepo.AttachCheckoutSession(r.Context(), payment.ID, checkoutSession.ID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.CheckoutSessionResponse{
		RedirectUrl: checkoutSession.URL,
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// StripeWebhookHandler finalizes or cancels a checkout-driven booking.
// Stripe retries undelivered events, so every recognized event is
// acknowledged with 200 even when the booking itself fails; the failure is
// recorded on the payment instead.
func (app *Application) StripeWebhookHandler(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	r.Body = http.MaxBytesReader(w, r.Body, 65536)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("failed to read webhook payload"))
		return
	}

	event, err := webhook.ConstructEvent(payload, r.Header.Get("Stripe-Signature"), app.config.Stripe.WebhookSecret)
	if err != nil {
		logger.Warn("webhook signature verification failed", "error", err)
		app.badRequestResponse(w, r, fmt.Errorf("invalid webhook signature"))
		return
	}

	switch event.Type {
	case "checkout.session.completed":
		var checkoutSession stripe.CheckoutSession

		err = json.Unmarshal(event.Data.Raw, &checkoutSession)
		if err != nil {
			app.badRequestResponse(w, r, fmt.Errorf("failed to parse checkout session"))
			return
		}

		app.completeCheckoutBooking(w, r, &checkoutSession)

	case "checkout.session.expired":
		var checkoutSession stripe.CheckoutSession

		err = json.Unmarshal(event.Data.Raw, &checkoutSession)
		if err != nil {
			app.badRequestResponse(w, r, fmt.Errorf("failed to parse checkout session"))
			return
		}

		err = app.paymentRepo.UpdateStatus(r.Context(), checkoutSession.ID, domain.PaymentStatusCanceled, "checkout session expired")
		if err != nil {
			logger.Error("failed to mark payment as canceled", "checkout_session_id", checkoutSession.ID, "error", err)
		}

		app.releaseCheckoutHold(r, checkoutSession.Metadata["session_id"])

		w.WriteHeader(http.StatusOK)

	default:
		logger.Info("ignoring unhandled webhook event", "type", event.Type)
		w.WriteHeader(http.StatusOK)
	}
}

func (app *Application) completeCheckoutBooking(
	w http.ResponseWriter,
	r *http.Request,
	checkoutSession *stripe.CheckoutSession) {

	logger := app.contextGetLogger(r)

	userId, err := strconv.Atoi(checkoutSession.Metadata["user_id"])
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("missing user_id in checkout session metadata"))
		return
	}

	showtimeId, err := strconv.Atoi(checkoutSession.Metadata["showtime_id"])
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("missing showtime_id in checkout session metadata"))
		return
	}

	seatLabels := strings.Split(checkoutSession.Metadata["seats"], ",")
	seats := make([]domain.SeatID, len(seatLabels))

	for i, label := range seatLabels {
		seats[i], err = domain.ParseSeatID(label)
		if err != nil {
			app.badRequestResponse(w, r, fmt.Errorf("invalid seat label in checkout session metadata: %q", label))
			return
		}
	}

	booking := &domain.Booking{
		UserID:            userId,
		ShowtimeID:        showtimeId,
		Seats:             seats,
		CheckoutSessionID: checkoutSession.ID,
	}

	err = app.bookingRepo.Reserve(r.Context(), booking)
	if err != nil {
		logger.Error(
			"failed to finalize booking for completed checkout session",
			"checkout_session_id", checkoutSession.ID,
			"error", err,
		)

		updateErr := app.paymentRepo.UpdateStatus(r.Context(), checkoutSession.ID, domain.PaymentStatusFailed, err.Error())
		if updateErr != nil {
			logger.Error("failed to mark payment as failed", "checkout_session_id", checkoutSession.ID, "error", updateErr)
		}

		// Acknowledge so Stripe doesn't retry an unrecoverable booking.
		w.WriteHeader(http.StatusOK)
		return
	}

	app.finalizeBooking(r, checkoutSession.Metadata["session_id"], booking)

	w.WriteHeader(http.StatusOK)
}

func (app *Application) releaseCheckoutHold(r *http.Request, sessionID string) {
	if sessionID == "" {
		return
	}

	hold, err := app.getSessionHold(r.Context(), sessionID)
	if err != nil {
		if !errors.Is(err, domain.ErrHoldNotFound) {
			app.contextGetLogger(r).Error("failed to load hold for expired checkout", "error", err)
		}
		return
	}

	app.releaseHold(r.Context(), sessionID, hold)
}
