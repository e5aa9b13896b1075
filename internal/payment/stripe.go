package payment

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/minhngvn/cinema-booking-api/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
)

type StripePaymentProvider struct {
	failureUrl string
	successUrl string
}

func NewStripePaymentProvider(failureUrl, successUrl string) *StripePaymentProvider {
	return &StripePaymentProvider{
		failureUrl: failureUrl,
		successUrl: successUrl,
	}
}

func (s *StripePaymentProvider) CreateCheckoutSession(
	sessionId string,
	user *domain.User,
	hold domain.SeatHold,
	payment domain.Payment) (*stripe.CheckoutSession, error) {

	var lineItems []*stripe.CheckoutSessionLineItemParams

	for _, seat := range hold.Seats {
		seatLabel := domain.SeatID{Row: seat.Row, Number: seat.Number}.String()

		seatPrice := hold.BasePrice.Add(seat.ExtraPrice)
		priceCents := seatPrice.Mul(decimal.NewFromInt(100)).IntPart()

		lineItem := &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(string(stripe.CurrencyUSD)),
				UnitAmount: stripe.Int64(priceCents),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(fmt.Sprintf("🎬 %s - Seat %s", hold.MovieTitle, seatLabel)),
					Description: stripe.String(fmt.Sprintf(
						"Theater: %s • Hall: %s • Showtime: %s • Seat Type: %s",
						hold.TheaterName,
						hold.HallName,
						hold.Date.Format("Jan 2, 2006 15:04"),
						seat.SeatType,
					)),
				},
			},
			Quantity: stripe.Int64(1),
		}

		lineItems = append(lineItems, lineItem)
	}

	params := &stripe.CheckoutSessionParams{
		LineItems:  lineItems,
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(s.successUrl),
		CancelURL:  stripe.String(s.failureUrl),
		Metadata: map[string]string{
			"hold_id":     hold.Id,
			"session_id":  sessionId,
			"user_id":     strconv.Itoa(user.ID),
			"payment_id":  strconv.Itoa(payment.ID),
			"showtime_id": strconv.Itoa(hold.ShowtimeID),
			"seats":       strings.Join(hold.SeatLabels(), ","),
		},
		CustomerEmail:     &user.Email,
		ClientReferenceID: stripe.String(strconv.Itoa(user.ID)),
	}

	return session.New(params)
}
