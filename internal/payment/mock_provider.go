package payment

import (
	"github.com/minhngvn/cinema-booking-api/internal/domain"
	"github.com/stretchr/testify/mock"
	"github.com/stripe/stripe-go/v82"
)

type MockPaymentProvider struct {
	mock.Mock
}

func (m *MockPaymentProvider) CreateCheckoutSession(
	sessionId string,
	user *domain.User,
	hold domain.SeatHold,
	payment domain.Payment) (*stripe.CheckoutSession, error) {

	args := m.Called(sessionId, user, hold, payment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*stripe.CheckoutSession), args.Error(1)
}
