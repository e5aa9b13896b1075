package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCanceled  PaymentStatus = "canceled"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

type Payment struct {
	ID                int
	UserID            int
	CheckoutSessionId *string
	Amount            decimal.Decimal
	Currency          string
	Status            PaymentStatus
	ErrorMsg          *string
	PaymentDate       *time.Time
	CreatedAt         time.Time
	UpdatedAt         *time.Time
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *Payment) error
	GetById(ctx context.Context, id int) (*Payment, error)
	AttachCheckoutSession(ctx context.Context, paymentID int, checkoutSessionID string) error
	UpdateStatus(ctx context.Context, checkoutSessionID string, status PaymentStatus, errMsg string) error
}

type PaymentProvider interface {
	CreateCheckoutSession(sessionId string, user *User, hold SeatHold, payment Payment) (*stripe.CheckoutSession, error)
}
