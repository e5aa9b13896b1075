package mocks

import (
	"context"

	"github.com/minhngvn/cinema-booking-api/internal/domain"
)

type MockPaymentRepo struct {
	CreateFunc                func(ctx context.Context, payment *domain.Payment) error
	GetByIdFunc               func(ctx context.Context, id int) (*domain.Payment, error)
	AttachCheckoutSessionFunc func(ctx context.Context, paymentID int, checkoutSessionID string) error
	UpdateStatusFunc          func(ctx context.Context, checkoutSessionID string, status domain.PaymentStatus, errMsg string) error
}

func (m *MockPaymentRepo) AttachCheckoutSession(ctx context.Context, paymentID int, checkoutSessionID string) error {
	return m.AttachCheckoutSessionFunc(ctx, paymentID, checkoutSessionID)
}

func (m *MockPaymentRepo) Create(ctx context.Context, payment *domain.Payment) error {
	return m.CreateFunc(ctx, payment)
}

func (m *MockPaymentRepo) GetById(ctx context.Context, id int) (*domain.Payment, error) {
	return m.GetByIdFunc(ctx, id)
}

func (m *MockPaymentRepo) UpdateStatus(
	ctx context.Context,
	checkoutSessionID string,
	status domain.PaymentStatus,
	errMsg string) error {

	return m.UpdateStatusFunc(ctx, checkoutSessionID, status, errMsg)
}
