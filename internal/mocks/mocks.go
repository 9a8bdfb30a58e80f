package mocks

import (
	"context"

	"storefront/internal/domain"

	"github.com/stretchr/testify/mock"
)

type MockOrderSink struct {
	mock.Mock
}

type MockPublisher struct {
	mock.Mock
}

type MockValidator struct {
	mock.Mock
}

func (m *MockOrderSink) Create(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, message interface{}) error {
	args := m.Called(ctx, topic, message)
	return args.Error(0)
}

func (m *MockValidator) Validate(form domain.BuyerForm) error {
	args := m.Called(form)
	return args.Error(0)
}
