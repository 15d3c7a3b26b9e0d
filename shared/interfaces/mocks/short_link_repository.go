package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"madlib-maker/shared/interfaces"
	"madlib-maker/shared/models"
)

// MockShortLinkRepository is a mock type for the ShortLinkRepository type
type MockShortLinkRepository struct {
	mock.Mock
}

// Exists provides a mock function with given fields: ctx, code
func (_m *MockShortLinkRepository) Exists(ctx context.Context, code string) (bool, error) {
	ret := _m.Called(ctx, code)

	var r0 bool
	if rf, ok := ret.Get(0).(func(context.Context, string) bool); ok {
		r0 = rf(ctx, code)
	} else {
		r0 = ret.Bool(0)
	}

	return r0, ret.Error(1)
}

// Save provides a mock function with given fields: ctx, code, rec, ttl
func (_m *MockShortLinkRepository) Save(ctx context.Context, code string, rec models.ShortLinkRecord, ttl time.Duration) error {
	ret := _m.Called(ctx, code, rec, ttl)
	return ret.Error(0)
}

// Get provides a mock function with given fields: ctx, code
func (_m *MockShortLinkRepository) Get(ctx context.Context, code string) (models.ShortLinkRecord, error) {
	ret := _m.Called(ctx, code)

	var r0 models.ShortLinkRecord
	if rf, ok := ret.Get(0).(func(context.Context, string) models.ShortLinkRecord); ok {
		r0 = rf(ctx, code)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(models.ShortLinkRecord)
	}

	return r0, ret.Error(1)
}

// NewMockShortLinkRepository creates a new instance of MockShortLinkRepository. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockShortLinkRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockShortLinkRepository {
	m := &MockShortLinkRepository{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

var _ interfaces.ShortLinkRepository = (*MockShortLinkRepository)(nil)
