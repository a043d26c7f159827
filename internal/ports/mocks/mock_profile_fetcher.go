package mocks

import (
	"context"

	"github.com/bnema/serverctl/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockProfileFetcher struct {
	mock.Mock
}

type MockProfileFetcher_Expecter struct {
	mock *mock.Mock
}

func NewMockProfileFetcher(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockProfileFetcher {
	m := &MockProfileFetcher{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (_m *MockProfileFetcher) EXPECT() *MockProfileFetcher_Expecter {
	return &MockProfileFetcher_Expecter{mock: &_m.Mock}
}

func (_m *MockProfileFetcher) FetchProfile(ctx context.Context, token string, id domain.UserID) (domain.ProfileEntry, error) {
	ret := _m.Called(ctx, token, id)

	var entry domain.ProfileEntry
	if v, ok := ret.Get(0).(domain.ProfileEntry); ok {
		entry = v
	}
	return entry, ret.Error(1)
}

type MockProfileFetcher_FetchProfile_Call struct {
	*mock.Call
}

func (_e *MockProfileFetcher_Expecter) FetchProfile(ctx interface{}, token interface{}, id interface{}) *MockProfileFetcher_FetchProfile_Call {
	return &MockProfileFetcher_FetchProfile_Call{Call: _e.mock.On("FetchProfile", ctx, token, id)}
}

func (_c *MockProfileFetcher_FetchProfile_Call) Return(entry domain.ProfileEntry, err error) *MockProfileFetcher_FetchProfile_Call {
	_c.Call.Return(entry, err)
	return _c
}
