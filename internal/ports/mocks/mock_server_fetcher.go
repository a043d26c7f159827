package mocks

import (
	"context"

	"github.com/bnema/serverctl/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockServerFetcher struct {
	mock.Mock
}

type MockServerFetcher_Expecter struct {
	mock *mock.Mock
}

func NewMockServerFetcher(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockServerFetcher {
	m := &MockServerFetcher{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (_m *MockServerFetcher) EXPECT() *MockServerFetcher_Expecter {
	return &MockServerFetcher_Expecter{mock: &_m.Mock}
}

func (_m *MockServerFetcher) FetchServers(ctx context.Context, token string) ([]domain.ServerSummary, error) {
	ret := _m.Called(ctx, token)

	var servers []domain.ServerSummary
	if v, ok := ret.Get(0).([]domain.ServerSummary); ok {
		servers = v
	}
	return servers, ret.Error(1)
}

type MockServerFetcher_FetchServers_Call struct {
	*mock.Call
}

func (_e *MockServerFetcher_Expecter) FetchServers(ctx interface{}, token interface{}) *MockServerFetcher_FetchServers_Call {
	return &MockServerFetcher_FetchServers_Call{Call: _e.mock.On("FetchServers", ctx, token)}
}

func (_c *MockServerFetcher_FetchServers_Call) Return(servers []domain.ServerSummary, err error) *MockServerFetcher_FetchServers_Call {
	_c.Call.Return(servers, err)
	return _c
}
