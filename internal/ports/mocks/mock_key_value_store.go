package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockKeyValueStore struct {
	mock.Mock
}

type MockKeyValueStore_Expecter struct {
	mock *mock.Mock
}

func NewMockKeyValueStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockKeyValueStore {
	m := &MockKeyValueStore{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (_m *MockKeyValueStore) EXPECT() *MockKeyValueStore_Expecter {
	return &MockKeyValueStore_Expecter{mock: &_m.Mock}
}

func (_m *MockKeyValueStore) Get(ctx context.Context, key string) (string, error) {
	ret := _m.Called(ctx, key)
	return ret.String(0), ret.Error(1)
}

type MockKeyValueStore_Get_Call struct {
	*mock.Call
}

func (_e *MockKeyValueStore_Expecter) Get(ctx interface{}, key interface{}) *MockKeyValueStore_Get_Call {
	return &MockKeyValueStore_Get_Call{Call: _e.mock.On("Get", ctx, key)}
}

func (_c *MockKeyValueStore_Get_Call) Return(value string, err error) *MockKeyValueStore_Get_Call {
	_c.Call.Return(value, err)
	return _c
}

func (_m *MockKeyValueStore) Put(ctx context.Context, key string, value string) error {
	ret := _m.Called(ctx, key, value)
	return ret.Error(0)
}

type MockKeyValueStore_Put_Call struct {
	*mock.Call
}

func (_e *MockKeyValueStore_Expecter) Put(ctx interface{}, key interface{}, value interface{}) *MockKeyValueStore_Put_Call {
	return &MockKeyValueStore_Put_Call{Call: _e.mock.On("Put", ctx, key, value)}
}

func (_c *MockKeyValueStore_Put_Call) Return(err error) *MockKeyValueStore_Put_Call {
	_c.Call.Return(err)
	return _c
}

func (_m *MockKeyValueStore) Delete(ctx context.Context, key string) error {
	ret := _m.Called(ctx, key)
	return ret.Error(0)
}

type MockKeyValueStore_Delete_Call struct {
	*mock.Call
}

func (_e *MockKeyValueStore_Expecter) Delete(ctx interface{}, key interface{}) *MockKeyValueStore_Delete_Call {
	return &MockKeyValueStore_Delete_Call{Call: _e.mock.On("Delete", ctx, key)}
}

func (_c *MockKeyValueStore_Delete_Call) Return(err error) *MockKeyValueStore_Delete_Call {
	_c.Call.Return(err)
	return _c
}

func (_m *MockKeyValueStore) Available() bool {
	ret := _m.Called()
	return ret.Bool(0)
}

type MockKeyValueStore_Available_Call struct {
	*mock.Call
}

func (_e *MockKeyValueStore_Expecter) Available() *MockKeyValueStore_Available_Call {
	return &MockKeyValueStore_Available_Call{Call: _e.mock.On("Available")}
}

func (_c *MockKeyValueStore_Available_Call) Return(available bool) *MockKeyValueStore_Available_Call {
	_c.Call.Return(available)
	return _c
}
