package mocks

import (
	"time"

	"github.com/stretchr/testify/mock"
)

// MockDatabase is a mock implementation of app.Database
type MockDatabase struct {
	mock.Mock
}

func NewMockDatabase() *MockDatabase {
	return &MockDatabase{}
}

func (m *MockDatabase) Connect() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockDatabase) SetupLockers() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockDatabase) SetupIndexes() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockDatabase) Disconnect() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockDatabase) InsertOne(collection string, data interface{}) error {
	args := m.Called(collection, data)
	return args.Error(0)
}

func (m *MockDatabase) FindOne(collection string, filter interface{}, result interface{}) error {
	args := m.Called(collection, filter, result)
	return args.Error(0)
}

func (m *MockDatabase) FindMany(collection string, filter interface{}, result interface{}) error {
	args := m.Called(collection, filter, result)
	return args.Error(0)
}

func (m *MockDatabase) FindManySorted(collection string, filter interface{}, sort interface{}, result interface{}) error {
	args := m.Called(collection, filter, sort, result)
	return args.Error(0)
}

func (m *MockDatabase) UpdateOne(collection string, filter interface{}, update interface{}) error {
	args := m.Called(collection, filter, update)
	return args.Error(0)
}

func (m *MockDatabase) UpsertOne(collection string, filter interface{}, update interface{}) error {
	args := m.Called(collection, filter, update)
	return args.Error(0)
}

func (m *MockDatabase) XLock(resourceId string, ttl time.Duration) (string, error) {
	args := m.Called(resourceId, ttl)
	return args.String(0), args.Error(1)
}

func (m *MockDatabase) PurgeLocks() (int, error) {
	args := m.Called()
	return args.Int(0), args.Error(1)
}

func (m *MockDatabase) Unlock(lockId string) error {
	args := m.Called(lockId)
	return args.Error(0)
}
