package app

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"

	log "github.com/sirupsen/logrus"

	"github.com/inspikalu/sol-capsule/app/mocks"
	"github.com/inspikalu/sol-capsule/models"
)

func NewTestHealthCheck() *HealthCheckRunner {
	x := &HealthCheckRunner{
		walletAddress: "walletAddress",
		cluster:       "devnet",
		hostname:      "hostname",
	}
	return x
}

func TestHealthStatus(t *testing.T) {
	x := NewTestHealthCheck()

	status := x.Status()
	assert.Equal(t, models.RunnerStatus{}, status)
}

func TestFindLastHealth(t *testing.T) {

	t.Run("No Error", func(t *testing.T) {
		mockDB := mocks.NewMockDatabase()
		DB = mockDB

		x := NewTestHealthCheck()
		filter := bson.M{
			"wallet_address": x.walletAddress,
			"hostname":       x.hostname,
		}
		mockDB.On("FindOne", models.CollectionHealthChecks, filter, mock.Anything).Return(nil)

		_, err := x.FindLastHealth()

		assert.Nil(t, err)
	})

	t.Run("With Error", func(t *testing.T) {
		mockDB := mocks.NewMockDatabase()
		DB = mockDB

		x := NewTestHealthCheck()
		mockDB.On("FindOne", models.CollectionHealthChecks, mock.Anything, mock.Anything).Return(errors.New("error"))

		_, err := x.FindLastHealth()

		assert.NotNil(t, err)
		assert.Equal(t, err.Error(), "error")
	})

}

type MockService struct {
}

func (e *MockService) Start() {}

func (e *MockService) Stop() {
}

const MockServiceName = "mock"

func (e *MockService) Health() models.ServiceHealth {
	return models.ServiceHealth{
		Name:         MockServiceName,
		LastSyncTime: time.Now(),
		NextSyncTime: time.Now(),
		Healthy:      true,
	}
}

func NewMockService() Service {
	return &MockService{}
}

func TestServiceHealths(t *testing.T) {
	x := NewTestHealthCheck()
	wg := &sync.WaitGroup{}
	x.SetServices([]Service{
		models.NewEmptyService(wg),
		models.NewEmptyService(wg),
		NewMockService(),
	})

	assert.Equal(t, len(x.services), 3)

	healths := x.ServiceHealths()

	assert.Equal(t, len(healths), 1)
	assert.Equal(t, healths[0].Name, MockServiceName)
}

func TestPostHealth(t *testing.T) {
	t.Run("No Error", func(t *testing.T) {
		x := NewTestHealthCheck()
		wg := &sync.WaitGroup{}
		x.SetServices([]Service{
			models.NewEmptyService(wg),
			NewMockService(),
		})

		mockDB := mocks.NewMockDatabase()
		DB = mockDB

		filter := bson.M{
			"wallet_address": x.walletAddress,
			"hostname":       x.hostname,
		}

		onInsert := bson.M{
			"wallet_address": x.walletAddress,
			"cluster":        x.cluster,
			"hostname":       x.hostname,
			"created_at":     nil,
		}

		onUpdate := bson.M{
			"healthy":         true,
			"service_healths": []models.ServiceHealth{},
			"updated_at":      nil,
		}

		update := bson.M{"$set": onUpdate, "$setOnInsert": onInsert}

		mockDB.On("UpsertOne", models.CollectionHealthChecks, filter, mock.Anything).
			Run(func(args mock.Arguments) {
				updateArg := args.Get(2).(bson.M)

				assert.Len(t, updateArg["$set"].(bson.M)["service_healths"], 1)

				updateArg["$setOnInsert"].(bson.M)["created_at"] = nil
				updateArg["$set"].(bson.M)["updated_at"] = nil
				updateArg["$set"].(bson.M)["service_healths"] = []models.ServiceHealth{}

				assert.Equal(t, update, updateArg)
			}).
			Return(nil)

		success := x.PostHealth()
		assert.True(t, success)
		mockDB.AssertExpectations(t)
	})

	t.Run("With Error", func(t *testing.T) {
		x := NewTestHealthCheck()

		mockDB := mocks.NewMockDatabase()
		DB = mockDB

		mockDB.On("UpsertOne", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("error"))

		success := x.PostHealth()
		assert.False(t, success)
	})

	t.Run("Via Run", func(t *testing.T) {
		x := NewTestHealthCheck()

		mockDB := mocks.NewMockDatabase()
		DB = mockDB

		mockDB.On("UpsertOne", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("error"))

		x.Run()
		mockDB.AssertNumberOfCalls(t, "UpsertOne", 1)
	})

}

func TestNewHealthCheck(t *testing.T) {
	t.Run("With Empty Wallet Address", func(t *testing.T) {
		defer func() { log.StandardLogger().ExitFunc = nil }()
		log.StandardLogger().ExitFunc = func(num int) { panic(fmt.Sprintf("exit %d", num)) }

		assert.Panics(t, func() { NewHealthCheck("", "devnet") })
	})

	t.Run("With Valid Config", func(t *testing.T) {
		x := NewHealthCheck("walletAddress", "devnet")

		hostname, _ := os.Hostname()

		assert.NotNil(t, x)
		assert.Equal(t, "walletAddress", x.walletAddress)
		assert.Equal(t, "devnet", x.cluster)
		assert.Equal(t, hostname, x.hostname)
	})
}

func TestNewHealthService(t *testing.T) {
	Config.HealthCheck.IntervalMillis = 1000

	service := NewHealthService(NewTestHealthCheck(), &sync.WaitGroup{})
	assert.NotNil(t, service)
	assert.Equal(t, HealthServiceName, service.Health().Name)

	Config.HealthCheck.IntervalMillis = 0
	assert.Nil(t, NewHealthService(NewTestHealthCheck(), &sync.WaitGroup{}))
}
