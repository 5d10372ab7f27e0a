package main

import (
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	log "github.com/sirupsen/logrus"

	"github.com/inspikalu/sol-capsule/api"
	"github.com/inspikalu/sol-capsule/app"
	"github.com/inspikalu/sol-capsule/capsule"
	"github.com/inspikalu/sol-capsule/models"
)

func init() {
	log.SetOutput(io.Discard)
}

func TestGetServiceFactories(t *testing.T) {
	factories := GetServiceFactories()

	assert.Len(t, factories, 2)
	assert.NotNil(t, factories[capsule.RecoveryName].CreateServiceWithLastHealth)
	assert.Nil(t, factories[api.APIName].CreateServiceWithLastHealth)
}

func TestCreateService(t *testing.T) {
	wg := &sync.WaitGroup{}
	created := ""
	factory := ServiceFactory{
		CreateService: func(wg *sync.WaitGroup, deps ServiceDeps) models.Service {
			created = "fresh"
			return models.NewEmptyService(wg)
		},
		CreateServiceWithLastHealth: func(wg *sync.WaitGroup, deps ServiceDeps, lastHealth models.ServiceHealth) models.Service {
			created = "last health " + lastHealth.Name
			return models.NewEmptyService(wg)
		},
	}

	CreateService(wg, ServiceDeps{}, "svc", map[string]models.ServiceHealth{}, factory)
	assert.Equal(t, "fresh", created)

	CreateService(wg, ServiceDeps{}, "svc", map[string]models.ServiceHealth{"svc": {Name: "svc"}}, factory)
	assert.Equal(t, "last health svc", created)
}

func TestCreateServices(t *testing.T) {
	app.Config.Recovery.Enabled = false
	app.Config.API.ListenAddress = "127.0.0.1:0"

	handler := api.NewHandler(nil, nil, capsule.Session{}, nil, 0)
	services := CreateServices(&sync.WaitGroup{}, ServiceDeps{Handler: handler}, nil)

	assert.Len(t, services, 2)
	assert.IsType(t, &api.Server{}, services[0])
	assert.IsType(t, &models.EmptyService{}, services[1])
}
