package main

import (
	"sort"
	"sync"

	"github.com/inspikalu/sol-capsule/api"
	"github.com/inspikalu/sol-capsule/capsule"
	"github.com/inspikalu/sol-capsule/models"
)

// ServiceDeps are the shared collaborators every long running service is
// built from.
type ServiceDeps struct {
	Pipeline *capsule.Pipeline
	Session  capsule.Session
	Handler  *api.Handler
}

type ServiceFactory struct {
	CreateService               func(*sync.WaitGroup, ServiceDeps) models.Service
	CreateServiceWithLastHealth func(*sync.WaitGroup, ServiceDeps, models.ServiceHealth) models.Service
}

func CreateService(
	wg *sync.WaitGroup,
	deps ServiceDeps,
	serviceName string,
	serviceHealthMap map[string]models.ServiceHealth,
	factory ServiceFactory,
) models.Service {
	serviceHealth, ok := serviceHealthMap[serviceName]
	if ok && factory.CreateServiceWithLastHealth != nil {
		return factory.CreateServiceWithLastHealth(wg, deps, serviceHealth)
	}
	return factory.CreateService(wg, deps)
}

func GetServiceFactories() map[string]ServiceFactory {
	services := map[string]ServiceFactory{
		capsule.RecoveryName: {
			CreateService: func(wg *sync.WaitGroup, deps ServiceDeps) models.Service {
				return capsule.NewRecoveryService(wg, deps.Pipeline, deps.Session)
			},
			CreateServiceWithLastHealth: func(wg *sync.WaitGroup, deps ServiceDeps, lastHealth models.ServiceHealth) models.Service {
				return capsule.NewRecoveryServiceWithLastHealth(wg, deps.Pipeline, deps.Session, lastHealth)
			},
		},
		api.APIName: {
			CreateService: func(wg *sync.WaitGroup, deps ServiceDeps) models.Service {
				return api.NewServer(wg, deps.Handler)
			},
		},
	}

	return services
}

// CreateServices builds every service in name order.
func CreateServices(wg *sync.WaitGroup, deps ServiceDeps, serviceHealthMap map[string]models.ServiceHealth) []models.Service {
	factories := GetServiceFactories()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)

	services := make([]models.Service, 0, len(names))
	for _, name := range names {
		services = append(services, CreateService(wg, deps, name, serviceHealthMap, factories[name]))
	}
	return services
}
