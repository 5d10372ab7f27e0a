package app

import (
	"os"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/inspikalu/sol-capsule/models"

	log "github.com/sirupsen/logrus"
)

const (
	HealthServiceName = "health"
)

// HealthCheckRunner upserts one health document per host and wallet with the
// state of every running service.
type HealthCheckRunner struct {
	walletAddress string
	cluster       string
	hostname      string

	servicesMu sync.RWMutex
	services   []Service
}

func (x *HealthCheckRunner) Run() {
	x.PostHealth()
}

func (x *HealthCheckRunner) Status() models.RunnerStatus {
	return models.RunnerStatus{}
}

func (x *HealthCheckRunner) SetServices(services []Service) {
	x.servicesMu.Lock()
	defer x.servicesMu.Unlock()
	x.services = services
}

func (x *HealthCheckRunner) ServiceHealths() []models.ServiceHealth {
	x.servicesMu.RLock()
	defer x.servicesMu.RUnlock()

	var serviceHealths []models.ServiceHealth
	for _, service := range x.services {
		health := service.Health()
		if health.Name == models.EmptyServiceName {
			continue
		}
		serviceHealths = append(serviceHealths, health)
	}
	return serviceHealths
}

func (x *HealthCheckRunner) filter() bson.M {
	return bson.M{
		"wallet_address": x.walletAddress,
		"hostname":       x.hostname,
	}
}

func (x *HealthCheckRunner) FindLastHealth() (models.Health, error) {
	var health models.Health
	err := DB.FindOne(models.CollectionHealthChecks, x.filter(), &health)
	return health, err
}

func (x *HealthCheckRunner) PostHealth() bool {
	log.Debug("[HEALTH] Posting health")

	onInsert := bson.M{
		"wallet_address": x.walletAddress,
		"cluster":        x.cluster,
		"hostname":       x.hostname,
		"created_at":     time.Now(),
	}

	onUpdate := bson.M{
		"healthy":         true,
		"service_healths": x.ServiceHealths(),
		"updated_at":      time.Now(),
	}

	update := bson.M{"$set": onUpdate, "$setOnInsert": onInsert}

	err := DB.UpsertOne(models.CollectionHealthChecks, x.filter(), update)
	if err != nil {
		log.Error("[HEALTH] Error posting health: ", err)
		return false
	}

	log.Info("[HEALTH] Posted health")
	return true
}

func NewHealthCheck(walletAddress string, cluster string) *HealthCheckRunner {
	log.Debug("[HEALTH] Initializing health")

	hostname, err := os.Hostname()
	if err != nil {
		log.Fatal("[HEALTH] Error getting hostname: ", err)
	}
	if walletAddress == "" {
		log.Fatal("[HEALTH] Wallet address is required")
	}

	x := &HealthCheckRunner{
		walletAddress: walletAddress,
		cluster:       cluster,
		hostname:      hostname,
	}

	log.Info("[HEALTH] Initialized health")
	return x
}

func NewHealthService(x *HealthCheckRunner, wg *sync.WaitGroup) *RunnerService {
	return NewRunnerService(
		HealthServiceName,
		x,
		wg,
		time.Duration(Config.HealthCheck.IntervalMillis)*time.Millisecond,
	)
}
