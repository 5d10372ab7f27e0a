package app

import (
	"strings"
	"sync"
	"time"

	"github.com/inspikalu/sol-capsule/models"
	log "github.com/sirupsen/logrus"
)

type Runner interface {
	Run()
	Status() models.RunnerStatus
}

type Service = models.Service

// RunnerService calls Run on its runner every interval until stopped.
type RunnerService struct {
	name     string
	runner   Runner
	stop     chan bool
	interval time.Duration
	wg       *sync.WaitGroup

	healthMu sync.RWMutex
	health   models.ServiceHealth
}

func (x *RunnerService) logPrefix() string {
	return "[" + strings.ToUpper(x.name) + "]"
}

func (x *RunnerService) Start() {
	log.Info(x.logPrefix(), " Starting service")
	stop := false
	for !stop {
		log.Info(x.logPrefix(), " Starting sync")

		x.runner.Run()

		x.UpdateHealth()

		log.Info(x.logPrefix(), " Finished sync, Sleeping for ", x.interval)

		select {
		case <-x.stop:
			stop = true
			log.Info(x.logPrefix(), " Stopped service")
		case <-time.After(x.interval):
		}
	}
	x.wg.Done()
}

func (x *RunnerService) Health() models.ServiceHealth {
	x.healthMu.RLock()
	defer x.healthMu.RUnlock()

	return x.health
}

func (x *RunnerService) UpdateHealth() {
	x.healthMu.Lock()
	defer x.healthMu.Unlock()

	status := x.runner.Status()
	lastSyncTime := time.Now()

	x.health = models.ServiceHealth{
		Name:         x.name,
		LastSyncTime: lastSyncTime,
		NextSyncTime: lastSyncTime.Add(x.interval),
		ResumedRuns:  status.ResumedRuns,
		FailedRuns:   status.FailedRuns,
		Healthy:      true,
	}
}

func (x *RunnerService) Stop() {
	log.Debug(x.logPrefix(), " Stopping service")
	select {
	case x.stop <- true:
	default:
	}
}

func NewRunnerService(
	name string,
	runner Runner,
	wg *sync.WaitGroup,
	interval time.Duration,
) *RunnerService {
	if name == "" || runner == nil || interval <= 0 || wg == nil {
		log.Debug("[RUNNER] Invalid parameters for runner service")
		return nil
	}

	return &RunnerService{
		name:     name,
		runner:   runner,
		stop:     make(chan bool, 1),
		interval: interval,
		wg:       wg,
		health: models.ServiceHealth{
			Name:    name,
			Healthy: true,
		},
	}
}
