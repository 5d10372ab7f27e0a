package capsule

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/inspikalu/sol-capsule/app"
	"github.com/inspikalu/sol-capsule/chain"
	"github.com/inspikalu/sol-capsule/models"

	log "github.com/sirupsen/logrus"
)

const (
	RecoveryName = "recovery"

	MaxRunAttempts = 3
)

// RecoveryRunner resumes runs left at collection_confirmed that belong to
// the service wallet.
type RecoveryRunner struct {
	pipeline *Pipeline
	session  Session
	timeout  time.Duration

	resumed int64
	failed  int64
}

func NewRecoveryRunner(pipeline *Pipeline, session Session, timeout time.Duration) *RecoveryRunner {
	if timeout <= 0 {
		timeout = 2 * chain.DefaultConfirmTimeout
	}
	return &RecoveryRunner{
		pipeline: pipeline,
		session:  session,
		timeout:  timeout,
	}
}

func (x *RecoveryRunner) Status() models.RunnerStatus {
	return models.RunnerStatus{
		ResumedRuns: x.resumed,
		FailedRuns:  x.failed,
	}
}

// expiringLocker is implemented by lockers whose locks can outlive a crashed
// holder.
type expiringLocker interface {
	PurgeExpired() error
}

func (x *RecoveryRunner) Run() {
	if locker, ok := x.pipeline.locker.(expiringLocker); ok {
		if err := locker.PurgeExpired(); err != nil {
			log.Error("[RECOVERY] Error purging expired locks: ", err)
		}
	}

	runs, err := x.pipeline.store.FindResumable()
	if err != nil {
		log.Error("[RECOVERY] Error fetching resumable runs: ", err)
		return
	}
	log.Info("[RECOVERY] Found ", len(runs), " resumable runs")

	address := x.session.Wallet.Address()
	for _, run := range runs {
		if run.Signer != address {
			log.Debug("[RECOVERY] Skipping run ", run.RunID, " signed by ", run.Signer)
			continue
		}
		if run.Attempts >= MaxRunAttempts {
			log.Debug("[RECOVERY] Skipping run ", run.RunID, " after ", run.Attempts, " attempts")
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), x.timeout)
		_, err := x.pipeline.Resume(ctx, x.session, run.RunID)
		cancel()

		if errors.Is(err, ErrRunInProgress) {
			log.Debug("[RECOVERY] Run ", run.RunID, " is in progress")
			continue
		}
		if err != nil {
			x.failed++
			continue
		}
		x.resumed++
	}
}

func NewRecoveryService(wg *sync.WaitGroup, pipeline *Pipeline, session Session) app.Service {
	return newRecoveryService(wg, pipeline, session, nil)
}

// NewRecoveryServiceWithLastHealth carries the run counters over from the
// health document of a previous process.
func NewRecoveryServiceWithLastHealth(wg *sync.WaitGroup, pipeline *Pipeline, session Session, lastHealth models.ServiceHealth) app.Service {
	return newRecoveryService(wg, pipeline, session, &lastHealth)
}

func newRecoveryService(wg *sync.WaitGroup, pipeline *Pipeline, session Session, lastHealth *models.ServiceHealth) app.Service {
	if !app.Config.Recovery.Enabled {
		log.Debug("[RECOVERY] Recovery disabled")
		return models.NewEmptyService(wg)
	}

	log.Debug("[RECOVERY] Initializing recovery")

	confirm := time.Duration(app.Config.Solana.ConfirmTimeoutMillis) * time.Millisecond
	runner := NewRecoveryRunner(pipeline, session, 2*confirm)
	if lastHealth != nil {
		runner.resumed = lastHealth.ResumedRuns
		runner.failed = lastHealth.FailedRuns
	}
	service := app.NewRunnerService(
		RecoveryName,
		runner,
		wg,
		time.Duration(app.Config.Recovery.IntervalMillis)*time.Millisecond,
	)
	if service == nil {
		log.Fatal("[RECOVERY] Invalid recovery service parameters")
	}

	log.Info("[RECOVERY] Initialized recovery")
	return service
}
