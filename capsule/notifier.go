package capsule

import (
	"github.com/inspikalu/sol-capsule/models"

	log "github.com/sirupsen/logrus"
)

// Notifier receives the staged progress of a run. Each run ends with exactly
// one Success or Failure.
type Notifier interface {
	Progress(runID string, message string)
	Success(runID string, result models.PipelineResult)
	Failure(runID string, err error)
}

type LogNotifier struct{}

var _ Notifier = LogNotifier{}

func (LogNotifier) Progress(runID string, message string) {
	log.WithField("run_id", runID).Info("[PIPELINE] ", message)
}

func (LogNotifier) Success(runID string, result models.PipelineResult) {
	log.WithFields(log.Fields{
		"run_id":     runID,
		"nft":        result.NFTAddress,
		"collection": result.CollectionAddress,
		"explorer":   result.ExplorerURL,
	}).Info("[PIPELINE] Time capsule created successfully")
}

func (LogNotifier) Failure(runID string, err error) {
	log.WithField("run_id", runID).Error("[PIPELINE] ", err)
}
