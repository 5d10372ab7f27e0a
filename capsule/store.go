package capsule

import (
	"errors"
	"sync"
	"time"

	"github.com/inspikalu/sol-capsule/app"
	"github.com/inspikalu/sol-capsule/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// RunStore persists the run state machine.
type RunStore interface {
	Insert(run *models.CapsuleRun) error
	Update(run *models.CapsuleRun) error
	Find(runID string) (*models.CapsuleRun, error)
	FindResumable() ([]models.CapsuleRun, error)
}

type MongoRunStore struct{}

var _ RunStore = MongoRunStore{}

func (MongoRunStore) Insert(run *models.CapsuleRun) error {
	return app.DB.InsertOne(models.CollectionCapsuleRuns, run)
}

func (MongoRunStore) Update(run *models.CapsuleRun) error {
	filter := bson.M{"run_id": run.RunID}
	update := bson.M{"$set": bson.M{
		"signer":                  run.Signer,
		"cluster":                 run.Cluster,
		"status":                  run.Status,
		"file_hash":               run.FileHash,
		"image_url":               run.ImageURL,
		"metadata":                run.Metadata,
		"metadata_url":            run.MetadataURL,
		"collection_metadata_url": run.CollectionMetadataURL,
		"collection":              run.Collection,
		"asset":                   run.Asset,
		"error":                   run.Error,
		"attempts":                run.Attempts,
		"updated_at":              run.UpdatedAt,
	}}
	return app.DB.UpdateOne(models.CollectionCapsuleRuns, filter, update)
}

func (MongoRunStore) Find(runID string) (*models.CapsuleRun, error) {
	var run models.CapsuleRun
	err := app.DB.FindOne(models.CollectionCapsuleRuns, bson.M{"run_id": runID}, &run)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (MongoRunStore) FindResumable() ([]models.CapsuleRun, error) {
	runs := []models.CapsuleRun{}
	filter := bson.M{
		"status":     models.RunStatusCollectionConfirmed,
		"collection": bson.M{"$ne": nil},
	}
	sort := bson.D{{Key: "updated_at", Value: 1}}
	err := app.DB.FindManySorted(models.CollectionCapsuleRuns, filter, sort, &runs)
	return runs, err
}

// MemoryRunStore keeps runs in process, stored by value.
type MemoryRunStore struct {
	mu   sync.RWMutex
	runs map[string]models.CapsuleRun
	// insertion order, for FindResumable
	order []string
}

var _ RunStore = &MemoryRunStore{}

func NewMemoryRunStore() *MemoryRunStore {
	return &MemoryRunStore{runs: make(map[string]models.CapsuleRun)}
}

func (s *MemoryRunStore) Insert(run *models.CapsuleRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.runs[run.RunID]; ok {
		return errors.New("duplicate run id " + run.RunID)
	}
	s.runs[run.RunID] = *run
	s.order = append(s.order, run.RunID)
	return nil
}

func (s *MemoryRunStore) Update(run *models.CapsuleRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.runs[run.RunID]; !ok {
		return ErrRunNotFound
	}
	s.runs[run.RunID] = *run
	return nil
}

func (s *MemoryRunStore) Find(runID string) (*models.CapsuleRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[runID]
	if !ok {
		return nil, ErrRunNotFound
	}
	return &run, nil
}

func (s *MemoryRunStore) FindResumable() ([]models.CapsuleRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := []models.CapsuleRun{}
	for _, id := range s.order {
		run := s.runs[id]
		if run.Resumable() {
			runs = append(runs, run)
		}
	}
	return runs, nil
}

func touch(run *models.CapsuleRun, now time.Time) {
	run.UpdatedAt = now
	if run.CreatedAt.IsZero() {
		run.CreatedAt = now
	}
}
