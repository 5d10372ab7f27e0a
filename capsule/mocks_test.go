package capsule

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/inspikalu/sol-capsule/chain"
	"github.com/inspikalu/sol-capsule/models"
	"github.com/inspikalu/sol-capsule/signer"
)

type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) UploadFile(ctx context.Context, name string, contentType string, data []byte) (models.UploadedAsset, error) {
	args := m.Called(ctx, name, contentType, data)
	return args.Get(0).(models.UploadedAsset), args.Error(1)
}

func (m *MockUploader) UploadJSON(ctx context.Context, name string, v interface{}) (models.UploadedAsset, error) {
	args := m.Called(ctx, name, v)
	return args.Get(0).(models.UploadedAsset), args.Error(1)
}

type MockBinder struct {
	mock.Mock
}

func (m *MockBinder) Bind(ctx context.Context, session Session) (*BoundSession, error) {
	args := m.Called(ctx, session)
	bound, _ := args.Get(0).(*BoundSession)
	return bound, args.Error(1)
}

type MockIssuer struct {
	mock.Mock
}

func (m *MockIssuer) Cluster() chain.Cluster {
	args := m.Called()
	return args.Get(0).(chain.Cluster)
}

func (m *MockIssuer) CreateCollection(ctx context.Context, payer signer.Signer, args chain.CollectionArgs) (*chain.Issuance, error) {
	ret := m.Called(ctx, payer, args)
	issuance, _ := ret.Get(0).(*chain.Issuance)
	return issuance, ret.Error(1)
}

func (m *MockIssuer) CreateAsset(ctx context.Context, payer signer.Signer, args chain.AssetArgs) (*chain.Issuance, error) {
	ret := m.Called(ctx, payer, args)
	issuance, _ := ret.Get(0).(*chain.Issuance)
	return issuance, ret.Error(1)
}

type RecordingNotifier struct {
	mu        sync.Mutex
	progress  []string
	successes []models.PipelineResult
	failures  []error
	runIDs    map[string]struct{}
}

func NewRecordingNotifier() *RecordingNotifier {
	return &RecordingNotifier{runIDs: map[string]struct{}{}}
}

func (n *RecordingNotifier) Progress(runID string, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.runIDs[runID] = struct{}{}
	n.progress = append(n.progress, message)
}

func (n *RecordingNotifier) Success(runID string, result models.PipelineResult) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.runIDs[runID] = struct{}{}
	n.successes = append(n.successes, result)
}

func (n *RecordingNotifier) Failure(runID string, err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.runIDs[runID] = struct{}{}
	n.failures = append(n.failures, err)
}

func (n *RecordingNotifier) terminals() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.successes) + len(n.failures)
}
