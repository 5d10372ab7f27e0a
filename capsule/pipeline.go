package capsule

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"

	"github.com/inspikalu/sol-capsule/chain"
	"github.com/inspikalu/sol-capsule/models"
	"github.com/inspikalu/sol-capsule/storage"

	log "github.com/sirupsen/logrus"
)

// Recorder is told about every capsule whose asset reached finalized.
type Recorder interface {
	Record(run *models.CapsuleRun) error
}

type RecorderFunc func(run *models.CapsuleRun) error

func (f RecorderFunc) Record(run *models.CapsuleRun) error {
	return f(run)
}

type PipelineOptions struct {
	Uploader storage.Uploader
	Binder   SessionBinder
	Store    RunStore
	Locker   Locker
	Notifier Notifier
	Recorder Recorder
	Now      func() time.Time
	NewID    func() string
}

// Pipeline runs capsule creation: validate, upload image, upload metadata,
// bind the session, create the collection, create the asset.
type Pipeline struct {
	uploader storage.Uploader
	binder   SessionBinder
	store    RunStore
	locker   Locker
	notifier Notifier
	recorder Recorder
	now      func() time.Time
	newID    func() string
}

func NewPipeline(opts PipelineOptions) (*Pipeline, error) {
	if opts.Uploader == nil {
		return nil, errors.New("uploader is required")
	}
	if opts.Binder == nil {
		return nil, errors.New("session binder is required")
	}

	p := &Pipeline{
		uploader: opts.Uploader,
		binder:   opts.Binder,
		store:    opts.Store,
		locker:   opts.Locker,
		notifier: opts.Notifier,
		recorder: opts.Recorder,
		now:      opts.Now,
		newID:    opts.NewID,
	}
	if p.store == nil {
		p.store = NewMemoryRunStore()
	}
	if p.locker == nil {
		p.locker = NewMemoryLocker()
	}
	if p.notifier == nil {
		p.notifier = LogNotifier{}
	}
	if p.now == nil {
		p.now = time.Now
	}
	if p.newID == nil {
		p.newID = uuid.NewString
	}
	return p, nil
}

func (p *Pipeline) Store() RunStore {
	return p.store
}

// fail reports the single terminal failure of a run. Precondition errors are
// returned as they are; everything else is wrapped.
func (p *Pipeline) fail(runID string, err error) error {
	var precondition *PreconditionError
	if !errors.As(err, &precondition) {
		err = fmt.Errorf("failed to create time capsule: %w", err)
	}
	log.WithField("run_id", runID).Error("[PIPELINE] ", err)
	p.notifier.Failure(runID, err)
	return err
}

func (p *Pipeline) save(run *models.CapsuleRun) {
	touch(run, p.now())
	if err := p.store.Update(run); err != nil {
		log.WithField("run_id", run.RunID).Warn("[PIPELINE] Error saving run state ", run.Status, ": ", err)
	}
}

// abort marks a run that never confirmed a collection as failed.
func (p *Pipeline) abort(run *models.CapsuleRun, err error) error {
	run.Status = models.RunStatusFailed
	run.Error = err.Error()
	p.save(run)
	return err
}

// hold keeps a run with a confirmed collection resumable.
func (p *Pipeline) hold(run *models.CapsuleRun, err error) error {
	run.Status = models.RunStatusCollectionConfirmed
	run.Error = err.Error()
	p.save(run)
	return err
}

// Create runs the whole pipeline for one request. Calling it twice with the
// same input creates two independent collections and assets.
func (p *Pipeline) Create(ctx context.Context, session Session, request models.CapsuleRequest) (*models.PipelineResult, error) {
	runID := p.newID()
	logger := log.WithField("run_id", runID)

	p.notifier.Progress(runID, "Initializing time capsule creation...")

	if err := ValidateRequest(session, request, p.now()); err != nil {
		return nil, p.fail(runID, err)
	}

	p.notifier.Progress(runID, "Validating file details...")
	contentType, err := ValidateFile(request.File)
	if err != nil {
		return nil, p.fail(runID, err)
	}
	logger.Debug("[PIPELINE] File ", request.File.Name, " type ", contentType, " size ", request.File.Size())

	owner := session.owner()
	unlock, err := p.locker.Lock(owner)
	if err != nil {
		return nil, p.fail(runID, err)
	}
	defer unlock()

	run := &models.CapsuleRun{
		RunID:       runID,
		Owner:       owner,
		Status:      models.RunStatusPending,
		Description: strings.TrimSpace(request.Description),
		Attempts:    1,
	}
	touch(run, p.now())
	if err := p.store.Insert(run); err != nil {
		return nil, p.fail(runID, fmt.Errorf("error storing run: %w", err))
	}

	bound, err := p.upload(ctx, session, request, contentType, run)
	if err != nil {
		return nil, p.fail(runID, err)
	}
	defer bound.Close()

	result, err := p.issue(ctx, run, bound)
	if err != nil {
		return nil, p.fail(runID, err)
	}
	return result, nil
}

// upload stores the image and both metadata documents and binds the session
// the issuers will sign with.
func (p *Pipeline) upload(ctx context.Context, session Session, request models.CapsuleRequest, contentType string, run *models.CapsuleRun) (*BoundSession, error) {
	runID := run.RunID

	p.notifier.Progress(runID, "Uploading image to storage...")
	image, err := p.uploader.UploadFile(ctx, request.File.Name, contentType, request.File.Data)
	if err != nil {
		return nil, p.abort(run, err)
	}
	run.FileHash = image.ContentID
	run.ImageURL = image.URL
	p.notifier.Progress(runID, "Image uploaded successfully!")

	p.notifier.Progress(runID, "Creating NFT metadata...")
	metadata := ComposeMetadata(request, image.URL)
	if err := ValidateMetadata(metadata); err != nil {
		return nil, p.abort(run, err)
	}

	p.notifier.Progress(runID, "Uploading NFT metadata to storage...")
	metadataAsset, err := p.uploader.UploadJSON(ctx, "capsule-"+runID+".json", metadata)
	if err != nil {
		return nil, p.abort(run, err)
	}
	run.Metadata = metadata
	run.MetadataURL = metadataAsset.URL
	p.notifier.Progress(runID, "Metadata uploaded successfully!")

	p.notifier.Progress(runID, "Initializing blockchain connection...")
	bound, err := p.binder.Bind(ctx, session)
	if err != nil {
		return nil, p.abort(run, err)
	}
	run.Signer = bound.Signer.PublicKey().String()
	run.Cluster = bound.Cluster().String()

	p.notifier.Progress(runID, "Creating collection metadata...")
	collectionMetadata := ComposeCollectionMetadata(run.Signer, image.URL)
	if err := ValidateCollectionMetadata(collectionMetadata); err != nil {
		bound.Close()
		return nil, p.abort(run, err)
	}
	collectionAsset, err := p.uploader.UploadJSON(ctx, "collection-"+runID+".json", collectionMetadata)
	if err != nil {
		bound.Close()
		return nil, p.abort(run, err)
	}
	run.CollectionMetadataURL = collectionAsset.URL

	run.Status = models.RunStatusUploaded
	p.save(run)

	return bound, nil
}

// issue creates the collection, unless the run already has one, and then the
// asset.
func (p *Pipeline) issue(ctx context.Context, run *models.CapsuleRun, bound *BoundSession) (*models.PipelineResult, error) {
	runID := run.RunID
	logger := log.WithField("run_id", runID)
	royalty := Royalty(run.Signer)

	if run.Collection == nil {
		p.notifier.Progress(runID, "Creating collection on blockchain...")
		run.Status = models.RunStatusCollectionPending
		p.save(run)

		collection, err := bound.Issuer.CreateCollection(ctx, bound.Signer, chain.CollectionArgs{
			Name:    CollectionName,
			URI:     run.CollectionMetadataURL,
			Royalty: royalty,
		})
		if err != nil {
			return nil, p.abort(run, err)
		}

		run.Collection = &models.CollectionRecord{
			Address:     collection.Address.String(),
			MetadataURL: run.CollectionMetadataURL,
			Royalty:     royalty,
			Signature:   collection.Signature.String(),
		}
		run.Status = models.RunStatusCollectionConfirmed
		run.Error = ""
		p.save(run)
		p.notifier.Progress(runID, "Collection created successfully!")
		logger.Info("[PIPELINE] Collection confirmed ", run.Collection.Address)
	}

	collectionKey, err := solana.PublicKeyFromBase58(run.Collection.Address)
	if err != nil {
		return nil, p.hold(run, fmt.Errorf("invalid collection address: %w", err))
	}
	var ownerKey solana.PublicKey
	if run.Owner != "" && run.Owner != run.Signer {
		ownerKey, err = solana.PublicKeyFromBase58(run.Owner)
		if err != nil {
			return nil, p.hold(run, fmt.Errorf("invalid owner address: %w", err))
		}
	}

	p.notifier.Progress(runID, "Creating your time capsule NFT...")
	run.Status = models.RunStatusAssetPending
	p.save(run)

	asset, err := bound.Issuer.CreateAsset(ctx, bound.Signer, chain.AssetArgs{
		Name:       run.Description,
		URI:        run.MetadataURL,
		Collection: collectionKey,
		Owner:      ownerKey,
		Royalty:    royalty,
	})
	if err != nil {
		return nil, p.hold(run, err)
	}

	run.Asset = &models.CapsuleAsset{
		Address:     asset.Address.String(),
		MetadataURL: run.MetadataURL,
		Collection:  *run.Collection,
		Royalty:     royalty,
		Signature:   asset.Signature.String(),
	}
	run.Status = models.RunStatusAssetConfirmed
	run.Error = ""
	p.save(run)
	logger.Info("[PIPELINE] Asset confirmed ", run.Asset.Address)

	if p.recorder != nil {
		if err := p.recorder.Record(run); err != nil {
			logger.Error("[PIPELINE] Error recording capsule: ", err)
		}
	}

	result := models.PipelineResult{
		RunID:             runID,
		FileHash:          run.FileHash,
		CollectionAddress: run.Collection.Address,
		NFTAddress:        run.Asset.Address,
		CollectionTx:      run.Collection.Signature,
		NFTTx:             run.Asset.Signature,
		ExplorerURL:       bound.Cluster().ExplorerURL(run.Asset.Signature),
	}
	p.notifier.Success(runID, result)
	return &result, nil
}

// Resume finishes a run whose collection was confirmed but whose asset was
// not. Uploads and the collection are reused. An asset transaction that timed
// out earlier may still land, in which case resuming creates a second asset.
func (p *Pipeline) Resume(ctx context.Context, session Session, runID string) (*models.PipelineResult, error) {
	p.notifier.Progress(runID, "Resuming time capsule creation...")

	if err := ValidateSession(session); err != nil {
		return nil, p.fail(runID, err)
	}

	run, err := p.store.Find(runID)
	if err != nil {
		return nil, p.fail(runID, err)
	}
	if !run.Resumable() {
		return nil, p.fail(runID, fmt.Errorf("%w: status %s", ErrRunNotResumable, run.Status))
	}

	unlock, err := p.locker.Lock(run.Owner)
	if err != nil {
		return nil, p.fail(runID, err)
	}
	defer unlock()

	// another resumer may have finished it before we got the lock
	run, err = p.store.Find(runID)
	if err != nil {
		return nil, p.fail(runID, err)
	}
	if !run.Resumable() {
		return nil, p.fail(runID, fmt.Errorf("%w: status %s", ErrRunNotResumable, run.Status))
	}

	p.notifier.Progress(runID, "Initializing blockchain connection...")
	bound, err := p.binder.Bind(ctx, session)
	if err != nil {
		return nil, p.fail(runID, err)
	}
	defer bound.Close()

	if bound.Signer.PublicKey().String() != run.Signer {
		return nil, p.fail(runID, newPreconditionError("wallet does not match the run signer"))
	}
	if bound.Cluster().String() != run.Cluster {
		return nil, p.fail(runID, newPreconditionError(fmt.Sprintf("run was created on %s, not %s", run.Cluster, bound.Cluster())))
	}

	run.Attempts++
	run.Error = ""

	result, err := p.issue(ctx, run, bound)
	if err != nil {
		return nil, p.fail(runID, err)
	}
	return result, nil
}
