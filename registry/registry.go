package registry

import (
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/inspikalu/sol-capsule/app"
	"github.com/inspikalu/sol-capsule/capsule"
	"github.com/inspikalu/sol-capsule/models"

	log "github.com/sirupsen/logrus"
)

var (
	ErrCapsuleNotFound = errors.New("capsule not found")
	ErrNotOwner        = errors.New("only the owner can change this capsule")
	ErrInvalidPrice    = errors.New("listing price must be greater than zero")
)

// LockedError is returned when a capsule is opened before its release date.
type LockedError struct {
	ReleaseDate string
	TimeLeft    string
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("capsule is locked until %s (%s)", e.ReleaseDate, e.TimeLeft)
}

// Registry keeps the record of every minted capsule and its marketplace
// listing.
type Registry struct {
	now func() time.Time
}

var _ capsule.Recorder = &Registry{}

func NewRegistry(now func() time.Time) *Registry {
	if now == nil {
		now = time.Now
	}
	return &Registry{now: now}
}

func NewCapsule(run *models.CapsuleRun, now time.Time) (*models.Capsule, error) {
	if run.Asset == nil || run.Collection == nil {
		return nil, fmt.Errorf("run %s has no confirmed asset", run.RunID)
	}
	owner := run.Owner
	if owner == "" {
		owner = run.Signer
	}
	return &models.Capsule{
		NFTAddress:        run.Asset.Address,
		CollectionAddress: run.Collection.Address,
		Owner:             owner,
		FileHash:          run.FileHash,
		MetadataURL:       run.MetadataURL,
		Metadata:          run.Metadata,
		Cluster:           run.Cluster,
		NFTTx:             run.Asset.Signature,
		CollectionTx:      run.Collection.Signature,
		IsListed:          false,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// Record stores the capsule minted by a finished run.
func (r *Registry) Record(run *models.CapsuleRun) error {
	c, err := NewCapsule(run, r.now())
	if err != nil {
		return err
	}
	if err := app.DB.InsertOne(models.CollectionCapsules, c); err != nil {
		return err
	}
	log.Info("[REGISTRY] Recorded capsule ", c.NFTAddress, " for ", c.Owner)
	return nil
}

func (r *Registry) ListByOwner(owner string) ([]models.Capsule, error) {
	capsules := []models.Capsule{}
	filter := bson.M{"owner": owner}
	sort := bson.D{{Key: "created_at", Value: -1}}
	err := app.DB.FindManySorted(models.CollectionCapsules, filter, sort, &capsules)
	return capsules, err
}

func (r *Registry) ListMarketplace() ([]models.Capsule, error) {
	capsules := []models.Capsule{}
	filter := bson.M{"is_listed": true}
	sort := bson.D{{Key: "updated_at", Value: -1}}
	err := app.DB.FindManySorted(models.CollectionCapsules, filter, sort, &capsules)
	return capsules, err
}

func (r *Registry) Find(address string) (*models.Capsule, error) {
	var c models.Capsule
	err := app.DB.FindOne(models.CollectionCapsules, bson.M{"nft_address": address}, &c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrCapsuleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ToggleListing flips the listing of the capsule at address. Listing needs a
// positive price; a missing price falls back to the stored one.
func (r *Registry) ToggleListing(address string, wallet string, price *float64) (*models.Capsule, error) {
	c, err := r.Find(address)
	if err != nil {
		return nil, err
	}
	if c.Owner != wallet {
		return nil, ErrNotOwner
	}

	listed := !c.IsListed
	if listed {
		if price == nil {
			price = c.ListingPrice
		}
		if price == nil || *price <= 0 {
			return nil, ErrInvalidPrice
		}
		c.ListingPrice = price
	}
	c.IsListed = listed
	c.UpdatedAt = r.now()

	filter := bson.M{"nft_address": address, "owner": wallet}
	update := bson.M{"$set": bson.M{
		"is_listed":     c.IsListed,
		"listing_price": c.ListingPrice,
		"updated_at":    c.UpdatedAt,
	}}
	if err := app.DB.UpdateOne(models.CollectionCapsules, filter, update); err != nil {
		return nil, err
	}

	log.Info("[REGISTRY] Capsule ", address, " listed: ", c.IsListed)
	return c, nil
}

// Unlock returns the capsule once its release date has passed. Private
// capsules open only for their owner, public ones for any wallet.
func (r *Registry) Unlock(wallet string, address string) (*models.Capsule, error) {
	c, err := r.Find(address)
	if err != nil {
		return nil, err
	}
	if c.Owner != wallet && !c.Metadata.Attributes.IsPublic {
		return nil, ErrNotOwner
	}

	now := r.now()
	if !IsReleased(c.Metadata.Attributes.ReleaseDate, now) {
		return nil, &LockedError{
			ReleaseDate: c.Metadata.Attributes.ReleaseDate,
			TimeLeft:    TimeLeft(c.Metadata.Attributes.ReleaseDate, now),
		}
	}
	return c, nil
}
