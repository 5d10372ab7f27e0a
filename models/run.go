package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	CollectionCapsuleRuns = "capsule_runs"
)

// types of run status, in the order a run moves through them
const (
	RunStatusPending             = "pending"
	RunStatusUploaded            = "uploaded"
	RunStatusCollectionPending   = "collection_pending"
	RunStatusCollectionConfirmed = "collection_confirmed"
	RunStatusAssetPending        = "asset_pending"
	RunStatusAssetConfirmed      = "asset_confirmed"
	RunStatusFailed              = "failed"
)

// CapsuleRun is the persisted state of one pipeline run. A run that failed
// after its collection was confirmed keeps RunStatusCollectionConfirmed so it
// can be resumed.
type CapsuleRun struct {
	Id                    *primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	RunID                 string              `bson:"run_id" json:"runId"`
	Owner                 string              `bson:"owner" json:"owner"`
	Signer                string              `bson:"signer" json:"signer"`
	Cluster               string              `bson:"cluster" json:"cluster"`
	Status                string              `bson:"status" json:"status"`
	Description           string              `bson:"description" json:"description"`
	FileHash              string              `bson:"file_hash" json:"fileHash"`
	ImageURL              string              `bson:"image_url" json:"imageUrl"`
	Metadata              CapsuleMetadata     `bson:"metadata" json:"metadata"`
	MetadataURL           string              `bson:"metadata_url" json:"metadataUrl"`
	CollectionMetadataURL string              `bson:"collection_metadata_url" json:"collectionMetadataUrl"`
	Collection            *CollectionRecord   `bson:"collection,omitempty" json:"collection,omitempty"`
	Asset                 *CapsuleAsset       `bson:"asset,omitempty" json:"asset,omitempty"`
	Error                 string              `bson:"error,omitempty" json:"error,omitempty"`
	Attempts              int                 `bson:"attempts" json:"attempts"`
	CreatedAt             time.Time           `bson:"created_at" json:"createdAt"`
	UpdatedAt             time.Time           `bson:"updated_at" json:"updatedAt"`
}

func (r *CapsuleRun) Resumable() bool {
	return r != nil && r.Status == RunStatusCollectionConfirmed && r.Collection != nil
}
