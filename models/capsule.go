package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	CollectionCapsules = "capsules"
)

// ReleaseDateLayout is the calendar date format used for release dates in
// metadata and on the wire.
const ReleaseDateLayout = "2006-01-02"

type CapsuleFile struct {
	Name        string
	ContentType string
	Data        []byte
}

func (f *CapsuleFile) Size() int64 {
	if f == nil {
		return 0
	}
	return int64(len(f.Data))
}

// CapsuleRequest is the user input for one capsule creation run.
type CapsuleRequest struct {
	File        *CapsuleFile
	Description string
	ReleaseDate time.Time
	IsPublic    bool
	Tags        string
}

type UploadedAsset struct {
	ContentID string `bson:"content_id" json:"contentId"`
	URL       string `bson:"url" json:"url"`
}

type CapsuleAttributes struct {
	ReleaseDate string   `bson:"release_date" json:"releaseDate"`
	IsPublic    bool     `bson:"is_public" json:"isPublic"`
	Tags        []string `bson:"tags" json:"tags"`
}

type CapsuleMetadata struct {
	Name        string            `bson:"name" json:"name"`
	Description string            `bson:"description" json:"description"`
	Image       string            `bson:"image" json:"image"`
	Attributes  CapsuleAttributes `bson:"attributes" json:"attributes"`
}

type CollectionAttributes struct {
	Category string `json:"category"`
	Version  string `json:"version"`
	Creator  string `json:"creator"`
}

type CollectionMetadata struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Image       string               `json:"image"`
	Attributes  CollectionAttributes `json:"attributes"`
}

const RuleSetNone = "None"

type RoyaltyCreator struct {
	Address    string `bson:"address" json:"address"`
	Percentage uint8  `bson:"percentage" json:"percentage"`
}

type RoyaltyConfig struct {
	BasisPoints uint16           `bson:"basis_points" json:"basisPoints"`
	Creators    []RoyaltyCreator `bson:"creators" json:"creators"`
	RuleSet     string           `bson:"rule_set" json:"ruleSet"`
}

type CollectionRecord struct {
	Address     string        `bson:"address" json:"address"`
	MetadataURL string        `bson:"metadata_url" json:"metadataUrl"`
	Royalty     RoyaltyConfig `bson:"royalty" json:"royalty"`
	Signature   string        `bson:"signature" json:"signature"`
}

type CapsuleAsset struct {
	Address     string           `bson:"address" json:"address"`
	MetadataURL string           `bson:"metadata_url" json:"metadataUrl"`
	Collection  CollectionRecord `bson:"collection" json:"collection"`
	Royalty     RoyaltyConfig    `bson:"royalty" json:"royalty"`
	Signature   string           `bson:"signature" json:"signature"`
}

type PipelineResult struct {
	RunID             string `json:"runId"`
	FileHash          string `json:"fileHash"`
	CollectionAddress string `json:"collectionAddress"`
	NFTAddress        string `json:"nftAddress"`
	CollectionTx      string `json:"collectionTx"`
	NFTTx             string `json:"nftTx"`
	ExplorerURL       string `json:"explorerUrl"`
}

// Capsule is the registry record of a minted capsule.
type Capsule struct {
	Id                *primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	NFTAddress        string              `bson:"nft_address" json:"nftAddress"`
	CollectionAddress string              `bson:"collection_address" json:"collectionAddress"`
	Owner             string              `bson:"owner" json:"owner"`
	FileHash          string              `bson:"file_hash" json:"fileHash"`
	MetadataURL       string              `bson:"metadata_url" json:"metadataUrl"`
	Metadata          CapsuleMetadata     `bson:"metadata" json:"metadata"`
	Cluster           string              `bson:"cluster" json:"cluster"`
	NFTTx             string              `bson:"nft_tx" json:"nftTx"`
	CollectionTx      string              `bson:"collection_tx" json:"collectionTx"`
	IsListed          bool                `bson:"is_listed" json:"isListed"`
	ListingPrice      *float64            `bson:"listing_price,omitempty" json:"listingPrice,omitempty"`
	CreatedAt         time.Time           `bson:"created_at" json:"createdAt"`
	UpdatedAt         time.Time           `bson:"updated_at" json:"updatedAt"`
}
