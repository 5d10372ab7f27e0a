package capsule

import (
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"

	"github.com/inspikalu/sol-capsule/models"
)

func TestSplitTags(t *testing.T) {
	assert.Equal(t, []string{"wedding", "2024"}, SplitTags("wedding,2024"))
	assert.Equal(t, []string{"a", "b"}, SplitTags(" a , b "))
	assert.Equal(t, []string{"a", "b"}, SplitTags("a,,b,"))
	assert.Equal(t, []string{"Temporal", "Vault"}, SplitTags(""))
	assert.Equal(t, []string{"Temporal", "Vault"}, SplitTags(" , ,"))

	tags := SplitTags("")
	tags[0] = "changed"
	assert.Equal(t, []string{"Temporal", "Vault"}, DefaultTags)
}

func TestComposeMetadata(t *testing.T) {
	request := models.CapsuleRequest{
		Description: "  Our wedding day ",
		ReleaseDate: time.Date(2030, 2, 3, 0, 0, 0, 0, time.UTC),
		IsPublic:    true,
		Tags:        "wedding, family",
	}

	metadata := ComposeMetadata(request, "https://gw/ipfs/img")
	assert.Equal(t, models.CapsuleMetadata{
		Name:        "Our wedding day",
		Description: "Our wedding day",
		Image:       "https://gw/ipfs/img",
		Attributes: models.CapsuleAttributes{
			ReleaseDate: "2030-02-03",
			IsPublic:    true,
			Tags:        []string{"wedding", "family"},
		},
	}, metadata)

	assert.Equal(t, metadata, ComposeMetadata(request, "https://gw/ipfs/img"))
	assert.NoError(t, ValidateMetadata(metadata))
}

func TestValidateMetadata_Invalid(t *testing.T) {
	metadata := ComposeMetadata(models.CapsuleRequest{
		Description: "x",
		ReleaseDate: time.Date(2030, 2, 3, 0, 0, 0, 0, time.UTC),
	}, "https://gw/ipfs/img")

	metadata.Name = ""
	assert.Error(t, ValidateMetadata(metadata))

	metadata.Name = "x"
	metadata.Attributes.ReleaseDate = "03/02/2030"
	assert.Error(t, ValidateMetadata(metadata))

	metadata.Attributes.ReleaseDate = "2030-02-03"
	metadata.Image = ""
	assert.Error(t, ValidateMetadata(metadata))

	metadata.Image = "ipfs/img"
	assert.Error(t, ValidateMetadata(metadata))

	metadata.Image = "https://gw/ipfs/img"
	assert.NoError(t, ValidateMetadata(metadata))
}

func TestComposeCollectionMetadata(t *testing.T) {
	signer := solana.NewWallet().PublicKey().String()

	metadata := ComposeCollectionMetadata(signer, "https://gw/ipfs/img")
	assert.Equal(t, "Time Capsule Collection "+signer, metadata.Name)
	assert.Equal(t, "A collection of time-locked digital memories", metadata.Description)
	assert.Equal(t, "https://gw/ipfs/img", metadata.Image)
	assert.Equal(t, models.CollectionAttributes{Category: "Time Capsule", Version: "1.0", Creator: signer}, metadata.Attributes)
	assert.NoError(t, ValidateCollectionMetadata(metadata))

	assert.Error(t, ValidateCollectionMetadata(ComposeCollectionMetadata("short", "https://gw/ipfs/img")))
	assert.Error(t, ValidateCollectionMetadata(ComposeCollectionMetadata(signer, "")))
}

func TestRoyalty(t *testing.T) {
	royalty := Royalty("creator")
	assert.Equal(t, uint16(500), royalty.BasisPoints)
	assert.Equal(t, []models.RoyaltyCreator{{Address: "creator", Percentage: 100}}, royalty.Creators)
	assert.Equal(t, models.RuleSetNone, royalty.RuleSet)
}
