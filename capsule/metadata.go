package capsule

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/inspikalu/sol-capsule/models"
)

const (
	CollectionName        = "Time Capsule Collection"
	CollectionDescription = "A collection of time-locked digital memories"
	CollectionCategory    = "Time Capsule"
	CollectionVersion     = "1.0"

	RoyaltyBasisPoints = 500
)

var DefaultTags = []string{"Temporal", "Vault"}

const capsuleMetadataSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["name", "description", "image", "attributes"],
	"properties": {
		"name": {"type": "string", "minLength": 1},
		"description": {"type": "string", "minLength": 1},
		"image": {"type": "string", "minLength": 1, "format": "uri"},
		"attributes": {
			"type": "object",
			"required": ["releaseDate", "isPublic", "tags"],
			"properties": {
				"releaseDate": {"type": "string", "pattern": "^[0-9]{4}-[0-9]{2}-[0-9]{2}$"},
				"isPublic": {"type": "boolean"},
				"tags": {"type": "array", "items": {"type": "string", "minLength": 1}, "minItems": 1}
			}
		}
	}
}`

const collectionMetadataSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["name", "description", "image", "attributes"],
	"properties": {
		"name": {"type": "string", "minLength": 1},
		"description": {"type": "string"},
		"image": {"type": "string", "minLength": 1, "format": "uri"},
		"attributes": {
			"type": "object",
			"required": ["category", "version", "creator"],
			"properties": {
				"category": {"type": "string"},
				"version": {"type": "string"},
				"creator": {"type": "string", "minLength": 32, "maxLength": 44}
			}
		}
	}
}`

var (
	capsuleSchema    = mustCompileSchema("capsule_metadata.json", capsuleMetadataSchema)
	collectionSchema = mustCompileSchema("collection_metadata.json", collectionMetadataSchema)
)

// mustCompileSchema asserts "format" keywords, which draft 2020-12 otherwise
// treats as annotations.
func mustCompileSchema(url string, schema string) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	if err := compiler.AddResource(url, strings.NewReader(schema)); err != nil {
		panic(fmt.Sprintf("jsonschema: AddResource(%q): %v", url, err))
	}
	return compiler.MustCompile(url)
}

// SplitTags splits a comma separated list, trimming each tag and dropping
// empty ones. An empty list yields DefaultTags.
func SplitTags(tags string) []string {
	result := []string{}
	for _, tag := range strings.Split(tags, ",") {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			result = append(result, tag)
		}
	}
	if len(result) == 0 {
		return append([]string{}, DefaultTags...)
	}
	return result
}

func ComposeMetadata(request models.CapsuleRequest, imageURL string) models.CapsuleMetadata {
	description := strings.TrimSpace(request.Description)
	return models.CapsuleMetadata{
		Name:        description,
		Description: description,
		Image:       imageURL,
		Attributes: models.CapsuleAttributes{
			ReleaseDate: request.ReleaseDate.UTC().Format(models.ReleaseDateLayout),
			IsPublic:    request.IsPublic,
			Tags:        SplitTags(request.Tags),
		},
	}
}

func ComposeCollectionMetadata(signerAddress string, imageURL string) models.CollectionMetadata {
	return models.CollectionMetadata{
		Name:        CollectionName + " " + signerAddress,
		Description: CollectionDescription,
		Image:       imageURL,
		Attributes: models.CollectionAttributes{
			Category: CollectionCategory,
			Version:  CollectionVersion,
			Creator:  signerAddress,
		},
	}
}

// Royalty is the plugin attached to both the collection and the asset: 5%
// to the signer alone.
func Royalty(signerAddress string) models.RoyaltyConfig {
	return models.RoyaltyConfig{
		BasisPoints: RoyaltyBasisPoints,
		Creators: []models.RoyaltyCreator{
			{Address: signerAddress, Percentage: 100},
		},
		RuleSet: models.RuleSetNone,
	}
}

func validateAgainst(schema *jsonschema.Schema, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return err
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("invalid metadata: %w", err)
	}
	return nil
}

func ValidateMetadata(metadata models.CapsuleMetadata) error {
	return validateAgainst(capsuleSchema, metadata)
}

func ValidateCollectionMetadata(metadata models.CollectionMetadata) error {
	return validateAgainst(collectionSchema, metadata)
}
