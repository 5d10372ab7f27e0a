package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/inspikalu/sol-capsule/models"

	log "github.com/sirupsen/logrus"
)

const (
	BackendPinata  = "pinata"
	BackendBlossom = "blossom"
	BackendS3      = "s3"

	DefaultTimeout = 60 * time.Second
)

// Uploader stores immutable content and returns its id and a public URL.
type Uploader interface {
	UploadFile(ctx context.Context, name string, contentType string, data []byte) (models.UploadedAsset, error)
	UploadJSON(ctx context.Context, name string, v interface{}) (models.UploadedAsset, error)
}

// UploadError is returned when the backend was reached but the upload did
// not succeed.
type UploadError struct {
	Backend    string
	Name       string
	StatusCode int
	Err        error
}

func (e *UploadError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s upload of %q failed with status %d: %v", e.Backend, e.Name, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s upload of %q failed: %v", e.Backend, e.Name, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// NewUploader builds the configured backend, wrapped in a gateway check
// when verify_gateway is on.
func NewUploader(ctx context.Context, cfg models.StorageConfig) (Uploader, error) {
	timeout := DefaultTimeout
	if cfg.TimeoutMillis > 0 {
		timeout = time.Duration(cfg.TimeoutMillis) * time.Millisecond
	}

	var (
		uploader Uploader
		err      error
	)

	switch cfg.Backend {
	case BackendPinata, "":
		uploader, err = NewPinataUploader(cfg.PinataURL, cfg.PinataJWT, cfg.Gateway, timeout)
	case BackendBlossom:
		uploader, err = NewBlossomUploader(cfg.Blossom.ServerURL, cfg.Blossom.NostrPrivateKey, timeout)
	case BackendS3:
		uploader, err = NewS3Uploader(ctx, cfg.S3)
	default:
		err = fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}

	log.Infoln("[STORAGE]", "Using backend", cfg.Backend)

	if cfg.VerifyGateway {
		uploader = NewVerifyingUploader(uploader, NewGatewayProber(timeout))
	}
	return uploader, nil
}

func contentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// gatewayURL accepts the gateway as a bare host, a base URL or a base URL that
// already ends in /ipfs, and always yields <base>/ipfs/<cid>.
func gatewayURL(gateway string, cid string) string {
	gateway = strings.TrimSuffix(gateway, "/")
	gateway = strings.TrimSuffix(gateway, "/ipfs")
	if !strings.HasPrefix(gateway, "http://") && !strings.HasPrefix(gateway, "https://") {
		gateway = "https://" + gateway
	}
	return gateway + "/ipfs/" + cid
}
