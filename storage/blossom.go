package storage

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/imroc/req"
	"github.com/nbd-wtf/go-nostr"
	"github.com/pippellia-btc/blossom"
	"github.com/tidwall/gjson"

	"github.com/inspikalu/sol-capsule/models"

	log "github.com/sirupsen/logrus"
)

const (
	KindBlossomAuth = 24242

	blossomAuthTTL = 5 * time.Minute
)

// BlossomUploader stores blobs on a Blossom server (BUD-02). The content id is
// the sha256 of the blob.
type BlossomUploader struct {
	client    *req.Req
	serverURL string
	secretKey string
	pubkey    string
}

var _ Uploader = &BlossomUploader{}

func NewBlossomUploader(serverURL string, secretKey string, timeout time.Duration) (*BlossomUploader, error) {
	if serverURL == "" {
		return nil, errors.New("blossom server url is required")
	}
	if !nostr.IsValid32ByteHex(secretKey) {
		return nil, errors.New("blossom nostr private key must be 32 byte hex")
	}
	pubkey, err := nostr.GetPublicKey(secretKey)
	if err != nil {
		return nil, fmt.Errorf("invalid nostr private key: %w", err)
	}

	client := req.New()
	client.SetTimeout(timeout)

	return &BlossomUploader{
		client:    client,
		serverURL: strings.TrimSuffix(serverURL, "/"),
		secretKey: secretKey,
		pubkey:    pubkey,
	}, nil
}

// authorization builds the "Nostr <base64 event>" header value for an upload
// of the blob with the given hash.
func (b *BlossomUploader) authorization(name string, hash blossom.Hash) (string, error) {
	event := nostr.Event{
		Kind:      KindBlossomAuth,
		CreatedAt: nostr.Now(),
		Content:   "Upload " + name,
		Tags: nostr.Tags{
			{"t", "upload"},
			{"x", hash.Hex()},
			{"expiration", strconv.FormatInt(time.Now().Add(blossomAuthTTL).Unix(), 10)},
		},
	}
	if err := event.Sign(b.secretKey); err != nil {
		return "", fmt.Errorf("failed to sign auth event: %w", err)
	}

	raw, err := json.Marshal(event)
	if err != nil {
		return "", err
	}
	return "Nostr " + base64.StdEncoding.EncodeToString(raw), nil
}

func (b *BlossomUploader) UploadFile(ctx context.Context, name string, contentType string, data []byte) (models.UploadedAsset, error) {
	hash, err := blossom.ParseHash(contentHash(data))
	if err != nil {
		return models.UploadedAsset{}, &UploadError{Backend: BackendBlossom, Name: name, Err: err}
	}

	auth, err := b.authorization(name, hash)
	if err != nil {
		return models.UploadedAsset{}, &UploadError{Backend: BackendBlossom, Name: name, Err: err}
	}

	log.Debugln("[STORAGE]", "Uploading blob", name, "hash", hash.Hex(), "size", len(data))

	resp, err := b.client.Put(b.serverURL+"/upload",
		req.Header{
			"Authorization": auth,
			"Content-Type":  contentType,
			"X-SHA-256":     hash.Hex(),
		},
		data,
		ctx,
	)
	if err != nil {
		return models.UploadedAsset{}, &UploadError{Backend: BackendBlossom, Name: name, Err: err}
	}

	status := resp.Response().StatusCode
	body, _ := resp.ToBytes()
	if status < 200 || status >= 300 {
		reason := resp.Response().Header.Get("X-Reason")
		if reason == "" {
			reason = strings.TrimSpace(string(body))
		}
		return models.UploadedAsset{}, &UploadError{
			Backend:    BackendBlossom,
			Name:       name,
			StatusCode: status,
			Err:        fmt.Errorf("%.200s", reason),
		}
	}

	descriptor := gjson.ParseBytes(body)
	returned, err := blossom.ParseHash(descriptor.Get("sha256").String())
	if err != nil {
		return models.UploadedAsset{}, &UploadError{Backend: BackendBlossom, Name: name, StatusCode: status, Err: fmt.Errorf("invalid descriptor hash: %w", err)}
	}
	if returned.Hex() != hash.Hex() {
		return models.UploadedAsset{}, &UploadError{
			Backend:    BackendBlossom,
			Name:       name,
			StatusCode: status,
			Err:        fmt.Errorf("server stored %s, expected %s", returned.Hex(), hash.Hex()),
		}
	}

	url := descriptor.Get("url").String()
	if url == "" {
		url = b.serverURL + "/" + hash.Hex()
	}

	log.Debugln("[STORAGE]", "Uploaded blob", hash.Hex())

	return models.UploadedAsset{
		ContentID: hash.Hex(),
		URL:       url,
	}, nil
}

func (b *BlossomUploader) UploadJSON(ctx context.Context, name string, v interface{}) (models.UploadedAsset, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return models.UploadedAsset{}, &UploadError{Backend: BackendBlossom, Name: name, Err: err}
	}
	return b.UploadFile(ctx, name, "application/json", data)
}
