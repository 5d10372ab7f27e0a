package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func init() {
	log.SetOutput(io.Discard)
}

func TestNewPinataUploader(t *testing.T) {
	_, err := NewPinataUploader("", "", "gateway.pinata.cloud", time.Second)
	assert.Error(t, err)

	_, err = NewPinataUploader("", "jwt", "", time.Second)
	assert.Error(t, err)

	uploader, err := NewPinataUploader("", "jwt", "gateway.pinata.cloud", time.Second)
	assert.NoError(t, err)
	assert.Equal(t, DefaultPinataURL, uploader.baseURL)
}

func TestPinataUploader_UploadFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pinning/pinFileToIPFS", r.URL.Path)
		assert.Equal(t, "Bearer test-jwt", r.Header.Get("Authorization"))

		file, header, err := r.FormFile("file")
		assert.NoError(t, err)
		data, _ := io.ReadAll(file)
		assert.Equal(t, "capsule.png", header.Filename)
		assert.Equal(t, []byte("image-bytes"), data)
		assert.Contains(t, r.FormValue("pinataMetadata"), "capsule.png")

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"IpfsHash":"QmFile","PinSize":11,"Timestamp":"2024-01-01T00:00:00Z"}`))
	}))
	defer server.Close()

	uploader, err := NewPinataUploader(server.URL, "test-jwt", "gateway.pinata.cloud", time.Second)
	assert.NoError(t, err)

	asset, err := uploader.UploadFile(context.Background(), "capsule.png", "image/png", []byte("image-bytes"))
	assert.NoError(t, err)
	assert.Equal(t, "QmFile", asset.ContentID)
	assert.Equal(t, "https://gateway.pinata.cloud/ipfs/QmFile", asset.URL)
}

func TestPinataUploader_UploadJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pinning/pinJSONToIPFS", r.URL.Path)

		var body struct {
			PinataContent  map[string]string `json:"pinataContent"`
			PinataMetadata map[string]string `json:"pinataMetadata"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Our wedding day", body.PinataContent["name"])
		assert.Equal(t, "metadata.json", body.PinataMetadata["name"])

		w.Write([]byte(`{"IpfsHash":"QmMeta"}`))
	}))
	defer server.Close()

	uploader, err := NewPinataUploader(server.URL, "test-jwt", "https://my.gateway/", time.Second)
	assert.NoError(t, err)

	asset, err := uploader.UploadJSON(context.Background(), "metadata.json", map[string]string{"name": "Our wedding day"})
	assert.NoError(t, err)
	assert.Equal(t, "QmMeta", asset.ContentID)
	assert.Equal(t, "https://my.gateway/ipfs/QmMeta", asset.URL)
}

func TestPinataUploader_Errors(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"invalid jwt"}`))
		}))
		defer server.Close()

		uploader, _ := NewPinataUploader(server.URL, "bad", "gw", time.Second)
		_, err := uploader.UploadJSON(context.Background(), "m.json", map[string]string{})

		var uploadErr *UploadError
		assert.True(t, errors.As(err, &uploadErr))
		assert.Equal(t, http.StatusUnauthorized, uploadErr.StatusCode)
		assert.Contains(t, err.Error(), "invalid jwt")
	})

	t.Run("missing hash", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{}`))
		}))
		defer server.Close()

		uploader, _ := NewPinataUploader(server.URL, "jwt", "gw", time.Second)
		_, err := uploader.UploadFile(context.Background(), "f.png", "image/png", []byte("x"))

		var uploadErr *UploadError
		assert.True(t, errors.As(err, &uploadErr))
		assert.Contains(t, err.Error(), "IpfsHash")
	})

	t.Run("unreachable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close()

		uploader, _ := NewPinataUploader(server.URL, "jwt", "gw", time.Second)
		_, err := uploader.UploadFile(context.Background(), "f.png", "image/png", []byte("x"))

		var uploadErr *UploadError
		assert.True(t, errors.As(err, &uploadErr))
		assert.Equal(t, BackendPinata, uploadErr.Backend)
	})
}
