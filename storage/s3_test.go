package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/inspikalu/sol-capsule/models"
)

type MockS3Client struct {
	mock.Mock
}

func (m *MockS3Client) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.PutObjectOutput)
	return out, args.Error(1)
}

func TestS3Uploader_UploadFile(t *testing.T) {
	client := new(MockS3Client)
	uploader := NewS3UploaderWithClient(client, "capsules", "https://cdn.example.com/")

	data := []byte("image-bytes")
	key := contentHash(data)

	client.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		return *in.Bucket == "capsules" &&
			*in.Key == key &&
			*in.ContentType == "image/png" &&
			*in.ContentLength == int64(len(data)) &&
			in.Body != nil
	})).Return(&s3.PutObjectOutput{}, nil)

	asset, err := uploader.UploadFile(context.Background(), "capsule.png", "image/png", data)
	assert.NoError(t, err)
	assert.Equal(t, models.UploadedAsset{ContentID: key, URL: "https://cdn.example.com/" + key}, asset)

	client.AssertExpectations(t)
}

func TestS3Uploader_UploadJSON(t *testing.T) {
	client := new(MockS3Client)
	uploader := NewS3UploaderWithClient(client, "capsules", "https://cdn.example.com")

	client.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		return *in.ContentType == "application/json"
	})).Return(&s3.PutObjectOutput{}, nil)

	asset, err := uploader.UploadJSON(context.Background(), "metadata.json", map[string]string{"name": "capsule"})
	assert.NoError(t, err)
	assert.Equal(t, contentHash([]byte(`{"name":"capsule"}`)), asset.ContentID)
}

func TestS3Uploader_Error(t *testing.T) {
	client := new(MockS3Client)
	uploader := NewS3UploaderWithClient(client, "capsules", "https://cdn.example.com")

	client.On("PutObject", mock.Anything, mock.Anything).Return(nil, errors.New("AccessDenied"))

	_, err := uploader.UploadFile(context.Background(), "capsule.png", "image/png", []byte("x"))

	var uploadErr *UploadError
	assert.True(t, errors.As(err, &uploadErr))
	assert.Equal(t, BackendS3, uploadErr.Backend)
	assert.Contains(t, err.Error(), "AccessDenied")
}

func TestNewS3Uploader_Validation(t *testing.T) {
	_, err := NewS3Uploader(context.Background(), models.S3Config{PublicBaseURL: "https://cdn"})
	assert.Error(t, err)

	_, err = NewS3Uploader(context.Background(), models.S3Config{Bucket: "b"})
	assert.Error(t, err)

	uploader, err := NewS3Uploader(context.Background(), models.S3Config{
		Bucket:        "b",
		Region:        "us-east-1",
		Endpoint:      "http://localhost:9000",
		AccessKeyID:   "minio",
		SecretKey:     "minio-secret",
		PublicBaseURL: "http://localhost:9000/b",
	})
	assert.NoError(t, err)
	assert.NotNil(t, uploader)
}
