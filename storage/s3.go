package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/inspikalu/sol-capsule/models"

	log "github.com/sirupsen/logrus"
)

type S3PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Uploader stores objects keyed by their sha256 so identical content maps
// to the same URL.
type S3Uploader struct {
	client        S3PutObjectAPI
	bucket        string
	publicBaseURL string
}

var _ Uploader = &S3Uploader{}

func NewS3Uploader(ctx context.Context, cfg models.S3Config) (*S3Uploader, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}
	if cfg.PublicBaseURL == "" {
		return nil, errors.New("s3 public base url is required")
	}

	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretKey,
			"",
		)))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return NewS3UploaderWithClient(client, cfg.Bucket, cfg.PublicBaseURL), nil
}

func NewS3UploaderWithClient(client S3PutObjectAPI, bucket string, publicBaseURL string) *S3Uploader {
	return &S3Uploader{
		client:        client,
		bucket:        bucket,
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
	}
}

func (u *S3Uploader) UploadFile(ctx context.Context, name string, contentType string, data []byte) (models.UploadedAsset, error) {
	key := contentHash(data)

	log.Debugln("[STORAGE]", "Putting object", name, "key", key, "size", len(data))

	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
		Metadata:      map[string]string{"name": name},
	})
	if err != nil {
		return models.UploadedAsset{}, &UploadError{Backend: BackendS3, Name: name, Err: err}
	}

	return models.UploadedAsset{
		ContentID: key,
		URL:       u.publicBaseURL + "/" + key,
	}, nil
}

func (u *S3Uploader) UploadJSON(ctx context.Context, name string, v interface{}) (models.UploadedAsset, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return models.UploadedAsset{}, &UploadError{Backend: BackendS3, Name: name, Err: err}
	}
	return u.UploadFile(ctx, name, "application/json", data)
}
