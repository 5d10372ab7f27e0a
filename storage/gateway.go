package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/imroc/req"

	"github.com/inspikalu/sol-capsule/models"

	log "github.com/sirupsen/logrus"
)

type Prober interface {
	Probe(ctx context.Context, url string) error
}

// GatewayProber issues a HEAD request and requires a 2xx answer.
type GatewayProber struct {
	client *req.Req
}

func NewGatewayProber(timeout time.Duration) *GatewayProber {
	client := req.New()
	client.SetTimeout(timeout)
	return &GatewayProber{client: client}
}

func (g *GatewayProber) Probe(ctx context.Context, url string) error {
	resp, err := g.client.Head(url, ctx)
	if err != nil {
		return err
	}
	status := resp.Response().StatusCode
	if status < 200 || status >= 300 {
		return fmt.Errorf("gateway returned status %d for %s", status, url)
	}
	return nil
}

// VerifyingUploader only reports an upload once its URL answers on the
// gateway.
type VerifyingUploader struct {
	Uploader
	prober Prober
}

func NewVerifyingUploader(uploader Uploader, prober Prober) *VerifyingUploader {
	return &VerifyingUploader{Uploader: uploader, prober: prober}
}

func (v *VerifyingUploader) verify(ctx context.Context, name string, asset models.UploadedAsset, err error) (models.UploadedAsset, error) {
	if err != nil {
		return asset, err
	}
	if err := v.prober.Probe(ctx, asset.URL); err != nil {
		log.Warnln("[STORAGE]", "Gateway check failed for", name, err)
		return models.UploadedAsset{}, &UploadError{Backend: "gateway", Name: name, Err: err}
	}
	return asset, nil
}

func (v *VerifyingUploader) UploadFile(ctx context.Context, name string, contentType string, data []byte) (models.UploadedAsset, error) {
	asset, err := v.Uploader.UploadFile(ctx, name, contentType, data)
	return v.verify(ctx, name, asset, err)
}

func (v *VerifyingUploader) UploadJSON(ctx context.Context, name string, val interface{}) (models.UploadedAsset, error) {
	asset, err := v.Uploader.UploadJSON(ctx, name, val)
	return v.verify(ctx, name, asset, err)
}
