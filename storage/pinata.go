package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/imroc/req"
	"github.com/tidwall/gjson"

	"github.com/inspikalu/sol-capsule/models"

	log "github.com/sirupsen/logrus"
)

const DefaultPinataURL = "https://api.pinata.cloud"

type PinataUploader struct {
	client  *req.Req
	baseURL string
	jwt     string
	gateway string
}

var _ Uploader = &PinataUploader{}

func NewPinataUploader(baseURL string, jwt string, gateway string, timeout time.Duration) (*PinataUploader, error) {
	if jwt == "" {
		return nil, errors.New("pinata jwt is required")
	}
	if gateway == "" {
		return nil, errors.New("pinata gateway is required")
	}
	if baseURL == "" {
		baseURL = DefaultPinataURL
	}

	client := req.New()
	client.SetTimeout(timeout)

	return &PinataUploader{
		client:  client,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		jwt:     jwt,
		gateway: gateway,
	}, nil
}

func (p *PinataUploader) header() req.Header {
	return req.Header{
		"Authorization": "Bearer " + p.jwt,
	}
}

func (p *PinataUploader) UploadFile(ctx context.Context, name string, contentType string, data []byte) (models.UploadedAsset, error) {
	log.Debugln("[STORAGE]", "Pinning file", name, "type", contentType, "size", len(data))

	metadata, _ := json.Marshal(map[string]string{"name": name})

	resp, err := p.client.Post(p.baseURL+"/pinning/pinFileToIPFS",
		p.header(),
		req.Param{"pinataMetadata": string(metadata)},
		req.FileUpload{
			FileName:  name,
			FieldName: "file",
			File:      io.NopCloser(bytes.NewReader(data)),
		},
		ctx,
	)
	return p.result(name, resp, err)
}

func (p *PinataUploader) UploadJSON(ctx context.Context, name string, v interface{}) (models.UploadedAsset, error) {
	log.Debugln("[STORAGE]", "Pinning json", name)

	body := map[string]interface{}{
		"pinataContent":  v,
		"pinataMetadata": map[string]string{"name": name},
	}

	resp, err := p.client.Post(p.baseURL+"/pinning/pinJSONToIPFS", p.header(), req.BodyJSON(body), ctx)
	return p.result(name, resp, err)
}

func (p *PinataUploader) result(name string, resp *req.Resp, err error) (models.UploadedAsset, error) {
	if err != nil {
		return models.UploadedAsset{}, &UploadError{Backend: BackendPinata, Name: name, Err: err}
	}

	status := resp.Response().StatusCode
	body, _ := resp.ToBytes()
	if status < 200 || status >= 300 {
		return models.UploadedAsset{}, &UploadError{
			Backend:    BackendPinata,
			Name:       name,
			StatusCode: status,
			Err:        fmt.Errorf("%.200s", strings.TrimSpace(string(body))),
		}
	}

	cid := gjson.GetBytes(body, "IpfsHash").String()
	if cid == "" {
		return models.UploadedAsset{}, &UploadError{
			Backend:    BackendPinata,
			Name:       name,
			StatusCode: status,
			Err:        errors.New("response has no IpfsHash"),
		}
	}

	log.Debugln("[STORAGE]", "Pinned", name, "cid", cid)

	return models.UploadedAsset{
		ContentID: cid,
		URL:       gatewayURL(p.gateway, cid),
	}, nil
}
