package signer

import (
	"context"
	"crypto/ed25519"
	"crypto/x509"
	"encoding/pem"
	"fmt"

	kms "cloud.google.com/go/kms/apiv1"
	"cloud.google.com/go/kms/apiv1/kmspb"
	"github.com/gagliardetto/solana-go"
	gax "github.com/googleapis/gax-go/v2"
)

type GCPKeyManagementClient interface {
	Close() error
	GetPublicKey(ctx context.Context, req *kmspb.GetPublicKeyRequest, opts ...gax.CallOption) (*kmspb.PublicKey, error)
	AsymmetricSign(ctx context.Context, req *kmspb.AsymmetricSignRequest, opts ...gax.CallOption) (*kmspb.AsymmetricSignResponse, error)
	GetCryptoKeyVersion(ctx context.Context, req *kmspb.GetCryptoKeyVersionRequest, opts ...gax.CallOption) (*kmspb.CryptoKeyVersion, error)
}

type GcpKmsSigner struct {
	client    GCPKeyManagementClient
	keyName   string
	publicKey solana.PublicKey
	verifyKey ed25519.PublicKey
}

var _ Signer = &GcpKmsSigner{}

var NewGCPKeyManagementClient = func(ctx context.Context) (GCPKeyManagementClient, error) {
	return kms.NewKeyManagementClient(ctx)
}

// NewGcpKmsSigner loads an EC_SIGN_ED25519 key version. keyName is the full
// crypto key version resource name.
func NewGcpKmsSigner(ctx context.Context, keyName string) (*GcpKmsSigner, error) {
	client, err := NewGCPKeyManagementClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create KMS client: %w", err)
	}

	keyVersion, err := client.GetCryptoKeyVersion(ctx, &kmspb.GetCryptoKeyVersionRequest{Name: keyName})
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to get key version details: %w", err)
	}

	if keyVersion.Algorithm != kmspb.CryptoKeyVersion_EC_SIGN_ED25519 {
		client.Close()
		return nil, fmt.Errorf("key algorithm is not EC_SIGN_ED25519")
	}

	verifyKey, err := resolvePublicKey(ctx, client, keyName)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to resolve public key: %w", err)
	}

	return &GcpKmsSigner{
		client:    client,
		keyName:   keyName,
		publicKey: solana.PublicKeyFromBytes(verifyKey),
		verifyKey: verifyKey,
	}, nil
}

func (s *GcpKmsSigner) Destroy() {
	s.client.Close()
}

func (s *GcpKmsSigner) PublicKey() solana.PublicKey {
	return s.publicKey
}

func (s *GcpKmsSigner) Sign(ctx context.Context, message []byte) (solana.Signature, error) {
	var signature solana.Signature

	resp, err := s.client.AsymmetricSign(ctx, &kmspb.AsymmetricSignRequest{
		Name: s.keyName,
		Data: message,
	})
	if err != nil {
		return signature, fmt.Errorf("asymmetric sign operation: %w", err)
	}

	if len(resp.Signature) != ed25519.SignatureSize {
		return signature, fmt.Errorf("unexpected signature length: %d", len(resp.Signature))
	}

	if !ed25519.Verify(s.verifyKey, message, resp.Signature) {
		return signature, fmt.Errorf("signature does not verify against key %s", s.publicKey)
	}

	copy(signature[:], resp.Signature)
	return signature, nil
}

func resolvePublicKey(ctx context.Context, client GCPKeyManagementClient, keyName string) (ed25519.PublicKey, error) {
	publicKeyResp, err := client.GetPublicKey(ctx, &kmspb.GetPublicKeyRequest{Name: keyName})
	if err != nil {
		return nil, fmt.Errorf("failed to get public key: %w", err)
	}

	block, _ := pem.Decode([]byte(publicKeyResp.Pem))
	if block == nil {
		return nil, fmt.Errorf("public key %q PEM empty: %.130q", keyName, publicKeyResp.Pem)
	}

	parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("public key %q PEM block %q: %w", keyName, block.Type, err)
	}

	publicKey, ok := parsed.(ed25519.PublicKey)
	if !ok {
		return nil, fmt.Errorf("public key %q is not ed25519", keyName)
	}

	return publicKey, nil
}
