package signer

import (
	"context"
	"crypto/ed25519"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

type KeypairSigner struct {
	privateKey solana.PrivateKey
	publicKey  solana.PublicKey
}

var _ Signer = &KeypairSigner{}

func NewKeypairSigner(privateKey solana.PrivateKey) (*KeypairSigner, error) {
	if len(privateKey) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("invalid private key length: %d", len(privateKey))
	}
	return &KeypairSigner{
		privateKey: privateKey,
		publicKey:  privateKey.PublicKey(),
	}, nil
}

func NewKeypairSignerFromBase58(privateKey string) (*KeypairSigner, error) {
	key, err := solana.PrivateKeyFromBase58(privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode private key: %w", err)
	}
	return NewKeypairSigner(key)
}

func NewRandomKeypairSigner() (*KeypairSigner, error) {
	key, err := solana.NewRandomPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate keypair: %w", err)
	}
	return NewKeypairSigner(key)
}

func (s *KeypairSigner) Destroy() {
	// nothing to do
}

func (s *KeypairSigner) PublicKey() solana.PublicKey {
	return s.publicKey
}

func (s *KeypairSigner) Sign(_ context.Context, message []byte) (solana.Signature, error) {
	return s.privateKey.Sign(message)
}
