package signer

import (
	"context"
	"errors"

	"github.com/gagliardetto/solana-go"
)

const (
	DefaultBIP39Passphrase = ""
)

// Signer signs serialized transaction messages for one ed25519 identity.
type Signer interface {
	PublicKey() solana.PublicKey
	Sign(ctx context.Context, message []byte) (solana.Signature, error)
	Destroy()
}

// Factory constructs a fresh signer. Wallets call it once per pipeline run.
type Factory func(ctx context.Context) (Signer, error)

// Wallet adapts a signer factory to the wallet provider used by the capsule
// pipeline. The address is resolved once; the signer is rebuilt on every call
// so a rotated or reconnected key is always picked up.
type Wallet struct {
	address string
	factory Factory
}

func NewWallet(ctx context.Context, factory Factory) (*Wallet, error) {
	if factory == nil {
		return nil, errors.New("signer factory is required")
	}
	s, err := factory(ctx)
	if err != nil {
		return nil, err
	}
	defer s.Destroy()

	return &Wallet{
		address: s.PublicKey().String(),
		factory: factory,
	}, nil
}

func (w *Wallet) Address() string {
	return w.address
}

func (w *Wallet) Signer(ctx context.Context) (Signer, error) {
	s, err := w.factory(ctx)
	if err != nil {
		return nil, err
	}
	if s.PublicKey().String() != w.address {
		s.Destroy()
		return nil, errors.New("wallet signer changed since it was connected")
	}
	return s, nil
}
