package app

import (
	"context"
	"fmt"

	"github.com/inspikalu/sol-capsule/signer"
)

// CreateSolanaSigner builds the service signer from config. A private key
// wins over a mnemonic, and a mnemonic over a KMS key.
func CreateSolanaSigner(ctx context.Context) (signer.Signer, error) {
	config := Config.Solana
	if config.PrivateKey == "" && config.Mnemonic == "" && config.GcpKmsKeyName == "" {
		return nil, fmt.Errorf("PrivateKey, Mnemonic and GcpKmsKeyName are all empty")
	}
	if config.PrivateKey != "" {
		return signer.NewKeypairSignerFromBase58(config.PrivateKey)
	}
	if config.Mnemonic != "" {
		return signer.NewMnemonicSigner(config.Mnemonic)
	}

	return signer.NewGcpKmsSigner(ctx, config.GcpKmsKeyName)
}

func NewServiceWallet(ctx context.Context) (*signer.Wallet, error) {
	wallet, err := signer.NewWallet(ctx, CreateSolanaSigner)
	if err != nil {
		return nil, fmt.Errorf("error initializing solana signer: %w", err)
	}
	return wallet, nil
}
