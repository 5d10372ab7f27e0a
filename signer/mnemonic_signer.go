package signer

import (
	"crypto/ed25519"
	"fmt"

	"github.com/cosmos/go-bip39"
	"github.com/gagliardetto/solana-go"
)

// NewMnemonicSigner derives the keypair the same way `solana-keygen recover`
// does without a derivation path: the first 32 bytes of the BIP39 seed are the
// ed25519 seed.
func NewMnemonicSigner(mnemonic string) (*KeypairSigner, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, fmt.Errorf("invalid mnemonic")
	}

	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, DefaultBIP39Passphrase)
	if err != nil {
		return nil, fmt.Errorf("failed to create seed: %w", err)
	}

	privateKey := ed25519.NewKeyFromSeed(seed[:ed25519.SeedSize])

	return NewKeypairSigner(solana.PrivateKey(privateKey))
}
