package main

import (
	"flag"
	"fmt"

	"github.com/cosmos/go-bip39"

	"github.com/inspikalu/sol-capsule/signer"
)

const DefaultEntropyBits = 128

func main() {
	var mnemonic string
	var entropyBits int
	flag.StringVar(&mnemonic, "mnemonic", "", "existing mnemonic to print the address for")
	flag.IntVar(&entropyBits, "entropy", DefaultEntropyBits, "entropy bits for a new mnemonic (128 or 256)")
	flag.Parse()

	if mnemonic == "" {
		if entropyBits != 128 && entropyBits != 256 {
			fmt.Printf("entropy must be 128 or 256\n")
			return
		}
		entropy, err := bip39.NewEntropy(entropyBits)
		if err != nil {
			fmt.Printf("error generating entropy: %v\n", err)
			return
		}
		mnemonic, err = bip39.NewMnemonic(entropy)
		if err != nil {
			fmt.Printf("error generating mnemonic: %v\n", err)
			return
		}
		fmt.Printf("mnemonic: %s\n", mnemonic)
	}

	s, err := signer.NewMnemonicSigner(mnemonic)
	if err != nil {
		fmt.Printf("error deriving signer: %v\n", err)
		return
	}

	fmt.Printf("address: %s\n", s.PublicKey().String())
	fmt.Printf("set SOLANA_MNEMONIC to use it as the service wallet\n")
}
