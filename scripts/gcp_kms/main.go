package main

import (
	"context"
	"crypto/ed25519"
	"fmt"
	"log"
	"os"

	"github.com/inspikalu/sol-capsule/signer"
)

// Main Function
func main() {
	GoogleKeyName := os.Getenv("GCP_KMS_KEY_NAME")

	fmt.Println("Google KMS Key Name: ", GoogleKeyName)
	if GoogleKeyName == "" {
		log.Fatalf("GCP KMS Key Name not set")
	}

	ctx := context.Background()
	kmsSigner, err := signer.NewGcpKmsSigner(ctx, GoogleKeyName)
	if err != nil {
		log.Fatalf("failed to create GCP KMS signer: %v", err)
	}
	defer kmsSigner.Destroy()

	fmt.Println("Solana Address: ", kmsSigner.PublicKey().String())

	// Prepare the message (example)
	message := []byte("example transaction message")

	signature, err := kmsSigner.Sign(ctx, message)
	if err != nil {
		log.Fatalf("failed to sign message: %v", err)
	}
	fmt.Println("Signature: ", signature.String())
	fmt.Println("Verified: ", ed25519.Verify(kmsSigner.PublicKey().Bytes(), message, signature[:]))
}
