package app

import (
	"context"
	"fmt"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	log "github.com/sirupsen/logrus"
)

func accessSecretVersion(client *secretmanager.Client, name string) (string, error) {
	req := &secretmanagerpb.AccessSecretVersionRequest{
		Name: fmt.Sprintf("projects/%s/secrets/%s/versions/latest", Config.GoogleSecretManager.ProjectID, name),
	}

	result, err := client.AccessSecretVersion(context.Background(), req)
	if err != nil {
		return "", err
	}

	return string(result.Payload.Data), nil
}

// readSecret fills target from the named secret when target is still empty.
func readSecret(client *secretmanager.Client, label string, secretName string, target *string) {
	if *target != "" || secretName == "" {
		return
	}
	log.Debug("[GSM] Reading ", label)
	value, err := accessSecretVersion(client, secretName)
	if err != nil {
		log.Fatalf("[GSM] Failed to access %s: %v", label, err)
	}
	*target = value
	log.Info("[GSM] Successfully read ", label)
}

func readKeysFromGSM() {
	if !Config.GoogleSecretManager.Enabled {
		log.Debug("[GSM] Google Secret Manager is disabled")
		return
	}

	if Config.GoogleSecretManager.ProjectID == "" {
		log.Fatalf("[GSM] ProjectID is empty")
	}

	ctx := context.Background()
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		log.Fatalf("[GSM] Failed to create secretmanager client: %v", err)
	}
	defer client.Close()

	gsm := Config.GoogleSecretManager
	readSecret(client, "mongo uri", gsm.MongoSecretName, &Config.MongoDB.URI)
	if Config.Solana.PrivateKey == "" && Config.Solana.GcpKmsKeyName == "" {
		readSecret(client, "solana mnemonic", gsm.MnemonicSecretName, &Config.Solana.Mnemonic)
	}
	readSecret(client, "pinata jwt", gsm.PinataJWTSecretName, &Config.Storage.PinataJWT)
	readSecret(client, "nostr private key", gsm.NostrKeySecretName, &Config.Storage.Blossom.NostrPrivateKey)
	readSecret(client, "s3 secret key", gsm.S3SecretKeySecretName, &Config.Storage.S3.SecretKey)
}
