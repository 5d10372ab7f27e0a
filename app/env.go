package app

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

func readInt64FromENV(name string, target *int64) {
	value := os.Getenv(name)
	if value == "" {
		return
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		log.Warn("[ENV] Error parsing ", name, ": ", err.Error())
		return
	}
	*target = parsed
}

func readBoolFromENV(name string, target *bool) {
	value := os.Getenv(name)
	if value == "" {
		return
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		log.Warn("[ENV] Error parsing ", name, ": ", err.Error())
		return
	}
	*target = parsed
}

func readStringFromENV(name string, target *string) {
	if value := os.Getenv(name); value != "" {
		*target = value
	}
}

func readConfigFromENV(envFile string) {
	if envFile != "" {
		err := godotenv.Load(envFile)
		if err != nil {
			log.Warn("[ENV] Error loading .env file: ", err.Error())
		}
	}

	// mongodb
	readStringFromENV("MONGODB_URI", &Config.MongoDB.URI)
	readStringFromENV("MONGODB_DATABASE", &Config.MongoDB.Database)
	readInt64FromENV("MONGODB_TIMEOUT_MS", &Config.MongoDB.TimeoutMillis)

	// solana
	readStringFromENV("SOLANA_CLUSTER", &Config.Solana.Cluster)
	readStringFromENV("SOLANA_RPC_URL", &Config.Solana.RPCURL)
	readInt64FromENV("SOLANA_RPC_TIMEOUT_MS", &Config.Solana.RPCTimeoutMillis)
	readInt64FromENV("SOLANA_CONFIRM_TIMEOUT_MS", &Config.Solana.ConfirmTimeoutMillis)
	readInt64FromENV("SOLANA_POLL_INTERVAL_MS", &Config.Solana.PollIntervalMillis)
	readStringFromENV("SOLANA_MNEMONIC", &Config.Solana.Mnemonic)
	readStringFromENV("SOLANA_PRIVATE_KEY", &Config.Solana.PrivateKey)
	readStringFromENV("SOLANA_GCP_KMS_KEY_NAME", &Config.Solana.GcpKmsKeyName)

	// storage
	readStringFromENV("STORAGE_BACKEND", &Config.Storage.Backend)
	readStringFromENV("STORAGE_GATEWAY", &Config.Storage.Gateway)
	readStringFromENV("PINATA_URL", &Config.Storage.PinataURL)
	readStringFromENV("PINATA_JWT", &Config.Storage.PinataJWT)
	readInt64FromENV("STORAGE_TIMEOUT_MS", &Config.Storage.TimeoutMillis)
	readBoolFromENV("STORAGE_VERIFY_GATEWAY", &Config.Storage.VerifyGateway)
	readStringFromENV("BLOSSOM_SERVER_URL", &Config.Storage.Blossom.ServerURL)
	readStringFromENV("BLOSSOM_NOSTR_PRIVATE_KEY", &Config.Storage.Blossom.NostrPrivateKey)
	readStringFromENV("S3_BUCKET", &Config.Storage.S3.Bucket)
	readStringFromENV("S3_REGION", &Config.Storage.S3.Region)
	readStringFromENV("S3_ENDPOINT", &Config.Storage.S3.Endpoint)
	readStringFromENV("S3_ACCESS_KEY_ID", &Config.Storage.S3.AccessKeyID)
	readStringFromENV("S3_SECRET_KEY", &Config.Storage.S3.SecretKey)
	readStringFromENV("S3_PUBLIC_BASE_URL", &Config.Storage.S3.PublicBaseURL)

	// api
	readStringFromENV("API_LISTEN_ADDRESS", &Config.API.ListenAddress)
	readInt64FromENV("API_CREATE_RATE_PER_MIN", &Config.API.CreateRatePerMin)
	readInt64FromENV("API_MAX_UPLOAD_BYTES", &Config.API.MaxUploadBytes)
	if origins := os.Getenv("API_ALLOWED_ORIGINS"); origins != "" {
		Config.API.AllowedOrigins = strings.Split(origins, ",")
	}

	// recovery
	readBoolFromENV("RECOVERY_ENABLED", &Config.Recovery.Enabled)
	readInt64FromENV("RECOVERY_INTERVAL_MS", &Config.Recovery.IntervalMillis)

	// health check
	readInt64FromENV("HEALTH_CHECK_INTERVAL_MS", &Config.HealthCheck.IntervalMillis)
	readBoolFromENV("HEALTH_CHECK_READ_LAST_HEALTH", &Config.HealthCheck.ReadLastHealth)

	// logging
	if Config.Logger.Level == "" {
		logLevel := os.Getenv("LOG_LEVEL")
		if logLevel == "" {
			log.Warn("[ENV] Setting LogLevel to debug")
			Config.Logger.Level = "debug"
		} else {
			Config.Logger.Level = logLevel
		}
	}

	// google secret manager
	readBoolFromENV("GOOGLE_SECRET_MANAGER_ENABLED", &Config.GoogleSecretManager.Enabled)
	readStringFromENV("GOOGLE_PROJECT_ID", &Config.GoogleSecretManager.ProjectID)
	readStringFromENV("GOOGLE_MONGO_SECRET_NAME", &Config.GoogleSecretManager.MongoSecretName)
	readStringFromENV("GOOGLE_MNEMONIC_SECRET_NAME", &Config.GoogleSecretManager.MnemonicSecretName)
	readStringFromENV("GOOGLE_PINATA_JWT_SECRET_NAME", &Config.GoogleSecretManager.PinataJWTSecretName)
	readStringFromENV("GOOGLE_NOSTR_KEY_SECRET_NAME", &Config.GoogleSecretManager.NostrKeySecretName)
	readStringFromENV("GOOGLE_S3_SECRET_KEY_SECRET_NAME", &Config.GoogleSecretManager.S3SecretKeySecretName)
}
