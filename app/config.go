package app

import (
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"

	"github.com/inspikalu/sol-capsule/models"
)

var (
	Config models.Config
)

const (
	defaultRPCTimeoutMillis     = 30000
	defaultConfirmTimeoutMillis = 90000
	defaultPollIntervalMillis   = 2000
	defaultStorageTimeoutMillis = 60000
	defaultMongoTimeoutMillis   = 5000
	defaultMaxUploadBytes       = 12 << 20
	defaultListenAddress        = ":8080"
	defaultPinataURL            = "https://api.pinata.cloud"
)

func InitConfig(configFile string, envFile string) {
	log.Debug("[CONFIG] Initializing config")
	readConfigFromConfigFile(configFile)
	readConfigFromENV(envFile)
	readKeysFromGSM()
	applyDefaults()
	validateConfig()
	log.Info("[CONFIG] Config initialized")
}

func readConfigFromConfigFile(configFile string) bool {
	if configFile == "" {
		log.Debug("[CONFIG] No config file provided")
		return false
	}
	log.Debug("[CONFIG] Reading config file: ", configFile)
	var yamlFile, err = os.ReadFile(configFile)
	if err != nil {
		log.Fatalf("[CONFIG] Error reading config file %q: %s\n", configFile, err.Error())
	}
	err = yaml.Unmarshal(yamlFile, &Config)
	if err != nil {
		log.Fatalf("[CONFIG] Error unmarshalling config file %q: %s\n", configFile, err.Error())
	}
	log.Debug("[CONFIG] Config file read")
	return true
}

func applyDefaults() {
	if Config.MongoDB.TimeoutMillis == 0 {
		Config.MongoDB.TimeoutMillis = defaultMongoTimeoutMillis
	}
	if Config.Solana.RPCTimeoutMillis == 0 {
		Config.Solana.RPCTimeoutMillis = defaultRPCTimeoutMillis
	}
	if Config.Solana.ConfirmTimeoutMillis == 0 {
		Config.Solana.ConfirmTimeoutMillis = defaultConfirmTimeoutMillis
	}
	if Config.Solana.PollIntervalMillis == 0 {
		Config.Solana.PollIntervalMillis = defaultPollIntervalMillis
	}
	if Config.Storage.Backend == "" {
		Config.Storage.Backend = "pinata"
	}
	if Config.Storage.PinataURL == "" {
		Config.Storage.PinataURL = defaultPinataURL
	}
	if Config.Storage.TimeoutMillis == 0 {
		Config.Storage.TimeoutMillis = defaultStorageTimeoutMillis
	}
	if Config.API.ListenAddress == "" {
		Config.API.ListenAddress = defaultListenAddress
	}
	if Config.API.MaxUploadBytes == 0 {
		Config.API.MaxUploadBytes = defaultMaxUploadBytes
	}
}

func validateConfig() {
	log.Debug("[CONFIG] Validating config")
	// mongodb
	if Config.MongoDB.URI == "" {
		log.Fatal("[CONFIG] MongoDB.URI is required")
	}
	if Config.MongoDB.Database == "" {
		log.Fatal("[CONFIG] MongoDB.Database is required")
	}

	// solana
	if Config.Solana.Cluster == "" {
		log.Fatal("[CONFIG] Solana.Cluster is required")
	}
	switch Config.Solana.Cluster {
	case "devnet", "testnet", "mainnet-beta", "localnet":
	default:
		log.Fatal("[CONFIG] Solana.Cluster is invalid: ", Config.Solana.Cluster)
	}
	if Config.Solana.RPCURL == "" {
		log.Fatal("[CONFIG] Solana.RPCURL is required")
	}
	if Config.Solana.Mnemonic == "" && Config.Solana.PrivateKey == "" && Config.Solana.GcpKmsKeyName == "" {
		log.Fatal("[CONFIG] One of Solana.Mnemonic, Solana.PrivateKey or Solana.GcpKmsKeyName is required")
	}

	// storage
	switch strings.ToLower(Config.Storage.Backend) {
	case "pinata":
		if Config.Storage.PinataJWT == "" {
			log.Fatal("[CONFIG] Storage.PinataJWT is required")
		}
		if Config.Storage.Gateway == "" {
			log.Fatal("[CONFIG] Storage.Gateway is required")
		}
	case "blossom":
		if Config.Storage.Blossom.ServerURL == "" {
			log.Fatal("[CONFIG] Storage.Blossom.ServerURL is required")
		}
		if Config.Storage.Blossom.NostrPrivateKey == "" {
			log.Fatal("[CONFIG] Storage.Blossom.NostrPrivateKey is required")
		}
	case "s3":
		if Config.Storage.S3.Bucket == "" {
			log.Fatal("[CONFIG] Storage.S3.Bucket is required")
		}
		if Config.Storage.S3.PublicBaseURL == "" {
			log.Fatal("[CONFIG] Storage.S3.PublicBaseURL is required")
		}
	default:
		log.Fatal("[CONFIG] Storage.Backend is invalid: ", Config.Storage.Backend)
	}

	// recovery
	if Config.Recovery.Enabled && Config.Recovery.IntervalMillis == 0 {
		log.Fatal("[CONFIG] Recovery.IntervalMillis is required")
	}

	// health check
	if Config.HealthCheck.IntervalMillis == 0 {
		log.Fatal("[CONFIG] HealthCheck.IntervalMillis is required")
	}

	log.Debug("[CONFIG] Config validated")
}
