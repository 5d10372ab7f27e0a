package models

type Config struct {
	GoogleSecretManager GoogleSecretManagerConfig `yaml:"google_secret_manager" json:"google_secret_manager"`
	HealthCheck         HealthCheckConfig         `yaml:"health_check" json:"health_check"`
	Logger              LoggerConfig              `yaml:"logger" json:"logger"`
	MongoDB             MongoConfig               `yaml:"mongodb" json:"mongo_db"`
	Solana              SolanaConfig              `yaml:"solana" json:"solana"`
	Storage             StorageConfig             `yaml:"storage" json:"storage"`
	API                 APIConfig                 `yaml:"api" json:"api"`
	Recovery            ServiceConfig             `yaml:"recovery" json:"recovery"`
}

type GoogleSecretManagerConfig struct {
	Enabled               bool   `yaml:"enabled" json:"enabled"`
	ProjectID             string `yaml:"project_id" json:"project_id"`
	MongoSecretName       string `yaml:"mongo_secret_name" json:"mongo_secret_name"`
	MnemonicSecretName    string `yaml:"mnemonic_secret_name" json:"mnemonic_secret_name"`
	PinataJWTSecretName   string `yaml:"pinata_jwt_secret_name" json:"pinata_jwt_secret_name"`
	NostrKeySecretName    string `yaml:"nostr_key_secret_name" json:"nostr_key_secret_name"`
	S3SecretKeySecretName string `yaml:"s3_secret_key_secret_name" json:"s3_secret_key_secret_name"`
}

type HealthCheckConfig struct {
	IntervalMillis int64 `yaml:"interval_ms" json:"interval_ms"`
	ReadLastHealth bool  `yaml:"read_last_health" json:"read_last_health"`
}

type LoggerConfig struct {
	Level string `yaml:"level" json:"level"`
}

type MongoConfig struct {
	URI           string `yaml:"uri" json:"uri"`
	Database      string `yaml:"database" json:"database"`
	TimeoutMillis int64  `yaml:"timeout_ms" json:"timeout_ms"`
}

type SolanaConfig struct {
	Cluster              string `yaml:"cluster" json:"cluster"`
	RPCURL               string `yaml:"rpc_url" json:"rpc_url"`
	RPCTimeoutMillis     int64  `yaml:"rpc_timeout_ms" json:"rpc_timeout_ms"`
	ConfirmTimeoutMillis int64  `yaml:"confirm_timeout_ms" json:"confirm_timeout_ms"`
	PollIntervalMillis   int64  `yaml:"poll_interval_ms" json:"poll_interval_ms"`
	Mnemonic             string `yaml:"mnemonic" json:"mnemonic"`
	PrivateKey           string `yaml:"private_key" json:"private_key"`
	GcpKmsKeyName        string `yaml:"gcp_kms_key_name" json:"gcp_kms_key_name"`
}

type StorageConfig struct {
	Backend       string        `yaml:"backend" json:"backend"`
	Gateway       string        `yaml:"gateway" json:"gateway"`
	PinataURL     string        `yaml:"pinata_url" json:"pinata_url"`
	PinataJWT     string        `yaml:"pinata_jwt" json:"pinata_jwt"`
	TimeoutMillis int64         `yaml:"timeout_ms" json:"timeout_ms"`
	VerifyGateway bool          `yaml:"verify_gateway" json:"verify_gateway"`
	Blossom       BlossomConfig `yaml:"blossom" json:"blossom"`
	S3            S3Config      `yaml:"s3" json:"s3"`
}

type BlossomConfig struct {
	ServerURL       string `yaml:"server_url" json:"server_url"`
	NostrPrivateKey string `yaml:"nostr_private_key" json:"nostr_private_key"`
}

type S3Config struct {
	Bucket        string `yaml:"bucket" json:"bucket"`
	Region        string `yaml:"region" json:"region"`
	Endpoint      string `yaml:"endpoint" json:"endpoint"`
	AccessKeyID   string `yaml:"access_key_id" json:"access_key_id"`
	SecretKey     string `yaml:"secret_key" json:"secret_key"`
	PublicBaseURL string `yaml:"public_base_url" json:"public_base_url"`
}

type APIConfig struct {
	ListenAddress    string   `yaml:"listen_address" json:"listen_address"`
	CreateRatePerMin int64    `yaml:"create_rate_per_min" json:"create_rate_per_min"`
	MaxUploadBytes   int64    `yaml:"max_upload_bytes" json:"max_upload_bytes"`
	AllowedOrigins   []string `yaml:"allowed_origins" json:"allowed_origins"`
}

type ServiceConfig struct {
	Enabled        bool  `yaml:"enabled" json:"enabled"`
	IntervalMillis int64 `yaml:"interval_ms" json:"interval_ms"`
}
