package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	drive "google.golang.org/api/drive/v3"
)

type AppConf struct {
	Env             string `mapstructure:"env"`
	Port            int    `mapstructure:"port"`
	BaseURL         string `mapstructure:"base_url"`
	ClientURL       string `mapstructure:"client_url"`
	ShutdownSeconds int    `mapstructure:"shutdown_seconds"`
}

type MongoConf struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

type PostgresConf struct {
	DSN string `mapstructure:"dsn"`
}

type RedisConf struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type JWTConf struct {
	Secret           string `mapstructure:"secret"`
	AccessTTLMinutes int    `mapstructure:"access_ttl_minutes"`
	RefreshTTLDays   int    `mapstructure:"refresh_ttl_days"`
}

// S3Conf is the system-wide S3 configuration. Per-user credentials live on
// the user document and take priority over these at upload time.
type S3Conf struct {
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	Bucket          string `mapstructure:"bucket"`
	Region          string `mapstructure:"region"`
	PublicRead      bool   `mapstructure:"public_read"`
	PresignTTL      int    `mapstructure:"presign_ttl_seconds"`
}

// Configured reports whether all system-wide S3 credentials are present.
func (c S3Conf) Configured() bool {
	return c.AccessKeyID != "" && c.SecretAccessKey != "" && c.Bucket != "" && c.Region != ""
}

type GoogleConf struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURL  string `mapstructure:"redirect_url"`
}

// Configured reports whether the Drive OAuth client is set up.
func (g GoogleConf) Configured() bool {
	return g.ClientID != "" && g.ClientSecret != "" && g.RedirectURL != ""
}

// OAuthConfig builds the Drive OAuth client config. drive.file scope only:
// the app sees the files it created, nothing else in the user's Drive.
func (g GoogleConf) OAuthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     g.ClientID,
		ClientSecret: g.ClientSecret,
		RedirectURL:  g.RedirectURL,
		Scopes:       []string{drive.DriveFileScope},
		Endpoint:     google.Endpoint,
	}
}

type UploadsConf struct {
	Dir         string `mapstructure:"dir"`
	MaxSizeMB   int    `mapstructure:"max_size_mb"`
	MaxPerBatch int    `mapstructure:"max_per_batch"`
}

type EmailConf struct {
	SendGridAPIKey string `mapstructure:"sendgrid_api_key"`
	SESRegion      string `mapstructure:"ses_region"`
	FromEmail      string `mapstructure:"from_email"`
	FromName       string `mapstructure:"from_name"`
}

type OllamaConf struct {
	BaseURL        string `mapstructure:"base_url"`
	Model          string `mapstructure:"model"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type LiveKitConf struct {
	APIKey    string `mapstructure:"api_key"`
	APISecret string `mapstructure:"api_secret"`
	Host      string `mapstructure:"host"`
	TTLHours  int    `mapstructure:"ttl_hours"`
}

type KafkaConf struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type WebsiteConf struct {
	OutputDir string `mapstructure:"output_dir"`
}

type Config struct {
	App      AppConf      `mapstructure:"app"`
	Mongo    MongoConf    `mapstructure:"mongo"`
	Postgres PostgresConf `mapstructure:"postgres"`
	Redis    RedisConf    `mapstructure:"redis"`
	JWT      JWTConf      `mapstructure:"jwt"`
	S3       S3Conf       `mapstructure:"s3"`
	Google   GoogleConf   `mapstructure:"google"`
	Uploads  UploadsConf  `mapstructure:"uploads"`
	Email    EmailConf    `mapstructure:"email"`
	Ollama   OllamaConf   `mapstructure:"ollama"`
	LiveKit  LiveKitConf  `mapstructure:"livekit"`
	Kafka    KafkaConf    `mapstructure:"kafka"`
	Website  WebsiteConf  `mapstructure:"website"`

	// derived
	ShutdownTimeout time.Duration
	AccessTTL       time.Duration
	RefreshTTL      time.Duration
	OllamaTimeout   time.Duration
}

// Load reads the yaml config at path (optional) and then lets environment
// variables override everything (KINHUB_S3_BUCKET, KINHUB_JWT_SECRET, ...).
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("KINHUB")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(replacer())

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	bindKeys(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.App.Port == 0 {
		cfg.App.Port = 5000
	}
	if cfg.App.BaseURL == "" {
		cfg.App.BaseURL = "http://localhost:5000"
	}
	if cfg.App.ShutdownSeconds == 0 {
		cfg.App.ShutdownSeconds = 15
	}
	if cfg.Mongo.Database == "" {
		cfg.Mongo.Database = "kinhub"
	}
	if cfg.JWT.AccessTTLMinutes == 0 {
		cfg.JWT.AccessTTLMinutes = 15
	}
	if cfg.JWT.RefreshTTLDays == 0 {
		cfg.JWT.RefreshTTLDays = 30
	}
	if cfg.S3.PresignTTL == 0 {
		cfg.S3.PresignTTL = 600
	}
	if cfg.Uploads.Dir == "" {
		cfg.Uploads.Dir = "uploads"
	}
	if cfg.Uploads.MaxSizeMB == 0 {
		cfg.Uploads.MaxSizeMB = 50
	}
	if cfg.Uploads.MaxPerBatch == 0 {
		cfg.Uploads.MaxPerBatch = 20
	}
	if cfg.Ollama.BaseURL == "" {
		cfg.Ollama.BaseURL = "http://localhost:11434"
	}
	if cfg.Ollama.Model == "" {
		cfg.Ollama.Model = "llama3"
	}
	if cfg.Ollama.TimeoutSeconds == 0 {
		cfg.Ollama.TimeoutSeconds = 120
	}
	if cfg.LiveKit.TTLHours == 0 {
		cfg.LiveKit.TTLHours = 6
	}
	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = "kinhub.family-events"
	}
	if cfg.Website.OutputDir == "" {
		cfg.Website.OutputDir = "sites"
	}

	cfg.ShutdownTimeout = time.Duration(cfg.App.ShutdownSeconds) * time.Second
	cfg.AccessTTL = time.Duration(cfg.JWT.AccessTTLMinutes) * time.Minute
	cfg.RefreshTTL = time.Duration(cfg.JWT.RefreshTTLDays) * 24 * time.Hour
	cfg.OllamaTimeout = time.Duration(cfg.Ollama.TimeoutSeconds) * time.Second
}
