package config

import (
	"strings"

	"github.com/spf13/viper"
)

func replacer() *strings.Replacer {
	return strings.NewReplacer(".", "_")
}

// viper only sees env-backed keys during Unmarshal if they are bound, so
// every key gets an explicit binding here.
func bindKeys(v *viper.Viper) {
	keys := []string{
		"app.env", "app.port", "app.base_url", "app.client_url", "app.shutdown_seconds",
		"mongo.uri", "mongo.database",
		"postgres.dsn",
		"redis.addr", "redis.password", "redis.db",
		"jwt.secret", "jwt.access_ttl_minutes", "jwt.refresh_ttl_days",
		"s3.access_key_id", "s3.secret_access_key", "s3.bucket", "s3.region",
		"s3.public_read", "s3.presign_ttl_seconds",
		"google.client_id", "google.client_secret", "google.redirect_url",
		"uploads.dir", "uploads.max_size_mb", "uploads.max_per_batch",
		"email.sendgrid_api_key", "email.ses_region", "email.from_email", "email.from_name",
		"ollama.base_url", "ollama.model", "ollama.timeout_seconds",
		"livekit.api_key", "livekit.api_secret", "livekit.host", "livekit.ttl_hours",
		"kafka.brokers", "kafka.topic",
		"website.output_dir",
	}
	for _, k := range keys {
		_ = v.BindEnv(k)
	}
}
