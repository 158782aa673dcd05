package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays settings from the process environment, after loading a
// .env file if one exists in the working directory. Unset variables leave
// the current value untouched.
func parseEnv(config *Config) {
	_ = godotenv.Load()

	setString := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}

	setString(&config.EndpointAddrHTTP, "CITYWATCH_ADDR")
	setString(&config.DatabaseDSN, "CITYWATCH_DATABASE_DSN")
	setString(&config.SecretKey, "CITYWATCH_JWT_SECRET")
	setString(&config.S3RootUser, "CITYWATCH_S3_USER")
	setString(&config.S3RootPassword, "CITYWATCH_S3_PASSWORD")
	setString(&config.S3Bucket, "CITYWATCH_S3_BUCKET")
	setString(&config.S3Region, "CITYWATCH_S3_REGION")
	setString(&config.S3BaseEndpoint, "CITYWATCH_S3_ENDPOINT")
	setString(&config.SMTPHost, "CITYWATCH_SMTP_HOST")
	setString(&config.SMTPUser, "CITYWATCH_SMTP_USER")
	setString(&config.SMTPPassword, "CITYWATCH_SMTP_PASSWORD")
	setString(&config.SMTPFrom, "CITYWATCH_SMTP_FROM")
	setString(&config.AdminEmail, "CITYWATCH_ADMIN_EMAIL")

	if v, ok := os.LookupEnv("CITYWATCH_SMTP_PORT"); ok {
		if port, err := strconv.Atoi(v); err == nil {
			config.SMTPPort = port
		}
	}
	if v, ok := os.LookupEnv("CITYWATCH_TOKEN_VALIDITY"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			config.TokenValidityDuration = d
		}
	}
	if v, ok := os.LookupEnv("CITYWATCH_OUTBOUND_TIMEOUT"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			config.OutboundTimeout = d
		}
	}
}
