package config

import (
	"os"
	"strconv"
)

type R2 struct {
	AccountID  string
	AccessKey  string
	SecretKey  string
	BucketName string
	PublicBase string
}

type Config struct {
	Port            string
	TempDir         string
	FFmpegPath      string
	EncodeTimeoutS  int
	MaxUploadMB     int
	WorkspaceMaxAge int // minutes, janitor removes run dirs older than this
	FrontendURL     string
	R2              R2
}

func LoadConfig() *Config {
	return &Config{
		Port:            getEnv("PORT", "3000"),
		TempDir:         getEnv("TEMP_DIR", os.TempDir()),
		FFmpegPath:      getEnv("FFMPEG_PATH", "ffmpeg"),
		EncodeTimeoutS:  getEnvInt("ENCODE_TIMEOUT_SECONDS", 300),
		MaxUploadMB:     getEnvInt("MAX_UPLOAD_MB", 100),
		WorkspaceMaxAge: getEnvInt("WORKSPACE_MAX_AGE_MINUTES", 60),
		FrontendURL:     getEnv("FRONTEND_URL", "http://localhost:5173"),
		R2: R2{
			AccountID:  getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:  getEnv("R2_ACCESS_KEY", ""),
			SecretKey:  getEnv("R2_SECRET_KEY", ""),
			BucketName: getEnv("R2_BUCKET_NAME", ""),
			PublicBase: getEnv("R2_PUBLIC_BASE", ""),
		},
	}
}

// ArchiveEnabled reports whether the optional artifact archive is configured.
func (c *Config) ArchiveEnabled() bool {
	return c.R2.AccountID != "" && c.R2.AccessKey != "" && c.R2.SecretKey != "" && c.R2.BucketName != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}
