package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const DefaultCatalogURL = "https://catalogue.dataspace.copernicus.eu/odata/v1"

type ExportCfg struct {
	Bucket          string
	Prefix          string
	Region          string
	Endpoint        string
	PathStyle       bool
	AccessKeyID     string
	SecretAccessKey string
}

type Config struct {
	Addr           string
	LogLevel       string
	LogConsole     bool
	LogSampleN     int
	CatalogURL     string
	CatalogTimeout time.Duration
	PageSize       int
	Export         ExportCfg
}

func FromEnv() Config {
	return Config{
		Addr:           getenv("ADDR", ":8090"),
		LogLevel:       getenv("LOG_LEVEL", "info"),
		LogConsole:     getbool("LOG_CONSOLE", false),
		LogSampleN:     getint("LOG_SAMPLE_N", 0),
		CatalogURL:     getenv("CATALOG_URL", DefaultCatalogURL),
		CatalogTimeout: getduration("CATALOG_TIMEOUT", 30*time.Second),
		PageSize:       getint("CATALOG_PAGE_SIZE", 100),
		Export: ExportCfg{
			Bucket:          getenv("EXPORT_S3_BUCKET", ""),
			Prefix:          getenv("EXPORT_S3_PREFIX", "eodata-query"),
			Region:          getenv("EXPORT_S3_REGION", "us-east-1"),
			Endpoint:        getenv("EXPORT_S3_ENDPOINT", ""),
			PathStyle:       getbool("EXPORT_S3_PATH_STYLE", true),
			AccessKeyID:     getenv("EXPORT_S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: getenv("EXPORT_S3_SECRET_ACCESS_KEY", ""),
		},
	}
}

// LoadEnvFiles reads .env then .env.local (overriding) when they exist.
// Variables already set in the process environment win over .env.
func LoadEnvFiles(dir string) error {
	base := dir + "/.env"
	if _, err := os.Stat(base); err == nil {
		if err := godotenv.Load(base); err != nil {
			return fmt.Errorf("load %s: %w", base, err)
		}
	}
	local := dir + "/.env.local"
	if _, err := os.Stat(local); err == nil {
		if err := godotenv.Overload(local); err != nil {
			return fmt.Errorf("load %s: %w", local, err)
		}
	}
	return nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "t", "true", "y", "yes":
			return true
		case "0", "f", "false", "n", "no":
			return false
		}
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
