package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// InsecureDefaultJWTSecret используется, когда JWT_SECRET_KEY не задан.
// Годится только для локальной разработки; main пишет об этом в лог.
const InsecureDefaultJWTSecret = "torneos-dev-secret-change-me"

const (
	StorageDriverLocal = "local"
	StorageDriverR2    = "r2"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	ServerPort       int
	JWTSecretKey     string
	JWTSecretDefault bool // true, если работаем на небезопасном дефолте
	DataDir          string
	StorageDriver    string

	// Cloudflare R2 (только при STORAGE_DRIVER=r2)
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	_ = godotenv.Load()

	portStr := os.Getenv("SERVER_PORT")
	if portStr == "" {
		portStr = "4000"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	jwtKey := os.Getenv("JWT_SECRET_KEY")
	jwtDefault := false
	if jwtKey == "" {
		jwtKey = InsecureDefaultJWTSecret
		jwtDefault = true
	}

	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}

	driver := os.Getenv("STORAGE_DRIVER")
	if driver == "" {
		driver = StorageDriverLocal
	}

	cfg := &Config{
		ServerPort:       port,
		JWTSecretKey:     jwtKey,
		JWTSecretDefault: jwtDefault,
		DataDir:          dataDir,
		StorageDriver:    driver,
	}

	switch driver {
	case StorageDriverLocal:
		// изображения хранятся в каталоге турнира под DataDir
	case StorageDriverR2:
		cfg.R2AccountID = os.Getenv("R2_ACCOUNT_ID")
		cfg.R2AccessKeyID = os.Getenv("R2_ACCESS_KEY_ID")
		cfg.R2SecretAccessKey = os.Getenv("R2_SECRET_ACCESS_KEY")
		cfg.R2BucketName = os.Getenv("R2_BUCKET_NAME")
		cfg.R2PublicBaseURL = os.Getenv("R2_PUBLIC_BASE_URL")
		if cfg.R2AccountID == "" || cfg.R2AccessKeyID == "" || cfg.R2SecretAccessKey == "" ||
			cfg.R2BucketName == "" || cfg.R2PublicBaseURL == "" {
			return nil, fmt.Errorf("STORAGE_DRIVER=r2 requires R2_ACCOUNT_ID, R2_ACCESS_KEY_ID, R2_SECRET_ACCESS_KEY, R2_BUCKET_NAME and R2_PUBLIC_BASE_URL")
		}
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q (expected %q or %q)", driver, StorageDriverLocal, StorageDriverR2)
	}

	return cfg, nil
}
