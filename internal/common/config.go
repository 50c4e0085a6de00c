package common

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Log        LogConfig
	Extraction ExtractionConfig
	OCR        OCRConfig
	Store      StoreConfig
	Batch      BatchConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
}

// ExtractionConfig holds the geometric and arithmetic tolerances of the
// layout and field extraction stages. They are empirical values tuned on a
// single family of documents.
type ExtractionConfig struct {
	YTolerance      float64 // line clustering band in points, block gap is 2x this
	MinBlockLines   int
	AmountTolerance float64 // absolute currency units for tax cross-validation
	BlockConfidence float64 // minimum classifier confidence for preferred sources
	MinTextChars    int     // below this, the page goes through OCR
	VendorTopLimit  float64
	VendorScanLines int
	BuyerScanLines  int
	MaxLabelValue   int
	DefaultCurrency string
	KeepRawText     bool
	KeepBlocks      bool
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	Pdftoppm      string
	Tesseract     string
	TesseractLang string
	TessdataDir   string
	DPI           int
	MaxPages      int
	PSM           int
}

// StoreConfig holds the optional run store configuration
type StoreConfig struct {
	Driver          string // "sqlite", "postgres" or "none"
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// BatchConfig holds batch orchestration configuration
type BatchConfig struct {
	Workers         int
	DocumentTimeout time.Duration
}

// LoadConfig loads configuration from environment variables. A .env file in
// the working directory is read first when present.
func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Extraction: ExtractionConfig{
			YTolerance:      getEnvAsFloat64("Y_TOLERANCE", 6.0),
			MinBlockLines:   getEnvAsInt("MIN_BLOCK_LINES", 2),
			AmountTolerance: getEnvAsFloat64("AMOUNT_TOLERANCE", 2.0),
			BlockConfidence: getEnvAsFloat64("BLOCK_CONFIDENCE", 0.8),
			MinTextChars:    getEnvAsInt("MIN_TEXT_CHARS", 50),
			VendorTopLimit:  getEnvAsFloat64("VENDOR_TOP_LIMIT", 200),
			VendorScanLines: getEnvAsInt("VENDOR_SCAN_LINES", 10),
			BuyerScanLines:  getEnvAsInt("BUYER_SCAN_LINES", 5),
			MaxLabelValue:   getEnvAsInt("MAX_LABEL_VALUE", 60),
			DefaultCurrency: getEnv("DEFAULT_CURRENCY", "INR"),
			KeepRawText:     getEnvAsBool("KEEP_RAW_TEXT", true),
			KeepBlocks:      getEnvAsBool("KEEP_LAYOUT_BLOCKS", true),
		},
		OCR: OCRConfig{
			Pdftoppm:      getEnv("PDFTOPPM_BIN", "pdftoppm"),
			Tesseract:     getEnv("TESSERACT_BIN", "tesseract"),
			TesseractLang: getEnv("TESSERACT_LANG", "eng"),
			TessdataDir:   getEnv("TESSDATA_PREFIX", ""),
			DPI:           getEnvAsInt("OCR_DPI", 300),
			MaxPages:      getEnvAsInt("OCR_MAX_PAGES", 0),
			PSM:           getEnvAsInt("TESSERACT_PSM", 6),
		},
		Store: StoreConfig{
			Driver:          strings.ToLower(getEnv("STORE_DRIVER", "none")),
			DSN:             getEnv("STORE_DSN", ""),
			MaxConns:        getEnvAsInt32("STORE_MAX_CONNS", 10),
			MinConns:        getEnvAsInt32("STORE_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("STORE_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime: getEnvAsDuration("STORE_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:     getEnvAsDuration("STORE_DIAL_TIMEOUT", 3*time.Second),
		},
		Batch: BatchConfig{
			Workers:         getEnvAsInt("BATCH_WORKERS", 1),
			DocumentTimeout: getEnvAsDuration("DOCUMENT_TIMEOUT", 3*time.Minute),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	v := NewValidator().
		Field("Y_TOLERANCE", c.Extraction.YTolerance, Positive).
		Field("AMOUNT_TOLERANCE", c.Extraction.AmountTolerance, NonNegative).
		Field("BLOCK_CONFIDENCE", c.Extraction.BlockConfidence, UnitInterval).
		Field("MIN_BLOCK_LINES", c.Extraction.MinBlockLines, Positive).
		Field("MIN_TEXT_CHARS", c.Extraction.MinTextChars, NonNegative).
		Field("MAX_LABEL_VALUE", c.Extraction.MaxLabelValue, Positive).
		Field("BATCH_WORKERS", c.Batch.Workers, Positive).
		Field("STORE_DRIVER", c.Store.Driver, OneOf("none", "sqlite", "postgres"))
	if c.Store.Driver == "postgres" {
		v.Field("STORE_DSN", c.Store.DSN, Required)
	}
	if v.HasErrors() {
		return NewAppError(CodeConfig, v.ErrorMessage(), ErrInvalidInput)
	}
	return nil
}
