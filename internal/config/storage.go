package config

import (
	"fmt"
	"os"
	"strconv"
)

const (
	EnvStorageRoot          = "SCORECARD_STORAGE_ROOT"
	EnvStorageMaxUploadSize = "SCORECARD_STORAGE_MAX_UPLOAD_SIZE"
	EnvStorageOCREnabled    = "SCORECARD_STORAGE_OCR_ENABLED"
)

// StorageConfig holds upload storage parameters.
type StorageConfig struct {
	Root          string `toml:"root"`
	MaxUploadSize int64  `toml:"max_upload_size"`
	OCREnabled    *bool  `toml:"ocr_enabled"`
}

// OCR reports whether OCR fallback is enabled.
func (c *StorageConfig) OCR() bool {
	return c.OCREnabled == nil || *c.OCREnabled
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *StorageConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *StorageConfig) Merge(overlay *StorageConfig) {
	if overlay.Root != "" {
		c.Root = overlay.Root
	}
	if overlay.MaxUploadSize != 0 {
		c.MaxUploadSize = overlay.MaxUploadSize
	}
	if overlay.OCREnabled != nil {
		c.OCREnabled = overlay.OCREnabled
	}
}

func (c *StorageConfig) loadDefaults() {
	if c.Root == "" {
		c.Root = "uploads"
	}
	if c.MaxUploadSize == 0 {
		c.MaxUploadSize = 50 << 20
	}
}

func (c *StorageConfig) loadEnv() {
	if v := os.Getenv(EnvStorageRoot); v != "" {
		c.Root = v
	}
	if v := os.Getenv(EnvStorageMaxUploadSize); v != "" {
		if size, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.MaxUploadSize = size
		}
	}
	if v := os.Getenv(EnvStorageOCREnabled); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			c.OCREnabled = &enabled
		}
	}
}

func (c *StorageConfig) validate() error {
	if c.MaxUploadSize < 0 {
		return fmt.Errorf("invalid max_upload_size: %d", c.MaxUploadSize)
	}
	return nil
}
