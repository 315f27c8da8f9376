// Package config reads the verifier settings from the environment and an
// optional .env file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/csg33k/payslip-verify/internal/adapters/gemini"
)

const (
	IndexScan   = "scan"
	IndexSQLite = "sqlite"
)

// ReportFormats are the accepted REPORT_FORMAT and -format values.
var ReportFormats = []string{"text", "json", "html", "pdf"}

type Config struct {
	TariffDir    string
	BracketIndex string
	GeminiAPIKey string
	GeminiModel  string
	LogLevel     string
	ReportFormat string
}

// Load reads files (".env" when none are given) into the environment without
// overriding variables that are already set, then builds the Config. A
// missing file is only logged.
func Load(files ...string) Config {
	if err := godotenv.Load(files...); err != nil {
		slog.Warn("error loading .env file", "err", err)
	}
	return Config{
		TariffDir:    getEnv("TARIFF_DIR", "qst"),
		BracketIndex: strings.ToLower(getEnv("QST_BRACKET_INDEX", IndexScan)),
		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", gemini.DefaultModel),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		ReportFormat: strings.ToLower(getEnv("REPORT_FORMAT", "text")),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.TariffDir) == "" {
		return fmt.Errorf("TARIFF_DIR must not be empty")
	}
	if c.BracketIndex != IndexScan && c.BracketIndex != IndexSQLite {
		return fmt.Errorf("QST_BRACKET_INDEX must be %q or %q, got %q", IndexScan, IndexSQLite, c.BracketIndex)
	}
	if !ValidFormat(c.ReportFormat) {
		return fmt.Errorf("REPORT_FORMAT must be one of %s, got %q", strings.Join(ReportFormats, ", "), c.ReportFormat)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

func ValidFormat(f string) bool {
	for _, v := range ReportFormats {
		if f == v {
			return true
		}
	}
	return false
}

// SlogLevel parses LOG_LEVEL (debug, info, warn, error).
func (c Config) SlogLevel() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return l, nil
}
