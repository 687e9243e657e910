package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type Config struct {
	InputPath  string
	OutputPath string
	BatchStart int
	// BatchEnd is exclusive; zero or negative means the end of the link list.
	BatchEnd int

	CaptionLanguage string
	CaptionFormat   string
	CredentialPath  string
	YtDlpPath       string
	FetchTimeout    time.Duration
	HTTPTimeout     time.Duration

	MinMinutes int
	MaxMinutes int

	ModelID               string
	APIKey                string
	APIBaseURL            string
	SummaryLanguage       string
	SummaryTimeout        time.Duration
	SummaryRateLimit      int
	SummaryRateInterval   time.Duration
	VerifySummaryLanguage bool

	LinkDelay  time.Duration
	ErrorDelay time.Duration

	JournalPath string
	LogDir      string
	LogLevel    string
}

// LoadConfig reads the run configuration from the environment. A .env file in
// the working directory is loaded first when present; variables already set in
// the environment win.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).Warn("Failed to load .env file")
	}

	return &Config{
		InputPath:  GetEnv("INPUT_PATH", "./youtube_video_links.txt"),
		OutputPath: GetEnv("OUTPUT_PATH", "./training_data.jsonl"),
		BatchStart: getEnvAsInt("BATCH_START", 0),
		BatchEnd:   getEnvAsInt("BATCH_END", 0),

		CaptionLanguage: GetEnv("CAPTION_LANGUAGE", "te"),
		CaptionFormat:   GetEnv("CAPTION_FORMAT", "json3"),
		CredentialPath:  GetEnv("COOKIES_PATH", "./www.youtube.com_cookies.txt"),
		YtDlpPath:       GetEnv("YTDLP_PATH", "yt-dlp"),
		FetchTimeout:    getEnvAsDuration("FETCH_TIMEOUT", 2*time.Minute),
		HTTPTimeout:     getEnvAsDuration("HTTP_TIMEOUT", 30*time.Second),

		MinMinutes: getEnvAsInt("MIN_MINUTES", 5),
		MaxMinutes: getEnvAsInt("MAX_MINUTES", 60),

		ModelID:               GetEnv("MODEL_ID", "gemini-2.5-flash"),
		APIKey:                GetEnv("API_KEY", ""),
		APIBaseURL:            GetEnv("API_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/openai/"),
		SummaryLanguage:       GetEnv("SUMMARY_LANGUAGE", "Telugu"),
		SummaryTimeout:        getEnvAsDuration("SUMMARY_TIMEOUT", 2*time.Minute),
		SummaryRateLimit:      getEnvAsInt("SUMMARY_RATE_LIMIT", 1),
		SummaryRateInterval:   getEnvAsDuration("SUMMARY_RATE_INTERVAL", 1*time.Second),
		VerifySummaryLanguage: getEnvAsBool("VERIFY_SUMMARY_LANGUAGE", false),

		LinkDelay:  getEnvAsDuration("LINK_DELAY", 10*time.Second),
		ErrorDelay: getEnvAsDuration("ERROR_DELAY", 5*time.Second),

		JournalPath: GetEnv("JOURNAL_PATH", "./data/runs.db"),
		LogDir:      GetEnv("LOG_DIR", "./logs"),
		LogLevel:    GetEnv("LOG_LEVEL", "info"),
	}
}

func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		logrus.WithFields(logrus.Fields{
			"key":          key,
			"value":        value,
			"defaultValue": defaultValue,
		}).Warn("Invalid duration, using default")
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		logrus.WithFields(logrus.Fields{
			"key":          key,
			"value":        value,
			"defaultValue": defaultValue,
		}).Warn("Invalid integer, using default")
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
		logrus.WithFields(logrus.Fields{
			"key":          key,
			"value":        value,
			"defaultValue": defaultValue,
		}).Warn("Invalid boolean, using default")
	}
	return defaultValue
}

func ValidateConfig(cfg *Config) error {
	if cfg.InputPath == "" {
		return errors.New("input path is required")
	}
	if cfg.OutputPath == "" {
		return errors.New("output path is required")
	}
	if cfg.CaptionLanguage == "" {
		return errors.New("caption language is required")
	}
	if cfg.ModelID == "" {
		return errors.New("model id is required")
	}
	if cfg.APIKey == "" {
		return errors.New("API key is required")
	}
	if cfg.MinMinutes < 0 || cfg.MaxMinutes < cfg.MinMinutes {
		return errors.Errorf("invalid duration bounds: %d..%d minutes", cfg.MinMinutes, cfg.MaxMinutes)
	}
	if cfg.FetchTimeout <= 0 {
		return errors.New("fetch timeout must be greater than 0")
	}
	if cfg.HTTPTimeout <= 0 {
		return errors.New("http timeout must be greater than 0")
	}
	if cfg.SummaryTimeout <= 0 {
		return errors.New("summary timeout must be greater than 0")
	}
	if cfg.SummaryRateLimit <= 0 || cfg.SummaryRateInterval <= 0 {
		return errors.New("summary rate limit and interval must be greater than 0")
	}
	if cfg.LinkDelay < 0 || cfg.ErrorDelay < 0 {
		return errors.New("delays must not be negative")
	}
	return nil
}
