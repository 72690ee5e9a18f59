package config

import (
	"errors"
	"io/fs"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Database
		API
		DevotionalSync
		Content
		Speech
		Tasks
		Metrics
	}

	HTTP struct {
		Port               int32
		Host               string
		CORSAllowedOrigins []string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path string
	}
	API struct {
		URL               string
		Timeout           time.Duration
		RequestsPerSecond float64
	}
	DevotionalSync struct {
		Enabled   bool
		Schedule  string // Cron format: "0 5 * * *" = daily at 05:00
		OnStartup bool
		Timeout   time.Duration
	}
	Content struct {
		BiblePath  string // Empty uses the bundled Bible
		HymnalPath string // Empty uses the bundled hymnal
	}
	Speech struct {
		Command  string   // Empty probes espeak-ng, espeak, say
		Args     []string // Argument template, see speech.Config
		Language string
		Rate     float64
		Pitch    float64
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		SyncTimeout     time.Duration
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
	Metrics struct {
		Enabled bool
	}
)

// LoadDotEnv loads variables from path into the environment without
// overriding ones already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err != nil && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func NewConfig() *Config {
	if err := LoadDotEnv(DefaultDotEnvFile); err != nil {
		log.Printf("WARNING: failed to load %s: %v", DefaultDotEnvFile, err)
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 5)
	v.SetDefault("cors_allowed_origins", "*")
	v.SetDefault("database_path", DefaultDatabasePath)

	v.SetDefault("api_url", DefaultAPIURL)
	v.SetDefault("api_timeout", "30s")
	v.SetDefault("api_requests_per_second", 5)

	v.SetDefault("devotional_sync_enabled", true)
	v.SetDefault("devotional_sync_schedule", "0 5 * * *") // Daily at 05:00
	v.SetDefault("devotional_sync_on_startup", true)
	v.SetDefault("devotional_sync_timeout", "5m")

	v.SetDefault("bible_path", "")
	v.SetDefault("hymnal_path", "")

	v.SetDefault("speech_command", "")
	v.SetDefault("speech_args", "")
	v.SetDefault("speech_language", "en-US")
	v.SetDefault("speech_rate", 1.0)
	v.SetDefault("speech_pitch", 1.0)

	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 1)
	v.SetDefault("task_sync_timeout", "5m")
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	v.SetDefault("metrics_enabled", true)

	return &Config{
		HTTP: HTTP{
			Port:               v.GetInt32("PORT"),
			Host:               v.GetString("HOST"),
			CORSAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS"), ","),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		API: API{
			URL:               v.GetString("API_URL"),
			Timeout:           v.GetDuration("API_TIMEOUT"),
			RequestsPerSecond: v.GetFloat64("API_REQUESTS_PER_SECOND"),
		},
		DevotionalSync: DevotionalSync{
			Enabled:   v.GetBool("DEVOTIONAL_SYNC_ENABLED"),
			Schedule:  v.GetString("DEVOTIONAL_SYNC_SCHEDULE"),
			OnStartup: v.GetBool("DEVOTIONAL_SYNC_ON_STARTUP"),
			Timeout:   v.GetDuration("DEVOTIONAL_SYNC_TIMEOUT"),
		},
		Content: Content{
			BiblePath:  v.GetString("BIBLE_PATH"),
			HymnalPath: v.GetString("HYMNAL_PATH"),
		},
		Speech: Speech{
			Command:  v.GetString("SPEECH_COMMAND"),
			Args:     strings.Fields(v.GetString("SPEECH_ARGS")),
			Language: v.GetString("SPEECH_LANGUAGE"),
			Rate:     v.GetFloat64("SPEECH_RATE"),
			Pitch:    v.GetFloat64("SPEECH_PITCH"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			SyncTimeout:     v.GetDuration("TASK_SYNC_TIMEOUT"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Metrics: Metrics{
			Enabled: v.GetBool("METRICS_ENABLED"),
		},
	}
}

func splitList(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
