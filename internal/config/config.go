package config

import (
	"database/sql"
	"log"
	"os"
	"strconv"

	"github.com/introscan/introscan/internal/edl"
	"github.com/introscan/introscan/internal/pairmatch"
)

// Config bundles every tunable the introscan pipeline needs: storage,
// ffmpeg, queueing, and the pairmatch analysis parameters themselves.
type Config struct {
	Port        int
	DatabaseURL string
	RedisAddr   string
	DataDir     string

	FFmpegPath  string
	FFprobePath string

	MaxParallelism int
	EdlAction      edl.Action

	SilenceDetectionMinDuration float64
	AnalyzeSeasonZero           bool
	RegenerateEdlFiles          bool

	Params pairmatch.AnalysisParams
}

// Load reads Config from the environment, falling back to CineVault-style
// defaults for anything unset.
func Load() *Config {
	return &Config{
		Port:        envInt("PORT", 8090),
		DatabaseURL: env("DATABASE_URL", "postgres://introscan:introscan@db:5432/introscan?sslmode=disable"),
		RedisAddr:   env("REDIS_ADDR", "redis:6379"),
		DataDir:     env("DATA_DIR", "/data"),

		FFmpegPath:  env("FFMPEG_PATH", "ffmpeg"),
		FFprobePath: env("FFPROBE_PATH", "ffprobe"),

		MaxParallelism: envInt("MAX_PARALLELISM", 4),
		EdlAction:      edl.Action(env("EDL_ACTION", string(edl.ActionNone))),

		SilenceDetectionMinDuration: envFloat("SILENCE_DETECTION_MIN_DURATION", 0.33),
		AnalyzeSeasonZero:           envBool("ANALYZE_SEASON_ZERO", false),
		RegenerateEdlFiles:          envBool("REGENERATE_EDL_FILES", false),

		Params: pairmatch.AnalysisParams{
			MaximumFingerprintPointDifferences: envInt("MAX_FINGERPRINT_POINT_DIFFERENCES", 6),
			InvertedIndexShift:                 envInt("INVERTED_INDEX_SHIFT", 2),
			MaximumTimeSkip:                    envFloat("MAXIMUM_TIME_SKIP", 3.5),
			MinimumIntroDuration:               envFloat("MINIMUM_INTRO_DURATION", 15),
			MaximumIntroDuration:               envFloat("MAXIMUM_INTRO_DURATION", 1e9),
		},
	}
}

// MergeFromDB overlays a settings table the way CineVault's Config.MergeFromDB
// does, letting operators adjust analysis parameters through the database
// instead of the environment. The overlay is read once, when it is called at
// startup; later changes to the table take effect on the next start.
func (c *Config) MergeFromDB(db *sql.DB) {
	rows, err := db.Query("SELECT key, value FROM settings")
	if err != nil {
		log.Printf("config: skipping DB merge: %v", err)
		return
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			continue
		}
		switch key {
		case "max_parallelism":
			if v, err := strconv.Atoi(value); err == nil {
				c.MaxParallelism = v
			}
		case "edl_action":
			c.EdlAction = edl.Action(value)
		case "minimum_intro_duration":
			if v, err := strconv.ParseFloat(value, 64); err == nil {
				c.Params.MinimumIntroDuration = v
			}
		case "maximum_intro_duration":
			if v, err := strconv.ParseFloat(value, 64); err == nil {
				c.Params.MaximumIntroDuration = v
			}
		case "maximum_time_skip":
			if v, err := strconv.ParseFloat(value, 64); err == nil {
				c.Params.MaximumTimeSkip = v
			}
		case "max_fingerprint_point_differences":
			if v, err := strconv.Atoi(value); err == nil {
				c.Params.MaximumFingerprintPointDifferences = v
			}
		case "inverted_index_shift":
			if v, err := strconv.Atoi(value); err == nil {
				c.Params.InvertedIndexShift = v
			}
		case "silence_detection_min_duration":
			if v, err := strconv.ParseFloat(value, 64); err == nil {
				c.SilenceDetectionMinDuration = v
			}
		case "analyze_season_zero":
			if v, err := strconv.ParseBool(value); err == nil {
				c.AnalyzeSeasonZero = v
			}
		case "regenerate_edl_files":
			if v, err := strconv.ParseBool(value); err == nil {
				c.RegenerateEdlFiles = v
			}
		}
	}
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
