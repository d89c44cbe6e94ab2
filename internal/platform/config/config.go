package config

import (
	"log"
	"strings"

	"github.com/SscSPs/reconciliation_engine/internal/core/matching"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL        string
	Port               string
	IsProduction       bool
	EnableDBCheck      bool
	StorageDriver      string
	MigrationsPath     string
	JWTSecret          string
	RateLimit          string
	PosthogAPIKey      string
	PosthogEndpoint    string
	CORSAllowedOrigins []string

	BulkWorkers  int
	MatchWorkers int

	// MatchingPolicy is the default policy overlaid with MATCH_POLICY_FILE and the MATCH_* variables.
	MatchingPolicy matching.Policy
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	defaults := matching.DefaultPolicy()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("STORAGE_DRIVER", StorageDriverPostgres)
	viper.SetDefault("MIGRATIONS_PATH", "file://migrations")
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("RATE_LIMIT", "300-M")
	viper.SetDefault("POSTHOG_API_KEY", "")
	viper.SetDefault("POSTHOG_ENDPOINT", "https://us.i.posthog.com")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("BULK_WORKERS", 8)
	viper.SetDefault("MATCH_WORKERS", 4)
	viper.SetDefault("MATCH_POLICY_FILE", "")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080" // Default port
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")
	cfg.MigrationsPath = viper.GetString("MIGRATIONS_PATH")

	cfg.StorageDriver = strings.ToLower(viper.GetString("STORAGE_DRIVER"))
	switch cfg.StorageDriver {
	case StorageDriverPostgres, StorageDriverMemory:
	default:
		log.Printf("Warning: unknown STORAGE_DRIVER '%s'. Defaulting to %s.\n", cfg.StorageDriver, StorageDriverPostgres)
		cfg.StorageDriver = StorageDriverPostgres
	}
	if cfg.StorageDriver == StorageDriverPostgres && cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "a-very-secret-key-should-be-longer-and-random" // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	cfg.RateLimit = viper.GetString("RATE_LIMIT")
	cfg.PosthogAPIKey = viper.GetString("POSTHOG_API_KEY")
	cfg.PosthogEndpoint = viper.GetString("POSTHOG_ENDPOINT")
	cfg.CORSAllowedOrigins = splitList(viper.GetString("CORS_ALLOWED_ORIGINS"))

	cfg.BulkWorkers = viper.GetInt("BULK_WORKERS")
	if cfg.BulkWorkers <= 0 {
		log.Printf("Warning: invalid BULK_WORKERS (%d). Defaulting to 8.\n", cfg.BulkWorkers)
		cfg.BulkWorkers = 8
	}
	cfg.MatchWorkers = viper.GetInt("MATCH_WORKERS")
	if cfg.MatchWorkers <= 0 {
		log.Printf("Warning: invalid MATCH_WORKERS (%d). Defaulting to 4.\n", cfg.MatchWorkers)
		cfg.MatchWorkers = 4
	}

	cfg.MatchingPolicy = loadMatchingPolicy(defaults)

	return cfg, nil
}

// loadMatchingPolicy applies the policy file first and the individual variables on top.
// An invalid result falls back to the defaults.
func loadMatchingPolicy(defaults matching.Policy) matching.Policy {
	policy := defaults
	if path := viper.GetString("MATCH_POLICY_FILE"); path != "" {
		loaded, err := matching.LoadPolicyFile(path, defaults)
		if err != nil {
			log.Printf("Warning: could not load MATCH_POLICY_FILE '%s': %v. Using defaults.\n", path, err)
		}
		policy = loaded
	}

	if viper.IsSet("MATCH_AUTO_THRESHOLD") {
		policy.Thresholds.AutoAssign = viper.GetFloat64("MATCH_AUTO_THRESHOLD")
	}
	if viper.IsSet("MATCH_AMBIGUITY_THRESHOLD") {
		policy.Thresholds.Ambiguity = viper.GetFloat64("MATCH_AMBIGUITY_THRESHOLD")
	}
	if viper.IsSet("MATCH_CANDIDATE_FLOOR") {
		policy.Thresholds.CandidateFloor = viper.GetFloat64("MATCH_CANDIDATE_FLOOR")
	}
	if viper.IsSet("MATCH_FUZZY_NAME_THRESHOLD") {
		policy.Thresholds.FuzzyName = viper.GetFloat64("MATCH_FUZZY_NAME_THRESHOLD")
	}
	if viper.IsSet("MATCH_MAX_CANDIDATES") {
		policy.MaxCandidates = viper.GetInt("MATCH_MAX_CANDIDATES")
	}

	if err := policy.Validate(); err != nil {
		log.Printf("Warning: invalid matching policy: %v. Using defaults.\n", err)
		return defaults
	}
	return policy
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
