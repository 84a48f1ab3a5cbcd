package cliparse

import (
	"errors"
	"flag"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string
	AdminKeySalt string
	CodeSalt     string
	VenueFile    string

	// Background queue decay
	DecayInterval time.Duration

	// Assistant (LLM relay)
	ChatProvider     string
	ChatAPIKey       string
	ChatModel        string
	ChatBaseURL      string
	WatsonxProjectID string
	IAMURL           string

	// Navigator upstreams
	GeocoderURL    string
	RoutingURL     string
	RoutingProfile string
	IPLocatorURL   string
}

// ParseFlags validates flags and fills the rest from the environment
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	// A missing .env is fine; real env vars always win over it
	_ = godotenv.Load()

	fs := flag.NewFlagSet("smartecoq", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL or SQLite file")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&cfg.VenueFile, "venue", "", "Venue description (YAML)")
	fs.DurationVar(&cfg.DecayInterval, "decay", 0, "Queue decay tick interval")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.AdminKeySalt, "admin-salt", "", "Admin key salt (prefer env)")
	fs.StringVar(&cfg.CodeSalt, "code-salt", "", "Reservation code salt (prefer env)")

	fs.StringVar(&cfg.ChatProvider, "chat", "", "Assistant provider (openai, watsonx, gemini)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3318 // default
		}
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, errors.New("database type must be sqlite or postgres")
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		if cfg.DatabaseType == "postgres" {
			return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
		}
		cfg.DatabaseURL = "event.db"
	}

	if cfg.VenueFile == "" {
		cfg.VenueFile = envOr("VENUE_FILE", "venue.yml")
	}

	if cfg.DecayInterval == 0 {
		if s := os.Getenv("DECAY_INTERVAL"); s != "" {
			d, err := time.ParseDuration(s)
			if err != nil {
				return Config{}, errors.New("invalid DECAY_INTERVAL env variable")
			}
			cfg.DecayInterval = d
		} else {
			cfg.DecayInterval = 15 * time.Second
		}
	}
	if cfg.DecayInterval < 0 {
		return Config{}, errors.New("decay interval must be positive")
	}

	// Secrets - MUST be provided
	if cfg.AdminKeySalt == "" {
		cfg.AdminKeySalt = os.Getenv("ADMIN_KEY_SALT")
	}
	if cfg.AdminKeySalt == "" {
		return Config{}, errors.New("ADMIN_KEY_SALT required")
	}

	if cfg.CodeSalt == "" {
		cfg.CodeSalt = os.Getenv("RESERVATION_CODE_SALT")
	}
	if cfg.CodeSalt == "" {
		return Config{}, errors.New("RESERVATION_CODE_SALT required")
	}

	if cfg.ChatProvider == "" {
		cfg.ChatProvider = envOr("CHAT_PROVIDER", "openai")
	}
	switch cfg.ChatProvider {
	case "openai", "watsonx", "gemini":
	default:
		return Config{}, errors.New("chat provider must be openai, watsonx or gemini")
	}
	cfg.ChatAPIKey = os.Getenv("API_KEY")
	cfg.ChatModel = os.Getenv("CHAT_MODEL")
	cfg.ChatBaseURL = os.Getenv("CHAT_BASE_URL")
	cfg.WatsonxProjectID = os.Getenv("WATSONX_PROJECT_ID")
	cfg.IAMURL = envOr("IAM_URL", "https://iam.cloud.ibm.com/identity/token")

	cfg.GeocoderURL = envOr("GEOCODER_URL", "https://nominatim.openstreetmap.org")
	cfg.RoutingURL = os.Getenv("ROUTING_URL")
	cfg.RoutingProfile = envOr("ROUTING_PROFILE", "foot")
	cfg.IPLocatorURL = envOr("IP_LOCATOR_URL", "http://ip-api.com")

	return cfg, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
