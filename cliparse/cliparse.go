package cliparse

import (
	"errors"
	"flag"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            int
	SupabaseURL     string
	SupabaseAnonKey string
}

// ParseFlags validates flags and sets port number
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	// Load .env if present; real env vars take precedence
	_ = godotenv.Load()

	fs := flag.NewFlagSet("pollbox", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.SupabaseURL, "u", "", "Backend base URL")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.SupabaseAnonKey, "k", "", "Backend anon key (prefer env)")

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

	if cfg.SupabaseURL == "" {
		cfg.SupabaseURL = os.Getenv("SUPABASE_URL")
	}
	if cfg.SupabaseURL == "" {
		return Config{}, errors.New("backend URL required (use -u or SUPABASE_URL env)")
	}

	// Anon key - MUST be provided
	if cfg.SupabaseAnonKey == "" {
		cfg.SupabaseAnonKey = os.Getenv("SUPABASE_ANON_KEY")
	}
	if cfg.SupabaseAnonKey == "" {
		return Config{}, errors.New("SUPABASE_ANON_KEY required")
	}

	return cfg, nil
}
