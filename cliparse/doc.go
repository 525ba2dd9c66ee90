// Copyright (c) 2025 Pollbox Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

A .env file in the working directory is loaded first (via godotenv);
explicit environment variables and CLI flags win over it.

# Config Fields

  - Port: Server listen port (default: 3318)
  - SupabaseURL: Base URL of the hosted backend (required)
  - SupabaseAnonKey: Public anon API key (required)

# CLI Flags

	-p  Server port
	-u  Backend base URL
	-k  Backend anon key

# Environment Variables

Flags fall back to environment variables:

	PORT              → -p
	SUPABASE_URL      → -u
	SUPABASE_ANON_KEY → -k

CLI flags take precedence over environment variables.

# Validation

ParseFlags returns an error if required values are missing:

  - SUPABASE_URL must be provided
  - SUPABASE_ANON_KEY must be provided
*/
package cliparse
