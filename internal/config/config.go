// Package config provides functionality for managing configuration options
// for the application using command-line flags and environment variables.
package config

import (
	"encoding/json"
	"flag"
	"log"
	"os"
)

// DefaultAPIBaseURL is the verification API used when nothing is configured.
const DefaultAPIBaseURL = "http://localhost:8080/api/verify"

// Options holds the configuration values for the application.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string

	// DatabaseDSN holds the database connection string for the dev
	// backend. When empty the backend runs on in-memory storage.
	DatabaseDSN string

	// APIBaseURL is the verification API base used by the client.
	APIBaseURL string

	// SessionFile is where the client persists resumable wizard state.
	SessionFile string

	// CameraImage is the still image used as the client's camera device.
	CameraImage string

	// Config is the path to the Config file.
	Config string
}

// options holds the current configuration values.
var options = &Options{}

// init initializes command-line flags and sets default values.
func init() {
	flag.StringVar(&options.Port, "a", "localhost:8080", "run on ip:port server")
	flag.StringVar(&options.DatabaseDSN, "d", "", "db address")
	flag.StringVar(&options.APIBaseURL, "url", DefaultAPIBaseURL, "verification API base URL")
	flag.StringVar(&options.SessionFile, "session", "session.json", "path to wizard session file")
	flag.StringVar(&options.CameraImage, "camera", "", "path to a still image used as the camera device")
	flag.StringVar(&options.Config, "config", "config.json", "path to config file")
	flag.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")
}

// Parse parses the command-line flags and environment variables to set
// configuration values. It returns a pointer to the Options struct containing
// the parsed configuration values.
func Parse() *Options {
	flag.Parse()

	// Override flags with environment variables if set
	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		if _, err := os.Stat(options.Config); err == nil {
			data, err := os.ReadFile(options.Config)
			if err != nil {
				log.Fatalf("error while reading config file: %v", err)
			}
			if err := json.Unmarshal(data, options); err != nil {
				log.Fatalf("error while parsing config file: %v", err)
			}
		}
	}

	if serverAddress := os.Getenv("SERVER_ADDRESS"); serverAddress != "" {
		options.Port = serverAddress
	}

	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		options.DatabaseDSN = dsn
	}

	if apiURL := os.Getenv("API_BASE_URL"); apiURL != "" {
		options.APIBaseURL = apiURL
	}

	return options
}
