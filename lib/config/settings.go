package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
)

type Settings struct {
	Config         Config
	VerboseLogging bool
	// RunOnce - run a single ingestion and exit instead of waiting on the schedule.
	RunOnce bool
}

// LoadSettings will take the flags and then parse, loadConfig is optional for testing purposes.
func LoadSettings(args []string, loadConfig bool) (*Settings, error) {
	var opts struct {
		ConfigFilePath string `short:"c" long:"config" description:"path to the config file"`
		EnvFilePath    string `long:"env-file" description:"path to a .env file" default:".env"`
		Verbose        bool   `short:"v" long:"verbose" description:"debug logging" optional:"true"`
		Once           bool   `long:"once" description:"run a single ingestion and exit" optional:"true"`
	}

	if _, err := flags.ParseArgs(&opts, args); err != nil {
		return nil, fmt.Errorf("failed to parse args: %w", err)
	}

	settings := &Settings{
		VerboseLogging: opts.Verbose,
		RunOnce:        opts.Once,
	}

	if loadConfig {
		if err := loadEnvFile(opts.EnvFilePath); err != nil {
			return nil, err
		}

		config, err := readFileToConfig(opts.ConfigFilePath)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}

		config.applyEnv(os.Getenv)
		config.loadDefaultValues()
		if err = config.Validate(); err != nil {
			return nil, fmt.Errorf("failed to validate config: %w", err)
		}

		settings.Config = *config
	}

	return settings, nil
}

// loadEnvFile loads variables from a .env file without overriding ones that are already set.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}

	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}

		return fmt.Errorf("failed to load env file %q: %w", path, err)
	}

	return nil
}
