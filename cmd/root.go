// Package cmd implements the breathe command line.
package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/breathe/internal/config"
	"github.com/zjrosen/breathe/internal/log"
)

// version is set at build time with -ldflags "-X github.com/zjrosen/breathe/cmd.version=...".
var version = "dev"

var (
	cfgFile  string
	envFile  string
	logLevel string

	cfg      config.Config
	closeLog func() error
)

var rootCmd = &cobra.Command{
	Use:   "breathe",
	Short: "Guided breathing exercises with ambient sound",
	Long: `breathe walks you through timed breathing exercises such as 4-7-8 and box
breathing, with optional looping ambient tracks playing underneath.

Run without arguments for the interactive view, or use 'breathe run <id>'
for a headless session.`,
	Version:            version,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
	RunE:               runTUI,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.config/breathe/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file with BREATHE_* overrides")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
}

func setup(cmd *cobra.Command, _ []string) error {
	if err := loadDotEnv(envFile); err != nil {
		return fmt.Errorf("loading %s: %w", envFile, err)
	}

	loaded, err := loadConfig(cfgFile)
	if err != nil {
		return err
	}
	if logLevel != "" {
		loaded.Log.Level = logLevel
	}
	cfg = loaded

	closeLog, err = log.Init(cfg.ResolvedLogFile(), cfg.Log.Level)
	if err != nil {
		return err
	}
	log.Info(log.CatConfig, "Starting breathe", "version", version, "command", cmd.Name())
	return nil
}

func teardown(*cobra.Command, []string) error {
	if closeLog == nil {
		return nil
	}
	err := closeLog()
	closeLog = nil
	return err
}

// loadConfig reads the config file at path (or the default location), then
// applies BREATHE_* environment overrides on top of the defaults.
func loadConfig(path string) (config.Config, error) {
	v := viper.New()
	config.SetDefaults(v)
	v.SetEnvPrefix("BREATHE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(config.ExpandPath(path))
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(config.ExpandPath("~/.config/breathe"))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return config.Config{}, fmt.Errorf("reading config: %w", err)
		}
	}

	var c config.Config
	if err := v.Unmarshal(&c); err != nil {
		return config.Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid config %s: %w", v.ConfigFileUsed(), err)
	}
	return c, nil
}

// loadDotEnv loads environment variables from path. Missing files are ignored.
func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
