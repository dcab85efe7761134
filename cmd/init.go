package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/zjrosen/breathe/internal/config"
	"github.com/zjrosen/breathe/internal/sound"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default config file",
	Long:  `Write a commented default config to ~/.config/breathe/config.yaml (or --config) and unpack the built-in ambient sounds.`,
	RunE:  runInit,
}

func init() {
	// init must work before a config file exists.
	initCmd.PersistentPreRunE = func(*cobra.Command, []string) error {
		c, err := loadConfig("")
		if err != nil {
			c = config.Defaults()
		}
		cfg = c
		return nil
	}
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing config file")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if cfgFile != "" {
		path = config.ExpandPath(cfgFile)
	}
	if err := writeConfig(path, initForce); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)

	paths, err := sound.Extract(cfg.SoundsDir())
	if err != nil {
		return fmt.Errorf("unpacking sounds: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Unpacked %d ambient sounds to %s\n", len(paths), cfg.SoundsDir())
	return nil
}

func writeConfig(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return config.WriteDefaultConfig(path)
}
