package cmd

import (
	"github.com/spf13/cobra"

	"github.com/BearMapper/BearDeterrenceMap/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "beardmap",
	Short: "Interactive map of bear deterrent devices and sightings",
	Long: `Beardmap serves an interactive Leaflet map of deterrent device
locations, camera trap images, bear movement tracks and field survey
drawings, backed by a local SQLite database.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "config file path")
}

// loadConfig loads and validates the configuration for a subcommand.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
