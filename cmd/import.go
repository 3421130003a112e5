package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/BearMapper/BearDeterrenceMap/internal/db"
	"github.com/BearMapper/BearDeterrenceMap/internal/importers"
	"github.com/BearMapper/BearDeterrenceMap/internal/progress"
)

var importFlags importers.Sources

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import field datasets into the database",
	Long: `Imports deterrent device positions, saved markers and polygons, bear
tracking records and camera images. Flags override the paths in the config
file; datasets with no path are skipped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		src := importers.Sources{
			DevicesCSV:  cfg.Import.DevicesCSV,
			MarkersCSV:  cfg.Import.MarkersCSV,
			PolygonsCSV: cfg.Import.PolygonsCSV,
			BearsCSV:    cfg.Import.BearsCSV,
			ImageDir:    cfg.Import.ImageDir,
		}
		if importFlags.DevicesCSV != "" {
			src.DevicesCSV = importFlags.DevicesCSV
		}
		if importFlags.MarkersCSV != "" {
			src.MarkersCSV = importFlags.MarkersCSV
		}
		if importFlags.PolygonsCSV != "" {
			src.PolygonsCSV = importFlags.PolygonsCSV
		}
		if importFlags.BearsCSV != "" {
			src.BearsCSV = importFlags.BearsCSV
		}
		if importFlags.ImageDir != "" {
			src.ImageDir = importFlags.ImageDir
		}

		database, err := db.Open(cfg.Database)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		summary, err := importers.Run(context.Background(), database, src, progress.NewReporter())
		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stderr, "Imported %d devices, %d markers, %d polygons, %d tracking records, %d images\n",
			summary.Devices, summary.Markers, summary.Polygons, summary.Bears, summary.Images)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importFlags.DevicesCSV, "devices", "", "deterrent devices CSV")
	importCmd.Flags().StringVar(&importFlags.MarkersCSV, "markers", "", "saved markers CSV")
	importCmd.Flags().StringVar(&importFlags.PolygonsCSV, "polygons", "", "saved polygons CSV")
	importCmd.Flags().StringVar(&importFlags.BearsCSV, "bears", "", "bear tracking CSV")
	importCmd.Flags().StringVar(&importFlags.ImageDir, "images", "", "camera image directory")
	rootCmd.AddCommand(importCmd)
}
