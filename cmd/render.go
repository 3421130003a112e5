package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/BearMapper/BearDeterrenceMap/internal/db"
	"github.com/BearMapper/BearDeterrenceMap/internal/server"
)

var renderOut string

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the map page to a standalone HTML file",
	Long: `Builds the interactive map page from the current database contents and
writes it to a file that opens in any browser without the server.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		database, err := db.Open(cfg.Database)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		page, err := server.RenderMapPage(context.Background(), cfg, database)
		if err != nil {
			return fmt.Errorf("building map page: %w", err)
		}

		if dir := filepath.Dir(renderOut); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("creating output directory: %w", err)
			}
		}
		if err := os.WriteFile(renderOut, []byte(page), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", renderOut, err)
		}

		fmt.Fprintf(os.Stderr, "Map written to %s\n", renderOut)
		return nil
	},
}

func init() {
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "map.html", "output HTML file")
	rootCmd.AddCommand(renderCmd)
}
