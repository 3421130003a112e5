package cmd

import (
	"github.com/spf13/cobra"

	"github.com/BearMapper/BearDeterrenceMap/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize beardmap configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure the map and generates a .bearmap.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard()
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
