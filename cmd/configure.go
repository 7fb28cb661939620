package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"pxfbridge/cli/internal/config"
)

// configureCmd persists the settings resolved from the config file, the
// environment and the flags of this invocation.
var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Save PXF service and segment settings to the config file",
	Example: `  pxfbridge configure --pxf-host mdw --pxf-port 5888
  pxfbridge configure --legacy-uri --log-level debug`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Save(cfg); err != nil {
			return err
		}
		pterm.Success.Printf("Saved settings for %s\n", serviceTarget())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configureCmd)
}
