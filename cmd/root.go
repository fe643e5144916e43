package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the schedcal application
var rootCmd = &cobra.Command{
	Use:   "schedcal",
	Short: "Calendar scheduling service for booking meeting slots",
	Long: `schedcal computes free, bookable meeting slots for a day from a Google
calendar's busy intervals and books events against that calendar.

It authenticates server-to-server with a Google service account and can run as:
  - An HTTP booking service (default)
  - A one-shot CLI that prints free slots for a date`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "schedcal version %s\n" .Version}}`)

	// If no subcommand is provided, run the serve command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newSlotsCmd())
	rootCmd.AddCommand(newVersionCmd())
}
