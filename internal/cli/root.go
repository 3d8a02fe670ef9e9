package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/rohan4324/Furever-App-sub000/internal/ui"
	"github.com/rohan4324/Furever-App-sub000/internal/version"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "consult",
	Short: "Join Furever video consultations from the terminal",
	Long: `Consult is the native client for Furever's video-consultation
signaling core. It joins the appointment room assigned by the booking flow,
negotiates the call with the other participant and tears everything down
cleanly when the call ends.`,
	Version: version.Version,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Called once from main.
func Execute() {
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	if err := rootCmd.Execute(); err != nil {
		ui.PrintError(err.Error())
		os.Exit(1)
	}
}
