package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/nvalette/relight/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "relight",
	Short: "Apply AI lighting effects to photos from the command line",
	Long: `Relight applies stylized lighting edits to photos through the Gemini
image model: add or remove sunlight, shadows, or both.

Examples:
  relight apply --effect add-sunlight photo.jpg
  relight apply --effect add-sunlight --intensity 3 --direction left *.jpg
  relight apply --effect remove-shadows --pick`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
