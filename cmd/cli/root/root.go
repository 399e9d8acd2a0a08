package root

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "capsule",
	Short: "Capsule API CLI",
	Long:  "Command line interface for interacting with the Capsule API",
}

// GetRoot returns the root command for registration and execution.
func GetRoot() *cobra.Command {
	return rootCmd
}
