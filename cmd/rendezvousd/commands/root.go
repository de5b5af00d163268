// Package commands implements rendezvousd's cobra command tree.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "rendezvousd",
	Short: "UDP rendezvous relay daemon",
	Long:  "rendezvousd accepts CONNECT/DISCONNECT/DATA control packets over UDP and relays DATA between the members of a session.",

	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to an optional YAML tunables file (RENDEZVOUS_CONFIG is used when unset)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(versionCmd())
}

// Execute runs the root command and exits with code 1 on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
