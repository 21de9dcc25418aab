package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var version = "dev"

func main() {
	var opts clientOptions

	rootCmd := &cobra.Command{
		Use:   "padctl",
		Short: "Control a WalkingPad through the walkpad gateway",
		Long: `padctl talks to a running walkpad gateway over its HTTP API.

Connect to the treadmill, change speed and mode, adjust stored
preferences and follow live status updates.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.Server, "server", envOr("PADCTL_SERVER", "http://localhost:8080"), "gateway base URL")
	rootCmd.PersistentFlags().StringVar(&opts.APIKey, "api-key", os.Getenv("PADCTL_API_KEY"), "API key sent as X-API-Key")
	rootCmd.PersistentFlags().DurationVar(&opts.Timeout, "timeout", 60*time.Second, "request timeout")

	rootCmd.AddCommand(
		stateCmd(&opts),
		connectCmd(&opts),
		disconnectCmd(&opts),
		reconnectCmd(&opts),
		autoReconnectCmd(&opts),
		speedCmd(&opts),
		modeCmd(&opts),
		startCmd(&opts),
		stopCmd(&opts),
		setCmd(&opts),
		recordsCmd(&opts),
		watchCmd(&opts),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}
