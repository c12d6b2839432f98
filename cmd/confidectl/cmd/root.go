package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/confide-dev/confide/config"
	"github.com/confide-dev/confide/log"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	appLogger log.Logger
	cfg       *config.ServerConfig
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "confidectl",
	Short: "confidectl is an operations CLI for the confide gateway",
	Long: `A command-line interface for administering the confide authentication
gateway: inspecting users and secrets, purging expired sessions, and
checking store health. Commands talk to MongoDB directly and use the
same configuration sources as the server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := zerolog.WarnLevel
		if verbose {
			level = zerolog.DebugLevel
		}
		appLogger = log.NewZerologAdapter(level, true)

		var err error
		cfg, err = config.LoadConfig()
		if err != nil {
			appLogger.Error(cmd.Context(), "Failed to load configuration", err)
		}
		return err
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if appLogger != nil {
			appLogger.Error(context.Background(), "Command failed", err)
		} else {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}
