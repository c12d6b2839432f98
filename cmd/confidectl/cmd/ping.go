package cmd

import (
	"fmt"
	"time"

	"github.com/confide-dev/confide/mongodb"
	"github.com/spf13/cobra"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check MongoDB reachability",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := mongodb.InitMongoDB(cmd.Context(), cfg.MongoURI, cfg.MongoDBName); err != nil {
			return fmt.Errorf("failed to connect to MongoDB: %w", err)
		}

		start := time.Now()
		if err := mongodb.Ping(cmd.Context()); err != nil {
			return fmt.Errorf("ping failed: %w", err)
		}
		fmt.Printf("MongoDB OK (%s, %s)\n", cfg.MongoDBName, time.Since(start).Round(time.Millisecond))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pingCmd)
}
