package cmd

import (
	"errors"
	"fmt"

	"github.com/confide-dev/confide/domain"
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:     "session",
	Short:   "Manage server-side sessions",
	Aliases: []string{"sessions"},
}

var sessionRevokeCmd = &cobra.Command{
	Use:   "revoke SESSION_ID",
	Short: "Revoke one session by id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, sessionRepo, err := connectStores(cmd.Context())
		if err != nil {
			return err
		}

		if err := sessionRepo.RevokeSession(cmd.Context(), args[0]); err != nil {
			if errors.Is(err, domain.ErrSessionNotFound) {
				return fmt.Errorf("no session with id %q", args[0])
			}
			return err
		}
		fmt.Printf("Session %s revoked.\n", args[0])
		return nil
	},
}

var sessionCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Count sessions that are neither revoked nor expired",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, sessionRepo, err := connectStores(cmd.Context())
		if err != nil {
			return err
		}

		count, err := sessionRepo.CountActiveSessions(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to count sessions: %w", err)
		}
		fmt.Printf("%d active session(s).\n", count)
		return nil
	},
}

var sessionPurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete expired session records",
	Long: `Deletes session records past their expiry. The MongoDB TTL monitor does
this on its own schedule; purge forces it, which is useful after lowering
SESSION_TTL_HOURS.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, sessionRepo, err := connectStores(cmd.Context())
		if err != nil {
			return err
		}

		if err := sessionRepo.DeleteExpiredSessions(cmd.Context()); err != nil {
			return fmt.Errorf("failed to purge sessions: %w", err)
		}
		fmt.Println("Expired sessions purged.")
		return nil
	},
}

func init() {
	sessionCmd.AddCommand(sessionRevokeCmd)
	sessionCmd.AddCommand(sessionCountCmd)
	sessionCmd.AddCommand(sessionPurgeCmd)
	rootCmd.AddCommand(sessionCmd)
}
