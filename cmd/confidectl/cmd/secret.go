package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var secretCmd = &cobra.Command{
	Use:     "secret",
	Short:   "Inspect published secrets",
	Aliases: []string{"secrets"},
}

var secretListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all published secrets, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		userRepo, _, err := connectStores(cmd.Context())
		if err != nil {
			return err
		}

		secrets, err := userRepo.ListSecrets(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list secrets: %w", err)
		}
		if len(secrets) == 0 {
			fmt.Println("No secrets have been published.")
			return nil
		}

		out, _ := yaml.Marshal(secrets)
		fmt.Print(string(out))
		return nil
	},
}

func init() {
	secretCmd.AddCommand(secretListCmd)
	rootCmd.AddCommand(secretCmd)
}
