package cmd

import (
	"errors"
	"fmt"
	"syscall"
	"time"

	"github.com/confide-dev/confide/domain"
	"github.com/confide-dev/confide/internal/auth"
	"github.com/confide-dev/confide/services"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

var userCmd = &cobra.Command{
	Use:     "user",
	Short:   "Manage identity records",
	Aliases: []string{"users"},
}

// userView is the yaml shape printed for a user. The password hash is never
// printed.
type userView struct {
	ID          string     `yaml:"id"`
	Username    string     `yaml:"username,omitempty"`
	GoogleID    string     `yaml:"googleId,omitempty"`
	FacebookID  string     `yaml:"facebookId,omitempty"`
	HasSecret   bool       `yaml:"hasSecret"`
	CreatedAt   time.Time  `yaml:"createdAt"`
	LastLoginAt *time.Time `yaml:"lastLoginAt,omitempty"`
}

func viewOf(u *domain.User) userView {
	return userView{
		ID:          u.ID,
		Username:    u.Username,
		GoogleID:    u.GoogleID,
		FacebookID:  u.FacebookID,
		HasSecret:   u.Secret != "",
		CreatedAt:   u.CreatedAt,
		LastLoginAt: u.LastLoginAt,
	}
}

var userGetCmd = &cobra.Command{
	Use:   "get USERNAME",
	Short: "Show an identity record by username",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userRepo, _, err := connectStores(cmd.Context())
		if err != nil {
			return err
		}

		user, err := userRepo.GetUserByUsername(cmd.Context(), args[0])
		if err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				return fmt.Errorf("no user with username %q", args[0])
			}
			return err
		}

		out, _ := yaml.Marshal(viewOf(user))
		fmt.Print(string(out))
		return nil
	},
}

var userRegisterCmd = &cobra.Command{
	Use:   "register USERNAME",
	Short: "Register a locally credentialed user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, _ := cmd.Flags().GetString("password")
		if password == "" {
			fmt.Print("Enter password: ")
			bytePassword, err := term.ReadPassword(int(syscall.Stdin))
			fmt.Println()
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			fmt.Print("Confirm password: ")
			byteConfirm, err := term.ReadPassword(int(syscall.Stdin))
			fmt.Println()
			if err != nil {
				return fmt.Errorf("failed to read password confirmation: %w", err)
			}
			if string(bytePassword) != string(byteConfirm) {
				return errors.New("passwords do not match")
			}
			password = string(bytePassword)
		}

		userRepo, _, err := connectStores(cmd.Context())
		if err != nil {
			return err
		}

		// Same registration path the server uses, policy included.
		authService := services.NewAuthService(userRepo, auth.NewBcryptPasswordHasher(cfg.BcryptCost))
		user, err := authService.Register(cmd.Context(), args[0], password)
		if err != nil {
			return fmt.Errorf("registration failed: %w", err)
		}

		fmt.Println("User registered:")
		out, _ := yaml.Marshal(viewOf(user))
		fmt.Print(string(out))
		return nil
	},
}

func init() {
	userRegisterCmd.Flags().String("password", "", "password (prompted when omitted)")

	userCmd.AddCommand(userGetCmd)
	userCmd.AddCommand(userRegisterCmd)
	rootCmd.AddCommand(userCmd)
}
