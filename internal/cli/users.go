package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/yukikurage/project-management-api/internal/identity"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage accounts of the local identity provider",
}

var createUserInput identity.CreateUserInput

var createUserCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a local account",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.close()

		gateway, err := a.localGateway()
		if err != nil {
			return err
		}

		user, err := gateway.CreateUser(cmd.Context(), createUserInput)
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		a.logger.Info("user created",
			slog.Uint64("id", user.ID),
			slog.String("username", user.Username),
			slog.Bool("admin", user.Admin),
		)
		return nil
	},
}

func init() {
	createUserCmd.Flags().StringVar(&createUserInput.Username, "username", "", "account name")
	createUserCmd.Flags().StringVar(&createUserInput.Email, "email", "", "contact address")
	createUserCmd.Flags().StringVar(&createUserInput.Password, "password", "", "initial password")
	createUserCmd.Flags().BoolVar(&createUserInput.Admin, "admin", false, "grant the administrator role")
	_ = createUserCmd.MarkFlagRequired("username")
	_ = createUserCmd.MarkFlagRequired("password")

	usersCmd.AddCommand(createUserCmd)
	rootCmd.AddCommand(usersCmd)
}
