package cli

import (
	"github.com/spf13/cobra"

	"github.com/yukikurage/project-management-api/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.close()

		return database.Migrate(a.db, a.logger)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
