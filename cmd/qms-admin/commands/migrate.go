package commands

import (
	"github.com/spf13/cobra"

	"github.com/qmshub/api/pkg/migrations"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, log, err := setup()
		if err != nil {
			return err
		}
		defer db.Close()

		applied, err := migrations.NewRunner(db.DB).Up(cmd.Context())
		if err != nil {
			return err
		}
		log.Info("migrations applied", "count", applied)
		return nil
	},
}
