package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qmshub/api/internal/app"
	"github.com/qmshub/api/internal/infra/postgres"
)

var orgCmd = &cobra.Command{
	Use:   "org",
	Short: "Manage organizations",
}

var orgCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create an organization",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, log, err := setup()
		if err != nil {
			return err
		}
		defer db.Close()

		service := app.NewOrganizationService(postgres.NewOrganizationRepository(db), log)
		org, err := service.CreateOrganization(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s\t%s\n", org.ID(), org.Name())
		return nil
	},
}

var orgListCmd = &cobra.Command{
	Use:   "list",
	Short: "List organizations",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, log, err := setup()
		if err != nil {
			return err
		}
		defer db.Close()

		service := app.NewOrganizationService(postgres.NewOrganizationRepository(db), log)
		orgs, err := service.ListOrganizations(cmd.Context())
		if err != nil {
			return err
		}
		for _, org := range orgs {
			fmt.Printf("%s\t%s\t%s\n", org.ID(), org.Name(), org.CreatedAt().Format("2006-01-02"))
		}
		return nil
	},
}

func init() {
	orgCmd.AddCommand(orgCreateCmd)
	orgCmd.AddCommand(orgListCmd)
}
