package commands

import (
	"github.com/spf13/cobra"

	"github.com/qmshub/api/internal/app"
	"github.com/qmshub/api/internal/infra/postgres"
	"github.com/qmshub/api/pkg/domain/identity"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create a demo organization with sample findings",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, log, err := setup()
		if err != nil {
			return err
		}
		defer db.Close()

		ctx := cmd.Context()

		orgService := app.NewOrganizationService(postgres.NewOrganizationRepository(db), log)
		org, err := orgService.CreateOrganization(ctx, "Demo QMS")
		if err != nil {
			return err
		}

		findingService := app.NewFindingService(
			postgres.NewFindingRepository(db),
			postgres.NewTagRepository(db),
			postgres.NewHistoryRepository(db),
			db,
			log,
		)

		tcx := identity.TenantContext{
			OrganizationID: org.ID(),
			UserID:         "seed",
			Role:           identity.RoleAdmin,
		}

		samples := []app.CreateFindingInput{
			{
				Numero:      "NC-2026-001",
				Titulo:      "Desviación en control de calidad",
				Descripcion: "Lote rechazado por fuera de especificación",
				Origen:      "auditoria interna",
				Categoria:   "proceso",
				Prioridad:   "alta",
				Responsable: "calidad",
			},
			{
				Numero:      "NC-2026-002",
				Titulo:      "Registro de calibración incompleto",
				Origen:      "inspeccion",
				Categoria:   "documentacion",
				Prioridad:   "media",
				Responsable: "metrologia",
			},
		}
		for _, input := range samples {
			if _, err := findingService.CreateFinding(ctx, tcx, input); err != nil {
				return err
			}
		}

		log.Info("seed complete", "organization_id", org.ID().String(), "findings", len(samples))
		return nil
	},
}
