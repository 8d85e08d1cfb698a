package cmd

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	domainAgent "github.com/wadesk/wadesk/domains/agent"
	"github.com/wadesk/wadesk/infrastructure/storage"
)

var seedAgents []string

var migrationCmd = &cobra.Command{
	Use:   "migration",
	Short: "Run database migrations and optional agent seeding",
	Run:   runMigration,
}

func init() {
	migrationCmd.Flags().StringSliceVar(&seedAgents, "seed-agent", nil, "Seed an agent account (repeatable, format: name[:role])")
	rootCmd.AddCommand(migrationCmd)
}

func runMigration(_ *cobra.Command, _ []string) {
	if err := storage.Migrate(appDB); err != nil {
		logrus.Fatalln("Migration failed:", err)
	}
	logrus.Info("Database migrated")

	ctx := context.Background()
	for _, spec := range seedAgents {
		name, role := splitAgentSpec(spec)
		ag, err := agentRepo.Create(ctx, domainAgent.Agent{Name: name, Role: role})
		if err != nil {
			logrus.Errorf("Failed to seed agent %q: %v", name, err)
			continue
		}
		logrus.WithFields(logrus.Fields{"agent_id": ag.ID, "name": ag.Name, "role": ag.Role}).Info("Agent seeded")
	}
}

func splitAgentSpec(spec string) (string, domainAgent.Role) {
	for i := len(spec) - 1; i >= 0; i-- {
		if spec[i] == ':' {
			role := domainAgent.Role(spec[i+1:])
			if role == domainAgent.RoleAdmin {
				return spec[:i], domainAgent.RoleAdmin
			}
			return spec[:i], domainAgent.RoleAgent
		}
	}
	return spec, domainAgent.RoleAgent
}
