package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"agora/internal/platform/config"
	auditpostgres "agora/pkg/platform/audit/store/postgres"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the audit trail schema to Postgres",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			if cfg.Postgres.URL == "" {
				return errors.New("postgres is not configured")
			}

			store, err := auditpostgres.Open(cfg.Postgres.URL)
			if err != nil {
				return err
			}
			defer store.Close()
			return store.Migrate(cmd.Context())
		},
	}
}
