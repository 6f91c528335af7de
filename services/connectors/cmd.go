package connectors

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	pkgconfig "github.com/intellsys-io/intellsys-engine/pkg/config"
	"github.com/intellsys-io/intellsys-engine/pkg/httpserver"
	"github.com/intellsys-io/intellsys-engine/pkg/jq"
	"github.com/intellsys-io/intellsys-engine/pkg/postgres"
	"github.com/intellsys-io/intellsys-engine/pkg/vault"
	"github.com/intellsys-io/intellsys-engine/services/connectors/api"
	"github.com/intellsys-io/intellsys-engine/services/connectors/config"
	"github.com/intellsys-io/intellsys-engine/services/connectors/db"
	"github.com/intellsys-io/intellsys-engine/services/connectors/ingest"
	"github.com/intellsys-io/intellsys-engine/services/connectors/repository"
	"github.com/intellsys-io/intellsys-engine/services/connectors/service"
	"github.com/intellsys-io/intellsys-engine/services/connectors/tenant"
)

func Command() *cobra.Command {
	return &cobra.Command{
		Use:           "connectors",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var cnf config.ConnectorConfig
			if err := pkgconfig.ReadFromEnv(&cnf, defaultConfig()); err != nil {
				return fmt.Errorf("read config: %w", err)
			}

			logger, err := zap.NewProduction()
			if err != nil {
				return fmt.Errorf("new logger: %w", err)
			}
			logger = logger.Named("connectors")

			registryOrm, err := postgres.NewClient(&postgres.Config{
				Host:    cnf.Registry.Host,
				Port:    cnf.Registry.Port,
				User:    cnf.Registry.Username,
				Passwd:  cnf.Registry.Password,
				DB:      cnf.Registry.DB,
				SSLMode: cnf.Registry.SSLMode,
			}, logger)
			if err != nil {
				return fmt.Errorf("new registry postgres client: %w", err)
			}

			mappingOrm, err := postgres.NewClient(&postgres.Config{
				Host:    cnf.Mapping.Host,
				Port:    cnf.Mapping.Port,
				User:    cnf.Mapping.Username,
				Passwd:  cnf.Mapping.Password,
				DB:      cnf.Mapping.DB,
				SSLMode: cnf.Mapping.SSLMode,
			}, logger)
			if err != nil {
				return fmt.Errorf("new mapping postgres client: %w", err)
			}

			registryDB := db.NewDatabase(registryOrm)
			if err := registryDB.InitializeRegistry(); err != nil {
				return fmt.Errorf("initialize registry schema: %w", err)
			}
			mappingDB := db.NewDatabase(mappingOrm)
			if err := mappingDB.InitializeMapping(); err != nil {
				return fmt.Errorf("initialize mapping schema: %w", err)
			}

			vlt, err := vault.NewSourceConfig(cnf.Vault.Address, cnf.Vault.CaPath, cnf.Vault.Token)
			if err != nil {
				return fmt.Errorf("new vault client: %w", err)
			}

			var events service.EventPublisher
			if cnf.NATS.URL != "" {
				queue, err := jq.New(cnf.NATS.URL, logger)
				if err != nil {
					return fmt.Errorf("new job queue: %w", err)
				}
				defer queue.Close()
				events = queue
			}

			registry := repository.NewRegistrySQL(registryDB)
			mapping := repository.NewMappingSQL(mappingDB)
			tenants := tenant.NewManager(vlt, logger)
			defer tenants.Close()
			ingestClient := ingest.NewHTTPClient(cnf.Ingest.BaseURL, cnf.Ingest.Token)

			provisioning := service.NewProvisioning(
				logger, registry, mapping, vlt, tenants, ingestClient, events, cnf.BackfillDays)
			teardown := service.NewTeardown(logger, registry, mapping, vlt, tenants, events)
			directory := service.NewDirectory(logger, registry, mapping)

			handler := api.New(logger, provisioning, teardown, directory)

			return httpserver.RegisterAndStart(cmd.Context(), logger, cnf.Http.Address, handler)
		},
	}
}

func defaultConfig() config.ConnectorConfig {
	return config.ConnectorConfig{
		Registry: pkgconfig.Postgres{
			Host:    "localhost",
			Port:    "5432",
			DB:      "connector_registry",
			SSLMode: "disable",
		},
		Mapping: pkgconfig.Postgres{
			Host:    "localhost",
			Port:    "5432",
			DB:      "company_mapping",
			SSLMode: "disable",
		},
		Http: pkgconfig.HttpServer{
			Address: "localhost:8000",
		},
		Vault: pkgconfig.Vault{
			Address: "http://localhost:8200",
		},
		BackfillDays: service.DefaultBackfillDays,
	}
}
