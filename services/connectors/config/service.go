package config

import "github.com/intellsys-io/intellsys-engine/pkg/config"

type ConnectorConfig struct {
	Registry config.Postgres `koanf:"registry"`
	Mapping  config.Postgres `koanf:"mapping"`

	Http   config.HttpServer `koanf:"http"`
	Vault  config.Vault      `koanf:"vault"`
	NATS   config.NATS       `koanf:"nats"`
	Ingest config.IngestAPI  `koanf:"ingest"`

	BackfillDays int `koanf:"backfill_days"`
}
