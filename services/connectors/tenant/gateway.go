package tenant

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"
	"go.uber.org/zap"

	"github.com/intellsys-io/intellsys-engine/pkg/vault"
)

// Gateway hands out destination-database handles keyed by the company's
// destination credential id.
type Gateway interface {
	Connect(ctx context.Context, credentialID uuid.UUID) (Database, error)
}

// Database is the DDL surface of one destination database.
type Database interface {
	TableExists(ctx context.Context, name string) (bool, error)
	CreateIngestionTable(ctx context.Context, name string) error
	DropTable(ctx context.Context, name string) error
}

// Manager resolves destination credentials from the vault and caches one
// pool per destination.
type Manager struct {
	vault  vault.SourceConfig
	logger *zap.Logger

	mu    sync.Mutex
	pools map[uuid.UUID]*pgxpool.Pool
}

func NewManager(vault vault.SourceConfig, logger *zap.Logger) *Manager {
	return &Manager{
		vault:  vault,
		logger: logger.Named("tenant"),
		pools:  make(map[uuid.UUID]*pgxpool.Pool),
	}
}

// DestinationPath is the vault location of a destination database credential.
func DestinationPath(credentialID uuid.UUID) string {
	return fmt.Sprintf("destinations/%s", credentialID)
}

func (m *Manager) Connect(ctx context.Context, credentialID uuid.UUID) (Database, error) {
	m.mu.Lock()
	pool, ok := m.pools[credentialID]
	m.mu.Unlock()
	if ok {
		return &DB{pool: pool, logger: m.logger}, nil
	}

	secret, err := m.vault.Read(ctx, DestinationPath(credentialID))
	if err != nil {
		return nil, fmt.Errorf("read destination credential: %w", err)
	}

	dsn, err := dsnFromSecret(secret)
	if err != nil {
		return nil, err
	}

	pool, err = pgxpool.Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect destination database: %w", err)
	}

	m.mu.Lock()
	if existing, ok := m.pools[credentialID]; ok {
		m.mu.Unlock()
		pool.Close()
		return &DB{pool: existing, logger: m.logger}, nil
	}
	m.pools[credentialID] = pool
	m.mu.Unlock()

	m.logger.Info("connected to destination database", zap.String("credential_id", credentialID.String()))

	return &DB{pool: pool, logger: m.logger}, nil
}

func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, pool := range m.pools {
		pool.Close()
	}
	m.pools = make(map[uuid.UUID]*pgxpool.Pool)
}

func dsnFromSecret(secret map[string]any) (string, error) {
	for _, key := range []string{"host", "port", "user", "password", "dbname"} {
		if _, ok := secret[key].(string); !ok {
			return "", fmt.Errorf("destination credential is missing %s", key)
		}
	}

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s",
		secret["host"], secret["port"], secret["user"], secret["password"], secret["dbname"],
	), nil
}

type DB struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func (db *DB) TableExists(ctx context.Context, name string) (bool, error) {
	if err := validateIdentifier(name); err != nil {
		return false, err
	}

	var regclass *string
	err := db.pool.QueryRow(ctx, "SELECT to_regclass($1)::text", name).Scan(&regclass)
	if err != nil {
		return false, fmt.Errorf("table existence check: %w", err)
	}

	return regclass != nil, nil
}

func (db *DB) CreateIngestionTable(ctx context.Context, name string) error {
	if err := validateIdentifier(name); err != nil {
		return err
	}

	ddl := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id text NOT NULL,
			ingested_at timestamp NOT NULL,
			"data" json NOT NULL,
			CONSTRAINT %s_pkey PRIMARY KEY (id)
		)`, name, name)

	if _, err := db.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("create ingestion table %s: %w", name, err)
	}

	db.logger.Info("created ingestion table", zap.String("table", name))

	return nil
}

func (db *DB) DropTable(ctx context.Context, name string) error {
	if err := validateIdentifier(name); err != nil {
		return err
	}

	if _, err := db.pool.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", name)); err != nil {
		return fmt.Errorf("drop table %s: %w", name, err)
	}

	db.logger.Info("dropped ingestion table", zap.String("table", name))

	return nil
}
