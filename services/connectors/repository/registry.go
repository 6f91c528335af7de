package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"gorm.io/gorm"

	"github.com/intellsys-io/intellsys-engine/services/connectors/db"
	"github.com/intellsys-io/intellsys-engine/services/connectors/model"
)

// ErrDuplicateAccount reports a unique-index violation on
// (connector_type, account_key). It is the authoritative duplicate signal;
// AccountExists is only a fast path.
var ErrDuplicateAccount = errors.New("a connector for this account already exists")

const uniqueViolation = "23505"

// Registry is the gateway to the connector registry store. The saga owns all
// transaction boundaries through Begin.
type Registry interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Connector, error)
	AccountExists(ctx context.Context, t model.ConnectorType, accountKey string) (bool, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Connector, error)
	Begin(ctx context.Context) (RegistryTx, error)
	DeleteConnector(ctx context.Context, id uuid.UUID) error
}

// RegistryTx is one open registry transaction.
type RegistryTx interface {
	LockConnector(id uuid.UUID) error
	CreateConnector(c *model.Connector) error
	CreateSubConnector(sc *model.SubConnector) error
	DeleteConnector(id uuid.UUID) error
	Commit() error
	Rollback() error
}

type RegistrySQL struct {
	db db.Database
}

func NewRegistrySQL(db db.Database) RegistrySQL {
	return RegistrySQL{db: db}
}

// Get gets a connector with matching id, with its sub connectors.
func (s RegistrySQL) Get(ctx context.Context, id uuid.UUID) (*model.Connector, error) {
	var c model.Connector
	tx := s.db.Orm.WithContext(ctx).Preload("SubConnectors").First(&c, "id = ?", id.String())
	if tx.Error != nil {
		return nil, tx.Error
	}

	return &c, nil
}

// AccountExists reports whether a connector of this type is already
// registered for the external account.
func (s RegistrySQL) AccountExists(ctx context.Context, t model.ConnectorType, accountKey string) (bool, error) {
	var count int64
	tx := s.db.Orm.WithContext(ctx).
		Model(&model.Connector{}).
		Where("connector_type = ? AND account_key = ?", t, accountKey).
		Count(&count)
	if tx.Error != nil {
		return false, tx.Error
	}

	return count > 0, nil
}

func (s RegistrySQL) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Connector, error) {
	var cs []model.Connector
	tx := s.db.Orm.WithContext(ctx).Find(&cs, "id IN ?", ids)
	if tx.Error != nil {
		return nil, tx.Error
	}

	return cs, nil
}

func (s RegistrySQL) Begin(ctx context.Context) (RegistryTx, error) {
	tx := s.db.Orm.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	return &registryTx{tx: tx}, nil
}

// DeleteConnector removes a connector and its sub connectors outside any
// caller-held transaction. Used by the saga as a compensating action.
func (s RegistrySQL) DeleteConnector(ctx context.Context, id uuid.UUID) error {
	tx, err := s.Begin(ctx)
	if err != nil {
		return err
	}
	if err := tx.LockConnector(id); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.DeleteConnector(id); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

type registryTx struct {
	tx *gorm.DB
}

// LockConnector serializes saga invocations for one connector id.
// pg_advisory_xact_lock is Postgres-only; other dialects fall back to the
// row-level locking the store already provides.
func (t *registryTx) LockConnector(id uuid.UUID) error {
	if t.tx.Dialector.Name() != "postgres" {
		return nil
	}

	return t.tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", id.String()).Error
}

func (t *registryTx) CreateConnector(c *model.Connector) error {
	if err := t.tx.Omit("SubConnectors").Create(c).Error; err != nil {
		return translateDuplicate(err)
	}

	return nil
}

func (t *registryTx) CreateSubConnector(sc *model.SubConnector) error {
	return t.tx.Create(sc).Error
}

func (t *registryTx) DeleteConnector(id uuid.UUID) error {
	if err := t.tx.Where("connector_id = ?", id.String()).Delete(&model.SubConnector{}).Error; err != nil {
		return err
	}

	return t.tx.Where("id = ?", id.String()).Delete(&model.Connector{}).Error
}

func (t *registryTx) Commit() error {
	return t.tx.Commit().Error
}

func (t *registryTx) Rollback() error {
	return t.tx.Rollback().Error
}

func translateDuplicate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateAccount
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicateAccount
	}

	return fmt.Errorf("create connector: %w", err)
}
