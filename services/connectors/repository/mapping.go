package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/intellsys-io/intellsys-engine/services/connectors/db"
	"github.com/intellsys-io/intellsys-engine/services/connectors/model"
)

// Mapping is the gateway to the company mapping store, the second resource
// manager of the saga. It shares no transaction context with Registry.
type Mapping interface {
	GetDestinationCredentialID(ctx context.Context, companyID uuid.UUID) (uuid.UUID, error)
	SetDestination(ctx context.Context, m *model.CompanyDestinationMapping) error
	GetDestination(ctx context.Context, companyID uuid.UUID) (*model.CompanyDestinationMapping, error)
	ListCompanyConnectors(ctx context.Context, companyID uuid.UUID) ([]model.CompanyConnectorMapping, error)
	Begin(ctx context.Context) (MappingTx, error)
	DeleteMapping(ctx context.Context, connectorID uuid.UUID) error
}

// MappingTx is one open mapping-store transaction.
type MappingTx interface {
	CreateMapping(m *model.CompanyConnectorMapping) error
	Commit() error
	Rollback() error
}

type MappingSQL struct {
	db db.Database
}

func NewMappingSQL(db db.Database) MappingSQL {
	return MappingSQL{db: db}
}

// GetDestinationCredentialID resolves the company's destination database
// credential. Returns gorm.ErrRecordNotFound when the company has none.
func (s MappingSQL) GetDestinationCredentialID(ctx context.Context, companyID uuid.UUID) (uuid.UUID, error) {
	m, err := s.GetDestination(ctx, companyID)
	if err != nil {
		return uuid.Nil, err
	}

	return m.DestinationCredentialID, nil
}

func (s MappingSQL) GetDestination(ctx context.Context, companyID uuid.UUID) (*model.CompanyDestinationMapping, error) {
	var m model.CompanyDestinationMapping
	tx := s.db.Orm.WithContext(ctx).First(&m, "company_id = ?", companyID.String())
	if tx.Error != nil {
		return nil, tx.Error
	}

	return &m, nil
}

func (s MappingSQL) SetDestination(ctx context.Context, m *model.CompanyDestinationMapping) error {
	return s.db.Orm.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "company_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"destination_credential_id", "updated_at"}),
		}).
		Create(m).Error
}

func (s MappingSQL) ListCompanyConnectors(ctx context.Context, companyID uuid.UUID) ([]model.CompanyConnectorMapping, error) {
	var ms []model.CompanyConnectorMapping
	tx := s.db.Orm.WithContext(ctx).Find(&ms, "company_id = ?", companyID.String())
	if tx.Error != nil {
		return nil, tx.Error
	}

	return ms, nil
}

func (s MappingSQL) Begin(ctx context.Context) (MappingTx, error) {
	tx := s.db.Orm.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	return &mappingTx{tx: tx}, nil
}

// DeleteMapping removes the company mapping for a connector. Deleting an
// absent row is not an error.
func (s MappingSQL) DeleteMapping(ctx context.Context, connectorID uuid.UUID) error {
	return s.db.Orm.WithContext(ctx).
		Where("connector_id = ?", connectorID.String()).
		Delete(&model.CompanyConnectorMapping{}).Error
}

type mappingTx struct {
	tx *gorm.DB
}

func (t *mappingTx) CreateMapping(m *model.CompanyConnectorMapping) error {
	return t.tx.Create(m).Error
}

func (t *mappingTx) Commit() error {
	return t.tx.Commit().Error
}

func (t *mappingTx) Rollback() error {
	return t.tx.Rollback().Error
}
