package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Connector is the registry row for one attached external account. Rows are
// immutable once committed; only teardown removes them.
type Connector struct {
	ID            uuid.UUID     `gorm:"primaryKey;type:uuid"`
	Name          string        `gorm:"not null"`
	ConnectorType ConnectorType `gorm:"not null;uniqueIndex:idx_connector_type_account_key"`

	// AccountKey is the external account identifier extracted from the
	// platform credentials. The unique index backs the duplicate-account
	// guard; the JSON pre-check is only a fast path.
	AccountKey string `gorm:"not null;uniqueIndex:idx_connector_type_account_key"`

	SourceCredentialID      uuid.UUID `gorm:"type:uuid;not null"`
	DestinationCredentialID uuid.UUID `gorm:"type:uuid;not null"`

	ExtraInformation datatypes.JSON `gorm:"default:'{}'"`

	SubConnectors []SubConnector `gorm:"foreignKey:ConnectorID;references:ID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Connector) TableName() string {
	return "connectors"
}

// SubConnector is the auxiliary registry row scoped under a connector,
// written in the same transaction as its parent.
type SubConnector struct {
	ID          uuid.UUID `gorm:"primaryKey;type:uuid"`
	ConnectorID uuid.UUID `gorm:"type:uuid;not null;index"`
	TableType   uuid.UUID `gorm:"type:uuid;not null"`
	Name        string    `gorm:"not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (SubConnector) TableName() string {
	return "sub_connectors"
}
