package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// CompanyConnectorMapping associates a connector with the company that owns
// it. It exists iff the corresponding registry row is committed.
type CompanyConnectorMapping struct {
	CompanyID     uuid.UUID     `gorm:"primaryKey;type:uuid"`
	ConnectorID   uuid.UUID     `gorm:"primaryKey;type:uuid"`
	ConnectorType ConnectorType `gorm:"not null"`
	DisplayName   string        `gorm:"not null"`

	ExtraInformation datatypes.JSON `gorm:"default:'{}'"`

	CreatedAt time.Time
}

func (CompanyConnectorMapping) TableName() string {
	return "company_to_connector_mapping"
}

// CompanyDestinationMapping resolves a company to the credential of its
// destination database, where ingested rows land.
type CompanyDestinationMapping struct {
	CompanyID               uuid.UUID `gorm:"primaryKey;type:uuid"`
	DestinationCredentialID uuid.UUID `gorm:"type:uuid;not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (CompanyDestinationMapping) TableName() string {
	return "company_to_database_credential_id_mapping"
}
