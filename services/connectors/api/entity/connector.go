package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/intellsys-io/intellsys-engine/services/connectors/model"
)

type ProvisionConnectorRequest struct {
	CompanyID     uuid.UUID           `json:"companyId" validate:"required"`
	ConnectorID   uuid.UUID           `json:"connectorId" validate:"required"`
	ConnectorType model.ConnectorType `json:"connectorType" validate:"required"`
	DisplayName   string              `json:"displayName"`

	Credentials      SourceCredentials `json:"credentials" validate:"required"`
	ExtraInformation map[string]string `json:"extraInformation"`
}

type SourceCredentials struct {
	RefreshToken string            `json:"refreshToken" validate:"required"`
	AccountID    string            `json:"accountId" validate:"required"`
	Extra        map[string]string `json:"extra"`
}

// ProvisionConnectorResponse is returned with 201 in both the clean case and
// the committed-with-warning case, distinguished by IngestReady.
type ProvisionConnectorResponse struct {
	ConnectorID uuid.UUID `json:"connectorId"`
	IngestReady bool      `json:"ingestReady"`
	Warning     string    `json:"warning,omitempty"`
}

type Connector struct {
	ID               uuid.UUID           `json:"id"`
	Name             string              `json:"name"`
	ConnectorType    model.ConnectorType `json:"connectorType"`
	AccountKey       string              `json:"accountKey"`
	ExtraInformation map[string]string   `json:"extraInformation,omitempty"`
	CreatedAt        time.Time           `json:"createdAt"`

	// Orphaned marks a mapping row whose registry row is missing.
	Orphaned bool `json:"orphaned,omitempty"`
}

type TeardownResponse struct {
	ConnectorID uuid.UUID     `json:"connectorId"`
	Complete    bool          `json:"complete"`
	Failures    []StepFailure `json:"failures,omitempty"`
}

type StepFailure struct {
	Step  string `json:"step"`
	Error string `json:"error"`
}

type RetryIngestionRequest struct {
	DurationDays int `json:"durationDays"`
}

type DestinationResponse struct {
	CompanyID               uuid.UUID `json:"companyId"`
	DestinationCredentialID uuid.UUID `json:"destinationCredentialId"`
}

type SetDestinationRequest struct {
	DestinationCredentialID uuid.UUID `json:"destinationCredentialId" validate:"required"`
}
