package service

import (
	"time"

	"github.com/google/uuid"

	"github.com/intellsys-io/intellsys-engine/services/connectors/model"
)

const (
	SubjectConnectorProvisioned   = "connectors.provisioned"
	SubjectConnectorDeprovisioned = "connectors.deprovisioned"
)

// EventPublisher publishes connector lifecycle events. Publishing is
// fire-and-report; a failed publish never fails the saga.
type EventPublisher interface {
	Produce(subject string, v any) error
}

type ConnectorEvent struct {
	ConnectorID   uuid.UUID           `json:"connectorId"`
	CompanyID     uuid.UUID           `json:"companyId,omitempty"`
	ConnectorType model.ConnectorType `json:"connectorType"`
	At            time.Time           `json:"at"`
}
