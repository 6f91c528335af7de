package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/intellsys-io/intellsys-engine/pkg/vault"
	"github.com/intellsys-io/intellsys-engine/services/connectors/model"
	"github.com/intellsys-io/intellsys-engine/services/connectors/repository"
	"github.com/intellsys-io/intellsys-engine/services/connectors/tenant"
)

// Teardown removes every trace of a connector. Each step is attempted
// regardless of earlier failures and absent resources count as removed, so
// re-running a partially failed teardown converges.
type Teardown struct {
	logger   *zap.Logger
	tracer   trace.Tracer
	registry repository.Registry
	mapping  repository.Mapping
	vault    vault.SourceConfig
	tenants  tenant.Gateway
	events   EventPublisher
}

func NewTeardown(
	logger *zap.Logger,
	registry repository.Registry,
	mapping repository.Mapping,
	vlt vault.SourceConfig,
	tenants tenant.Gateway,
	events EventPublisher,
) *Teardown {
	return &Teardown{
		logger:   logger.Named("teardown"),
		tracer:   otel.GetTracerProvider().Tracer("connectors.service.teardown"),
		registry: registry,
		mapping:  mapping,
		vault:    vlt,
		tenants:  tenants,
		events:   events,
	}
}

func (s *Teardown) Deprovision(ctx context.Context, connectorID uuid.UUID) *TeardownReport {
	ctx, span := s.tracer.Start(ctx, "deprovision", trace.WithSpanKind(trace.SpanKindServer))
	defer span.End()
	span.SetAttributes(attribute.String("connector_id", connectorID.String()))

	report := &TeardownReport{}

	c, err := s.registry.Get(ctx, connectorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Already gone, nothing left to remove.
			return report
		}
		report.add("load connector", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return report
	}

	if err := s.mapping.DeleteMapping(ctx, connectorID); err != nil {
		report.add("delete company mapping", err)
	}

	if err := s.vault.Delete(ctx, SourcePath(c.ConnectorType, c.SourceCredentialID)); err != nil {
		report.add("delete vault secret", err)
	}

	if err := s.registry.DeleteConnector(ctx, connectorID); err != nil {
		report.add("delete registry rows", err)
	}

	s.dropIngestionTable(ctx, c, report)

	if report.Ok() {
		s.publish(SubjectConnectorDeprovisioned, ConnectorEvent{
			ConnectorID:   connectorID,
			ConnectorType: c.ConnectorType,
			At:            time.Now().UTC(),
		})
	} else {
		err := report.Err()
		s.logger.Warn("teardown completed with failures",
			zap.String("connector_id", connectorID.String()), zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	return report
}

func (s *Teardown) dropIngestionTable(ctx context.Context, c *model.Connector, report *TeardownReport) {
	tableName, err := tenant.IngestionTableName(c.ConnectorType, c.AccountKey)
	if err != nil {
		report.add("resolve ingestion table", err)
		return
	}

	dest, err := s.tenants.Connect(ctx, c.DestinationCredentialID)
	if err != nil {
		report.add("connect destination database", err)
		return
	}

	if err := dest.DropTable(ctx, tableName); err != nil {
		report.add("drop ingestion table", err)
	}
}

func (s *Teardown) publish(subject string, event ConnectorEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Produce(subject, event); err != nil {
		s.logger.Warn("failed to publish connector event",
			zap.String("subject", subject), zap.Error(err))
	}
}
