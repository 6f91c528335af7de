package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/intellsys-io/intellsys-engine/services/connectors/model"
	"github.com/intellsys-io/intellsys-engine/services/connectors/repository"
)

// CompanyConnector is a mapping row joined with its registry row. Registry is
// nil when the stores disagree, which the caller surfaces rather than hides.
type CompanyConnector struct {
	Mapping  model.CompanyConnectorMapping
	Registry *model.Connector
}

// Directory answers read queries over the registry and mapping stores and
// manages company destination assignments.
type Directory struct {
	logger   *zap.Logger
	tracer   trace.Tracer
	registry repository.Registry
	mapping  repository.Mapping
}

func NewDirectory(logger *zap.Logger, registry repository.Registry, mapping repository.Mapping) *Directory {
	return &Directory{
		logger:   logger.Named("directory"),
		tracer:   otel.GetTracerProvider().Tracer("connectors.service.directory"),
		registry: registry,
		mapping:  mapping,
	}
}

func (s *Directory) CompanyConnectors(ctx context.Context, companyID uuid.UUID) ([]CompanyConnector, error) {
	ctx, span := s.tracer.Start(ctx, "company-connectors")
	defer span.End()

	mappings, err := s.mapping.ListCompanyConnectors(ctx, companyID)
	if err != nil {
		return nil, &UnreachableError{Dependency: "mapping store", Err: err}
	}
	if len(mappings) == 0 {
		return []CompanyConnector{}, nil
	}

	ids := make([]uuid.UUID, 0, len(mappings))
	for _, m := range mappings {
		ids = append(ids, m.ConnectorID)
	}

	connectors, err := s.registry.ListByIDs(ctx, ids)
	if err != nil {
		return nil, &UnreachableError{Dependency: "registry store", Err: err}
	}

	byID := make(map[uuid.UUID]*model.Connector, len(connectors))
	for i := range connectors {
		byID[connectors[i].ID] = &connectors[i]
	}

	out := make([]CompanyConnector, 0, len(mappings))
	for _, m := range mappings {
		c, ok := byID[m.ConnectorID]
		if !ok {
			s.logger.Warn("mapping row has no registry row",
				zap.String("company_id", companyID.String()),
				zap.String("connector_id", m.ConnectorID.String()))
		}
		out = append(out, CompanyConnector{Mapping: m, Registry: c})
	}

	return out, nil
}

func (s *Directory) Connector(ctx context.Context, connectorID uuid.UUID) (*model.Connector, error) {
	c, err := s.registry.Get(ctx, connectorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConnectorNotFound
		}
		return nil, &UnreachableError{Dependency: "registry store", Err: err}
	}

	return c, nil
}

func (s *Directory) Destination(ctx context.Context, companyID uuid.UUID) (*model.CompanyDestinationMapping, error) {
	m, err := s.mapping.GetDestination(ctx, companyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDestinationNotConfigured
		}
		return nil, &UnreachableError{Dependency: "mapping store", Err: err}
	}

	return m, nil
}

func (s *Directory) SetDestination(ctx context.Context, companyID, destinationCredentialID uuid.UUID) error {
	err := s.mapping.SetDestination(ctx, &model.CompanyDestinationMapping{
		CompanyID:               companyID,
		DestinationCredentialID: destinationCredentialID,
	})
	if err != nil {
		return &UnreachableError{Dependency: "mapping store", Err: err}
	}

	return nil
}
