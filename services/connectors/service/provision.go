package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/intellsys-io/intellsys-engine/pkg/vault"
	"github.com/intellsys-io/intellsys-engine/services/connectors/ingest"
	"github.com/intellsys-io/intellsys-engine/services/connectors/model"
	"github.com/intellsys-io/intellsys-engine/services/connectors/repository"
	"github.com/intellsys-io/intellsys-engine/services/connectors/tenant"
)

const DefaultBackfillDays = 45

// SourcePath is the vault location of a connector's platform credential.
func SourcePath(t model.ConnectorType, credentialID uuid.UUID) string {
	return fmt.Sprintf("sources/%s/%s", t.PlatformPath(), credentialID)
}

type ProvisionRequest struct {
	CompanyID        uuid.UUID
	ConnectorID      uuid.UUID
	ConnectorType    model.ConnectorType
	DisplayName      string
	Credentials      model.SourceCredentials
	ExtraInformation map[string]string
}

// Provisioning runs the connector provisioning saga: vault secret, registry
// rows and company mapping in two independent store transactions, then the
// destination ingestion table and the backfill trigger.
type Provisioning struct {
	logger       *zap.Logger
	tracer       trace.Tracer
	registry     repository.Registry
	mapping      repository.Mapping
	vault        vault.SourceConfig
	tenants      tenant.Gateway
	ingest       ingest.Client
	events       EventPublisher
	backfillDays int
}

func NewProvisioning(
	logger *zap.Logger,
	registry repository.Registry,
	mapping repository.Mapping,
	vlt vault.SourceConfig,
	tenants tenant.Gateway,
	ingestClient ingest.Client,
	events EventPublisher,
	backfillDays int,
) *Provisioning {
	if backfillDays <= 0 {
		backfillDays = DefaultBackfillDays
	}

	return &Provisioning{
		logger:       logger.Named("provisioning"),
		tracer:       otel.GetTracerProvider().Tracer("connectors.service.provisioning"),
		registry:     registry,
		mapping:      mapping,
		vault:        vlt,
		tenants:      tenants,
		ingest:       ingestClient,
		events:       events,
		backfillDays: backfillDays,
	}
}

func (s *Provisioning) Provision(ctx context.Context, req ProvisionRequest) error {
	ctx, span := s.tracer.Start(ctx, "provision", trace.WithSpanKind(trace.SpanKindServer))
	defer span.End()
	span.SetAttributes(
		attribute.String("connector_id", req.ConnectorID.String()),
		attribute.String("connector_type", req.ConnectorType.String()),
	)

	if err := s.provision(ctx, req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}

func (s *Provisioning) provision(ctx context.Context, req ProvisionRequest) error {
	sourceCredentialID := uuid.New()
	secretPath := SourcePath(req.ConnectorType, sourceCredentialID)

	destinationCredentialID, err := s.mapping.GetDestinationCredentialID(ctx, req.CompanyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDestinationNotConfigured
		}
		return &UnreachableError{Dependency: "mapping store", Err: err}
	}

	dest, err := s.tenants.Connect(ctx, destinationCredentialID)
	if err != nil {
		return &UnreachableError{Dependency: "destination database", Err: err}
	}

	tableName, err := tenant.IngestionTableName(req.ConnectorType, req.Credentials.AccountID)
	if err != nil {
		return err
	}

	// Fast-path duplicate guard. The unique index on
	// (connector_type, account_key) is the authoritative check at insert.
	exists, err := s.registry.AccountExists(ctx, req.ConnectorType, req.Credentials.AccountID)
	if err != nil {
		return &UnreachableError{Dependency: "registry store", Err: err}
	}
	if exists {
		return ErrDuplicateConnector
	}

	tableExists, err := dest.TableExists(ctx, tableName)
	if err != nil {
		return &UnreachableError{Dependency: "destination database", Err: err}
	}
	if tableExists {
		return ErrDuplicateConnector
	}

	secret := req.Credentials.AsMap(req.ConnectorType)
	secret["label"] = fmt.Sprintf("%s - %s", req.CompanyID, req.ConnectorType.DisplayName())
	if err := s.vault.Write(ctx, secretPath, secret); err != nil {
		return &UnreachableError{Dependency: "vault", Err: err}
	}

	if err := s.writeStores(ctx, req, sourceCredentialID, destinationCredentialID, secretPath); err != nil {
		return err
	}

	s.publish(SubjectConnectorProvisioned, ConnectorEvent{
		ConnectorID:   req.ConnectorID,
		CompanyID:     req.CompanyID,
		ConnectorType: req.ConnectorType,
		At:            time.Now().UTC(),
	})

	if err := dest.CreateIngestionTable(ctx, tableName); err != nil {
		return &TableLifecycleError{Table: tableName, Op: "create", Err: err}
	}

	if err := s.ingest.TriggerHistorical(ctx, req.ConnectorType, req.ConnectorID, s.backfillDays); err != nil {
		return &IngestTriggerError{ConnectorID: req.ConnectorID, Err: err}
	}

	return nil
}

// writeStores opens one transaction per store and either commits both or
// compensates. Commits are not atomic across the stores; the mapping commit
// failing after the registry commit is repaired by a reversing delete, and
// a failed reversal surfaces as PartialCommitError.
func (s *Provisioning) writeStores(
	ctx context.Context,
	req ProvisionRequest,
	sourceCredentialID, destinationCredentialID uuid.UUID,
	secretPath string,
) error {
	regTx, err := s.registry.Begin(ctx)
	if err != nil {
		s.deleteSecret(ctx, secretPath)
		return &UnreachableError{Dependency: "registry store", Err: err}
	}

	mapTx, err := s.mapping.Begin(ctx)
	if err != nil {
		_ = regTx.Rollback()
		s.deleteSecret(ctx, secretPath)
		return &UnreachableError{Dependency: "mapping store", Err: err}
	}

	if err := regTx.LockConnector(req.ConnectorID); err != nil {
		_ = regTx.Rollback()
		_ = mapTx.Rollback()
		s.deleteSecret(ctx, secretPath)
		return fmt.Errorf("lock connector: %w", err)
	}

	extra, err := extraInformationJSON(req)
	if err != nil {
		_ = regTx.Rollback()
		_ = mapTx.Rollback()
		s.deleteSecret(ctx, secretPath)
		return err
	}

	displayName := req.DisplayName
	if displayName == "" {
		displayName = req.ConnectorType.DisplayName()
	}

	regErr := regTx.CreateConnector(&model.Connector{
		ID:                      req.ConnectorID,
		Name:                    displayName,
		ConnectorType:           req.ConnectorType,
		AccountKey:              req.Credentials.AccountID,
		SourceCredentialID:      sourceCredentialID,
		DestinationCredentialID: destinationCredentialID,
		ExtraInformation:        extra,
	})
	if regErr == nil {
		regErr = regTx.CreateSubConnector(&model.SubConnector{
			ID:          uuid.New(),
			ConnectorID: req.ConnectorID,
			TableType:   uuid.MustParse(req.ConnectorType.SubConnectorTableType()),
			Name:        displayName,
		})
	}

	mapErr := mapTx.CreateMapping(&model.CompanyConnectorMapping{
		CompanyID:        req.CompanyID,
		ConnectorID:      req.ConnectorID,
		ConnectorType:    req.ConnectorType,
		DisplayName:      displayName,
		ExtraInformation: extra,
	})

	if regErr != nil || mapErr != nil {
		_ = regTx.Rollback()
		_ = mapTx.Rollback()
		s.deleteSecret(ctx, secretPath)

		err := regErr
		if err == nil {
			err = mapErr
		}
		if errors.Is(err, repository.ErrDuplicateAccount) {
			return ErrDuplicateConnector
		}
		return fmt.Errorf("write connector stores: %w", err)
	}

	if err := regTx.Commit(); err != nil {
		_ = mapTx.Rollback()
		s.deleteSecret(ctx, secretPath)
		return fmt.Errorf("commit registry store: %w", err)
	}

	if err := mapTx.Commit(); err != nil {
		if revErr := s.registry.DeleteConnector(ctx, req.ConnectorID); revErr != nil {
			pce := &PartialCommitError{
				ConnectorID:    req.ConnectorID,
				CommittedStore: "registry store",
				FailedStore:    "mapping store",
				CommitErr:      err,
				ReversalErr:    revErr,
			}
			s.logger.Error("PARTIAL COMMIT: stores disagree and reversal failed, operator intervention required",
				zap.String("connector_id", req.ConnectorID.String()),
				zap.NamedError("commit_error", err),
				zap.NamedError("reversal_error", revErr),
			)
			return pce
		}

		s.deleteSecret(ctx, secretPath)
		return fmt.Errorf("commit mapping store: %w", err)
	}

	return nil
}

// RetryIngestionTable re-runs only the destination-table step for an already
// registered connector. Safe to call any number of times.
func (s *Provisioning) RetryIngestionTable(ctx context.Context, connectorID uuid.UUID) error {
	ctx, span := s.tracer.Start(ctx, "retry-ingestion-table")
	defer span.End()

	c, err := s.getConnector(ctx, connectorID)
	if err != nil {
		return err
	}

	dest, err := s.tenants.Connect(ctx, c.DestinationCredentialID)
	if err != nil {
		return &UnreachableError{Dependency: "destination database", Err: err}
	}

	tableName, err := tenant.IngestionTableName(c.ConnectorType, c.AccountKey)
	if err != nil {
		return err
	}

	if err := dest.CreateIngestionTable(ctx, tableName); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return &TableLifecycleError{Table: tableName, Op: "create", Err: err}
	}

	return nil
}

// RetryIngestion re-fires the historical backfill trigger.
func (s *Provisioning) RetryIngestion(ctx context.Context, connectorID uuid.UUID, durationDays int) error {
	ctx, span := s.tracer.Start(ctx, "retry-ingestion")
	defer span.End()

	c, err := s.getConnector(ctx, connectorID)
	if err != nil {
		return err
	}

	if durationDays <= 0 {
		durationDays = s.backfillDays
	}

	if err := s.ingest.TriggerHistorical(ctx, c.ConnectorType, c.ID, durationDays); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return &IngestTriggerError{ConnectorID: c.ID, Err: err}
	}

	return nil
}

func (s *Provisioning) getConnector(ctx context.Context, connectorID uuid.UUID) (*model.Connector, error) {
	c, err := s.registry.Get(ctx, connectorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConnectorNotFound
		}
		return nil, &UnreachableError{Dependency: "registry store", Err: err}
	}

	return c, nil
}

func (s *Provisioning) deleteSecret(ctx context.Context, secretPath string) {
	if err := s.vault.Delete(ctx, secretPath); err != nil {
		s.logger.Warn("failed to delete vault secret during compensation",
			zap.String("path", secretPath), zap.Error(err))
	}
}

func (s *Provisioning) publish(subject string, event ConnectorEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Produce(subject, event); err != nil {
		s.logger.Warn("failed to publish connector event",
			zap.String("subject", subject), zap.Error(err))
	}
}

func extraInformationJSON(req ProvisionRequest) ([]byte, error) {
	extra := map[string]string{
		req.ConnectorType.AccountKey(): req.Credentials.AccountID,
	}
	for k, v := range req.ExtraInformation {
		extra[k] = v
	}

	b, err := json.Marshal(extra)
	if err != nil {
		return nil, fmt.Errorf("marshal extra information: %w", err)
	}

	return b, nil
}
