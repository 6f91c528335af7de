package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/intellsys-io/intellsys-engine/services/connectors/model"
)

func TestDirectoryCompanyConnectors(t *testing.T) {
	f := newProvisionFixture(t)
	dir := NewDirectory(zap.NewNop(), f.registry, f.mapping)

	req := f.request()
	require.NoError(t, f.svc.Provision(context.Background(), req))

	rows, err := dir.CompanyConnectors(context.Background(), f.companyID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, req.ConnectorID, rows[0].Mapping.ConnectorID)
	require.NotNil(t, rows[0].Registry)
	require.Equal(t, "1234567890", rows[0].Registry.AccountKey)

	rows, err = dir.CompanyConnectors(context.Background(), uuid.New())
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestDirectoryReportsOrphanedMapping(t *testing.T) {
	f := newProvisionFixture(t)
	dir := NewDirectory(zap.NewNop(), f.registry, f.mapping)

	// A mapping row with no registry counterpart, the visible half of an
	// unrepaired partial commit in the other direction.
	orphanID := uuid.New()
	f.mapping.rows[orphanID] = model.CompanyConnectorMapping{
		CompanyID:     f.companyID,
		ConnectorID:   orphanID,
		ConnectorType: model.ConnectorTypeFreshsales,
		DisplayName:   "Freshsales",
	}

	rows, err := dir.CompanyConnectors(context.Background(), f.companyID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Nil(t, rows[0].Registry)
}

func TestDirectoryDestination(t *testing.T) {
	f := newProvisionFixture(t)
	dir := NewDirectory(zap.NewNop(), f.registry, f.mapping)

	m, err := dir.Destination(context.Background(), f.companyID)
	require.NoError(t, err)
	require.Equal(t, f.credID, m.DestinationCredentialID)

	_, err = dir.Destination(context.Background(), uuid.New())
	require.ErrorIs(t, err, ErrDestinationNotConfigured)

	newCompany := uuid.New()
	newCred := uuid.New()
	require.NoError(t, dir.SetDestination(context.Background(), newCompany, newCred))

	m, err = dir.Destination(context.Background(), newCompany)
	require.NoError(t, err)
	require.Equal(t, newCred, m.DestinationCredentialID)
}

func TestDirectoryConnector(t *testing.T) {
	f := newProvisionFixture(t)
	dir := NewDirectory(zap.NewNop(), f.registry, f.mapping)

	req := f.request()
	require.NoError(t, f.svc.Provision(context.Background(), req))

	c, err := dir.Connector(context.Background(), req.ConnectorID)
	require.NoError(t, err)
	require.Equal(t, req.ConnectorID, c.ID)

	_, err = dir.Connector(context.Background(), uuid.New())
	require.ErrorIs(t, err, ErrConnectorNotFound)
}
