package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/intellsys-io/intellsys-engine/services/connectors/model"
)

func TestMappingDestinationRoundTrip(t *testing.T) {
	m := NewMappingSQL(newTestDatabase(t))
	companyID := uuid.New()

	_, err := m.GetDestinationCredentialID(context.Background(), companyID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	credID := uuid.New()
	require.NoError(t, m.SetDestination(context.Background(), &model.CompanyDestinationMapping{
		CompanyID:               companyID,
		DestinationCredentialID: credID,
	}))

	got, err := m.GetDestinationCredentialID(context.Background(), companyID)
	require.NoError(t, err)
	require.Equal(t, credID, got)

	// Assigning again replaces the credential instead of conflicting.
	credID2 := uuid.New()
	require.NoError(t, m.SetDestination(context.Background(), &model.CompanyDestinationMapping{
		CompanyID:               companyID,
		DestinationCredentialID: credID2,
	}))

	got, err = m.GetDestinationCredentialID(context.Background(), companyID)
	require.NoError(t, err)
	require.Equal(t, credID2, got)
}

func TestMappingCreateAndList(t *testing.T) {
	m := NewMappingSQL(newTestDatabase(t))
	companyID := uuid.New()

	connectorID := uuid.New()
	tx, err := m.Begin(context.Background())
	require.NoError(t, err)
	require.NoError(t, tx.CreateMapping(&model.CompanyConnectorMapping{
		CompanyID:        companyID,
		ConnectorID:      connectorID,
		ConnectorType:    model.ConnectorTypeGoogleAds,
		DisplayName:      "Google Ads",
		ExtraInformation: []byte(`{"loginCustomerId":"111"}`),
	}))
	require.NoError(t, tx.Commit())

	rows, err := m.ListCompanyConnectors(context.Background(), companyID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, connectorID, rows[0].ConnectorID)

	rows, err = m.ListCompanyConnectors(context.Background(), uuid.New())
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestMappingRollback(t *testing.T) {
	m := NewMappingSQL(newTestDatabase(t))
	companyID := uuid.New()

	tx, err := m.Begin(context.Background())
	require.NoError(t, err)
	require.NoError(t, tx.CreateMapping(&model.CompanyConnectorMapping{
		CompanyID:     companyID,
		ConnectorID:   uuid.New(),
		ConnectorType: model.ConnectorTypeFreshsales,
		DisplayName:   "Freshsales",
	}))
	require.NoError(t, tx.Rollback())

	rows, err := m.ListCompanyConnectors(context.Background(), companyID)
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestMappingDelete(t *testing.T) {
	m := NewMappingSQL(newTestDatabase(t))
	companyID := uuid.New()
	connectorID := uuid.New()

	tx, err := m.Begin(context.Background())
	require.NoError(t, err)
	require.NoError(t, tx.CreateMapping(&model.CompanyConnectorMapping{
		CompanyID:     companyID,
		ConnectorID:   connectorID,
		ConnectorType: model.ConnectorTypeFacebookAds,
		DisplayName:   "Facebook Ads",
	}))
	require.NoError(t, tx.Commit())

	require.NoError(t, m.DeleteMapping(context.Background(), connectorID))

	rows, err := m.ListCompanyConnectors(context.Background(), companyID)
	require.NoError(t, err)
	require.Empty(t, rows)

	// Absent rows delete cleanly.
	require.NoError(t, m.DeleteMapping(context.Background(), connectorID))
}
