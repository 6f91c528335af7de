package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestParseConnectorType(t *testing.T) {
	for _, ct := range AllConnectorTypes {
		parsed, err := ParseConnectorType(string(ct))
		require.NoError(t, err)
		require.Equal(t, ct, parsed)
	}

	_, err := ParseConnectorType("TWITTER_ADS")
	require.Error(t, err)

	_, err = ParseConnectorType("google_ads")
	require.Error(t, err, "parsing is case sensitive")
}

func TestConnectorTypeAbbreviation(t *testing.T) {
	require.Equal(t, "gad", ConnectorTypeGoogleAds.Abbreviation())
	require.Equal(t, "fad", ConnectorTypeFacebookAds.Abbreviation())
	require.Equal(t, "ga", ConnectorTypeGoogleAnalytics.Abbreviation())
	require.Equal(t, "fsl", ConnectorTypeFreshsales.Abbreviation())
}

func TestConnectorTypeAccountKey(t *testing.T) {
	require.Equal(t, "loginCustomerId", ConnectorTypeGoogleAds.AccountKey())
	require.Equal(t, "propertyId", ConnectorTypeGoogleAnalytics.AccountKey())
	require.Equal(t, "adAccountId", ConnectorTypeFacebookAds.AccountKey())
	require.Equal(t, "accountId", ConnectorTypeFreshsales.AccountKey())
}

func TestSubConnectorTableTypeIsValidUUID(t *testing.T) {
	for _, ct := range AllConnectorTypes {
		_, err := uuid.Parse(ct.SubConnectorTableType())
		require.NoError(t, err, "table type for %s", ct)
	}
}

func TestSourceCredentialsAsMap(t *testing.T) {
	creds := SourceCredentials{
		RefreshToken: "tok",
		AccountID:    "123-456",
		Extra:        map[string]string{"managerId": "789"},
	}

	m := creds.AsMap(ConnectorTypeGoogleAds)
	require.Equal(t, "tok", m["refreshToken"])
	require.Equal(t, "123-456", m["loginCustomerId"])
	require.Equal(t, "789", m["managerId"])
}
