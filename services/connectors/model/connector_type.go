package model

import "fmt"

// ConnectorType identifies the external marketing platform a connector
// ingests from.
type ConnectorType string

const (
	ConnectorTypeGoogleAds       ConnectorType = "GOOGLE_ADS"
	ConnectorTypeGoogleAnalytics ConnectorType = "GOOGLE_ANALYTICS"
	ConnectorTypeFacebookAds     ConnectorType = "FACEBOOK_ADS"
	ConnectorTypeFreshsales      ConnectorType = "FRESHSALES"
)

var AllConnectorTypes = []ConnectorType{
	ConnectorTypeGoogleAds,
	ConnectorTypeGoogleAnalytics,
	ConnectorTypeFacebookAds,
	ConnectorTypeFreshsales,
}

func ParseConnectorType(s string) (ConnectorType, error) {
	for _, t := range AllConnectorTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("invalid connector type: %s", s)
}

func (t ConnectorType) String() string {
	return string(t)
}

// Abbreviation is the prefix of the tenant ingestion table name.
func (t ConnectorType) Abbreviation() string {
	switch t {
	case ConnectorTypeGoogleAds:
		return "gad"
	case ConnectorTypeFacebookAds:
		return "fad"
	case ConnectorTypeGoogleAnalytics:
		return "ga"
	case ConnectorTypeFreshsales:
		return "fsl"
	default:
		return ""
	}
}

// AccountKey is the name of the external account identifier field inside the
// connector's extra information, e.g. loginCustomerId for Google Ads.
func (t ConnectorType) AccountKey() string {
	switch t {
	case ConnectorTypeGoogleAds:
		return "loginCustomerId"
	case ConnectorTypeGoogleAnalytics:
		return "propertyId"
	case ConnectorTypeFacebookAds:
		return "adAccountId"
	case ConnectorTypeFreshsales:
		return "accountId"
	default:
		return ""
	}
}

func (t ConnectorType) DisplayName() string {
	switch t {
	case ConnectorTypeGoogleAds:
		return "Google Ads"
	case ConnectorTypeGoogleAnalytics:
		return "Google Analytics"
	case ConnectorTypeFacebookAds:
		return "Facebook Ads"
	case ConnectorTypeFreshsales:
		return "Freshsales"
	default:
		return string(t)
	}
}

// PlatformPath is the path segment of the ingestion API for this platform.
func (t ConnectorType) PlatformPath() string {
	switch t {
	case ConnectorTypeGoogleAds:
		return "googleads"
	case ConnectorTypeGoogleAnalytics:
		return "googleanalytics"
	case ConnectorTypeFacebookAds:
		return "facebookads"
	case ConnectorTypeFreshsales:
		return "freshsales"
	default:
		return ""
	}
}

// SubConnectorTableType is the registry id of the connector's primary
// ingestion table kind.
func (t ConnectorType) SubConnectorTableType() string {
	switch t {
	case ConnectorTypeGoogleAds:
		return "4cf54b5c-66eb-4eeb-9a84-71dc42635c13"
	case ConnectorTypeFacebookAds:
		return "169fbcec-811a-4e27-9ace-9087ee8cf3d5"
	case ConnectorTypeGoogleAnalytics:
		return "c9d5f4f9-630b-4e89-a886-23a6271d54c9"
	case ConnectorTypeFreshsales:
		return "d56fd051-ae14-40b4-ab4b-ec449738d2ff"
	default:
		return ""
	}
}
