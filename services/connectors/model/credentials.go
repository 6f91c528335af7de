package model

// SourceCredentials is the opaque platform credential blob handed to the
// vault. The saga never inspects the secret beyond extracting AccountID.
type SourceCredentials struct {
	RefreshToken string
	AccountID    string
	Extra        map[string]string
}

// AsMap renders the credentials for vault storage, keying the account
// identifier under the platform's account-key name.
func (c SourceCredentials) AsMap(t ConnectorType) map[string]any {
	m := map[string]any{
		"refreshToken": c.RefreshToken,
		t.AccountKey(): c.AccountID,
	}
	for k, v := range c.Extra {
		m[k] = v
	}
	return m
}
