package tenant

import (
	"fmt"
	"regexp"

	"github.com/intellsys-io/intellsys-engine/services/connectors/model"
)

// Table names reach DDL as identifiers and cannot be parameterized, so every
// part is allow-listed before interpolation.
var identifierPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

const maxIdentifierLen = 63

// IngestionTableName derives the destination table name for one external
// account, {abbreviation}_{accountKey}.
func IngestionTableName(t model.ConnectorType, accountKey string) (string, error) {
	abbr := t.Abbreviation()
	if abbr == "" {
		return "", fmt.Errorf("connector type %s has no table abbreviation", t)
	}
	if accountKey == "" {
		return "", fmt.Errorf("empty account key")
	}

	name := fmt.Sprintf("%s_%s", abbr, accountKey)
	if err := validateIdentifier(name); err != nil {
		return "", err
	}

	return name, nil
}

func validateIdentifier(name string) error {
	if len(name) == 0 || len(name) > maxIdentifierLen {
		return fmt.Errorf("invalid identifier length: %q", name)
	}
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("invalid identifier: %q", name)
	}

	return nil
}
