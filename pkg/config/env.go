package config

import (
	"strings"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ReadFromEnv fills cfg from environment variables. Nested struct fields are
// addressed with a double underscore, e.g. REGISTRY__HOST -> Registry.Host.
// defaultValues, when non-nil, is applied before the environment is read.
func ReadFromEnv(cfg any, defaultValues any) error {
	k := koanf.New(".")

	if defaultValues != nil {
		if err := k.Load(structs.Provider(defaultValues, "koanf"), nil); err != nil {
			return err
		}
	}

	if err := k.Load(env.Provider("", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(s), "__", ".")
	}), nil); err != nil {
		return err
	}

	return k.Unmarshal("", cfg)
}
