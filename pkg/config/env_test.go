package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Str      string
	Int      int
	Registry Postgres
}

func TestReadFromEnv(t *testing.T) {
	t.Setenv("STR", "temp")
	t.Setenv("INT", "1")
	t.Setenv("REGISTRY__HOST", "db.local")
	t.Setenv("REGISTRY__PORT", "5432")

	var c testConfig
	require.NoError(t, ReadFromEnv(&c, nil))

	require.Equal(t, "temp", c.Str)
	require.Equal(t, 1, c.Int)
	require.Equal(t, "db.local", c.Registry.Host)
	require.Equal(t, "5432", c.Registry.Port)
}
