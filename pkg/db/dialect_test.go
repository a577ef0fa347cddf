package db

import (
	"testing"

	"github.com/smallbiznis/billinginsights/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialectSelectsDriver(t *testing.T) {
	cases := map[string]string{
		TypePostgres: "postgres",
		TypeMySQL:    "mysql",
		TypeSQLite:   "sqlite",
	}
	for dbType, want := range cases {
		dialector, err := Dialect(Config{Type: dbType, Host: "localhost", Port: "5432", Name: "analytics"})
		require.NoError(t, err, dbType)
		assert.Equal(t, want, dialector.Name(), dbType)
	}
}

func TestDialectRejectsUnknownType(t *testing.T) {
	_, err := Dialect(Config{Type: "oracle"})
	assert.Error(t, err)
}

func TestFromAppConfig(t *testing.T) {
	cfg := FromAppConfig(config.Config{
		DBType:            " Postgres ",
		DBConnMaxLifetime: 60,
		DBConnMaxIdleTime: 5,
	})

	assert.Equal(t, TypePostgres, cfg.Type)
	assert.Equal(t, float64(60), cfg.ConnMaxLifetime.Seconds())
	assert.Equal(t, float64(5), cfg.ConnMaxIdleTime.Seconds())
}
