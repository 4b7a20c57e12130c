package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialect(t *testing.T) {
	d, err := Dialect(Config{Type: TypePostgres, Host: "localhost", Port: "5432", Name: "app", User: "app", SSLMode: "disable"})
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Name())

	d, err = Dialect(Config{Type: TypeSQLite})
	require.NoError(t, err)
	assert.Equal(t, "sqlite", d.Name())

	_, err = Dialect(Config{Type: "mysql"})
	assert.EqualError(t, err, "unsupported mysql type")
}
