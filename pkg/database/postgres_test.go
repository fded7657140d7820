package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/course-backoffice/pkg/config"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{
		Host:     "db",
		Port:     5433,
		User:     "ledger",
		Password: "p@ss word",
		Name:     "course_backoffice",
		SSLMode:  "disable",
	})
	assert.Equal(t, "postgres://ledger:p%40ss%20word@db:5433/course_backoffice?sslmode=disable", dsn)
}

func TestDSNWithoutSSLMode(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "localhost", Port: 5432, User: "u", Password: "p", Name: "x"})
	assert.Equal(t, "postgres://u:p@localhost:5432/x", dsn)
}
