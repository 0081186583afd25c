package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDatabaseDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db.internal",
		Port:     5432,
		Name:     "payment",
		User:     "payment",
		Password: "secret",
		SSLMode:  "require",
	}
	assert.Equal(t,
		"host=db.internal port=5432 user=payment password=secret dbname=payment sslmode=require",
		cfg.DSN())
}

func TestDatabaseDSNDefaultsSSLModeOff(t *testing.T) {
	cfg := DatabaseConfig{Host: "localhost", Port: 5432, Name: "payment", User: "payment", Password: "payment"}
	assert.Contains(t, cfg.DSN(), "sslmode=disable")
}
