package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "longest code", mutate: func(c *Config) { c.CodeLength = MaxCodeLength }},
		{name: "zero code length", mutate: func(c *Config) { c.CodeLength = 0 }, wantErr: "code length"},
		{name: "code too long", mutate: func(c *Config) { c.CodeLength = MaxCodeLength + 1 }, wantErr: "code length"},
		{name: "zero code ttl", mutate: func(c *Config) { c.CodeTTL = 0 }, wantErr: "code ttl"},
		{name: "negative code ttl", mutate: func(c *Config) { c.CodeTTL = -time.Minute }, wantErr: "code ttl"},
		{name: "zero min password", mutate: func(c *Config) { c.MinPasswordLength = 0 }, wantErr: "min password length"},
		{name: "min password past bcrypt limit", mutate: func(c *Config) { c.MinPasswordLength = 73 }, wantErr: "min password length"},
		{name: "zero access token ttl", mutate: func(c *Config) { c.AccessTokenValidityDuration = 0 }, wantErr: "access token ttl"},
		{name: "zero reset grant ttl", mutate: func(c *Config) { c.ResetGrantValidityDuration = 0 }, wantErr: "reset grant ttl"},
		{name: "empty secret", mutate: func(c *Config) { c.SecretKey = "" }, wantErr: "secret key"},
		{name: "sweeper disabled", mutate: func(c *Config) { c.SweepInterval = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Config
			c.LoadDefaults()
			tt.mutate(&c)

			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	var c Config
	c.LoadDefaults()
	c.CodeLength = 0
	c.CodeTTL = 0

	err := c.Validate()
	assert.ErrorContains(t, err, "code length")
	assert.ErrorContains(t, err, "code ttl")
}
