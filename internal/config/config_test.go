package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_TYPE", "")
	t.Setenv("QUOTE_DELETE_POLICY", "")
	t.Setenv("SYNC_ON_STARTUP", "")
	t.Setenv("DEFAULT_JURISDICTION", "")

	cfg := Load()
	assert.Equal(t, "sqlite", cfg.DBType)
	assert.Equal(t, DeletePolicyOrphan, cfg.QuoteDeletePolicy)
	assert.True(t, cfg.SyncOnStartup)
	assert.Equal(t, "MA", cfg.DefaultJurisdiction)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_TYPE", "Postgres")
	t.Setenv("QUOTE_DELETE_POLICY", "CASCADE")
	t.Setenv("SYNC_ON_STARTUP", "off")
	t.Setenv("DEFAULT_JURISDICTION", " tx ")
	t.Setenv("SNOWFLAKE_NODE", "7")

	cfg := Load()
	assert.Equal(t, "postgres", cfg.DBType)
	assert.Equal(t, DeletePolicyCascade, cfg.QuoteDeletePolicy)
	assert.False(t, cfg.SyncOnStartup)
	assert.Equal(t, "TX", cfg.DefaultJurisdiction)
	assert.Equal(t, int64(7), cfg.SnowflakeNode)
}

func TestParseDeletePolicy(t *testing.T) {
	tests := []struct {
		raw  string
		want DeletePolicy
	}{
		{"orphan", DeletePolicyOrphan},
		{"cascade", DeletePolicyCascade},
		{"", DeletePolicyOrphan},
		{"purge", DeletePolicyOrphan},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := parseDeletePolicy(tt.raw)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.Valid())
		})
	}
}
