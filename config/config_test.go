package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "DB_DRIVER", "DATABASE_URL", "SESSION_TTL_SECONDS", "LOCK_TIMEOUT", "ADMIN_USERNAMES"} {
		t.Setenv(k, "")
	}

	cfg := Load()

	assert.Equal(t, "3001", cfg.Port)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Contains(t, cfg.DatabaseURL, "dbname=ong_equipment")
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 5*time.Second, cfg.LockTimeout)
	assert.Empty(t, cfg.AdminUsernames)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("SESSION_TTL_SECONDS", "600")
	t.Setenv("LOCK_TIMEOUT", "1500ms")
	t.Setenv("ADMIN_USERNAMES", " Ana@ong.org, ops@ong.org ,")

	cfg := Load()

	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 10*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 1500*time.Millisecond, cfg.LockTimeout)
	assert.Equal(t, []string{"ana@ong.org", "ops@ong.org"}, cfg.AdminUsernames)
	assert.True(t, cfg.IsAdminUsername("ANA@ong.org"))
	assert.False(t, cfg.IsAdminUsername("someone@ong.org"))
}

func TestLoadBadValuesFallBack(t *testing.T) {
	t.Setenv("SESSION_TTL_SECONDS", "soon")
	t.Setenv("LOCK_TIMEOUT", "-1s")

	cfg := Load()

	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 5*time.Second, cfg.LockTimeout)
}
