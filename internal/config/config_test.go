package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	cfg := fromViper(v)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "local", cfg.Storage.Driver)
	assert.Equal(t, 30, cfg.Auth.ResetTokenTTLMinutes)
	assert.Equal(t, 72, cfg.JWT.ExpireHours)
	assert.Equal(t, "root:@tcp(127.0.0.1:3306)/vidhub?charset=utf8mb4&parseTime=True&loc=Local", cfg.Mysql.GetDSN())
}

func TestDSNOverride(t *testing.T) {
	m := MysqlConfig{DSN: "u:p@tcp(db:3306)/x", Addr: "ignored"}
	assert.Equal(t, "u:p@tcp(db:3306)/x", m.GetDSN())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "s3cret")
	t.Setenv("VIDHUB_SERVER_ADDR", ":9999")

	cfg, err := Load()
	assert.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.JWT.Secret)
	assert.Equal(t, ":9999", cfg.Server.Addr)
}
