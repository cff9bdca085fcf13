package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"microstore/internal/config"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(values map[string]interface{}) *viper.Viper {
	v := viper.New()
	config.SetDefaults(v)
	for k, val := range values {
		v.Set(k, val)
	}
	return v
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(newViper(nil))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.AppPort)
	assert.Equal(t, "http://localhost:8080", cfg.PublicOrigin)
	assert.Equal(t, config.DriverSQLite, cfg.StoreDriver)
	assert.Equal(t, "microstore.db", cfg.DatabaseDSN)
	assert.Equal(t, 10*time.Second, cfg.DatastoreTimeout)
	assert.False(t, cfg.RejectSlugCollisions)
	assert.Empty(t, cfg.RabbitMQURL)
	assert.False(t, cfg.ConsumeStoreEvents)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := config.Load(newViper(map[string]interface{}{
		"APP_PORT":               ":9090",
		"PUBLIC_ORIGIN":          "https://shop.example/",
		"STORE_DRIVER":           "Postgres",
		"DATABASE_DSN":           "host=db user=app",
		"DATASTORE_TIMEOUT":      "3s",
		"REJECT_SLUG_COLLISIONS": "true",
		"RABBITMQ_URL":           "amqp://guest:guest@mq:5672/",
		"CONSUME_STORE_EVENTS":   "true",
	}))
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.AppPort)
	assert.Equal(t, "https://shop.example", cfg.PublicOrigin)
	assert.Equal(t, config.DriverPostgres, cfg.StoreDriver)
	assert.Equal(t, "host=db user=app", cfg.DatabaseDSN)
	assert.Equal(t, 3*time.Second, cfg.DatastoreTimeout)
	assert.True(t, cfg.RejectSlugCollisions)
	assert.Equal(t, "amqp://guest:guest@mq:5672/", cfg.RabbitMQURL)
	assert.True(t, cfg.ConsumeStoreEvents)
}

func TestLoad_MissingRequiredKeys(t *testing.T) {
	_, err := config.Load(newViper(map[string]interface{}{"STORE_DRIVER": "mongo"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MONGODB_URI")
	assert.Contains(t, err.Error(), "MONGODB_DATABASE")

	_, err = config.Load(newViper(map[string]interface{}{"STORE_DRIVER": "postgres"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_DSN")

	_, err = config.Load(newViper(map[string]interface{}{"PUBLIC_ORIGIN": ""}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PUBLIC_ORIGIN")
}

func TestLoad_UnknownDriver(t *testing.T) {
	_, err := config.Load(newViper(map[string]interface{}{"STORE_DRIVER": "firestore"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "firestore")
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("MICROSTORE_TEST_ORIGIN=https://from-dotenv.example\n"), 0o600))
	t.Setenv("MICROSTORE_TEST_ORIGIN", "")
	os.Unsetenv("MICROSTORE_TEST_ORIGIN")

	config.LoadDotEnv(filepath.Join(dir, "missing.env"), path)
	assert.Equal(t, "https://from-dotenv.example", os.Getenv("MICROSTORE_TEST_ORIGIN"))
}
