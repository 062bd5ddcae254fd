package config

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCredentialsPlainJSON(t *testing.T) {
	access, secret, err := parseCredentials(`{"access_key":"AKIA123","secret_key":"s3cret"}`)
	require.NoError(t, err)
	assert.Equal(t, "AKIA123", access)
	assert.Equal(t, "s3cret", secret)
}

func TestParseCredentialsBase64(t *testing.T) {
	raw := base64.StdEncoding.EncodeToString([]byte(`{"access_key":"AKIA123","secret_key":"s3cret"}`))
	access, secret, err := parseCredentials(raw)
	require.NoError(t, err)
	assert.Equal(t, "AKIA123", access)
	assert.Equal(t, "s3cret", secret)
}

func TestParseCredentialsInvalid(t *testing.T) {
	for _, raw := range []string{
		"not base64 at all!!!",
		base64.StdEncoding.EncodeToString([]byte("not json")),
		`{"access_key":"only-half"}`,
		`{}`,
	} {
		_, _, err := parseCredentials(raw)
		assert.Error(t, err, raw)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "postgres", cfg.StoreBackend)
	assert.Equal(t, "local", cfg.BlobBackend)
	assert.Equal(t, 20, cfg.PageSize)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes)
	assert.Equal(t, "admin", cfg.AdminUsername)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORE_BACKEND", "mongo")
	t.Setenv("BLOB_BACKEND", "minio")
	t.Setenv("PAGE_SIZE", "50")
	t.Setenv("MINIO_CREDENTIALS", `{"access_key":"AK","secret_key":"SK"}`)

	cfg := Load()
	assert.Equal(t, "mongo", cfg.StoreBackend)
	assert.Equal(t, "minio", cfg.BlobBackend)
	assert.Equal(t, 50, cfg.PageSize)
	assert.Equal(t, "AK", cfg.MinioAccessKey)
	assert.Equal(t, "SK", cfg.MinioSecretKey)
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("N", "abc")
	assert.Equal(t, 7, getEnvInt("N", 7))
	t.Setenv("N", "-3")
	assert.Equal(t, 7, getEnvInt("N", 7))
	t.Setenv("N", "12")
	assert.Equal(t, 12, getEnvInt("N", 7))
}
