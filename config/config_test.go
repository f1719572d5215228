package config

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	bcerrors "github.com/nczempin/brandcaptcha-go/errors"
	"github.com/stretchr/testify/require"
)

// mapSource is an in-memory Source for tests.
type mapSource map[string]string

func (m mapSource) Name() string { return "map" }

func (m mapSource) Get(key string) (string, error) {
	if v, ok := m[key]; ok {
		return v, nil
	}
	return "", ErrNotFound
}

func TestEnvSource(t *testing.T) {
	t.Setenv("BRANDCAPTCHA_TEST_VALUE", "from-env")

	src, err := NewEnvSource()
	require.NoError(t, err)
	require.Equal(t, "env", src.Name())

	v, err := src.Get("BRANDCAPTCHA_TEST_VALUE")
	require.NoError(t, err)
	require.Equal(t, "from-env", v)

	_, err = src.Get("BRANDCAPTCHA_TEST_MISSING")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestEnvSource_Dotenv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(file, []byte("BRANDCAPTCHA_TEST_DOTENV=from-file\nBRANDCAPTCHA_TEST_KEPT=from-file\n"), 0o600))

	// Registered with t.Setenv so the value loaded from the file is restored afterwards
	t.Setenv("BRANDCAPTCHA_TEST_DOTENV", "")
	os.Unsetenv("BRANDCAPTCHA_TEST_DOTENV")
	t.Setenv("BRANDCAPTCHA_TEST_KEPT", "from-env")

	src, err := NewEnvSource(file, filepath.Join(dir, "missing.env"))
	require.NoError(t, err)

	v, err := src.Get("BRANDCAPTCHA_TEST_DOTENV")
	require.NoError(t, err)
	require.Equal(t, "from-file", v)

	v, err = src.Get("BRANDCAPTCHA_TEST_KEPT")
	require.NoError(t, err)
	require.Equal(t, "from-env", v, "dotenv must not override the environment")
}

func TestNewSource(t *testing.T) {
	src, err := NewSource("")
	require.NoError(t, err)
	require.Equal(t, "env", src.Name())

	_, err = NewSource("consul")
	require.Error(t, err)

	t.Setenv("VAULT_ADDR", "")
	t.Setenv("VAULT_TOKEN", "")
	_, err = NewSource("vault")
	require.Error(t, err)
}

func TestSourceFromEnv(t *testing.T) {
	t.Setenv(ProviderEnv, "ENV")

	src, err := SourceFromEnv()
	require.NoError(t, err)
	require.Equal(t, "env", src.Name())
}

func newVaultServer(t *testing.T, secrets map[string]string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Vault-Token") != "test-token" {
			w.WriteHeader(http.StatusForbidden)
			return
		}

		key := strings.TrimPrefix(r.URL.Path, "/v1/secret/data/")
		value, ok := secrets[key]
		w.Header().Set("Content-Type", "application/json")
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"errors":[]}`))
			return
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"request_id":     "b4a2f6c1-0000-0000-0000-000000000000",
			"lease_id":       "",
			"renewable":      false,
			"lease_duration": 0,
			"data": map[string]any{
				"data": map[string]any{"value": value},
				"metadata": map[string]any{
					"created_time":    "2024-01-01T00:00:00Z",
					"custom_metadata": nil,
					"deletion_time":   "",
					"destroyed":       false,
					"version":         1,
				},
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestVaultSource(t *testing.T) {
	srv := newVaultServer(t, map[string]string{KeyPrivateKey: "vault-private"})

	src, err := NewVaultSource(srv.URL, "test-token", "")
	require.NoError(t, err)
	require.Equal(t, "vault", src.Name())

	v, err := src.Get(KeyPrivateKey)
	require.NoError(t, err)
	require.Equal(t, "vault-private", v)

	_, err = src.Get(KeyPublicKey)
	require.ErrorIs(t, err, ErrNotFound)

	t.Setenv(KeyPrivateKey, "env-wins")
	v, err = src.Get(KeyPrivateKey)
	require.NoError(t, err)
	require.Equal(t, "env-wins", v)
}

func TestNewVaultSource_RequiresCoordinates(t *testing.T) {
	_, err := NewVaultSource("", "token", "")
	require.Error(t, err)

	_, err = NewVaultSource("http://127.0.0.1:8200", "", "")
	require.Error(t, err)
}

func TestLoad_Defaults(t *testing.T) {
	s, err := Load(mapSource{})
	require.NoError(t, err)
	require.Equal(t, &Settings{
		Host:           "api.ponta.co",
		Port:           80,
		ConnectTimeout: 10 * time.Second,
		RequestTimeout: 30 * time.Second,
		Transport:      TransportTCP,
	}, s)
	require.Len(t, s.ClientOptions(), 4)
}

func TestLoad_Overrides(t *testing.T) {
	s, err := Load(mapSource{
		KeyPublicKey:      "PUB",
		KeyPrivateKey:     "PRIV",
		KeyHost:           "captcha.internal",
		KeyPort:           "8080",
		KeyConnectTimeout: "2s",
		KeyRequestTimeout: "5s",
		KeyTransport:      TransportUnix,
		KeyUnixSocket:     "/run/brandcaptcha.sock",
	})
	require.NoError(t, err)
	require.Equal(t, "PUB", s.PublicKey)
	require.Equal(t, "PRIV", s.PrivateKey)
	require.Equal(t, "captcha.internal", s.Host)
	require.Equal(t, 8080, s.Port)
	require.Equal(t, 2*time.Second, s.ConnectTimeout)
	require.Equal(t, 5*time.Second, s.RequestTimeout)
	require.Len(t, s.ClientOptions(), 5)
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]mapSource{
		"port not a number":   {KeyPort: "eighty"},
		"port out of range":   {KeyPort: "70000"},
		"bad duration":        {KeyConnectTimeout: "soon"},
		"zero duration":       {KeyRequestTimeout: "0s"},
		"unknown transport":   {KeyTransport: "quic"},
		"unix without socket": {KeyTransport: TransportUnix},
		"empty host":          {KeyHost: ""},
	}

	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(src)
			require.True(t, bcerrors.IsConfigurationCode(err, bcerrors.ConfigErrorInvalidSetting), "got %v", err)
		})
	}
}

type failingSource struct{}

func (failingSource) Name() string { return "failing" }

func (failingSource) Get(key string) (string, error) {
	return "", errors.New("backend unavailable")
}

func TestLoad_SourceFailure(t *testing.T) {
	_, err := Load(failingSource{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "backend unavailable")
}

func TestLoad_FirstInvalidKeyReported(t *testing.T) {
	src := mapSource{
		KeyPort:           "eighty",
		KeyConnectTimeout: "soon",
		KeyRequestTimeout: "later",
	}

	for i := 0; i < 20; i++ {
		_, err := Load(src)
		require.ErrorContains(t, err, KeyPort)
	}

	delete(src, KeyPort)
	for i := 0; i < 20; i++ {
		_, err := Load(src)
		require.ErrorContains(t, err, KeyConnectTimeout)
		require.NotContains(t, err.Error(), KeyRequestTimeout)
	}
}
