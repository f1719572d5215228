package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	vault "github.com/hashicorp/vault/api"
	"github.com/joho/godotenv"
)

// ErrNotFound is returned by a Source that has no value for a key.
var ErrNotFound = errors.New("config value not found")

// ProviderEnv selects the Source implementation.
const ProviderEnv = "BRANDCAPTCHA_CONFIG_PROVIDER"

// Source describes a backend that can provide configuration values.
type Source interface {
	Get(key string) (string, error)
	Name() string
}

// EnvSource loads values from environment variables (.env in dev).
type EnvSource struct{}

// NewEnvSource loads every existing dotenv file into the environment, without
// overriding variables that are already set, and returns an EnvSource.
func NewEnvSource(dotenvFiles ...string) (*EnvSource, error) {
	for _, file := range dotenvFiles {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}
	}
	return &EnvSource{}, nil
}

func (e *EnvSource) Name() string {
	return "env"
}

func (e *EnvSource) Get(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("env %s: %w", key, ErrNotFound)
	}
	return val, nil
}

// VaultSource fetches values from a HashiCorp Vault KV v2 backend. Each key is
// a secret path holding its value in a "value" field.
type VaultSource struct {
	client    *vault.Client
	mountPath string
}

// NewVaultSource connects to Vault at addr. An empty mount defaults to "secret".
func NewVaultSource(addr, token, mount string) (*VaultSource, error) {
	if mount == "" {
		mount = "secret"
	}
	if addr == "" || token == "" {
		return nil, fmt.Errorf("vault config requires VAULT_ADDR and VAULT_TOKEN")
	}

	cfg := vault.DefaultConfig()
	cfg.Address = addr
	client, err := vault.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("vault client init error: %w", err)
	}
	client.SetToken(token)

	return &VaultSource{
		client:    client,
		mountPath: mount,
	}, nil
}

func (v *VaultSource) Name() string {
	return "vault"
}

// Get tries environment variables first, then reads "<mount>/data/<key>".
func (v *VaultSource) Get(key string) (string, error) {
	if val := os.Getenv(key); val != "" {
		return val, nil
	}

	secret, err := v.client.KVv2(v.mountPath).Get(context.Background(), key)
	if err != nil {
		if errors.Is(err, vault.ErrSecretNotFound) {
			return "", fmt.Errorf("vault %s: %w", key, ErrNotFound)
		}
		return "", fmt.Errorf("vault read error: %w", err)
	}
	if val, ok := secret.Data["value"].(string); ok && val != "" {
		return val, nil
	}
	return "", fmt.Errorf("no 'value' field in vault secret %s: %w", key, ErrNotFound)
}

// NewSource loads the dotenv files and builds the Source named by provider
// ("env" or "vault").
func NewSource(provider string, dotenvFiles ...string) (Source, error) {
	env, err := NewEnvSource(dotenvFiles...)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "", "env":
		return env, nil
	case "vault":
		v, err := NewVaultSource(os.Getenv("VAULT_ADDR"), os.Getenv("VAULT_TOKEN"), os.Getenv("VAULT_PATH"))
		if err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, fmt.Errorf("unknown config provider: %s", provider)
	}
}

// SourceFromEnv builds the Source selected by BRANDCAPTCHA_CONFIG_PROVIDER,
// which may itself come from one of the dotenv files.
func SourceFromEnv(dotenvFiles ...string) (Source, error) {
	if _, err := NewEnvSource(dotenvFiles...); err != nil {
		return nil, err
	}
	return NewSource(os.Getenv(ProviderEnv))
}
