// internal/secrets/vault.go
//
// Vault-backed resolution of secret-valued charm options.
//
// Context
// -------
// Operators may set admin_password (or any future secret option) to a
// reference of the form `vault:<mount>/<path>#<key>` instead of a
// literal value.  The loader resolves such references through a
// KV-v2 read before validation runs, so the config core itself stays
// pure and Vault-unaware.
//
// Public workflow
// ---------------
//  1. r, err := secrets.NewVaultResolver()       // during boot.
//  2. val, err := r.Resolve(ctx, ref)            // from the loader.
//
// Environment expectations
// ------------------------
// • VAULT_ADDR   – scheme and host of the Vault server.
// • VAULT_TOKEN  – initial token (falls back to ~/.vault-token).
//
// Notes
// -----
// • Oxford commas, two spaces after periods.

package secrets

import (
	"context"
	"fmt"
	"os"
	"strings"

	vault "github.com/hashicorp/vault/api"
)

// vaultPrefix marks an option value as a secret reference.
const vaultPrefix = "vault:"

// IsRef reports whether an option value is a Vault reference rather
// than a literal secret.
func IsRef(value string) bool { return strings.HasPrefix(value, vaultPrefix) }

// Resolver turns a secret reference into its literal value.  The
// loader accepts any implementation so tests can stub resolution.
type Resolver interface {
	Resolve(ctx context.Context, ref string) (string, error)
}

// VaultResolver resolves references through the HashiCorp Vault KV-v2
// API.  Safe for concurrent use; the zero value is invalid.
type VaultResolver struct {
	api *vault.Client
}

// NewVaultResolver builds a client from the standard VAULT_* environment
// variables.
func NewVaultResolver() (*VaultResolver, error) {
	cfg := vault.DefaultConfig()
	if err := cfg.ReadEnvironment(); err != nil {
		return nil, fmt.Errorf("vault env cfg: %w", err)
	}

	apiCli, err := vault.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("vault api: %w", err)
	}
	if tok := os.Getenv("VAULT_TOKEN"); tok != "" {
		apiCli.SetToken(tok)
	}

	return &VaultResolver{api: apiCli}, nil
}

// Resolve reads one key from a KV-v2 secret named by
// `vault:<mount>/<path>#<key>`.
func (r *VaultResolver) Resolve(ctx context.Context, ref string) (string, error) {
	if !IsRef(ref) {
		return "", fmt.Errorf("not a vault reference: %q", ref)
	}

	body := strings.TrimPrefix(ref, vaultPrefix)
	secretPath, key, ok := strings.Cut(body, "#")
	if !ok || secretPath == "" || key == "" {
		return "", fmt.Errorf("malformed vault reference %q: want vault:<mount>/<path>#<key>", ref)
	}

	mount, rel := splitMount(secretPath)
	sec, err := r.api.KVv2(mount).Get(ctx, rel)
	if err != nil {
		return "", fmt.Errorf("vault get %s: %w", secretPath, err)
	}

	raw, ok := sec.Data[key]
	if !ok {
		return "", fmt.Errorf("key %q not found in secret %q", key, secretPath)
	}
	sval, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("value at %s#%s is not a string", secretPath, key)
	}
	return sval, nil
}

// splitMount separates the KV mount from the path below it.
func splitMount(p string) (mount, rel string) {
	parts := strings.SplitN(p, "/", 2)
	mount = parts[0]
	if len(parts) == 2 {
		rel = parts[1]
	}
	return mount, rel
}
