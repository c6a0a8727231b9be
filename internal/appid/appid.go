// Package appid resolves the application identity (binary name, env prefix,
// config name) from `.fulmen/app.yaml`, falling back to the embedded copy.
package appid

import (
	"context"
	"strings"

	"github.com/fulmenhq/gofulmen/appidentity"

	appidentityassets "github.com/picoyplaca/picoyplaca/internal/assets/appidentity"
)

// Fallbacks used when no identity can be loaded at all.
const (
	FallbackBinaryName = "picoyplaca"
	FallbackEnvPrefix  = "PICOYPLACA_"
)

func init() {
	// FULMEN_APP_IDENTITY_PATH and an on-disk .fulmen/app.yaml still win;
	// the embedded copy only covers standalone binaries.
	_ = appidentity.RegisterEmbeddedIdentityYAML(appidentityassets.YAML)
}

// Get returns the process app identity.
func Get(ctx context.Context) (*appidentity.Identity, error) {
	return appidentity.Get(ctx)
}

// BinaryName returns the identity's binary name or the fallback.
func BinaryName(identity *appidentity.Identity) string {
	if identity == nil || strings.TrimSpace(identity.BinaryName) == "" {
		return FallbackBinaryName
	}
	return identity.BinaryName
}

// EnvPrefix returns the identity's env prefix, always ending in "_".
func EnvPrefix(identity *appidentity.Identity) string {
	prefix := FallbackEnvPrefix
	if identity != nil && strings.TrimSpace(identity.EnvPrefix) != "" {
		prefix = identity.EnvPrefix
	}
	if !strings.HasSuffix(prefix, "_") {
		prefix += "_"
	}
	return prefix
}
