package cmd

import (
	"context"
	"strings"
	"testing"

	"github.com/picoyplaca/picoyplaca/internal/appid"
)

func TestAppIdentityLoading(t *testing.T) {
	identity, err := appid.Get(context.Background())
	if err != nil {
		t.Fatalf("Failed to load app identity: %v", err)
	}
	if identity == nil {
		t.Fatal("App identity is nil")
	}

	expectedFields := map[string]string{
		"Vendor":     identity.Vendor,
		"BinaryName": identity.BinaryName,
		"EnvPrefix":  identity.EnvPrefix,
		"ConfigName": identity.ConfigName,
	}
	for fieldName, value := range expectedFields {
		if value == "" {
			t.Errorf("App identity field %s is empty", fieldName)
		}
	}

	if identity.BinaryName != "picoyplaca" {
		t.Errorf("Expected binary name picoyplaca, got '%s'", identity.BinaryName)
	}
	if !strings.HasSuffix(identity.EnvPrefix, "_") {
		t.Errorf("Expected env_prefix to end with underscore, got '%s'", identity.EnvPrefix)
	}
}

func TestApplyIdentityUpdatesRootHelp(t *testing.T) {
	identity, err := appid.Get(context.Background())
	if err != nil {
		t.Fatalf("Failed to load app identity: %v", err)
	}
	applyIdentity(identity)

	if rootCmd.Use != "picoyplaca" {
		t.Errorf("Expected root command use picoyplaca, got '%s'", rootCmd.Use)
	}
	if !strings.Contains(rootCmd.Long, identity.Description) {
		t.Errorf("Expected long help to include the description")
	}
}
