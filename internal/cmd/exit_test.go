package cmd

import (
	"errors"
	"fmt"
	"testing"

	gferrors "github.com/fulmenhq/gofulmen/errors"
	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/stretchr/testify/assert"
)

func TestExitCodeFor(t *testing.T) {
	assert.Equal(t, foundry.ExitFailure, ExitCodeFor(errors.New("plain")))

	coded := withExitCode(foundry.ExitFileNotFound, errors.New("missing"))
	assert.Equal(t, foundry.ExitFileNotFound, ExitCodeFor(coded))
	assert.Equal(t, foundry.ExitFileNotFound, ExitCodeFor(fmt.Errorf("wrapped: %w", coded)))

	assert.NoError(t, withExitCode(foundry.ExitFailure, nil))
}

func TestFatalLine(t *testing.T) {
	assert.Equal(t, "FATAL: boom", fatalLine("boom", nil))
	assert.Equal(t, "FATAL: load: missing", fatalLine("load", errors.New("missing")))

	envelope := gferrors.NewErrorEnvelope("CONFIG_INVALID", "bad port")
	assert.Equal(t, "FATAL: load [CONFIG_INVALID]: bad port", fatalLine("load", envelope))
}
