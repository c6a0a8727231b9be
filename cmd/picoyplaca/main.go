package main

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"

	"github.com/picoyplaca/picoyplaca/internal/cmd"
	"github.com/picoyplaca/picoyplaca/internal/server/handlers"
)

// Version information set via ldflags during build
// Example: go build -ldflags="-X main.version=1.0.0 -X main.commit=abc123 -X main.buildDate=2026-10-16"
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	// A .env in the working directory seeds PICOYPLACA_* variables without
	// overriding ones already set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		cmd.ExitWithCodeStderr(cmd.ExitCodeFor(err), "Failed to load .env", err)
	}

	cmd.SetVersionInfo(version, commit, buildDate)
	handlers.SetVersionInfo(version, commit, buildDate)

	if err := cmd.Execute(); err != nil {
		cmd.ExitWithCodeStderr(cmd.ExitCodeFor(err), "Command execution failed", err)
	}
}
