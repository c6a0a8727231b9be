package integration

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildStandalone compiles the binary and copies it into an empty directory
// so it must run on its embedded app identity.
func buildStandalone(t *testing.T) (binary, workdir string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("standalone binary test is unix-focused")
	}

	goMod, err := exec.Command("go", "env", "GOMOD").Output()
	require.NoError(t, err)
	repoRoot := filepath.Dir(strings.TrimSpace(string(goMod)))

	built := filepath.Join(t.TempDir(), "picoyplaca")
	build := exec.Command("go", "build", "-o", built, "./cmd/picoyplaca")
	build.Dir = repoRoot
	out, err := build.CombinedOutput()
	require.NoError(t, err, string(out))

	workdir = t.TempDir()
	binary = filepath.Join(workdir, "picoyplaca")
	data, err := os.ReadFile(built)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(binary, data, 0o755))
	return binary, workdir
}

func TestStandaloneBinaryOutsideRepo(t *testing.T) {
	binary, workdir := buildStandalone(t)

	run := func(stdin string, args ...string) (string, error) {
		cmd := exec.Command(binary, args...)
		cmd.Dir = workdir
		cmd.Stdin = strings.NewReader(stdin)
		out, err := cmd.CombinedOutput()
		return string(out), err
	}

	t.Run("version and help", func(t *testing.T) {
		out, err := run("", "version")
		require.NoError(t, err, out)
		assert.True(t, strings.HasPrefix(out, "picoyplaca "), out)

		out, err = run("", "--help")
		require.NoError(t, err, out)
		assert.Contains(t, out, "check")
	})

	t.Run("restricted verdict", func(t *testing.T) {
		out, err := run("", "check", "HGF-125", "2016-08-10", "16:00")
		require.NoError(t, err, out)
		assert.Equal(t, "Car IS NOT allowed to be on the road!", strings.TrimSpace(out))
	})

	t.Run("prompted verdict", func(t *testing.T) {
		out, err := run("2016-08-10\n12:00\n", "check", "HGF-121")
		require.NoError(t, err, out)
		assert.Contains(t, out, "Enter date (yyyy-mm-dd): ")
		assert.Contains(t, out, "Car IS allowed to be on the road!")
	})

	t.Run("invalid plate fails", func(t *testing.T) {
		out, err := run("", "check", "SAXC", "2016-08-08", "16:00")
		require.Error(t, err)
		assert.Contains(t, out, "invalid plate")
	})

	t.Run("batch from stdin", func(t *testing.T) {
		cmd := exec.Command(binary, "batch", "-", "--output", "json")
		cmd.Dir = workdir
		cmd.Stdin = strings.NewReader("HGF-121,2016-08-10,12:00\nPBA-9910,2016-08-12,08:15\n")
		raw, err := cmd.Output()
		require.NoError(t, err)
		out := string(raw)

		var result struct {
			Total      int `json:"total"`
			Restricted int `json:"restricted"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &result), out)
		assert.Equal(t, 2, result.Total)
		assert.Equal(t, 1, result.Restricted)
	})
}
