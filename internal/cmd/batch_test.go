package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/picoyplaca/picoyplaca/internal/core"
)

const batchInput = `# plate,date,time
HGF-121,2016-08-10,12:00
HGF-125,2016-08-10,16:00
PBA-9910,2016-08-12,08:15
SAXC,2016-08-08,16:00
`

func writeBatchFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "queries.csv")
	require.NoError(t, os.WriteFile(path, []byte(batchInput), 0o600))
	return path
}

func TestBatchJSON(t *testing.T) {
	out, err := runCommand(t, batchCmd, runBatch, map[string]string{"output": "json"}, "", writeBatchFile(t))
	require.NoError(t, err)

	var result core.BatchResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 4, result.Total)
	assert.Equal(t, 1, result.Permitted)
	assert.Equal(t, 2, result.Restricted)
	assert.Equal(t, 1, result.Failed)
}

func TestBatchFromStdinAsTable(t *testing.T) {
	out, err := runCommand(t, batchCmd, runBatch, nil, batchInput, "-")
	require.NoError(t, err)
	assert.Contains(t, out, "HGF-125")
	assert.Contains(t, out, "NOT allowed")
	assert.Contains(t, out, "1 allowed, 2 not allowed, 1 failed")
}

func TestBatchRestrictedOnly(t *testing.T) {
	out, err := runCommand(t, batchCmd, runBatch, map[string]string{"output": "json", "restricted-only": "true"}, "", writeBatchFile(t))
	require.NoError(t, err)

	var result core.BatchResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 2, result.Total)
	for _, entry := range result.Entries {
		assert.Equal(t, core.OutcomeRestricted, entry.Outcome)
	}
}

func TestBatchStrictFailsOnInvalidQueries(t *testing.T) {
	_, err := runCommand(t, batchCmd, runBatch, map[string]string{"output": "text", "strict": "true"}, "", writeBatchFile(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 4")
}

func TestBatchTextNamesPlateForSingleRestrictedEntry(t *testing.T) {
	input := "HGF-121,2016-08-10,12:00\nHGF-125,2016-08-10,16:00\n"
	out, err := runCommand(t, batchCmd, runBatch, map[string]string{"output": "text", "restricted-only": "true"}, input, "-")
	require.NoError(t, err)
	assert.Equal(t, "HGF-125 2016-08-10 16:00: Car IS NOT allowed to be on the road!\n", out)
}
