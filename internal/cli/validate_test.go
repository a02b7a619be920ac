package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/domq/internal/compiler"
)

const saleCUE = `package models

model: "sale.sale": {
	fields: {
		party: {label: "Party", type: "many2one", relation: "party.party"}
	}
}
`

func writeCUE(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "models.cue"), []byte(content), 0o644))
	return dir
}

func TestValidateModels(t *testing.T) {
	stdout, _, code := execute(t, "validate", partyModels)
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout, "party.party (3 fields)")
	assert.Contains(t, stdout, "company.company (2 fields)")
	assert.Contains(t, stdout, "✓ All field definitions valid")
}

func TestValidateFieldFile(t *testing.T) {
	stdout, _, code := execute(t, "validate", partyFields)
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout, "party.yaml (7 fields)")
}

func TestValidateDefaultsToFields(t *testing.T) {
	stdout, _, code := execute(t, "validate", "--fields", partyFields)
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout, "party.yaml")

	t.Setenv("DOMQ_FIELDS", "")
	_, stderr, code := execute(t, "validate")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, "Error [E100]")
}

func TestValidateInvalidModels(t *testing.T) {
	stdout, _, code := execute(t, "validate", filepath.Join("..", "compiler", "testdata", "invalid"))
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stdout, "✗ Validation failed")
	assert.Contains(t, stdout, compiler.ErrSelectionNoChoices)
}

func TestValidateInvalidModelsJSON(t *testing.T) {
	stdout, _, code := execute(t, "validate", "--format", "json", filepath.Join("..", "compiler", "testdata", "invalid"))
	assert.Equal(t, ExitFailure, code)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
		Error  *CLIError        `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.False(t, resp.Data.Valid)
	require.Len(t, resp.Data.Errors, 1)
	assert.Equal(t, compiler.ErrSelectionNoChoices, resp.Data.Errors[0].Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, compiler.ErrSelectionNoChoices, resp.Error.Code)
}

func TestValidateClosedRelations(t *testing.T) {
	dir := writeCUE(t, saleCUE)

	_, _, code := execute(t, "validate", dir)
	assert.Equal(t, ExitSuccess, code)

	stdout, _, code := execute(t, "validate", "--closed", dir)
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stdout, compiler.ErrUnknownRelation)
}

func TestValidateLoadErrors(t *testing.T) {
	_, stderr, code := execute(t, "validate", t.TempDir())
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, "E003")

	dir := writeCUE(t, "package models\n\nmodel: bad: fields: x: {type: \"blob\"}\n")
	_, stderr, code = execute(t, "validate", dir)
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stderr, "unknown field type")

	path := filepath.Join(t.TempDir(), "fields.yaml")
	require.NoError(t, os.WriteFile(path, []byte("fields: [{name: x}]\n"), 0o644))
	_, stderr, code = execute(t, "validate", path)
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stderr, "F003")
}
