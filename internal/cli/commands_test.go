package cli

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/domq/internal/domain"
	"github.com/roach88/domq/internal/field"
	"github.com/roach88/domq/internal/querysql"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name  string
		query []string
		want  string
	}{
		{"label", []string{"Name: Doe"}, `[["name","ilike","%Doe%"]]`},
		{"explicit operator", []string{"Name: =Doe"}, `[["name","=","Doe"]]`},
		{"joined arguments", []string{"Name:", "Doe"}, `[["name","ilike","%Doe%"]]`},
		{"multi-word label", []string{"First Name: John"}, `[["first_name","ilike","%John%"]]`},
		{"free text", []string{"John"}, `[["rec_name","ilike","%John%"]]`},
		{"empty", []string{""}, `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"parse", "--fields", partyFields}, tt.query...)
			stdout, _, code := execute(t, args...)
			require.Equal(t, ExitSuccess, code)
			assert.Equal(t, tt.want+"\n", stdout)
		})
	}
}

func TestParseCommandSuggestsLabel(t *testing.T) {
	stdout, stderr, code := execute(t, "parse", "--fields", partyFields, "Nmae: Doe")
	require.Equal(t, ExitSuccess, code)
	assert.Equal(t, `[["rec_name","ilike","%Nmae%"],["rec_name","ilike","%Doe%"]]`+"\n", stdout)
	assert.Contains(t, stderr, `unknown label "Nmae", did you mean "Name"?`)
}

func TestParseCommandJSON(t *testing.T) {
	stdout, stderr, code := execute(t, "parse", "--format", "json", "--fields", partyFields, "--tokens", "Nmae: Doe")
	require.Equal(t, ExitSuccess, code)
	assert.Empty(t, stderr)

	var resp struct {
		Status string      `json:"status"`
		Data   ParseResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.JSONEq(t, `[["rec_name","ilike","%Nmae%"],["rec_name","ilike","%Doe%"]]`, string(resp.Data.Domain))
	assert.Equal(t, "Nmae Doe", resp.Data.Text)
	assert.NotEmpty(t, resp.Data.Tokens)
	assert.Equal(t, []UnknownLabel{{Label: "Nmae", Suggestion: "Name"}}, resp.Data.Unknown)
}

func TestParseCommandCUEModel(t *testing.T) {
	stdout, _, code := execute(t, "parse", "--fields", partyModels, "--model", "party.party", "Sex: Male")
	require.Equal(t, ExitSuccess, code)
	assert.Equal(t, `[["sex","=","male"]]`+"\n", stdout)

	_, stderr, code := execute(t, "parse", "--fields", partyModels, "Sex: Male")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, "E007")
}

func TestFormatCommand(t *testing.T) {
	tests := []struct {
		name   string
		domain string
		want   string
	}{
		{"label", `[["name","ilike","%Doe%"]]`, "Name: Doe"},
		{"explicit operator", `[["name","=","Doe"]]`, "Name: =Doe"},
		{"or", `["OR",["rec_name","ilike","%John%"],["rec_name","ilike","%Jane%"]]`, "John or Jane"},
		{"selection", `[["sex","=","male"]]`, "Sex: Male"},
		{"multi-word label", `[["first_name","ilike","%John%"]]`, `"First Name": John`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, code := execute(t, "format", "--fields", partyFields, tt.domain)
			require.Equal(t, ExitSuccess, code)
			assert.Equal(t, tt.want+"\n", stdout)
		})
	}
}

func TestFormatCommandInvalidDomain(t *testing.T) {
	_, stderr, code := execute(t, "format", "--fields", partyFields, `[["name","~","x"]]`)
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, "Error [E101]")
}

func TestInvertCommand(t *testing.T) {
	const d = `[["x","=",3],["y",">",5]]`

	tests := []struct {
		name    string
		context string
		want    string
	}{
		{"violated", `{"y": 4}`, "false"},
		{"satisfied", `{"y": 6}`, `[["x","=",3]]`},
		{"unknown", ``, `[["x","=",3]]`},
		{"yaml context", `{y: 6}`, `[["x","=",3]]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, code := execute(t, "invert", "--symbol", "x", "--context", tt.context, d)
			require.Equal(t, ExitSuccess, code)
			assert.Equal(t, tt.want+"\n", stdout)
		})
	}
}

func TestInvertCommandContextFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "record.yaml")
	require.NoError(t, os.WriteFile(path, []byte("y: 7\n"), 0o644))

	stdout, _, code := execute(t, "invert", "--symbol", "x", "--context", "@"+path, `["OR",["x","=",3],["y",">",5]]`)
	require.Equal(t, ExitSuccess, code)
	assert.Equal(t, "true\n", stdout)
}

func TestInvertCommandQuery(t *testing.T) {
	stdout, _, code := execute(t, "invert", "--fields", partyFields, "--symbol", "age", "--context", `{"name": "Doe"}`, "Name: =Doe Age: 30")
	require.Equal(t, ExitSuccess, code)
	assert.Equal(t, `[["age","=",30]]`+"\n", stdout)
}

func TestInvertCommandJSON(t *testing.T) {
	stdout, _, code := execute(t, "invert", "--format", "json", "--symbol", "x", "--context", `{"y": 4}`, `[["x","=",3],["y",">",5]]`)
	require.Equal(t, ExitSuccess, code)
	assert.JSONEq(t, `{"status":"ok","data":{"symbol":"x","variables":["x","y"],"result":false}}`, stdout)
}

func TestInvertCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code string
	}{
		{"bad context", []string{"--context", "[1, 2]", "[]"}, ErrCodeContext},
		{"missing context file", []string{"--context", "@/nonexistent/record.yaml", "[]"}, ErrCodeContext},
		{"bad context value", []string{"--context", `{"d": {"__class__": "nope"}}`, "[]"}, ErrCodeContext},
		{"bad domain", []string{"[1]"}, ErrCodeDomain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--format", "json", "invert", "--symbol", "x"}, tt.args...)
			stdout, _, code := execute(t, args...)
			assert.Equal(t, ExitCommandError, code)
			resp := decodeResponse(t, stdout)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}

	t.Run("symbol required", func(t *testing.T) {
		_, stderr, code := execute(t, "invert", "[]")
		assert.Equal(t, ExitFailure, code)
		assert.Contains(t, stderr, "symbol")
	})
}

func TestEvalCommand(t *testing.T) {
	tests := []struct {
		name    string
		domain  string
		context string
		want    string
	}{
		{"and holds", `[["x","=",3],["y",">",5]]`, `{"x": 3, "y": 6}`, "true"},
		{"and fails", `[["x","=",3],["y",">",5]]`, `{"x": 3, "y": 4}`, "false"},
		{"empty and", `[]`, ``, "true"},
		{"empty or", `["OR"]`, ``, "false"},
		{"in", `[["x","in",[1,2]]]`, `{"x": 2}`, "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, code := execute(t, "eval", "--context", tt.context, tt.domain)
			require.Equal(t, ExitSuccess, code)
			assert.Equal(t, tt.want+"\n", stdout)
		})
	}
}

func TestSQLCommand(t *testing.T) {
	stdout, _, code := execute(t, "sql", `[["age",">",30]]`)
	require.Equal(t, ExitSuccess, code)
	assert.Equal(t, "SELECT * FROM record WHERE age > ? ORDER BY id COLLATE BINARY ASC\n[30]\n", stdout)
}

func TestSQLCommandQuery(t *testing.T) {
	stdout, _, code := execute(t, "sql", "--fields", partyFields, "--table", "party", "--rec-name", "display", "John")
	require.Equal(t, ExitSuccess, code)
	assert.Equal(t, "SELECT * FROM party WHERE lower(display) LIKE lower(?) ESCAPE '\\' ORDER BY id COLLATE BINARY ASC\n[\"%John%\"]\n", stdout)
}

func TestSQLCommandDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "party.db")
	writePartyDB(t, path)

	stdout, _, code := execute(t, "sql", "--fields", partyFields, "--db", path, "--table", "party", "Name: Doe")
	require.Equal(t, ExitSuccess, code)
	lines := splitLines(stdout)
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"id":1`)
	assert.Contains(t, lines[1], `"id":2`)

	stdout, _, code = execute(t, "sql", "--fields", partyFields, "--db", path, "--table", "party", "Name: Nobody")
	require.Equal(t, ExitSuccess, code)
	assert.Equal(t, "no records found\n", stdout)
}

func TestSQLCommandDatabaseFromEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "party.db")
	writePartyDB(t, path)
	t.Setenv("DOMQ_DB", path)
	t.Setenv("DOMQ_TABLE", "party")

	stdout, _, code := execute(t, "sql", "--format", "json", `[["age","<",30]]`)
	require.Equal(t, ExitSuccess, code)

	var resp struct {
		Data SQLResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	require.Len(t, resp.Data.Rows, 1)
	assert.EqualValues(t, 2, resp.Data.Rows[0]["id"])
}

func TestSQLCommandErrors(t *testing.T) {
	_, stderr, code := execute(t, "sql", `[["parent","child_of",1]]`)
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, "Error [E104]")

	_, stderr, code = execute(t, "sql", "--table", "bad table", `[]`)
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, "Error [E104]")
}

func writePartyDB(t *testing.T, path string) {
	t.Helper()
	fields, err := field.LoadFile(partyFields)
	require.NoError(t, err)

	db, err := querysql.Open(path)
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	c := querysql.NewCompiler()
	require.NoError(t, c.CreateTable(ctx, db, "party", fields))
	for _, rec := range []map[string]domain.Value{
		{"id": domain.Int(1), "rec_name": domain.String("John Doe"), "name": domain.String("Doe"), "age": domain.Int(31)},
		{"id": domain.Int(2), "rec_name": domain.String("Jane Doe"), "name": domain.String("Doe"), "age": domain.Int(27)},
		{"id": domain.Int(3), "rec_name": domain.String("Bob Smith"), "name": domain.String("Smith"), "age": domain.Int(45)},
	} {
		require.NoError(t, c.Insert(ctx, db, "party", rec))
	}
}

func splitLines(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return r == '\n' })
}
