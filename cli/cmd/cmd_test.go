package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telhawk-systems/telhawk-querybuilder/common/config"
)

func runQB(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	color.NoColor = true
	t.Setenv(config.EnvConfigDir, t.TempDir())

	var stdout, stderr bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestSchemaCommands(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		contains []string
		wantErr  bool
	}{
		{name: "categories", args: []string{"categories"}, contains: []string{"network", "process"}},
		{name: "fields by category", args: []string{"fields", "--category", "network"}, contains: []string{"dst_endpoint.port"}},
		{name: "unknown category", args: []string{"fields", "--category", "Nope"}, wantErr: true},
		{name: "single field", args: []string{"fields", "src_endpoint.ip"}, contains: []string{"src_endpoint.ip"}},
		{name: "operators", args: []string{"operators"}, contains: []string{"equals", "regex"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := runQB(t, tt.args...)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
		})
	}
}

func TestValidateCommand(t *testing.T) {
	out, _, err := runQB(t, "validate", "dst_endpoint.port", "443")
	require.NoError(t, err)
	assert.Contains(t, out, "dst_endpoint.port accepts")

	_, stderr, err := runQB(t, "validate", "dst_endpoint.port", "ssh")
	assert.ErrorIs(t, err, errInvalid)
	assert.Contains(t, stderr, "Must be a number")

	out, _, err = runQB(t, "validate", "src_endpoint.ip", "10.0.0.0/8", "-o", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"valid":true}`, out)
}

func TestCompileCommand(t *testing.T) {
	out, _, err := runQB(t, "compile", "-o", "json",
		"-c", "activity_name equals failed_login",
		"-c", "dst_endpoint.port equals ssh",
		"-c", "severity in high, critical")
	require.NoError(t, err)

	var res compileOutput
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, `activity_name = "failed_login" AND severity IN ("high", "critical")`, res.Query)
	require.Len(t, res.Rejected, 1)
	assert.Equal(t, 1, res.Rejected[0].Index)
	assert.Equal(t, "Must be a number", res.Rejected[0].Reason)
	assert.Len(t, res.Conditions, 2)
}

func TestCompileFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conds.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
- field: activity_name
  operator: equals
  value: failed_login
`), 0o600))

	out, _, err := runQB(t, "compile", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, out, `activity_name = "failed_login"`)
	assert.Contains(t, out, "complexity")
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "no input", args: []string{"compile"}},
		{name: "missing operator", args: []string{"compile", "-c", "severity"}},
		{name: "unknown operator", args: []string{"compile", "-c", "severity like high"}},
		{name: "missing file", args: []string{"compile", "-f", "/does/not/exist.yaml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runQB(t, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestAnalyzeCommand(t *testing.T) {
	out, _, err := runQB(t, "analyze", `process.cmd_line regex ".*powershell.*"`)
	require.NoError(t, err)
	assert.Contains(t, out, "METRIC")
	assert.Contains(t, out, "regex")
}

func TestTemplateCommands(t *testing.T) {
	out, _, err := runQB(t, "templates", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "failed-logins")
	assert.Contains(t, out, "critical-vulnerabilities")

	out, _, err = runQB(t, "templates", "show", "failed-logins")
	require.NoError(t, err)
	assert.Contains(t, out, "Failed Logins")
	assert.Contains(t, out, "medium, high, critical")

	out, _, err = runQB(t, "templates", "expand", "failed-logins", "-o", "json")
	require.NoError(t, err)
	var res compileOutput
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Contains(t, res.Query, `activity_name = "failed_login"`)
	assert.Contains(t, res.Query, `severity IN ("medium", "high", "critical")`)

	_, _, err = runQB(t, "templates", "show", "nope")
	assert.EqualError(t, err, `template "nope" not found`)
}

func savedServer(t *testing.T) (*httptest.Server, *[]string) {
	t.Helper()
	var calls []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		w.Header().Set("Content-Type", "application/vnd.api+json")
		resource := map[string]interface{}{
			"type": "saved-query",
			"id":   "q-1",
			"attributes": map[string]interface{}{
				"id":             "q-1",
				"name":           "Failed logins",
				"compiled_query": `activity_name = "failed_login"`,
				"version":        2,
				"timestamp":      "2024-11-01T10:00:00Z",
			},
		}
		switch r.Method {
		case http.MethodGet:
			if r.URL.Path == "/api/v1/saved-queries/missing" {
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte(`{"errors":[{"status":404,"code":"not_found","title":"Not Found","detail":"The requested saved query with ID 'missing' was not found"}]}`))
				return
			}
			if r.URL.Path == "/api/v1/saved-queries" {
				_ = json.NewEncoder(w).Encode(map[string]interface{}{"data": []interface{}{resource}})
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"data": resource})
		case http.MethodPost:
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"data": resource})
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestSavedCommands(t *testing.T) {
	srv, calls := savedServer(t)

	out, _, err := runQB(t, "saved", "list", "--builder-url", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "q-1")
	assert.Contains(t, out, "Failed logins")

	out, _, err = runQB(t, "saved", "save", "--builder-url", srv.URL,
		"--name", "Failed logins", "-c", "activity_name equals failed_login")
	require.NoError(t, err)
	assert.Contains(t, out, "version 2")

	out, _, err = runQB(t, "saved", "show", "q-1", "--builder-url", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, `activity_name = "failed_login"`)

	_, _, err = runQB(t, "saved", "delete", "q-1", "--builder-url", srv.URL)
	require.NoError(t, err)

	_, _, err = runQB(t, "saved", "show", "missing", "--builder-url", srv.URL)
	assert.EqualError(t, err, "request failed: 404: The requested saved query with ID 'missing' was not found")

	assert.Equal(t, []string{
		"GET /api/v1/saved-queries",
		"POST /api/v1/saved-queries",
		"GET /api/v1/saved-queries/q-1",
		"DELETE /api/v1/saved-queries/q-1",
		"GET /api/v1/saved-queries/missing",
	}, *calls)
}

func TestSaveRequiresInput(t *testing.T) {
	_, _, err := runQB(t, "saved", "save", "--builder-url", "http://127.0.0.1:1")
	assert.EqualError(t, err, "--name is required")

	_, _, err = runQB(t, "saved", "save", "--name", "x", "--builder-url", "http://127.0.0.1:1")
	assert.EqualError(t, err, "provide --query, --condition or --file")
}

func TestProfileCommands(t *testing.T) {
	color.NoColor = true
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	run := func(args ...string) (string, error) {
		var stdout bytes.Buffer
		root := NewRootCmd()
		root.SetOut(&stdout)
		root.SetErr(&stdout)
		root.SetArgs(append([]string{"--config", cfgPath}, args...))
		err := root.Execute()
		return stdout.String(), err
	}

	_, err := run("profile", "set", "prod", "--builder-url", "https://qb.example.com")
	require.NoError(t, err)
	_, err = run("profile", "set", "dev", "--builder-url", "http://localhost:8085")
	require.NoError(t, err)

	out, err := run("profile", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "https://qb.example.com")
	assert.Contains(t, out, "* ")

	_, err = run("profile", "use", "prod")
	require.NoError(t, err)
	loaded, err := config.LoadCLIFile(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "prod", loaded.CurrentProfile)
	assert.Equal(t, "https://qb.example.com", loaded.GetBuilderURL(""))

	_, err = run("profile", "use", "missing")
	assert.Error(t, err)

	_, err = run("profile", "remove", "dev")
	require.NoError(t, err)
	loaded, err = config.LoadCLIFile(cfgPath)
	require.NoError(t, err)
	assert.NotContains(t, loaded.Profiles, "dev")

	_, err = run("profile", "set", "x")
	assert.EqualError(t, err, "--builder-url is required")
}

func TestProfileSetKeepsUnreadableConfig(t *testing.T) {
	color.NoColor = true
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	broken := []byte("profiles: {prod: [\n")
	require.NoError(t, os.WriteFile(cfgPath, broken, 0o600))

	root := NewRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"--config", cfgPath, "profile", "set", "dev", "--builder-url", "http://localhost:8085"})
	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")

	data, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, broken, data)
}
