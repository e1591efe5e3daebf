package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/threatsmith/povforge-cli/internal/config"
	"github.com/threatsmith/povforge-cli/internal/observability"
)

// resetForTest clears the package-level flag state and pins the global logger
// to a silent console configuration so command runs never create log files.
func resetForTest(t *testing.T) {
	t.Helper()
	cfgFile = ""
	observability.ResetForTest()
	observability.InitializeLogger(config.LoggerConfig{Level: "fatal", Format: "console", ServiceName: "test"})
}

// executeCommand runs a pristine command tree with the full PersistentPreRunE
// config flow and captures combined output.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetForTest(t)

	testRootCmd := NewRootCommand()
	buf := new(bytes.Buffer)
	testRootCmd.SetOut(buf)
	testRootCmd.SetErr(buf)
	testRootCmd.SetArgs(args)
	err := testRootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

// executeCommandNoPreRun is for testing argument and flag validation without
// triggering the config loading in PersistentPreRunE.
func executeCommandNoPreRun(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetForTest(t)

	testRootCmd := NewRootCommand()
	testRootCmd.PersistentPreRunE = nil
	buf := new(bytes.Buffer)
	testRootCmd.SetOut(buf)
	testRootCmd.SetErr(buf)
	testRootCmd.SetArgs(args)
	err := testRootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

// createTempConfig writes a config file for --config tests.
func createTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestGenerateCmd_RequiredSchemaFlag(t *testing.T) {
	output, err := executeCommandNoPreRun(t, "generate")
	require.Error(t, err)
	assert.Contains(t, output, `required flag(s) "schema" not set`)
}

func TestVersionCmd(t *testing.T) {
	output, err := executeCommandNoPreRun(t, "version")
	require.NoError(t, err)
	assert.Contains(t, output, Version)
}

func TestSchemasListCmd(t *testing.T) {
	output, err := executeCommandNoPreRun(t, "schemas", "list")
	require.NoError(t, err)

	assert.Contains(t, output, "KEY")
	assert.Contains(t, output, "windows_defender")
	assert.Contains(t, output, "msft_defender_atp_raw")
	assert.Contains(t, output, "aws_cloudtrail")
	assert.Contains(t, output, "crowdstrike")
	assert.Contains(t, output, "kubernetes")
}

func TestSchemasShowCmd(t *testing.T) {
	output, err := executeCommandNoPreRun(t, "schemas", "show", "kubernetes")
	require.NoError(t, err)

	assert.Contains(t, output, "vendor: Kubernetes")
	assert.Contains(t, output, "dataset_name: k8s_audit_raw")
	assert.Contains(t, output, "stage_timestamp")
}

func TestSchemasShowCmd_UnknownKey(t *testing.T) {
	_, err := executeCommandNoPreRun(t, "schemas", "show", "no_such_schema")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema not found: no_such_schema")
}

func TestSchemasRegisterCmd(t *testing.T) {
	schemaPath := filepath.Join(t.TempDir(), "acme.yaml")
	require.NoError(t, os.WriteFile(schemaPath, []byte(`key: acme_edr
vendor: Acme
dataset_name: acme_edr_raw
category: endpoint
fields:
  - name: event_time
    type: datetime
  - name: process_name
    type: string
    role: process
`), 0o644))

	output, err := executeCommandNoPreRun(t, "schemas", "register", schemaPath)
	require.NoError(t, err)
	assert.Contains(t, output, `Validated schema "acme_edr": Acme acme_edr_raw (2 fields)`)
	assert.Contains(t, output, "--schema-file")
}

func TestSchemasRegisterCmd_InvalidFile(t *testing.T) {
	schemaPath := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(schemaPath, []byte("vendor: Acme\n"), 0o644))

	_, err := executeCommandNoPreRun(t, "schemas", "register", schemaPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required field 'key'")
}

func TestGenerateCmd_EndToEnd(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "content")
	scenarioPath := filepath.Join(t.TempDir(), "dropper.yaml")
	require.NoError(t, os.WriteFile(scenarioPath, []byte(`name: PowerShell Dropper
category: endpoint
severity: high
indicators:
  - process injection
`), 0o644))

	_, err := executeCommand(t,
		"generate",
		"--schema", "windows_defender",
		"--scenario", scenarioPath,
		"--out", outDir,
	)
	require.NoError(t, err)

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	require.Len(t, entries, 4)

	names := make(map[string]bool)
	for _, entry := range entries {
		names[entry.Name()] = true
	}
	assert.True(t, names["powershell_dropper_windows_defender_rule.json"])
	assert.True(t, names["powershell_dropper_windows_defender_playbook.yaml"])
	assert.True(t, names["powershell_dropper_windows_defender_layout.json"])
	assert.True(t, names["powershell_dropper_windows_defender_dashboard.json"])
}
