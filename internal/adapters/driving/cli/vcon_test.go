package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vconstore/internal/core/domain"
)

// executeCommand runs the root command with args and captures output.
func executeCommand(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

// Root Command Tests

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "vconstore", rootCmd.Use)
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	commands := rootCmd.Commands()
	commandNames := make([]string, 0, len(commands))
	for _, cmd := range commands {
		commandNames = append(commandNames, cmd.Name())
	}

	assert.Contains(t, commandNames, "save")
	assert.Contains(t, commandNames, "get")
	assert.Contains(t, commandNames, "delete")
	assert.Contains(t, commandNames, "new")
	assert.Contains(t, commandNames, "search")
	assert.Contains(t, commandNames, "version")
	assert.Contains(t, commandNames, "mcp")
}

// Save Command Tests

func TestSaveCmd_Use(t *testing.T) {
	assert.Equal(t, "save [file]", saveCmd.Use)
}

func TestSaveCmd_RequiresExactlyOneArg(t *testing.T) {
	_, err := executeCommand("save")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestSaveCmd_FromFile(t *testing.T) {
	fake, cleanup := setupTestServices()
	defer cleanup()

	path := filepath.Join(t.TempDir(), "vcon.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"uuid":"uuid-1","subject":"Test call"}`), 0600))

	output, err := executeCommand("save", path)

	assert.NoError(t, err)
	assert.Contains(t, output, "Saved vCon uuid-1")
	require.Contains(t, fake.records, "uuid-1")
	assert.Equal(t, "Test call", fake.records["uuid-1"].Subject)
}

func TestSaveCmd_FromStdin(t *testing.T) {
	fake, cleanup := setupTestServices()
	defer cleanup()

	rootCmd.SetIn(strings.NewReader(`{"uuid":"uuid-2"}`))
	defer rootCmd.SetIn(nil)

	output, err := executeCommand("save", "-")

	assert.NoError(t, err)
	assert.Contains(t, output, "Saved vCon uuid-2")
	assert.Contains(t, fake.records, "uuid-2")
}

func TestSaveCmd_InvalidJSON(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	_, err := executeCommand("save", path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing vCon document")
}

func TestSaveCmd_MissingFile(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand("save", filepath.Join(t.TempDir(), "absent.json"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading vCon document")
}

func TestSaveCmd_ServiceRejects(t *testing.T) {
	fake, cleanup := setupTestServices()
	defer cleanup()
	fake.failSave = true

	path := filepath.Join(t.TempDir(), "vcon.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"uuid":"uuid-1"}`), 0600))

	_, err := executeCommand("save", path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save")
}

// Get Command Tests

func TestGetCmd_Use(t *testing.T) {
	assert.Equal(t, "get [uuid]", getCmd.Use)
}

func TestGetCmd_PrintsJSON(t *testing.T) {
	fake, cleanup := setupTestServices()
	defer cleanup()
	fake.records["uuid-1"] = &domain.VCon{UUID: "uuid-1", Subject: "Test call"}

	output, err := executeCommand("get", "uuid-1")

	assert.NoError(t, err)
	assert.Contains(t, output, `"uuid": "uuid-1"`)
	assert.Contains(t, output, `"subject": "Test call"`)
}

func TestGetCmd_NotFound(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand("get", "missing")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "vCon not found")
}

// Delete Command Tests

func TestDeleteCmd_Use(t *testing.T) {
	assert.Equal(t, "delete [uuid]", deleteCmd.Use)
}

func TestDeleteCmd_Deletes(t *testing.T) {
	fake, cleanup := setupTestServices()
	defer cleanup()
	fake.records["uuid-1"] = &domain.VCon{UUID: "uuid-1"}

	output, err := executeCommand("delete", "uuid-1")

	assert.NoError(t, err)
	assert.Contains(t, output, "Deleted vCon uuid-1")
	assert.NotContains(t, fake.records, "uuid-1")
}

func TestDeleteCmd_ServiceRejects(t *testing.T) {
	fake, cleanup := setupTestServices()
	defer cleanup()
	fake.failDelete = true

	_, err := executeCommand("delete", "uuid-1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to delete")
}

// New Command Tests

func TestNewCmd_Use(t *testing.T) {
	assert.Equal(t, "new", newCmd.Use)
}

func TestNewCmd_PrintsSkeleton(t *testing.T) {
	output, err := executeCommand("new")
	require.NoError(t, err)

	var vcon domain.VCon
	require.NoError(t, json.Unmarshal([]byte(output), &vcon))

	assert.NotEmpty(t, vcon.UUID)
	assert.Equal(t, domain.DefaultVersion, vcon.Version)
	assert.False(t, vcon.CreatedAt.IsZero())
	assert.NotNil(t, vcon.Parties)
	assert.Empty(t, vcon.Parties)
}

// Version Command Tests

func TestVersionCmd_Output(t *testing.T) {
	output, err := executeCommand("version")

	assert.NoError(t, err)
	assert.Contains(t, output, "vconstore version")
}

// MCP Command Tests

func TestMCPCmd_Use(t *testing.T) {
	assert.Equal(t, "mcp", mcpCmd.Use)
	assert.Equal(t, "serve", mcpServeCmd.Use)
}

func TestMCPServeCmd_HasPortFlag(t *testing.T) {
	flag := mcpServeCmd.Flags().Lookup("port")
	require.NotNil(t, flag)
	assert.Equal(t, "p", flag.Shorthand)
	assert.Equal(t, "0", flag.DefValue)
}
