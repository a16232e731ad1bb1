package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iguales-labs/policykb-cli/internal/core/services"
)

func TestLoadCmd_Use(t *testing.T) {
	assert.Equal(t, "load [file]", loadCmd.Use)
}

func TestLoadCmd_RequiresExactlyOneArg(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"load"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestLoadCmd_LoadsFile(t *testing.T) {
	oldKB, oldConfig := kbService, configStore
	kbService = services.NewKBService(nil, nil, nil)
	configStore = nil
	defer func() { kbService, configStore = oldKB, oldConfig }()

	path := writeTestPolicy(t)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"load", path})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Loaded politica.md: 3 chunks")
	require.NotNil(t, kbService.Bundle())
	assert.Equal(t, 3, kbService.Bundle().ChunksTotal)
}

func TestLoadCmd_JSONOutput(t *testing.T) {
	oldKB, oldConfig := kbService, configStore
	kbService = services.NewKBService(nil, nil, nil)
	configStore = nil
	defer func() {
		kbService, configStore = oldKB, oldConfig
		loadJSON = false
	}()

	path := writeTestPolicy(t)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"load", "--json", path})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "\"kb_name\"")
	assert.Contains(t, buf.String(), "\"chunks_total\"")
}

func TestLoadCmd_MissingFile(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"load", "/nonexistent/politica.md"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	assert.Error(t, err)
}

func TestLoadCmd_ServiceNotConfigured(t *testing.T) {
	oldKB := kbService
	kbService = nil
	defer func() { kbService = oldKB }()

	err := runLoad(loadCmd, []string{"whatever.md"})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestLoadKBFile_UsesModTime(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	path := writeTestPolicy(t)

	bundle, err := loadKBFile(context.Background(), path)

	require.NoError(t, err)
	assert.NotEmpty(t, bundle.KBUpdatedAt)
}
