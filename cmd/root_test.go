//go:build !integration

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, name := range []string{"bench", "generate", "sort", "runs", "config"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "sortbench", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
	assert.True(t, rootCmd.SilenceUsage)
}

func TestRunsCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range runsCmd.Commands() {
		names[c.Name()] = true
	}

	for _, name := range []string{"list", "show", "stats"} {
		assert.True(t, names[name], "expected runs subcommand %q not found", name)
	}
}

func TestBenchCommand_Flags(t *testing.T) {
	tests := []struct {
		name string
		def  string
	}{
		{"sizes", "[]"},
		{"algorithms", "[]"},
		{"workers", "1"},
		{"data-dir", ""},
		{"out-dir", ""},
		{"write-sorted", "false"},
		{"xlsx", ""},
		{"chart", ""},
		{"no-record", "false"},
		{"no-progress", "false"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag := benchCmd.Flags().Lookup(tt.name)
			require.NotNil(t, flag, "bench command should have --%s flag", tt.name)
			assert.Equal(t, tt.def, flag.DefValue)
		})
	}
}

func TestSortCommand_Flags(t *testing.T) {
	flag := sortCmd.Flags().Lookup("algorithm")
	require.NotNil(t, flag)
	assert.Equal(t, "reference", flag.DefValue)

	require.NotNil(t, sortCmd.Flags().Lookup("out"))
}

func TestRootCmd_PersistentPreRunE_WithValidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configContent := `
bench:
  sizes: [10, 20]
  workers: 2
store:
  driver: none
log:
  level: warn
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.yaml"), []byte(configContent), 0o644))
	t.Chdir(tmpDir)

	oldCfg := cfg
	cfg = nil
	defer func() { cfg = oldCfg }()

	err := rootCmd.PersistentPreRunE(rootCmd, nil)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, []int{10, 20}, cfg.Bench.Sizes)
	assert.Equal(t, 2, cfg.Bench.Workers)
	assert.False(t, cfg.Store.Enabled())
}

func TestRootCmd_PersistentPreRunE_BadLogLevel(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.yaml"), []byte("log:\n  level: loud\n"), 0o644))
	t.Chdir(tmpDir)

	oldCfg := cfg
	defer func() { cfg = oldCfg }()

	err := rootCmd.PersistentPreRunE(rootCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "init logger")
}
