package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetVersionInfo(t *testing.T) {
	SetVersionInfo("1.2.3", "abc1234", "2026-09-01")
	assert.Equal(t, "1.2.3 (commit: abc1234, built: 2026-09-01)", rootCmd.Version)
}

func TestSubcommandsRegistered(t *testing.T) {
	expected := []string{"init", "engine", "columns", "automations", "items"}

	registered := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		registered[cmd.Name()] = true
	}

	for _, name := range expected {
		assert.True(t, registered[name], "command %q not registered", name)
	}
}

func TestColumnsSubcommands(t *testing.T) {
	require.NotNil(t, columnsCmd)
	names := make(map[string]bool)
	for _, cmd := range columnsCmd.Commands() {
		names[cmd.Name()] = true
	}
	assert.True(t, names["list"])
	assert.True(t, names["types"])
}

func TestAutomationsSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, cmd := range automationsCmd.Commands() {
		names[cmd.Name()] = true
	}
	for _, want := range []string{"list", "enable", "disable", "runs"} {
		assert.True(t, names[want], "automations %s missing", want)
	}
}
