package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFileID(t *testing.T) {
	id, err := parseFileID("42")
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)

	for _, bad := range []string{"", "0", "-1", "abc"} {
		_, err := parseFileID(bad)
		assert.Error(t, err, bad)
	}
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"migrate", "sweep-orphans", "reindex", "ask"} {
		assert.True(t, names[want], want)
	}
}
