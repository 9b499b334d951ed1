package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintRoutes(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printRoutes(&out))

	s := out.String()
	assert.Contains(t, s, "METHOD")
	assert.Contains(t, s, "/api/v0/plants/{id}")
	assert.Contains(t, s, "orders.destroy")
	assert.Contains(t, s, "/ws/orders")
	assert.Contains(t, s, "/metrics")
}

func TestCommandsRegistered(t *testing.T) {
	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"serve", "route:list", "migrate", "migrate:rollback", "migrate:status", "seed"} {
		assert.Contains(t, names, want)
	}
}
