package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSuperuser_NoInputRequiresCredentials(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no flags", []string{"createsuperuser", "--no-input"}},
		{"missing password", []string{"createsuperuser", "--no-input", "--email", "admin@example.com"}},
		{"missing email", []string{"createsuperuser", "--no-input", "--password", "secret123"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newRootCmd()
			cmd.SetArgs(tt.args)

			err := cmd.ExecuteContext(t.Context())
			require.Error(t, err)
			assert.Contains(t, err.Error(), "--no-input")
		})
	}
}

func TestMigrateCmd_Subcommands(t *testing.T) {
	cmd := newMigrateCmd()

	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"up", "down"}, names)

	down, _, err := cmd.Find([]string{"down"})
	require.NoError(t, err)
	steps, err := down.Flags().GetInt("steps")
	require.NoError(t, err)
	assert.Equal(t, 1, steps)
}
