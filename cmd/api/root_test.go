package main

import (
	"bytes"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filedrop/service/internal/auth"
)

func TestRootCommand_Subcommands(t *testing.T) {
	root := newRootCommand(afero.NewMemMapFs())

	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["serve"])
	assert.True(t, names["sweep"])
	assert.True(t, names["token"])
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("ADMIN_JWT_SECRET", "cli-secret")

	root := newRootCommand(afero.NewMemMapFs())
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"token", "--subject", "ops", "--ttl", "1h"})
	require.NoError(t, root.Execute())

	claims, err := auth.ParseToken("cli-secret", string(bytes.TrimSpace(out.Bytes())))
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.Subject)
}

func TestTokenCommand_RequiresSecret(t *testing.T) {
	t.Setenv("ADMIN_JWT_SECRET", "")

	root := newRootCommand(afero.NewMemMapFs())
	root.SetArgs([]string{"token"})
	assert.Error(t, root.Execute())
}

func TestSweepCommand(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "disk")
	t.Setenv("STORAGE_DIR", "/srv/drop")
	t.Setenv("DATABASE_URL", "")

	fs := afero.NewMemMapFs()
	root := newRootCommand(fs)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"sweep"})
	require.NoError(t, root.Execute())

	assert.Contains(t, out.String(), "scanned=0 evicted=0")
	exists, err := afero.DirExists(fs, "/srv/drop")
	require.NoError(t, err)
	assert.True(t, exists)
}
