package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"remotail/internal/config"
	"remotail/internal/crypto"
	apperror "remotail/internal/error"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "remotail "+version+"\n", out)
}

func TestEncryptCommand_KeyFromEnv(t *testing.T) {
	t.Setenv(crypto.KeyEnv, "passphrase")

	out, err := execute(t, "s3cret\n", "encrypt")
	require.NoError(t, err)

	sealed := strings.TrimSpace(out)
	assert.True(t, crypto.IsEncrypted(sealed))
	plain, err := crypto.NewCipher("passphrase").Decrypt(sealed)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", plain)
}

func TestEncryptCommand_PromptsForKey(t *testing.T) {
	t.Setenv(crypto.KeyEnv, "")

	out, err := execute(t, "passphrase\ns3cret\n", "encrypt")
	require.NoError(t, err)

	plain, err := crypto.NewCipher("passphrase").Decrypt(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "s3cret", plain)
}

func TestEncryptCommand_EmptyInput(t *testing.T) {
	t.Setenv(crypto.KeyEnv, "passphrase")
	_, err := execute(t, "\n", "encrypt")
	assert.Error(t, err)
}

func TestRootCommand_Flags(t *testing.T) {
	cmd := newRootCommand()
	for _, name := range []string{"file-path", "config", "settings", "log-file", "debug", "plain", "theme"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
	assert.Equal(t, "f", cmd.Flags().Lookup("file-path").Shorthand)
	assert.Equal(t, "c", cmd.Flags().Lookup("config").Shorthand)
}

func TestCollectTargets(t *testing.T) {
	t.Setenv(crypto.KeyEnv, "")
	targetsFile := filepath.Join(t.TempDir(), "targets.txt")
	require.NoError(t, os.WriteFile(targetsFile, []byte("db://bob@db/var/log/pg.log # primary\nnot-a-target\n"), 0600))

	opts := &rootOptions{
		targetsFile: targetsFile,
		filePaths:   []string{"cli://carol@host/var/log/x.log"},
	}
	settings := config.DefaultSettings()
	settings.Targets = []config.TargetEntry{{URL: "web://alice@host/var/log/app.log"}}

	targets, skipped := collectTargets(opts, settings, nil)

	aliases := make([]string, len(targets))
	for i, target := range targets {
		aliases[i] = target.Alias
	}
	assert.Equal(t, []string{"web", "db", "cli"}, aliases)
	require.Len(t, skipped, 1)
	assert.ErrorIs(t, skipped[0], apperror.ErrMalformedTarget)
	assert.Contains(t, skippedStatus(skipped), "skipped 1:")
}

func TestCollectTargets_MissingFile(t *testing.T) {
	opts := &rootOptions{
		targetsFile: filepath.Join(t.TempDir(), "absent.txt"),
		filePaths:   []string{"cli://carol@host/var/log/x.log"},
	}
	targets, skipped := collectTargets(opts, config.DefaultSettings(), nil)
	assert.Len(t, targets, 1)
	require.Len(t, skipped, 1)
	assert.ErrorIs(t, skipped[0], apperror.ErrConfig)
}
