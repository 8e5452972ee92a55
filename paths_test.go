package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPathArg(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.ParseParameters([]string{
		"-bar=/tmp/x/", "-foo=/a/./b/../c", "-nowallet",
	}))

	assert.Equal(t, filepath.FromSlash("/tmp/x"), m.GetPathArg("-bar", ""))
	assert.Equal(t, filepath.FromSlash("/a/c"), m.GetPathArg("-foo", ""))
	assert.Equal(t, "", m.GetPathArg("-wallet", "fallback"), "negation yields an empty path")
	// Unset: the default passes through without normalization.
	assert.Equal(t, "untouched/", m.GetPathArg("-rpcpassword", "untouched/"))
}

func TestDataDir(t *testing.T) {
	t.Run("DefaultsToBaseDir", func(t *testing.T) {
		dir := t.TempDir()
		m := newTestManager(t, WithBaseDir(func() string { return dir }))
		assert.Equal(t, dir, m.DataDir(false))
		assert.Equal(t, dir, m.DataDir(true), "main network has no subdirectory")
	})

	t.Run("NetworkSubdirectory", func(t *testing.T) {
		dir := t.TempDir()
		m := newTestManager(t, WithBaseDir(func() string { return dir }))
		m.SelectConfigNetwork(ChainTestnet)
		assert.Equal(t, dir, m.DataDir(false))
		assert.Equal(t, filepath.Join(dir, "testnet3"), m.DataDir(true))
	})

	t.Run("OverrideMustExist", func(t *testing.T) {
		dir := t.TempDir()
		missing := filepath.Join(dir, "not-yet")
		m := newTestManager(t)
		require.NoError(t, m.ParseParameters([]string{"-datadir=" + missing}))

		assert.Equal(t, "", m.DataDir(false))

		// Nothing was cached, so the lookup succeeds once the
		// directory appears.
		require.NoError(t, os.Mkdir(missing, 0o755))
		assert.Equal(t, missing, m.DataDir(false))
	})

	t.Run("CachedUntilCleared", func(t *testing.T) {
		dir := t.TempDir()
		m := newTestManager(t, WithBaseDir(func() string { return dir }))
		require.Equal(t, dir, m.DataDir(false))

		other := t.TempDir()
		m.ForceSetArg("-datadir", other)
		assert.Equal(t, dir, m.DataDir(false), "first resolution sticks")

		m.ClearPathCache()
		assert.Equal(t, other, m.DataDir(false))
	})
}

func TestBlocksDir(t *testing.T) {
	t.Run("CreatedUnderDataDir", func(t *testing.T) {
		dir := t.TempDir()
		m := newTestManager(t, WithBaseDir(func() string { return dir }))
		m.SelectConfigNetwork(ChainRegtest)

		got := m.BlocksDir()
		want := filepath.Join(dir, "regtest", "blocks")
		assert.Equal(t, want, got)
		assert.DirExists(t, want)
	})

	t.Run("OverrideMustExist", func(t *testing.T) {
		m := newTestManager(t)
		require.NoError(t, m.ParseParameters([]string{"-blocksdir=/no/such/dir"}))
		assert.Equal(t, "", m.BlocksDir())
	})

	t.Run("Override", func(t *testing.T) {
		override := t.TempDir()
		m := newTestManager(t)
		require.NoError(t, m.ParseParameters([]string{"-blocksdir=" + override}))

		got := m.BlocksDir()
		assert.Equal(t, filepath.Join(override, "blocks"), got)
		assert.DirExists(t, got)
	})
}

func TestEnsureDataDir(t *testing.T) {
	base := t.TempDir()
	m := newTestManager(t, WithBaseDir(func() string { return base }))
	m.SelectConfigNetwork(ChainTestnet)

	require.NoError(t, m.EnsureDataDir())
	assert.DirExists(t, filepath.Join(base, "testnet3"))
}
