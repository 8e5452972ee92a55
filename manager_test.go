package settings

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestManager returns a Manager with the engine's own arguments plus
// a small registry of test settings, rooted in a temp dir.
func newTestManager(t *testing.T, opts ...Option) *Manager {
	t.Helper()
	dir := t.TempDir()
	opts = append([]Option{WithBaseDir(func() string { return dir })}, opts...)
	m := New(opts...)
	RegisterBaseArgs(m)
	m.AddArg("-foo", "test flag", AllowAny, CategoryOptions)
	m.AddArg("-bar=<value>", "test value", AllowAny, CategoryOptions)
	m.AddArg("-limit=<n>", "test integer, negation forbidden", AllowInt, CategoryOptions)
	m.AddArg("-wallet=<path>", "network-scoped test setting", AllowAny|NetworkOnly, CategoryOptions)
	m.AddArg("-rpcpassword=<pw>", "redacted in logs", AllowAny|Sensitive, CategoryRPC)
	return m
}

// captureLogs returns a logger writing into the returned buffer.
func captureLogs() (*slog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return slog.New(slog.NewTextHandler(buf, nil)), buf
}

func TestIsArgSetAndNegated(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.ParseParameters([]string{"-foo", "-nobar"}))

	assert.True(t, m.IsArgSet("foo"))
	assert.True(t, m.IsArgSet("-foo"), "marker prefix is accepted in queries")
	assert.False(t, m.IsArgNegated("foo"))

	assert.True(t, m.IsArgSet("bar"))
	assert.True(t, m.IsArgNegated("bar"))

	assert.False(t, m.IsArgSet("wallet"))
	assert.False(t, m.IsArgNegated("wallet"))
}

func TestTypedAccessors(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.ParseParameters([]string{"-bar=7", "-foo"}))

	assert.Equal(t, "7", m.GetArg("bar", "def"))
	assert.Equal(t, "def", m.GetArg("wallet", "def"))

	n, err := m.GetIntArg("bar", 0)
	require.NoError(t, err)
	assert.EqualValues(t, 7, n)
	n, err = m.GetIntArg("limit", 55)
	require.NoError(t, err)
	assert.EqualValues(t, 55, n)

	assert.True(t, m.GetBoolArg("foo", false), "-foo with no value reads true")
	assert.False(t, m.GetBoolArg("wallet", false))
	assert.True(t, m.GetBoolArg("wallet", true))
}

func TestSoftSetAndForceSet(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.ParseParameters([]string{"-bar=cli"}))

	t.Run("SoftSetRespectsExisting", func(t *testing.T) {
		assert.False(t, m.SoftSetArg("bar", "soft"))
		assert.Equal(t, "cli", m.GetArg("bar", ""))

		assert.True(t, m.SoftSetArg("foo", "soft"))
		assert.Equal(t, "soft", m.GetArg("foo", ""))
	})

	t.Run("ForceSetOverrides", func(t *testing.T) {
		m.ForceSetArg("bar", "forced")
		assert.Equal(t, "forced", m.GetArg("bar", ""))
	})

	t.Run("ClearForcedFallsThrough", func(t *testing.T) {
		m.ClearForcedArg("bar")
		assert.Equal(t, "cli", m.GetArg("bar", ""))
	})

	t.Run("SoftSetBool", func(t *testing.T) {
		assert.True(t, m.SoftSetBoolArg("wallet", true))
		assert.Equal(t, "1", m.GetArg("wallet", ""))
	})

	t.Run("ForceSetMulti", func(t *testing.T) {
		m.ForceSetMultiArg("bar", []string{"a", "b"})
		assert.Equal(t, []string{"a", "b"}, m.GetArgs("bar"))
	})
}

func TestPrecedenceOrder(t *testing.T) {
	m := newTestManager(t)
	m.SelectConfigNetwork(ChainTestnet)

	// Populate every source for the same setting.
	require.NoError(t, m.ParseParameters([]string{"-bar=cli1", "-bar=cli2"}))
	m.settings.fileBySection[ChainTestnet] = map[string][]Value{
		"bar": {StringValue("net1"), StringValue("net2")},
	}
	m.settings.fileBySection[""] = map[string][]Value{
		"bar": {StringValue("def1"), StringValue("def2")},
	}
	m.UpdatePersistent("bar", StringValue("persisted"))
	m.ForceSetArg("bar", "forced")

	assert.Equal(t, "forced", m.GetArg("bar", ""))

	m.ClearForcedArg("bar")
	assert.Equal(t, "cli2", m.GetArg("bar", ""), "last command-line occurrence wins")

	require.NoError(t, m.ParseParameters(nil))
	assert.Equal(t, "net1", m.GetArg("bar", ""),
		"network section next, first occurrence wins in config files")

	delete(m.settings.fileBySection, ChainTestnet)
	assert.Equal(t, "def1", m.GetArg("bar", ""))

	delete(m.settings.fileBySection, "")
	assert.Equal(t, "persisted", m.GetArg("bar", ""))

	assert.True(t, m.GetNonPersistentSetting("bar").IsNull(),
		"non-persistent mode skips the read/write store")

	m.ClearPersistent("bar")
	assert.True(t, m.GetSetting("bar").IsNull())
	assert.Equal(t, "fallback", m.GetArg("bar", "fallback"))
}

func TestNetworkOnlyDefaultSectionVisibility(t *testing.T) {
	seed := func(m *Manager) {
		m.settings.fileBySection[""] = map[string][]Value{
			"wallet": {StringValue("w1")},
			"bar":    {StringValue("b1")},
		}
	}

	t.Run("PrimaryNetworkSeesDefaultSection", func(t *testing.T) {
		m := newTestManager(t)
		seed(m)
		m.SelectConfigNetwork(ChainMain)
		assert.Equal(t, "w1", m.GetArg("wallet", ""))
		assert.Equal(t, "b1", m.GetArg("bar", ""))
	})

	t.Run("OtherNetworkHidesNetworkOnlySettings", func(t *testing.T) {
		m := newTestManager(t)
		seed(m)
		m.SelectConfigNetwork(ChainTestnet)
		assert.Equal(t, "", m.GetArg("wallet", ""), "network-only setting must not leak across networks")
		assert.Equal(t, "b1", m.GetArg("bar", ""), "ordinary settings still fall back")
	})

	t.Run("NegatedDefaultSectionValueStillApplies", func(t *testing.T) {
		m := newTestManager(t)
		m.settings.fileBySection[""] = map[string][]Value{
			"wallet": {BoolValue(false)},
		}
		m.SelectConfigNetwork(ChainTestnet)
		assert.True(t, m.IsArgNegated("wallet"))
	})
}

func TestUnsuitableSectionOnlyArgs(t *testing.T) {
	m := newTestManager(t)
	m.settings.fileBySection[""] = map[string][]Value{
		"wallet": {StringValue("w1")},
		"bar":    {StringValue("b1")},
	}

	m.SelectConfigNetwork(ChainMain)
	assert.Empty(t, m.UnsuitableSectionOnlyArgs(), "primary network is never unsuitable")

	m.SelectConfigNetwork(ChainTestnet)
	assert.Equal(t, []string{"wallet"}, m.UnsuitableSectionOnlyArgs())

	// Once the setting also appears in the network section it is fine.
	m.settings.fileBySection[ChainTestnet] = map[string][]Value{
		"wallet": {StringValue("w2")},
	}
	assert.Empty(t, m.UnsuitableSectionOnlyArgs())
}

func TestLogSettingsRedactsSensitive(t *testing.T) {
	logger, buf := captureLogs()
	m := newTestManager(t, WithLogger(logger))
	require.NoError(t, m.ParseParameters([]string{"-rpcpassword=hunter2", "-bar=visible"}))

	m.LogSettings()
	out := buf.String()
	assert.NotContains(t, out, "hunter2")
	assert.Contains(t, out, "****")
	assert.Contains(t, out, "visible")
}

func TestGetArgsListSemantics(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.ParseParameters([]string{"-bar=a", "-bar=b", "-foo"}))

	assert.Equal(t, []string{"a", "b"}, m.GetArgs("bar"), "occurrences accumulate in order")
	assert.Equal(t, []string{""}, m.GetArgs("foo"))
	assert.Empty(t, m.GetArgs("wallet"))
}
