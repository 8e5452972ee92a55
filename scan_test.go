package settings

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScan(t *testing.T) {
	type options struct {
		Foo     bool   `setting:"foo"`
		Bar     string `setting:"bar"`
		Limit   int64  `setting:"limit"`
		Missing string `setting:"rpcpassword"`
	}

	t.Run("Struct", func(t *testing.T) {
		m := newTestManager(t)
		require.NoError(t, m.ParseParameters([]string{"-foo", "-bar=hello", "-limit=42"}))

		var opts options
		opts.Missing = "untouched"
		require.NoError(t, m.Scan(&opts))

		assert.True(t, opts.Foo)
		assert.Equal(t, "hello", opts.Bar)
		assert.Equal(t, int64(42), opts.Limit)
		assert.Equal(t, "untouched", opts.Missing, "unset settings leave fields alone")
	})

	t.Run("WeakTyping", func(t *testing.T) {
		// Values resolved from the command line are strings; the
		// decoder coerces them into the field types.
		m := newTestManager(t)
		require.NoError(t, m.ParseParameters([]string{"-limit=7", "-foo=1"}))

		var opts struct {
			Limit int  `setting:"limit"`
			Foo   bool `setting:"foo"`
		}
		require.NoError(t, m.Scan(&opts))
		assert.Equal(t, 7, opts.Limit)
		assert.True(t, opts.Foo)
	})

	t.Run("Duration", func(t *testing.T) {
		m := newTestManager(t)
		m.AddArg("-timeout=<dur>", "", AllowAny, CategoryOptions)
		require.NoError(t, m.ParseParameters([]string{"-timeout=1m30s"}))

		var opts struct {
			Timeout time.Duration `setting:"timeout"`
		}
		require.NoError(t, m.Scan(&opts))
		assert.Equal(t, 90*time.Second, opts.Timeout)
	})

	t.Run("CommaSlice", func(t *testing.T) {
		m := newTestManager(t)
		require.NoError(t, m.ParseParameters([]string{"-bar=a,b,c"}))

		var opts struct {
			Bar []string `setting:"bar"`
		}
		require.NoError(t, m.Scan(&opts))
		assert.Equal(t, []string{"a", "b", "c"}, opts.Bar)
	})

	t.Run("BareFlagMatchesBoolAccessor", func(t *testing.T) {
		// A flag with no value is stored as the empty string, which
		// coerces to true; the scan must agree with GetBoolArg.
		m := newTestManager(t)
		require.NoError(t, m.ParseParameters([]string{"-foo"}))
		require.True(t, m.GetBoolArg("foo", false))

		var opts struct {
			Foo bool `setting:"foo"`
		}
		require.NoError(t, m.Scan(&opts))
		assert.True(t, opts.Foo)
	})

	t.Run("TextBoolUsesLeadingIntegerRule", func(t *testing.T) {
		// "true" is non-numeric text and reads false everywhere in the
		// engine, including through a scan.
		m := newTestManager(t)
		require.NoError(t, m.ParseParameters([]string{"-foo=true"}))
		require.False(t, m.GetBoolArg("foo", true))

		var opts struct {
			Foo bool `setting:"foo"`
		}
		opts.Foo = true
		require.NoError(t, m.Scan(&opts))
		assert.False(t, opts.Foo)
	})

	t.Run("NonPointerRejected", func(t *testing.T) {
		m := newTestManager(t)
		assert.Error(t, m.Scan(options{}))
		var nilPtr *options
		assert.Error(t, m.Scan(nilPtr))
	})
}
