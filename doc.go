// Package settings implements a layered configuration resolution
// engine: runtime tunables merged from command-line tokens, a sectioned
// configuration file, a persisted read/write settings store, and forced
// overrides, resolved into a single coherent value per setting.
//
// Precedence (highest to lowest):
//  1. Forced overrides (ForceSetArg / SoftSetArg)
//  2. Command-line tokens (-key, -key=value, -nokey)
//  3. The active network's config-file section
//  4. The default config-file section
//  5. The persisted read/write settings file
//
// Boolean negation folds into a value at parse time: -nofoo is foo=false
// and -nofoo=0 is foo=true (a double negative, legal but logged). Which
// config-file sections a setting can see depends on the active network:
// non-primary networks only read the default section for settings that
// are not network-scoped.
//
// The read/write store persists crash-safely: saves go to a temporary
// file that is renamed over the real one, so readers never observe a
// partial file. The encoding follows the settings-file extension: JSON
// by default, TOML or YAML when asked.
//
// A Manager owns all of this behind one exclusive lock and is passed
// explicitly to consumers; there is no package-level instance.
//
// Typical startup:
//
//	mgr, err := settings.NewBuilder().
//	    WithArgs(os.Args[1:]).
//	    WithBaseDir(defaultDataDir).
//	    WithRegistration(func(m *settings.Manager) {
//	        m.AddArg("-rpcport=<port>", "RPC server port", settings.AllowAny, settings.CategoryRPC)
//	    }).
//	    Build()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	port, _ := mgr.GetIntArg("rpcport", 8332)
package settings
