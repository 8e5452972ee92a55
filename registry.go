package settings

import (
	"fmt"
	"strings"
)

// Flags describe how a registered argument may be used.
type Flags uint32

const (
	FlagNone Flags = 0

	// AllowBool permits boolean values, which makes the -no prefix
	// legal for the argument.
	AllowBool Flags = 0x01
	AllowInt  Flags = 0x02
	AllowStr  Flags = 0x04
	AllowAny  Flags = AllowBool | AllowInt | AllowStr

	// DebugOnly hides the argument unless debug help is requested.
	DebugOnly Flags = 0x100

	// NetworkOnly arguments must not be set only in the default config
	// section when a non-primary network is active.
	NetworkOnly Flags = 0x200

	// Sensitive values are redacted when settings are logged.
	Sensitive Flags = 0x400
)

// Category groups registered arguments for help display.
type Category int

const (
	CategoryOptions Category = iota
	CategoryConnection
	CategoryChainParams
	CategoryDebugTest
	CategoryRPC
	CategoryHidden
)

// Arg holds the registration record for one argument.
type Arg struct {
	HelpParam string
	HelpText  string
	Flags     Flags
}

// settingName strips the leading marker from an argument name, so
// "-foo" and "foo" refer to the same stored setting.
func settingName(arg string) string {
	return strings.TrimPrefix(arg, "-")
}

// AddArg registers an argument under the given category. The name may
// carry a help-display hint after '=' (e.g. "-datadir=<dir>"), which is
// split off and kept for help output only. Registering the same bare
// name twice in one category is a programming error and panics: the
// registry is populated once at startup and never concurrently with
// parsing.
func (m *Manager) AddArg(name, help string, flags Flags, cat Category) {
	argName := name
	helpParam := ""
	if i := strings.Index(name, "="); i >= 0 {
		argName = name[:i]
		helpParam = name[i:]
	}
	// Stored without the leading marker: "-foo" and "foo" are the same
	// registration.
	argName = settingName(argName)

	m.mu.Lock()
	defer m.mu.Unlock()

	argMap := m.available[cat]
	if argMap == nil {
		argMap = make(map[string]Arg)
		m.available[cat] = argMap
	}
	if _, dup := argMap[argName]; dup {
		panic(fmt.Sprintf("argument %s registered twice", argName))
	}
	argMap[argName] = Arg{HelpParam: helpParam, HelpText: help, Flags: flags}

	if flags&NetworkOnly != 0 {
		m.networkOnly[argName] = struct{}{}
	}
}

// AddHiddenArgs registers each name with AllowAny and no help text under
// the hidden category.
func (m *Manager) AddHiddenArgs(names []string) {
	for _, name := range names {
		m.AddArg(name, "", AllowAny, CategoryHidden)
	}
}

// GetArgFlags returns the flags an argument was registered with. The
// second result is false for unknown arguments. Registration is small
// and static, so a linear scan across categories is fine.
func (m *Manager) GetArgFlags(name string) (Flags, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.argFlagsLocked(settingName(name))
}

func (m *Manager) argFlagsLocked(name string) (Flags, bool) {
	for _, argMap := range m.available {
		if arg, ok := argMap[name]; ok {
			return arg.Flags, true
		}
	}
	return 0, false
}

// checkValid rejects values that the argument's flags forbid.
func checkValid(key string, val Value, flags Flags) error {
	if val.IsBool() && flags&AllowBool == 0 {
		return fmt.Errorf("%w: -%s", ErrNegationForbidden, key)
	}
	return nil
}
