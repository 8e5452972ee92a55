package settings

import (
	"log/slog"
	"sort"
	"sync"
)

// SectionInfo records where a config-file section header appeared, used
// only for diagnosing unrecognized sections.
type SectionInfo struct {
	Name string
	File string
	Line int
}

// Manager owns the settings store, the argument registry and the path
// cache. It is constructed explicitly and passed to consumers; there is
// no process-wide instance.
//
// A single exclusive lock guards all of its state: the invariants are
// cross-cutting (the path cache depends on resolved settings), so finer
// locking buys nothing. Every public operation is synchronous and
// releases the lock before returning.
type Manager struct {
	mu sync.Mutex

	logger *slog.Logger

	settings    store
	network     string
	networkOnly map[string]struct{}
	available   map[Category]map[string]Arg

	configSections []SectionInfo

	// baseDir supplies the platform default data directory; treated as
	// opaque.
	baseDir func() string

	settingsFileName string

	cachedDataDir    string
	cachedNetDataDir string
	cachedBlocksDir  string
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger used for non-fatal diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithBaseDir sets the supplier of the platform default data directory.
func WithBaseDir(fn func() string) Option {
	return func(m *Manager) { m.baseDir = fn }
}

// WithSettingsFileName overrides the default name of the read/write
// settings file. An empty GetPathArg("settings") result still disables
// persistence regardless of this name.
func WithSettingsFileName(name string) Option {
	return func(m *Manager) { m.settingsFileName = name }
}

// New creates an empty Manager. Arguments must be registered before
// parsing.
func New(opts ...Option) *Manager {
	m := &Manager{
		logger:           slog.Default(),
		settings:         newStore(),
		networkOnly:      make(map[string]struct{}),
		available:        make(map[Category]map[string]Arg),
		settingsFileName: DefaultSettingsFileName,
	}
	for _, o := range opts {
		o(m)
	}
	if m.baseDir == nil {
		m.baseDir = func() string { return "." }
	}
	return m
}

// SelectConfigNetwork sets the active network, which decides which
// config-file section is consulted during resolution.
func (m *Manager) SelectConfigNetwork(network string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.network = network
}

// useDefaultSection reports whether resolution of name may fall back to
// the default config section for the active network.
func (m *Manager) useDefaultSectionLocked(name string) bool {
	if m.network == ChainMain {
		return true
	}
	_, networkOnly := m.networkOnly[name]
	return !networkOnly
}

func (m *Manager) getSettingLocked(name string) Value {
	name = settingName(name)
	return getSetting(&m.settings, m.network, name,
		!m.useDefaultSectionLocked(name), false, false)
}

func (m *Manager) getSettingsListLocked(name string) []Value {
	name = settingName(name)
	return getSettingsList(&m.settings, m.network, name,
		!m.useDefaultSectionLocked(name))
}

// GetSetting returns the single effective value of a setting, or a null
// Value when it is unset everywhere.
func (m *Manager) GetSetting(name string) Value {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getSettingLocked(name)
}

// GetNonPersistentSetting resolves like GetSetting but never consults
// the read/write container.
func (m *Manager) GetNonPersistentSetting(name string) Value {
	m.mu.Lock()
	defer m.mu.Unlock()
	name = settingName(name)
	return getSetting(&m.settings, m.network, name,
		!m.useDefaultSectionLocked(name), true, false)
}

// GetSettingsList returns the full ordered list of values for a
// multi-valued setting.
func (m *Manager) GetSettingsList(name string) []Value {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getSettingsListLocked(name)
}

// IsArgSet reports whether the setting has any effective value.
func (m *Manager) IsArgSet(name string) bool {
	return !m.GetSetting(name).IsNull()
}

// IsArgNegated reports whether the setting resolves to a negated
// (false) value, e.g. from a -nofoo token.
func (m *Manager) IsArgNegated(name string) bool {
	return m.GetSetting(name).IsFalse()
}

// GetArg returns the effective string value, or def when unset.
func (m *Manager) GetArg(name, def string) string {
	if s, ok := ValueToString(m.GetSetting(name)); ok {
		return s
	}
	return def
}

// GetArgs returns every effective value of a multi-valued setting in
// string form.
func (m *Manager) GetArgs(name string) []string {
	values := m.GetSettingsList(name)
	result := make([]string, 0, len(values))
	for _, v := range values {
		switch {
		case v.IsFalse():
			result = append(result, "0")
		case v.IsTrue():
			result = append(result, "1")
		case v.IsNum():
			result = append(result, string(v.Num()))
		default:
			result = append(result, v.Str())
		}
	}
	return result
}

// GetIntArg returns the effective integer value, or def when unset. The
// permissive string coercion means non-numeric text reads as 0; only a
// stored number that does not fit in int64 is an error.
func (m *Manager) GetIntArg(name string, def int64) (int64, error) {
	n, ok, err := ValueToInt(m.GetSetting(name))
	if err != nil {
		return 0, err
	}
	if !ok {
		return def, nil
	}
	return n, nil
}

// GetBoolArg returns the effective boolean value, or def when unset.
func (m *Manager) GetBoolArg(name string, def bool) bool {
	if b, ok := ValueToBool(m.GetSetting(name)); ok {
		return b
	}
	return def
}

// SoftSetArg forces a value only if the setting has no effective value
// yet. It reports whether the value was applied.
func (m *Manager) SoftSetArg(name, value string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.getSettingLocked(name).IsNull() {
		return false
	}
	m.settings.forced[settingName(name)] = StringValue(value)
	return true
}

// SoftSetBoolArg is SoftSetArg with "1"/"0" for true/false.
func (m *Manager) SoftSetBoolArg(name string, value bool) bool {
	if value {
		return m.SoftSetArg(name, "1")
	}
	return m.SoftSetArg(name, "0")
}

// ForceSetArg unconditionally overrides the setting, taking precedence
// over every other source.
func (m *Manager) ForceSetArg(name, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings.forced[settingName(name)] = StringValue(value)
}

// ForceSetMultiArg overrides the setting with a list of values.
func (m *Manager) ForceSetMultiArg(name string, values []string) {
	list := make([]Value, 0, len(values))
	for _, s := range values {
		list = append(list, StringValue(s))
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings.forced[settingName(name)] = ListValue(list)
}

// ClearForcedArg removes a forced override.
func (m *Manager) ClearForcedArg(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.settings.forced, settingName(name))
}

// UpdatePersistent stores a value in the read/write container. The
// change is durable only after WriteSettingsFile.
func (m *Manager) UpdatePersistent(name string, v Value) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings.persisted[settingName(name)] = v
}

// ClearPersistent removes a value from the read/write container.
func (m *Manager) ClearPersistent(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.settings.persisted, settingName(name))
}

// UnrecognizedSections returns the config-file sections that are not in
// the known network set, with their provenance.
func (m *Manager) UnrecognizedSections() []SectionInfo {
	m.mu.Lock()
	defer m.mu.Unlock()

	var unrecognized []SectionInfo
	for _, sec := range m.configSections {
		switch sec.Name {
		case ChainMain, ChainTestnet, ChainRegtest:
		default:
			unrecognized = append(unrecognized, sec)
		}
	}
	return unrecognized
}

// UnsuitableSectionOnlyArgs returns the network-restricted settings
// that were found only in the default config section while a
// non-primary network is active. Such settings are invisible to the
// active network, which usually surprises whoever wrote the file.
func (m *Manager) UnsuitableSectionOnlyArgs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.network == "" || m.network == ChainMain {
		return nil
	}

	var unsuitable []string
	for name := range m.networkOnly {
		if onlyHasDefaultSectionSetting(&m.settings, m.network, name) {
			unsuitable = append(unsuitable, name)
		}
	}
	sort.Strings(unsuitable)
	return unsuitable
}

// LogSettings dumps every stored setting through the logger. Sensitive
// values are redacted.
func (m *Manager) LogSettings() {
	m.mu.Lock()
	defer m.mu.Unlock()

	logOne := func(origin, section, name string, v Value) {
		flags, known := m.argFlagsLocked(name)
		if !known {
			return
		}
		text := v.Write()
		if flags&Sensitive != 0 {
			text = "****"
		}
		if section != "" {
			m.logger.Info(origin, "section", section, "name", name, "value", text)
		} else {
			m.logger.Info(origin, "name", name, "value", text)
		}
	}

	for section, sec := range m.settings.fileBySection {
		for name, values := range sec {
			for _, v := range values {
				logOne("config file arg", section, name, v)
			}
		}
	}
	for name, v := range m.settings.persisted {
		m.logger.Info("setting file arg", "name", name, "value", v.Write())
	}
	for name, values := range m.settings.commandLine {
		for _, v := range values {
			logOne("command-line arg", "", name, v)
		}
	}
}
