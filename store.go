package settings

// store holds the four independent value containers. Pure data; all
// behavior lives in the merge functions below and every access is
// serialized by the owning Manager's lock.
type store struct {
	// forced holds unconditional overrides, highest precedence.
	forced map[string]Value
	// commandLine accumulates repeated flags in order of appearance.
	commandLine map[string][]Value
	// fileBySection maps config-file section name to its values;
	// section "" is the default section.
	fileBySection map[string]map[string][]Value
	// persisted is the read/write container backed by the settings
	// file.
	persisted map[string]Value
}

func newStore() store {
	return store{
		forced:        make(map[string]Value),
		commandLine:   make(map[string][]Value),
		fileBySection: make(map[string]map[string][]Value),
		persisted:     make(map[string]Value),
	}
}

// source identifies where a span of values came from, in descending
// precedence order.
type source int

const (
	sourceForced source = iota
	sourceCommandLine
	sourceNetworkSection
	sourceDefaultSection
	sourcePersisted
)

// span is a window over the values one source holds for a setting.
// Negated (false) values truncate the window: only values after the
// last negation are visible.
type span struct {
	values []Value
}

func singleSpan(v Value) span  { return span{values: []Value{v}} }
func listSpan(vs []Value) span { return span{values: vs} }

// negated returns the number of leading values hidden by negation,
// which is the position just past the last false value.
func (s span) negated() int {
	for i := len(s.values); i > 0; i-- {
		if s.values[i-1].IsFalse() {
			return i
		}
	}
	return 0
}

// visible returns the values not hidden by a negation.
func (s span) visible() []Value { return s.values[s.negated():] }

// lastNegated reports whether the span ends in a negation.
func (s span) lastNegated() bool {
	return len(s.values) > 0 && s.values[len(s.values)-1].IsFalse()
}

// empty reports whether the span contributes no visible values.
func (s span) empty() bool { return len(s.values) == 0 || s.lastNegated() }

// mergeSettings visits every source that holds a value for name, in
// precedence order.
func mergeSettings(st *store, section, name string, fn func(sp span, src source)) {
	if v, ok := st.forced[name]; ok {
		fn(singleSpan(v), sourceForced)
	}
	if vs, ok := st.commandLine[name]; ok {
		fn(listSpan(vs), sourceCommandLine)
	}
	if section != "" {
		if sec, ok := st.fileBySection[section]; ok {
			if vs, ok := sec[name]; ok {
				fn(listSpan(vs), sourceNetworkSection)
			}
		}
	}
	if sec, ok := st.fileBySection[""]; ok {
		if vs, ok := sec[name]; ok {
			fn(listSpan(vs), sourceDefaultSection)
		}
	}
	if v, ok := st.persisted[name]; ok {
		fn(singleSpan(v), sourcePersisted)
	}
}

// getSetting computes the single effective value of a setting.
//
// ignoreDefaultSection hides the default config section (used when the
// setting is network-only and a non-primary network is active).
// ignorePersisted skips the read/write container ("non-persistent only"
// mode). getChainName switches on the legacy quirks chain selection
// needs: negated command-line values are skipped and config-file
// precedence is not reversed.
func getSetting(st *store, section, name string, ignoreDefaultSection, ignorePersisted, getChainName bool) Value {
	var result Value
	done := false
	mergeSettings(st, section, name, func(sp span, src source) {
		if done {
			return
		}

		// Legacy: a negated value in the default section applies even
		// to network-only settings that would otherwise not see the
		// default section.
		neverIgnoreNegated := sp.lastNegated()

		// Legacy: config-file sources take the first assigned value
		// instead of the last, except when resolving the chain name.
		reversePrecedence := (src == sourceNetworkSection || src == sourceDefaultSection) && !getChainName

		if ignoreDefaultSection && src == sourceDefaultSection && !neverIgnoreNegated {
			return
		}
		if ignorePersisted && src == sourcePersisted {
			return
		}
		// Legacy: negated -regtest and -testnet on the command line are
		// accepted but silently ignored when selecting the chain.
		if getChainName && sp.lastNegated() {
			return
		}

		if !sp.empty() {
			vis := sp.visible()
			if reversePrecedence {
				result = vis[0]
			} else {
				result = vis[len(vis)-1]
			}
			done = true
		} else if sp.lastNegated() {
			result = BoolValue(false)
			done = true
		}
	})
	return result
}

// getSettingsList computes the full ordered list of values for a
// multi-valued setting. A negation in a source stops merging of lower
// precedence sources, with one legacy exception: config-file values
// that follow a non-empty negated command-line span are still appended.
func getSettingsList(st *store, section, name string, ignoreDefaultSection bool) []Value {
	var result []Value
	done := false
	prevNegatedEmpty := false
	mergeSettings(st, section, name, func(sp span, src source) {
		// Legacy "zombie" values: config-file settings survive a
		// command-line negation unless the negation left nothing
		// visible at all.
		addZombies := (src == sourceNetworkSection || src == sourceDefaultSection) && !prevNegatedEmpty

		if ignoreDefaultSection && src == sourceDefaultSection {
			return
		}

		if !done || addZombies {
			for _, v := range sp.visible() {
				if v.IsList() {
					result = append(result, v.List()...)
				} else {
					result = append(result, v)
				}
			}
		}

		if sp.negated() > 0 || src == sourceForced {
			done = true
		}
		if sp.lastNegated() && len(result) == 0 {
			prevNegatedEmpty = true
		}
	})
	return result
}

// onlyHasDefaultSectionSetting reports whether a setting appears in the
// default config section and nowhere else, which makes it invisible to
// non-primary networks unless it is explicitly network-scoped.
func onlyHasDefaultSectionSetting(st *store, section, name string) bool {
	hasDefault := false
	hasOther := false
	mergeSettings(st, section, name, func(sp span, src source) {
		if sp.empty() {
			return
		}
		if src == sourceDefaultSection {
			hasDefault = true
		} else {
			hasOther = true
		}
	})
	return hasDefault && !hasOther
}
