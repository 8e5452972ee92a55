package settings

import (
	"fmt"
	"strings"
)

// parseKeyValue splits a raw token into key and value at the first '='
// and normalizes a leading "--" to "-". It reports false for tokens
// without a marker prefix, which terminate option parsing.
func parseKeyValue(token string) (key, value string, ok bool) {
	key = token
	if i := strings.Index(key, "="); i >= 0 {
		value = key[i+1:]
		key = key[:i]
	}
	if !strings.HasPrefix(key, "-") {
		return "", "", false
	}
	if strings.HasPrefix(key, "--") {
		key = key[1:]
	}
	return key, value, true
}

// interpretOption splits an optional "section." prefix off the key,
// resolves the "no" negation prefix, and returns the effective value.
//
// Negation folds into a boolean at parse time: -nofoo becomes foo=false
// and the name variant is never stored. A double negative like -nofoo=0
// yields true; it is legal but reported through the diagnostic callback
// since it usually signals confusion.
func interpretOption(key, value string, diag func(format string, args ...any)) (section, outKey string, out Value) {
	section = ""
	if i := strings.Index(key, "."); i >= 0 {
		section = key[:i]
		key = key[i+1:]
	}
	if strings.HasPrefix(key, "no") {
		key = key[2:]
		if !interpretBool(value) {
			if diag != nil {
				diag("parsed potentially confusing double-negative -%s=%s", key, value)
			}
			return section, key, BoolValue(true)
		}
		return section, key, BoolValue(false)
	}
	return section, key, StringValue(value)
}

// ParseParameters consumes raw command-line tokens into the command-line
// container, replacing its previous contents. A token without a marker
// prefix, or the bare marker "-" alone, stops parsing; remaining tokens
// are left for the caller. Errors wrap ErrInvalidParameter or
// ErrNegationForbidden and leave no partial state for the batch beyond
// the cleared container.
func (m *Manager) ParseParameters(args []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.settings.commandLine = make(map[string][]Value)

	for _, token := range args {
		if token == "-" {
			// Sentinel for "remaining tokens are positional".
			break
		}
		key, value, ok := parseKeyValue(token)
		if !ok {
			break
		}

		key = key[1:] // strip the marker
		section, key, val := interpretOption(key, value, func(format string, args ...any) {
			m.logger.Warn(fmt.Sprintf(format, args...))
		})

		// Section-qualified keys are config-file only; on the command
		// line they are invalid, as are unregistered keys.
		flags, known := m.argFlagsLocked(key)
		if !known || section != "" {
			return fmt.Errorf("%w: %s", ErrInvalidParameter, token)
		}
		if err := checkValid(key, val, flags); err != nil {
			return err
		}

		m.settings.commandLine[key] = append(m.settings.commandLine[key], val)
	}

	// includeconf is config-file only. Parsing completes and every
	// offending value is reported so the caller sees them all at once.
	if includes, ok := m.settings.commandLine["includeconf"]; ok {
		msgs := make([]string, 0, len(includes))
		for _, inc := range listSpan(includes).visible() {
			s, _ := ValueToString(inc)
			msgs = append(msgs, fmt.Sprintf("-includeconf cannot be used from commandline; -includeconf=%s", s))
		}
		if len(msgs) > 0 {
			return fmt.Errorf("%w: %s", ErrInvalidParameter, strings.Join(msgs, "\n"))
		}
	}
	return nil
}
