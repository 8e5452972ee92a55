package settings

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// DefaultSettingsFileName is the read/write settings file used when
// -settings is unset. The extension picks the encoding: .json (the
// default), .toml or .yaml/.yml.
const DefaultSettingsFileName = "settings.json"

const (
	settingsTmpSuffix    = ".tmp"
	settingsBackupSuffix = ".bak"
)

// SettingsPath returns the resolved location of the read/write settings
// file. ok is false when persistence is disabled with -nosettings or
// -settings="".
func (m *Manager) SettingsPath() (path string, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settingsPathLocked(false, false)
}

func (m *Manager) settingsPathLocked(temp, backup bool) (string, bool) {
	name := m.getPathArgLocked("settings", m.settingsFileName)
	if name == "" {
		return "", false
	}
	if backup {
		name += settingsBackupSuffix
	}
	if temp {
		name += settingsTmpSuffix
	}
	if !filepath.IsAbs(name) {
		base := m.dataDirLocked(true)
		if base == "" {
			base = m.baseDir()
		}
		name = filepath.Join(base, name)
	}
	return name, true
}

// settingsFormat picks the encoding from the settings file extension.
func settingsFormat(path string) string {
	switch strings.ToLower(filepath.Ext(strings.TrimSuffix(strings.TrimSuffix(path, settingsTmpSuffix), settingsBackupSuffix))) {
	case ".toml":
		return "toml"
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}

// ReadSettingsFile loads the settings file into the read/write
// container, replacing its previous contents entirely. A missing file
// is an empty store. Every problem found is reported, joined into one
// error, and a failed load leaves the container empty. Keys not present
// in the registry are kept (they round-trip through the next save) but
// logged.
func (m *Manager) ReadSettingsFile() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	path, ok := m.settingsPathLocked(false, false)
	if !ok {
		return nil // persistence disabled
	}

	m.settings.persisted = make(map[string]Value)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrSettingsRead, err)
	}

	values, errs := decodeSettings(data, settingsFormat(path), path)
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrSettingsRead, errors.Join(errs...))
	}
	m.settings.persisted = values

	for name := range values {
		_, key, _ := interpretOption(name, "", nil)
		if _, known := m.argFlagsLocked(key); !known {
			m.logger.Warn("ignoring unknown persisted setting", "name", name)
		}
	}
	return nil
}

// WriteSettingsFile writes the read/write container to a temporary file
// and atomically renames it over the settings file, so a crash or a
// failure at any step leaves the previous file untouched. Calling it
// while persistence is disabled is a programming error and panics.
func (m *Manager) WriteSettingsFile() error { return m.writeSettingsFile(false) }

// WriteSettingsFileBackup writes a backup copy, with the fixed backup
// suffix appended to both the target and the temporary path.
func (m *Manager) WriteSettingsFileBackup() error { return m.writeSettingsFile(true) }

func (m *Manager) writeSettingsFile(backup bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	path, ok := m.settingsPathLocked(false, backup)
	tmpPath, okTmp := m.settingsPathLocked(true, backup)
	if !ok || !okTmp {
		panic("attempt to write settings file when persistence is disabled")
	}

	data, errs := encodeSettings(m.settings.persisted, settingsFormat(path))
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrSettingsWrite, errors.Join(errs...))
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrSettingsWrite, err)
	}
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSettingsWrite, err)
	}
	removed := false
	defer func() {
		if !removed {
			os.Remove(tmpPath)
		}
	}()
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("%w: failed writing %s: %v", ErrSettingsWrite, tmpPath, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("%w: failed syncing %s: %v", ErrSettingsWrite, tmpPath, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: failed closing %s: %v", ErrSettingsWrite, tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("%w: failed renaming %s to %s: %v", ErrSettingsWrite, tmpPath, path, err)
	}
	removed = true
	return nil
}

// decodeSettings parses the settings file payload. Errors are collected
// per key rather than stopping at the first.
func decodeSettings(data []byte, format, path string) (map[string]Value, []error) {
	raw := make(map[string]any)
	switch format {
	case "toml":
		if err := toml.Unmarshal(data, &raw); err != nil {
			return nil, []error{fmt.Errorf("unable to parse settings file %s: %w", path, err)}
		}
	case "yaml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, []error{fmt.Errorf("unable to parse settings file %s: %w", path, err)}
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			return nil, []error{fmt.Errorf("unable to parse settings file %s: %w", path, err)}
		}
		// Trailing garbage after the document is as corrupt as a bad
		// document.
		if dec.More() {
			return nil, []error{fmt.Errorf("found multiple documents in settings file %s", path)}
		}
	}

	var errs []error
	values := make(map[string]Value, len(raw))
	for name, rv := range raw {
		v, err := valueFromAny(normalizeDecoded(rv))
		if err != nil {
			errs = append(errs, fmt.Errorf("setting %s in %s: %w", name, path, err))
			continue
		}
		values[name] = v
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return values, nil
}

// normalizeDecoded flattens decoder-specific shapes (yaml map keys,
// toml native ints) into the generic form valueFromAny accepts.
func normalizeDecoded(raw any) any {
	switch t := raw.(type) {
	case []any:
		out := make([]any, 0, len(t))
		for _, e := range t {
			out = append(out, normalizeDecoded(e))
		}
		return out
	default:
		return raw
	}
}

// encodeSettings renders the read/write container. Keys are emitted in
// sorted order so saves are deterministic. Null values cannot be
// represented in TOML and are skipped there.
func encodeSettings(values map[string]Value, format string) ([]byte, []error) {
	switch format {
	case "toml":
		out := make(map[string]any, len(values))
		for name, v := range values {
			if v.IsNull() {
				continue
			}
			out[name] = tomlValue(v)
		}
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(out); err != nil {
			return nil, []error{fmt.Errorf("failed to encode settings: %w", err)}
		}
		return buf.Bytes(), nil
	case "yaml":
		out := make(map[string]any, len(values))
		for name, v := range values {
			out[name] = yamlValue(v)
		}
		data, err := yaml.Marshal(out)
		if err != nil {
			return nil, []error{fmt.Errorf("failed to encode settings: %w", err)}
		}
		return data, nil
	default:
		// encoding/json writes map keys sorted, so saves are already
		// deterministic.
		data, err := json.MarshalIndent(values, "", "    ")
		if err != nil {
			return nil, []error{fmt.Errorf("failed to encode settings: %w", err)}
		}
		return append(data, '\n'), nil
	}
}

// tomlValue converts a Value for the TOML encoder, which has no null
// and no json.Number.
func tomlValue(v Value) any {
	switch v.Kind() {
	case KindBool:
		return v.Bool()
	case KindNumber:
		if n, err := v.Num().Int64(); err == nil {
			return n
		}
		f, _ := v.Num().Float64()
		return f
	case KindString:
		return v.Str()
	case KindList:
		out := make([]any, 0, len(v.List()))
		for _, e := range v.List() {
			if e.IsNull() {
				continue
			}
			out = append(out, tomlValue(e))
		}
		return out
	}
	return nil
}

func yamlValue(v Value) any {
	switch v.Kind() {
	case KindNumber:
		if n, err := v.Num().Int64(); err == nil {
			return n
		}
		f, _ := v.Num().Float64()
		return f
	case KindList:
		out := make([]any, 0, len(v.List()))
		for _, e := range v.List() {
			out = append(out, yamlValue(e))
		}
		return out
	case KindBool:
		return v.Bool()
	case KindString:
		return v.Str()
	}
	return nil
}
