package settings

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DefaultConfigFileName is the config file read when -conf is unset.
const DefaultConfigFileName = "node.conf"

// ConfigEntry is one (section, key, value) triple produced by the
// config-file reader, with the provenance of the line it came from.
type ConfigEntry struct {
	Section string
	Key     string
	Value   string
	File    string
	Line    int
}

// ReadConfigStream parses a line-oriented config stream: bracketed
// [section] headers, key=value assignments, and bare keys which default
// to boolean true. '#' starts a comment. Section headers are recorded
// with their provenance; validation of section names happens at query
// time.
func ReadConfigStream(r io.Reader, filePath string) ([]ConfigEntry, []SectionInfo, error) {
	var entries []ConfigEntry
	var sections []SectionInfo
	section := ""

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if i := strings.Index(line, "#"); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = strings.TrimSpace(line[1 : len(line)-1])
			sections = append(sections, SectionInfo{Name: section, File: filePath, Line: lineNo})
			continue
		}

		key := line
		value := ""
		if i := strings.Index(line, "="); i >= 0 {
			key = strings.TrimSpace(line[:i])
			value = strings.TrimSpace(line[i+1:])
		}
		if key == "" || strings.ContainsAny(key, " \t") {
			return nil, nil, fmt.Errorf("%w: parse error on line %d: %s", ErrConfigRead, lineNo, scanner.Text())
		}
		entries = append(entries, ConfigEntry{Section: section, Key: key, Value: value, File: filePath, Line: lineNo})
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrConfigRead, err)
	}
	return entries, sections, nil
}

// mergeConfigLocked folds reader output into the config container. A
// key may itself carry a "section." prefix, which combines with the
// header section and is recorded with provenance just like a bracketed
// header; negation resolves into a boolean here exactly as on the
// command line. Unknown keys are kept but logged, so a file written for
// a newer binary still loads.
func (m *Manager) mergeConfigLocked(entries []ConfigEntry, sections []SectionInfo) error {
	m.configSections = append(m.configSections, sections...)

	for _, e := range entries {
		section, key, val := interpretOption(e.Key, e.Value, func(format string, args ...any) {
			m.logger.Warn(fmt.Sprintf(format, args...))
		})
		if section == "" {
			section = e.Section
		} else {
			if e.Section != "" {
				section = e.Section + "." + section
			}
			m.configSections = append(m.configSections, SectionInfo{Name: section, File: e.File, Line: e.Line})
		}

		if flags, known := m.argFlagsLocked(key); known {
			if err := checkValid(key, val, flags); err != nil {
				return err
			}
		} else {
			m.logger.Warn("ignoring unknown configuration value", "name", e.Key, "section", section)
		}

		sec := m.settings.fileBySection[section]
		if sec == nil {
			sec = make(map[string][]Value)
			m.settings.fileBySection[section] = sec
		}
		sec[key] = append(sec[key], val)
	}
	return nil
}

// ReadConfigFiles loads the config file named by -conf (relative paths
// resolve against the base data directory), follows any includeconf
// values it names, and replaces the previous config-file container. A
// missing primary file is not an error; a missing included file is.
// includeconf inside an included file is ignored with a warning rather
// than recursing.
func (m *Manager) ReadConfigFiles() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.settings.fileBySection = make(map[string]map[string][]Value)
	m.configSections = nil

	confPath := m.getPathArgLocked("conf", DefaultConfigFileName)
	if confPath == "" {
		return nil
	}
	if !filepath.IsAbs(confPath) {
		base := m.dataDirLocked(false)
		if base == "" {
			base = m.baseDir()
		}
		confPath = filepath.Join(base, confPath)
	}

	f, err := os.Open(confPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrConfigRead, err)
	}
	entries, sections, err := ReadConfigStream(f, confPath)
	f.Close()
	if err != nil {
		return err
	}
	if err := m.mergeConfigLocked(entries, sections); err != nil {
		return err
	}

	for _, includePath := range m.includeConfPathsLocked() {
		if !filepath.IsAbs(includePath) {
			includePath = filepath.Join(filepath.Dir(confPath), includePath)
		}
		inc, err := os.Open(includePath)
		if err != nil {
			return fmt.Errorf("%w: failed to include configuration file %s: %v", ErrConfigRead, includePath, err)
		}
		incEntries, incSections, err := ReadConfigStream(inc, includePath)
		inc.Close()
		if err != nil {
			return err
		}
		for _, e := range incEntries {
			if _, key, _ := interpretOption(e.Key, e.Value, nil); key == "includeconf" {
				m.logger.Warn("includeconf cannot be used from included files, ignoring",
					"file", includePath, "value", e.Value)
				continue
			}
			if err := m.mergeConfigLocked([]ConfigEntry{e}, nil); err != nil {
				return err
			}
		}
		m.configSections = append(m.configSections, incSections...)
	}
	return nil
}

// includeConfPathsLocked collects includeconf values visible to the
// active network: the default section plus the network section.
func (m *Manager) includeConfPathsLocked() []string {
	var paths []string
	seen := make(map[string]struct{})
	add := func(section string) {
		sec, ok := m.settings.fileBySection[section]
		if !ok {
			return
		}
		for _, v := range listSpan(sec["includeconf"]).visible() {
			if s, ok := ValueToString(v); ok && s != "" {
				if _, dup := seen[s]; !dup {
					seen[s] = struct{}{}
					paths = append(paths, s)
				}
			}
		}
	}
	add("")
	if m.network != "" {
		add(m.network)
	}
	return paths
}
