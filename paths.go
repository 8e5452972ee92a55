package settings

import (
	"os"
	"path/filepath"
)

// GetPathArg returns the effective value of a path setting with
// normalization applied: the path is cleaned and a trailing separator
// stripped unless the result is a root. A negated setting yields the
// empty path; an unset one yields def unchanged. The whole read is one
// snapshot under the lock.
func (m *Manager) GetPathArg(name, def string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getPathArgLocked(name, def)
}

// DataDir returns the data directory, resolved once per flavor and then
// cached. An explicit -datadir override must name an existing directory;
// otherwise the empty path is returned and nothing is cached, so a later
// call can succeed once the directory exists. Without an override the
// platform default base directory is used, extended with the network
// subdirectory when netSpecific is set and the active network has one.
func (m *Manager) DataDir(netSpecific bool) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dataDirLocked(netSpecific)
}

func (m *Manager) dataDirLocked(netSpecific bool) string {
	cached := &m.cachedDataDir
	if netSpecific {
		cached = &m.cachedNetDataDir
	}
	if *cached != "" {
		return *cached
	}

	var path string
	if datadir := m.getPathArgLocked("datadir", ""); datadir != "" {
		abs, err := filepath.Abs(datadir)
		if err != nil || !isDirectory(abs) {
			return ""
		}
		path = abs
	} else {
		path = m.baseDir()
	}

	if netSpecific {
		if netDir := NetworkDataDirName(m.network); netDir != "" {
			path = filepath.Join(path, netDir)
		}
	}

	*cached = path
	return path
}

// BlocksDir returns the blocks directory, created on first resolution
// so callers can write into it immediately. An explicit -blocksdir
// override must name an existing directory; the default is the network
// subdirectory of the base data directory.
func (m *Manager) BlocksDir() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cachedBlocksDir != "" {
		return m.cachedBlocksDir
	}

	var path string
	if !m.getSettingLocked("blocksdir").IsNull() {
		blocksdir := m.getPathArgLocked("blocksdir", "")
		abs, err := filepath.Abs(blocksdir)
		if err != nil || !isDirectory(abs) {
			return ""
		}
		path = abs
	} else {
		path = m.dataDirLocked(false)
		if path == "" {
			return ""
		}
	}

	path = filepath.Join(path, NetworkDataDirName(m.network), "blocks")
	if err := os.MkdirAll(path, 0o755); err != nil {
		m.logger.Warn("failed to create blocks directory", "path", path, "error", err)
		return ""
	}

	m.cachedBlocksDir = path
	return path
}

// EnsureDataDir creates the base and network-specific data directories
// if they do not exist yet.
func (m *Manager) EnsureDataDir() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, netSpecific := range []bool{false, true} {
		path := m.dataDirLocked(netSpecific)
		if path == "" {
			continue
		}
		if err := os.MkdirAll(path, 0o755); err != nil {
			return err
		}
	}
	return nil
}

// ClearPathCache invalidates every cached path, forcing the next lookup
// to resolve again.
func (m *Manager) ClearPathCache() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cachedDataDir = ""
	m.cachedNetDataDir = ""
	m.cachedBlocksDir = ""
}

// getPathArgLocked is GetPathArg for callers already holding the lock.
func (m *Manager) getPathArgLocked(name, def string) string {
	v := m.getSettingLocked(name)
	if v.IsFalse() {
		return ""
	}
	s, ok := ValueToString(v)
	if !ok || s == "" {
		return def
	}
	return filepath.Clean(s)
}

func isDirectory(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
