package settings

import (
	"fmt"
	"log/slog"
	"os"
)

// ValidatorFunc validates a fully loaded Manager. It runs at the end of
// the build and should return an error if the configuration is unusable.
type ValidatorFunc func(m *Manager) error

// Builder assembles a Manager through the standard startup sequence:
// register arguments, parse the command line, select the network, read
// the config file, then load the persisted settings.
type Builder struct {
	opts       []Option
	args       []string
	register   []func(m *Manager)
	validators []ValidatorFunc
}

// NewBuilder creates a builder that parses os.Args by default.
func NewBuilder() *Builder {
	return &Builder{args: os.Args[1:]}
}

// WithArgs sets the command-line tokens to parse.
func (b *Builder) WithArgs(args []string) *Builder {
	b.args = args
	return b
}

// WithLogger sets the diagnostics logger.
func (b *Builder) WithLogger(l *slog.Logger) *Builder {
	b.opts = append(b.opts, WithLogger(l))
	return b
}

// WithBaseDir sets the platform default data directory supplier.
func (b *Builder) WithBaseDir(fn func() string) *Builder {
	b.opts = append(b.opts, WithBaseDir(fn))
	return b
}

// WithRegistration adds a hook that registers arguments on the new
// Manager before anything is parsed.
func (b *Builder) WithRegistration(fn func(m *Manager)) *Builder {
	if fn != nil {
		b.register = append(b.register, fn)
	}
	return b
}

// WithValidator adds a validation function; validators run in the order
// they were added.
func (b *Builder) WithValidator(fn ValidatorFunc) *Builder {
	if fn != nil {
		b.validators = append(b.validators, fn)
	}
	return b
}

// Build runs the full startup sequence and returns the loaded Manager.
func (b *Builder) Build() (*Manager, error) {
	m := New(b.opts...)
	RegisterBaseArgs(m)
	for _, fn := range b.register {
		fn(m)
	}

	if err := m.ParseParameters(b.args); err != nil {
		return nil, err
	}

	chain, err := m.ChainName()
	if err != nil {
		return nil, err
	}
	m.SelectConfigNetwork(chain)

	if err := m.ReadConfigFiles(); err != nil {
		return nil, err
	}
	// The config file may change the chain selection, so re-derive it
	// before anything resolves against the wrong section.
	chain, err = m.ChainName()
	if err != nil {
		return nil, err
	}
	m.SelectConfigNetwork(chain)

	if err := m.ReadSettingsFile(); err != nil {
		return nil, err
	}

	for _, sec := range m.UnrecognizedSections() {
		m.logger.Warn("unrecognized configuration section",
			"section", sec.Name, "file", sec.File, "line", sec.Line)
	}
	for _, name := range m.UnsuitableSectionOnlyArgs() {
		m.logger.Warn("setting found only in the default config section, invisible to the active network",
			"name", name, "network", chain)
	}

	for _, validate := range b.validators {
		if err := validate(m); err != nil {
			return nil, fmt.Errorf("configuration validation failed: %w", err)
		}
	}
	return m, nil
}

// MustBuild is like Build but panics on error.
func (b *Builder) MustBuild() *Manager {
	m, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("settings build failed: %v", err))
	}
	return m
}

// RegisterBaseArgs registers the arguments the engine itself consumes.
// The Builder always registers them; callers constructing a Manager
// directly should too.
func RegisterBaseArgs(m *Manager) {
	m.AddArg("-datadir=<dir>", "Specify data directory", AllowAny, CategoryOptions)
	m.AddArg("-blocksdir=<dir>", "Specify directory to hold the blocks subdirectory", AllowAny, CategoryOptions)
	m.AddArg("-conf=<file>", "Specify path to read-only configuration file", AllowAny, CategoryOptions)
	m.AddArg("-settings=<file>", "Specify path to dynamic settings data file; can be disabled with -nosettings", AllowAny, CategoryOptions)
	m.AddArg("-includeconf=<file>", "Specify additional configuration file, relative to the -conf path (only usable from configuration file)", AllowAny, CategoryOptions)
	m.AddArg("-chain=<chain>", "Use the chain <chain>. Allowed values: main, testnet, regtest", AllowAny, CategoryChainParams)
	m.AddArg("-testnet", "Use the test chain", AllowAny, CategoryChainParams)
	m.AddArg("-regtest", "Enter regression test mode, which uses a special chain in which blocks can be solved instantly",
		AllowAny, CategoryChainParams)
}
