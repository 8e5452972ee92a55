package settings

import "errors"

// Sentinel errors returned by the engine. Callers match them with
// errors.Is; detailed context is attached with fmt.Errorf and %w.
var (
	// ErrInvalidParameter marks an unknown or malformed command-line
	// token, including section-qualified keys and includeconf supplied
	// on the command line.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrNegationForbidden marks a boolean value supplied for a setting
	// that does not accept one.
	ErrNegationForbidden = errors.New("negation is meaningless and therefore forbidden")

	// ErrChainConflict marks more than one network selector being set
	// at once.
	ErrChainConflict = errors.New("invalid combination of -regtest, -testnet and -chain (use at most one)")

	// ErrConfigRead marks a malformed configuration file.
	ErrConfigRead = errors.New("config file read error")

	// ErrSettingsRead and ErrSettingsWrite mark failures of the
	// persisted settings file. The returned error joins every problem
	// found, not just the first.
	ErrSettingsRead  = errors.New("settings file read error")
	ErrSettingsWrite = errors.New("settings file write error")
)
