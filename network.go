package settings

// Known networks. ChainMain is the primary network: its config section
// and the default section are the same thing.
const (
	ChainMain    = "main"
	ChainTestnet = "testnet"
	ChainRegtest = "regtest"
)

// NetworkDataDirName returns the subdirectory a network keeps its data
// under. The primary network lives directly in the data directory.
func NetworkDataDirName(network string) string {
	switch network {
	case ChainTestnet:
		return "testnet3"
	case ChainRegtest:
		return "regtest"
	}
	return ""
}

// ChainName derives the active network from the legacy boolean
// selectors and the named-chain setting. Setting more than one of
// -regtest, -testnet and -chain is a configuration conflict reported
// immediately, before any other setting resolves.
//
// Selection reads the default config section only: which network
// section applies cannot depend on the network being selected.
func (m *Manager) ChainName() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	getNet := func(name string) bool {
		v := getSetting(&m.settings, "", name, false, false, true)
		switch {
		case v.IsNull():
			return false
		case v.IsBool():
			return v.Bool()
		case v.IsNum():
			return interpretBool(string(v.Num()))
		}
		return interpretBool(v.Str())
	}

	regTest := getNet("regtest")
	testNet := getNet("testnet")

	// The named selector resolves in normal mode: a negated -chain is a
	// non-null (false) value and still counts toward the conflict.
	chainValue := getSetting(&m.settings, "", "chain", false, false, false)
	chainSet := !chainValue.IsNull()

	set := 0
	for _, b := range []bool{regTest, testNet, chainSet} {
		if b {
			set++
		}
	}
	if set > 1 {
		return "", ErrChainConflict
	}

	if regTest {
		return ChainRegtest, nil
	}
	if testNet {
		return ChainTestnet, nil
	}
	if chainSet {
		if s, ok := ValueToString(chainValue); ok {
			return s, nil
		}
	}
	return ChainMain, nil
}
