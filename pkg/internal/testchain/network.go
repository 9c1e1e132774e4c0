package testchain

import "github.com/n3lab/ledger-core/pkg/config/netmode"

// Network returns test chain network's magic number.
func Network() netmode.Magic {
	return netmode.UnitTestNet
}
