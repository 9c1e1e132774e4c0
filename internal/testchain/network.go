package testchain

import "github.com/n3lab/ledger-core/pkg/config/netmode"

// Network returns testchain network's magic number.
func Network() netmode.Magic {
	return netmode.UnitTestNet
}
