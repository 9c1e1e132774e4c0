package state

import (
	"math/big"
	"math/rand"
	"testing"

	"github.com/n3lab/ledger-core/pkg/internal/testserdes"
)

func TestNEP17Tracker_EncodeBinary(t *testing.T) {
	expected := &NEP17Tracker{
		Balance:          big.NewInt(int64(rand.Uint64())),
		LastUpdatedBlock: rand.Uint32(),
	}

	testserdes.EncodeDecodeBinary(t, expected, new(NEP17Tracker))
}

func TestNEP17Balances_EncodeBinary(t *testing.T) {
	expected := NewNEP17Balances()
	expected.NextTransferBatch = 3
	expected.Trackers[1] = NEP17Tracker{
		Balance:          big.NewInt(42),
		LastUpdatedBlock: 100,
	}
	expected.Trackers[-2] = NEP17Tracker{
		Balance:          big.NewInt(7),
		LastUpdatedBlock: 101,
	}

	testserdes.EncodeDecodeBinary(t, expected, NewNEP17Balances())
}
