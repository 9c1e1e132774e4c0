package blockchainer

import (
	"github.com/n3lab/ledger-core/pkg/core/state"
	"github.com/n3lab/ledger-core/pkg/util"
)

// StateRoot represents local state root module.
type StateRoot interface {
	CurrentLocalStateRoot() util.Uint256
	GetStateProof(root util.Uint256, key []byte) ([][]byte, error)
	GetStateRoot(height uint32) (*state.MPTRoot, error)
}
