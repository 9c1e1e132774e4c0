package blockchainer

import "github.com/n3lab/ledger-core/pkg/core/block"

// Blockqueuer is an interface for blockqueue.
type Blockqueuer interface {
	AddBlock(block *block.Block) error
	BlockHeight() uint32
}
