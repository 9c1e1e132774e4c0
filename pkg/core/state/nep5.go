package state

import (
	"math/big"

	"github.com/n3lab/ledger-core/pkg/encoding/bigint"
	"github.com/n3lab/ledger-core/pkg/io"
)

// NEP17Tracker contains info about a single account in a NEP-17 contract.
type NEP17Tracker struct {
	// Balance is the current balance of the account.
	Balance *big.Int
	// LastUpdatedBlock is a number of block when last `transfer` to or from the
	// account occured.
	LastUpdatedBlock uint32
}

// NEP17Balances is a map of the NEP-17 contract IDs
// to the corresponding tracked balances for one account.
type NEP17Balances struct {
	Trackers map[int32]NEP17Tracker
	// NextTransferBatch stores an index of the next transfer batch.
	NextTransferBatch uint32
}

// NewNEP17Balances returns new NEP17Balances.
func NewNEP17Balances() *NEP17Balances {
	return &NEP17Balances{
		Trackers: make(map[int32]NEP17Tracker),
	}
}

// DecodeBinary implements io.Serializable interface.
func (bs *NEP17Balances) DecodeBinary(r *io.BinReader) {
	bs.NextTransferBatch = r.ReadU32LE()
	lenBalances := r.ReadVarUint()
	m := make(map[int32]NEP17Tracker, lenBalances)
	for i := 0; i < int(lenBalances); i++ {
		key := int32(r.ReadU32LE())
		var tr NEP17Tracker
		tr.DecodeBinary(r)
		m[key] = tr
	}
	bs.Trackers = m
}

// EncodeBinary implements io.Serializable interface.
func (bs *NEP17Balances) EncodeBinary(w *io.BinWriter) {
	w.WriteU32LE(bs.NextTransferBatch)
	w.WriteVarUint(uint64(len(bs.Trackers)))
	for k, v := range bs.Trackers {
		w.WriteU32LE(uint32(k))
		v.EncodeBinary(w)
	}
}

// EncodeBinary implements io.Serializable interface.
func (t *NEP17Tracker) EncodeBinary(w *io.BinWriter) {
	w.WriteVarBytes(bigint.ToBytes(t.Balance))
	w.WriteU32LE(t.LastUpdatedBlock)
}

// DecodeBinary implements io.Serializable interface.
func (t *NEP17Tracker) DecodeBinary(r *io.BinReader) {
	t.Balance = bigint.FromBytes(r.ReadVarBytes(bigint.MaxEncodedLen))
	t.LastUpdatedBlock = r.ReadU32LE()
}
