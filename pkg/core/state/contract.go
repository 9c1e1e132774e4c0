package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/n3lab/ledger-core/pkg/crypto/hash"
	"github.com/n3lab/ledger-core/pkg/io"
	"github.com/n3lab/ledger-core/pkg/smartcontract/manifest"
	"github.com/n3lab/ledger-core/pkg/smartcontract/nef"
	"github.com/n3lab/ledger-core/pkg/util"
	"github.com/n3lab/ledger-core/pkg/vm/emit"
	"github.com/n3lab/ledger-core/pkg/vm/opcode"
	"github.com/n3lab/ledger-core/pkg/vm/stackitem"
)

// ContractBase holds basic information about a contract: id, hash and NEF.
type ContractBase struct {
	// ID is a contract identifier.
	ID int32 `json:"id"`
	// Hash is a contract script hash.
	Hash util.Uint160 `json:"hash"`
	// NEF is a contract's NEF file.
	NEF nef.File `json:"nef"`
	// Manifest is a contract's manifest.
	Manifest manifest.Manifest `json:"manifest"`
}

// Contract holds information about a smart contract in the NEO blockchain.
type Contract struct {
	ContractBase
	// UpdateCounter is an update counter for the contract, incremented on
	// every update and kept unchanged on deploy.
	UpdateCounter uint16 `json:"updatecounter"`
}

// contractBaseAux is a helper struct used for JSON marshalling/unmarshalling.
type contractAux struct {
	ID            int32             `json:"id"`
	UpdateCounter uint16            `json:"updatecounter"`
	Hash          util.Uint160      `json:"hash"`
	NEF           nef.File          `json:"nef"`
	Manifest      manifest.Manifest `json:"manifest"`
}

// MarshalJSON implements the json.Marshaler interface.
func (c *Contract) MarshalJSON() ([]byte, error) {
	return json.Marshal(contractAux{
		ID:            c.ID,
		UpdateCounter: c.UpdateCounter,
		Hash:          c.Hash,
		NEF:           c.NEF,
		Manifest:      c.Manifest,
	})
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (c *Contract) UnmarshalJSON(data []byte) error {
	aux := new(contractAux)
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}
	c.ID = aux.ID
	c.UpdateCounter = aux.UpdateCounter
	c.Hash = aux.Hash
	c.NEF = aux.NEF
	c.Manifest = aux.Manifest
	return nil
}

// CreateContractHash calculates a deterministic contract hash from the
// sender's account, its NEF checksum and contract name.
func CreateContractHash(sender util.Uint160, checksum uint32, name string) util.Uint160 {
	w := io.NewBufBinWriter()
	emit.Opcode(w.BinWriter, opcode.ABORT)
	emit.Bytes(w.BinWriter, sender.BytesBE())
	emit.Int(w.BinWriter, int64(checksum))
	emit.String(w.BinWriter, name)
	return hash.Hash160(w.Bytes())
}

// EncodeBinary implements the io.Serializable interface.
func (c *Contract) EncodeBinary(w *io.BinWriter) {
	si, err := c.ToStackItem()
	if err != nil {
		w.Err = err
		return
	}
	data, err := stackitem.SerializeConvertible(si)
	if err != nil {
		w.Err = err
		return
	}
	w.WriteVarBytes(data)
}

// DecodeBinary implements the io.Serializable interface.
func (c *Contract) DecodeBinary(r *io.BinReader) {
	data := r.ReadVarBytes()
	if r.Err != nil {
		return
	}
	r.Err = stackitem.DeserializeConvertible(data, c)
}

// ToStackItem converts Contract to stackitem.Item.
func (c *Contract) ToStackItem() (stackitem.Item, error) {
	rawNef, err := c.NEF.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal NEF: %w", err)
	}
	manifItem, err := c.Manifest.ToStackItem()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal manifest: %w", err)
	}
	return stackitem.NewStruct([]stackitem.Item{
		stackitem.Make(int64(c.ID)),
		stackitem.Make(int64(c.UpdateCounter)),
		stackitem.NewByteArray(c.Hash.BytesBE()),
		stackitem.NewByteArray(rawNef),
		manifItem,
	}), nil
}

// FromStackItem fills Contract with data from the given stackitem.Item.
func (c *Contract) FromStackItem(item stackitem.Item) error {
	if item.Type() != stackitem.StructT {
		return errors.New("invalid Contract stackitem type")
	}
	str := item.Value().([]stackitem.Item)
	if len(str) != 5 {
		return errors.New("invalid Contract stackitem length")
	}
	id, err := str[0].TryInteger()
	if err != nil {
		return fmt.Errorf("invalid ID: %w", err)
	}
	if !id.IsInt64() || id.Int64() < math.MinInt32 || id.Int64() > math.MaxInt32 {
		return errors.New("ID is out of int32 range")
	}
	counter, err := str[1].TryInteger()
	if err != nil {
		return fmt.Errorf("invalid UpdateCounter: %w", err)
	}
	if !counter.IsUint64() || counter.Uint64() > math.MaxUint16 {
		return errors.New("UpdateCounter is out of uint16 range")
	}
	hashBytes, err := str[2].TryBytes()
	if err != nil {
		return fmt.Errorf("invalid Hash: %w", err)
	}
	h, err := util.Uint160DecodeBytesBE(hashBytes)
	if err != nil {
		return fmt.Errorf("invalid Hash: %w", err)
	}
	rawNef, err := str[3].TryBytes()
	if err != nil {
		return fmt.Errorf("invalid NEF: %w", err)
	}
	n, err := nef.FileFromBytes(rawNef)
	if err != nil {
		return fmt.Errorf("invalid NEF: %w", err)
	}
	var m manifest.Manifest
	if err := m.FromStackItem(str[4]); err != nil {
		return fmt.Errorf("invalid Manifest: %w", err)
	}
	c.ID = int32(id.Int64())
	c.UpdateCounter = uint16(counter.Uint64())
	c.Hash = h
	c.NEF = n
	c.Manifest = m
	return nil
}
