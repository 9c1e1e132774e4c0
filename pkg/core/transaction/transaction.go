package transaction

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/n3lab/ledger-core/pkg/crypto/hash"
	"github.com/n3lab/ledger-core/pkg/crypto/keys"
	"github.com/n3lab/ledger-core/pkg/encoding/address"
	"github.com/n3lab/ledger-core/pkg/io"
	"github.com/n3lab/ledger-core/pkg/util"
)

// Sizes and limits for a valid transaction, as defined by the protocol.
const (
	// MaxScriptLength is the max length for a valid script.
	MaxScriptLength = 65536
	// MaxTransactionSize is the upper bound for a valid transaction, in bytes.
	MaxTransactionSize = 102400
	// MaxAttributes is the maximum number of attributes per transaction.
	MaxAttributes = 16
	// MaxSigners is the maximum number of signers per transaction.
	MaxSigners = 16
	// DefaultVersion is the default transaction version in use.
	DefaultVersion = 0
)

// ErrInvalidVersion is returned when a transaction has a version unsupported
// by this node.
var ErrInvalidVersion = errors.New("only version 0 is supported")

// Transaction is a NEO3 transaction as defined by the protocol. It
// doesn't carry the network magic around; that's provided separately
// to hash.NetSha256 whenever a hash needs to take the network into
// account (sender verification, signing).
type Transaction struct {
	// Version of the transaction.
	Version uint8

	// Nonce is a random number to avoid hash collision.
	Nonce uint32

	// SystemFee is the amount of GAS to be burned for the execution
	// of the transaction's script.
	SystemFee int64

	// NetworkFee is the amount of GAS to be distributed to consensus
	// nodes for accepting the transaction and spending network resources.
	NetworkFee int64

	// ValidUntilBlock is the block height after which the transaction
	// becomes invalid.
	ValidUntilBlock uint32

	// Signers contains the list of accounts authorizing the transaction,
	// the first one being the sender that pays the fees.
	Signers []Signer

	// Attributes contains the extra attributes attached to the transaction.
	Attributes []Attribute

	// Script is the contract-call bytecode to execute.
	Script []byte

	// Scripts is a set of witnesses, one for each signer.
	Scripts []Witness

	// Trimmed marks transactions retrieved without their witnesses, i.e.
	// only the hashable part was decoded.
	Trimmed bool

	// hash caches the transaction's hash (signed-part double-SHA256).
	hash util.Uint256
	// hashed denotes whether hash was already computed.
	hashed bool
	// size caches the transaction's binary size.
	size int
	// sizeCached denotes whether size was already computed.
	sizeCached bool
}

// New creates a new transaction with the script and system fee specified
// and empty Nonce, Signers, Attributes and Scripts.
func New(script []byte, sysFee int64) *Transaction {
	return &Transaction{
		Version:    DefaultVersion,
		Script:     script,
		SystemFee:  sysFee,
		Attributes: []Attribute{},
		Signers:    []Signer{},
		Scripts:    []Witness{},
	}
}

// Hash returns the hash of the transaction, which is the double-SHA256
// of its hashable (signed) part.
func (t *Transaction) Hash() util.Uint256 {
	if !t.hashed {
		t.createHash()
	}
	return t.hash
}

// createHash computes the hash of the transaction and caches it.
func (t *Transaction) createHash() {
	buf := io.NewBufBinWriter()
	t.encodeHashableFields(buf.BinWriter)
	if buf.Err != nil {
		panic(buf.Err)
	}
	t.hash = hash.DoubleSha256(buf.Bytes())
	t.hashed = true
}

// Sender returns the sender of the transaction, which is the account of
// its first signer.
func (t *Transaction) Sender() util.Uint160 {
	if len(t.Signers) == 0 {
		return util.Uint160{}
	}
	return t.Signers[0].Account
}

// HasSigner denotes whether h is one of the signers of t.
func (t *Transaction) HasSigner(h util.Uint160) bool {
	for _, s := range t.Signers {
		if s.Account.Equals(h) {
			return true
		}
	}
	return false
}

// HasAttribute returns true iff t has an attribute of the given type.
func (t *Transaction) HasAttribute(typ AttrType) bool {
	for i := range t.Attributes {
		if t.Attributes[i].Type == typ {
			return true
		}
	}
	return false
}

// GetAttributes returns a list of transaction attributes of the given
// type, the list is empty if there are no attributes of that type.
func (t *Transaction) GetAttributes(typ AttrType) []Attribute {
	var result []Attribute
	for i := range t.Attributes {
		if t.Attributes[i].Type == typ {
			result = append(result, t.Attributes[i])
		}
	}
	return result
}

// decodeHashableFields decodes the fields that are hashed and signed,
// i.e. everything up to (but excluding) the witness scripts.
func (t *Transaction) decodeHashableFields(br *io.BinReader) {
	t.Version = br.ReadB()
	if br.Err == nil && t.Version > 0 {
		br.Err = ErrInvalidVersion
		return
	}
	t.Nonce = br.ReadU32LE()
	t.SystemFee = int64(br.ReadU64LE())
	t.NetworkFee = int64(br.ReadU64LE())
	t.ValidUntilBlock = br.ReadU32LE()
	br.ReadArray(&t.Signers, MaxSigners)
	if br.Err == nil && len(t.Signers) == 0 {
		br.Err = errors.New("transaction has no signers")
		return
	}
	br.ReadArray(&t.Attributes, MaxAttributes)
	t.Script = br.ReadVarBytes(MaxScriptLength)
	if br.Err == nil && len(t.Script) == 0 {
		br.Err = errors.New("script is empty")
		return
	}
	if br.Err == nil && t.SystemFee < 0 {
		br.Err = errors.New("negative system fee")
	}
	if br.Err == nil && t.NetworkFee < 0 {
		br.Err = errors.New("negative network fee")
	}
	if br.Err == nil && t.SystemFee+t.NetworkFee < t.SystemFee {
		br.Err = errors.New("fee overflow")
	}
}

// encodeHashableFields writes the hashable part of the transaction, the
// same part that decodeHashableFields reads.
func (t *Transaction) encodeHashableFields(bw *io.BinWriter) {
	bw.WriteB(t.Version)
	bw.WriteU32LE(t.Nonce)
	bw.WriteU64LE(uint64(t.SystemFee))
	bw.WriteU64LE(uint64(t.NetworkFee))
	bw.WriteU32LE(t.ValidUntilBlock)
	bw.WriteArray(t.Signers)
	bw.WriteArray(t.Attributes)
	bw.WriteVarBytes(t.Script)
}

// DecodeBinary implements the io.Serializable interface.
func (t *Transaction) DecodeBinary(br *io.BinReader) {
	t.decodeHashableFields(br)
	if br.Err != nil {
		return
	}
	br.ReadArray(&t.Scripts, len(t.Signers))
	if br.Err == nil && len(t.Scripts) != len(t.Signers) {
		br.Err = errors.New("mismatched number of signers and scripts")
	}
	if br.Err != nil {
		return
	}
	t.Trimmed = false
	t.createHash()
}

// EncodeBinary implements the io.Serializable interface.
func (t *Transaction) EncodeBinary(bw *io.BinWriter) {
	t.encodeHashableFields(bw)
	if bw.Err != nil {
		return
	}
	bw.WriteArray(t.Scripts)
}

// GetSignedPart implements the hash.Hashable interface, returning the
// hashable binary form of the transaction.
func (t *Transaction) GetSignedPart() []byte {
	buf := io.NewBufBinWriter()
	t.encodeHashableFields(buf.BinWriter)
	if buf.Err != nil {
		return nil
	}
	return buf.Bytes()
}

// GetSignedHash returns the hash of the transaction. It implements the
// crypto.Verifiable interface.
func (t *Transaction) GetSignedHash() util.Uint256 {
	return t.Hash()
}

// DecodeHashableFields decodes the signed part of the transaction from
// the given buffer. It implements crypto.VerifiableDecodable.
func (t *Transaction) DecodeHashableFields(buf []byte) error {
	r := io.NewBinReaderFromBuf(buf)
	t.decodeHashableFields(r)
	if r.Err != nil {
		return r.Err
	}
	t.Scripts = make([]Witness, len(t.Signers))
	t.createHash()
	return nil
}

// DecodeSignedPart is an alias for DecodeHashableFields, it implements
// crypto.VerifiableDecodable.
func (t *Transaction) DecodeSignedPart(buf []byte) error {
	return t.DecodeHashableFields(buf)
}

// Bytes returns the serialized form of the transaction.
func (t *Transaction) Bytes() []byte {
	buf := io.NewBufBinWriter()
	t.EncodeBinary(buf.BinWriter)
	if buf.Err != nil {
		panic(buf.Err)
	}
	return buf.Bytes()
}

// Size returns the size in bytes of the transaction's binary form.
func (t *Transaction) Size() int {
	if !t.sizeCached {
		t.size = len(t.Bytes())
		t.sizeCached = true
	}
	return t.size
}

// FeePerByte returns the transaction's NetworkFee divided by its Size.
func (t *Transaction) FeePerByte() int64 {
	sz := t.Size()
	if sz == 0 {
		return 0
	}
	return t.NetworkFee / int64(sz)
}

// NewTransactionFromBytes decodes a byte slice into a Transaction.
func NewTransactionFromBytes(b []byte) (*Transaction, error) {
	tx := &Transaction{}
	r := io.NewBinReaderFromBuf(b)
	tx.DecodeBinary(r)
	if r.Err != nil {
		return nil, r.Err
	}
	return tx, nil
}

// Copy creates a deep copy of the transaction, including all slice
// fields. Cached values (hash, size) are dropped and recomputed lazily.
func (t *Transaction) Copy() *Transaction {
	if t == nil {
		return nil
	}
	cp := *t
	cp.hashed = false
	cp.sizeCached = false
	cp.Signers = make([]Signer, len(t.Signers))
	for i, s := range t.Signers {
		cp.Signers[i] = Signer{
			Account:          s.Account,
			Scopes:           s.Scopes,
			AllowedContracts: append([]util.Uint160(nil), s.AllowedContracts...),
			AllowedGroups:    append([]*keys.PublicKey(nil), s.AllowedGroups...),
			Rules:            append([]WitnessRule(nil), s.Rules...),
		}
	}
	cp.Attributes = make([]Attribute, len(t.Attributes))
	for i, a := range t.Attributes {
		cp.Attributes[i] = *a.Copy()
	}
	cp.Script = append([]byte(nil), t.Script...)
	cp.Scripts = make([]Witness, len(t.Scripts))
	for i, s := range t.Scripts {
		cp.Scripts[i] = s.Copy()
	}
	return &cp
}

// transactionJSON is used for JSON I/O of Transaction.
type transactionJSON struct {
	TxID            util.Uint256 `json:"hash"`
	Size            int          `json:"size"`
	Version         uint8        `json:"version"`
	Nonce           uint32       `json:"nonce"`
	Sender          string       `json:"sender"`
	SystemFee       int64        `json:"sysfee,string"`
	NetworkFee      int64        `json:"netfee,string"`
	ValidUntilBlock uint32       `json:"validuntilblock"`
	Signers         []Signer     `json:"signers"`
	Attributes      []Attribute  `json:"attributes"`
	Script          string       `json:"script"`
	Scripts         []Witness    `json:"witnesses"`
}

// MarshalJSON implements the json.Marshaler interface.
func (t *Transaction) MarshalJSON() ([]byte, error) {
	return json.Marshal(transactionJSON{
		TxID:            t.Hash(),
		Size:            t.Size(),
		Version:         t.Version,
		Nonce:           t.Nonce,
		Sender:          address.EncodeUint160(t.Sender()),
		SystemFee:       t.SystemFee,
		NetworkFee:      t.NetworkFee,
		ValidUntilBlock: t.ValidUntilBlock,
		Signers:         t.Signers,
		Attributes:      t.Attributes,
		Script:          "0x" + hex.EncodeToString(t.Script),
		Scripts:         t.Scripts,
	})
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	tj := new(transactionJSON)
	if err := json.Unmarshal(data, tj); err != nil {
		return err
	}
	script := tj.Script
	if len(script) >= 2 && script[0:2] == "0x" {
		script = script[2:]
	}
	scriptBytes, err := hex.DecodeString(script)
	if err != nil {
		return fmt.Errorf("failed to decode script: %w", err)
	}
	t.Version = tj.Version
	t.Nonce = tj.Nonce
	t.SystemFee = tj.SystemFee
	t.NetworkFee = tj.NetworkFee
	t.ValidUntilBlock = tj.ValidUntilBlock
	t.Signers = tj.Signers
	t.Attributes = tj.Attributes
	t.Script = scriptBytes
	t.Scripts = tj.Scripts
	if !t.Hash().Equals(tj.TxID) {
		return errors.New("txid does not match transaction hash")
	}
	return nil
}
