package testserdes

import (
	"encoding/json"
	"testing"

	"github.com/n3lab/ledger-core/pkg/io"
	"github.com/n3lab/ledger-core/pkg/vm/stackitem"
	"github.com/stretchr/testify/require"
)

// stackItemConvertible is implemented by types that can round-trip through
// a stackitem.Item representation.
type stackItemConvertible interface {
	ToStackItem() (stackitem.Item, error)
	FromStackItem(stackitem.Item) error
}

// ToFromStackItem checks if expected stays the same after conversion to and
// from a stackitem.Item.
func ToFromStackItem(t *testing.T, expected, actual stackItemConvertible) {
	it, err := expected.ToStackItem()
	require.NoError(t, err)
	require.NoError(t, actual.FromStackItem(it))
	require.Equal(t, expected, actual)
}

// MarshalUnmarshalJSON checks if expected stays the same after
// marshal/unmarshal via JSON.
func MarshalUnmarshalJSON(t *testing.T, expected, actual interface{}) {
	data, err := json.Marshal(expected)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, actual))
	require.Equal(t, expected, actual)
}

// EncodeDecodeBinary checks if expected stays the same after
// serializing/deserializing via io.Serializable methods.
func EncodeDecodeBinary(t *testing.T, expected, actual io.Serializable) {
	data, err := EncodeBinary(expected)
	require.NoError(t, err)
	require.NoError(t, DecodeBinary(data, actual))
	require.Equal(t, expected, actual)
}

// EncodeBinary serializes a to a byte slice.
func EncodeBinary(a io.Serializable) ([]byte, error) {
	w := io.NewBufBinWriter()
	a.EncodeBinary(w.BinWriter)
	if w.Err != nil {
		return nil, w.Err
	}
	return w.Bytes(), nil
}

// DecodeBinary deserializes a from a byte slice.
func DecodeBinary(data []byte, a io.Serializable) error {
	r := io.NewBinReaderFromBuf(data)
	a.DecodeBinary(r)
	return r.Err
}
