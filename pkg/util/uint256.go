package util

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

const uint256Size = 32

// Uint256Size is the size of Uint256 in bytes.
const Uint256Size = uint256Size

// Uint256 is a 32 byte long unsigned integer.
type Uint256 [uint256Size]uint8

// Uint256DecodeString attempts to decode the given string into an Uint256.
func Uint256DecodeString(s string) (u Uint256, err error) {
	if len(s) != uint256Size*2 {
		return u, fmt.Errorf("expected string size of %d got %d", uint256Size*2, len(s))
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return u, err
	}
	return Uint256DecodeBytes(b)
}

// Uint256DecodeBytes attempts to decode the given string into an Uint256.
func Uint256DecodeBytes(b []byte) (u Uint256, err error) {
	b = ArrayReverse(b)
	if len(b) != uint256Size {
		return u, fmt.Errorf("expected []byte of size %d got %d", uint256Size, len(b))
	}
	for i := 0; i < uint256Size; i++ {
		u[i] = b[i]
	}
	return u, nil
}

// Bytes returns a byte slice representation of u.
func (u Uint256) Bytes() []byte {
	b := make([]byte, uint256Size)
	for i := 0; i < uint256Size; i++ {
		b[i] = byte(u[i])
	}
	return b
}

// BytesReverse return a reversed byte representation of u.
func (u Uint256) BytesReverse() []byte {
	return ArrayReverse(u.Bytes())
}

// Uint256DecodeBytesBE attempts to decode the given big-endian bytes into an Uint256.
func Uint256DecodeBytesBE(b []byte) (Uint256, error) {
	return Uint256DecodeBytes(b)
}

// Uint256DecodeBytesLE attempts to decode the given little-endian bytes into an Uint256.
func Uint256DecodeBytesLE(b []byte) (u Uint256, err error) {
	if len(b) != uint256Size {
		return u, fmt.Errorf("expected []byte of size %d got %d", uint256Size, len(b))
	}
	copy(u[:], b)
	return u, nil
}

// Uint256DecodeStringBE attempts to decode the given big-endian string into an Uint256.
func Uint256DecodeStringBE(s string) (Uint256, error) {
	return Uint256DecodeString(s)
}

// Uint256DecodeStringLE attempts to decode the given little-endian string into an Uint256.
func Uint256DecodeStringLE(s string) (u Uint256, err error) {
	if len(s) != uint256Size*2 {
		return u, fmt.Errorf("expected string size of %d got %d", uint256Size*2, len(s))
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return u, err
	}
	return Uint256DecodeBytesLE(b)
}

// BytesBE returns a big-endian byte representation of u.
func (u Uint256) BytesBE() []byte {
	return u.BytesReverse()
}

// BytesLE returns a little-endian byte representation of u.
func (u Uint256) BytesLE() []byte {
	return u.Bytes()
}

// StringBE returns a big-endian string representation of u.
func (u Uint256) StringBE() string {
	return u.String()
}

// StringLE returns a little-endian string representation of u.
func (u Uint256) StringLE() string {
	return hex.EncodeToString(u.Bytes())
}

// Equals returns true if both Uint256 values are the same.
func (u Uint256) Equals(other Uint256) bool {
	return u.String() == other.String()
}

// String implements the stringer interface.
func (u Uint256) String() string {
	return hex.EncodeToString(ArrayReverse(u.Bytes()))
}

// UnmarshalJSON implements the json unmarshaller interface.
func (u *Uint256) UnmarshalJSON(data []byte) (err error) {
	var js string
	if err = json.Unmarshal(data, &js); err != nil {
		return err
	}
	if strings.HasPrefix(js, "0x") {
		js = js[2:]
	}
	*u, err = Uint256DecodeString(js)
	return err
}

// MarshalJSON implements the json marshaller interface.
func (u Uint256) MarshalJSON() ([]byte, error) {
	return json.Marshal(fmt.Sprintf("0x%s", u.String()))
}
