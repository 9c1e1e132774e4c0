// Package bigint implements the fixed-width, two's-complement integer
// codec used by the execution VM's stack items: values are serialized
// little-endian, with the sign carried in the high bit of the last byte
// rather than a dedicated sign field.
package bigint

import (
	"math"
	"math/big"
	"math/bits"

	"github.com/holiman/uint256"
	"github.com/n3lab/ledger-core/pkg/util/slice"
)

const (
	// MaxEncodedLen bounds the serialized length of a VM integer (a signed
	// 256-bit value).
	MaxEncodedLen = 32
	// wordBytes is the size of a big.Word (platform uint) in bytes.
	wordBytes = bits.UintSize / 8
)

var one = big.NewInt(1)

// UnsignedFromLE reinterprets little-endian data as an unsigned integer.
func UnsignedFromLE(data []byte) *big.Int {
	bs := slice.CopyReverse(data)
	return new(big.Int).SetBytes(bs)
}

// Uint256UnsignedFromLE reinterprets little-endian data as an unsigned
// 256-bit integer.
func Uint256UnsignedFromLE(data []byte) *uint256.Int {
	bs := slice.CopyReverse(data)
	return new(uint256.Int).SetBytes(bs)
}

// FromBytes decodes a two's-complement, little-endian byte slice into a
// signed integer.
func FromBytes(data []byte) *big.Int {
	n := new(big.Int)
	size := len(data)
	if size == 0 {
		if data == nil {
			panic("nil slice provided to `FromBytes`")
		}
		return big.NewInt(0)
	}

	isNeg := data[size-1]&0x80 != 0

	size = getEffectiveSize(data, isNeg)
	if size == 0 {
		if isNeg {
			return big.NewInt(-1)
		}

		return big.NewInt(0)
	}

	lw := size / wordBytes
	ws := make([]big.Word, lw+1)
	for i := 0; i < lw; i++ {
		base := i * wordBytes
		for j := base + 7; j >= base; j-- {
			ws[i] <<= 8
			ws[i] ^= big.Word(data[j])
		}
	}

	for i := size - 1; i >= lw*wordBytes; i-- {
		ws[lw] <<= 8
		ws[lw] ^= big.Word(data[i])
	}

	if isNeg {
		for i := 0; i <= lw; i++ {
			ws[i] = ^ws[i]
		}

		shift := byte(wordBytes-size%wordBytes) * 8
		ws[lw] = ws[lw] & (^big.Word(0) >> shift)

		n.SetBits(ws)
		n.Neg(n)

		return n.Sub(n, one)
	}

	return n.SetBits(ws)
}

func Uint256FromBytes(data []byte) *uint256.Int {
	n := new(uint256.Int)
	size := len(data)
	if size == 0 {
		if data == nil {
			panic("nil slice provided to `FromBytes`")
		}
		return uint256.NewInt(0)
	}
	isNeg := data[len(data)-1]&0x80 != 0
	slice.Reverse(data)
	if !isNeg {
		n.SetBytes(data)
	} else {
		carry := true
		for i := len(data) - 1; i >= 0; i-- {
			if carry {
				data[i]--
				carry = data[i] == math.MaxUint8
			}
			data[i] = ^data[i]
		}
		n.SetBytes(data)
		n.Neg(n)
	}
	return n
}

// getEffectiveSize returns the minimal number of bytes required
// to represent a number (two's complement for negatives).
func getEffectiveSize(buf []byte, isNeg bool) int {
	var b byte
	if isNeg {
		b = 0xFF
	}

	size := len(buf)
	for ; size > 0; size-- {
		if buf[size-1] != b {
			break
		}
	}

	return size
}

// ToBytes encodes an integer as a two's-complement little-endian slice.
// Unlike C#'s BigInteger.ToByteArray, zero encodes to an empty slice here.
func ToBytes(n *big.Int) []byte {
	return ToPreallocatedBytes(n, []byte{})
}

// ToPreallocatedBytes is ToBytes reusing data's backing array when it has
// enough capacity, to avoid an allocation on the hot serialization path.
func ToPreallocatedBytes(n *big.Int, data []byte) []byte {
	sign := n.Sign()
	if sign == 0 {
		return data[:0]
	}

	if sign < 0 {
		bits := n.Bits()
		carry := true
		nonZero := false
		for i := range bits {
			if carry {
				bits[i]--
				carry = (bits[i] == math.MaxUint)
			}
			nonZero = nonZero || (bits[i] != 0)
		}
		defer func() {
			var carry = true
			for i := range bits {
				if carry {
					bits[i]++
					carry = (bits[i] == 0)
				} else {
					break
				}
			}
		}()
		if !nonZero { // n == -1
			return append(data[:0], 0xFF)
		}
	}

	lb := n.BitLen()/8 + 1

	if c := cap(data); c < lb {
		data = make([]byte, lb)
	} else {
		data = data[:lb]
	}
	_ = n.FillBytes(data)
	slice.Reverse(data)

	if sign == -1 {
		for i := range data {
			data[i] = ^data[i]
		}
	}

	return data
}

func Uint256ToBytes(n *uint256.Int) []byte {
	if n.Sign() == 0 {
		return []byte{}
	}
	fill := true
	var filler byte
	b := n.Bytes()
	if n.Sign() < 0 {
		var sig int
		for ; sig < len(b); sig++ {
			if b[sig] < 0xff {
				if b[sig] >= 0x80 {
					fill = false
				}
				break
			}
		}
		b = b[sig:]
		filler = 0xff
	} else {
		filler = 0
		if b[0] < 0x80 {
			fill = false
		}
	}
	slice.Reverse(b)
	if fill {
		b = append(b, filler)
	}
	return b
}
