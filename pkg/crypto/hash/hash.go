package hash

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/n3lab/ledger-core/pkg/util"
	"golang.org/x/crypto/ripemd160"
)

// Hashable represents an object which can be hashed, i.e. one that
// can provide its signed part for double-SHA256 hashing.
type Hashable interface {
	GetSignedPart() []byte
}

// Sha256 hashes the incoming byte slice using the sha256 algorithm.
func Sha256(data []byte) util.Uint256 {
	var hash = sha256.Sum256(data)
	return util.Uint256(hash)
}

// DoubleSha256 performs sha256 twice on the given data.
func DoubleSha256(data []byte) util.Uint256 {
	h1 := Sha256(data)
	h2 := Sha256(h1.BytesBE())
	return h2
}

// RipeMD160 performs the RIPEMD160 hash algorithm on the given data.
func RipeMD160(data []byte) util.Uint160 {
	hasher := ripemd160.New()
	_, _ = hasher.Write(data)
	var u util.Uint160
	copy(u[:], hasher.Sum(nil))
	return u
}

// Hash160 performs sha256 and then ripemd160 on the given data.
func Hash160(data []byte) util.Uint160 {
	return RipeMD160(Sha256(data).BytesBE())
}

// Checksum returns the checksum for a given piece of data using
// double sha256 as the hash algorithm.
func Checksum(data []byte) []byte {
	h := DoubleSha256(data)
	return h.BytesBE()[:4]
}

// NetSha256 returns a hash of the Hashable item's signed part taking into
// account the specified network magic, protecting the signature from being
// replayed on a different network.
func NetSha256(net uint32, hh Hashable) util.Uint256 {
	b := hh.GetSignedPart()
	buf := make([]byte, 4+len(b))
	binary.LittleEndian.PutUint32(buf, net)
	copy(buf[4:], b)
	return DoubleSha256(buf)
}
