package vm

import (
	"github.com/n3lab/ledger-core/pkg/core/interop/interopnames"
	"github.com/n3lab/ledger-core/pkg/vm/opcode"
)

var (
	verifyID          = interopnames.ToID([]byte(interopnames.NeoCryptoVerifyWithECDsaSecp256r1))
	checkMultisigID   = interopnames.ToID([]byte(interopnames.NeoCryptoCheckMultisigWithECDsaSecp256r1))
)

// IsSignatureContract checks whether the given script is a standard
// single-signature verification script: PUSHDATA1 <33-byte pubkey> SYSCALL
// Neo.Crypto.VerifyWithECDsaSecp256r1.
func IsSignatureContract(script []byte) bool {
	if len(script) != 40 {
		return false
	}
	if script[0] != byte(opcode.PUSHDATA1) || script[1] != 33 {
		return false
	}
	if script[35] != byte(opcode.SYSCALL) {
		return false
	}
	return leUint32(script[36:40]) == verifyID
}

// IsMultiSigContract checks whether the given script is a standard
// multisignature verification script and returns true along with the
// threshold and number of public keys if it is.
func IsMultiSigContract(script []byte) (int, int, bool) {
	m, _, ok := ParseMultiSigContract(script)
	if !ok {
		return 0, 0, false
	}
	n, ok := parsePubKeyCount(script)
	if !ok {
		return 0, 0, false
	}
	return m, n, true
}

// ParseMultiSigContract parses a standard multisignature verification
// script, returning the signature threshold and the raw public key bytes in
// declaration order.
func ParseMultiSigContract(script []byte) (int, [][]byte, bool) {
	m, nextOff, ok := parseMultisigM(script)
	if !ok {
		return 0, nil, false
	}
	var pubs [][]byte
	off := nextOff
	for off < len(script) && script[off] == byte(opcode.PUSHDATA1) {
		if off+1 >= len(script) || script[off+1] != 33 {
			return 0, nil, false
		}
		keyStart := off + 2
		keyEnd := keyStart + 33
		if keyEnd > len(script) {
			return 0, nil, false
		}
		pubs = append(pubs, script[keyStart:keyEnd])
		off = keyEnd
	}
	n := len(pubs)
	if n == 0 || m <= 0 || m > n {
		return 0, nil, false
	}
	nVal, off2, ok := parseIntPush(script, off)
	if !ok || nVal != n {
		return 0, nil, false
	}
	off = off2
	if off+4 >= len(script) || script[off] != byte(opcode.SYSCALL) {
		return 0, nil, false
	}
	if leUint32(script[off+1:off+5]) != checkMultisigID {
		return 0, nil, false
	}
	if off+5 != len(script) {
		return 0, nil, false
	}
	return m, pubs, true
}

func parseMultisigM(script []byte) (int, int, bool) {
	return parseIntPush(script, 0)
}

func parsePubKeyCount(script []byte) (int, bool) {
	_, pubs, ok := ParseMultiSigContract(script)
	if !ok {
		return 0, false
	}
	return len(pubs), true
}

// parseIntPush decodes a PUSHINT8/PUSHINT16/small-PUSH integer literal at
// off, returning its value and the offset right after it.
func parseIntPush(script []byte, off int) (int, int, bool) {
	if off >= len(script) {
		return 0, 0, false
	}
	op := opcode.Opcode(script[off])
	switch op {
	case opcode.PUSHINT8:
		if off+2 > len(script) {
			return 0, 0, false
		}
		return int(int8(script[off+1])), off + 2, true
	case opcode.PUSHINT16:
		if off+3 > len(script) {
			return 0, 0, false
		}
		v := int16(script[off+1]) | int16(script[off+2])<<8
		return int(v), off + 3, true
	default:
		return 0, 0, false
	}
}

// IsStandardContract returns true for standard single- or multi-signature
// verification scripts recognized by the system natively.
func IsStandardContract(script []byte) bool {
	if IsSignatureContract(script) {
		return true
	}
	_, _, ok := ParseMultiSigContract(script)
	return ok
}
