package transaction

import "github.com/n3lab/ledger-core/pkg/io"

// AttrType represents the purpose of the attribute.
type AttrType uint8

// List of valid attribute types.
const (
	// HighPriority allows transaction to be executed first in the block
	// if it's included into the committee.
	HighPriority AttrType = 1
	// OracleResponseT is a type of Oracle response transaction attribute.
	OracleResponseT AttrType = 0x11
	// NotValidBeforeT is a transaction attribute type for NotValidBefore.
	NotValidBeforeT AttrType = 0x20
	// ConflictsT is a transaction attribute type for Conflicts.
	ConflictsT AttrType = 0x21
	// NotaryAssistedT is a transaction attribute type for NotaryAssisted.
	NotaryAssistedT AttrType = 0x22
	// RefundableSystemFeeT is a transaction attribute type for RefundableSystemFee.
	RefundableSystemFeeT AttrType = 0x23

	// ReservedLowerBound is the lower bound of reserved attribute types that
	// can be used only if ReservedAttributes are enabled.
	ReservedLowerBound = 0xe0
	// ReservedUpperBound is the upper bound of reserved attribute types that
	// can be used only if ReservedAttributes are enabled.
	ReservedUpperBound = 0xff
)

// AttrValue represents a Transaction Attribute value.
type AttrValue interface {
	io.Serializable
	// Copy returns a deep copy of the attribute value.
	Copy() AttrValue
	toJSONMap(map[string]any)
}

// IsValidAttrType denotes whether specified AttrType is valid. In case
// reserved attributes are enabled by the protocol configuration, the
// reserved attribute range is allowed as well.
func IsValidAttrType(reservedAttributesEnabled bool, attrType AttrType) bool {
	switch attrType {
	case HighPriority, OracleResponseT, NotValidBeforeT, ConflictsT, NotaryAssistedT, RefundableSystemFeeT:
		return true
	default:
		return reservedAttributesEnabled && attrType >= ReservedLowerBound && attrType <= ReservedUpperBound
	}
}
