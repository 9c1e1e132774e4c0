package transaction

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/n3lab/ledger-core/pkg/io"
)

// Attribute represents a Transaction attribute.
type Attribute struct {
	Type  AttrType
	Value AttrValue
}

// attrJSON is used for JSON I/O of Attribute's type discriminator.
type attrJSON struct {
	Type string `json:"type"`
}

// DecodeBinary implements the io.Serializable interface.
func (attr *Attribute) DecodeBinary(br *io.BinReader) {
	attr.Type = AttrType(br.ReadB())
	switch attr.Type {
	case HighPriority:
		attr.Value = &HighPriorityAttr{}
	case OracleResponseT:
		attr.Value = &OracleResponse{}
	case NotValidBeforeT:
		attr.Value = &NotValidBefore{}
	case ConflictsT:
		attr.Value = &Conflicts{}
	case NotaryAssistedT:
		attr.Value = &NotaryAssisted{}
	case RefundableSystemFeeT:
		attr.Value = &RefundableSystemFee{}
	default:
		if attr.Type >= ReservedLowerBound && attr.Type <= ReservedUpperBound {
			attr.Value = &Reserved{}
			break
		}
		br.Err = fmt.Errorf("attribute of type %d is not supported", attr.Type)
		return
	}
	attr.Value.DecodeBinary(br)
}

// EncodeBinary implements the io.Serializable interface.
func (attr *Attribute) EncodeBinary(w *io.BinWriter) {
	w.WriteB(byte(attr.Type))
	attr.Value.EncodeBinary(w)
}

// MarshalJSON implements the json.Marshaler interface.
func (attr *Attribute) MarshalJSON() ([]byte, error) {
	m := map[string]interface{}{
		"type": attr.Type.String(),
	}
	attr.Value.toJSONMap(m)
	return json.Marshal(m)
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (attr *Attribute) UnmarshalJSON(data []byte) error {
	aux := new(attrJSON)
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}
	var t AttrType
	switch aux.Type {
	case "HighPriority":
		t = HighPriority
		attr.Value = &HighPriorityAttr{}
	case "OracleResponse":
		t = OracleResponseT
		attr.Value = &OracleResponse{}
	case "NotValidBefore":
		t = NotValidBeforeT
		attr.Value = &NotValidBefore{}
	case "Conflicts":
		t = ConflictsT
		attr.Value = &Conflicts{}
	case "NotaryAssisted":
		t = NotaryAssistedT
		attr.Value = &NotaryAssisted{}
	case "RefundableSystemFee":
		t = RefundableSystemFeeT
		attr.Value = &RefundableSystemFee{}
	default:
		return errors.New("unknown attribute type " + aux.Type)
	}
	attr.Type = t
	return json.Unmarshal(data, attr.Value)
}

// String returns a human-readable name of the attribute type, it's used
// both for the JSON marshaling above and for debugging purposes.
func (t AttrType) String() string {
	switch t {
	case HighPriority:
		return "HighPriority"
	case OracleResponseT:
		return "OracleResponse"
	case NotValidBeforeT:
		return "NotValidBefore"
	case ConflictsT:
		return "Conflicts"
	case NotaryAssistedT:
		return "NotaryAssisted"
	case RefundableSystemFeeT:
		return "RefundableSystemFee"
	default:
		return "Reserved"
	}
}

// HighPriorityAttr is an AttrValue carrying no data of its own; its mere
// presence on a transaction marks it as high priority.
type HighPriorityAttr struct{}

// DecodeBinary implements the io.Serializable interface.
func (a *HighPriorityAttr) DecodeBinary(br *io.BinReader) {}

// EncodeBinary implements the io.Serializable interface.
func (a *HighPriorityAttr) EncodeBinary(w *io.BinWriter) {}

func (a *HighPriorityAttr) toJSONMap(m map[string]interface{}) {}

// Copy implements the AttrValue interface.
func (a *HighPriorityAttr) Copy() AttrValue {
	return &HighPriorityAttr{}
}

// Copy returns a deep copy of the attribute.
func (attr *Attribute) Copy() *Attribute {
	if attr == nil {
		return nil
	}
	cp := &Attribute{Type: attr.Type}
	if attr.Value != nil {
		cp.Value = attr.Value.Copy()
	}
	return cp
}
