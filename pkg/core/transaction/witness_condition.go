package transaction

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/n3lab/ledger-core/pkg/crypto/keys"
	"github.com/n3lab/ledger-core/pkg/io"
	"github.com/n3lab/ledger-core/pkg/util"
)

// WitnessConditionType is the type of a rule-based witness condition.
type WitnessConditionType byte

// Possible witness condition types.
const (
	ConditionBooleanT         WitnessConditionType = 0x00
	ConditionNotT             WitnessConditionType = 0x01
	ConditionAndT             WitnessConditionType = 0x02
	ConditionOrT              WitnessConditionType = 0x03
	ConditionScriptHashT      WitnessConditionType = 0x18
	ConditionGroupT           WitnessConditionType = 0x19
	ConditionCalledByEntryT   WitnessConditionType = 0x20
	ConditionCalledByContractT WitnessConditionType = 0x28
	ConditionCalledByGroupT   WitnessConditionType = 0x29

	// MaxConditionNesting is the maximum allowed depth of Not/And/Or condition nesting.
	MaxConditionNesting = 2
	// MaxConditionListLength is the maximum number of subconditions in And/Or.
	MaxConditionListLength = 16
)

// WitnessCondition represents a condition of a rule-based witness scope.
type WitnessCondition interface {
	io.Serializable
	json.Marshaler
	json.Unmarshaler
	// Type returns the type of this condition.
	Type() WitnessConditionType
	// Match checks if the condition is satisfied against the given context.
	// Only ConditionCalledByEntry/Group/Contract and ConditionScriptHash/Group
	// and the boolean combinators require real evaluation; ConditionBoolean
	// evaluates to its stored value.
}

func decodeCondition(br *io.BinReader, depth int) WitnessCondition {
	if depth <= 0 {
		br.Err = errors.New("too deeply nested witness condition")
		return nil
	}
	typ := WitnessConditionType(br.ReadB())
	if br.Err != nil {
		return nil
	}
	var c WitnessCondition
	switch typ {
	case ConditionBooleanT:
		var b bool
		v := (*ConditionBoolean)(&b)
		v.DecodeBinary(br)
		c = v
	case ConditionNotT:
		v := &ConditionNot{}
		v.decodeBinary(br, depth)
		c = v
	case ConditionAndT:
		v := &ConditionAnd{}
		v.decodeBinary(br, depth)
		c = v
	case ConditionOrT:
		v := &ConditionOr{}
		v.decodeBinary(br, depth)
		c = v
	case ConditionScriptHashT:
		v := &ConditionScriptHash{}
		v.DecodeBinary(br)
		c = v
	case ConditionGroupT:
		v := &ConditionGroup{}
		v.DecodeBinary(br)
		c = v
	case ConditionCalledByEntryT:
		c = &ConditionCalledByEntry{}
	case ConditionCalledByContractT:
		v := &ConditionCalledByContract{}
		v.DecodeBinary(br)
		c = v
	case ConditionCalledByGroupT:
		v := &ConditionCalledByGroup{}
		v.DecodeBinary(br)
		c = v
	default:
		br.Err = fmt.Errorf("unknown witness condition type %d", typ)
		return nil
	}
	if br.Err != nil {
		return nil
	}
	return c
}

// DecodeBinaryCondition reads a single WitnessCondition from br.
func DecodeBinaryCondition(br *io.BinReader) WitnessCondition {
	return decodeCondition(br, MaxConditionNesting+1)
}

func encodeCondition(bw *io.BinWriter, c WitnessCondition) {
	bw.WriteB(byte(c.Type()))
	c.EncodeBinary(bw)
}

// ConditionBoolean is a boolean-valued witness condition.
type ConditionBoolean bool

// Type implements the WitnessCondition interface.
func (c *ConditionBoolean) Type() WitnessConditionType { return ConditionBooleanT }

// EncodeBinary implements the io.Serializable interface.
func (c *ConditionBoolean) EncodeBinary(w *io.BinWriter) { w.WriteBool(bool(*c)) }

// DecodeBinary implements the io.Serializable interface.
func (c *ConditionBoolean) DecodeBinary(r *io.BinReader) { *c = ConditionBoolean(r.ReadBool()) }

// MarshalJSON implements the json.Marshaler interface.
func (c *ConditionBoolean) MarshalJSON() ([]byte, error) {
	return json.Marshal(conditionJSON{Type: "Boolean", Expression: bool(*c)})
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (c *ConditionBoolean) UnmarshalJSON(data []byte) error {
	aux := new(conditionJSON)
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}
	if aux.Type != "Boolean" {
		return fmt.Errorf("invalid condition type: %s", aux.Type)
	}
	b, ok := aux.Expression.(bool)
	if !ok {
		return errors.New("expression is not a boolean")
	}
	*c = ConditionBoolean(b)
	return nil
}

type conditionJSON struct {
	Type       string `json:"type"`
	Expression any    `json:"expression,omitempty"`
	Hash       any    `json:"hash,omitempty"`
	Group      any    `json:"group,omitempty"`
	Condition  any    `json:"condition,omitempty"`
	Expressions any   `json:"expressions,omitempty"`
}

// ConditionNot negates the result of the wrapped condition.
type ConditionNot struct {
	Condition WitnessCondition
}

// Type implements the WitnessCondition interface.
func (c *ConditionNot) Type() WitnessConditionType { return ConditionNotT }

func (c *ConditionNot) decodeBinary(br *io.BinReader, depth int) {
	c.Condition = decodeCondition(br, depth-1)
}

// EncodeBinary implements the io.Serializable interface.
func (c *ConditionNot) EncodeBinary(w *io.BinWriter) { encodeCondition(w, c.Condition) }

// DecodeBinary implements the io.Serializable interface.
func (c *ConditionNot) DecodeBinary(br *io.BinReader) { c.decodeBinary(br, MaxConditionNesting) }

// MarshalJSON implements the json.Marshaler interface.
func (c *ConditionNot) MarshalJSON() ([]byte, error) {
	raw, err := c.Condition.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return json.Marshal(conditionJSON{Type: "Not", Condition: json.RawMessage(raw)})
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (c *ConditionNot) UnmarshalJSON(data []byte) error {
	aux := new(struct {
		Type      string          `json:"type"`
		Condition json.RawMessage `json:"condition"`
	})
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}
	if aux.Type != "Not" {
		return fmt.Errorf("invalid condition type: %s", aux.Type)
	}
	cond, err := unmarshalConditionJSON(aux.Condition)
	if err != nil {
		return err
	}
	c.Condition = cond
	return nil
}

// ConditionAnd requires all subconditions to hold.
type ConditionAnd []WitnessCondition

// Type implements the WitnessCondition interface.
func (c *ConditionAnd) Type() WitnessConditionType { return ConditionAndT }

func (c *ConditionAnd) decodeBinary(br *io.BinReader, depth int) {
	l := br.ReadVarUint()
	if br.Err != nil {
		return
	}
	if l == 0 || l > MaxConditionListLength {
		br.Err = errors.New("invalid And condition list length")
		return
	}
	list := make(ConditionAnd, l)
	for i := range list {
		list[i] = decodeCondition(br, depth-1)
		if br.Err != nil {
			return
		}
	}
	*c = list
}

// EncodeBinary implements the io.Serializable interface.
func (c *ConditionAnd) EncodeBinary(w *io.BinWriter) {
	w.WriteVarUint(uint64(len(*c)))
	for _, cond := range *c {
		encodeCondition(w, cond)
	}
}

// DecodeBinary implements the io.Serializable interface.
func (c *ConditionAnd) DecodeBinary(br *io.BinReader) { c.decodeBinary(br, MaxConditionNesting) }

// MarshalJSON implements the json.Marshaler interface.
func (c *ConditionAnd) MarshalJSON() ([]byte, error) {
	return marshalConditionList("And", *c)
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (c *ConditionAnd) UnmarshalJSON(data []byte) error {
	list, err := unmarshalConditionList("And", data)
	if err != nil {
		return err
	}
	*c = list
	return nil
}

// ConditionOr requires at least one subcondition to hold.
type ConditionOr []WitnessCondition

// Type implements the WitnessCondition interface.
func (c *ConditionOr) Type() WitnessConditionType { return ConditionOrT }

func (c *ConditionOr) decodeBinary(br *io.BinReader, depth int) {
	l := br.ReadVarUint()
	if br.Err != nil {
		return
	}
	if l == 0 || l > MaxConditionListLength {
		br.Err = errors.New("invalid Or condition list length")
		return
	}
	list := make(ConditionOr, l)
	for i := range list {
		list[i] = decodeCondition(br, depth-1)
		if br.Err != nil {
			return
		}
	}
	*c = list
}

// EncodeBinary implements the io.Serializable interface.
func (c *ConditionOr) EncodeBinary(w *io.BinWriter) {
	w.WriteVarUint(uint64(len(*c)))
	for _, cond := range *c {
		encodeCondition(w, cond)
	}
}

// DecodeBinary implements the io.Serializable interface.
func (c *ConditionOr) DecodeBinary(br *io.BinReader) { c.decodeBinary(br, MaxConditionNesting) }

// MarshalJSON implements the json.Marshaler interface.
func (c *ConditionOr) MarshalJSON() ([]byte, error) {
	return marshalConditionList("Or", *c)
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (c *ConditionOr) UnmarshalJSON(data []byte) error {
	list, err := unmarshalConditionList("Or", data)
	if err != nil {
		return err
	}
	*c = list
	return nil
}

func marshalConditionList(typ string, list []WitnessCondition) ([]byte, error) {
	raw := make([]json.RawMessage, len(list))
	for i, c := range list {
		b, err := c.MarshalJSON()
		if err != nil {
			return nil, err
		}
		raw[i] = b
	}
	return json.Marshal(conditionJSON{Type: typ, Expressions: raw})
}

func unmarshalConditionList(typ string, data []byte) ([]WitnessCondition, error) {
	aux := new(struct {
		Type        string            `json:"type"`
		Expressions []json.RawMessage `json:"expressions"`
	})
	if err := json.Unmarshal(data, aux); err != nil {
		return nil, err
	}
	if aux.Type != typ {
		return nil, fmt.Errorf("invalid condition type: %s", aux.Type)
	}
	if len(aux.Expressions) == 0 || len(aux.Expressions) > MaxConditionListLength {
		return nil, errors.New("invalid condition list length")
	}
	list := make([]WitnessCondition, len(aux.Expressions))
	for i, raw := range aux.Expressions {
		cond, err := unmarshalConditionJSON(raw)
		if err != nil {
			return nil, err
		}
		list[i] = cond
	}
	return list, nil
}

// ConditionScriptHash requires the condition script hash to appear in the
// call stack of the executing transaction.
type ConditionScriptHash util.Uint160

// Type implements the WitnessCondition interface.
func (c *ConditionScriptHash) Type() WitnessConditionType { return ConditionScriptHashT }

// EncodeBinary implements the io.Serializable interface.
func (c *ConditionScriptHash) EncodeBinary(w *io.BinWriter) { w.WriteBytes(c[:]) }

// DecodeBinary implements the io.Serializable interface.
func (c *ConditionScriptHash) DecodeBinary(r *io.BinReader) { r.ReadBytes(c[:]) }

// MarshalJSON implements the json.Marshaler interface.
func (c *ConditionScriptHash) MarshalJSON() ([]byte, error) {
	return json.Marshal(conditionJSON{Type: "ScriptHash", Hash: util.Uint160(*c).StringLE()})
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (c *ConditionScriptHash) UnmarshalJSON(data []byte) error {
	aux := new(struct {
		Type string `json:"type"`
		Hash string `json:"hash"`
	})
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}
	if aux.Type != "ScriptHash" {
		return fmt.Errorf("invalid condition type: %s", aux.Type)
	}
	u, err := util.Uint160DecodeStringLE(aux.Hash)
	if err != nil {
		return err
	}
	*c = ConditionScriptHash(u)
	return nil
}

// ConditionGroup requires the executing contract to belong to the given group.
type ConditionGroup keys.PublicKey

// Type implements the WitnessCondition interface.
func (c *ConditionGroup) Type() WitnessConditionType { return ConditionGroupT }

// EncodeBinary implements the io.Serializable interface.
func (c *ConditionGroup) EncodeBinary(w *io.BinWriter) { (*keys.PublicKey)(c).EncodeBinary(w) }

// DecodeBinary implements the io.Serializable interface.
func (c *ConditionGroup) DecodeBinary(r *io.BinReader) { (*keys.PublicKey)(c).DecodeBinary(r) }

// MarshalJSON implements the json.Marshaler interface.
func (c *ConditionGroup) MarshalJSON() ([]byte, error) {
	return json.Marshal(conditionJSON{Type: "Group", Group: hex.EncodeToString((*keys.PublicKey)(c).Bytes())})
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (c *ConditionGroup) UnmarshalJSON(data []byte) error {
	aux := new(struct {
		Type  string `json:"type"`
		Group string `json:"group"`
	})
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}
	if aux.Type != "Group" {
		return fmt.Errorf("invalid condition type: %s", aux.Type)
	}
	pub, err := keys.NewPublicKeyFromString(aux.Group)
	if err != nil {
		return err
	}
	*c = ConditionGroup(*pub)
	return nil
}

// ConditionCalledByEntry matches if the entry script is the one calling.
type ConditionCalledByEntry struct{}

// Type implements the WitnessCondition interface.
func (c *ConditionCalledByEntry) Type() WitnessConditionType { return ConditionCalledByEntryT }

// EncodeBinary implements the io.Serializable interface.
func (c *ConditionCalledByEntry) EncodeBinary(w *io.BinWriter) {}

// DecodeBinary implements the io.Serializable interface.
func (c *ConditionCalledByEntry) DecodeBinary(r *io.BinReader) {}

// MarshalJSON implements the json.Marshaler interface.
func (c *ConditionCalledByEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal(conditionJSON{Type: "CalledByEntry"})
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (c *ConditionCalledByEntry) UnmarshalJSON(data []byte) error {
	aux := new(struct {
		Type string `json:"type"`
	})
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}
	if aux.Type != "CalledByEntry" {
		return fmt.Errorf("invalid condition type: %s", aux.Type)
	}
	return nil
}

// ConditionCalledByContract matches if the calling script hash is the given one.
type ConditionCalledByContract ConditionScriptHash

// Type implements the WitnessCondition interface.
func (c *ConditionCalledByContract) Type() WitnessConditionType { return ConditionCalledByContractT }

// EncodeBinary implements the io.Serializable interface.
func (c *ConditionCalledByContract) EncodeBinary(w *io.BinWriter) {
	(*ConditionScriptHash)(c).EncodeBinary(w)
}

// DecodeBinary implements the io.Serializable interface.
func (c *ConditionCalledByContract) DecodeBinary(r *io.BinReader) {
	(*ConditionScriptHash)(c).DecodeBinary(r)
}

// MarshalJSON implements the json.Marshaler interface.
func (c *ConditionCalledByContract) MarshalJSON() ([]byte, error) {
	return json.Marshal(conditionJSON{Type: "CalledByContract", Hash: util.Uint160(*c).StringLE()})
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (c *ConditionCalledByContract) UnmarshalJSON(data []byte) error {
	aux := new(struct {
		Type string `json:"type"`
		Hash string `json:"hash"`
	})
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}
	if aux.Type != "CalledByContract" {
		return fmt.Errorf("invalid condition type: %s", aux.Type)
	}
	u, err := util.Uint160DecodeStringLE(aux.Hash)
	if err != nil {
		return err
	}
	*c = ConditionCalledByContract(u)
	return nil
}

// ConditionCalledByGroup matches if the calling contract belongs to the given group.
type ConditionCalledByGroup ConditionGroup

// Type implements the WitnessCondition interface.
func (c *ConditionCalledByGroup) Type() WitnessConditionType { return ConditionCalledByGroupT }

// EncodeBinary implements the io.Serializable interface.
func (c *ConditionCalledByGroup) EncodeBinary(w *io.BinWriter) {
	(*ConditionGroup)(c).EncodeBinary(w)
}

// DecodeBinary implements the io.Serializable interface.
func (c *ConditionCalledByGroup) DecodeBinary(r *io.BinReader) {
	(*ConditionGroup)(c).DecodeBinary(r)
}

// MarshalJSON implements the json.Marshaler interface.
func (c *ConditionCalledByGroup) MarshalJSON() ([]byte, error) {
	return json.Marshal(conditionJSON{Type: "CalledByGroup", Group: hex.EncodeToString(keys.PublicKey(c).Bytes())})
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (c *ConditionCalledByGroup) UnmarshalJSON(data []byte) error {
	aux := new(struct {
		Type  string `json:"type"`
		Group string `json:"group"`
	})
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}
	if aux.Type != "CalledByGroup" {
		return fmt.Errorf("invalid condition type: %s", aux.Type)
	}
	pub, err := keys.NewPublicKeyFromString(aux.Group)
	if err != nil {
		return err
	}
	*c = ConditionCalledByGroup(*pub)
	return nil
}

func unmarshalConditionJSON(data []byte) (WitnessCondition, error) {
	aux := new(struct {
		Type string `json:"type"`
	})
	if err := json.Unmarshal(data, aux); err != nil {
		return nil, err
	}
	var c WitnessCondition
	switch aux.Type {
	case "Boolean":
		var b bool
		c = (*ConditionBoolean)(&b)
	case "Not":
		c = &ConditionNot{}
	case "And":
		c = &ConditionAnd{}
	case "Or":
		c = &ConditionOr{}
	case "ScriptHash":
		c = &ConditionScriptHash{}
	case "Group":
		c = &ConditionGroup{}
	case "CalledByEntry":
		c = &ConditionCalledByEntry{}
	case "CalledByContract":
		c = &ConditionCalledByContract{}
	case "CalledByGroup":
		c = &ConditionCalledByGroup{}
	default:
		return nil, fmt.Errorf("unknown condition type: %s", aux.Type)
	}
	if err := c.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return c, nil
}
