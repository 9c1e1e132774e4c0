package transaction

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/n3lab/ledger-core/pkg/io"
)

// WitnessAction is an action performed if witness rule condition matches.
type WitnessAction byte

// Possible WitnessAction values.
const (
	WitnessDeny  WitnessAction = 0
	WitnessAllow WitnessAction = 1
)

// String implements the Stringer interface.
func (a WitnessAction) String() string {
	switch a {
	case WitnessDeny:
		return "Deny"
	case WitnessAllow:
		return "Allow"
	default:
		return fmt.Sprintf("WitnessAction(%d)", byte(a))
	}
}

// WitnessRule represents a single rule for a Rules-scoped signer.
type WitnessRule struct {
	Action    WitnessAction
	Condition WitnessCondition
}

// EncodeBinary implements the io.Serializable interface.
func (r *WitnessRule) EncodeBinary(w *io.BinWriter) {
	w.WriteB(byte(r.Action))
	encodeCondition(w, r.Condition)
}

// DecodeBinary implements the io.Serializable interface.
func (r *WitnessRule) DecodeBinary(br *io.BinReader) {
	r.Action = WitnessAction(br.ReadB())
	if br.Err != nil {
		return
	}
	if r.Action != WitnessAllow && r.Action != WitnessDeny {
		br.Err = fmt.Errorf("unknown witness action: %d", r.Action)
		return
	}
	r.Condition = DecodeBinaryCondition(br)
}

type witnessRuleJSON struct {
	Action    string          `json:"action"`
	Condition json.RawMessage `json:"condition"`
}

// MarshalJSON implements the json.Marshaler interface.
func (r *WitnessRule) MarshalJSON() ([]byte, error) {
	raw, err := r.Condition.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return json.Marshal(witnessRuleJSON{Action: r.Action.String(), Condition: raw})
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (r *WitnessRule) UnmarshalJSON(data []byte) error {
	aux := new(witnessRuleJSON)
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}
	switch aux.Action {
	case "Deny":
		r.Action = WitnessDeny
	case "Allow":
		r.Action = WitnessAllow
	default:
		return errors.New("unknown witness action: " + aux.Action)
	}
	if len(aux.Condition) == 0 {
		return errors.New("missing witness condition")
	}
	cond, err := unmarshalConditionJSON(aux.Condition)
	if err != nil {
		return err
	}
	r.Condition = cond
	return nil
}
