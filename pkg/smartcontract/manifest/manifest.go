package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/n3lab/ledger-core/pkg/io"
	"github.com/n3lab/ledger-core/pkg/util"
	"github.com/n3lab/ledger-core/pkg/vm/stackitem"
)

const (
	// MaxManifestSize is a max length for a valid contract manifest.
	MaxManifestSize = math.MaxUint16

	// NEP10StandardName represents the name of NEP10 smartcontract standard.
	NEP10StandardName = "NEP-10"
	// NEP17StandardName represents the name of NEP17 smartcontract standard.
	NEP17StandardName = "NEP-17"
)

// Manifest represents contract metadata.
type Manifest struct {
	// Name is a contract's name.
	Name string `json:"name"`
	// Groups is a set of groups to which a contract belongs.
	Groups []Group `json:"groups"`
	// SupportedStandards is a list of standards supported by the contract.
	SupportedStandards []string `json:"supportedstandards"`
	// ABI is a contract's ABI.
	ABI ABI `json:"abi"`
	// Permissions is a set of permissions for a contract.
	Permissions Permissions `json:"permissions"`
	// Trusts is a set of contracts that can call this contract without
	// triggering "invalid method call" check, identified by hash or group.
	Trusts WildPermissionDescs `json:"trusts"`
	// Extra is an implementation-defined user data.
	Extra interface{} `json:"extra"`
}

// NewManifest returns a new manifest with necessary fields initialized.
func NewManifest(name string) *Manifest {
	m := &Manifest{
		Name:               name,
		Groups:             []Group{},
		SupportedStandards: []string{},
		ABI: ABI{
			Methods: []Method{},
			Events:  []Event{},
		},
	}
	m.Trusts.Restrict()
	return m
}

// DefaultManifest returns the default contract manifest, which allows calling
// any contract method.
func DefaultManifest(name string) *Manifest {
	m := NewManifest(name)
	m.Permissions = Permissions{*NewPermission(PermissionWildcard)}
	return m
}

// CanCall returns true if the current contract is allowed to call the given
// method of the contract identified by hash and manifest.
func (m *Manifest) CanCall(hash util.Uint160, toCall *Manifest, method string) bool {
	for i := range m.Permissions {
		if m.Permissions[i].IsAllowed(hash, toCall, method) {
			return true
		}
	}
	return false
}

// IsValid verifies consistency of the manifest, checking that it has no
// duplicate standards, groups, permissions or ABI entries. When checkSize is
// true, the JSON-encoded size of the manifest is checked against
// MaxManifestSize as well.
func (m *Manifest) IsValid(hash util.Uint160, checkSize bool) error {
	for _, g := range m.Groups {
		if err := g.IsValid(hash); err != nil {
			return fmt.Errorf("invalid group: %w", err)
		}
	}
	if err := m.ABI.IsValid(); err != nil {
		return fmt.Errorf("invalid ABI: %w", err)
	}
	if err := m.Permissions.AreValid(); err != nil {
		return fmt.Errorf("invalid permissions: %w", err)
	}
	if len(m.SupportedStandards) > 1 {
		std := make([]string, len(m.SupportedStandards))
		copy(std, m.SupportedStandards)
		if stringsHaveDups(std) {
			return errors.New("duplicate supported standards")
		}
	}
	if checkSize {
		data, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("can't marshal manifest: %w", err)
		}
		if len(data) > MaxManifestSize {
			return errors.New("manifest is too large")
		}
	}
	return nil
}

// ToStackItem converts Manifest to stackitem.Item.
func (m *Manifest) ToStackItem() (stackitem.Item, error) {
	groups := make([]stackitem.Item, len(m.Groups))
	for i := range m.Groups {
		groups[i] = m.Groups[i].ToStackItem()
	}
	std := make([]stackitem.Item, len(m.SupportedStandards))
	for i := range m.SupportedStandards {
		std[i] = stackitem.Make(m.SupportedStandards[i])
	}
	perms := make([]stackitem.Item, len(m.Permissions))
	for i := range m.Permissions {
		perms[i] = m.Permissions[i].ToStackItem()
	}
	var trusts stackitem.Item
	if m.Trusts.IsWildcard() {
		trusts = stackitem.Null{}
	} else {
		tItems := make([]stackitem.Item, len(m.Trusts.Value))
		for i := range m.Trusts.Value {
			tItems[i] = m.Trusts.Value[i].ToStackItem()
		}
		trusts = stackitem.Make(tItems)
	}
	return stackitem.NewStruct([]stackitem.Item{
		stackitem.Make(m.Name),
		stackitem.Make(groups),
		stackitem.Make(std),
		m.ABI.ToStackItem(),
		stackitem.Make(perms),
		trusts,
		stackitem.Null{},
	}), nil
}

// FromStackItem converts stackitem.Item to Manifest.
func (m *Manifest) FromStackItem(item stackitem.Item) error {
	var err error
	if item.Type() != stackitem.StructT {
		return errors.New("invalid Manifest stackitem type")
	}
	str := item.Value().([]stackitem.Item)
	if len(str) != 7 {
		return errors.New("invalid Manifest stackitem length")
	}
	m.Name, err = stackitem.ToString(str[0])
	if err != nil {
		return err
	}
	if str[1].Type() != stackitem.ArrayT {
		return errors.New("invalid Groups stackitem type")
	}
	groups := str[1].Value().([]stackitem.Item)
	m.Groups = make([]Group, len(groups))
	for i := range groups {
		g := new(Group)
		if err := g.FromStackItem(groups[i]); err != nil {
			return err
		}
		m.Groups[i] = *g
	}
	if str[2].Type() != stackitem.ArrayT {
		return errors.New("invalid SupportedStandards stackitem type")
	}
	std := str[2].Value().([]stackitem.Item)
	m.SupportedStandards = make([]string, len(std))
	for i := range std {
		m.SupportedStandards[i], err = stackitem.ToString(std[i])
		if err != nil {
			return err
		}
	}
	if err := m.ABI.FromStackItem(str[3]); err != nil {
		return fmt.Errorf("invalid ABI: %w", err)
	}
	if str[4].Type() != stackitem.ArrayT {
		return errors.New("invalid Permissions stackitem type")
	}
	perms := str[4].Value().([]stackitem.Item)
	m.Permissions = make(Permissions, len(perms))
	for i := range perms {
		p := new(Permission)
		if err := p.FromStackItem(perms[i]); err != nil {
			return err
		}
		m.Permissions[i] = *p
	}
	if _, ok := str[5].(stackitem.Null); ok {
		m.Trusts = WildPermissionDescs{Wildcard: true}
	} else {
		if str[5].Type() != stackitem.ArrayT {
			return errors.New("invalid Trusts stackitem type")
		}
		trusts := str[5].Value().([]stackitem.Item)
		m.Trusts = WildPermissionDescs{Value: make([]PermissionDesc, len(trusts))}
		for i := range trusts {
			d := new(PermissionDesc)
			if err := d.FromStackItem(trusts[i]); err != nil {
				return err
			}
			m.Trusts.Value[i] = *d
		}
	}
	return nil
}

// EncodeBinary implements io.Serializable.
func (m *Manifest) EncodeBinary(w *io.BinWriter) {
	data, err := json.Marshal(m)
	if err != nil {
		w.Err = err
		return
	}
	w.WriteVarBytes(data)
}

// DecodeBinary implements io.Serializable.
func (m *Manifest) DecodeBinary(r *io.BinReader) {
	data := r.ReadVarBytes(MaxManifestSize)
	if r.Err != nil {
		return
	} else if err := json.Unmarshal(data, m); err != nil {
		r.Err = err
	}
}
