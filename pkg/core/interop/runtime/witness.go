package runtime

import (
	"github.com/n3lab/ledger-core/pkg/core/dao"
	"github.com/n3lab/ledger-core/pkg/core/interop"
	"github.com/n3lab/ledger-core/pkg/core/transaction"
	"github.com/n3lab/ledger-core/pkg/crypto/keys"
	"github.com/n3lab/ledger-core/pkg/util"
	"github.com/n3lab/ledger-core/pkg/vm"
	"github.com/pkg/errors"
)

// CheckHashedWitness checks given hash against current list of script hashes
// for verifying in the interop context.
func CheckHashedWitness(ic *interop.Context, hash util.Uint160) (bool, error) {
	v := ic.VM
	if ic.Tx != nil {
		return checkScope(ic.DAO, ic.Tx, v, hash)
	}

	// only for non-Transaction containers (Block, etc.)
	hashes, err := ic.Chain.GetScriptHashesForVerifying(ic.Tx)
	if err != nil {
		return false, errors.Wrap(err, "failed to get script hashes")
	}
	for _, h := range hashes {
		if hash.Equals(h) {
			return true, nil
		}
	}
	return false, nil
}

func checkScope(d dao.DAO, tx *transaction.Transaction, v vm.ScriptHashGetter, hash util.Uint160) (bool, error) {
	for _, c := range tx.Signers {
		if !c.Account.Equals(hash) {
			continue
		}
		if c.Scopes == transaction.Global {
			return true, nil
		}
		if c.Scopes&transaction.CalledByEntry != 0 {
			if v.GetCallingScriptHash().Equals(v.GetEntryScriptHash()) {
				return true, nil
			}
		}
		if c.Scopes&transaction.CustomContracts != 0 {
			currentScriptHash := v.GetCurrentScriptHash()
			for _, allowedContract := range c.AllowedContracts {
				if allowedContract.Equals(currentScriptHash) {
					return true, nil
				}
			}
		}
		if c.Scopes&transaction.CustomGroups != 0 {
			ok, err := groupMatches(d, v.GetCallingScriptHash(), c.AllowedGroups)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		if c.Scopes&transaction.Rules != 0 {
			for _, r := range c.Rules {
				matched, err := matchCondition(d, v, r.Condition)
				if err != nil {
					return false, err
				}
				if matched {
					return r.Action == transaction.WitnessAllow, nil
				}
			}
		}
		return false, nil
	}
	return false, nil
}

func groupMatches(d dao.DAO, callingScriptHash util.Uint160, allowed []*keys.PublicKey) (bool, error) {
	if callingScriptHash.Equals(util.Uint160{}) {
		return false, nil
	}
	cs, err := d.GetContractState(callingScriptHash)
	if err != nil {
		return false, nil
	}
	for _, allowedGroup := range allowed {
		for _, group := range cs.Manifest.Groups {
			if group.PublicKey.Equal(allowedGroup) {
				return true, nil
			}
		}
	}
	return false, nil
}

// matchCondition evaluates a rule-based witness condition against the
// currently executing VM invocation stack.
func matchCondition(d dao.DAO, v vm.ScriptHashGetter, c transaction.WitnessCondition) (bool, error) {
	switch cond := c.(type) {
	case *transaction.ConditionBoolean:
		return bool(*cond), nil
	case *transaction.ConditionNot:
		res, err := matchCondition(d, v, cond.Condition)
		if err != nil {
			return false, err
		}
		return !res, nil
	case *transaction.ConditionAnd:
		for _, sub := range *cond {
			res, err := matchCondition(d, v, sub)
			if err != nil {
				return false, err
			}
			if !res {
				return false, nil
			}
		}
		return true, nil
	case *transaction.ConditionOr:
		for _, sub := range *cond {
			res, err := matchCondition(d, v, sub)
			if err != nil {
				return false, err
			}
			if res {
				return true, nil
			}
		}
		return false, nil
	case *transaction.ConditionScriptHash:
		return v.GetCurrentScriptHash().Equals(util.Uint160(*cond)), nil
	case *transaction.ConditionGroup:
		cs, err := d.GetContractState(v.GetCurrentScriptHash())
		if err != nil {
			return false, nil
		}
		pub := keys.PublicKey(*cond)
		for _, group := range cs.Manifest.Groups {
			if group.PublicKey.Equal(&pub) {
				return true, nil
			}
		}
		return false, nil
	case *transaction.ConditionCalledByEntry:
		return v.GetCallingScriptHash().Equals(v.GetEntryScriptHash()), nil
	case *transaction.ConditionCalledByContract:
		return v.GetCallingScriptHash().Equals(util.Uint160(*cond)), nil
	case *transaction.ConditionCalledByGroup:
		cs, err := d.GetContractState(v.GetCallingScriptHash())
		if err != nil {
			return false, nil
		}
		pub := keys.PublicKey(*cond)
		for _, group := range cs.Manifest.Groups {
			if group.PublicKey.Equal(&pub) {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, nil
	}
}

// CheckKeyedWitness checks hash of signature check contract with a given public
// key against current list of script hashes for verifying in the interop context.
func CheckKeyedWitness(ic *interop.Context, key *keys.PublicKey) (bool, error) {
	return CheckHashedWitness(ic, key.GetScriptHash())
}

// CheckWitness checks witnesses.
func CheckWitness(ic *interop.Context, v *vm.VM) error {
	var res bool
	var err error

	hashOrKey := v.Estack().Pop().Bytes()
	hash, err := util.Uint160DecodeBytesBE(hashOrKey)
	if err != nil {
		key := &keys.PublicKey{}
		err = key.DecodeBytes(hashOrKey)
		if err != nil {
			return errors.New("parameter given is neither a key nor a hash")
		}
		res, err = CheckKeyedWitness(ic, key)
	} else {
		res, err = CheckHashedWitness(ic, hash)
	}
	if err != nil {
		return errors.Wrap(err, "failed to check")
	}
	v.Estack().PushVal(res)
	return nil
}
