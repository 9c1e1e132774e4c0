package interop

import (
	"errors"
	"fmt"
	"sort"

	"github.com/n3lab/ledger-core/pkg/core/block"
	"github.com/n3lab/ledger-core/pkg/core/blockchainer"
	"github.com/n3lab/ledger-core/pkg/core/dao"
	"github.com/n3lab/ledger-core/pkg/core/state"
	"github.com/n3lab/ledger-core/pkg/core/transaction"
	"github.com/n3lab/ledger-core/pkg/smartcontract/callflag"
	"github.com/n3lab/ledger-core/pkg/smartcontract/trigger"
	"github.com/n3lab/ledger-core/pkg/vm"
	"go.uber.org/zap"
)

// Context represents context in which interops are executed: it carries
// the chain/DAO view a native contract or syscall handler needs, plus the
// VM currently running the invocation once SpawnVM has been called.
type Context struct {
	Chain         blockchainer.Blockchainer
	Trigger       trigger.Type
	Block         *block.Block
	Tx            *transaction.Transaction
	DAO           *dao.Cached
	Notifications []state.NotificationEvent
	Log           *zap.Logger

	// VM is the script engine currently executing this invocation. It's
	// nil until SpawnVM is called.
	VM *vm.VM
	// SyscallHandler dispatches SYSCALL instructions raised by VM against
	// Functions. Assigned by SpawnVM; callers needing a lower-level
	// dispatch (e.g. callback invocation) read it back off the context.
	SyscallHandler vm.SyscallHandler
	// Functions holds the sorted interop function tables consulted by
	// SyscallHandler, grouped by registering package (system syscalls,
	// native-specific syscalls, ...).
	Functions [][]Function
}

// NewContext returns new interop context.
func NewContext(trigger trigger.Type, bc blockchainer.Blockchainer, d dao.DAO, block *block.Block, tx *transaction.Transaction, log *zap.Logger) *Context {
	cdao := dao.NewCached(d)
	return &Context{
		Chain:         bc,
		Trigger:       trigger,
		Block:         block,
		Tx:            tx,
		DAO:           cdao,
		Notifications: make([]state.NotificationEvent, 0),
		Log:           log,
	}
}

// SpawnVM creates a fresh VM wired to dispatch SYSCALLs against ic.Functions
// and stores it as ic.VM.
func (ic *Context) SpawnVM() *vm.VM {
	v := vm.New()
	ic.VM = v
	ic.SyscallHandler = func(v *vm.VM, id uint32) error {
		return ic.dispatch(v, id)
	}
	v.SyscallHandler = ic.SyscallHandler
	return v
}

// dispatch looks id up across every registered Function table, enforces its
// required call flags and gas price, and invokes it.
func (ic *Context) dispatch(v *vm.VM, id uint32) error {
	for _, table := range ic.Functions {
		n := sort.Search(len(table), func(i int) bool { return table[i].ID >= id })
		if n >= len(table) || table[n].ID != id {
			continue
		}
		f := table[n]
		if !v.Context().GetCallFlags().Has(f.RequiredFlags) {
			return fmt.Errorf("missing call flags: %05b vs %05b", v.Context().GetCallFlags(), f.RequiredFlags)
		}
		if f.Price != 0 && !v.AddGas(int64(f.Price)) {
			return errors.New("insufficient amount of gas")
		}
		return f.Func(ic, v)
	}
	return errors.New("syscall not found")
}

// Function binds a syscall name and numeric ID to its handler, gas price,
// expected argument count and required call flags. It's meant to be
// initialized once into a package-level table and handed to Sort.
type Function struct {
	ID            uint32
	Name          string
	Func          func(*Context, *vm.VM) error
	Price         int64
	RequiredFlags callflag.CallFlag
	ParamCount    int
}

// Sort orders a Function table by ID, as required for dispatch's binary
// search.
func Sort(fs []Function) {
	sort.Slice(fs, func(i, j int) bool { return fs[i].ID < fs[j].ID })
}
