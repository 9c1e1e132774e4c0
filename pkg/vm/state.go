package vm

import "github.com/n3lab/ledger-core/pkg/vm/vmstate"

// Vmstate represents all possible states that the neo-vm can be in.
type Vmstate = vmstate.State

// List of possible vm states.
const (
	// NONE is the running state of the vm.
	// NONE signifies that the vm is ready to process an opcode.
	NONE = vmstate.None
	// HALT is a stopped state of the vm
	// where the stop was signalled by the program completion.
	HALT = vmstate.Halt
	// FAULT is a stopped state of the vm
	// where the stop was signalled by an error in the program.
	FAULT = vmstate.Fault
	// BREAK is a suspended state for the VM
	// were the break was signalled by a breakpoint.
	BREAK = vmstate.Break
)
