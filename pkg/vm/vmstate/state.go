// Package vmstate contains the VM state enumeration used to report the
// outcome of a script execution. It has no dependency on package vm itself
// so that other packages (e.g. core/state) can reference VM state without
// importing the whole VM.
package vmstate

import "errors"

// State represents the state of the VM after an execution, or while it is
// still running.
type State byte

// Possible VM states.
const (
	// None means that no error was raised and execution hasn't finished yet.
	None State = 0
	// Halt means that execution has been completed successfully.
	Halt State = 1 << 0
	// Fault means that execution has been terminated abnormally.
	Fault State = 1 << 1
	// Break means that execution has been suspended at a breakpoint.
	Break State = 1 << 2
)

// String implements the fmt.Stringer interface.
func (s State) String() string {
	switch s {
	case None:
		return "NONE"
	case Halt:
		return "HALT"
	case Fault:
		return "FAULT"
	case Break:
		return "BREAK"
	default:
		return "INVALID"
	}
}

// FromString converts a string into a State.
func FromString(s string) (st State, err error) {
	switch s {
	case "NONE":
		st = None
	case "HALT":
		st = Halt
	case "FAULT":
		st = Fault
	case "BREAK":
		st = Break
	default:
		err = errors.New("unknown state")
	}
	return
}

// HasFlag checks whether s has the given flag set.
func (s State) HasFlag(f State) bool {
	return s&f != 0
}
