package vm

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/n3lab/ledger-core/pkg/smartcontract/callflag"
	"github.com/n3lab/ledger-core/pkg/smartcontract/manifest"
	"github.com/n3lab/ledger-core/pkg/smartcontract/nef"
	"github.com/n3lab/ledger-core/pkg/util"
	"github.com/n3lab/ledger-core/pkg/vm/opcode"
	"github.com/n3lab/ledger-core/pkg/vm/stackitem"
)

// MaxInvocationStackSize is the maximum depth of the invocation stack.
const MaxInvocationStackSize = 1024

// MaxStackSize is the maximum number of items allowed to be on all stacks
// (evaluation, static/local/argument slots) at the same time.
const MaxStackSize = 2 * 1024

// MaxArraySize is the maximum number of elements allowed in array-like
// structures (Array, Struct, Map).
const MaxArraySize = 1024

// MaxBigIntBits mirrors the limit already enforced by stackitem
// on integer operands; arithmetic operators reject results beyond it.
const MaxBigIntBits = stackitem.MaxBigIntBits

// SyscallHandler describes a function able to dispatch a syscall given its
// numeric ID. ApplicationEngine overrides this to add interop functions with
// gas pricing and call-flag enforcement on top of the default VM behavior.
type SyscallHandler func(v *VM, id uint32) error

// RefCounter is implemented by the VM's own counter, exposed so that a host
// (the application engine) can query current item count for gas/fault checks.
type RefCounter interface {
	Add(item stackitem.Item)
	Remove(item stackitem.Item)
}

// VM represents the virtual machine that executes smart contract scripts.
// It only implements execution of bytecode and maintains stacks; everything
// related to blockchain state, gas accounting beyond the raw counter, and
// interop semantics belongs to the application engine layered on top.
type VM struct {
	istack Stack // invocation stack.

	refs *refCounter

	estack *Stack

	state Vmstate

	// gasConsumed is the running total of gas consumed by executed
	// instructions, expressed in the same fractional GAS units used
	// elsewhere in the system (10^-8 GAS).
	gasConsumed int64

	// GasLimit is the maximum amount of gas this run is allowed to
	// consume; execution faults once gasConsumed would exceed it.
	GasLimit int64

	// SyscallHandler dispatches SYSCALL instructions. Defaults to the
	// VM's built-in table of System.Binary/Runtime/Iterator interops.
	SyscallHandler SyscallHandler

	// GetPrice, when set, returns the gas cost of executing op with the
	// given parameter in the current context. If nil, instructions are
	// metered at a flat base cost of 1.
	GetPrice func(v *VM, op opcode.Opcode, parameter []byte) int64

	// Invocations tracks invocation-count-per-script-hash, used by the
	// System.Runtime.GetInvocationCounter syscall.
	Invocations map[util.Uint160]int

	trigger byte

	uncaughtException stackitem.Item

	invTree *InvocationTree

	// printLog, when true, makes runtimeLog/runtimeNotify print to stdout.
	// Set false by hosts that capture notifications themselves.
	printLog bool
}

// New returns a new VM ready to load and execute scripts.
func New() *VM {
	vm := &VM{
		refs:        newRefCounter(),
		Invocations: make(map[util.Uint160]int),
		printLog:    true,
	}
	vm.estack = newStack("estack", vm.refs)
	vm.istack = *newStack("istack", vm.refs)
	vm.SyscallHandler = defaultSyscallHandler
	return vm
}

// Istack returns the invocation stack.
func (v *VM) Istack() *Stack {
	return &v.istack
}

// Estack returns the evaluation stack of the currently executing context.
func (v *VM) Estack() *Stack {
	return v.estack
}

// Context returns the current execution context, or nil if nothing is
// loaded.
func (v *VM) Context() *Context {
	if v.istack.Len() == 0 {
		return nil
	}
	return v.istack.Top().value.(*Context)
}

// GasConsumed returns the total amount of gas consumed so far.
func (v *VM) GasConsumed() int64 {
	return v.gasConsumed
}

// AddGas charges the VM for the given amount of gas, returning false (and
// setting state to FAULT) if this exceeds GasLimit. A non-positive limit
// disables gas metering.
func (v *VM) AddGas(amount int64) bool {
	v.gasConsumed += amount
	if v.GasLimit > 0 && v.gasConsumed > v.GasLimit {
		return false
	}
	return true
}

// State returns the current VM state.
func (v *VM) State() Vmstate {
	return v.state
}

// HasFailed returns whether the VM is in the FAULT state.
func (v *VM) HasFailed() bool {
	return v.state == FAULT
}

// HasHalted returns whether the VM has finished successfully.
func (v *VM) HasHalted() bool {
	return v.state == HALT
}

// AtBreakpoint returns true if the VM is at a breakpoint.
func (v *VM) AtBreakpoint() bool {
	return v.state == BREAK
}

// UncaughtException returns the exception that stopped the VM, if any.
func (v *VM) UncaughtException() stackitem.Item {
	return v.uncaughtException
}

// LoadScript loads a bare script for execution with default call flags and
// no return values expected.
func (v *VM) LoadScript(b []byte) {
	v.LoadScriptWithFlags(b, callflag.All)
}

// LoadScriptWithFlags loads a script to be run with the given call flags.
func (v *VM) LoadScriptWithFlags(b []byte, f callflag.CallFlag) {
	ctx := NewContextWithParams(b, -1, 0)
	ctx.callFlag = f
	v.loadContextInternal(ctx)
}

// LoadContext pushes an already prepared context onto the invocation stack.
func (v *VM) LoadContext(ctx *Context) {
	v.loadContextInternal(ctx)
}

// LoadScriptWithHash loads a script and sets the script hash directly,
// avoiding the need to hash it from its bytes (used for deployed contracts,
// whose hash is derived from their deployment sender/nonce, not their code).
func (v *VM) LoadScriptWithHash(b []byte, hash util.Uint160, f callflag.CallFlag) {
	ctx := NewContextWithParams(b, -1, 0)
	ctx.scriptHash = hash
	ctx.callFlag = f
	v.loadContextInternal(ctx)
}

// LoadScriptWithCallingHash behaves like LoadScriptWithHash, but in addition
// records the caller's script hash in the new context so that
// GetCallingScriptHash reports it correctly. paramCount is informational
// only; compiled methods carry their own INITSLOT.
func (v *VM) LoadScriptWithCallingHash(caller util.Uint160, b []byte, hash util.Uint160, f callflag.CallFlag, hasReturn bool, paramCount uint16) {
	ctx := NewContextWithParams(b, -1, 0)
	ctx.scriptHash = hash
	ctx.callingScriptHash = caller
	ctx.callFlag = f
	if hasReturn {
		ctx.RetCount = 1
	} else {
		ctx.RetCount = 0
	}
	v.loadContextInternal(ctx)
}

// LoadNEFMethod loads a deployed contract's script and jumps directly into
// one of its methods (methodOff), invoking its _initialize method first
// (initOff, or -1 if the manifest declares none) if present. args, if
// non-nil, are pushed onto the new context's evaluation stack in call order
// before RET is expected to consume retCount of them.
func (v *VM) LoadNEFMethod(n *nef.File, man *manifest.Manifest, caller, hash util.Uint160, f callflag.CallFlag, hasReturn bool, methodOff int, initOff int, args []stackitem.Item) bool {
	ctx := NewContextWithParams(n.Script, -1, 0)
	ctx.scriptHash = hash
	ctx.callingScriptHash = caller
	ctx.callFlag = f
	ctx.NEF = n
	if hasReturn {
		ctx.RetCount = 1
	} else {
		ctx.RetCount = 0
	}
	v.loadContextInternal(ctx)

	for i := len(args) - 1; i >= 0; i-- {
		v.Estack().PushItem(args[i])
	}
	v.Jump(ctx, methodOff)
	if initOff >= 0 {
		v.call(ctx, initOff)
	}
	return true
}

// ScriptHashGetter is minimal set of VM script hash accessors needed to
// evaluate witness scopes without depending on the whole VM type.
type ScriptHashGetter interface {
	GetCurrentScriptHash() util.Uint160
	GetCallingScriptHash() util.Uint160
	GetEntryScriptHash() util.Uint160
}

// GetCurrentScriptHash returns the script hash of the currently executing
// context.
func (v *VM) GetCurrentScriptHash() util.Uint160 {
	return v.getContextScriptHash(0)
}

// GetCallingScriptHash returns the script hash of the context that called
// into the currently executing one.
func (v *VM) GetCallingScriptHash() util.Uint160 {
	ctx := v.Context()
	if ctx == nil {
		return util.Uint160{}
	}
	return ctx.callingScriptHash
}

// GetEntryScriptHash returns the script hash of the bottom-most context on
// the invocation stack, i.e. the one the run was started with.
func (v *VM) GetEntryScriptHash() util.Uint160 {
	if v.istack.Len() == 0 {
		return util.Uint160{}
	}
	return v.istack.Back().value.(*Context).ScriptHash()
}

// HasStopped returns true once the VM has reached HALT, FAULT or BREAK.
func (v *VM) HasStopped() bool {
	return v.state == HALT || v.state == FAULT || v.state == BREAK
}

// Jump moves the execution point of ctx to pos without pushing a new
// invocation frame, resetting its evaluation stack and try-contexts. It is
// used for tail-call-like entry into a method offset of an already loaded
// script.
func (v *VM) Jump(ctx *Context, pos int) {
	ctx.tryStack.Clear()
	ctx.nextip = pos
}

// Call creates a brand new invocation frame for ctx's script starting at pos,
// as if a CALL instruction had been executed, and pushes it onto the
// invocation stack.
func (v *VM) Call(ctx *Context, pos int) {
	v.call(ctx, pos)
}

func (v *VM) loadContextInternal(ctx *Context) {
	if v.istack.Len() >= MaxInvocationStackSize {
		panic("invocation stack is too big")
	}
	ctx.estack = newStack("estack", v.refs)
	v.estack = ctx.estack
	v.istack.Push(Element{value: ctx})
}

// Run executes loaded script(s) until HALT, FAULT or BREAK.
func (v *VM) Run() error {
	if v.state == FAULT {
		return errors.New("VM has failed")
	}
	if v.istack.Len() == 0 {
		v.state = HALT
		return nil
	}
	v.state = NONE
	for {
		switch v.state {
		case NONE:
			if err := v.Step(); err != nil {
				v.state = FAULT
				return err
			}
		case HALT, FAULT:
			return nil
		case BREAK:
			return nil
		}
		if v.state == NONE && v.istack.Len() == 0 {
			v.state = HALT
		}
	}
}

// Step executes a single instruction in the current context.
func (v *VM) Step() error {
	ctx := v.Context()
	if ctx == nil {
		v.state = HALT
		return nil
	}
	op, param, err := ctx.Next()
	if err != nil {
		return fmt.Errorf("error decoding instruction: %w", err)
	}
	return v.execute(ctx, op, param)
}

func (v *VM) execute(ctx *Context, op opcode.Opcode, param []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			switch val := r.(type) {
			case error:
				err = val
			default:
				err = fmt.Errorf("panic in instruction %s: %v", op, val)
			}
		}
	}()

	cost := int64(1)
	if v.GetPrice != nil {
		cost = v.GetPrice(v, op, param)
	}
	if !v.AddGas(cost) {
		v.state = FAULT
		return errors.New("gas limit exceeded")
	}

	if op == opcode.RET {
		return v.handleReturn(ctx)
	}

	if err := v.step(ctx, op, param); err != nil {
		ex := exceptionItem(err)
		if !v.throw(ex) {
			v.state = FAULT
			v.uncaughtException = ex
			return err
		}
	}

	if ctx.atBreakPoint() {
		v.state = BREAK
	}
	return nil
}

func (v *VM) handleReturn(ctx *Context) error {
	v.istack.Pop()

	retCount := ctx.RetCount
	oldEstack := ctx.estack
	if retCount >= 0 && oldEstack.Len() != retCount {
		return fmt.Errorf("invalid return values count: expected %d, got %d", retCount, oldEstack.Len())
	}
	if v.istack.Len() == 0 {
		v.state = HALT
		return nil
	}

	newCtx := v.Context()
	v.estack = newCtx.estack
	if newCtx.estack != oldEstack {
		n := retCount
		if n < 0 {
			n = oldEstack.Len()
		}
		items := make([]Element, n)
		for i := 0; i < n; i++ {
			items[i] = oldEstack.Pop()
		}
		for i := n - 1; i >= 0; i-- {
			v.estack.Push(items[i])
		}
	}
	return nil
}

// throw implements exception propagation: it walks up the try/catch
// contexts of the invocation stack looking for a handler, unwinding
// contexts that have none. It returns true if the exception was handled.
func (v *VM) throw(ex stackitem.Item) bool {
	for {
		ctx := v.Context()
		if ctx == nil {
			return false
		}
		for ctx.tryStack.Len() > 0 {
			eCtx := ctx.tryStack.Peek(0).value.(*exceptionHandlingContext)
			if eCtx.State == eFinally {
				ctx.tryStack.Pop()
				continue
			}
			if eCtx.State == eTry && eCtx.HasCatch() {
				eCtx.State = eCatch
				ctx.estack.PushItem(ex)
				ctx.Jump(eCtx.CatchOffset)
				return true
			}
			if eCtx.HasFinally() && eCtx.State != eFinally {
				eCtx.State = eFinally
				v.uncaughtException = ex
				ctx.Jump(eCtx.FinallyOffset)
				return true
			}
			ctx.tryStack.Pop()
		}
		v.istack.Pop()
		if v.istack.Len() == 0 {
			return false
		}
		v.estack = v.Context().estack
	}
}

// step executes a single non-RET instruction against ctx.
func (v *VM) step(ctx *Context, op opcode.Opcode, param []byte) error {
	estack := ctx.estack

	switch op {
	// --- Constants ---
	case opcode.PUSHINT8, opcode.PUSHINT16, opcode.PUSHINT32, opcode.PUSHINT64,
		opcode.PUSHINT128, opcode.PUSHINT256:
		estack.PushItem(stackitem.NewBigInteger(bigIntFromLE(param)))
	case opcode.PUSHT:
		estack.PushItem(stackitem.NewBool(true))
	case opcode.PUSHF:
		estack.PushItem(stackitem.NewBool(false))
	case opcode.PUSHA:
		pos := ctx.IP() + int(int32(leUint32(param)))
		if pos < 0 || pos > ctx.LenInstr() {
			return errors.New("PUSHA: bad pointer")
		}
		estack.PushItem(stackitem.NewPointer(pos, ctx.Program()))
	case opcode.PUSHNULL:
		estack.PushItem(stackitem.Null{})
	case opcode.PUSHDATA1, opcode.PUSHDATA2, opcode.PUSHDATA4:
		estack.PushItem(stackitem.NewByteArray(param))
	case opcode.PUSHM1:
		estack.PushVal(-1)
	default:
		if op >= opcode.PUSH0 && op <= opcode.PUSH16 {
			estack.PushVal(int64(op) - int64(opcode.PUSH0))
			return nil
		}
		return v.stepRest(ctx, op, param)
	}
	return nil
}

func (v *VM) stepRest(ctx *Context, op opcode.Opcode, param []byte) error {
	estack := ctx.estack

	switch op {
	// --- Flow control ---
	case opcode.NOP:
	case opcode.JMP, opcode.JMPL:
		ctx.Jump(jumpTarget(ctx, op, param))
	case opcode.JMPIF, opcode.JMPIFL:
		if estack.Pop().Bool() {
			ctx.Jump(jumpTarget(ctx, op, param))
		}
	case opcode.JMPIFNOT, opcode.JMPIFNOTL:
		if !estack.Pop().Bool() {
			ctx.Jump(jumpTarget(ctx, op, param))
		}
	case opcode.JMPEQ, opcode.JMPEQL, opcode.JMPNE, opcode.JMPNEL,
		opcode.JMPGT, opcode.JMPGTL, opcode.JMPGE, opcode.JMPGEL,
		opcode.JMPLT, opcode.JMPLTL, opcode.JMPLE, opcode.JMPLEL:
		b := estack.Pop().BigInt()
		a := estack.Pop().BigInt()
		if compareJump(op, a, b) {
			ctx.Jump(jumpTarget(ctx, op, param))
		}
	case opcode.CALL, opcode.CALLL:
		v.call(ctx, jumpTarget(ctx, op, param))
	case opcode.CALLA:
		p := estack.Pop().Item().(*stackitem.Pointer)
		if !p.ScriptHash().Equals(ctx.ScriptHash()) {
			return errors.New("CALLA: invalid pointer script")
		}
		v.call(ctx, p.Position())
	case opcode.CALLT:
		return errors.New("CALLT: native contract calls must be handled by the host")
	case opcode.ABORT:
		return errors.New("ABORT")
	case opcode.ASSERT:
		if !estack.Pop().Bool() {
			return errors.New("ASSERT failed")
		}
	case opcode.THROW:
		return &thrownException{item: estack.Pop().Item()}
	case opcode.TRY, opcode.TRYL:
		var cOff, fOff int
		if op == opcode.TRY {
			cOff = int(int8(param[0]))
			fOff = int(int8(param[1]))
		} else {
			cOff = int(int32(leUint32(param[0:4])))
			fOff = int(int32(leUint32(param[4:8])))
		}
		eCtx := newExceptionHandlingContext(relOffset(ctx, cOff), relOffset(ctx, fOff))
		ctx.tryStack.Push(Element{value: eCtx})
	case opcode.ENDTRY, opcode.ENDTRYL:
		if ctx.tryStack.Len() == 0 {
			return errors.New("ENDTRY: no matching TRY")
		}
		eCtx := ctx.tryStack.Peek(0).value.(*exceptionHandlingContext)
		var target int
		if op == opcode.ENDTRY {
			target = relOffset(ctx, int(int8(param[0])))
		} else {
			target = relOffset(ctx, int(int32(leUint32(param))))
		}
		if eCtx.State == eFinally {
			return errors.New("ENDTRY: invalid exception handling state")
		}
		if eCtx.HasFinally() && eCtx.State != eFinally {
			eCtx.EndOffset = target
			eCtx.State = eFinally
			ctx.Jump(eCtx.FinallyOffset)
		} else {
			ctx.tryStack.Pop()
			ctx.Jump(target)
		}
	case opcode.ENDFINALLY:
		if ctx.tryStack.Len() == 0 {
			return errors.New("ENDFINALLY: no matching TRY")
		}
		eCtx := ctx.tryStack.Pop().value.(*exceptionHandlingContext)
		if v.uncaughtException != nil {
			ex := v.uncaughtException
			v.uncaughtException = nil
			if !v.throw(ex) {
				v.state = FAULT
				v.uncaughtException = ex
				return errors.New("unhandled exception")
			}
		} else {
			ctx.Jump(eCtx.EndOffset)
		}
	case opcode.SYSCALL:
		id := leUint32(param)
		if err := v.SyscallHandler(v, id); err != nil {
			return fmt.Errorf("syscall failed: %w", err)
		}

	// --- Stack ---
	case opcode.DEPTH:
		estack.PushVal(int64(estack.Len()))
	case opcode.DROP:
		estack.Pop()
	case opcode.NIP:
		estack.RemoveAt(1)
	case opcode.XDROP:
		n := int(estack.Pop().BigInt().Int64())
		estack.RemoveAt(n)
	case opcode.CLEAR:
		estack.Clear()
	case opcode.DUP:
		estack.Push(estack.Dup(0))
	case opcode.OVER:
		estack.Push(estack.Dup(1))
	case opcode.PICK:
		n := int(estack.Pop().BigInt().Int64())
		estack.Push(estack.Dup(n))
	case opcode.TUCK:
		estack.InsertAt(estack.Dup(0), 2)
	case opcode.SWAP:
		if err := estack.Swap(0, 1); err != nil {
			return err
		}
	case opcode.ROT:
		if err := estack.Roll(2); err != nil {
			return err
		}
	case opcode.ROLL:
		n := int(estack.Pop().BigInt().Int64())
		if err := estack.Roll(n); err != nil {
			return err
		}
	case opcode.REVERSE3:
		if err := estack.ReverseTop(3); err != nil {
			return err
		}
	case opcode.REVERSE4:
		if err := estack.ReverseTop(4); err != nil {
			return err
		}
	case opcode.REVERSEN:
		n := int(estack.Pop().BigInt().Int64())
		if err := estack.ReverseTop(n); err != nil {
			return err
		}

	// --- Slot ---
	case opcode.INITSSLOT:
		if ctx.static != nil {
			return errors.New("INITSSLOT: already initialized")
		}
		n := int(param[0])
		if n == 0 || n > 255 {
			return errors.New("INITSSLOT: invalid slot size")
		}
		ctx.static = v.newSlot(n)
	case opcode.INITSLOT:
		if ctx.arguments != nil {
			return errors.New("INITSLOT: already initialized")
		}
		locals, args := int(param[0]), int(param[1])
		if locals == 0 && args == 0 {
			return errors.New("INITSLOT: both counts are zero")
		}
		ctx.local = v.newSlot(locals)
		ctx.arguments = v.newSlot(args)
		for i := args - 1; i >= 0; i-- {
			ctx.arguments.Set(i, estack.Pop().Item())
		}
	case opcode.LDSFLD0, opcode.LDSFLD1, opcode.LDSFLD2, opcode.LDSFLD3,
		opcode.LDSFLD4, opcode.LDSFLD5, opcode.LDSFLD6:
		estack.PushItem(loadSlot(ctx.static, int(op-opcode.LDSFLD0)))
	case opcode.LDSFLD:
		estack.PushItem(loadSlot(ctx.static, int(param[0])))
	case opcode.STSFLD0, opcode.STSFLD1, opcode.STSFLD2, opcode.STSFLD3,
		opcode.STSFLD4, opcode.STSFLD5, opcode.STSFLD6:
		storeSlot(ctx.static, int(op-opcode.STSFLD0), estack.Pop().Item())
	case opcode.STSFLD:
		storeSlot(ctx.static, int(param[0]), estack.Pop().Item())
	case opcode.LDLOC0, opcode.LDLOC1, opcode.LDLOC2, opcode.LDLOC3,
		opcode.LDLOC4, opcode.LDLOC5, opcode.LDLOC6:
		estack.PushItem(loadSlot(ctx.local, int(op-opcode.LDLOC0)))
	case opcode.LDLOC:
		estack.PushItem(loadSlot(ctx.local, int(param[0])))
	case opcode.STLOC0, opcode.STLOC1, opcode.STLOC2, opcode.STLOC3,
		opcode.STLOC4, opcode.STLOC5, opcode.STLOC6:
		storeSlot(ctx.local, int(op-opcode.STLOC0), estack.Pop().Item())
	case opcode.STLOC:
		storeSlot(ctx.local, int(param[0]), estack.Pop().Item())
	case opcode.LDARG0, opcode.LDARG1, opcode.LDARG2, opcode.LDARG3,
		opcode.LDARG4, opcode.LDARG5, opcode.LDARG6:
		estack.PushItem(loadSlot(ctx.arguments, int(op-opcode.LDARG0)))
	case opcode.LDARG:
		estack.PushItem(loadSlot(ctx.arguments, int(param[0])))
	case opcode.STARG0, opcode.STARG1, opcode.STARG2, opcode.STARG3,
		opcode.STARG4, opcode.STARG5, opcode.STARG6:
		storeSlot(ctx.arguments, int(op-opcode.STARG0), estack.Pop().Item())
	case opcode.STARG:
		storeSlot(ctx.arguments, int(param[0]), estack.Pop().Item())

	// --- Splice ---
	case opcode.NEWBUFFER:
		n := toInt(estack.Pop().BigInt())
		estack.PushItem(stackitem.NewBuffer(make([]byte, n)))
	case opcode.MEMCPY:
		return v.opMemcpy(estack)
	case opcode.CAT:
		b := estack.Pop().Bytes()
		a := estack.Pop().Bytes()
		r := make([]byte, 0, len(a)+len(b))
		r = append(r, a...)
		r = append(r, b...)
		if len(r) > stackitem.MaxSize {
			return errors.New("CAT: result too big")
		}
		estack.PushItem(stackitem.NewBuffer(r))
	case opcode.SUBSTR:
		return v.opSubstr(estack)
	case opcode.LEFT:
		l := toInt(estack.Pop().BigInt())
		s := estack.Pop().Bytes()
		if l < 0 || l > len(s) {
			return errors.New("LEFT: out of range")
		}
		estack.PushItem(stackitem.NewBuffer(append([]byte{}, s[:l]...)))
	case opcode.RIGHT:
		l := toInt(estack.Pop().BigInt())
		s := estack.Pop().Bytes()
		if l < 0 || l > len(s) {
			return errors.New("RIGHT: out of range")
		}
		estack.PushItem(stackitem.NewBuffer(append([]byte{}, s[len(s)-l:]...)))

	// --- Bitwise ---
	case opcode.INVERT:
		a := estack.Pop().BigInt()
		estack.PushItem(stackitem.NewBigInteger(new(big.Int).Not(a)))
	case opcode.AND:
		b, a := estack.Pop().BigInt(), estack.Pop().BigInt()
		estack.PushItem(stackitem.NewBigInteger(new(big.Int).And(a, b)))
	case opcode.OR:
		b, a := estack.Pop().BigInt(), estack.Pop().BigInt()
		estack.PushItem(stackitem.NewBigInteger(new(big.Int).Or(a, b)))
	case opcode.XOR:
		b, a := estack.Pop().BigInt(), estack.Pop().BigInt()
		estack.PushItem(stackitem.NewBigInteger(new(big.Int).Xor(a, b)))
	case opcode.EQUAL:
		b, a := estack.Pop().Item(), estack.Pop().Item()
		estack.PushItem(stackitem.NewBool(a.Equals(b)))
	case opcode.NOTEQUAL:
		b, a := estack.Pop().Item(), estack.Pop().Item()
		estack.PushItem(stackitem.NewBool(!a.Equals(b)))

	// --- Arithmetic ---
	case opcode.SIGN:
		a := estack.Pop().BigInt()
		estack.PushVal(int64(a.Sign()))
	case opcode.ABS:
		estack.PushItem(stackitem.NewBigInteger(new(big.Int).Abs(estack.Pop().BigInt())))
	case opcode.NEGATE:
		estack.PushItem(stackitem.NewBigInteger(new(big.Int).Neg(estack.Pop().BigInt())))
	case opcode.INC:
		estack.PushItem(stackitem.NewBigInteger(new(big.Int).Add(estack.Pop().BigInt(), big.NewInt(1))))
	case opcode.DEC:
		estack.PushItem(stackitem.NewBigInteger(new(big.Int).Sub(estack.Pop().BigInt(), big.NewInt(1))))
	case opcode.ADD:
		b, a := estack.Pop().BigInt(), estack.Pop().BigInt()
		estack.PushItem(stackitem.NewBigInteger(new(big.Int).Add(a, b)))
	case opcode.SUB:
		b, a := estack.Pop().BigInt(), estack.Pop().BigInt()
		estack.PushItem(stackitem.NewBigInteger(new(big.Int).Sub(a, b)))
	case opcode.MUL:
		b, a := estack.Pop().BigInt(), estack.Pop().BigInt()
		estack.PushItem(stackitem.NewBigInteger(new(big.Int).Mul(a, b)))
	case opcode.DIV:
		b, a := estack.Pop().BigInt(), estack.Pop().BigInt()
		if b.Sign() == 0 {
			return errors.New("DIV: division by zero")
		}
		estack.PushItem(stackitem.NewBigInteger(new(big.Int).Quo(a, b)))
	case opcode.MOD:
		b, a := estack.Pop().BigInt(), estack.Pop().BigInt()
		if b.Sign() == 0 {
			return errors.New("MOD: division by zero")
		}
		estack.PushItem(stackitem.NewBigInteger(new(big.Int).Rem(a, b)))
	case opcode.POW:
		e, a := estack.Pop().BigInt(), estack.Pop().BigInt()
		if e.Sign() < 0 {
			return errors.New("POW: negative exponent")
		}
		if e.Cmp(big.NewInt(256)) > 0 {
			return errors.New("POW: exponent too large")
		}
		estack.PushItem(stackitem.NewBigInteger(new(big.Int).Exp(a, e, nil)))
	case opcode.SQRT:
		a := estack.Pop().BigInt()
		if a.Sign() < 0 {
			return errors.New("SQRT: negative operand")
		}
		estack.PushItem(stackitem.NewBigInteger(new(big.Int).Sqrt(a)))
	case opcode.MODMUL:
		m, b, a := estack.Pop().BigInt(), estack.Pop().BigInt(), estack.Pop().BigInt()
		if m.Sign() == 0 {
			return errors.New("MODMUL: modulus is zero")
		}
		r := new(big.Int).Mul(a, b)
		estack.PushItem(stackitem.NewBigInteger(r.Mod(r, m)))
	case opcode.MODPOW:
		m, e, a := estack.Pop().BigInt(), estack.Pop().BigInt(), estack.Pop().BigInt()
		if m.Sign() == 0 {
			return errors.New("MODPOW: modulus is zero")
		}
		if e.Sign() == -1 {
			im := new(big.Int).ModInverse(a, m)
			if im == nil {
				return errors.New("MODPOW: no modular inverse")
			}
			estack.PushItem(stackitem.NewBigInteger(new(big.Int).Exp(im, new(big.Int).Neg(e), m)))
		} else {
			estack.PushItem(stackitem.NewBigInteger(new(big.Int).Exp(a, e, m)))
		}
	case opcode.SHL:
		n := toInt(estack.Pop().BigInt())
		a := estack.Pop().BigInt()
		if n < 0 || n > 256 {
			return errors.New("SHL: shift out of range")
		}
		estack.PushItem(stackitem.NewBigInteger(new(big.Int).Lsh(a, uint(n))))
	case opcode.SHR:
		n := toInt(estack.Pop().BigInt())
		a := estack.Pop().BigInt()
		if n < 0 || n > 256 {
			return errors.New("SHR: shift out of range")
		}
		estack.PushItem(stackitem.NewBigInteger(new(big.Int).Rsh(a, uint(n))))
	case opcode.NOT:
		estack.PushItem(stackitem.NewBool(!estack.Pop().Bool()))
	case opcode.BOOLAND:
		b, a := estack.Pop().Bool(), estack.Pop().Bool()
		estack.PushItem(stackitem.NewBool(a && b))
	case opcode.BOOLOR:
		b, a := estack.Pop().Bool(), estack.Pop().Bool()
		estack.PushItem(stackitem.NewBool(a || b))
	case opcode.NZ:
		estack.PushItem(stackitem.NewBool(estack.Pop().BigInt().Sign() != 0))
	case opcode.NUMEQUAL:
		b, a := estack.Pop().BigInt(), estack.Pop().BigInt()
		estack.PushItem(stackitem.NewBool(a.Cmp(b) == 0))
	case opcode.NUMNOTEQUAL:
		b, a := estack.Pop().BigInt(), estack.Pop().BigInt()
		estack.PushItem(stackitem.NewBool(a.Cmp(b) != 0))
	case opcode.LT:
		b, a := estack.Pop().BigInt(), estack.Pop().BigInt()
		estack.PushItem(stackitem.NewBool(a.Cmp(b) < 0))
	case opcode.LE:
		b, a := estack.Pop().BigInt(), estack.Pop().BigInt()
		estack.PushItem(stackitem.NewBool(a.Cmp(b) <= 0))
	case opcode.GT:
		b, a := estack.Pop().BigInt(), estack.Pop().BigInt()
		estack.PushItem(stackitem.NewBool(a.Cmp(b) > 0))
	case opcode.GE:
		b, a := estack.Pop().BigInt(), estack.Pop().BigInt()
		estack.PushItem(stackitem.NewBool(a.Cmp(b) >= 0))
	case opcode.MIN:
		b, a := estack.Pop().BigInt(), estack.Pop().BigInt()
		if a.Cmp(b) < 0 {
			estack.PushItem(stackitem.NewBigInteger(a))
		} else {
			estack.PushItem(stackitem.NewBigInteger(b))
		}
	case opcode.MAX:
		b, a := estack.Pop().BigInt(), estack.Pop().BigInt()
		if a.Cmp(b) > 0 {
			estack.PushItem(stackitem.NewBigInteger(a))
		} else {
			estack.PushItem(stackitem.NewBigInteger(b))
		}
	case opcode.WITHIN:
		b, a, x := estack.Pop().BigInt(), estack.Pop().BigInt(), estack.Pop().BigInt()
		estack.PushItem(stackitem.NewBool(a.Cmp(x) <= 0 && x.Cmp(b) < 0))

	// --- Compound types ---
	case opcode.PACKMAP:
		return v.opPackMap(estack)
	case opcode.PACKSTRUCT:
		return v.opPack(estack, true)
	case opcode.PACK:
		return v.opPack(estack, false)
	case opcode.UNPACK:
		return v.opUnpack(estack)
	case opcode.NEWARRAY0:
		estack.PushItem(stackitem.NewArray([]stackitem.Item{}))
	case opcode.NEWARRAY:
		n := toInt(estack.Pop().BigInt())
		if n < 0 || n > MaxArraySize {
			return errors.New("NEWARRAY: invalid size")
		}
		items := make([]stackitem.Item, n)
		for i := range items {
			items[i] = stackitem.Null{}
		}
		estack.PushItem(stackitem.NewArray(items))
	case opcode.NEWARRAYT:
		n := toInt(estack.Pop().BigInt())
		if n < 0 || n > MaxArraySize {
			return errors.New("NEWARRAYT: invalid size")
		}
		typ := stackitem.Type(param[0])
		items := make([]stackitem.Item, n)
		for i := range items {
			items[i] = defaultValueForType(typ)
		}
		estack.PushItem(stackitem.NewArray(items))
	case opcode.NEWSTRUCT0:
		estack.PushItem(stackitem.NewStruct([]stackitem.Item{}))
	case opcode.NEWSTRUCT:
		n := toInt(estack.Pop().BigInt())
		if n < 0 || n > MaxArraySize {
			return errors.New("NEWSTRUCT: invalid size")
		}
		items := make([]stackitem.Item, n)
		for i := range items {
			items[i] = stackitem.Null{}
		}
		estack.PushItem(stackitem.NewStruct(items))
	case opcode.NEWMAP:
		estack.PushItem(stackitem.NewMap())
	case opcode.SIZE:
		item := estack.Pop().Item()
		switch t := item.(type) {
		case *stackitem.Array, *stackitem.Struct:
			estack.PushVal(int64(len(t.Value().([]stackitem.Item))))
		case *stackitem.Map:
			estack.PushVal(int64(len(t.Value().([]stackitem.MapElement))))
		default:
			b, err := item.TryBytes()
			if err != nil {
				return err
			}
			estack.PushVal(int64(len(b)))
		}
	case opcode.HASKEY:
		return v.opHasKey(estack)
	case opcode.KEYS:
		m, ok := estack.Pop().Item().(*stackitem.Map)
		if !ok {
			return errors.New("KEYS: not a map")
		}
		elems := m.Value().([]stackitem.MapElement)
		keys := make([]stackitem.Item, len(elems))
		for i, e := range elems {
			keys[i] = e.Key
		}
		estack.PushItem(stackitem.NewArray(keys))
	case opcode.VALUES:
		switch t := estack.Pop().Item().(type) {
		case *stackitem.Map:
			elems := t.Value().([]stackitem.MapElement)
			vals := make([]stackitem.Item, len(elems))
			for i, e := range elems {
				vals[i] = e.Value
			}
			estack.PushItem(stackitem.NewArray(vals))
		case *stackitem.Array, *stackitem.Struct:
			items := t.Value().([]stackitem.Item)
			vals := make([]stackitem.Item, len(items))
			for i, it := range items {
				vals[i] = it
			}
			estack.PushItem(stackitem.NewArray(vals))
		default:
			return errors.New("VALUES: invalid type")
		}
	case opcode.PICKITEM:
		return v.opPickItem(estack)
	case opcode.APPEND:
		item := estack.Pop().Item()
		switch t := estack.Pop().Item().(type) {
		case *stackitem.Array:
			if t.Len() >= MaxArraySize {
				return errors.New("APPEND: array too big")
			}
			t.Append(item)
		case *stackitem.Struct:
			if t.Len() >= MaxArraySize {
				return errors.New("APPEND: array too big")
			}
			t.Append(item)
		default:
			return errors.New("APPEND: not an array")
		}
	case opcode.SETITEM:
		return v.opSetItem(estack)
	case opcode.REVERSEITEMS:
		switch t := estack.Pop().Item().(type) {
		case *stackitem.Array, *stackitem.Struct:
			items := t.Value().([]stackitem.Item)
			for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
				items[i], items[j] = items[j], items[i]
			}
		default:
			return errors.New("REVERSEITEMS: not an array")
		}
	case opcode.REMOVE:
		return v.opRemove(estack)
	case opcode.CLEARITEMS:
		switch t := estack.Pop().Item().(type) {
		case *stackitem.Array:
			t.Clear()
		case *stackitem.Struct:
			t.Clear()
		case *stackitem.Map:
			t.Clear()
		default:
			return errors.New("CLEARITEMS: invalid type")
		}
	case opcode.POPITEM:
		t, ok := estack.Pop().Item().(*stackitem.Array)
		if !ok {
			return errors.New("POPITEM: not an array")
		}
		items := t.Value().([]stackitem.Item)
		if len(items) == 0 {
			return errors.New("POPITEM: empty array")
		}
		last := items[len(items)-1]
		t.Remove(len(items) - 1)
		estack.PushItem(last)

	// --- Types ---
	case opcode.ISNULL:
		_, ok := estack.Pop().Item().(stackitem.Null)
		estack.PushItem(stackitem.NewBool(ok))
	case opcode.ISTYPE:
		typ := stackitem.Type(param[0])
		item := estack.Pop().Item()
		estack.PushItem(stackitem.NewBool(item.Type() == typ))
	case opcode.CONVERT:
		typ := stackitem.Type(param[0])
		item, err := estack.Pop().Item().Convert(typ)
		if err != nil {
			return err
		}
		estack.PushItem(item)

	// --- Extensions ---
	case opcode.ABORTMSG:
		msg := estack.Pop().String()
		return fmt.Errorf("ABORT: %s", msg)
	case opcode.ASSERTMSG:
		msg := estack.Pop().String()
		if !estack.Pop().Bool() {
			return fmt.Errorf("ASSERT failed: %s", msg)
		}

	default:
		return fmt.Errorf("unimplemented opcode %s", op)
	}
	return nil
}

// thrownException wraps a stack item explicitly thrown via THROW so that
// exception propagation can deliver the original item to a catch block
// instead of a stringified approximation.
type thrownException struct {
	item stackitem.Item
}

func (e *thrownException) Error() string {
	return fmt.Sprintf("unhandled exception: %s", e.item.String())
}

func exceptionItem(err error) stackitem.Item {
	if te, ok := err.(*thrownException); ok {
		return te.item
	}
	return stackitem.NewByteArray([]byte(err.Error()))
}

// call creates a new invocation context at pos within the same script,
// sharing static fields with ctx (they are scoped to the script, not to
// the individual call) but starting with fresh local/argument slots and
// exception handling state.
func (v *VM) call(ctx *Context, pos int) {
	newCtx := ctx.Copy()
	newCtx.tryStack = *NewStack("exception")
	newCtx.Jump(pos)
	newCtx.local = nil
	newCtx.arguments = nil
	v.loadContextInternal(newCtx)
}

func jumpTarget(ctx *Context, op opcode.Opcode, param []byte) int {
	var offset int32
	if isLongJump(op) {
		offset = int32(leUint32(param))
	} else {
		offset = int32(int8(param[0]))
	}
	return ctx.IP() + int(offset)
}

func isLongJump(op opcode.Opcode) bool {
	switch op {
	case opcode.JMPL, opcode.JMPIFL, opcode.JMPIFNOTL, opcode.JMPEQL, opcode.JMPNEL,
		opcode.JMPGTL, opcode.JMPGEL, opcode.JMPLTL, opcode.JMPLEL, opcode.CALLL:
		return true
	}
	return false
}

func relOffset(ctx *Context, off int) int {
	if off < 0 {
		return -1
	}
	return ctx.IP() + off
}

func compareJump(op opcode.Opcode, a, b *big.Int) bool {
	c := a.Cmp(b)
	switch op {
	case opcode.JMPEQ, opcode.JMPEQL:
		return c == 0
	case opcode.JMPNE, opcode.JMPNEL:
		return c != 0
	case opcode.JMPGT, opcode.JMPGTL:
		return c > 0
	case opcode.JMPGE, opcode.JMPGEL:
		return c >= 0
	case opcode.JMPLT, opcode.JMPLTL:
		return c < 0
	case opcode.JMPLE, opcode.JMPLEL:
		return c <= 0
	}
	return false
}

func loadSlot(s *Slot, i int) stackitem.Item {
	if s == nil {
		panic("slot is not initialized")
	}
	return s.Get(i)
}

func storeSlot(s *Slot, i int, item stackitem.Item) {
	if s == nil {
		panic("slot is not initialized")
	}
	s.Set(i, item)
}

func (v *VM) opMemcpy(estack *Stack) error {
	count := toInt(estack.Pop().BigInt())
	srcIdx := toInt(estack.Pop().BigInt())
	src := estack.Pop().Bytes()
	dstIdx := toInt(estack.Pop().BigInt())
	dstItem, ok := estack.Pop().Item().(*stackitem.Buffer)
	if !ok {
		return errors.New("MEMCPY: destination is not a Buffer")
	}
	dst := dstItem.Value().([]byte)
	if count < 0 || srcIdx < 0 || dstIdx < 0 {
		return errors.New("MEMCPY: negative argument")
	}
	if srcIdx+count > len(src) || dstIdx+count > len(dst) {
		return errors.New("MEMCPY: out of range")
	}
	copy(dst[dstIdx:dstIdx+count], src[srcIdx:srcIdx+count])
	return nil
}

// opSubstr implements SUBSTR with the exact boundary rules: a negative
// index or count faults, as does index+count exceeding the source length
// or either argument outside a signed 31-bit range. index+count==len
// yields an empty, mutable Buffer rather than an error.
func (v *VM) opSubstr(estack *Stack) error {
	countBig := estack.Pop().BigInt()
	indexBig := estack.Pop().BigInt()
	s := estack.Pop().Bytes()

	if !fits31(countBig) || !fits31(indexBig) {
		return errors.New("SUBSTR: argument out of range")
	}
	index, count := int(indexBig.Int64()), int(countBig.Int64())
	if index < 0 || count < 0 {
		return errors.New("SUBSTR: negative argument")
	}
	if index+count > len(s) {
		return errors.New("SUBSTR: out of range")
	}
	res := make([]byte, count)
	copy(res, s[index:index+count])
	estack.PushItem(stackitem.NewBuffer(res))
	return nil
}

func fits31(n *big.Int) bool {
	return n.IsInt64() && n.Int64() >= 0 && n.Int64() <= (1<<31-1)
}

func (v *VM) opPackMap(estack *Stack) error {
	n := toInt(estack.Pop().BigInt())
	if n < 0 || n > MaxArraySize {
		return errors.New("PACKMAP: invalid size")
	}
	m := stackitem.NewMap()
	for i := 0; i < n; i++ {
		key := estack.Pop().Item()
		value := estack.Pop().Item()
		m.Add(key, value)
	}
	estack.PushItem(m)
	return nil
}

func (v *VM) opPack(estack *Stack, isStruct bool) error {
	n := toInt(estack.Pop().BigInt())
	if n < 0 || n > MaxArraySize {
		return errors.New("PACK: invalid size")
	}
	items := make([]stackitem.Item, n)
	for i := 0; i < n; i++ {
		items[i] = estack.Pop().Item()
	}
	if isStruct {
		estack.PushItem(stackitem.NewStruct(items))
	} else {
		estack.PushItem(stackitem.NewArray(items))
	}
	return nil
}

func (v *VM) opUnpack(estack *Stack) error {
	switch t := estack.Pop().Item().(type) {
	case *stackitem.Array, *stackitem.Struct:
		items := t.Value().([]stackitem.Item)
		for i := 0; i < len(items); i++ {
			estack.PushItem(items[i])
		}
		estack.PushVal(int64(len(items)))
	default:
		return errors.New("UNPACK: not an array")
	}
	return nil
}

func (v *VM) opHasKey(estack *Stack) error {
	key := estack.Pop().Item()
	switch t := estack.Pop().Item().(type) {
	case *stackitem.Array, *stackitem.Struct:
		idx := toInt(mustBigInt(key))
		items := t.Value().([]stackitem.Item)
		estack.PushItem(stackitem.NewBool(idx >= 0 && idx < len(items)))
	case *stackitem.Map:
		estack.PushItem(stackitem.NewBool(t.Has(key)))
	case *stackitem.Buffer:
		idx := toInt(mustBigInt(key))
		estack.PushItem(stackitem.NewBool(idx >= 0 && idx < t.Len()))
	default:
		return errors.New("HASKEY: invalid type")
	}
	return nil
}

func (v *VM) opPickItem(estack *Stack) error {
	key := estack.Pop().Item()
	switch t := estack.Pop().Item().(type) {
	case *stackitem.Array, *stackitem.Struct:
		items := t.Value().([]stackitem.Item)
		idx := toInt(mustBigInt(key))
		if idx < 0 || idx >= len(items) {
			return errors.New("PICKITEM: index out of range")
		}
		estack.PushItem(items[idx])
	case *stackitem.Map:
		idx := t.Index(key)
		if idx < 0 {
			return errors.New("PICKITEM: key not found")
		}
		elems := t.Value().([]stackitem.MapElement)
		estack.PushItem(elems[idx].Value)
	case *stackitem.Buffer:
		b := t.Value().([]byte)
		idx := toInt(mustBigInt(key))
		if idx < 0 || idx >= len(b) {
			return errors.New("PICKITEM: index out of range")
		}
		estack.PushVal(int64(b[idx]))
	default:
		b, err := t.TryBytes()
		if err != nil {
			return errors.New("PICKITEM: invalid type")
		}
		idx := toInt(mustBigInt(key))
		if idx < 0 || idx >= len(b) {
			return errors.New("PICKITEM: index out of range")
		}
		estack.PushVal(int64(b[idx]))
	}
	return nil
}

func (v *VM) opSetItem(estack *Stack) error {
	value := estack.Pop().Item()
	key := estack.Pop().Item()
	switch t := estack.Pop().Item().(type) {
	case *stackitem.Array:
		idx := toInt(mustBigInt(key))
		items := t.Value().([]stackitem.Item)
		if idx < 0 || idx >= len(items) {
			return errors.New("SETITEM: index out of range")
		}
		items[idx] = value
	case *stackitem.Struct:
		idx := toInt(mustBigInt(key))
		items := t.Value().([]stackitem.Item)
		if idx < 0 || idx >= len(items) {
			return errors.New("SETITEM: index out of range")
		}
		items[idx] = value
	case *stackitem.Map:
		if t.Len() >= MaxArraySize && t.Index(key) < 0 {
			return errors.New("SETITEM: map too big")
		}
		t.Add(key, value)
	case *stackitem.Buffer:
		idx := toInt(mustBigInt(key))
		b := t.Value().([]byte)
		if idx < 0 || idx >= len(b) {
			return errors.New("SETITEM: index out of range")
		}
		bv, err := value.TryInteger()
		if err != nil {
			return err
		}
		b[idx] = byte(bv.Int64())
	default:
		return errors.New("SETITEM: invalid type")
	}
	return nil
}

func (v *VM) opRemove(estack *Stack) error {
	key := estack.Pop().Item()
	switch t := estack.Pop().Item().(type) {
	case *stackitem.Array:
		idx := toInt(mustBigInt(key))
		if idx < 0 || idx >= t.Len() {
			return errors.New("REMOVE: index out of range")
		}
		t.Remove(idx)
	case *stackitem.Struct:
		idx := toInt(mustBigInt(key))
		if idx < 0 || idx >= t.Len() {
			return errors.New("REMOVE: index out of range")
		}
		t.Remove(idx)
	case *stackitem.Map:
		idx := t.Index(key)
		if idx < 0 {
			return errors.New("REMOVE: key not found")
		}
		t.Drop(idx)
	default:
		return errors.New("REMOVE: invalid type")
	}
	return nil
}


func defaultValueForType(t stackitem.Type) stackitem.Item {
	switch t {
	case stackitem.BooleanT:
		return stackitem.NewBool(false)
	case stackitem.IntegerT:
		return stackitem.NewBigInteger(big.NewInt(0))
	case stackitem.ByteArrayT, stackitem.BufferT:
		return stackitem.NewByteArray([]byte{})
	default:
		return stackitem.Null{}
	}
}

func mustBigInt(item stackitem.Item) *big.Int {
	n, err := item.TryInteger()
	if err != nil {
		panic(err)
	}
	return n
}

func toInt(n *big.Int) int {
	return int(n.Int64())
}

func bigIntFromLE(b []byte) *big.Int {
	be := make([]byte, len(b))
	for i, c := range b {
		be[len(b)-1-i] = c
	}
	n := new(big.Int).SetBytes(be)
	if len(b) > 0 && b[len(b)-1]&0x80 != 0 {
		n.Sub(n, new(big.Int).Lsh(big.NewInt(1), uint(len(b)*8)))
	}
	return n
}

func leUint32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
