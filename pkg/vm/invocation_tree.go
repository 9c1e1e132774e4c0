package vm

import "github.com/n3lab/ledger-core/pkg/util"

// InvocationTree represents a tree of script invocations produced during a
// single run of the VM. Each node corresponds to one execution context and
// records the contexts it called into, mirroring the actual call graph.
type InvocationTree struct {
	Current util.Uint160
	Calls   []*InvocationTree
}

// NewInvocationTree creates an invocation tree node for the given script hash.
func NewInvocationTree(hash util.Uint160) *InvocationTree {
	return &InvocationTree{Current: hash}
}
