package standard

import (
	"github.com/n3lab/ledger-core/pkg/smartcontract"
	"github.com/n3lab/ledger-core/pkg/smartcontract/manifest"
)

// Nep29 is a NEP-29 Standard describing smart contract _deploy method functionality.
var Nep29 = &Standard{
	Manifest: manifest.Manifest{
		ABI: manifest.ABI{
			Methods: []manifest.Method{
				{
					Name: "_deploy",
					Parameters: []manifest.Parameter{
						{Name: "data", Type: smartcontract.AnyType},
						{Name: "update", Type: smartcontract.BoolType},
					},
					ReturnType: smartcontract.VoidType,
				},
			},
		},
	},
}
