package standard

import (
	"github.com/n3lab/ledger-core/pkg/smartcontract"
	"github.com/n3lab/ledger-core/pkg/smartcontract/manifest"
)

// DecimalTokenBase contains methods common to NEP-11 and NEP-17 token standards.
var DecimalTokenBase = &Standard{
	Manifest: manifest.Manifest{
		ABI: manifest.ABI{
			Methods: []manifest.Method{
				{
					Name:       "decimals",
					Parameters: []manifest.Parameter{}, // nil value implies no parameters check.
					ReturnType: smartcontract.IntegerType,
					Safe:       true,
				},
				{
					Name:       "symbol",
					Parameters: []manifest.Parameter{}, // nil value implies no parameters check.
					ReturnType: smartcontract.StringType,
					Safe:       true,
				},
				{
					Name:       "totalSupply",
					Parameters: []manifest.Parameter{}, // nil value implies no parameters check.
					ReturnType: smartcontract.IntegerType,
					Safe:       true,
				},
			},
		},
	},
}
