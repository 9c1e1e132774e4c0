package services

import "github.com/n3lab/ledger-core/pkg/crypto/keys"

// Notary is a Notary module interface.
type Notary interface {
	UpdateNotaryNodes(pubs keys.PublicKeys)
}
