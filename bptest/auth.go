package bptest

import (
	"github.com/iov-one/blueprint"
)

// Signers is a mock implementing blueprint.SignerSet.
//
// It attests any of the referenced identities. Signer is a convenience
// attribute for the common single signer case; both attributes are always
// considered.
type Signers struct {
	Signer  blueprint.Pubkey
	Signers []blueprint.Pubkey
}

var _ blueprint.SignerSet = (*Signers)(nil)

func (s *Signers) IsSigner(pk blueprint.Pubkey) bool {
	if !s.Signer.IsZero() && s.Signer == pk {
		return true
	}
	return blueprint.ContainsPubkey(s.Signers, pk)
}
