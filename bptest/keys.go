package bptest

import (
	"github.com/iov-one/blueprint"
	"github.com/iov-one/blueprint/crypto"
)

// NewKey returns a random private key.
func NewKey() *crypto.PrivateKey {
	return crypto.GenPrivateKey()
}

// NewPubkey returns the identity of a random key.
func NewPubkey() blueprint.Pubkey {
	return NewKey().PublicKey()
}

// SequenceKey returns a deterministic key, different for every n.
func SequenceKey(n uint64) *crypto.PrivateKey {
	seed := make([]byte, 32)
	for i := 0; i < 8; i++ {
		seed[i] = byte(n >> (8 * uint(i)))
	}
	seed[31] = 0xb9
	key, err := crypto.PrivateKeyFromSeed(seed)
	if err != nil {
		panic(err)
	}
	return key
}
