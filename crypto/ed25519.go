/*
Package crypto holds the Ed25519 keys that sign ledger transactions, and the
helpers to keep them on disk.
*/
package crypto

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io/ioutil"
	"os"
	"strings"

	"github.com/iov-one/blueprint"
	"github.com/iov-one/blueprint/errors"
	"golang.org/x/crypto/ed25519"
)

// SignatureSize is the length of an Ed25519 signature.
const SignatureSize = ed25519.SignatureSize

// KeyPerm is the file permissions for saved private keys
const KeyPerm = 0600

// PrivateKey signs transactions on behalf of its public key.
type PrivateKey struct {
	key ed25519.PrivateKey
}

// GenPrivateKey returns a random new private key
func GenPrivateKey() *PrivateKey {
	_, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		panic(err)
	}
	return &PrivateKey{key: priv}
}

// PrivateKeyFromSeed will deterministically generate a private key from
// a given 32 byte seed. Use if you have a strong source of external
// randomness, or for deterministic keys in test cases.
func PrivateKeyFromSeed(seed []byte) (*PrivateKey, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "seed must be %d bytes", ed25519.SeedSize)
	}
	return &PrivateKey{key: ed25519.NewKeyFromSeed(seed)}, nil
}

// Sign returns a matching signature for this private key
func (p *PrivateKey) Sign(message []byte) []byte {
	return ed25519.Sign(p.key, message)
}

// PublicKey returns the corresponding identity
func (p *PrivateKey) PublicKey() blueprint.Pubkey {
	var pk blueprint.Pubkey
	copy(pk[:], p.key.Public().(ed25519.PublicKey))
	return pk
}

// Verify checks that sig was created by the owner of pub over message.
func Verify(pub blueprint.Pubkey, message, sig []byte) bool {
	if len(sig) != SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(pub[:]), message, sig)
}

// EncodePrivateKey stores the private key seed as a hex string
// that can be saved and later loaded
func EncodePrivateKey(key *PrivateKey) string {
	return hex.EncodeToString(key.key.Seed())
}

// DecodePrivateKey reads a hex string created by EncodePrivateKey
// and returns the original PrivateKey
func DecodePrivateKey(hexKey string) (*PrivateKey, error) {
	seed, err := hex.DecodeString(strings.TrimSpace(hexKey))
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	return PrivateKeyFromSeed(seed)
}

// LoadPrivateKey will load a private key from a file,
// Which was previously written by SavePrivateKey
func LoadPrivateKey(filename string) (*PrivateKey, error) {
	raw, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	return DecodePrivateKey(string(raw))
}

// SavePrivateKey will encode the private key in hex and write to
// the named file. It will refuse to overwrite a file unless force is set.
func SavePrivateKey(key *PrivateKey, filename string, force bool) error {
	if !force {
		if _, err := os.Stat(filename); err == nil {
			return errors.Wrap(errors.ErrDuplicate, fmt.Sprintf("refusing to overwrite: %s", filename))
		}
	}
	return ioutil.WriteFile(filename, []byte(EncodePrivateKey(key)), KeyPerm)
}

// Equals returns true if both keys are the same.
func (p *PrivateKey) Equals(other *PrivateKey) bool {
	return bytes.Equal(p.key, other.key)
}
