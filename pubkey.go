package blueprint

import (
	"bytes"
	"encoding/json"

	"github.com/btcsuite/btcutil/base58"
	"github.com/iov-one/blueprint/errors"
)

// PubkeySize is the length of every public identity and address.
const PubkeySize = 32

// Pubkey is a 32 byte public identity. It is either an Ed25519 public key of
// a signer or an address derived from seeds for program owned storage.
type Pubkey [PubkeySize]byte

// PubkeyFromBytes copies given bytes into a Pubkey. The length must match
// exactly.
func PubkeyFromBytes(b []byte) (Pubkey, error) {
	var pk Pubkey
	if len(b) != PubkeySize {
		return pk, errors.Wrapf(errors.ErrInvalidInput, "pubkey of %d bytes", len(b))
	}
	copy(pk[:], b)
	return pk, nil
}

// ParsePubkey decodes a base58 encoded public key.
func ParsePubkey(s string) (Pubkey, error) {
	var pk Pubkey
	raw := base58.Decode(s)
	if len(raw) != PubkeySize {
		return pk, errors.Wrapf(errors.ErrInvalidInput, "pubkey %q", s)
	}
	copy(pk[:], raw)
	return pk, nil
}

// MustParsePubkey is like ParsePubkey but panics on error. Use it only for
// constants and in tests.
func MustParsePubkey(s string) Pubkey {
	pk, err := ParsePubkey(s)
	if err != nil {
		panic(err)
	}
	return pk
}

// Equals checks if two keys are the same.
func (pk Pubkey) Equals(other Pubkey) bool {
	return pk == other
}

// IsZero returns true for the all zero key.
func (pk Pubkey) IsZero() bool {
	return pk == Pubkey{}
}

// Bytes returns a copy of the key as a slice.
func (pk Pubkey) Bytes() []byte {
	b := make([]byte, PubkeySize)
	copy(b, pk[:])
	return b
}

// String returns the base58 representation.
func (pk Pubkey) String() string {
	return base58.Encode(pk[:])
}

// Compare returns an integer comparing two keys lexicographically.
func (pk Pubkey) Compare(other Pubkey) int {
	return bytes.Compare(pk[:], other[:])
}

// MarshalJSON provides a base58 representation for JSON.
func (pk Pubkey) MarshalJSON() ([]byte, error) {
	return json.Marshal(pk.String())
}

func (pk *Pubkey) UnmarshalJSON(raw []byte) error {
	var enc string
	if err := json.Unmarshal(raw, &enc); err != nil {
		return errors.Wrap(err, "cannot decode json")
	}
	// No value zero the key.
	if len(enc) == 0 {
		*pk = Pubkey{}
		return nil
	}
	val, err := ParsePubkey(enc)
	if err != nil {
		return err
	}
	*pk = val
	return nil
}

// ContainsPubkey returns true if needle is an element of haystack.
func ContainsPubkey(haystack []Pubkey, needle Pubkey) bool {
	for _, pk := range haystack {
		if pk == needle {
			return true
		}
	}
	return false
}
