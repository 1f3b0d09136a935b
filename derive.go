package blueprint

import (
	"crypto/sha256"

	"filippo.io/edwards25519"
	"github.com/iov-one/blueprint/errors"
)

const (
	// MaxSeeds is the maximum number of seeds, witness included, that an
	// address can be derived from.
	MaxSeeds = 16

	// MaxSeedLen is the maximum length of a single seed.
	MaxSeedLen = 32

	pdaMarker = "ProgramDerivedAddress"
)

// Deriver computes addresses of program owned storage from seeds.
type Deriver interface {
	// CreateProgramAddress returns the address bound to given seeds, the
	// witness included as the last seed.
	CreateProgramAddress(seeds [][]byte, programID Pubkey) (Pubkey, error)

	// FindProgramAddress searches for the witness that makes given seeds
	// derive a valid address and returns both.
	FindProgramAddress(seeds [][]byte, programID Pubkey) (Pubkey, uint8, error)
}

// ProgramDeriver is the Deriver used by the ledger runtime.
type ProgramDeriver struct{}

var _ Deriver = ProgramDeriver{}

func (ProgramDeriver) CreateProgramAddress(seeds [][]byte, programID Pubkey) (Pubkey, error) {
	return CreateProgramAddress(seeds, programID)
}

func (ProgramDeriver) FindProgramAddress(seeds [][]byte, programID Pubkey) (Pubkey, uint8, error) {
	return FindProgramAddress(seeds, programID)
}

// CreateProgramAddress hashes the seeds together with the program ID. The
// result is rejected when it is a valid Ed25519 point, because a derived
// address must never have a private key that could sign for it.
func CreateProgramAddress(seeds [][]byte, programID Pubkey) (Pubkey, error) {
	var addr Pubkey
	if len(seeds) > MaxSeeds {
		return addr, errors.Wrapf(errors.ErrMaxSeedLengthExceeded, "%d seeds", len(seeds))
	}
	h := sha256.New()
	for i, s := range seeds {
		if len(s) > MaxSeedLen {
			return addr, errors.Wrapf(errors.ErrMaxSeedLengthExceeded, "seed %d is %d bytes", i, len(s))
		}
		h.Write(s)
	}
	h.Write(programID[:])
	h.Write([]byte(pdaMarker))
	copy(addr[:], h.Sum(nil))

	if isOnCurve(addr) {
		return Pubkey{}, errors.Wrap(errors.ErrInvalidSeeds, "address on curve")
	}
	return addr, nil
}

// FindProgramAddress tries witness values from 255 down to 0 and returns the
// first one producing a valid address. The witness is appended to the seeds
// as a single byte.
func FindProgramAddress(seeds [][]byte, programID Pubkey) (Pubkey, uint8, error) {
	withWitness := make([][]byte, len(seeds)+1)
	copy(withWitness, seeds)
	for w := 255; w >= 0; w-- {
		withWitness[len(seeds)] = []byte{uint8(w)}
		addr, err := CreateProgramAddress(withWitness, programID)
		switch {
		case err == nil:
			return addr, uint8(w), nil
		case errors.ErrInvalidSeeds.Is(err):
			continue
		default:
			return Pubkey{}, 0, err
		}
	}
	return Pubkey{}, 0, errors.Wrap(errors.ErrInvalidSeeds, "no viable witness")
}

// SignerSeeds returns seeds with the witness appended, as expected by
// SlotStore.Create.
func SignerSeeds(seeds [][]byte, witness uint8) [][]byte {
	out := make([][]byte, 0, len(seeds)+1)
	out = append(out, seeds...)
	return append(out, []byte{witness})
}

func isOnCurve(b Pubkey) bool {
	_, err := new(edwards25519.Point).SetBytes(b[:])
	return err == nil
}
