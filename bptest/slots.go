package bptest

import (
	"github.com/iov-one/blueprint"
	"github.com/iov-one/blueprint/errors"
)

// MemSlots is an in-memory blueprint.SlotStore enforcing the same rules as
// the ledger for a single program: allocation must be authorized with
// seeds, writes go only to slots owned by ProgramID and never past their
// size.
//
// It does not track lamports. Every write is counted so tests can ensure a
// failed call left the state untouched.
type MemSlots struct {
	ProgramID blueprint.Pubkey
	Slots     map[blueprint.Pubkey]*blueprint.Slot
	// Writes counts successful Create and Write calls.
	Writes int
}

var (
	_ blueprint.SlotStore    = (*MemSlots)(nil)
	_ blueprint.GenesisStore = (*MemSlots)(nil)
)

// NewMemSlots returns an empty store for given program.
func NewMemSlots(programID blueprint.Pubkey) *MemSlots {
	return &MemSlots{
		ProgramID: programID,
		Slots:     make(map[blueprint.Pubkey]*blueprint.Slot),
	}
}

// Slot returns a copy of the stored slot.
func (m *MemSlots) Slot(addr blueprint.Pubkey) (*blueprint.Slot, error) {
	s, ok := m.Slots[addr]
	if !ok {
		return nil, errors.Wrapf(errors.ErrUninitializedAccount, "account %s", addr)
	}
	return copySlot(s), nil
}

func (m *MemSlots) Create(payer, addr blueprint.Pubkey, size int, owner blueprint.Pubkey, signerSeeds [][]byte) error {
	if _, ok := m.Slots[addr]; ok {
		return errors.Wrapf(errors.ErrAccountAlreadyInUse, "account %s", addr)
	}
	derived, err := blueprint.CreateProgramAddress(signerSeeds, m.ProgramID)
	if err != nil || derived != addr {
		return errors.Wrapf(errors.ErrMissingSignature, "seeds do not sign for %s", addr)
	}
	m.Slots[addr] = &blueprint.Slot{
		Address: addr,
		Owner:   owner,
		Data:    make([]byte, size),
	}
	m.Writes++
	return nil
}

func (m *MemSlots) Write(addr blueprint.Pubkey, data []byte) error {
	s, ok := m.Slots[addr]
	if !ok {
		return errors.Wrapf(errors.ErrUninitializedAccount, "account %s", addr)
	}
	if s.Owner != m.ProgramID {
		return errors.Wrapf(errors.ErrIncorrectProgramID, "account %s", addr)
	}
	if len(data) > len(s.Data) {
		return errors.Wrapf(errors.ErrAccountDataTooSmall, "%d bytes into %d", len(data), len(s.Data))
	}
	copy(s.Data, data)
	m.Writes++
	return nil
}

// PutSlot places a slot directly. Use it to prepare the state of a test,
// including slots that a program could never create.
func (m *MemSlots) PutSlot(slot blueprint.Slot) error {
	if _, ok := m.Slots[slot.Address]; ok {
		return errors.Wrapf(errors.ErrAccountAlreadyInUse, "account %s", slot.Address)
	}
	m.Slots[slot.Address] = copySlot(&slot)
	return nil
}

// Snapshot returns a deep copy of the stored slots.
func (m *MemSlots) Snapshot() map[blueprint.Pubkey]*blueprint.Slot {
	out := make(map[blueprint.Pubkey]*blueprint.Slot, len(m.Slots))
	for k, s := range m.Slots {
		out[k] = copySlot(s)
	}
	return out
}

// Env returns the capabilities of an invocation of ProgramID with given
// signers.
func (m *MemSlots) Env(signers ...blueprint.Pubkey) blueprint.Env {
	return blueprint.Env{
		ProgramID: m.ProgramID,
		Signers:   &Signers{Signers: signers},
		Slots:     m,
		Deriver:   blueprint.ProgramDeriver{},
	}
}

func copySlot(s *blueprint.Slot) *blueprint.Slot {
	data := make([]byte, len(s.Data))
	copy(data, s.Data)
	return &blueprint.Slot{
		Address:  s.Address,
		Owner:    s.Owner,
		Lamports: s.Lamports,
		Data:     data,
	}
}
