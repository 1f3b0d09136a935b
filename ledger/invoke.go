package ledger

import (
	"github.com/iov-one/blueprint"
	"github.com/iov-one/blueprint/errors"
	"github.com/iov-one/blueprint/store"
)

// invocation is the view a program gets of the ledger while it processes a
// single instruction. Access is limited to the accounts the instruction
// references, with the privileges it declares.
type invocation struct {
	kv      store.KVStore
	metas   []blueprint.AccountMeta
	program blueprint.Pubkey
	deriver blueprint.Deriver
}

var (
	_ blueprint.SlotStore = (*invocation)(nil)
	_ blueprint.SignerSet = (*invocation)(nil)
)

func (inv *invocation) meta(addr blueprint.Pubkey) (blueprint.AccountMeta, bool) {
	for _, m := range inv.metas {
		if m.Pubkey == addr {
			return m, true
		}
	}
	return blueprint.AccountMeta{}, false
}

// IsSigner is true for accounts the instruction marks as signers. All of
// them were verified against the transaction signatures.
func (inv *invocation) IsSigner(pk blueprint.Pubkey) bool {
	for _, m := range inv.metas {
		if m.Pubkey == pk && m.IsSigner {
			return true
		}
	}
	return false
}

// requireWritable ensures addr is referenced as writable, and as a signer
// if signer is set.
func (inv *invocation) requireWritable(addr blueprint.Pubkey, signer bool) error {
	m, ok := inv.meta(addr)
	if !ok {
		return errors.Wrapf(errors.ErrNotEnoughAccountKeys, "account %s not referenced", addr)
	}
	if signer && !m.IsSigner {
		return errors.Wrapf(errors.ErrMissingSignature, "account %s", addr)
	}
	if !m.IsWritable {
		return errors.Wrapf(errors.ErrReadonlyDataModified, "account %s", addr)
	}
	return nil
}

func (inv *invocation) Slot(addr blueprint.Pubkey) (*blueprint.Slot, error) {
	if _, ok := inv.meta(addr); !ok {
		return nil, errors.Wrapf(errors.ErrNotEnoughAccountKeys, "account %s not referenced", addr)
	}
	acc, err := loadAccount(inv.kv, addr)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, errors.Wrapf(errors.ErrUninitializedAccount, "account %s", addr)
	}
	return acc.Slot(addr), nil
}

func (inv *invocation) Create(payer, addr blueprint.Pubkey, size int, owner blueprint.Pubkey, signerSeeds [][]byte) error {
	if size < 0 || size > MaxSlotSize {
		return errors.Wrapf(errors.ErrInvalidArgument, "slot size %d", size)
	}
	if err := inv.requireWritable(payer, true); err != nil {
		return errors.Wrap(err, "payer")
	}
	if err := inv.requireWritable(addr, false); err != nil {
		return errors.Wrap(err, "new slot")
	}
	derived, err := inv.deriver.CreateProgramAddress(signerSeeds, inv.program)
	if err != nil || derived != addr {
		return errors.Wrapf(errors.ErrMissingSignature, "seeds do not sign for %s", addr)
	}
	return allocate(inv.kv, payer, addr, size, owner)
}

func (inv *invocation) Write(addr blueprint.Pubkey, data []byte) error {
	if err := inv.requireWritable(addr, false); err != nil {
		return err
	}
	acc, err := loadAccount(inv.kv, addr)
	if err != nil {
		return err
	}
	if acc == nil {
		return errors.Wrapf(errors.ErrUninitializedAccount, "account %s", addr)
	}
	if acc.Owner != inv.program {
		return errors.Wrapf(errors.ErrIncorrectProgramID, "account %s is owned by %s", addr, acc.Owner)
	}
	if len(data) > len(acc.Data) {
		return errors.Wrapf(errors.ErrAccountDataTooSmall, "%d bytes into a slot of %d", len(data), len(acc.Data))
	}
	copy(acc.Data, data)
	return saveAccount(inv.kv, addr, acc)
}

// allocate creates a rent exempt account of given size at addr, paid by
// payer.
func allocate(kv store.KVStore, payer, addr blueprint.Pubkey, size int, owner blueprint.Pubkey) error {
	existing, err := loadAccount(kv, addr)
	if err != nil {
		return err
	}
	if existing != nil {
		return errors.Wrapf(errors.ErrAccountAlreadyInUse, "account %s", addr)
	}
	rent := MinimumBalance(size)
	if err := debit(kv, payer, rent); err != nil {
		return err
	}
	return saveAccount(kv, addr, &Account{
		Owner:    owner,
		Lamports: rent,
		Data:     make([]byte, size),
	})
}
