package ledger

import (
	"github.com/tendermint/go-amino"

	"github.com/iov-one/blueprint"
	"github.com/iov-one/blueprint/errors"
	"github.com/iov-one/blueprint/store"
)

const (
	accountPrefix = "acct:"

	// MaxSlotSize is the largest slot that can be allocated.
	MaxSlotSize = 10 * 1024 * 1024

	// accountStorageOverhead is the number of bytes charged for on top of
	// the account data.
	accountStorageOverhead = 128
	lamportsPerByteYear    = 3480
	exemptionYears         = 2
)

// MinimumBalance returns the lamports an account of given data size must
// hold to be exempt from rent. Creating a slot charges exactly this amount.
func MinimumBalance(size int) uint64 {
	return uint64(accountStorageOverhead+size) * lamportsPerByteYear * exemptionYears
}

var cdc = amino.NewCodec()

// Account is the state kept for every address.
type Account struct {
	Owner    blueprint.Pubkey
	Lamports uint64
	Data     []byte
}

// accountRecord is the stored form of an Account.
type accountRecord struct {
	Owner    []byte
	Lamports uint64
	Data     []byte
}

// Marshal serializes the account.
func (a *Account) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(accountRecord{
		Owner:    a.Owner[:],
		Lamports: a.Lamports,
		Data:     a.Data,
	})
}

// Unmarshal deserializes the account.
func (a *Account) Unmarshal(raw []byte) error {
	var rec accountRecord
	if err := cdc.UnmarshalBinaryBare(raw, &rec); err != nil {
		return errors.Wrap(errors.ErrInvalidAccountData, err.Error())
	}
	owner, err := blueprint.PubkeyFromBytes(rec.Owner)
	if err != nil {
		return errors.Wrap(errors.ErrInvalidAccountData, "owner")
	}
	a.Owner = owner
	a.Lamports = rec.Lamports
	a.Data = rec.Data
	if a.Data == nil {
		a.Data = []byte{}
	}
	return nil
}

// Slot returns the program view of the account stored at addr.
func (a *Account) Slot(addr blueprint.Pubkey) *blueprint.Slot {
	return &blueprint.Slot{
		Address:  addr,
		Owner:    a.Owner,
		Lamports: a.Lamports,
		Data:     a.Data,
	}
}

func (a *Account) isEmpty() bool {
	return a.Lamports == 0 && len(a.Data) == 0
}

func accountKey(addr blueprint.Pubkey) []byte {
	return append([]byte(accountPrefix), addr[:]...)
}

// loadAccount returns the account at addr, or nil if there is none.
func loadAccount(kv store.ReadOnlyKVStore, addr blueprint.Pubkey) (*Account, error) {
	raw, err := kv.Get(accountKey(addr))
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	if raw == nil {
		return nil, nil
	}
	var acc Account
	if err := acc.Unmarshal(raw); err != nil {
		return nil, errors.Wrapf(err, "account %s", addr)
	}
	return &acc, nil
}

// saveAccount stores acc at addr. An account without lamports and data
// ceases to exist.
func saveAccount(kv store.KVStore, addr blueprint.Pubkey, acc *Account) error {
	if acc.isEmpty() {
		return kv.Delete(accountKey(addr))
	}
	raw, err := acc.Marshal()
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return kv.Set(accountKey(addr), raw)
}

// credit adds lamports to addr, creating a system owned account if needed.
func credit(kv store.KVStore, addr blueprint.Pubkey, lamports uint64) error {
	acc, err := loadAccount(kv, addr)
	if err != nil {
		return err
	}
	if acc == nil {
		acc = &Account{Owner: blueprint.SystemProgramID, Data: []byte{}}
	}
	if acc.Lamports+lamports < acc.Lamports {
		return errors.Wrap(errors.ErrInvalidArgument, "lamports overflow")
	}
	acc.Lamports += lamports
	return saveAccount(kv, addr, acc)
}

// debit removes lamports from a system owned account.
func debit(kv store.KVStore, addr blueprint.Pubkey, lamports uint64) error {
	acc, err := loadAccount(kv, addr)
	if err != nil {
		return err
	}
	if acc == nil {
		return errors.Wrapf(errors.ErrInsufficientFunds, "no account %s", addr)
	}
	if acc.Owner != blueprint.SystemProgramID {
		return errors.Wrapf(errors.ErrIncorrectProgramID, "account %s is not a wallet", addr)
	}
	if acc.Lamports < lamports {
		return errors.Wrapf(errors.ErrInsufficientFunds, "%s holds %d, need %d", addr, acc.Lamports, lamports)
	}
	acc.Lamports -= lamports
	return saveAccount(kv, addr, acc)
}
