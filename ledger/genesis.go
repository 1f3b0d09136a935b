package ledger

import (
	"github.com/iov-one/blueprint"
	"github.com/iov-one/blueprint/errors"
	"github.com/iov-one/blueprint/store"
)

const genesisKey = "internal/genesis"

// GenesisAccount is a wallet funded at genesis.
type GenesisAccount struct {
	Address  blueprint.Pubkey `json:"address"`
	Lamports uint64           `json:"lamports"`
}

// InitGenesis funds the wallets listed under the "ledger" options key and
// runs every initializer. It can be done only once per ledger.
//
//   {"ledger": [{"address": "...", "lamports": 1000000}], ...}
func (l *Ledger) InitGenesis(opts blueprint.Options, inits ...blueprint.Initializer) error {
	done, err := l.state.Has([]byte(genesisKey))
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	if done {
		return errors.Wrap(errors.ErrDuplicate, "genesis already loaded")
	}

	var accounts []GenesisAccount
	if err := opts.ReadOptions("ledger", &accounts); err != nil {
		return errors.Wrap(errors.ErrInvalidInput, err.Error())
	}

	cache := l.state.CacheWrap()
	for _, a := range accounts {
		if err := credit(cache, a.Address, a.Lamports); err != nil {
			cache.Discard()
			return errors.Wrapf(err, "account %s", a.Address)
		}
	}
	gs := genesisStore{kv: cache}
	for _, init := range inits {
		if err := init.FromGenesis(opts, gs); err != nil {
			cache.Discard()
			return err
		}
	}
	if err := cache.Set([]byte(genesisKey), []byte{1}); err != nil {
		cache.Discard()
		return err
	}
	l.logger.Info("genesis loaded", "accounts", len(accounts), "initializers", len(inits))
	return cache.Write()
}

// genesisStore places slots directly, without rent payment.
type genesisStore struct {
	kv store.KVStore
}

var _ blueprint.GenesisStore = genesisStore{}

func (g genesisStore) Slot(addr blueprint.Pubkey) (*blueprint.Slot, error) {
	acc, err := loadAccount(g.kv, addr)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, errors.Wrapf(errors.ErrUninitializedAccount, "account %s", addr)
	}
	return acc.Slot(addr), nil
}

// PutSlot creates the slot. Lamports default to the rent exemption of the
// slot size.
func (g genesisStore) PutSlot(slot blueprint.Slot) error {
	existing, err := loadAccount(g.kv, slot.Address)
	if err != nil {
		return err
	}
	if existing != nil {
		return errors.Wrapf(errors.ErrAccountAlreadyInUse, "account %s", slot.Address)
	}
	lamports := slot.Lamports
	if lamports == 0 {
		lamports = MinimumBalance(len(slot.Data))
	}
	data := make([]byte, len(slot.Data))
	copy(data, slot.Data)
	return saveAccount(g.kv, slot.Address, &Account{
		Owner:    slot.Owner,
		Lamports: lamports,
		Data:     data,
	})
}
