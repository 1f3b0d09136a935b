package blueprint

import (
	"encoding/json"
)

// Handler is a program. It processes one instruction addressed to it.
//
// All checks must happen before any write to the SlotStore. A handler that
// returns an error must not have modified any slot.
type Handler interface {
	Process(ctx Context, env Env, accounts []AccountMeta, data []byte) error
}

// Env bundles the capabilities of a single program invocation.
type Env struct {
	// ProgramID is the identity of the invoked program. Slots it creates
	// are owned by it.
	ProgramID Pubkey
	Signers   SignerSet
	Slots     SlotStore
	Deriver   Deriver
}

// SignerSet reports which identities attested the current transaction.
type SignerSet interface {
	IsSigner(Pubkey) bool
}

// SlotReader provides read access to allocated slots.
type SlotReader interface {
	// Slot returns the slot allocated at given address or
	// errors.ErrUninitializedAccount.
	Slot(addr Pubkey) (*Slot, error)
}

// SlotStore is the program view of the ledger storage.
type SlotStore interface {
	SlotReader

	// Create allocates a zeroed slot of exactly size bytes at addr, owned
	// by owner and funded by payer. signerSeeds are the seeds, witness
	// included, that derive addr under owner. They authorize the creation
	// on behalf of the derived address.
	Create(payer, addr Pubkey, size int, owner Pubkey, signerSeeds [][]byte) error

	// Write overwrites the beginning of the slot with data. Bytes past
	// len(data) are unchanged. Data longer than the slot is rejected.
	Write(addr Pubkey, data []byte) error
}

// Slot is an addressable storage cell.
type Slot struct {
	Address  Pubkey
	Owner    Pubkey
	Lamports uint64
	Data     []byte
}

// Options are the genesis options.
// Each extension can look up it's key and parse the json as desired
type Options map[string]json.RawMessage

// ReadOptions reads the values stored under a given key,
// and parses the json into the given obj.
// Returns an error if it cannot parse.
// Noop and no error if key is missing
func (o Options) ReadOptions(key string, obj interface{}) error {
	msg := o[key]
	if len(msg) == 0 {
		return nil
	}
	return json.Unmarshal(msg, obj)
}

// GenesisStore is used by initializers to place slots directly into the
// ledger state, bypassing program invocation.
type GenesisStore interface {
	SlotReader
	PutSlot(slot Slot) error
}

// Initializer implementations are used to initialize
// programs from genesis file contents
type Initializer interface {
	FromGenesis(Options, GenesisStore) error
}
