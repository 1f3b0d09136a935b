package ledger

import (
	"fmt"

	"github.com/tendermint/tendermint/libs/log"

	"github.com/iov-one/blueprint"
	"github.com/iov-one/blueprint/errors"
	"github.com/iov-one/blueprint/store"
)

const replayPrefix = "sig:"

// Committer persists the state written so far as a new version.
type Committer interface {
	Commit() (store.CommitID, error)
}

// Ledger holds accounts and executes transactions against them.
//
// Transactions are executed one at a time; Ledger is not safe for
// concurrent use.
type Ledger struct {
	state     store.CacheableKVStore
	committer Committer
	programs  map[blueprint.Pubkey]blueprint.Handler
	deriver   blueprint.Deriver
	logger    log.Logger
	debug     bool
}

var _ blueprint.SlotReader = (*Ledger)(nil)

// New returns a ledger keeping its accounts in state.
func New(state store.CacheableKVStore) *Ledger {
	return &Ledger{
		state:    state,
		programs: make(map[blueprint.Pubkey]blueprint.Handler),
		deriver:  blueprint.ProgramDeriver{},
		logger:   log.NewNopLogger(),
	}
}

// WithCommitter sets the store used by Commit.
func (l *Ledger) WithCommitter(c Committer) *Ledger {
	l.committer = c
	return l
}

// WithLogger sets the node logger.
func (l *Ledger) WithLogger(logger log.Logger) *Ledger {
	l.logger = logger
	return l
}

// WithDebug makes results carry full error details, stack traces included.
func (l *Ledger) WithDebug(debug bool) *Ledger {
	l.debug = debug
	return l
}

// Register deploys a program under given id.
//
// It panics when the id is already taken. Use it only during startup.
func (l *Ledger) Register(programID blueprint.Pubkey, h blueprint.Handler) {
	if programID == blueprint.SystemProgramID {
		panic("system program id is reserved")
	}
	if _, ok := l.programs[programID]; ok {
		panic(fmt.Sprintf("program %s is already registered", programID))
	}
	l.programs[programID] = h
}

// Result describes the outcome of a transaction.
type Result struct {
	// ID is the first signature of the transaction.
	ID string `json:"id"`
	// Code is zero on success. When Custom is set, the code was returned by
	// the program and has a meaning only within that program.
	Code   uint32 `json:"code"`
	Custom bool   `json:"custom,omitempty"`
	Log    string `json:"log,omitempty"`
	// Logs are the lines emitted by programs, successful or not.
	Logs []string `json:"logs,omitempty"`
	// Err is the error that rejected the transaction.
	Err error `json:"-"`
}

// IsOK returns true if the transaction was applied.
func (r *Result) IsOK() bool {
	return r.Err == nil
}

// Submit executes the transaction. State changes only if every instruction
// succeeds.
func (l *Ledger) Submit(ctx blueprint.Context, tx *Transaction) *Result {
	res := &Result{ID: tx.ID()}
	logs := &programLog{}
	err := l.deliver(ctx, tx, logs)
	res.Code, res.Custom, res.Log = errors.Status(err, l.debug)
	res.Logs = logs.lines
	res.Err = err

	if err != nil {
		l.logger.Debug("transaction rejected", "id", res.ID, "code", res.Code, "custom", res.Custom, "log", res.Log)
	} else {
		l.logger.Info("transaction applied", "id", res.ID, "instructions", len(tx.Message.Instructions))
	}
	return res
}

func (l *Ledger) deliver(ctx blueprint.Context, tx *Transaction, logs *programLog) (err error) {
	defer errors.Recover(&err)

	if _, err := tx.Verify(); err != nil {
		return err
	}
	replayKey := append([]byte(replayPrefix), tx.Signatures[0]...)
	seen, err := l.state.Has(replayKey)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	if seen {
		return errors.Wrapf(errors.ErrDuplicate, "transaction %s", tx.ID())
	}

	ctx = blueprint.WithTxSignature(ctx, tx.Signatures[0])
	cache := l.state.CacheWrap()
	for i, ix := range tx.Message.Instructions {
		if err := l.invoke(ctx, cache, ix, logs); err != nil {
			cache.Discard()
			return errors.Wrapf(err, "instruction %d", i)
		}
	}
	if err := cache.Set(replayKey, []byte{1}); err != nil {
		cache.Discard()
		return err
	}
	return cache.Write()
}

func (l *Ledger) invoke(ctx blueprint.Context, kv store.KVStore, ix blueprint.Instruction, logs *programLog) error {
	inv := &invocation{
		kv:      kv,
		metas:   ix.Accounts,
		program: ix.ProgramID,
		deriver: l.deriver,
	}
	logger := programLogger{
		log:  logs,
		next: l.logger.With("program", ix.ProgramID.String()),
	}
	ctx = blueprint.WithLogger(ctx, logger)

	if ix.ProgramID == blueprint.SystemProgramID {
		return processSystem(ctx, inv, ix.Data)
	}
	h, ok := l.programs[ix.ProgramID]
	if !ok {
		return errors.Wrapf(errors.ErrIncorrectProgramID, "no program %s", ix.ProgramID)
	}
	env := blueprint.Env{
		ProgramID: ix.ProgramID,
		Signers:   inv,
		Slots:     inv,
		Deriver:   l.deriver,
	}
	return h.Process(ctx, env, ix.Accounts, ix.Data)
}

// Airdrop credits lamports to addr out of thin air. It exists for
// development ledgers and tests.
func (l *Ledger) Airdrop(addr blueprint.Pubkey, lamports uint64) error {
	cache := l.state.CacheWrap()
	if err := credit(cache, addr, lamports); err != nil {
		cache.Discard()
		return err
	}
	return cache.Write()
}

// Account returns the account at addr.
func (l *Ledger) Account(addr blueprint.Pubkey) (*Account, error) {
	acc, err := loadAccount(l.state, addr)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, errors.Wrapf(errors.ErrUninitializedAccount, "account %s", addr)
	}
	return acc, nil
}

// Balance returns the lamports held by addr, zero if there is no account.
func (l *Ledger) Balance(addr blueprint.Pubkey) (uint64, error) {
	acc, err := loadAccount(l.state, addr)
	if err != nil || acc == nil {
		return 0, err
	}
	return acc.Lamports, nil
}

// Slot implements blueprint.SlotReader for external readers.
func (l *Ledger) Slot(addr blueprint.Pubkey) (*blueprint.Slot, error) {
	acc, err := l.Account(addr)
	if err != nil {
		return nil, err
	}
	return acc.Slot(addr), nil
}

// OwnedBy lists every slot owned by given program, ordered by address.
func (l *Ledger) OwnedBy(owner blueprint.Pubkey) ([]*blueprint.Slot, error) {
	start, end := store.PrefixRange([]byte(accountPrefix))
	it, err := l.state.Iterator(start, end)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	var slots []*blueprint.Slot
	for _, m := range store.Collect(it) {
		var acc Account
		if err := acc.Unmarshal(m.Value); err != nil {
			return nil, err
		}
		if acc.Owner != owner {
			continue
		}
		addr, err := blueprint.PubkeyFromBytes(m.Key[len(accountPrefix):])
		if err != nil {
			return nil, errors.Wrap(errors.ErrInvalidAccountData, "account key")
		}
		slots = append(slots, acc.Slot(addr))
	}
	return slots, nil
}

// Commit persists the state as a new version. It is a no-op returning an
// empty id for ledgers without a committer.
func (l *Ledger) Commit() (store.CommitID, error) {
	if l.committer == nil {
		return store.CommitID{}, nil
	}
	id, err := l.committer.Commit()
	if err != nil {
		return id, err
	}
	l.logger.Info("state committed", "version", id.Version, "hash", fmt.Sprintf("%X", id.Hash))
	return id, nil
}
