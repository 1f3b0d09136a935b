package ledger

import (
	"github.com/iov-one/blueprint"
	"github.com/iov-one/blueprint/codec"
	"github.com/iov-one/blueprint/errors"
)

// System program instruction tags.
const (
	systemCreateAccount uint32 = 0
	systemTransfer      uint32 = 2
)

// NewCreateAccountInstruction allocates space bytes at newAccount, owned by
// owner. newAccount must sign, so it must be a keypair and not a derived
// address.
func NewCreateAccountInstruction(from, newAccount blueprint.Pubkey, lamports, space uint64, owner blueprint.Pubkey) blueprint.Instruction {
	e := codec.NewEncoder(52)
	e.U32(systemCreateAccount)
	e.U64(lamports)
	e.U64(space)
	e.Bytes32(owner)
	return blueprint.Instruction{
		ProgramID: blueprint.SystemProgramID,
		Accounts: []blueprint.AccountMeta{
			blueprint.NewAccountMeta(from, true),
			blueprint.NewAccountMeta(newAccount, true),
		},
		Data: e.Bytes(),
	}
}

// NewTransferInstruction moves lamports between two accounts.
func NewTransferInstruction(from, to blueprint.Pubkey, lamports uint64) blueprint.Instruction {
	e := codec.NewEncoder(12)
	e.U32(systemTransfer)
	e.U64(lamports)
	return blueprint.Instruction{
		ProgramID: blueprint.SystemProgramID,
		Accounts: []blueprint.AccountMeta{
			blueprint.NewAccountMeta(from, true),
			blueprint.NewAccountMeta(to, false),
		},
		Data: e.Bytes(),
	}
}

// processSystem executes a system program instruction.
func processSystem(ctx blueprint.Context, inv *invocation, data []byte) error {
	if len(inv.metas) < 2 {
		return errors.Wrap(errors.ErrNotEnoughAccountKeys, "system instruction")
	}
	from, to := inv.metas[0].Pubkey, inv.metas[1].Pubkey

	d := codec.NewDecoder(data)
	tag, err := d.U32()
	if err != nil {
		return errors.Wrap(errors.ErrInvalidInstructionData, err.Error())
	}
	switch tag {
	case systemCreateAccount:
		lamports, space, owner, err := decodeCreateAccount(d)
		if err != nil {
			return errors.Wrap(errors.ErrInvalidInstructionData, err.Error())
		}
		return createAccount(ctx, inv, from, to, lamports, space, owner)
	case systemTransfer:
		lamports, err := d.U64()
		if err == nil {
			err = d.Finish()
		}
		if err != nil {
			return errors.Wrap(errors.ErrInvalidInstructionData, err.Error())
		}
		return transfer(ctx, inv, from, to, lamports)
	default:
		return errors.Wrapf(errors.ErrInvalidInstructionData, "unknown system instruction %d", tag)
	}
}

func decodeCreateAccount(d *codec.Decoder) (lamports, space uint64, owner blueprint.Pubkey, err error) {
	if lamports, err = d.U64(); err != nil {
		return
	}
	if space, err = d.U64(); err != nil {
		return
	}
	if owner, err = d.Bytes32(); err != nil {
		return
	}
	err = d.Finish()
	return
}

func createAccount(ctx blueprint.Context, inv *invocation, from, to blueprint.Pubkey, lamports, space uint64, owner blueprint.Pubkey) error {
	if err := inv.requireWritable(from, true); err != nil {
		return errors.Wrap(err, "funding account")
	}
	if err := inv.requireWritable(to, true); err != nil {
		return errors.Wrap(err, "new account")
	}
	if space > MaxSlotSize {
		return errors.Wrapf(errors.ErrInvalidArgument, "slot size %d", space)
	}
	if need := MinimumBalance(int(space)); lamports < need {
		return errors.Wrapf(errors.ErrInsufficientFunds, "%d lamports, rent exemption needs %d", lamports, need)
	}
	existing, err := loadAccount(inv.kv, to)
	if err != nil {
		return err
	}
	if existing != nil {
		return errors.Wrapf(errors.ErrAccountAlreadyInUse, "account %s", to)
	}
	if err := debit(inv.kv, from, lamports); err != nil {
		return err
	}
	blueprint.GetLogger(ctx).Debug("account created", "address", to, "owner", owner, "space", space)
	return saveAccount(inv.kv, to, &Account{
		Owner:    owner,
		Lamports: lamports,
		Data:     make([]byte, space),
	})
}

func transfer(ctx blueprint.Context, inv *invocation, from, to blueprint.Pubkey, lamports uint64) error {
	if err := inv.requireWritable(from, true); err != nil {
		return errors.Wrap(err, "sender")
	}
	if err := inv.requireWritable(to, false); err != nil {
		return errors.Wrap(err, "recipient")
	}
	if err := debit(inv.kv, from, lamports); err != nil {
		return err
	}
	blueprint.GetLogger(ctx).Debug("transfer", "from", from, "to", to, "lamports", lamports)
	return credit(inv.kv, to, lamports)
}
