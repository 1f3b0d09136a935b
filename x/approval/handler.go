package approval

import (
	"github.com/iov-one/blueprint"
	"github.com/iov-one/blueprint/errors"
)

// Processor is the program entry point. It decodes the instruction data and
// routes the command to its handler.
type Processor struct {
	initialize InitializeHandler
	propose    ProposeHandler
	approve    ApproveHandler
	execute    ExecuteHandler
}

var _ blueprint.Handler = Processor{}

// NewProcessor returns the program ready to be registered with a ledger.
func NewProcessor() Processor {
	return Processor{}
}

// Process implements blueprint.Handler.
func (p Processor) Process(ctx blueprint.Context, env blueprint.Env, accounts []blueprint.AccountMeta, data []byte) error {
	cmd, err := UnmarshalCommand(data)
	if err != nil {
		return err
	}
	if len(accounts) < cmd.Accounts() {
		return errors.Wrapf(errors.ErrNotEnoughAccountKeys, "%s needs %d accounts, got %d", cmd.Name(), cmd.Accounts(), len(accounts))
	}
	ctx = blueprint.WithLogInfo(ctx, "cmd", cmd.Name())

	switch msg := cmd.(type) {
	case *InitializeMsg:
		return p.initialize.Deliver(ctx, env, accounts, msg)
	case *ProposeMsg:
		return p.propose.Deliver(ctx, env, accounts, msg)
	case *ApproveMsg:
		return p.approve.Deliver(ctx, env, accounts)
	case *ExecuteMsg:
		return p.execute.Deliver(ctx, env, accounts)
	default:
		return errors.Wrapf(ErrInvalidInstruction, "unsupported command %T", cmd)
	}
}

// InitializeHandler creates a blueprint.
type InitializeHandler struct{}

// Deliver allocates the blueprint slot of the authority and stores the
// approver set and threshold in it.
func (h InitializeHandler) Deliver(ctx blueprint.Context, env blueprint.Env, accounts []blueprint.AccountMeta, msg *InitializeMsg) error {
	bp, addr, witness, err := h.validate(env, accounts, msg)
	if err != nil {
		return err
	}

	data := bp.Marshal()
	seeds := blueprint.SignerSeeds(BlueprintSeeds(bp.Authority), witness)
	if err := env.Slots.Create(bp.Authority, addr, len(data), env.ProgramID, seeds); err != nil {
		return errors.Wrap(err, "cannot allocate blueprint")
	}
	if err := env.Slots.Write(addr, data); err != nil {
		return errors.Wrap(err, "cannot store blueprint")
	}

	blueprint.GetLogger(ctx).Info("blueprint initialized",
		"authority", bp.Authority, "approvers", len(bp.Approvers), "threshold", bp.Threshold)
	return nil
}

func (h InitializeHandler) validate(env blueprint.Env, accounts []blueprint.AccountMeta, msg *InitializeMsg) (*Blueprint, blueprint.Pubkey, uint8, error) {
	authority, slot := accounts[0].Pubkey, accounts[1].Pubkey
	if !env.Signers.IsSigner(authority) {
		return nil, slot, 0, errors.Wrap(errors.ErrMissingSignature, "authority")
	}
	if err := msg.Validate(); err != nil {
		return nil, slot, 0, err
	}
	addr, witness, err := BlueprintAddress(env.Deriver, env.ProgramID, authority)
	if err != nil {
		return nil, slot, 0, err
	}
	if addr != slot {
		return nil, slot, 0, errors.Wrapf(errors.ErrInvalidSeeds, "blueprint of %s is %s, got %s", authority, addr, slot)
	}
	if err := requireSystemProgram(accounts[2]); err != nil {
		return nil, slot, 0, err
	}
	bp := &Blueprint{
		Authority: authority,
		Approvers: msg.Approvers,
		Threshold: msg.Threshold,
	}
	return bp, addr, witness, nil
}

// ProposeHandler registers proposals.
type ProposeHandler struct{}

// Deliver allocates a proposal slot large enough to hold an approval of
// every approver and stores a fresh proposal in it.
func (h ProposeHandler) Deliver(ctx blueprint.Context, env blueprint.Env, accounts []blueprint.AccountMeta, msg *ProposeMsg) error {
	bp, p, addr, witness, err := h.validate(env, accounts, msg)
	if err != nil {
		return err
	}

	seeds := blueprint.SignerSeeds(ProposalSeeds(p.Blueprint, p.PayloadHash), witness)
	if err := env.Slots.Create(p.Proposer, addr, ProposalSize(len(bp.Approvers)), env.ProgramID, seeds); err != nil {
		return errors.Wrap(err, "cannot allocate proposal")
	}
	if err := env.Slots.Write(addr, p.Marshal()); err != nil {
		return errors.Wrap(err, "cannot store proposal")
	}

	blueprint.GetLogger(ctx).Info("proposal created",
		"action_type", p.ActionType, "threshold", bp.Threshold)
	return nil
}

func (h ProposeHandler) validate(env blueprint.Env, accounts []blueprint.AccountMeta, msg *ProposeMsg) (*Blueprint, *Proposal, blueprint.Pubkey, uint8, error) {
	proposer, bpAddr, slot := accounts[0].Pubkey, accounts[1].Pubkey, accounts[2].Pubkey
	if !env.Signers.IsSigner(proposer) {
		return nil, nil, slot, 0, errors.Wrap(errors.ErrMissingSignature, "proposer")
	}
	bp, err := loadBlueprint(env.Slots, env.Deriver, env.ProgramID, bpAddr)
	if err != nil {
		return nil, nil, slot, 0, err
	}
	addr, witness, err := ProposalAddress(env.Deriver, env.ProgramID, bpAddr, msg.PayloadHash)
	if err != nil {
		return nil, nil, slot, 0, err
	}
	if addr != slot {
		return nil, nil, slot, 0, errors.Wrapf(errors.ErrInvalidSeeds, "proposal address is %s, got %s", addr, slot)
	}
	if err := requireSystemProgram(accounts[3]); err != nil {
		return nil, nil, slot, 0, err
	}
	p := &Proposal{
		Blueprint:   bpAddr,
		Proposer:    proposer,
		ActionType:  msg.ActionType,
		PayloadHash: msg.PayloadHash,
	}
	return bp, p, addr, witness, nil
}

// ApproveHandler records approvals.
type ApproveHandler struct{}

// Deliver appends the signer to the proposal approvals.
func (h ApproveHandler) Deliver(ctx blueprint.Context, env blueprint.Env, accounts []blueprint.AccountMeta) error {
	bp, p, data, err := h.validate(env, accounts)
	if err != nil {
		return err
	}
	if err := env.Slots.Write(accounts[2].Pubkey, data); err != nil {
		return errors.Wrap(err, "cannot store proposal")
	}

	blueprint.GetLogger(ctx).Info("approved",
		"approvals", len(p.Approvals), "threshold", bp.Threshold, "state", p.State(bp.Threshold))
	return nil
}

// validate returns the updated proposal and its encoding.
func (h ApproveHandler) validate(env blueprint.Env, accounts []blueprint.AccountMeta) (*Blueprint, *Proposal, []byte, error) {
	approver := accounts[0].Pubkey
	if !env.Signers.IsSigner(approver) {
		return nil, nil, nil, errors.Wrap(errors.ErrMissingSignature, "approver")
	}
	bp, p, capacity, err := loadPair(env, accounts[1].Pubkey, accounts[2].Pubkey)
	if err != nil {
		return nil, nil, nil, err
	}
	if p.Executed {
		return nil, nil, nil, ErrAlreadyExecuted
	}
	if !bp.IsApprover(approver) {
		return nil, nil, nil, errors.Wrapf(ErrUnauthorized, "%s is not an approver", approver)
	}
	if p.HasApproved(approver) {
		return nil, nil, nil, errors.Wrapf(ErrAlreadyApproved, "by %s", approver)
	}

	p.Approvals = append(p.Approvals, approver)
	data := p.Marshal()
	if len(data) > capacity {
		return nil, nil, nil, errors.Wrapf(errors.ErrAccountDataTooSmall, "proposal of %d bytes in a slot of %d", len(data), capacity)
	}
	return bp, p, data, nil
}

// ExecuteHandler marks proposals executed.
type ExecuteHandler struct{}

// Deliver flips the executed flag of a proposal with enough approvals.
func (h ExecuteHandler) Deliver(ctx blueprint.Context, env blueprint.Env, accounts []blueprint.AccountMeta) error {
	p, err := h.validate(env, accounts)
	if err != nil {
		return err
	}
	p.Executed = true
	if err := env.Slots.Write(accounts[2].Pubkey, p.Marshal()); err != nil {
		return errors.Wrap(err, "cannot store proposal")
	}

	blueprint.GetLogger(ctx).Info("proposal executed",
		"action_type", p.ActionType, "payload_hash", hexHash(p.PayloadHash))
	return nil
}

func (h ExecuteHandler) validate(env blueprint.Env, accounts []blueprint.AccountMeta) (*Proposal, error) {
	if !env.Signers.IsSigner(accounts[0].Pubkey) {
		return nil, errors.Wrap(errors.ErrMissingSignature, "executor")
	}
	bp, p, _, err := loadPair(env, accounts[1].Pubkey, accounts[2].Pubkey)
	if err != nil {
		return nil, err
	}
	if p.Executed {
		return nil, ErrAlreadyExecuted
	}
	if len(p.Approvals) < int(bp.Threshold) {
		return nil, errors.Wrapf(ErrNotEnoughApprovals, "%d of %d", len(p.Approvals), bp.Threshold)
	}
	return p, nil
}
