package approval

import (
	"github.com/iov-one/blueprint"
	"github.com/iov-one/blueprint/errors"
)

// loadBlueprint reads the blueprint stored at addr. The slot must be owned
// by the program and live at the address derived from the blueprint
// authority.
func loadBlueprint(r blueprint.SlotReader, d blueprint.Deriver, programID, addr blueprint.Pubkey) (*Blueprint, error) {
	slot, err := r.Slot(addr)
	if err != nil {
		return nil, errors.Wrap(err, "blueprint")
	}
	if slot.Owner != programID {
		return nil, errors.Wrapf(errors.ErrIncorrectProgramID, "blueprint %s is owned by %s", addr, slot.Owner)
	}
	var bp Blueprint
	if err := bp.Unmarshal(slot.Data); err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidAccountData, "blueprint %s: %s", addr, err)
	}
	if err := bp.Validate(); err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidAccountData, "blueprint %s: %s", addr, err)
	}
	expected, _, err := BlueprintAddress(d, programID, bp.Authority)
	if err != nil {
		return nil, err
	}
	if expected != addr {
		return nil, errors.Wrapf(errors.ErrInvalidSeeds, "blueprint %s is not derived from its authority", addr)
	}
	return &bp, nil
}

// loadProposal reads the proposal stored at addr. The slot must be owned by
// the program and live at the address derived from the proposal blueprint
// and payload hash.
func loadProposal(r blueprint.SlotReader, d blueprint.Deriver, programID, addr blueprint.Pubkey) (*Proposal, int, error) {
	slot, err := r.Slot(addr)
	if err != nil {
		return nil, 0, errors.Wrap(err, "proposal")
	}
	if slot.Owner != programID {
		return nil, 0, errors.Wrapf(errors.ErrIncorrectProgramID, "proposal %s is owned by %s", addr, slot.Owner)
	}
	var p Proposal
	if err := p.Unmarshal(slot.Data); err != nil {
		return nil, 0, errors.Wrapf(errors.ErrInvalidAccountData, "proposal %s: %s", addr, err)
	}
	expected, _, err := ProposalAddress(d, programID, p.Blueprint, p.PayloadHash)
	if err != nil {
		return nil, 0, err
	}
	if expected != addr {
		return nil, 0, errors.Wrapf(errors.ErrInvalidSeeds, "proposal %s is not derived from its blueprint and payload", addr)
	}
	return &p, len(slot.Data), nil
}

// loadPair reads a blueprint and one of its proposals. A proposal that
// belongs to another blueprint is rejected.
func loadPair(env blueprint.Env, blueprintAddr, proposalAddr blueprint.Pubkey) (*Blueprint, *Proposal, int, error) {
	bp, err := loadBlueprint(env.Slots, env.Deriver, env.ProgramID, blueprintAddr)
	if err != nil {
		return nil, nil, 0, err
	}
	p, capacity, err := loadProposal(env.Slots, env.Deriver, env.ProgramID, proposalAddr)
	if err != nil {
		return nil, nil, 0, err
	}
	if p.Blueprint != blueprintAddr {
		return nil, nil, 0, errors.Wrapf(errors.ErrInvalidSeeds, "proposal %s belongs to blueprint %s", proposalAddr, p.Blueprint)
	}
	return bp, p, capacity, nil
}

// requireSystemProgram checks the account passed where the system program
// is expected.
func requireSystemProgram(meta blueprint.AccountMeta) error {
	if meta.Pubkey != blueprint.SystemProgramID {
		return errors.Wrapf(errors.ErrIncorrectProgramID, "want system program, got %s", meta.Pubkey)
	}
	return nil
}
