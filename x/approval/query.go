package approval

import (
	"github.com/iov-one/blueprint"
)

// LoadBlueprint reads and verifies the blueprint stored at addr. It is meant
// for readers outside of the program, for example a ledger.
func LoadBlueprint(r blueprint.SlotReader, programID, addr blueprint.Pubkey) (*Blueprint, error) {
	return loadBlueprint(r, blueprint.ProgramDeriver{}, programID, addr)
}

// LoadProposal reads and verifies the proposal stored at addr.
func LoadProposal(r blueprint.SlotReader, programID, addr blueprint.Pubkey) (*Proposal, error) {
	p, _, err := loadProposal(r, blueprint.ProgramDeriver{}, programID, addr)
	return p, err
}

// ProposalView is a proposal together with its state under the parent
// blueprint.
type ProposalView struct {
	Address   blueprint.Pubkey `json:"address"`
	Blueprint blueprint.Pubkey `json:"blueprint"`
	Proposer  blueprint.Pubkey `json:"proposer"`
	// ActionType is opaque to the program.
	ActionType  uint16             `json:"action_type"`
	PayloadHash string             `json:"payload_hash"`
	Approvals   []blueprint.Pubkey `json:"approvals"`
	Threshold   uint8              `json:"threshold"`
	Executed    bool               `json:"executed"`
	State       string             `json:"state"`
}

// ViewProposal loads the proposal stored at addr and its blueprint, and
// returns a summary suitable for display.
func ViewProposal(r blueprint.SlotReader, programID, addr blueprint.Pubkey) (*ProposalView, error) {
	p, err := LoadProposal(r, programID, addr)
	if err != nil {
		return nil, err
	}
	bp, err := LoadBlueprint(r, programID, p.Blueprint)
	if err != nil {
		return nil, err
	}
	return &ProposalView{
		Address:     addr,
		Blueprint:   p.Blueprint,
		Proposer:    p.Proposer,
		ActionType:  p.ActionType,
		PayloadHash: hexHash(p.PayloadHash),
		Approvals:   p.Approvals,
		Threshold:   bp.Threshold,
		Executed:    p.Executed,
		State:       p.State(bp.Threshold).String(),
	}, nil
}
