package approval

import (
	"github.com/iov-one/blueprint"
)

// NewInitializeInstruction builds the instruction creating the blueprint of
// authority.
func NewInitializeInstruction(programID, authority blueprint.Pubkey, approvers []blueprint.Pubkey, threshold uint8) (blueprint.Instruction, error) {
	addr, _, err := BlueprintAddress(blueprint.ProgramDeriver{}, programID, authority)
	if err != nil {
		return blueprint.Instruction{}, err
	}
	msg := &InitializeMsg{Approvers: approvers, Threshold: threshold}
	return blueprint.Instruction{
		ProgramID: programID,
		Accounts: []blueprint.AccountMeta{
			blueprint.NewAccountMeta(authority, true),
			blueprint.NewAccountMeta(addr, false),
			blueprint.NewReadonlyAccountMeta(blueprint.SystemProgramID, false),
		},
		Data: MarshalCommand(msg),
	}, nil
}

// NewProposeInstruction builds the instruction registering a proposal under
// the blueprint of authority.
func NewProposeInstruction(programID, proposer, authority blueprint.Pubkey, actionType uint16, payloadHash [32]byte) (blueprint.Instruction, error) {
	bpAddr, proposalAddr, err := pairAddresses(programID, authority, payloadHash)
	if err != nil {
		return blueprint.Instruction{}, err
	}
	msg := &ProposeMsg{ActionType: actionType, PayloadHash: payloadHash}
	return blueprint.Instruction{
		ProgramID: programID,
		Accounts: []blueprint.AccountMeta{
			blueprint.NewAccountMeta(proposer, true),
			blueprint.NewReadonlyAccountMeta(bpAddr, false),
			blueprint.NewAccountMeta(proposalAddr, false),
			blueprint.NewReadonlyAccountMeta(blueprint.SystemProgramID, false),
		},
		Data: MarshalCommand(msg),
	}, nil
}

// NewApproveInstruction builds the instruction approving the proposal of
// payloadHash under the blueprint of authority.
func NewApproveInstruction(programID, approver, authority blueprint.Pubkey, payloadHash [32]byte) (blueprint.Instruction, error) {
	return proposalInstruction(programID, approver, authority, payloadHash, &ApproveMsg{})
}

// NewExecuteInstruction builds the instruction executing the proposal of
// payloadHash under the blueprint of authority.
func NewExecuteInstruction(programID, executor, authority blueprint.Pubkey, payloadHash [32]byte) (blueprint.Instruction, error) {
	return proposalInstruction(programID, executor, authority, payloadHash, &ExecuteMsg{})
}

func proposalInstruction(programID, signer, authority blueprint.Pubkey, payloadHash [32]byte, cmd Command) (blueprint.Instruction, error) {
	bpAddr, proposalAddr, err := pairAddresses(programID, authority, payloadHash)
	if err != nil {
		return blueprint.Instruction{}, err
	}
	return blueprint.Instruction{
		ProgramID: programID,
		Accounts: []blueprint.AccountMeta{
			blueprint.NewReadonlyAccountMeta(signer, true),
			blueprint.NewReadonlyAccountMeta(bpAddr, false),
			blueprint.NewAccountMeta(proposalAddr, false),
		},
		Data: MarshalCommand(cmd),
	}, nil
}

func pairAddresses(programID, authority blueprint.Pubkey, payloadHash [32]byte) (blueprint.Pubkey, blueprint.Pubkey, error) {
	d := blueprint.ProgramDeriver{}
	bpAddr, _, err := BlueprintAddress(d, programID, authority)
	if err != nil {
		return bpAddr, bpAddr, err
	}
	proposalAddr, _, err := ProposalAddress(d, programID, bpAddr, payloadHash)
	return bpAddr, proposalAddr, err
}
