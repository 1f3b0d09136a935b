package approval

import (
	"encoding/hex"

	"github.com/iov-one/blueprint"
	"github.com/iov-one/blueprint/codec"
	"github.com/iov-one/blueprint/errors"
)

// Command tags as found on the wire.
const (
	TagInitialize uint32 = iota
	TagPropose
	TagApprove
	TagExecute
)

// Command is an instruction of this program.
type Command interface {
	// Tag identifies the command variant on the wire.
	Tag() uint32
	// Name is used in logs.
	Name() string
	// Accounts is the number of account references the command needs.
	Accounts() int

	encodeFields(e *codec.Encoder)
}

// InitializeMsg creates the blueprint of the signing authority.
//
// Accounts: authority (signer, writable), blueprint (writable), system
// program.
type InitializeMsg struct {
	Approvers []blueprint.Pubkey
	Threshold uint8
}

var _ Command = (*InitializeMsg)(nil)

func (InitializeMsg) Tag() uint32   { return TagInitialize }
func (InitializeMsg) Name() string  { return "initialize" }
func (InitializeMsg) Accounts() int { return 3 }

func (m *InitializeMsg) encodeFields(e *codec.Encoder) {
	e.Bytes32Seq(pubkeysToArrays(m.Approvers))
	e.U8(m.Threshold)
}

// Validate checks the approver set and threshold bounds.
func (m *InitializeMsg) Validate() error {
	return validateApprovers(m.Approvers, m.Threshold)
}

// ProposeMsg registers a proposal under a blueprint.
//
// Accounts: proposer (signer, writable), blueprint, proposal (writable),
// system program.
type ProposeMsg struct {
	ActionType  uint16
	PayloadHash [32]byte
}

var _ Command = (*ProposeMsg)(nil)

func (ProposeMsg) Tag() uint32   { return TagPropose }
func (ProposeMsg) Name() string  { return "propose" }
func (ProposeMsg) Accounts() int { return 4 }

func (m *ProposeMsg) encodeFields(e *codec.Encoder) {
	e.U16(m.ActionType)
	e.Bytes32(m.PayloadHash)
}

// ApproveMsg adds the signer to the approvals of a proposal.
//
// Accounts: approver (signer), blueprint, proposal (writable).
type ApproveMsg struct{}

var _ Command = (*ApproveMsg)(nil)

func (ApproveMsg) Tag() uint32                   { return TagApprove }
func (ApproveMsg) Name() string                  { return "approve" }
func (ApproveMsg) Accounts() int                 { return 3 }
func (*ApproveMsg) encodeFields(*codec.Encoder) {}

// ExecuteMsg marks a proposal with enough approvals as executed.
//
// Accounts: executor (signer), blueprint, proposal (writable).
type ExecuteMsg struct{}

var _ Command = (*ExecuteMsg)(nil)

func (ExecuteMsg) Tag() uint32                   { return TagExecute }
func (ExecuteMsg) Name() string                  { return "execute" }
func (ExecuteMsg) Accounts() int                 { return 3 }
func (*ExecuteMsg) encodeFields(*codec.Encoder) {}

// MarshalCommand returns the instruction data for cmd.
func MarshalCommand(cmd Command) []byte {
	e := codec.NewEncoder(64)
	e.U32(cmd.Tag())
	cmd.encodeFields(e)
	return e.Bytes()
}

// UnmarshalCommand decodes instruction data. The input must hold exactly one
// well formed command.
func UnmarshalCommand(data []byte) (Command, error) {
	cmd, err := decodeCommand(data)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidInstruction, err.Error())
	}
	return cmd, nil
}

func decodeCommand(data []byte) (Command, error) {
	d := codec.NewDecoder(data)
	tag, err := d.U32()
	if err != nil {
		return nil, err
	}

	var cmd Command
	switch tag {
	case TagInitialize:
		approvers, err := d.Bytes32Seq()
		if err != nil {
			return nil, err
		}
		threshold, err := d.U8()
		if err != nil {
			return nil, err
		}
		cmd = &InitializeMsg{Approvers: arraysToPubkeys(approvers), Threshold: threshold}
	case TagPropose:
		actionType, err := d.U16()
		if err != nil {
			return nil, err
		}
		hash, err := d.Bytes32()
		if err != nil {
			return nil, err
		}
		cmd = &ProposeMsg{ActionType: actionType, PayloadHash: hash}
	case TagApprove:
		cmd = &ApproveMsg{}
	case TagExecute:
		cmd = &ExecuteMsg{}
	default:
		return nil, errors.Wrapf(errors.ErrInvalidInput, "unknown tag %d", tag)
	}
	if err := d.Finish(); err != nil {
		return nil, err
	}
	return cmd, nil
}

// ParsePayloadHash decodes a 32 byte hex encoded payload hash.
func ParsePayloadHash(s string) ([32]byte, error) {
	var h [32]byte
	raw, err := hex.DecodeString(s)
	if err != nil {
		return h, errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	if len(raw) != len(h) {
		return h, errors.Wrapf(errors.ErrInvalidInput, "payload hash of %d bytes", len(raw))
	}
	copy(h[:], raw)
	return h, nil
}

func hexHash(h [32]byte) string {
	return hex.EncodeToString(h[:])
}
