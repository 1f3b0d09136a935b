package approval

import (
	"fmt"

	"github.com/iov-one/blueprint"
	"github.com/iov-one/blueprint/codec"
	"github.com/iov-one/blueprint/errors"
)

// MaxApprovers is the largest approver set a blueprint can hold.
const MaxApprovers = 255

// Blueprint fixes who may approve proposals and how many approvals are
// needed.
type Blueprint struct {
	Authority blueprint.Pubkey
	Approvers []blueprint.Pubkey
	Threshold uint8
}

// BlueprintSize is the encoded length of a blueprint with n approvers.
func BlueprintSize(n int) int {
	return blueprint.PubkeySize + 4 + blueprint.PubkeySize*n + 1
}

// Validate checks the approver set and the threshold.
func (b *Blueprint) Validate() error {
	return validateApprovers(b.Approvers, b.Threshold)
}

func validateApprovers(approvers []blueprint.Pubkey, threshold uint8) error {
	var errs error
	switch n := len(approvers); {
	case n == 0:
		errs = errors.AppendField(errs, "Approvers", errors.Wrap(errors.ErrInvalidArgument, "required"))
	case n > MaxApprovers:
		errs = errors.AppendField(errs, "Approvers", errors.Wrapf(errors.ErrInvalidArgument, "at most %d, got %d", MaxApprovers, n))
	}
	for i, a := range approvers {
		if blueprint.ContainsPubkey(approvers[:i], a) {
			errs = errors.AppendField(errs, fmt.Sprintf("Approvers.%d", i), errors.Wrapf(errors.ErrInvalidArgument, "duplicate %s", a))
		}
	}
	if threshold == 0 || int(threshold) > len(approvers) {
		errs = errors.AppendField(errs, "Threshold", errors.Wrapf(errors.ErrInvalidArgument, "%d of %d approvers", threshold, len(approvers)))
	}
	return errs
}

// IsApprover returns true if pk may approve proposals of this blueprint.
func (b *Blueprint) IsApprover(pk blueprint.Pubkey) bool {
	return blueprint.ContainsPubkey(b.Approvers, pk)
}

// Marshal returns the canonical encoding.
func (b *Blueprint) Marshal() []byte {
	e := codec.NewEncoder(BlueprintSize(len(b.Approvers)))
	e.Bytes32(b.Authority)
	e.Bytes32Seq(pubkeysToArrays(b.Approvers))
	e.U8(b.Threshold)
	return e.Bytes()
}

// Unmarshal decodes a blueprint from the beginning of raw. Bytes past the
// encoded record are ignored.
func (b *Blueprint) Unmarshal(raw []byte) error {
	d := codec.NewDecoder(raw)
	authority, err := d.Bytes32()
	if err != nil {
		return errors.Wrap(err, "authority")
	}
	approvers, err := d.Bytes32Seq()
	if err != nil {
		return errors.Wrap(err, "approvers")
	}
	threshold, err := d.U8()
	if err != nil {
		return errors.Wrap(err, "threshold")
	}
	b.Authority = authority
	b.Approvers = arraysToPubkeys(approvers)
	b.Threshold = threshold
	return nil
}

// Proposal is a candidate action under a blueprint.
type Proposal struct {
	Blueprint   blueprint.Pubkey
	Proposer    blueprint.Pubkey
	ActionType  uint16
	PayloadHash [32]byte
	Approvals   []blueprint.Pubkey
	Executed    bool
}

// ProposalSize is the encoded length of a proposal holding n approvals. A
// proposal slot is allocated with n set to the number of approvers, so
// the record can grow in place up to the full approver set.
func ProposalSize(n int) int {
	return 2*blueprint.PubkeySize + 2 + 32 + 4 + blueprint.PubkeySize*n + 1
}

// HasApproved returns true if pk already approved.
func (p *Proposal) HasApproved(pk blueprint.Pubkey) bool {
	return blueprint.ContainsPubkey(p.Approvals, pk)
}

// Marshal returns the canonical encoding.
func (p *Proposal) Marshal() []byte {
	e := codec.NewEncoder(ProposalSize(len(p.Approvals)))
	e.Bytes32(p.Blueprint)
	e.Bytes32(p.Proposer)
	e.U16(p.ActionType)
	e.Bytes32(p.PayloadHash)
	e.Bytes32Seq(pubkeysToArrays(p.Approvals))
	e.Bool(p.Executed)
	return e.Bytes()
}

// Unmarshal decodes a proposal from the beginning of raw. Bytes past the
// encoded record are ignored.
func (p *Proposal) Unmarshal(raw []byte) error {
	d := codec.NewDecoder(raw)
	var (
		res Proposal
		err error
	)
	if res.Blueprint, err = d.Bytes32(); err != nil {
		return errors.Wrap(err, "blueprint")
	}
	if res.Proposer, err = d.Bytes32(); err != nil {
		return errors.Wrap(err, "proposer")
	}
	if res.ActionType, err = d.U16(); err != nil {
		return errors.Wrap(err, "action type")
	}
	if res.PayloadHash, err = d.Bytes32(); err != nil {
		return errors.Wrap(err, "payload hash")
	}
	approvals, err := d.Bytes32Seq()
	if err != nil {
		return errors.Wrap(err, "approvals")
	}
	res.Approvals = arraysToPubkeys(approvals)
	if res.Executed, err = d.Bool(); err != nil {
		return errors.Wrap(err, "executed")
	}
	*p = res
	return nil
}

// State is the position of a proposal in its lifecycle.
type State uint8

const (
	// StateFresh is a proposal without approvals.
	StateFresh State = iota
	// StateGathering has some approvals, fewer than the threshold.
	StateGathering
	// StateReady has enough approvals and can be executed.
	StateReady
	// StateExecuted is terminal.
	StateExecuted
)

func (s State) String() string {
	switch s {
	case StateFresh:
		return "fresh"
	case StateGathering:
		return "gathering"
	case StateReady:
		return "ready"
	case StateExecuted:
		return "executed"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// State classifies the proposal against the threshold of its blueprint.
func (p *Proposal) State(threshold uint8) State {
	switch k := len(p.Approvals); {
	case p.Executed:
		return StateExecuted
	case k >= int(threshold):
		return StateReady
	case k == 0:
		return StateFresh
	default:
		return StateGathering
	}
}

func pubkeysToArrays(pks []blueprint.Pubkey) [][32]byte {
	out := make([][32]byte, len(pks))
	for i, pk := range pks {
		out[i] = pk
	}
	return out
}

func arraysToPubkeys(arrs [][32]byte) []blueprint.Pubkey {
	if len(arrs) == 0 {
		return nil
	}
	out := make([]blueprint.Pubkey, len(arrs))
	for i, a := range arrs {
		out[i] = a
	}
	return out
}
