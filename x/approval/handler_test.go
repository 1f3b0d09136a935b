package approval

import (
	"bytes"
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/iov-one/blueprint"
	"github.com/iov-one/blueprint/bptest"
	"github.com/iov-one/blueprint/bptest/assert"
	"github.com/iov-one/blueprint/errors"
	"github.com/tendermint/tendermint/libs/log"
)

// fixture is a program instance with a blueprint of three approvers and
// threshold two.
type fixture struct {
	programID blueprint.Pubkey
	slots     *bptest.MemSlots

	authority blueprint.Pubkey
	a, b, c   blueprint.Pubkey
	bpAddr    blueprint.Pubkey
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		programID: bptest.NewPubkey(),
		authority: bptest.NewPubkey(),
		a:         bptest.NewPubkey(),
		b:         bptest.NewPubkey(),
		c:         bptest.NewPubkey(),
	}
	f.slots = bptest.NewMemSlots(f.programID)

	ix, err := NewInitializeInstruction(f.programID, f.authority, []blueprint.Pubkey{f.a, f.b, f.c}, 2)
	assert.Nil(t, err)
	assert.Nil(t, f.process(ix, f.authority))
	f.bpAddr = ix.Accounts[1].Pubkey
	return f
}

func (f *fixture) process(ix blueprint.Instruction, signers ...blueprint.Pubkey) error {
	return NewProcessor().Process(context.Background(), f.slots.Env(signers...), ix.Accounts, ix.Data)
}

func (f *fixture) propose(t *testing.T, proposer blueprint.Pubkey, payloadHash [32]byte) blueprint.Pubkey {
	t.Helper()
	ix, err := NewProposeInstruction(f.programID, proposer, f.authority, 7, payloadHash)
	assert.Nil(t, err)
	assert.Nil(t, f.process(ix, proposer))
	return ix.Accounts[2].Pubkey
}

func (f *fixture) approve(t *testing.T, approver blueprint.Pubkey, payloadHash [32]byte) error {
	t.Helper()
	ix, err := NewApproveInstruction(f.programID, approver, f.authority, payloadHash)
	assert.Nil(t, err)
	return f.process(ix, approver)
}

func (f *fixture) execute(t *testing.T, executor blueprint.Pubkey, payloadHash [32]byte) error {
	t.Helper()
	ix, err := NewExecuteInstruction(f.programID, executor, f.authority, payloadHash)
	assert.Nil(t, err)
	return f.process(ix, executor)
}

func (f *fixture) proposal(t *testing.T, addr blueprint.Pubkey) *Proposal {
	t.Helper()
	p, err := LoadProposal(f.slots, f.programID, addr)
	assert.Nil(t, err)
	return p
}

func TestApprovalLifecycle(t *testing.T) {
	f := newFixture(t)
	h := hash(0x11)
	d := bptest.NewPubkey()

	addr := f.propose(t, d, h)
	p := f.proposal(t, addr)
	assert.Equal(t, StateFresh, p.State(2))
	assert.Equal(t, d, p.Proposer)
	assert.Equal(t, uint16(7), p.ActionType)

	// Reaching the threshold is required.
	assert.Nil(t, f.approve(t, f.a, h))
	assert.Equal(t, []blueprint.Pubkey{f.a}, f.proposal(t, addr).Approvals)
	assert.IsErr(t, ErrNotEnoughApprovals, f.execute(t, d, h))

	// A second approval of the same approver does not count.
	before := f.slots.Snapshot()
	assert.IsErr(t, ErrAlreadyApproved, f.approve(t, f.a, h))
	assert.Equal(t, before, f.slots.Snapshot())

	// Only approvers of the blueprint may approve.
	assert.IsErr(t, ErrUnauthorized, f.approve(t, d, h))
	assert.Equal(t, before, f.slots.Snapshot())

	assert.Nil(t, f.approve(t, f.b, h))
	p = f.proposal(t, addr)
	assert.Equal(t, []blueprint.Pubkey{f.a, f.b}, p.Approvals)
	assert.Equal(t, StateReady, p.State(2))

	// Anyone can execute a ready proposal.
	assert.Nil(t, f.execute(t, d, h))
	p = f.proposal(t, addr)
	assert.Equal(t, true, p.Executed)
	assert.Equal(t, StateExecuted, p.State(2))

	// Executed proposal is frozen.
	before = f.slots.Snapshot()
	writes := f.slots.Writes
	assert.IsErr(t, ErrAlreadyExecuted, f.approve(t, f.c, h))
	assert.IsErr(t, ErrAlreadyExecuted, f.execute(t, f.a, h))
	assert.Equal(t, before, f.slots.Snapshot())
	assert.Equal(t, writes, f.slots.Writes)
}

func TestApproveUpToAllApprovers(t *testing.T) {
	f := newFixture(t)
	h := hash(0x22)
	addr := f.propose(t, f.a, h)

	for _, approver := range []blueprint.Pubkey{f.c, f.b, f.a} {
		assert.Nil(t, f.approve(t, approver, h))
	}
	assert.Equal(t, []blueprint.Pubkey{f.c, f.b, f.a}, f.proposal(t, addr).Approvals)
	assert.Nil(t, f.execute(t, f.c, h))
}

func TestProposalsAreIndependent(t *testing.T) {
	f := newFixture(t)
	first := f.propose(t, f.a, hash(1))
	second := f.propose(t, f.a, hash(2))
	if first == second {
		t.Fatal("two payloads share a proposal address")
	}

	assert.Nil(t, f.approve(t, f.a, hash(1)))
	assert.Nil(t, f.approve(t, f.a, hash(2)))
	assert.Equal(t, 1, len(f.proposal(t, first).Approvals))
	assert.Equal(t, 1, len(f.proposal(t, second).Approvals))
}

func TestInitialize(t *testing.T) {
	programID := bptest.NewPubkey()
	authority := bptest.NewPubkey()
	a, b := bptest.NewPubkey(), bptest.NewPubkey()
	bpAddr, _, err := BlueprintAddress(blueprint.ProgramDeriver{}, programID, authority)
	assert.Nil(t, err)

	system := blueprint.NewReadonlyAccountMeta(blueprint.SystemProgramID, false)
	accounts := []blueprint.AccountMeta{
		blueprint.NewAccountMeta(authority, true),
		blueprint.NewAccountMeta(bpAddr, false),
		system,
	}

	cases := map[string]struct {
		signers  []blueprint.Pubkey
		accounts []blueprint.AccountMeta
		msg      *InitializeMsg
		wantErr  *errors.Error
	}{
		"threshold of two": {
			signers:  []blueprint.Pubkey{authority},
			accounts: accounts,
			msg:      &InitializeMsg{Approvers: []blueprint.Pubkey{a, b}, Threshold: 2},
		},
		"threshold of one": {
			signers:  []blueprint.Pubkey{authority},
			accounts: accounts,
			msg:      &InitializeMsg{Approvers: []blueprint.Pubkey{a, b}, Threshold: 1},
		},
		"zero threshold": {
			signers:  []blueprint.Pubkey{authority},
			accounts: accounts,
			msg:      &InitializeMsg{Approvers: []blueprint.Pubkey{a, b}, Threshold: 0},
			wantErr:  errors.ErrInvalidArgument,
		},
		"threshold above approvers": {
			signers:  []blueprint.Pubkey{authority},
			accounts: accounts,
			msg:      &InitializeMsg{Approvers: []blueprint.Pubkey{a, b}, Threshold: 3},
			wantErr:  errors.ErrInvalidArgument,
		},
		"duplicated approver": {
			signers:  []blueprint.Pubkey{authority},
			accounts: accounts,
			msg:      &InitializeMsg{Approvers: []blueprint.Pubkey{a, a}, Threshold: 1},
			wantErr:  errors.ErrInvalidArgument,
		},
		"authority did not sign": {
			signers:  []blueprint.Pubkey{a},
			accounts: accounts,
			msg:      &InitializeMsg{Approvers: []blueprint.Pubkey{a, b}, Threshold: 2},
			wantErr:  errors.ErrMissingSignature,
		},
		"blueprint slot not derived from authority": {
			signers: []blueprint.Pubkey{authority},
			accounts: []blueprint.AccountMeta{
				blueprint.NewAccountMeta(authority, true),
				blueprint.NewAccountMeta(bptest.NewPubkey(), false),
				system,
			},
			msg:     &InitializeMsg{Approvers: []blueprint.Pubkey{a, b}, Threshold: 2},
			wantErr: errors.ErrInvalidSeeds,
		},
		"blueprint slot of another authority": {
			signers: []blueprint.Pubkey{authority, a},
			accounts: []blueprint.AccountMeta{
				blueprint.NewAccountMeta(a, true),
				blueprint.NewAccountMeta(bpAddr, false),
				system,
			},
			msg:     &InitializeMsg{Approvers: []blueprint.Pubkey{a, b}, Threshold: 2},
			wantErr: errors.ErrInvalidSeeds,
		},
		"not a system program": {
			signers: []blueprint.Pubkey{authority},
			accounts: []blueprint.AccountMeta{
				blueprint.NewAccountMeta(authority, true),
				blueprint.NewAccountMeta(bpAddr, false),
				blueprint.NewReadonlyAccountMeta(programID, false),
			},
			msg:     &InitializeMsg{Approvers: []blueprint.Pubkey{a, b}, Threshold: 2},
			wantErr: errors.ErrIncorrectProgramID,
		},
		"missing system program": {
			signers:  []blueprint.Pubkey{authority},
			accounts: accounts[:2],
			msg:      &InitializeMsg{Approvers: []blueprint.Pubkey{a, b}, Threshold: 2},
			wantErr:  errors.ErrNotEnoughAccountKeys,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			slots := bptest.NewMemSlots(programID)
			env := slots.Env(tc.signers...)
			err := NewProcessor().Process(context.Background(), env, tc.accounts, MarshalCommand(tc.msg))
			assert.IsErr(t, tc.wantErr, err)

			if tc.wantErr != nil {
				assert.Equal(t, 0, len(slots.Slots))
				return
			}

			bp, err := LoadBlueprint(slots, programID, bpAddr)
			assert.Nil(t, err)
			assert.Equal(t, authority, bp.Authority)
			assert.Equal(t, tc.msg.Approvers, bp.Approvers)
			assert.Equal(t, tc.msg.Threshold, bp.Threshold)

			slot, err := slots.Slot(bpAddr)
			assert.Nil(t, err)
			assert.Equal(t, programID, slot.Owner)
			assert.Equal(t, BlueprintSize(len(tc.msg.Approvers)), len(slot.Data))
		})
	}
}

func TestInitializeTwice(t *testing.T) {
	f := newFixture(t)
	ix, err := NewInitializeInstruction(f.programID, f.authority, []blueprint.Pubkey{f.a}, 1)
	assert.Nil(t, err)
	assert.IsErr(t, errors.ErrAccountAlreadyInUse, f.process(ix, f.authority))

	bp, err := LoadBlueprint(f.slots, f.programID, f.bpAddr)
	assert.Nil(t, err)
	assert.Equal(t, uint8(2), bp.Threshold)
}

func TestPropose(t *testing.T) {
	h := hash(0x33)

	cases := map[string]struct {
		// mutate alters a valid instruction and signer set.
		mutate  func(f *fixture, ix *blueprint.Instruction, signers *[]blueprint.Pubkey)
		wantErr *errors.Error
	}{
		"anyone can propose": {
			mutate: func(*fixture, *blueprint.Instruction, *[]blueprint.Pubkey) {},
		},
		"proposer did not sign": {
			mutate: func(f *fixture, ix *blueprint.Instruction, signers *[]blueprint.Pubkey) {
				*signers = []blueprint.Pubkey{f.a}
			},
			wantErr: errors.ErrMissingSignature,
		},
		"proposal slot not derived from payload": {
			mutate: func(f *fixture, ix *blueprint.Instruction, signers *[]blueprint.Pubkey) {
				addr, _, err := ProposalAddress(blueprint.ProgramDeriver{}, f.programID, f.bpAddr, hash(0x44))
				if err != nil {
					panic(err)
				}
				ix.Accounts[2].Pubkey = addr
			},
			wantErr: errors.ErrInvalidSeeds,
		},
		"random proposal slot": {
			mutate: func(f *fixture, ix *blueprint.Instruction, signers *[]blueprint.Pubkey) {
				ix.Accounts[2].Pubkey = bptest.NewPubkey()
			},
			wantErr: errors.ErrInvalidSeeds,
		},
		"blueprint does not exist": {
			mutate: func(f *fixture, ix *blueprint.Instruction, signers *[]blueprint.Pubkey) {
				ix.Accounts[1].Pubkey = bptest.NewPubkey()
			},
			wantErr: errors.ErrUninitializedAccount,
		},
		"not a system program": {
			mutate: func(f *fixture, ix *blueprint.Instruction, signers *[]blueprint.Pubkey) {
				ix.Accounts[3].Pubkey = f.programID
			},
			wantErr: errors.ErrIncorrectProgramID,
		},
		"missing proposal account": {
			mutate: func(f *fixture, ix *blueprint.Instruction, signers *[]blueprint.Pubkey) {
				ix.Accounts = ix.Accounts[:2]
			},
			wantErr: errors.ErrNotEnoughAccountKeys,
		},
		"malformed data": {
			mutate: func(f *fixture, ix *blueprint.Instruction, signers *[]blueprint.Pubkey) {
				ix.Data = ix.Data[:10]
			},
			wantErr: ErrInvalidInstruction,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFixture(t)
			proposer := bptest.NewPubkey()
			ix, err := NewProposeInstruction(f.programID, proposer, f.authority, 9, h)
			assert.Nil(t, err)
			signers := []blueprint.Pubkey{proposer}
			tc.mutate(f, &ix, &signers)

			before := f.slots.Snapshot()
			err = f.process(ix, signers...)
			assert.IsErr(t, tc.wantErr, err)
			if tc.wantErr != nil {
				assert.Equal(t, before, f.slots.Snapshot())
				return
			}

			addr := ix.Accounts[2].Pubkey
			slot, err := f.slots.Slot(addr)
			assert.Nil(t, err)
			assert.Equal(t, ProposalSize(3), len(slot.Data))
			want := &Proposal{Blueprint: f.bpAddr, Proposer: proposer, ActionType: 9, PayloadHash: h}
			if got := f.proposal(t, addr); !reflect.DeepEqual(want, got) {
				t.Fatalf("want %+v, got %+v", want, got)
			}
		})
	}
}

func TestProposeTwice(t *testing.T) {
	f := newFixture(t)
	h := hash(0x55)
	addr := f.propose(t, f.a, h)
	assert.Nil(t, f.approve(t, f.a, h))

	ix, err := NewProposeInstruction(f.programID, f.b, f.authority, 1, h)
	assert.Nil(t, err)
	assert.IsErr(t, errors.ErrAccountAlreadyInUse, f.process(ix, f.b))

	p := f.proposal(t, addr)
	assert.Equal(t, f.a, p.Proposer)
	assert.Equal(t, []blueprint.Pubkey{f.a}, p.Approvals)
}

func TestApproveAndExecuteRequireSigner(t *testing.T) {
	f := newFixture(t)
	h := hash(0x66)
	f.propose(t, f.a, h)

	ix, err := NewApproveInstruction(f.programID, f.a, f.authority, h)
	assert.Nil(t, err)
	assert.IsErr(t, errors.ErrMissingSignature, f.process(ix, f.b))

	ix, err = NewExecuteInstruction(f.programID, f.a, f.authority, h)
	assert.Nil(t, err)
	assert.IsErr(t, errors.ErrMissingSignature, f.process(ix))
}

func TestProposalOfAnotherBlueprint(t *testing.T) {
	f := newFixture(t)
	h := hash(0x77)

	// The intruder controls a blueprint of their own, with a proposal
	// under it.
	intruder := bptest.NewPubkey()
	ix, err := NewInitializeInstruction(f.programID, intruder, []blueprint.Pubkey{intruder}, 1)
	assert.Nil(t, err)
	assert.Nil(t, f.process(ix, intruder))
	ix, err = NewProposeInstruction(f.programID, intruder, intruder, 1, h)
	assert.Nil(t, err)
	assert.Nil(t, f.process(ix, intruder))
	foreign := ix.Accounts[2].Pubkey
	ownBlueprint := ix.Accounts[1].Pubkey

	// Approver of f.authority blueprint tries to approve the intruder
	// proposal by presenting it together with the blueprint they belong
	// to.
	accounts := []blueprint.AccountMeta{
		blueprint.NewReadonlyAccountMeta(f.a, true),
		blueprint.NewReadonlyAccountMeta(f.bpAddr, false),
		blueprint.NewAccountMeta(foreign, false),
	}
	err = f.process(blueprint.Instruction{ProgramID: f.programID, Accounts: accounts, Data: MarshalCommand(&ApproveMsg{})}, f.a)
	assert.IsErr(t, errors.ErrInvalidSeeds, err)

	// And the other way around, executing a proposal against a blueprint
	// that the proposal does not belong to.
	f.propose(t, f.a, h)
	assert.Nil(t, f.approve(t, f.a, h))
	assert.Nil(t, f.approve(t, f.b, h))
	own, _, err := ProposalAddress(blueprint.ProgramDeriver{}, f.programID, f.bpAddr, h)
	assert.Nil(t, err)
	accounts = []blueprint.AccountMeta{
		blueprint.NewReadonlyAccountMeta(intruder, true),
		blueprint.NewReadonlyAccountMeta(ownBlueprint, false),
		blueprint.NewAccountMeta(own, false),
	}
	err = f.process(blueprint.Instruction{ProgramID: f.programID, Accounts: accounts, Data: MarshalCommand(&ExecuteMsg{})}, intruder)
	assert.IsErr(t, errors.ErrInvalidSeeds, err)
	assert.Equal(t, false, f.proposal(t, own).Executed)
}

func TestForgedSlots(t *testing.T) {
	f := newFixture(t)
	h := hash(0x88)
	proposalAddr := f.propose(t, f.a, h)
	stranger := bptest.NewPubkey()

	bp := Blueprint{Authority: f.authority, Approvers: []blueprint.Pubkey{stranger}, Threshold: 1}

	cases := map[string]struct {
		slot    blueprint.Slot
		wantErr *errors.Error
	}{
		"blueprint at an address not derived from its authority": {
			slot: blueprint.Slot{
				Address: bptest.NewPubkey(),
				Owner:   f.programID,
				Data:    bp.Marshal(),
			},
			wantErr: errors.ErrInvalidSeeds,
		},
		"blueprint owned by another program": {
			slot: blueprint.Slot{
				Address: bptest.NewPubkey(),
				Owner:   bptest.NewPubkey(),
				Data:    bp.Marshal(),
			},
			wantErr: errors.ErrIncorrectProgramID,
		},
		"blueprint slot with garbage": {
			slot: blueprint.Slot{
				Address: bptest.NewPubkey(),
				Owner:   f.programID,
				Data:    []byte{1, 2, 3},
			},
			wantErr: errors.ErrInvalidAccountData,
		},
		"blueprint without approvers": {
			slot: blueprint.Slot{
				Address: bptest.NewPubkey(),
				Owner:   f.programID,
				Data:    (&Blueprint{Authority: f.authority}).Marshal(),
			},
			wantErr: errors.ErrInvalidAccountData,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			assert.Nil(t, f.slots.PutSlot(tc.slot))
			accounts := []blueprint.AccountMeta{
				blueprint.NewReadonlyAccountMeta(stranger, true),
				blueprint.NewReadonlyAccountMeta(tc.slot.Address, false),
				blueprint.NewAccountMeta(proposalAddr, false),
			}
			ix := blueprint.Instruction{ProgramID: f.programID, Accounts: accounts, Data: MarshalCommand(&ApproveMsg{})}
			assert.IsErr(t, tc.wantErr, f.process(ix, stranger))
			assert.Equal(t, 0, len(f.proposal(t, proposalAddr).Approvals))
		})
	}
}

func TestForeignProposalSlot(t *testing.T) {
	f := newFixture(t)
	h := hash(0x99)
	addr, _, err := ProposalAddress(blueprint.ProgramDeriver{}, f.programID, f.bpAddr, h)
	assert.Nil(t, err)

	p := Proposal{Blueprint: f.bpAddr, Proposer: f.a, PayloadHash: h}
	assert.Nil(t, f.slots.PutSlot(blueprint.Slot{
		Address: addr,
		Owner:   bptest.NewPubkey(),
		Data:    p.Marshal(),
	}))
	assert.IsErr(t, errors.ErrIncorrectProgramID, f.approve(t, f.a, h))
}

func TestApproveBeyondSlotCapacity(t *testing.T) {
	f := newFixture(t)
	h := hash(0xab)
	addr, _, err := ProposalAddress(blueprint.ProgramDeriver{}, f.programID, f.bpAddr, h)
	assert.Nil(t, err)

	// A slot sized for a proposal without approvals cannot take any.
	p := Proposal{Blueprint: f.bpAddr, Proposer: f.a, PayloadHash: h}
	assert.Nil(t, f.slots.PutSlot(blueprint.Slot{
		Address: addr,
		Owner:   f.programID,
		Data:    p.Marshal(),
	}))
	writes := f.slots.Writes
	assert.IsErr(t, errors.ErrAccountDataTooSmall, f.approve(t, f.a, h))
	assert.Equal(t, writes, f.slots.Writes)
}

func TestErrorCodes(t *testing.T) {
	f := newFixture(t)
	h := hash(0xcd)
	f.propose(t, f.a, h)

	assert.ErrCode(t, f.execute(t, f.a, h), true, 3)
	assert.ErrCode(t, f.approve(t, bptest.NewPubkey(), h), true, 1)
	assert.Nil(t, f.approve(t, f.a, h))
	assert.ErrCode(t, f.approve(t, f.a, h), true, 2)
	assert.Nil(t, f.approve(t, f.b, h))
	assert.Nil(t, f.execute(t, f.a, h))
	assert.ErrCode(t, f.execute(t, f.a, h), true, 4)

	err := NewProcessor().Process(context.Background(), f.slots.Env(), nil, []byte{0xff})
	assert.ErrCode(t, err, true, 0)

	// Host errors pass through unchanged.
	assert.ErrCode(t, f.approve(t, f.a, hash(0xce)), false, errors.ErrUninitializedAccount.Code())
}

func TestHandlersLog(t *testing.T) {
	f := newFixture(t)
	h := hash(0x11)
	f.propose(t, f.a, h)
	assert.Nil(t, f.approve(t, f.a, h))
	assert.Nil(t, f.approve(t, f.b, h))

	var buf bytes.Buffer
	ctx := blueprint.WithLogger(context.Background(), log.NewTMLogger(&buf))
	ix, err := NewExecuteInstruction(f.programID, f.c, f.authority, h)
	assert.Nil(t, err)
	assert.Nil(t, NewProcessor().Process(ctx, f.slots.Env(f.c), ix.Accounts, ix.Data))

	out := buf.String()
	for _, want := range []string{"proposal executed", "cmd=execute", "action_type=7", strings.Repeat("11", 32)} {
		if !strings.Contains(out, want) {
			t.Errorf("log %q does not contain %q", out, want)
		}
	}
}
