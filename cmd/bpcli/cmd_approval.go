package main

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/iov-one/blueprint"
	"github.com/iov-one/blueprint/ledger"
	"github.com/iov-one/blueprint/x/approval"
)

// txFlags are the flags shared by all commands building a transaction.
type txFlags struct {
	keyPath   *string
	signer    *blueprint.Pubkey
	programID *blueprint.Pubkey
	nonce     *uint64
}

func registerTxFlags(fl *flag.FlagSet) txFlags {
	return txFlags{
		keyPath: fl.String("key", defaultKeyPath(),
			"Path to the private key file of the signer, used when -signer is not given. You can use BPCLI_PRIV_KEY environment variable to set it."),
		signer: flPubkey(fl, "signer", "",
			"Public key of the signer and fee payer. Use it to build a transaction that is signed elsewhere."),
		programID: flPubkey(fl, "program", defaultProgramID(),
			"Address of the approval program. You can use BPCLI_PROGRAM_ID environment variable to set it."),
		nonce: fl.Uint64("nonce", uint64(time.Now().UnixNano()),
			"Nonce making the transaction unique. Identical transactions are rejected as a replay."),
	}
}

// build returns an unsigned transaction paid by the signer. Instructions
// are created by given function, once the signer is known.
func (f txFlags) build(create func(signer blueprint.Pubkey) (blueprint.Instruction, error)) (*ledger.Transaction, error) {
	signer, err := signerKey(*f.signer, *f.keyPath)
	if err != nil {
		return nil, err
	}
	ix, err := create(signer)
	if err != nil {
		return nil, fmt.Errorf("cannot create instruction: %s", err)
	}
	return ledger.NewTransaction(signer, *f.nonce, ix), nil
}

func cmdInitialize(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction initializing the blueprint of the signer.

The signer becomes the authority of the blueprint and pays the rent of the
blueprint slot. A proposal created under this blueprint can be executed once
threshold approvers approved it.
`)
		fl.PrintDefaults()
	}
	var (
		txf         = registerTxFlags(fl)
		approversFl = flPubkeys(fl, "approvers", "Comma separated list of approver public keys.")
		thresholdFl = fl.Uint("threshold", 1, "Number of approvals required to execute a proposal.")
	)
	fl.Parse(args)

	if *thresholdFl > 255 {
		flagDie("threshold must not be greater than 255")
	}

	tx, err := txf.build(func(signer blueprint.Pubkey) (blueprint.Instruction, error) {
		return approval.NewInitializeInstruction(*txf.programID, signer, *approversFl, uint8(*thresholdFl))
	})
	if err != nil {
		return err
	}
	_, err = writeTx(output, tx)
	return err
}

func cmdPropose(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction proposing an action under the blueprint of given
authority.

The action itself is not stored, only its type and the hash of its payload.
Any account can propose. The signer pays the rent of the proposal slot.
`)
		fl.PrintDefaults()
	}
	var (
		txf         = registerTxFlags(fl)
		authorityFl = flPubkey(fl, "authority", "", "Authority of the blueprint.")
		actionFl    = fl.Uint("action", 0, "Action type. Its meaning is up to the client.")
		hashFl      = flHash(fl, "hash", "Hex encoded, 32 bytes long hash of the action payload.")
	)
	fl.Parse(args)

	if *actionFl > 0xffff {
		flagDie("action type must fit into 16 bits")
	}

	tx, err := txf.build(func(signer blueprint.Pubkey) (blueprint.Instruction, error) {
		return approval.NewProposeInstruction(*txf.programID, signer, *authorityFl, uint16(*actionFl), *hashFl)
	})
	if err != nil {
		return err
	}
	_, err = writeTx(output, tx)
	return err
}

func cmdApprove(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction approving a proposal. The signer must be one of the
blueprint approvers.
`)
		fl.PrintDefaults()
	}
	var (
		txf         = registerTxFlags(fl)
		authorityFl = flPubkey(fl, "authority", "", "Authority of the blueprint.")
		hashFl      = flHash(fl, "hash", "Hex encoded payload hash of the proposal.")
	)
	fl.Parse(args)

	tx, err := txf.build(func(signer blueprint.Pubkey) (blueprint.Instruction, error) {
		return approval.NewApproveInstruction(*txf.programID, signer, *authorityFl, *hashFl)
	})
	if err != nil {
		return err
	}
	_, err = writeTx(output, tx)
	return err
}

func cmdExecute(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction marking a proposal as executed. The proposal must be
approved by at least threshold approvers. Any account can execute.
`)
		fl.PrintDefaults()
	}
	var (
		txf         = registerTxFlags(fl)
		authorityFl = flPubkey(fl, "authority", "", "Authority of the blueprint.")
		hashFl      = flHash(fl, "hash", "Hex encoded payload hash of the proposal.")
	)
	fl.Parse(args)

	tx, err := txf.build(func(signer blueprint.Pubkey) (blueprint.Instruction, error) {
		return approval.NewExecuteInstruction(*txf.programID, signer, *authorityFl, *hashFl)
	})
	if err != nil {
		return err
	}
	_, err = writeTx(output, tx)
	return err
}

func cmdTransfer(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction moving lamports from the signer to another account.
`)
		fl.PrintDefaults()
	}
	var (
		txf        = registerTxFlags(fl)
		toFl       = flPubkey(fl, "to", "", "Recipient public key.")
		lamportsFl = fl.Uint64("lamports", 0, "Amount to transfer.")
	)
	fl.Parse(args)

	tx, err := txf.build(func(signer blueprint.Pubkey) (blueprint.Instruction, error) {
		return ledger.NewTransferInstruction(signer, *toFl, *lamportsFl), nil
	})
	if err != nil {
		return err
	}
	_, err = writeTx(output, tx)
	return err
}
