package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"io"

	"github.com/iov-one/blueprint"
	"github.com/iov-one/blueprint/ledger"
	"github.com/iov-one/blueprint/x/approval"
)

func cmdTransactionView(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Read binary serialized transaction from standard input and print out its
content in a human readable format.

Instructions of the approval program are decoded. Use it to check what you
are about to sign.
`)
		fl.PrintDefaults()
	}
	var (
		programFl = flPubkey(fl, "program", defaultProgramID(),
			"Address of the approval program. You can use BPCLI_PROGRAM_ID environment variable to set it.")
	)
	fl.Parse(args)

	tx, _, err := readTx(input)
	if err != nil {
		return fmt.Errorf("cannot read transaction from input: %s", err)
	}
	return writeJSON(output, newTxView(tx, *programFl))
}

type txView struct {
	ID           string            `json:"id,omitempty"`
	FeePayer     blueprint.Pubkey  `json:"fee_payer"`
	Nonce        uint64            `json:"nonce"`
	Signers      []signerView      `json:"signers"`
	Instructions []instructionView `json:"instructions"`
}

type signerView struct {
	Pubkey blueprint.Pubkey `json:"pubkey"`
	Signed bool             `json:"signed"`
}

type instructionView struct {
	ProgramID blueprint.Pubkey        `json:"program_id"`
	Accounts  []blueprint.AccountMeta `json:"accounts"`
	Data      string                  `json:"data"`
	// Command is set for instructions of the approval program.
	Command interface{} `json:"command,omitempty"`
	Name    string      `json:"name,omitempty"`
}

func newTxView(tx *ledger.Transaction, programID blueprint.Pubkey) txView {
	view := txView{
		FeePayer: tx.Message.FeePayer,
		Nonce:    tx.Message.Nonce,
	}
	for i, s := range tx.Message.Signers() {
		signed := i < len(tx.Signatures) && !isZeroBytes(tx.Signatures[i])
		view.Signers = append(view.Signers, signerView{Pubkey: s, Signed: signed})
	}
	if len(view.Signers) > 0 && view.Signers[0].Signed {
		view.ID = tx.ID()
	}
	for _, ix := range tx.Message.Instructions {
		iv := instructionView{
			ProgramID: ix.ProgramID,
			Accounts:  ix.Accounts,
			Data:      hex.EncodeToString(ix.Data),
		}
		if ix.ProgramID == programID {
			if cmd, err := approval.UnmarshalCommand(ix.Data); err == nil {
				iv.Command = cmd
				iv.Name = cmd.Name()
			}
		}
		view.Instructions = append(view.Instructions, iv)
	}
	return view
}

func isZeroBytes(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}
