package main

import (
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"io/ioutil"

	"github.com/iov-one/blueprint"
	"github.com/iov-one/blueprint/x/approval"
)

func cmdAirdrop(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Credit lamports to an account of a development ledger and print out the new
balance.
`)
		fl.PrintDefaults()
	}
	var (
		homeFl = fl.String("home", defaultHome(),
			"Ledger state directory. You can use BPCLI_HOME environment variable to set it.")
		toFl       = flPubkey(fl, "to", "", "Public key of the credited account.")
		lamportsFl = fl.Uint64("lamports", 1000000000, "Amount to credit.")
	)
	fl.Parse(args)

	if toFl.IsZero() {
		flagDie("recipient is required")
	}

	l, cleanup, err := openLedger(*homeFl, blueprint.SystemProgramID)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := l.Airdrop(*toFl, *lamportsFl); err != nil {
		return fmt.Errorf("cannot airdrop: %s", err)
	}
	if _, err := l.Commit(); err != nil {
		return fmt.Errorf("cannot commit: %s", err)
	}
	balance, err := l.Balance(*toFl)
	if err != nil {
		return fmt.Errorf("cannot read balance: %s", err)
	}
	_, err = fmt.Fprintln(output, balance)
	return err
}

func cmdGenesis(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Read genesis options in JSON format from standard input and load them into a
new ledger. Funded wallets are listed under the "ledger" key and blueprints
under the "blueprint" key:

  {
    "ledger": [{"address": "<base58>", "lamports": 1000000000}],
    "blueprint": [{"authority": "<base58>", "approvers": ["<base58>"], "threshold": 1}]
  }

Genesis can be loaded only once.
`)
		fl.PrintDefaults()
	}
	var (
		homeFl = fl.String("home", defaultHome(),
			"Ledger state directory. You can use BPCLI_HOME environment variable to set it.")
		programFl = flPubkey(fl, "program", defaultProgramID(),
			"Address the approval program is deployed at. You can use BPCLI_PROGRAM_ID environment variable to set it.")
	)
	fl.Parse(args)

	raw, err := ioutil.ReadAll(input)
	if err != nil {
		return fmt.Errorf("cannot read genesis: %s", err)
	}
	var opts blueprint.Options
	if err := json.Unmarshal(raw, &opts); err != nil {
		return fmt.Errorf("cannot parse genesis: %s", err)
	}

	l, cleanup, err := openLedger(*homeFl, *programFl)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := l.InitGenesis(opts, &approval.Initializer{ProgramID: *programFl}); err != nil {
		return fmt.Errorf("cannot load genesis: %s", err)
	}
	id, err := l.Commit()
	if err != nil {
		return fmt.Errorf("cannot commit: %s", err)
	}
	_, err = fmt.Fprintf(output, "%X\n", id.Hash)
	return err
}

func cmdShowAccount(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Print out the owner, balance and data of an account.
`)
		fl.PrintDefaults()
	}
	var (
		homeFl = fl.String("home", defaultHome(),
			"Ledger state directory. You can use BPCLI_HOME environment variable to set it.")
		addrFl = flPubkey(fl, "address", "", "Account address.")
	)
	fl.Parse(args)

	l, cleanup, err := openLedger(*homeFl, blueprint.SystemProgramID)
	if err != nil {
		return err
	}
	defer cleanup()

	acc, err := l.Account(*addrFl)
	if err != nil {
		return fmt.Errorf("cannot load account: %s", err)
	}
	return writeJSON(output, struct {
		Address  blueprint.Pubkey `json:"address"`
		Owner    blueprint.Pubkey `json:"owner"`
		Lamports uint64           `json:"lamports"`
		Data     string           `json:"data"`
	}{
		Address:  *addrFl,
		Owner:    acc.Owner,
		Lamports: acc.Lamports,
		Data:     hex.EncodeToString(acc.Data),
	})
}

func cmdShowProposal(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Print out proposals together with their state.

When both authority and payload hash are given, only that proposal is shown.
Otherwise all proposals of the approval program are listed, optionally
limited to the blueprint of given authority.
`)
		fl.PrintDefaults()
	}
	var (
		homeFl = fl.String("home", defaultHome(),
			"Ledger state directory. You can use BPCLI_HOME environment variable to set it.")
		programFl = flPubkey(fl, "program", defaultProgramID(),
			"Address the approval program is deployed at. You can use BPCLI_PROGRAM_ID environment variable to set it.")
		authorityFl = flPubkey(fl, "authority", "", "Authority of the blueprint.")
		hashFl      = flHash(fl, "hash", "Hex encoded payload hash of the proposal.")
	)
	fl.Parse(args)

	l, cleanup, err := openLedger(*homeFl, *programFl)
	if err != nil {
		return err
	}
	defer cleanup()

	var bpAddr blueprint.Pubkey
	if !authorityFl.IsZero() {
		bpAddr, _, err = approval.BlueprintAddress(blueprint.ProgramDeriver{}, *programFl, *authorityFl)
		if err != nil {
			return fmt.Errorf("cannot derive blueprint address: %s", err)
		}
		if *hashFl != ([32]byte{}) {
			addr, _, err := approval.ProposalAddress(blueprint.ProgramDeriver{}, *programFl, bpAddr, *hashFl)
			if err != nil {
				return fmt.Errorf("cannot derive proposal address: %s", err)
			}
			view, err := approval.ViewProposal(l, *programFl, addr)
			if err != nil {
				return fmt.Errorf("cannot load proposal: %s", err)
			}
			return writeJSON(output, view)
		}
	}

	slots, err := l.OwnedBy(*programFl)
	if err != nil {
		return fmt.Errorf("cannot list program slots: %s", err)
	}
	views := make([]*approval.ProposalView, 0, len(slots))
	for _, s := range slots {
		// Blueprints are owned by the program as well.
		view, err := approval.ViewProposal(l, *programFl, s.Address)
		if err != nil {
			continue
		}
		if !bpAddr.IsZero() && view.Blueprint != bpAddr {
			continue
		}
		views = append(views, view)
	}
	return writeJSON(output, views)
}
