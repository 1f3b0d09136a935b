package main

import (
	"context"
	"flag"
	"fmt"
	"io"
)

func cmdSubmitTransaction(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Read binary serialized transaction from standard input and submit it to the
ledger kept in the home directory.

The result, including program logs, is written out. A new state version is
committed only when the transaction was applied.

Make sure to collect all signatures before submitting the transaction.
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

	tx, _, err := readTx(input)
	if err != nil {
		return fmt.Errorf("cannot read transaction from input: %s", err)
	}

	l, cleanup, err := openLedger(*homeFl, *programFl)
	if err != nil {
		return err
	}
	defer cleanup()

	res := l.Submit(context.Background(), tx)
	if err := writeJSON(output, res); err != nil {
		return err
	}
	if !res.IsOK() {
		return fmt.Errorf("transaction rejected: %s", res.Err)
	}
	if _, err := l.Commit(); err != nil {
		return fmt.Errorf("cannot commit: %s", err)
	}
	return nil
}
