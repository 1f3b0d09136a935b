package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/iov-one/blueprint/crypto"
)

func cmdSignTransaction(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Read binary serialized transaction from standard input, sign it and write it
back to standard output.

A transaction requiring more than one signature can be signed by each party
in turn. Signing with a key that is not a signer of the transaction fails.
`)
		fl.PrintDefaults()
	}
	var (
		keyPathFl = fl.String("key", defaultKeyPath(),
			"Path to the private key file that transaction should be signed with. You can use BPCLI_PRIV_KEY environment variable to set it.")
	)
	fl.Parse(args)

	key, err := crypto.LoadPrivateKey(*keyPathFl)
	if err != nil {
		return fmt.Errorf("cannot load private key: %s", err)
	}
	tx, _, err := readTx(input)
	if err != nil {
		return fmt.Errorf("cannot read transaction: %s", err)
	}
	if err := tx.Sign(key); err != nil {
		return fmt.Errorf("cannot sign transaction: %s", err)
	}
	_, err = writeTx(output, tx)
	return err
}
