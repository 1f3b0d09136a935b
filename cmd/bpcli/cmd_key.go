package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/iov-one/blueprint/crypto"
)

func cmdKeygen(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Generate a new private key.

When successful a new file containing the hex encoded private key seed is
created and the public key is printed out. This command fails if the private
key file already exists.
`)
		fl.PrintDefaults()
	}
	var (
		keyPathFl = fl.String("key", defaultKeyPath(),
			"Path to the private key file. You can use BPCLI_PRIV_KEY environment variable to set it.")
	)
	fl.Parse(args)

	key := crypto.GenPrivateKey()
	// Do not allow to overwrite already existing private key. User must
	// manually delete it first.
	if err := crypto.SavePrivateKey(key, *keyPathFl, false); err != nil {
		return fmt.Errorf("cannot save private key: %s", err)
	}
	_, err := fmt.Fprintln(output, key.PublicKey())
	return err
}

func cmdKeyaddr(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Print out the base58 public key associated with your private key.
`)
		fl.PrintDefaults()
	}
	var (
		keyPathFl = fl.String("key", defaultKeyPath(),
			"Path to the private key file. You can use BPCLI_PRIV_KEY environment variable to set it.")
	)
	fl.Parse(args)

	if _, err := os.Stat(*keyPathFl); os.IsNotExist(err) {
		return fmt.Errorf("private key file %q does not exist", *keyPathFl)
	}
	key, err := crypto.LoadPrivateKey(*keyPathFl)
	if err != nil {
		return fmt.Errorf("cannot load private key: %s", err)
	}
	_, err = fmt.Fprintln(output, key.PublicKey())
	return err
}
