package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/iov-one/blueprint"
)

// commands is a register of all availables commands that can be executed by
// this program. The name is used to match with the first argument given.
//
// A command function is an independent runable that is taking input and output
// being stdin and stdout. Given args are the command line arguments, without
// the program name, that should be parsed using the flag package.
// A command function is expected to read and write only to provided input and
// output. In a special case of an invalid argument a message to os.Stderr and
// os.Exit(2) call are allowed.
//
// Commands that create a transaction write it to the output so that it can be
// signed and submitted using a unix pipe:
//
//   $ bpcli approve -authority 7xKX... -hash 1111... \
//       | bpcli sign \
//       | bpcli submit
//
var commands = map[string]func(input io.Reader, output io.Writer, args []string) error{
	"airdrop":       cmdAirdrop,
	"approve":       cmdApprove,
	"execute":       cmdExecute,
	"genesis":       cmdGenesis,
	"initialize":    cmdInitialize,
	"keyaddr":       cmdKeyaddr,
	"keygen":        cmdKeygen,
	"propose":       cmdPropose,
	"show-account":  cmdShowAccount,
	"show-proposal": cmdShowProposal,
	"sign":          cmdSignTransaction,
	"submit":        cmdSubmitTransaction,
	"transfer":      cmdTransfer,
	"version":       cmdVersion,
	"view":          cmdTransactionView,
}

func main() {
	if len(os.Args) == 1 {
		fmt.Fprintf(os.Stderr, "%s is a command line client for the approval program ledger.\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Usage: %s <command> [<flags>]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nAvailable commands are:\n\t%s\n", strings.Join(availableCmds(), "\n\t"))
		fmt.Fprintf(os.Stderr, "Run '%s <command> -help' to learn more about each command.\n", os.Args[0])
		os.Exit(2)
	}
	run, ok := commands[os.Args[1]]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "\nAvailable commands are:\n\t%s\n", strings.Join(availableCmds(), "\n\t"))
		os.Exit(2)
	}

	// Skip two first arguments. Second argument is the command name that
	// we just consumed.
	if err := run(os.Stdin, os.Stdout, os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func availableCmds() []string {
	available := make([]string, 0, len(commands))
	for name := range commands {
		available = append(available, name)
	}
	sort.Strings(available)
	return available
}

func cmdVersion(in io.Reader, out io.Writer, args []string) error {
	fmt.Fprintln(out, blueprint.Version())
	return nil
}
