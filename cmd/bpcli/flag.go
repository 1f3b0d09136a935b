package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/iov-one/blueprint"
	"github.com/iov-one/blueprint/x/approval"
)

// flagDie terminates the program when a flag value is not acceptable. It is
// a variable so that tests can observe the call instead of exiting.
var flagDie = func(description string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, description+"\n", args...)
	os.Exit(2)
}

// flPubkey returns a value that is being initialized with given default value
// and optionally overwritten by a command line argument if provided. This
// function follows Go's flag package convention.
// If given value cannot be deserialized to required type, process is
// terminated.
func flPubkey(fl *flag.FlagSet, name, defaultVal, usage string) *blueprint.Pubkey {
	var pk pubkeyFlag
	if defaultVal != "" {
		if err := pk.Set(defaultVal); err != nil {
			flagDie("cannot parse %q public key flag value: %s", name, err)
		}
	}
	fl.Var(&pk, name, usage)
	return (*blueprint.Pubkey)(&pk)
}

type pubkeyFlag blueprint.Pubkey

func (p *pubkeyFlag) String() string {
	return blueprint.Pubkey(*p).String()
}

func (p *pubkeyFlag) Set(raw string) error {
	pk, err := blueprint.ParsePubkey(raw)
	if err != nil {
		return err
	}
	*p = pubkeyFlag(pk)
	return nil
}

// flPubkeys returns a comma separated list of public keys.
func flPubkeys(fl *flag.FlagSet, name, usage string) *[]blueprint.Pubkey {
	var pks pubkeysFlag
	fl.Var(&pks, name, usage)
	return (*[]blueprint.Pubkey)(&pks)
}

type pubkeysFlag []blueprint.Pubkey

func (p *pubkeysFlag) String() string {
	strs := make([]string, len(*p))
	for i, pk := range *p {
		strs[i] = pk.String()
	}
	return strings.Join(strs, ",")
}

func (p *pubkeysFlag) Set(raw string) error {
	var pks []blueprint.Pubkey
	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		pk, err := blueprint.ParsePubkey(s)
		if err != nil {
			return err
		}
		pks = append(pks, pk)
	}
	*p = pks
	return nil
}

// flHash returns a hex encoded 32 byte payload hash.
func flHash(fl *flag.FlagSet, name, usage string) *[32]byte {
	var h hashFlag
	fl.Var(&h, name, usage)
	return (*[32]byte)(&h)
}

type hashFlag [32]byte

func (h *hashFlag) String() string {
	return fmt.Sprintf("%x", h[:])
}

func (h *hashFlag) Set(raw string) error {
	val, err := approval.ParsePayloadHash(raw)
	if err != nil {
		return err
	}
	*h = hashFlag(val)
	return nil
}
