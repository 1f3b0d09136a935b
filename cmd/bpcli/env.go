package main

import (
	"os"
	"path/filepath"
)

// env returns the value of an environment variable if provided (even if empty)
// or a fallback value.
func env(name, fallback string) string {
	if v, ok := os.LookupEnv(name); ok {
		return v
	}
	return fallback
}

func defaultHome() string {
	return env("BPCLI_HOME", filepath.Join(os.Getenv("HOME"), ".bpcli"))
}

func defaultKeyPath() string {
	return env("BPCLI_PRIV_KEY", filepath.Join(os.Getenv("HOME"), ".bpcli.priv.key"))
}

func defaultProgramID() string {
	return env("BPCLI_PROGRAM_ID", approvalProgramID.String())
}
