package main

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/tendermint/tendermint/libs/log"

	"github.com/iov-one/blueprint"
	"github.com/iov-one/blueprint/crypto"
	"github.com/iov-one/blueprint/ledger"
	"github.com/iov-one/blueprint/store/iavl"
	"github.com/iov-one/blueprint/x/approval"
)

// approvalProgramID is the address the approval program is deployed at
// unless configured otherwise.
var approvalProgramID = blueprint.Pubkey(sha256.Sum256([]byte("approval program")))

// writeTx serialize the transaction. First bytes written contain the
// information how much space the transaction takes. Size information is
// required to be able to stream the transactions through a pipe.
func writeTx(w io.Writer, tx *ledger.Transaction) (int, error) {
	b := tx.Marshal()

	var size [txHeaderSize]byte
	binary.BigEndian.PutUint32(size[:], uint32(len(b)))

	if n, err := w.Write(size[:]); err != nil {
		return n, err
	}
	if n, err := w.Write(b); err != nil {
		return n + txHeaderSize, err
	}
	return txHeaderSize + len(b), nil
}

func readTx(r io.Reader) (*ledger.Transaction, int, error) {
	// When serialized using writeTx function, first bytes contain
	// information about the actual size of the transaction message.
	var size [txHeaderSize]byte
	if n, err := io.ReadFull(r, size[:]); err != nil {
		return nil, n, err
	}
	msgSize := binary.BigEndian.Uint32(size[:])
	if msgSize > maxTxSize {
		return nil, txHeaderSize, fmt.Errorf("transaction of %d bytes exceeds the %d bytes limit", msgSize, maxTxSize)
	}
	raw := make([]byte, msgSize)
	if n, err := io.ReadFull(r, raw); err != nil {
		return nil, n + txHeaderSize, err
	}

	var tx ledger.Transaction
	if err := tx.Unmarshal(raw); err != nil {
		return nil, int(msgSize + txHeaderSize), err
	}
	return &tx, int(msgSize + txHeaderSize), nil
}

const (
	txHeaderSize = 4
	maxTxSize    = 64 * 1024
)

// openLedger loads the latest committed state kept in the home directory.
// The approval program is deployed at programID. Returned function must be
// called to release the database.
func openLedger(home string, programID blueprint.Pubkey) (*ledger.Ledger, func(), error) {
	if err := os.MkdirAll(home, 0700); err != nil {
		return nil, nil, fmt.Errorf("cannot create home directory: %s", err)
	}
	db, err := iavl.NewCommitStore(home, "state")
	if err != nil {
		return nil, nil, fmt.Errorf("cannot open state database: %s", err)
	}
	if err := db.LoadLatestVersion(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("cannot load state: %s", err)
	}
	logger, err := newLogger(os.Stderr)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	l := ledger.New(db.Adapter()).WithCommitter(db).WithLogger(logger)
	if programID != blueprint.SystemProgramID {
		l.Register(programID, approval.NewProcessor())
	}
	return l, db.Close, nil
}

// newLogger returns a logger filtered by the BPCLI_LOG_LEVEL environment
// variable. Only errors are printed by default.
func newLogger(w io.Writer) (log.Logger, error) {
	allow, err := log.AllowLevel(env("BPCLI_LOG_LEVEL", "error"))
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %s", err)
	}
	return log.NewFilter(log.NewTMLogger(log.NewSyncWriter(w)), allow), nil
}

// signerKey returns the identity that signs a transaction being built. An
// explicitly given public key takes precedence over the private key file.
func signerKey(explicit blueprint.Pubkey, keyPath string) (blueprint.Pubkey, error) {
	if !explicit.IsZero() {
		return explicit, nil
	}
	key, err := crypto.LoadPrivateKey(keyPath)
	if err != nil {
		return blueprint.Pubkey{}, fmt.Errorf("cannot load private key: %s", err)
	}
	return key.PublicKey(), nil
}

func writeJSON(w io.Writer, v interface{}) error {
	raw, err := json.MarshalIndent(v, "", "\t")
	if err != nil {
		return fmt.Errorf("cannot serialize: %s", err)
	}
	_, err = fmt.Fprintln(w, string(raw))
	return err
}
