package main

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iov-one/blueprint"
	"github.com/iov-one/blueprint/bptest"
	"github.com/iov-one/blueprint/bptest/assert"
	"github.com/iov-one/blueprint/ledger"
)

func TestWriteReadTx(t *testing.T) {
	payer := bptest.NewKey()
	tx := ledger.NewTransaction(payer.PublicKey(), 7,
		ledger.NewTransferInstruction(payer.PublicKey(), bptest.NewPubkey(), 100))
	assert.Nil(t, tx.Sign(payer))

	var buf bytes.Buffer
	n, err := writeTx(&buf, tx)
	assert.Nil(t, err)
	assert.Equal(t, buf.Len(), n)

	got, m, err := readTx(&buf)
	assert.Nil(t, err)
	assert.Equal(t, n, m)
	assert.Equal(t, tx.Marshal(), got.Marshal())
	assert.Equal(t, 0, buf.Len())
}

func TestReadTxTruncated(t *testing.T) {
	payer := bptest.NewKey()
	tx := ledger.NewTransaction(payer.PublicKey(), 1)
	var buf bytes.Buffer
	_, err := writeTx(&buf, tx)
	assert.Nil(t, err)

	raw := buf.Bytes()
	if _, _, err := readTx(bytes.NewReader(raw[:len(raw)-1])); err != io.ErrUnexpectedEOF {
		t.Fatalf("want unexpected EOF, got %v", err)
	}
	if _, _, err := readTx(bytes.NewReader(nil)); err != io.EOF {
		t.Fatalf("want EOF, got %v", err)
	}
}

func TestReadTxSizeLimit(t *testing.T) {
	header := []byte{0xff, 0xff, 0xff, 0xff}
	_, n, err := readTx(bytes.NewReader(header))
	if err == nil || !strings.Contains(err.Error(), "exceeds") {
		t.Fatalf("want size limit error, got %v", err)
	}
	assert.Equal(t, txHeaderSize, n)
}

func TestSignerKey(t *testing.T) {
	key := bptest.NewKey()
	explicit := bptest.NewPubkey()

	got, err := signerKey(explicit, "/does/not/exist")
	assert.Nil(t, err)
	assert.Equal(t, explicit, got)

	dir := tempDir(t)
	keyPath := filepath.Join(dir, "priv.key")
	writeKey(t, keyPath, key)
	got, err = signerKey(blueprint.Pubkey{}, keyPath)
	assert.Nil(t, err)
	assert.Equal(t, key.PublicKey(), got)

	if _, err := signerKey(blueprint.Pubkey{}, filepath.Join(dir, "missing")); err == nil {
		t.Fatal("want error for a missing key file")
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newLogger(&buf)
	assert.Nil(t, err)
	logger.Info("hidden")
	logger.Error("shown", "key", "value")
	if out := buf.String(); strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Fatalf("unexpected log output: %q", out)
	}
}
