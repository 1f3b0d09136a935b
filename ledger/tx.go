package ledger

import (
	"github.com/btcsuite/btcutil/base58"

	"github.com/iov-one/blueprint"
	"github.com/iov-one/blueprint/codec"
	"github.com/iov-one/blueprint/crypto"
	"github.com/iov-one/blueprint/errors"
)

const (
	// minimal encoded sizes, used to bound sequence lengths while decoding
	minInstructionSize = blueprint.PubkeySize + 4 + 4
	accountMetaSize    = blueprint.PubkeySize + 2
)

// Message is the signed content of a transaction.
type Message struct {
	// FeePayer is always the first signer.
	FeePayer blueprint.Pubkey
	// Nonce makes otherwise identical messages distinct.
	Nonce        uint64
	Instructions []blueprint.Instruction
}

// Signers returns every identity that must sign the message. The fee payer
// comes first, followed by signer accounts in the order of appearance.
func (m *Message) Signers() []blueprint.Pubkey {
	signers := []blueprint.Pubkey{m.FeePayer}
	for _, ix := range m.Instructions {
		for _, meta := range ix.Accounts {
			if meta.IsSigner && !blueprint.ContainsPubkey(signers, meta.Pubkey) {
				signers = append(signers, meta.Pubkey)
			}
		}
	}
	return signers
}

// Marshal returns the bytes that are signed.
func (m *Message) Marshal() []byte {
	e := codec.NewEncoder(64)
	m.encode(e)
	return e.Bytes()
}

func (m *Message) encode(e *codec.Encoder) {
	e.Bytes32(m.FeePayer)
	e.U64(m.Nonce)
	e.U32(uint32(len(m.Instructions)))
	for _, ix := range m.Instructions {
		e.Bytes32(ix.ProgramID)
		e.U32(uint32(len(ix.Accounts)))
		for _, meta := range ix.Accounts {
			e.Bytes32(meta.Pubkey)
			e.Bool(meta.IsSigner)
			e.Bool(meta.IsWritable)
		}
		e.VarBytes(ix.Data)
	}
}

func (m *Message) decode(d *codec.Decoder) error {
	var err error
	if m.FeePayer, err = d.Bytes32(); err != nil {
		return err
	}
	if m.Nonce, err = d.U64(); err != nil {
		return err
	}
	n, err := d.U32()
	if err != nil {
		return err
	}
	if uint64(n)*minInstructionSize > uint64(d.Remaining()) {
		return errors.Wrapf(codec.ErrUnexpectedEOF, "%d instructions", n)
	}
	m.Instructions = make([]blueprint.Instruction, n)
	for i := range m.Instructions {
		ix := &m.Instructions[i]
		if ix.ProgramID, err = d.Bytes32(); err != nil {
			return err
		}
		metas, err := d.U32()
		if err != nil {
			return err
		}
		if uint64(metas)*accountMetaSize > uint64(d.Remaining()) {
			return errors.Wrapf(codec.ErrUnexpectedEOF, "%d accounts", metas)
		}
		ix.Accounts = make([]blueprint.AccountMeta, metas)
		for j := range ix.Accounts {
			meta := &ix.Accounts[j]
			if meta.Pubkey, err = d.Bytes32(); err != nil {
				return err
			}
			if meta.IsSigner, err = d.Bool(); err != nil {
				return err
			}
			if meta.IsWritable, err = d.Bool(); err != nil {
				return err
			}
		}
		if ix.Data, err = d.VarBytes(); err != nil {
			return err
		}
	}
	return nil
}

// Transaction is a message together with the signatures of all its signers.
// Signatures[i] belongs to Message.Signers()[i].
type Transaction struct {
	Message    Message
	Signatures [][]byte
}

// NewTransaction returns an unsigned transaction.
func NewTransaction(feePayer blueprint.Pubkey, nonce uint64, instructions ...blueprint.Instruction) *Transaction {
	return &Transaction{
		Message: Message{
			FeePayer:     feePayer,
			Nonce:        nonce,
			Instructions: instructions,
		},
	}
}

// Sign adds the signature of every given key. A key that is not a signer of
// the message is rejected. Signing can be done in many steps, by different
// parties.
func (tx *Transaction) Sign(keys ...*crypto.PrivateKey) error {
	signers := tx.Message.Signers()
	if len(tx.Signatures) != len(signers) {
		sigs := make([][]byte, len(signers))
		copy(sigs, tx.Signatures)
		tx.Signatures = sigs
	}
	msg := tx.Message.Marshal()
	for _, key := range keys {
		pub := key.PublicKey()
		idx := -1
		for i, s := range signers {
			if s == pub {
				idx = i
				break
			}
		}
		if idx < 0 {
			return errors.Wrapf(errors.ErrInvalidInput, "%s is not a signer", pub)
		}
		tx.Signatures[idx] = key.Sign(msg)
	}
	return nil
}

// Verify checks that every signer produced a valid signature. It returns
// the verified signers.
func (tx *Transaction) Verify() ([]blueprint.Pubkey, error) {
	signers := tx.Message.Signers()
	if len(tx.Signatures) != len(signers) {
		return nil, errors.Wrapf(errors.ErrMissingSignature, "want %d signatures, got %d", len(signers), len(tx.Signatures))
	}
	msg := tx.Message.Marshal()
	for i, s := range signers {
		sig := tx.Signatures[i]
		if isBlank(sig) {
			return nil, errors.Wrapf(errors.ErrMissingSignature, "signer %s", s)
		}
		if !crypto.Verify(s, msg, sig) {
			return nil, errors.Wrapf(errors.ErrInvalidSignature, "signer %s", s)
		}
	}
	return signers, nil
}

// ID is the base58 form of the first signature. It identifies the
// transaction.
func (tx *Transaction) ID() string {
	if len(tx.Signatures) == 0 {
		return ""
	}
	return base58.Encode(tx.Signatures[0])
}

// Marshal serializes the transaction. Missing signatures are encoded as
// zero bytes so a partially signed transaction can be passed around.
func (tx *Transaction) Marshal() []byte {
	e := codec.NewEncoder(256)
	e.U32(uint32(len(tx.Signatures)))
	for _, sig := range tx.Signatures {
		padded := make([]byte, crypto.SignatureSize)
		copy(padded, sig)
		e.Fixed(padded)
	}
	tx.Message.encode(e)
	return e.Bytes()
}

// Unmarshal deserializes a transaction. All input must be consumed.
func (tx *Transaction) Unmarshal(raw []byte) error {
	d := codec.NewDecoder(raw)
	n, err := d.U32()
	if err != nil {
		return errors.Wrap(err, "signatures")
	}
	if uint64(n)*crypto.SignatureSize > uint64(d.Remaining()) {
		return errors.Wrapf(codec.ErrUnexpectedEOF, "%d signatures", n)
	}
	tx.Signatures = make([][]byte, n)
	for i := range tx.Signatures {
		if tx.Signatures[i], err = d.Fixed(crypto.SignatureSize); err != nil {
			return err
		}
	}
	if err := tx.Message.decode(d); err != nil {
		return errors.Wrap(err, "message")
	}
	return d.Finish()
}

func isBlank(sig []byte) bool {
	for _, b := range sig {
		if b != 0 {
			return false
		}
	}
	return true
}
