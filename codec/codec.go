/*
Package codec implements the deterministic binary schema shared between the
programs and their clients.

Fixed-width integers are little-endian. A sequence is a 32-bit little-endian
length followed by that many elements. A boolean is a single 0x00 or 0x01
byte. Every value has exactly one encoding, so decoding and then encoding
again always reproduces the input bytes.
*/
package codec

import (
	"encoding/binary"

	"github.com/iov-one/blueprint/errors"
)

var (
	// ErrUnexpectedEOF is returned when the input ends before the decoded
	// value is complete.
	ErrUnexpectedEOF = errors.Register(30, "unexpected end of input")

	// ErrInvalidBool is returned when a boolean byte is neither 0 nor 1.
	ErrInvalidBool = errors.Register(31, "invalid boolean")

	// ErrTrailingBytes is returned when an exact decode leaves input unread.
	ErrTrailingBytes = errors.Register(32, "not all bytes read")
)

// Encoder appends values to an internal buffer. The zero value is ready to
// use.
type Encoder struct {
	buf []byte
}

// NewEncoder returns an encoder with capacity preallocated for size bytes.
func NewEncoder(size int) *Encoder {
	return &Encoder{buf: make([]byte, 0, size)}
}

// Bytes returns the encoded content.
func (e *Encoder) Bytes() []byte {
	return e.buf
}

// Len returns the number of bytes encoded so far.
func (e *Encoder) Len() int {
	return len(e.buf)
}

func (e *Encoder) U8(v uint8) {
	e.buf = append(e.buf, v)
}

func (e *Encoder) U16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	e.buf = append(e.buf, b[:]...)
}

func (e *Encoder) U32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	e.buf = append(e.buf, b[:]...)
}

func (e *Encoder) U64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	e.buf = append(e.buf, b[:]...)
}

func (e *Encoder) Bool(v bool) {
	if v {
		e.U8(1)
	} else {
		e.U8(0)
	}
}

// Fixed appends raw bytes without any length information. Use it for fixed
// size arrays, for example hashes and keys.
func (e *Encoder) Fixed(b []byte) {
	e.buf = append(e.buf, b...)
}

// Bytes32 appends a fixed 32 byte array.
func (e *Encoder) Bytes32(b [32]byte) {
	e.buf = append(e.buf, b[:]...)
}

// VarBytes appends a length prefixed byte sequence.
func (e *Encoder) VarBytes(b []byte) {
	e.U32(uint32(len(b)))
	e.buf = append(e.buf, b...)
}

// Bytes32Seq appends a length prefixed sequence of 32 byte arrays.
func (e *Encoder) Bytes32Seq(seq [][32]byte) {
	e.U32(uint32(len(seq)))
	for _, b := range seq {
		e.Bytes32(b)
	}
}

// Decoder reads values from a byte slice.
type Decoder struct {
	buf []byte
	off int
}

// NewDecoder returns a decoder reading from b. The slice is not copied.
func NewDecoder(b []byte) *Decoder {
	return &Decoder{buf: b}
}

// Remaining returns the number of unread bytes.
func (d *Decoder) Remaining() int {
	return len(d.buf) - d.off
}

// Finish returns an error if any input was left unread.
func (d *Decoder) Finish() error {
	if n := d.Remaining(); n != 0 {
		return ErrTrailingBytes.Newf("%d bytes left", n)
	}
	return nil
}

func (d *Decoder) take(n int) ([]byte, error) {
	if n < 0 || d.Remaining() < n {
		return nil, errors.Wrapf(ErrUnexpectedEOF, "need %d bytes at offset %d", n, d.off)
	}
	b := d.buf[d.off : d.off+n]
	d.off += n
	return b, nil
}

func (d *Decoder) U8() (uint8, error) {
	b, err := d.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (d *Decoder) U16() (uint16, error) {
	b, err := d.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (d *Decoder) U32() (uint32, error) {
	b, err := d.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (d *Decoder) U64() (uint64, error) {
	b, err := d.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (d *Decoder) Bool() (bool, error) {
	v, err := d.U8()
	if err != nil {
		return false, err
	}
	switch v {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, errors.Wrapf(ErrInvalidBool, "got 0x%02x", v)
	}
}

// Fixed reads n raw bytes. Returned slice is a copy.
func (d *Decoder) Fixed(n int) ([]byte, error) {
	b, err := d.take(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

func (d *Decoder) Bytes32() ([32]byte, error) {
	var out [32]byte
	b, err := d.take(32)
	if err != nil {
		return out, err
	}
	copy(out[:], b)
	return out, nil
}

// VarBytes reads a length prefixed byte sequence.
func (d *Decoder) VarBytes() ([]byte, error) {
	n, err := d.U32()
	if err != nil {
		return nil, err
	}
	if uint64(n) > uint64(d.Remaining()) {
		return nil, errors.Wrapf(ErrUnexpectedEOF, "sequence of %d bytes", n)
	}
	return d.Fixed(int(n))
}

// Bytes32Seq reads a length prefixed sequence of 32 byte arrays. The declared
// length is checked against the remaining input before any allocation.
func (d *Decoder) Bytes32Seq() ([][32]byte, error) {
	n, err := d.U32()
	if err != nil {
		return nil, err
	}
	if uint64(n)*32 > uint64(d.Remaining()) {
		return nil, errors.Wrapf(ErrUnexpectedEOF, "sequence of %d elements", n)
	}
	seq := make([][32]byte, n)
	for i := range seq {
		if seq[i], err = d.Bytes32(); err != nil {
			return nil, err
		}
	}
	return seq, nil
}
