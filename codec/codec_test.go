package codec

import (
	"bytes"
	"fmt"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestEncoding(t *testing.T) {
	Convey("Given an encoder", t, func() {
		e := NewEncoder(0)

		Convey("fixed width integers are little-endian", func() {
			e.U8(0x01)
			e.U16(0x0203)
			e.U32(0x04050607)
			e.U64(0x08090a0b0c0d0e0f)
			So(e.Bytes(), ShouldResemble, []byte{
				0x01,
				0x03, 0x02,
				0x07, 0x06, 0x05, 0x04,
				0x0f, 0x0e, 0x0d, 0x0c, 0x0b, 0x0a, 0x09, 0x08,
			})
		})

		Convey("booleans are a single byte", func() {
			e.Bool(true)
			e.Bool(false)
			So(e.Bytes(), ShouldResemble, []byte{1, 0})
		})

		Convey("sequences carry a u32 length prefix", func() {
			a := [32]byte{1}
			b := [32]byte{2}
			e.Bytes32Seq([][32]byte{a, b})
			So(e.Len(), ShouldEqual, 4+64)
			So(e.Bytes()[:4], ShouldResemble, []byte{2, 0, 0, 0})
			So(e.Bytes()[4], ShouldEqual, 1)
			So(e.Bytes()[36], ShouldEqual, 2)
		})

		Convey("an empty sequence is only the prefix", func() {
			e.Bytes32Seq(nil)
			e.VarBytes(nil)
			So(e.Bytes(), ShouldResemble, make([]byte, 8))
		})
	})
}

func TestDecoding(t *testing.T) {
	Convey("Given encoded values", t, func() {
		e := NewEncoder(0)
		e.U8(7)
		e.U16(513)
		e.U32(70000)
		e.U64(1 << 40)
		e.Bool(true)
		e.Bytes32([32]byte{9, 9})
		e.VarBytes([]byte("payload"))
		e.Bytes32Seq([][32]byte{{1}, {2}, {3}})
		raw := e.Bytes()

		Convey("decoding returns the same values in order", func() {
			d := NewDecoder(raw)
			u8, err := d.U8()
			So(err, ShouldBeNil)
			So(u8, ShouldEqual, 7)
			u16, err := d.U16()
			So(err, ShouldBeNil)
			So(u16, ShouldEqual, 513)
			u32, err := d.U32()
			So(err, ShouldBeNil)
			So(u32, ShouldEqual, 70000)
			u64, err := d.U64()
			So(err, ShouldBeNil)
			So(u64, ShouldEqual, uint64(1<<40))
			b, err := d.Bool()
			So(err, ShouldBeNil)
			So(b, ShouldBeTrue)
			fixed, err := d.Bytes32()
			So(err, ShouldBeNil)
			So(fixed, ShouldResemble, [32]byte{9, 9})
			vb, err := d.VarBytes()
			So(err, ShouldBeNil)
			So(string(vb), ShouldEqual, "payload")
			seq, err := d.Bytes32Seq()
			So(err, ShouldBeNil)
			So(seq, ShouldResemble, [][32]byte{{1}, {2}, {3}})
			So(d.Finish(), ShouldBeNil)

			Convey("and re-encoding yields identical bytes", func() {
				again := NewEncoder(0)
				again.U8(u8)
				again.U16(u16)
				again.U32(u32)
				again.U64(u64)
				again.Bool(b)
				again.Bytes32(fixed)
				again.VarBytes(vb)
				again.Bytes32Seq(seq)
				So(bytes.Equal(again.Bytes(), raw), ShouldBeTrue)
			})
		})

		Convey("truncated input fails", func() {
			for i := 0; i < len(raw); i++ {
				d := NewDecoder(raw[:i])
				_, err := d.U8()
				if err == nil {
					_, err = d.U16()
				}
				if err == nil {
					_, err = d.U32()
				}
				if err == nil {
					_, err = d.U64()
				}
				if err == nil {
					_, err = d.Bool()
				}
				if err == nil {
					_, err = d.Bytes32()
				}
				if err == nil {
					_, err = d.VarBytes()
				}
				if err == nil {
					_, err = d.Bytes32Seq()
				}
				So(ErrUnexpectedEOF.Is(err), ShouldBeTrue)
			}
		})

		Convey("trailing bytes are reported by Finish", func() {
			d := NewDecoder(append(raw, 0))
			_, _ = d.U8()
			err := d.Finish()
			So(ErrTrailingBytes.Is(err), ShouldBeTrue)
			So(err.Error(), ShouldStartWith, fmt.Sprintf("%d bytes left", len(raw)))
		})
	})

	Convey("A boolean byte other than 0 or 1 is rejected", t, func() {
		for _, v := range []byte{2, 0x7f, 0xff} {
			_, err := NewDecoder([]byte{v}).Bool()
			So(ErrInvalidBool.Is(err), ShouldBeTrue)
		}
	})

	Convey("A sequence length larger than the input is rejected before allocation", t, func() {
		_, err := NewDecoder([]byte{0xff, 0xff, 0xff, 0xff, 1, 2}).Bytes32Seq()
		So(ErrUnexpectedEOF.Is(err), ShouldBeTrue)
		_, err = NewDecoder([]byte{0xff, 0xff, 0xff, 0xff, 1, 2}).VarBytes()
		So(ErrUnexpectedEOF.Is(err), ShouldBeTrue)
	})
}
