package approval

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/iov-one/blueprint"
	"github.com/iov-one/blueprint/bptest/assert"
)

func TestCommandEncoding(t *testing.T) {
	cases := map[string]struct {
		cmd  Command
		want []byte
	}{
		"initialize": {
			cmd: &InitializeMsg{Approvers: []blueprint.Pubkey{pk(9)}, Threshold: 1},
			want: concat(
				[]byte{0, 0, 0, 0},
				[]byte{1, 0, 0, 0}, bytes.Repeat([]byte{9}, 32),
				[]byte{1},
			),
		},
		"propose": {
			cmd: &ProposeMsg{ActionType: 7, PayloadHash: hash(0x11)},
			want: concat(
				[]byte{1, 0, 0, 0},
				[]byte{7, 0},
				bytes.Repeat([]byte{0x11}, 32),
			),
		},
		"approve": {
			cmd:  &ApproveMsg{},
			want: []byte{2, 0, 0, 0},
		},
		"execute": {
			cmd:  &ExecuteMsg{},
			want: []byte{3, 0, 0, 0},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			raw := MarshalCommand(tc.cmd)
			if !bytes.Equal(tc.want, raw) {
				t.Fatalf("unexpected encoding\nwant %x\n got %x", tc.want, raw)
			}
			got, err := UnmarshalCommand(raw)
			assert.Nil(t, err)
			if !reflect.DeepEqual(tc.cmd, got) {
				t.Fatalf("want %#v, got %#v", tc.cmd, got)
			}
		})
	}
}

func TestUnmarshalCommandRejectsMalformed(t *testing.T) {
	propose := MarshalCommand(&ProposeMsg{ActionType: 1, PayloadHash: hash(1)})

	cases := map[string][]byte{
		"empty":              nil,
		"short tag":          {0, 0},
		"unknown tag":        {4, 0, 0, 0},
		"truncated propose":  propose[:len(propose)-1],
		"trailing bytes":     append(MarshalCommand(&ApproveMsg{}), 0),
		"approvers past end": {0, 0, 0, 0, 2, 0, 0, 0, 1},
		"missing threshold":  concat([]byte{0, 0, 0, 0, 1, 0, 0, 0}, bytes.Repeat([]byte{1}, 32)),
	}

	for testName, raw := range cases {
		t.Run(testName, func(t *testing.T) {
			_, err := UnmarshalCommand(raw)
			assert.IsErr(t, ErrInvalidInstruction, err)
			assert.ErrCode(t, err, true, 0)
		})
	}
}

func TestParsePayloadHash(t *testing.T) {
	h, err := ParsePayloadHash("1111111111111111111111111111111111111111111111111111111111111111")
	assert.Nil(t, err)
	assert.Equal(t, hash(0x11), h)

	if _, err := ParsePayloadHash("1111"); err == nil {
		t.Fatal("short hash accepted")
	}
	if _, err := ParsePayloadHash("zz"); err == nil {
		t.Fatal("invalid hex accepted")
	}
}

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
