package errors

import (
	"reflect"
	"testing"
)

func TestAppend(t *testing.T) {
	specs := map[string]struct {
		add  []error
		want error
	}{
		"single error":   {add: []error{ErrInvalidSeeds}, want: multiErr{ErrInvalidSeeds}},
		"multiple":       {add: []error{ErrInvalidSeeds, ErrInvalidInput}, want: multiErr{ErrInvalidSeeds, ErrInvalidInput}},
		"nothing":        {add: nil, want: nil},
		"nil is skipped": {add: []error{nil, nil}, want: nil},
		"group is flattened": {
			add:  []error{Append(ErrInvalidSeeds, ErrInvalidInput), ErrDuplicate},
			want: multiErr{ErrInvalidSeeds, ErrInvalidInput, ErrDuplicate},
		},
		"duplicates are kept": {
			add:  []error{ErrInvalidSeeds, ErrInvalidSeeds},
			want: multiErr{ErrInvalidSeeds, ErrInvalidSeeds},
		},
	}
	for msg, spec := range specs {
		t.Run(msg, func(t *testing.T) {
			if got := Append(spec.add...); !reflect.DeepEqual(spec.want, got) {
				t.Errorf("expected %v but got %v", spec.want, got)
			}
		})
	}
}

func TestMultiErrCode(t *testing.T) {
	err := Append(Wrap(ErrInvalidArgument, "first"), ErrInvalidSeeds)
	code, custom, _ := Status(err, false)
	if code != ErrInvalidArgument.Code() || custom {
		t.Fatalf("want first error code, got %d (custom %v)", code, custom)
	}
}
