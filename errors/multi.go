package errors

import (
	"strings"
)

// Append clubs together all provided errors. Nil values are ignored.
//
// If given error implements unpacker interface, it is flattened. All
// contained errors are extracted and directly added to the result. This is
// done only to the first level, it is not recursive.
func Append(errs ...error) error {
	var res multiErr
	for _, e := range errs {
		if isNilErr(e) {
			continue
		}
		if u, ok := e.(unpacker); ok {
			res = append(res, u.Unpack()...)
		} else {
			res = append(res, e)
		}
	}
	if len(res) == 0 {
		return nil
	}
	return res
}

// multiErr represents a group of errors. It is used to report multiple
// validation failures at once.
type multiErr []error

var (
	_ unpacker = multiErr(nil)
	_ error    = multiErr(nil)
)

// Unpack implements unpacker interface.
func (errs multiErr) Unpack() []error {
	return errs
}

func (errs multiErr) Error() string {
	if len(errs) == 1 {
		return errs[0].Error()
	}
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return "multiple errors: " + strings.Join(msgs, "; ")
}

// Code returns the code of the first coded error, following the fail-fast
// reporting of a group of errors.
func (errs multiErr) Code() uint32 {
	for _, e := range errs {
		if root := rootOf(e); root != nil {
			return root.code
		}
	}
	return internalCode
}

// IsCustom implements coder interface for a group of errors.
func (errs multiErr) IsCustom() bool {
	for _, e := range errs {
		if root := rootOf(e); root != nil {
			return root.custom
		}
	}
	return false
}
