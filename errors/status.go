package errors

import (
	"fmt"
)

const (
	// SuccessCode is reported when the processing was successful and no
	// error is returned.
	SuccessCode uint32 = 0

	// All unclassified errors that do not provide a code are clubbed
	// under an internal error code and a generic message instead of
	// detailed error string.
	internalCode uint32 = 1
	internalLog         = "internal error"
)

// coder is implemented by root errors and groups of errors.
type coder interface {
	Code() uint32
	IsCustom() bool
}

// Status returns the error information as reported to the client that
// submitted a transaction. Returned code belongs to the custom program space
// when custom is true, to the host space otherwise.
//
// Any error that does not provide a code is categorized as an internal error
// with code 1. When not running in a debug mode the message of an internal
// error is replaced with a generic "internal error" text.
func Status(err error, debug bool) (code uint32, custom bool, log string) {
	if isNilErr(err) {
		return SuccessCode, false, ""
	}

	c := codeOf(err)
	if c == nil {
		if debug {
			return internalCode, false, fmt.Sprintf("%+v", err)
		}
		return internalCode, false, internalLog
	}
	if debug {
		// Try to trigger full information formatting. This
		// might produce a stacktrace.
		return c.Code(), c.IsCustom(), fmt.Sprintf("%+v", err)
	}
	return c.Code(), c.IsCustom(), err.Error()
}

// Redact replace all errors that do not initialize with a registered error
// with a generic internal error instance. This function is supposed to hide
// implementation details errors and leave only those that are part of the
// public error surface.
//
// This is a no-operation function when running in debug mode.
func Redact(err error, debug bool) error {
	if debug || isNilErr(err) {
		return err
	}
	if ErrPanic.Is(err) || codeOf(err) == nil {
		return fmt.Errorf(internalLog)
	}
	return err
}

// codeOf test if given error contains a code and returns the carrier. This
// function is testing for the causer interface as well and unwraps the error.
func codeOf(err error) coder {
	for {
		if isNilErr(err) {
			return nil
		}
		if c, ok := err.(coder); ok {
			return c
		}
		if c, ok := err.(causer); ok {
			err = c.Cause()
		} else {
			return nil
		}
	}
}

// rootOf returns the registered root error of given error or nil.
func rootOf(err error) *Error {
	for {
		if isNilErr(err) {
			return nil
		}
		if e, ok := err.(*Error); ok {
			return e
		}
		if c, ok := err.(causer); ok {
			err = c.Cause()
		} else {
			return nil
		}
	}
}
