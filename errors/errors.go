package errors

import (
	"fmt"
	"reflect"

	"github.com/pkg/errors"
)

// Host errors. Their codes follow the ordinals of the built-in program error
// channel of the ledger runtime, so that a client reading a raw code can map
// it back without knowing this codebase.
var (
	// ErrInvalidArgument is returned when an instruction argument is out of
	// the range accepted by the program.
	ErrInvalidArgument = Register(2, "invalid argument")

	// ErrInvalidInstructionData is returned when instruction bytes cannot be
	// handled by the runtime itself (ie. the system program).
	ErrInvalidInstructionData = Register(3, "invalid instruction data")

	// ErrInvalidAccountData is returned when a slot content cannot be
	// decoded into the expected entity.
	ErrInvalidAccountData = Register(4, "invalid account data")

	// ErrAccountDataTooSmall is returned when a record does not fit into the
	// slot allocated for it.
	ErrAccountDataTooSmall = Register(5, "account data too small")

	// ErrInsufficientFunds is returned when a payer cannot fund an
	// operation.
	ErrInsufficientFunds = Register(6, "insufficient funds")

	// ErrIncorrectProgramID is returned when a slot is not owned by the
	// program that tries to use it, or a program is not known.
	ErrIncorrectProgramID = Register(7, "incorrect program id")

	// ErrMissingSignature is returned when a required signer did not attest
	// the transaction.
	ErrMissingSignature = Register(8, "missing required signature")

	// ErrAccountAlreadyInUse is returned when an allocation targets an
	// address that already holds a slot.
	ErrAccountAlreadyInUse = Register(9, "account already in use")

	// ErrUninitializedAccount is returned when a slot is read at an address
	// where nothing was allocated.
	ErrUninitializedAccount = Register(10, "uninitialized account")

	// ErrNotEnoughAccountKeys is returned when an instruction does not
	// reference all the accounts a handler requires.
	ErrNotEnoughAccountKeys = Register(11, "not enough account keys")

	// ErrMaxSeedLengthExceeded is returned when address derivation is given
	// too many or too long seeds.
	ErrMaxSeedLengthExceeded = Register(13, "max seed length exceeded")

	// ErrInvalidSeeds is returned when a slot address is not the derivation
	// of the seeds that should define it.
	ErrInvalidSeeds = Register(14, "invalid seeds")

	// ErrReadonlyDataModified is returned when a program writes to a slot
	// that the instruction did not declare writable.
	ErrReadonlyDataModified = Register(20, "readonly data modified")

	// ErrInvalidSignature is returned when a transaction signature does not
	// verify.
	ErrInvalidSignature = Register(21, "invalid signature")

	// ErrDuplicate is returned when a transaction was already processed.
	ErrDuplicate = Register(22, "duplicate")

	// ErrInvalidInput stands for general input problems indication.
	ErrInvalidInput = Register(23, "invalid input")

	// ErrDatabase is returned when the storage layer misbehaves.
	ErrDatabase = Register(24, "database")

	// ErrPanic is only set when we recover from a panic, so we know to
	// redact potentially sensitive system info.
	ErrPanic = Register(111222, "panic")
)

// Register returns an error instance that should be used as the base for
// creating error instances during runtime.
//
// Host errors are declared in this package. This function ensures that no
// error code is used twice. Attempt to reuse an error code results in panic.
//
// Use this function only during a program startup phase.
func Register(code uint32, description string) *Error {
	return register(usedCodes, code, description, false)
}

// RegisterCustom returns an error instance living in the custom code space.
// Custom codes are reported to clients through the custom program error
// channel and are owned by a single program. Code 0 is a valid custom code.
//
// Use this function only during a program startup phase.
func RegisterCustom(code uint32, description string) *Error {
	return register(usedCustomCodes, code, description, true)
}

func register(used map[uint32]*Error, code uint32, description string, custom bool) *Error {
	if e, ok := used[code]; ok {
		panic(fmt.Sprintf("error with code %d is already registered: %q", code, e.desc))
	}
	err := &Error{
		code:   code,
		desc:   description,
		custom: custom,
	}
	used[err.code] = err
	return err
}

// usedCodes is keeping track of used codes to ensure their uniqueness. No two
// error instances should share the same error code.
var usedCodes = map[uint32]*Error{
	0: nil, // Success.
	1: nil, // Error code 1 is restricted for internal errors and must not be used.
}

var usedCustomCodes = map[uint32]*Error{}

// Error represents a root error.
//
// Root errors are used to categorize issues. Each instance created during the
// runtime should wrap one of the declared root errors. This allows error
// tests and returning all errors to the client in a safe manner.
type Error struct {
	code   uint32
	desc   string
	custom bool
}

func (e Error) Error() string {
	return e.desc
}

// Code returns the numeric code of this error within its code space.
func (e Error) Code() uint32 {
	return e.code
}

// IsCustom returns true if this error belongs to a program custom code
// space rather than to the host.
func (e Error) IsCustom() bool {
	return e.custom
}

// New returns a new error. Returned instance is having the root cause set to
// this error. Below two lines are equal
//   e.New("my description")
//   Wrap(e, "my description")
func (e *Error) New(description string) error {
	return Wrap(e, description)
}

// Newf is basically New with formatting capabilities.
func (e *Error) Newf(description string, args ...interface{}) error {
	return e.New(fmt.Sprintf(description, args...))
}

// Is check if given error instance is of a given kind/type. This involves
// unwrapping given error using the Cause method if available.
func (e *Error) Is(err error) bool {
	// Reflect usage is necessary to correctly compare with
	// a nil implementation of an error.
	if e == nil {
		return isNilErr(err)
	}

	for {
		if err == e {
			return true
		}

		// If this is a collection of errors, this function must return
		// true if at least one from the group match.
		if u, ok := err.(unpacker); ok {
			for _, er := range u.Unpack() {
				if e.Is(er) {
					return true
				}
			}
		}

		if c, ok := err.(causer); ok {
			err = c.Cause()
		} else {
			return false
		}
	}
}

// Wrap extends given error with an additional information.
//
// If the wrapped error does not provide a Code method (ie. stdlib errors),
// it will be labeled as internal error.
//
// If err is nil, this returns nil, avoiding the need for an if statement when
// wrapping a error returned at the end of a function
func Wrap(err error, description string) error {
	if err == nil {
		return nil
	}

	// If this error does not carry the stacktrace information yet, attach
	// one. This should be done only once per error at the lowest frame
	// possible (most inner wrap).
	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}

	return &wrappedError{
		parent: err,
		msg:    description,
	}
}

// Wrapf extends given error with an additional information.
//
// This function works like Wrap function with additional funtionality of
// formatting the input as specified.
func Wrapf(err error, format string, args ...interface{}) error {
	desc := fmt.Sprintf(format, args...)
	return Wrap(err, desc)
}

type wrappedError struct {
	// This error layer description.
	msg string
	// The underlying error that triggered this one.
	parent error
}

func (e *wrappedError) Error() string {
	return fmt.Sprintf("%s: %s", e.msg, e.parent.Error())
}

func (e *wrappedError) Cause() error {
	return e.parent
}

// Recover captures a panic and stop its propagation. If panic happens it is
// transformed into a ErrPanic instance and assigned to given error. Call this
// function using defer in order to work as expected.
func Recover(err *error) {
	if r := recover(); r != nil {
		*err = Wrapf(ErrPanic, "%v", r)
	}
}

// causer is an interface implemented by an error that supports wrapping. Use
// it to test if an error wraps another error instance.
type causer interface {
	Cause() error
}

// unpacker is implemented by errors that group other errors.
type unpacker interface {
	Unpack() []error
}

// isNilErr returns true if value represented by the given error is nil.
//
// Most of the time a simple == check is enough. There is a very narrowed
// spectrum of cases (mostly in tests) where a more sophisticated check is
// required.
func isNilErr(err error) bool {
	if err == nil {
		return true
	}
	if val := reflect.ValueOf(err); val.Kind() == reflect.Ptr {
		return val.IsNil()
	}
	return false
}
