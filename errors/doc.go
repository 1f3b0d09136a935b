/*
Package errors implements the error surface shared by the ledger runtime and
the programs it hosts.

Every failure should wrap one of the registered root errors. Host errors are
declared in this package with Register. A program declares its own errors in
the custom code space with RegisterCustom; those codes are reported to
clients through the custom program error channel and may overlap with host
codes.

Please ensure you create errors using ErrXyz.New("...") or
errors.Wrap(err, "...") at the point of creation to ensure we attach a
stacktrace. If you wrap multiple times, we only record the first wrap with
the stacktrace.

Once you have an error, you can use `fmt.Printf/Sprintf` to get more context
	%s is just the error message
	%+v is the full stack trace
	%v appends a compressed [filename:line] where the error was created
*/
package errors
