package approval

import "github.com/iov-one/blueprint/errors"

// Program errors. Codes are part of the client interface and must never
// change.
var (
	ErrInvalidInstruction = errors.RegisterCustom(0, "invalid instruction")
	ErrUnauthorized       = errors.RegisterCustom(1, "unauthorized")
	ErrAlreadyApproved    = errors.RegisterCustom(2, "already approved")
	ErrNotEnoughApprovals = errors.RegisterCustom(3, "not enough approvals")
	ErrAlreadyExecuted    = errors.RegisterCustom(4, "proposal already executed")
)
