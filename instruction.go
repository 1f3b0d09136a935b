package blueprint

// AccountMeta references an account an instruction operates on, together
// with the access the instruction requires.
type AccountMeta struct {
	Pubkey     Pubkey
	IsSigner   bool
	IsWritable bool
}

// NewAccountMeta returns a writable account reference.
func NewAccountMeta(pk Pubkey, signer bool) AccountMeta {
	return AccountMeta{Pubkey: pk, IsSigner: signer, IsWritable: true}
}

// NewReadonlyAccountMeta returns a read-only account reference.
func NewReadonlyAccountMeta(pk Pubkey, signer bool) AccountMeta {
	return AccountMeta{Pubkey: pk, IsSigner: signer, IsWritable: false}
}

// Instruction is a single program invocation. Data is opaque to the runtime
// and decoded by the program.
type Instruction struct {
	ProgramID Pubkey
	Accounts  []AccountMeta
	Data      []byte
}

// SystemProgramID identifies the runtime program that owns plain wallets and
// allocates storage for other programs.
var SystemProgramID = Pubkey{}
