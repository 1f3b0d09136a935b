package approval

import (
	"github.com/iov-one/blueprint"
)

var (
	blueprintSeedPrefix = []byte("blueprint")
	proposalSeedPrefix  = []byte("proposal")
)

// BlueprintSeeds returns the seeds defining the blueprint of authority.
func BlueprintSeeds(authority blueprint.Pubkey) [][]byte {
	return [][]byte{blueprintSeedPrefix, authority[:]}
}

// ProposalSeeds returns the seeds defining the proposal of payloadHash under
// the blueprint stored at blueprintAddr.
func ProposalSeeds(blueprintAddr blueprint.Pubkey, payloadHash [32]byte) [][]byte {
	return [][]byte{proposalSeedPrefix, blueprintAddr[:], payloadHash[:]}
}

// BlueprintAddress returns the address and witness of the blueprint slot of
// authority.
func BlueprintAddress(d blueprint.Deriver, programID, authority blueprint.Pubkey) (blueprint.Pubkey, uint8, error) {
	return d.FindProgramAddress(BlueprintSeeds(authority), programID)
}

// ProposalAddress returns the address and witness of the proposal slot of
// payloadHash under the blueprint stored at blueprintAddr.
func ProposalAddress(d blueprint.Deriver, programID, blueprintAddr blueprint.Pubkey, payloadHash [32]byte) (blueprint.Pubkey, uint8, error) {
	return d.FindProgramAddress(ProposalSeeds(blueprintAddr, payloadHash), programID)
}
