package approval

import (
	"github.com/iov-one/blueprint"
	"github.com/iov-one/blueprint/errors"
)

// GenesisBlueprint is a blueprint created at genesis.
type GenesisBlueprint struct {
	Authority blueprint.Pubkey   `json:"authority"`
	Approvers []blueprint.Pubkey `json:"approvers"`
	Threshold uint8              `json:"threshold"`
}

// Initializer fulfils the blueprint.Initializer interface to load blueprints
// from the "blueprint" genesis options.
type Initializer struct {
	ProgramID blueprint.Pubkey
}

var _ blueprint.Initializer = (*Initializer)(nil)

// FromGenesis stores every listed blueprint at its derived address. The
// same rules as for the initialize command apply.
func (i *Initializer) FromGenesis(opts blueprint.Options, gs blueprint.GenesisStore) error {
	var blueprints []GenesisBlueprint
	if err := opts.ReadOptions("blueprint", &blueprints); err != nil {
		return errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	for n, gb := range blueprints {
		bp := Blueprint{
			Authority: gb.Authority,
			Approvers: gb.Approvers,
			Threshold: gb.Threshold,
		}
		if err := bp.Validate(); err != nil {
			return errors.Wrapf(err, "blueprint #%d", n)
		}
		addr, _, err := BlueprintAddress(blueprint.ProgramDeriver{}, i.ProgramID, bp.Authority)
		if err != nil {
			return errors.Wrapf(err, "blueprint #%d", n)
		}
		err = gs.PutSlot(blueprint.Slot{
			Address: addr,
			Owner:   i.ProgramID,
			Data:    bp.Marshal(),
		})
		if err != nil {
			return errors.Wrapf(err, "blueprint #%d", n)
		}
	}
	return nil
}
