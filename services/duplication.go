package services

import "fmt"

// Duplicate synchronization. Structural edits are always applied to an
// original and then replayed onto each of its duplicates. Correspondence
// between an original's sub-entities and a duplicate's is by name (levels
// by level name, spaces by space name), never by id: duplicates own
// independent identities for everything below the structure itself.

// forEachMirror runs fn against the original first, then against every
// duplicate mirroring it, so one mutation function serves both sides.
func (p *Proposal) forEachMirror(original *Structure, fn func(*Structure)) {
	fn(original)
	for _, d := range p.Duplicates(original.ID) {
		fn(d)
	}
}

// renumberDuplicates regenerates every duplicate's description from the
// parent's current description and the duplicate's creation-order position.
// Called after insertions, deletions and parent renames.
func (p *Proposal) renumberDuplicates(originalID string) {
	parent := p.byID[originalID]
	if parent == nil {
		return
	}
	for i, id := range p.children[originalID] {
		d := p.byID[id]
		if d == nil {
			continue
		}
		d.Description = fmt.Sprintf("%s (Duplicate %d)", parent.Description, i+1)
	}
}

// cloneLevels deep-copies a level list under fresh ids.
func cloneLevels(levels []*Level) []*Level {
	var out []*Level
	for _, lvl := range levels {
		out = append(out, &Level{
			ID:        newID(),
			Name:      lvl.Name,
			FloorArea: lvl.FloorArea,
			Spaces:    cloneSpaces(lvl.Spaces),
		})
	}
	return out
}

// cloneSpaces deep-copies a space list under fresh ids.
func cloneSpaces(spaces []*Space) []*Space {
	var out []*Space
	for _, sp := range spaces {
		cp := &Space{
			ID:             newID(),
			Name:           sp.Name,
			FloorArea:      sp.FloorArea,
			BuildingTypeID: sp.BuildingTypeID,
			SplitFees:      sp.SplitFees,
		}
		for _, fee := range sp.Fees {
			cp.Fees = append(cp.Fees, &Fee{
				ID:          newID(),
				Discipline:  fee.Discipline,
				TotalFee:    fee.TotalFee,
				IsActive:    fee.IsActive,
				CostPerSqft: fee.CostPerSqft,
			})
		}
		out = append(out, cp)
	}
	return out
}
