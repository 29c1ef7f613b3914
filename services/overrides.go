package services

// OverrideKind selects which of the two fee figures an override replaces.
type OverrideKind string

const (
	OverrideDesign       OverrideKind = "design"
	OverrideConstruction OverrideKind = "construction"
)

// ManualFeeOverride is a user-entered fee value superseding the calculated
// one for a single (structure, discipline, space) cell. Either field may be
// unset. Overrides are space-scoped only; there is no discipline-aggregate
// override.
type ManualFeeOverride struct {
	StructureID            string
	Discipline             string
	SpaceID                string
	DesignFee              *float64
	ConstructionSupportFee *float64
}

type overrideKey struct {
	structureID string
	discipline  string
	spaceID     string
}

// OverrideSet stores the proposal's manual overrides.
type OverrideSet struct {
	m map[overrideKey]*ManualFeeOverride
}

func NewOverrideSet() *OverrideSet {
	return &OverrideSet{m: map[overrideKey]*ManualFeeOverride{}}
}

// Set records or clears one field of an override. A nil value clears that
// field; when both fields end up unset the record is removed entirely.
func (o *OverrideSet) Set(structureID, discipline, spaceID string, kind OverrideKind, value *float64) {
	key := overrideKey{structureID, discipline, spaceID}
	rec := o.m[key]
	if rec == nil {
		if value == nil {
			return
		}
		rec = &ManualFeeOverride{StructureID: structureID, Discipline: discipline, SpaceID: spaceID}
		o.m[key] = rec
	}
	if kind == OverrideConstruction {
		rec.ConstructionSupportFee = value
	} else {
		rec.DesignFee = value
	}
	if rec.DesignFee == nil && rec.ConstructionSupportFee == nil {
		delete(o.m, key)
	}
}

// Get returns the override record for a cell, or nil.
func (o *OverrideSet) Get(structureID, discipline, spaceID string) *ManualFeeOverride {
	return o.m[overrideKey{structureID, discipline, spaceID}]
}

// Effective resolves a cell's fee: the override value for the requested
// kind when present, otherwise the calculated value.
func (o *OverrideSet) Effective(structureID, discipline, spaceID string, kind OverrideKind, calculated float64) float64 {
	rec := o.m[overrideKey{structureID, discipline, spaceID}]
	if rec == nil {
		return calculated
	}
	if kind == OverrideConstruction {
		if rec.ConstructionSupportFee != nil {
			return *rec.ConstructionSupportFee
		}
	} else if rec.DesignFee != nil {
		return *rec.DesignFee
	}
	return calculated
}

// Reset deletes a cell's override record, reverting both fields to
// calculated values.
func (o *OverrideSet) Reset(structureID, discipline, spaceID string) {
	delete(o.m, overrideKey{structureID, discipline, spaceID})
}

// DeleteSpace drops every override scoped to a space (cascade on space
// delete).
func (o *OverrideSet) DeleteSpace(spaceID string) {
	for key := range o.m {
		if key.spaceID == spaceID {
			delete(o.m, key)
		}
	}
}

// DeleteStructure drops every override scoped to a structure.
func (o *OverrideSet) DeleteStructure(structureID string) {
	for key := range o.m {
		if key.structureID == structureID {
			delete(o.m, key)
		}
	}
}

// All returns the recorded overrides in no particular order.
func (o *OverrideSet) All() []*ManualFeeOverride {
	out := make([]*ManualFeeOverride, 0, len(o.m))
	for _, rec := range o.m {
		out = append(out, rec)
	}
	return out
}

// Len reports the number of recorded overrides.
func (o *OverrideSet) Len() int {
	return len(o.m)
}
