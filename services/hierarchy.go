// Package services implements the fee proposal core: the structure
// hierarchy, duplicate synchronization, fee schedule lookups and fee
// calculation, manual overrides, and additional-service resolution.
package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// DefaultDisciplines are the engineering trades every new space carries a
// fee slot for.
var DefaultDisciplines = []string{"mechanical", "plumbing", "electrical", "structural"}

// Direction controls where new or duplicated levels are inserted.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
	DirectionSame Direction = "same"
)

// Fee is one discipline's construction-cost figure on a space. TotalFee is
// the construction cost basis the fee schedule is applied to, not the
// resulting design fee.
type Fee struct {
	ID          string
	Discipline  string
	TotalFee    float64
	IsActive    bool
	CostPerSqft float64
}

// Space is a priced room or area on a level. SplitFees surfaces the space's
// own fee row in addition to the discipline aggregate.
type Space struct {
	ID             string
	Name           string
	FloorArea      float64
	BuildingTypeID string
	SplitFees      bool
	Fees           []*Fee
}

// Level is a floor of a structure. Name is always "Level {n}" where n may
// be negative (basements). Level numbers are unique within a structure.
type Level struct {
	ID        string
	Name      string
	FloorArea float64
	Spaces    []*Space
}

// Structure is a physical building. ParentID set means this structure is a
// duplicate mirroring the referenced original; duplicates receive only
// synchronized edits and cannot be modified directly.
type Structure struct {
	ID                         string
	ParentID                   string
	ConstructionType           string
	FloorArea                  float64
	Description                string
	DesignFeeRate              float64
	ConstructionSupportEnabled bool
	Levels                     []*Level
}

// IsDuplicate reports whether the structure mirrors an original.
func (s *Structure) IsDuplicate() bool {
	return s.ParentID != ""
}

// SpaceInput carries the user-editable fields of a space. Costs maps
// discipline to cost per square foot; the fee's cost basis is
// FloorArea * Costs[discipline].
type SpaceInput struct {
	Name           string
	FloorArea      float64
	BuildingTypeID string
	SplitFees      bool
	Costs          map[string]float64
}

// Proposal is the in-memory aggregate owning the whole structure tree, the
// manual override set and the proposal-global additional service items.
// All mutation goes through its command methods; operations on unknown ids
// are no-ops so stale references never fault.
type Proposal struct {
	ID         string
	Title      string
	Structures []*Structure
	Overrides  *OverrideSet
	FeeItems   []*FeeItem

	byID     map[string]*Structure
	children map[string][]string // original id -> duplicate ids in creation order
}

// NewProposal creates an empty proposal aggregate.
func NewProposal(title string) *Proposal {
	return &Proposal{
		ID:        newID(),
		Title:     title,
		Overrides: NewOverrideSet(),
		byID:      map[string]*Structure{},
		children:  map[string][]string{},
	}
}

func newID() string {
	return uuid.NewString()
}

// StructureByID returns the structure with the given id, or nil.
func (p *Proposal) StructureByID(id string) *Structure {
	return p.byID[id]
}

// RestoreStructure reattaches a persisted structure to the aggregate's
// indexes without touching its contents. Structures must be restored in
// creation order so duplicate numbering matches what was saved.
func (p *Proposal) RestoreStructure(s *Structure) {
	p.Structures = append(p.Structures, s)
	p.byID[s.ID] = s
	if s.IsDuplicate() {
		p.children[s.ParentID] = append(p.children[s.ParentID], s.ID)
	}
}

// Duplicates returns the duplicate structures of an original, in creation
// order.
func (p *Proposal) Duplicates(originalID string) []*Structure {
	var out []*Structure
	for _, id := range p.children[originalID] {
		if d := p.byID[id]; d != nil {
			out = append(out, d)
		}
	}
	return out
}

// DuplicateNumber returns the 1-based position of a duplicate among its
// siblings, or 0 for originals and unknown structures. Positions are
// recomputed from creation order, so deleting duplicate #2 renumbers #3 to #2.
func (p *Proposal) DuplicateNumber(s *Structure) int {
	if s == nil || !s.IsDuplicate() {
		return 0
	}
	for i, id := range p.children[s.ParentID] {
		if id == s.ID {
			return i + 1
		}
	}
	return 0
}

// AddStructure creates a new original structure with a single empty
// "Level 1" and the default fee settings.
func (p *Proposal) AddStructure(description, constructionType string) *Structure {
	s := &Structure{
		ID:                         newID(),
		ConstructionType:           constructionType,
		Description:                description,
		DesignFeeRate:              80,
		ConstructionSupportEnabled: true,
		Levels: []*Level{
			{ID: newID(), Name: levelName(1)},
		},
	}
	p.Structures = append(p.Structures, s)
	p.byID[s.ID] = s
	return s
}

// DuplicateStructure creates a duplicate mirroring the given original. The
// duplicate copies the original's levels, spaces and fees under fresh ids
// and stays synchronized from then on. Duplicating a duplicate is a no-op.
func (p *Proposal) DuplicateStructure(id string) *Structure {
	src := p.byID[id]
	if src == nil || src.IsDuplicate() {
		return nil
	}
	d := &Structure{
		ID:                         newID(),
		ParentID:                   src.ID,
		ConstructionType:           src.ConstructionType,
		FloorArea:                  src.FloorArea,
		DesignFeeRate:              src.DesignFeeRate,
		ConstructionSupportEnabled: src.ConstructionSupportEnabled,
		Levels:                     cloneLevels(src.Levels),
	}
	p.Structures = append(p.Structures, d)
	p.byID[d.ID] = d
	p.children[src.ID] = append(p.children[src.ID], d.ID)
	p.renumberDuplicates(src.ID)
	return d
}

// CopyStructure creates an independent copy of a structure (no parent
// link, no duplicate discount). Copies of duplicates become originals.
func (p *Proposal) CopyStructure(id string) *Structure {
	src := p.byID[id]
	if src == nil {
		return nil
	}
	c := &Structure{
		ID:                         newID(),
		ConstructionType:           src.ConstructionType,
		FloorArea:                  src.FloorArea,
		Description:                src.Description + " (Copy)",
		DesignFeeRate:              src.DesignFeeRate,
		ConstructionSupportEnabled: src.ConstructionSupportEnabled,
		Levels:                     cloneLevels(src.Levels),
	}
	p.Structures = append(p.Structures, c)
	p.byID[c.ID] = c
	return c
}

// DeleteStructure removes a structure. Deleting an original cascades to
// every duplicate mirroring it; deleting a duplicate renumbers the
// remaining siblings. Overrides scoped to deleted structures are dropped.
func (p *Proposal) DeleteStructure(id string) {
	s := p.byID[id]
	if s == nil {
		return
	}
	doomed := []string{id}
	if !s.IsDuplicate() {
		doomed = append(doomed, p.children[id]...)
		delete(p.children, id)
	}
	for _, did := range doomed {
		delete(p.byID, did)
		p.Overrides.DeleteStructure(did)
	}
	kept := p.Structures[:0]
	for _, st := range p.Structures {
		if p.byID[st.ID] != nil {
			kept = append(kept, st)
		}
	}
	p.Structures = kept
	if s.IsDuplicate() {
		ids := p.children[s.ParentID]
		for i, did := range ids {
			if did == id {
				p.children[s.ParentID] = append(ids[:i], ids[i+1:]...)
				break
			}
		}
		p.renumberDuplicates(s.ParentID)
	}
}

// RenameStructure sets an original's description and re-derives every
// duplicate's description from it. Duplicates cannot be renamed directly.
func (p *Proposal) RenameStructure(id, description string) {
	s := p.byID[id]
	if s == nil || s.IsDuplicate() {
		return
	}
	s.Description = description
	p.renumberDuplicates(id)
}

// SetDesignFeeRate sets the design-fee percentage on an original and
// mirrors it onto its duplicates. No-op on duplicates and unknown ids.
func (p *Proposal) SetDesignFeeRate(id string, rate float64) {
	s := p.byID[id]
	if s == nil || s.IsDuplicate() {
		return
	}
	s.DesignFeeRate = rate
	for _, d := range p.Duplicates(id) {
		d.DesignFeeRate = rate
	}
}

// SetConstructionSupport enables or disables the construction support
// phase on an original and mirrors the setting onto its duplicates.
func (p *Proposal) SetConstructionSupport(id string, enabled bool) {
	s := p.byID[id]
	if s == nil || s.IsDuplicate() {
		return
	}
	s.ConstructionSupportEnabled = enabled
	for _, d := range p.Duplicates(id) {
		d.ConstructionSupportEnabled = enabled
	}
}

// AddLevels appends count new empty levels above the highest (DirectionUp)
// or below the lowest (DirectionDown) existing level of an original, then
// mirrors the same insertion onto its duplicates.
func (p *Proposal) AddLevels(structureID string, direction Direction, count int) {
	s := p.byID[structureID]
	if s == nil || s.IsDuplicate() || count <= 0 {
		return
	}
	p.forEachMirror(s, func(target *Structure) {
		addLevelsTo(target, direction, count)
	})
}

func addLevelsTo(s *Structure, direction Direction, count int) {
	for i := 0; i < count; i++ {
		var n int
		switch direction {
		case DirectionDown:
			n = lowestLevelNumber(s) - 1
		default:
			n = highestLevelNumber(s) + 1
		}
		s.Levels = append(s.Levels, &Level{ID: newID(), Name: levelName(n)})
	}
	sortLevels(s)
}

// DuplicateLevel copies a level with all of its spaces and fees. DirectionUp
// places the copy above the highest level, DirectionDown below the lowest,
// and DirectionSame directly above the source, shifting higher levels up by
// one. The edit is mirrored onto duplicates by level name.
func (p *Proposal) DuplicateLevel(structureID, levelID string, direction Direction) {
	s := p.byID[structureID]
	if s == nil || s.IsDuplicate() {
		return
	}
	src := levelByID(s, levelID)
	if src == nil {
		return
	}
	name := src.Name
	p.forEachMirror(s, func(target *Structure) {
		duplicateLevelIn(target, name, direction)
	})
}

func duplicateLevelIn(s *Structure, sourceName string, direction Direction) {
	src := levelByName(s, sourceName)
	if src == nil {
		return
	}
	var n int
	switch direction {
	case DirectionUp:
		n = highestLevelNumber(s) + 1
	case DirectionDown:
		n = lowestLevelNumber(s) - 1
	default:
		// Insert directly above the source: shift every higher level up.
		srcN, _ := levelNumber(src.Name)
		for _, lvl := range s.Levels {
			if ln, ok := levelNumber(lvl.Name); ok && ln > srcN {
				lvl.Name = levelName(ln + 1)
			}
		}
		n = srcN + 1
	}
	copyLvl := &Level{
		ID:        newID(),
		Name:      levelName(n),
		FloorArea: src.FloorArea,
		Spaces:    cloneSpaces(src.Spaces),
	}
	s.Levels = append(s.Levels, copyLvl)
	sortLevels(s)
}

// DeleteLevel removes a level from an original and mirrors the removal
// onto its duplicates by level name. Overrides on the level's spaces are
// dropped.
func (p *Proposal) DeleteLevel(structureID, levelID string) {
	s := p.byID[structureID]
	if s == nil || s.IsDuplicate() {
		return
	}
	lvl := levelByID(s, levelID)
	if lvl == nil {
		return
	}
	name := lvl.Name
	p.forEachMirror(s, func(target *Structure) {
		p.deleteLevelIn(target, name)
	})
}

func (p *Proposal) deleteLevelIn(s *Structure, name string) {
	for i, lvl := range s.Levels {
		if lvl.Name == name {
			for _, sp := range lvl.Spaces {
				p.Overrides.DeleteSpace(sp.ID)
			}
			s.Levels = append(s.Levels[:i], s.Levels[i+1:]...)
			return
		}
	}
}

// AddSpace creates a space on a level of an original, with one fee slot
// per default discipline, and mirrors it onto duplicates by level name.
// The created space (on the original) is returned.
func (p *Proposal) AddSpace(structureID, levelID string, in SpaceInput) *Space {
	s := p.byID[structureID]
	if s == nil || s.IsDuplicate() {
		return nil
	}
	lvl := levelByID(s, levelID)
	if lvl == nil {
		return nil
	}
	name := lvl.Name
	var created *Space
	p.forEachMirror(s, func(target *Structure) {
		sp := addSpaceTo(target, name, in)
		if target == s {
			created = sp
		}
	})
	return created
}

func addSpaceTo(s *Structure, levelName string, in SpaceInput) *Space {
	lvl := levelByName(s, levelName)
	if lvl == nil {
		return nil
	}
	sp := &Space{
		ID:             newID(),
		Name:           in.Name,
		FloorArea:      in.FloorArea,
		BuildingTypeID: in.BuildingTypeID,
		SplitFees:      in.SplitFees,
	}
	for _, disc := range DefaultDisciplines {
		cost := in.Costs[disc]
		sp.Fees = append(sp.Fees, &Fee{
			ID:          newID(),
			Discipline:  disc,
			TotalFee:    in.FloorArea * cost,
			IsActive:    true,
			CostPerSqft: cost,
		})
	}
	lvl.Spaces = append(lvl.Spaces, sp)
	return sp
}

// UpdateSpace applies new field values to a space on an original and
// mirrors them onto the corresponding space (matched by level and space
// name) of every duplicate. Fee cost bases are recomputed from the new
// floor area and per-discipline costs.
func (p *Proposal) UpdateSpace(structureID, spaceID string, in SpaceInput) {
	s := p.byID[structureID]
	if s == nil || s.IsDuplicate() {
		return
	}
	lvl, sp := spaceByID(s, spaceID)
	if sp == nil {
		return
	}
	lvlName, oldName := lvl.Name, sp.Name
	p.forEachMirror(s, func(target *Structure) {
		tl := levelByName(target, lvlName)
		if tl == nil {
			return
		}
		tsp := spaceByName(tl, oldName)
		if tsp == nil {
			return
		}
		updateSpaceFields(tsp, in)
	})
}

func updateSpaceFields(sp *Space, in SpaceInput) {
	sp.Name = in.Name
	sp.FloorArea = in.FloorArea
	sp.BuildingTypeID = in.BuildingTypeID
	sp.SplitFees = in.SplitFees
	for _, fee := range sp.Fees {
		if cost, ok := in.Costs[fee.Discipline]; ok {
			fee.CostPerSqft = cost
		}
		fee.TotalFee = sp.FloorArea * fee.CostPerSqft
	}
}

// DeleteSpace removes a space from an original and mirrors the removal by
// level and space name onto its duplicates. Overrides on the space cascade.
func (p *Proposal) DeleteSpace(structureID, spaceID string) {
	s := p.byID[structureID]
	if s == nil || s.IsDuplicate() {
		return
	}
	lvl, sp := spaceByID(s, spaceID)
	if sp == nil {
		return
	}
	lvlName, name := lvl.Name, sp.Name
	p.forEachMirror(s, func(target *Structure) {
		tl := levelByName(target, lvlName)
		if tl == nil {
			return
		}
		for i, tsp := range tl.Spaces {
			if tsp.Name == name {
				p.Overrides.DeleteSpace(tsp.ID)
				tl.Spaces = append(tl.Spaces[:i], tl.Spaces[i+1:]...)
				return
			}
		}
	})
}

// ToggleFee activates or deactivates a discipline across every space of an
// original structure, mirrored onto its duplicates.
func (p *Proposal) ToggleFee(structureID, discipline string, active bool) {
	s := p.byID[structureID]
	if s == nil || s.IsDuplicate() {
		return
	}
	p.forEachMirror(s, func(target *Structure) {
		for _, lvl := range target.Levels {
			for _, sp := range lvl.Spaces {
				for _, fee := range sp.Fees {
					if fee.Discipline == discipline {
						fee.IsActive = active
					}
				}
			}
		}
	})
}

// ToggleSpaceFee activates or deactivates a single fee by id. The fee must
// belong to an original; the matching fee on each duplicate (by level name,
// space name and discipline) follows.
func (p *Proposal) ToggleSpaceFee(feeID string, active bool) {
	s, lvl, sp, fee := p.feeByID(feeID)
	if fee == nil || s.IsDuplicate() {
		return
	}
	lvlName, spName, disc := lvl.Name, sp.Name, fee.Discipline
	p.forEachMirror(s, func(target *Structure) {
		tl := levelByName(target, lvlName)
		if tl == nil {
			return
		}
		tsp := spaceByName(tl, spName)
		if tsp == nil {
			return
		}
		for _, tf := range tsp.Fees {
			if tf.Discipline == disc {
				tf.IsActive = active
			}
		}
	})
}

func (p *Proposal) feeByID(feeID string) (*Structure, *Level, *Space, *Fee) {
	for _, s := range p.Structures {
		for _, lvl := range s.Levels {
			for _, sp := range lvl.Spaces {
				for _, fee := range sp.Fees {
					if fee.ID == feeID {
						return s, lvl, sp, fee
					}
				}
			}
		}
	}
	return nil, nil, nil, nil
}

// ── Level name helpers ───────────────────────────────────────────────────

func levelName(n int) string {
	return fmt.Sprintf("Level %d", n)
}

// levelNumber parses the numeric suffix of a "Level {n}" name.
func levelNumber(name string) (int, bool) {
	rest, ok := strings.CutPrefix(name, "Level ")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return n, true
}

func highestLevelNumber(s *Structure) int {
	max, found := 0, false
	for _, lvl := range s.Levels {
		if n, ok := levelNumber(lvl.Name); ok && (!found || n > max) {
			max, found = n, true
		}
	}
	return max
}

func lowestLevelNumber(s *Structure) int {
	// Empty structures behave as if "Level 1" existed, so the first
	// downward level is Level 0.
	min, found := 1, false
	for _, lvl := range s.Levels {
		if n, ok := levelNumber(lvl.Name); ok && (!found || n < min) {
			min, found = n, true
		}
	}
	return min
}

// sortLevels orders levels by numeric suffix descending (top floor first).
func sortLevels(s *Structure) {
	sort.SliceStable(s.Levels, func(i, j int) bool {
		ni, _ := levelNumber(s.Levels[i].Name)
		nj, _ := levelNumber(s.Levels[j].Name)
		return ni > nj
	})
}

func levelByID(s *Structure, id string) *Level {
	for _, lvl := range s.Levels {
		if lvl.ID == id {
			return lvl
		}
	}
	return nil
}

func levelByName(s *Structure, name string) *Level {
	for _, lvl := range s.Levels {
		if lvl.Name == name {
			return lvl
		}
	}
	return nil
}

func spaceByID(s *Structure, id string) (*Level, *Space) {
	for _, lvl := range s.Levels {
		for _, sp := range lvl.Spaces {
			if sp.ID == id {
				return lvl, sp
			}
		}
	}
	return nil, nil
}

func spaceByName(lvl *Level, name string) *Space {
	for _, sp := range lvl.Spaces {
		if sp.Name == name {
			return sp
		}
	}
	return nil
}
