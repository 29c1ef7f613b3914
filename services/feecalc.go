package services

import "strconv"

// TotalDisciplineKey bypasses the discipline-fraction step and applies the
// prime consultant rate directly; used for structure-level aggregate rows.
const TotalDisciplineKey = "total"

// DisciplineFeeResult is the outcome of a single fee-schedule application.
// Rate is the effective fractional rate (schedule × fraction × duplicate
// multiplier), Fee is cost × Rate.
type DisciplineFeeResult struct {
	Fee  float64
	Rate float64
}

// DisciplineFee applies the fee schedule to a construction cost for one
// discipline of a structure at the given duplicate ordinal. The "total"
// token (or a purely numeric discipline key) skips fraction scaling and
// uses the prime rate unscaled.
func DisciplineFee(book *RateBook, cost float64, discipline string, ordinal int) DisciplineFeeResult {
	row := book.LookupScale(cost)
	rate := row.PrimeConsultantFee / 100
	if !isPrimeRateKey(discipline) {
		rate *= DisciplineFraction(row, discipline) / 100
	}
	rate *= book.DuplicateRate(ordinal)
	return DisciplineFeeResult{Fee: cost * rate, Rate: rate}
}

func isPrimeRateKey(discipline string) bool {
	if discipline == TotalDisciplineKey {
		return true
	}
	_, err := strconv.ParseFloat(discipline, 64)
	return err == nil
}

// SpaceFeeLine is one space's share of a discipline group, surfaced when
// the space has SplitFees set.
type SpaceFeeLine struct {
	SpaceID   string
	SpaceName string
	Cost      float64
	DesignFee float64
	SplitFees bool
}

// DisciplineGroup aggregates a structure's active fees for one discipline.
// The schedule is applied once to the summed cost, not per space: the
// schedule is non-linear in cost, so summing per-space fees would discount
// differently than pricing the combined cost.
type DisciplineGroup struct {
	Discipline string
	TotalCost  float64
	Rate       float64
	DesignFee  float64
	SupportFee float64
	Spaces     []SpaceFeeLine
}

// StructureDisciplineGroups groups a structure's active fees by discipline
// in first-seen order and prices each group's combined cost. Per-space
// lines carry the space's individually priced fee for split-fee display.
func (p *Proposal) StructureDisciplineGroups(book *RateBook, s *Structure) []DisciplineGroup {
	if s == nil {
		return nil
	}
	ordinal := p.DuplicateOrdinal(s)
	supportScale := (100 - s.DesignFeeRate) / 100

	var order []string
	groups := map[string]*DisciplineGroup{}
	for _, lvl := range s.Levels {
		for _, sp := range lvl.Spaces {
			for _, fee := range sp.Fees {
				if !fee.IsActive {
					continue
				}
				g := groups[fee.Discipline]
				if g == nil {
					g = &DisciplineGroup{Discipline: fee.Discipline}
					groups[fee.Discipline] = g
					order = append(order, fee.Discipline)
				}
				g.TotalCost += fee.TotalFee
				spaceFee := DisciplineFee(book, fee.TotalFee, fee.Discipline, ordinal)
				g.Spaces = append(g.Spaces, SpaceFeeLine{
					SpaceID:   sp.ID,
					SpaceName: sp.Name,
					Cost:      fee.TotalFee,
					DesignFee: spaceFee.Fee,
					SplitFees: sp.SplitFees,
				})
			}
		}
	}

	out := make([]DisciplineGroup, 0, len(order))
	for _, disc := range order {
		g := groups[disc]
		res := DisciplineFee(book, g.TotalCost, disc, ordinal)
		g.Rate = res.Rate
		g.DesignFee = res.Fee
		if s.ConstructionSupportEnabled {
			g.SupportFee = res.Fee * supportScale
		}
		out = append(out, *g)
	}
	return out
}

// TotalDesignFee sums the priced fee of every active fee in every space of
// the structure, plus every proposal-global additional item in the design
// phase. Additional items are not structure-scoped.
func (p *Proposal) TotalDesignFee(book *RateBook, s *Structure) float64 {
	if s == nil {
		return 0
	}
	ordinal := p.DuplicateOrdinal(s)
	var total float64
	for _, lvl := range s.Levels {
		for _, sp := range lvl.Spaces {
			for _, fee := range sp.Fees {
				if !fee.IsActive {
					continue
				}
				total += DisciplineFee(book, fee.TotalFee, fee.Discipline, ordinal).Fee
			}
		}
	}
	total += p.FeeItemTotal(PhaseDesign)
	return total
}

// TotalConstructionSupportFee sums the construction support fee across the
// structure's discipline groups, plus construction-phase additional items.
// A structure with construction support disabled contributes nothing from
// its disciplines.
func (p *Proposal) TotalConstructionSupportFee(book *RateBook, s *Structure) float64 {
	if s == nil {
		return 0
	}
	var total float64
	if s.ConstructionSupportEnabled {
		supportScale := (100 - s.DesignFeeRate) / 100
		ordinal := p.DuplicateOrdinal(s)
		for _, g := range p.groupCosts(s) {
			res := DisciplineFee(book, g.cost, g.discipline, ordinal)
			total += res.Fee * supportScale
		}
	}
	total += p.FeeItemTotal(PhaseConstruction)
	return total
}

type groupCost struct {
	discipline string
	cost       float64
}

func (p *Proposal) groupCosts(s *Structure) []groupCost {
	var order []string
	sums := map[string]float64{}
	for _, lvl := range s.Levels {
		for _, sp := range lvl.Spaces {
			for _, fee := range sp.Fees {
				if !fee.IsActive {
					continue
				}
				if _, seen := sums[fee.Discipline]; !seen {
					order = append(order, fee.Discipline)
				}
				sums[fee.Discipline] += fee.TotalFee
			}
		}
	}
	out := make([]groupCost, 0, len(order))
	for _, disc := range order {
		out = append(out, groupCost{discipline: disc, cost: sums[disc]})
	}
	return out
}

// FeeItemTotal sums the minimum values of the proposal's additional items
// for one phase.
func (p *Proposal) FeeItemTotal(phase string) float64 {
	var total float64
	for _, item := range p.FeeItems {
		if item.Phase == phase {
			total += item.DefaultMinValue
		}
	}
	return total
}

// EffectiveFee returns the fee figure the proposal surfaces for one
// (structure, discipline, space) cell: the manual override when one is
// recorded for the requested kind, otherwise the calculated value. The
// calculated design fee prices the space's own cost basis; the support
// value scales it by the structure's support percentage (zero when support
// is disabled). A toggled-off discipline surfaces zero even when an
// override is recorded; the override resurfaces when the fee is active
// again.
func (p *Proposal) EffectiveFee(book *RateBook, structureID, discipline, spaceID string, kind OverrideKind) float64 {
	s := p.byID[structureID]
	if s == nil {
		return 0
	}
	_, sp := spaceByID(s, spaceID)
	if sp == nil {
		return 0
	}
	var calc float64
	active := false
	for _, fee := range sp.Fees {
		if fee.Discipline != discipline || !fee.IsActive {
			continue
		}
		active = true
		design := DisciplineFee(book, fee.TotalFee, discipline, p.DuplicateOrdinal(s)).Fee
		if kind == OverrideConstruction {
			if s.ConstructionSupportEnabled {
				calc = design * (100 - s.DesignFeeRate) / 100
			}
		} else {
			calc = design
		}
	}
	if !active {
		return 0
	}
	return p.Overrides.Effective(structureID, discipline, spaceID, kind, calc)
}
