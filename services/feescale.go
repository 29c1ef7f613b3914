package services

// FeeScaleRow is one tier of the sliding design-fee schedule.
// ConstructionCost is the tier floor; PrimeConsultantFee and the discipline
// fractions are percentages.
type FeeScaleRow struct {
	ConstructionCost   float64
	PrimeConsultantFee float64
	FractionMechanical float64
	FractionPlumbing   float64
	FractionElectrical float64
	FractionStructural float64
}

// DuplicateRateRow maps a duplicate ordinal (1 = the original) to the fee
// multiplier applied to repeated structures.
type DuplicateRateRow struct {
	Ordinal int
	Rate    float64
}

// maxDuplicateOrdinal caps the discount curve; further duplicates reuse the
// last ordinal's rate.
const maxDuplicateOrdinal = 10

// RateBook bundles the two reference tables fee calculation reads. Scale
// rows must be sorted ascending by ConstructionCost.
type RateBook struct {
	Scale          []FeeScaleRow
	DuplicateRates []DuplicateRateRow
}

// LookupScale returns the tier applicable to a construction cost: the row
// with the greatest floor not exceeding cost. Costs below the first floor
// land on the first row. An empty table yields a zero row (rate 0), which
// is the documented degenerate case, not an error.
func LookupScale(rows []FeeScaleRow, cost float64) FeeScaleRow {
	if len(rows) == 0 {
		return FeeScaleRow{}
	}
	for i, row := range rows {
		if i == len(rows)-1 || rows[i+1].ConstructionCost > cost {
			return row
		}
	}
	return rows[len(rows)-1]
}

// DisciplineFraction returns the percentage of the prime rate allocated to
// a discipline. The four scheduled trades read their dedicated column; any
// other discipline uses the prime rate unscaled (fraction 100).
func DisciplineFraction(row FeeScaleRow, discipline string) float64 {
	switch discipline {
	case "mechanical":
		return row.FractionMechanical
	case "plumbing":
		return row.FractionPlumbing
	case "electrical":
		return row.FractionElectrical
	case "structural":
		return row.FractionStructural
	default:
		return 100
	}
}

// LookupScale returns the applicable tier from the book's schedule.
func (b *RateBook) LookupScale(cost float64) FeeScaleRow {
	return LookupScale(b.Scale, cost)
}

// DuplicateRate returns the fee multiplier for a duplicate ordinal.
// Ordinals beyond the curve are capped at 10; a missing ordinal defaults
// to 1.0 so an absent or short table never zeroes fees.
func (b *RateBook) DuplicateRate(ordinal int) float64 {
	if ordinal > maxDuplicateOrdinal {
		ordinal = maxDuplicateOrdinal
	}
	for _, row := range b.DuplicateRates {
		if row.Ordinal == ordinal {
			return row.Rate
		}
	}
	return 1.0
}

// DuplicateOrdinal returns the discount-curve ordinal for a structure:
// 1 for originals, duplicate number + 1 (capped at 10) for duplicates.
func (p *Proposal) DuplicateOrdinal(s *Structure) int {
	if s == nil || !s.IsDuplicate() {
		return 1
	}
	ordinal := p.DuplicateNumber(s) + 1
	if ordinal > maxDuplicateOrdinal {
		ordinal = maxDuplicateOrdinal
	}
	return ordinal
}
